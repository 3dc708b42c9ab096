package patch_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudk/patch"
	"github.com/dudk/patch/config"
	"github.com/dudk/patch/internal/mock"
	"github.com/dudk/patch/log"
	"github.com/dudk/patch/metric"
)

var errTest = errors.New("test error")

func newExamples() (*patch.Graph, *mock.Example, *mock.Example) {
	g := patch.New(patch.WithLogger(log.Silent()))
	return g, mock.NewExample(g, "Example1"), mock.NewExample(g, "Example2")
}

func value(t *testing.T, o patch.Output) int {
	t.Helper()
	v, err := patch.Value[int](o)
	require.NoError(t, err)
	return v
}

func text(t *testing.T, o patch.Output) string {
	t.Helper()
	v, err := patch.Value[string](o)
	require.NoError(t, err)
	return v
}

func TestSetterAndGetter(t *testing.T) {
	_, e1, _ := newExamples()
	require.NoError(t, e1.SetValue.Set(1))
	v, err := e1.Value.Get()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
	require.NoError(t, e1.SetValueNoUpdate.Set(2))
	assert.Equal(t, 2, value(t, e1.Value))

	err = e1.SetValue.Set("text")
	assert.True(t, errors.Is(err, patch.ErrTypeMismatch))
	assert.Equal(t, 2, value(t, e1.Value))
}

func TestValidConnections(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, e1.SetValue.Set(1))
	require.NoError(t, e2.SetValue.Set(2))

	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	assert.Equal(t, 1, value(t, e2.Value))
	require.NoError(t, e1.SetValue.Set(3))
	assert.Equal(t, 3, value(t, e2.Value))
	require.NoError(t, patch.Disconnect(e1.Value, e2.SetValue))
	require.NoError(t, e1.SetValue.Set(4))
	assert.Equal(t, 3, value(t, e2.Value))

	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	require.NoError(t, e1.SetValue.Set(5))
	assert.Equal(t, 5, value(t, e2.Value))
	require.NoError(t, e1.SetValueNoUpdate.Set(6))
	assert.Equal(t, 5, value(t, e2.Value))

	require.NoError(t, patch.Connect(e1.Text, e2.SetText))
	require.NoError(t, e1.ComputeValueAndText.Set(8))
	assert.Equal(t, 8, value(t, e2.Value))
	assert.Equal(t, "8", text(t, e2.Text))

	e2.Triggered = false
	require.NoError(t, patch.Connect(e1.Text, e2.Trigger))
	require.NoError(t, patch.Connect(e1.Value, e2.Trigger))
	assert.False(t, e2.Triggered)
	require.NoError(t, e1.SetValue.Set(9))
	assert.True(t, e2.Triggered)

	require.NoError(t, patch.Connect(e1.Float, e2.SetNumber))
	require.NoError(t, patch.Disconnect(e1.Float, e2.SetNumber))
	require.NoError(t, patch.Connect(e1.Value, e2.SetNumber))
}

func TestMultiInput(t *testing.T) {
	_, e1, e2 := newExamples()
	_, err := e2.AddItem.Add(0)
	require.NoError(t, err)
	id1, err := e2.AddItem.Add(1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1}, e2.Data())

	require.NoError(t, e1.SetValue.Set(2))
	require.NoError(t, patch.Connect(e1.Value, e2.AddItem))
	assert.ElementsMatch(t, []int{0, 1, 2}, e2.Data())
	require.NoError(t, e1.SetValue.Set(3))
	assert.ElementsMatch(t, []int{0, 1, 3}, e2.Data())
	require.NoError(t, patch.Connect(e1.DoubleValue, e2.AddItem))
	assert.ElementsMatch(t, []int{0, 1, 3, 6}, e2.Data())

	require.NoError(t, patch.Connect(e2.Items, e1.Trigger))
	e1.Triggered = false
	require.NoError(t, patch.Disconnect(e1.Value, e2.AddItem))
	assert.True(t, e1.Triggered)
	assert.ElementsMatch(t, []int{0, 1, 6}, e2.Data())

	require.NoError(t, e2.AddItem.Remove(id1))
	assert.ElementsMatch(t, []int{0, 6}, e2.Data())
	require.NoError(t, e1.SetNumber.Set(2))
	assert.ElementsMatch(t, []int{0, 4}, e2.Data())

	err = e2.AddItem.Remove(id1)
	assert.Error(t, err)
	err = e2.AddItem.Replace(0, 1)
	assert.True(t, errors.Is(err, patch.ErrInvalidConnection))
	_, err = e2.AddItem.Add("text")
	assert.True(t, errors.Is(err, patch.ErrTypeMismatch))
}

func TestMultiInputReplace(t *testing.T) {
	_, e1, e2 := newExamples()
	_, err := e2.AddItemReplace.Add(0)
	require.NoError(t, err)
	require.NoError(t, e1.SetValue.Set(1))
	require.NoError(t, patch.Connect(e1.Value, e2.AddItemReplace))
	_, err = e2.AddItemReplace.Add(2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, e2.Data())

	// replaced value keeps its position
	require.NoError(t, e1.SetValue.Set(5))
	assert.Equal(t, []int{0, 5, 2}, e2.Data())

	require.NoError(t, patch.Disconnect(e1.Value, e2.AddItemReplace))
	assert.Equal(t, []int{0, 2}, e2.Data())
}

func TestInvalidConnections(t *testing.T) {
	g, e1, e2 := newExamples()
	tests := []struct {
		name     string
		connect  func() error
		expected error
	}{
		{
			name:     "type mismatch",
			connect:  func() error { return patch.Connect(e1.Text, e2.SetNumber) },
			expected: patch.ErrTypeMismatch,
		},
		{
			name:     "type mismatch in loop",
			connect:  func() error { return patch.Connect(e1.Text, e1.ComputeValueAndText) },
			expected: patch.ErrTypeMismatch,
		},
		{
			name:     "direct loop",
			connect:  func() error { return patch.Connect(e1.Value, e1.SetValue) },
			expected: patch.ErrInvalidConnection,
		},
		{
			name:     "not connected",
			connect:  func() error { return patch.Disconnect(e1.Value, e2.SetValue) },
			expected: patch.ErrInvalidConnection,
		},
		{
			name: "different graphs",
			connect: func() error {
				other := mock.NewExample(patch.New(patch.WithLogger(log.Silent())), "Other")
				return patch.Connect(e1.Value, other.SetValue)
			},
			expected: patch.ErrInvalidConnection,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.connect()
			assert.True(t, errors.Is(err, test.expected))
			var ce *patch.ConnectionError
			assert.True(t, errors.As(err, &ce))
		})
	}

	require.NoError(t, patch.Connect(e1.Value, e1.SetValueNoUpdate))
	err := patch.Connect(e1.Value, e1.SetValueNoUpdate)
	assert.True(t, errors.Is(err, patch.ErrInvalidConnection))
	err = patch.Connect(e1.DoubleValue, e1.SetValueNoUpdate)
	assert.True(t, errors.Is(err, patch.ErrInvalidConnection))
	require.NoError(t, patch.Disconnect(e1.Value, e1.SetValueNoUpdate))
	err = patch.Disconnect(e1.Value, e1.SetValueNoUpdate)
	assert.True(t, errors.Is(err, patch.ErrInvalidConnection))
	assert.Equal(t, 28, g.Len())
}

func TestTransitiveLoop(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	err := patch.Connect(e2.Value, e1.SetValue)
	assert.True(t, errors.Is(err, patch.ErrInvalidConnection))

	// graph is not changed
	err = patch.Disconnect(e2.Value, e1.SetValue)
	assert.True(t, errors.Is(err, patch.ErrInvalidConnection))
	require.NoError(t, patch.Connect(e2.Value, e1.SetValueNoUpdate))
}

func TestOrder(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	require.NoError(t, patch.Connect(e1.Value, e2.SetNumber))
	require.NoError(t, patch.Connect(e1.Value, e2.SetValueNoUpdate))
	e2.Order = nil
	require.NoError(t, e1.SetValue.Set(1))
	assert.Equal(t, []string{"SetValue", "SetNumber", "SetValueNoUpdate"}, e2.Order)

	require.NoError(t, patch.Disconnect(e1.Value, e2.SetNumber))
	require.NoError(t, patch.Connect(e1.Value, e2.SetNumber))
	e2.Order = nil
	require.NoError(t, e1.SetValue.Set(2))
	assert.Equal(t, []string{"SetValue", "SetValueNoUpdate", "SetNumber"}, e2.Order)
}

func TestObserverOrder(t *testing.T) {
	g := patch.New(patch.WithLogger(log.Silent()))
	var order []string
	source := g.Node("Source")
	newOutput := func(name string) patch.Output {
		return patch.NewOutput(source, name, func() (string, error) {
			return name, nil
		})
	}
	o1, o2, o3 := newOutput("O1"), newOutput("O2"), newOutput("O3")
	in := patch.NewInput(source, "Set", func(int) error { return nil }, patch.Observe(o2, o3, o1))

	sink := g.Node("Sink")
	for i, o := range []patch.Output{o1, o2, o3} {
		r := patch.NewInput(sink, fmt.Sprintf("Take%d", i), func(v string) error {
			order = append(order, v)
			return nil
		})
		require.NoError(t, patch.Connect(o, r))
	}

	order = nil
	require.NoError(t, in.Set(1))
	assert.Equal(t, []string{"O2", "O3", "O1"}, order)
}

func TestValueTypeMismatch(t *testing.T) {
	g := patch.New(patch.WithLogger(log.Silent()))
	n := g.Node("Values")
	number := patch.NewOutput(n, "Number", func() (int, error) { return 65, nil })
	fraction := patch.NewOutput(n, "Fraction", func() (float64, error) { return 2.9, nil })

	s, err := patch.Value[string](number)
	assert.True(t, errors.Is(err, patch.ErrTypeMismatch))
	assert.Equal(t, "", s)
	i, err := patch.Value[int](fraction)
	assert.True(t, errors.Is(err, patch.ErrTypeMismatch))
	assert.Equal(t, 0, i)

	v, err := patch.Value[interface{}](number)
	require.NoError(t, err)
	assert.Equal(t, 65, v)
}

func TestDebugConfig(t *testing.T) {
	level := log.GetLogger().GetLevel()
	logger := logrus.New()
	patch.New(patch.WithLogger(logger), patch.WithConfig(config.Config{Debug: true}))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.Equal(t, level, log.GetLogger().GetLevel())
}

func TestCaching(t *testing.T) {
	_, e1, _ := newExamples()
	require.NoError(t, e1.SetNumber.Set(1))
	assert.Equal(t, 2, value(t, e1.DoubleValue))
	require.NoError(t, e1.SetValueNoUpdate.Set(2))
	assert.Equal(t, 2, value(t, e1.DoubleValue))
	require.NoError(t, e1.SetNumber.Set(3))
	assert.Equal(t, 6, value(t, e1.DoubleValue))
}

func TestCachingConfig(t *testing.T) {
	tests := []struct {
		caching     bool
		evaluations int
	}{
		{caching: true, evaluations: 1},
		{caching: false, evaluations: 2},
	}
	for _, test := range tests {
		g := patch.New(
			patch.WithLogger(log.Silent()),
			patch.WithConfig(config.Config{Caching: test.caching}),
		)
		evaluations := 0
		n := g.Node("Counter")
		out := patch.NewOutput(n, "Count", func() (int, error) {
			evaluations++
			return evaluations, nil
		})
		_, err := out.Get()
		require.NoError(t, err)
		_, err = out.Get()
		require.NoError(t, err)
		assert.Equal(t, test.evaluations, evaluations)
	}
}

func TestErrors(t *testing.T) {
	_, e1, e2 := newExamples()
	e2.ErrorOnCall = errTest
	err := patch.Connect(e1.Value, e2.SetValueNoUpdate)
	assert.Equal(t, errTest, err)

	// connection is kept
	err = e1.SetValue.Set(1)
	assert.Equal(t, errTest, err)

	e2.ErrorOnCall = nil
	require.NoError(t, e1.SetValue.Set(2))
	assert.Equal(t, 2, value(t, e2.Value))

	n := e1.Node.Graph().Node("Failing")
	out := patch.NewOutput(n, "Output", func() (int, error) {
		return 0, errTest
	})
	err = patch.Connect(out, e2.SetValue)
	assert.Equal(t, errTest, err)
	_, err = out.Get()
	assert.Equal(t, errTest, err)
}

func TestDisconnectAll(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, patch.Connect(e1.Value, e2.Trigger))
	require.NoError(t, patch.Connect(e1.Text, e2.Trigger))
	require.NoError(t, patch.DisconnectAll(e2.Trigger))
	e2.Triggered = false
	require.NoError(t, e1.SetValue.Set(1))
	require.NoError(t, e1.SetText.Set("1"))
	assert.False(t, e2.Triggered)

	require.NoError(t, patch.Connect(e1.Value, e2.Trigger))
	require.NoError(t, patch.Connect(e1.Text, e2.Trigger))
	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	require.NoError(t, patch.Connect(e1.DoubleValue, e2.SetValueNoUpdate))
	require.NoError(t, patch.Connect(e2.Value, e1.SetValueNoUpdate))
	require.NoError(t, patch.Connect(e1.Value, e2.AddItem))
	require.NoError(t, patch.Connect(e1.DoubleValue, e2.AddItem))
	require.NoError(t, patch.DisconnectAll(e2.Node))
	require.NoError(t, patch.DisconnectAll(e2.Node))

	require.NoError(t, e2.SetValue.Set(3))
	assert.Equal(t, 2, value(t, e1.Value))
	require.NoError(t, e2.SetText.Set("3"))
	e2.Triggered = false
	require.NoError(t, e1.SetValue.Set(2))
	require.NoError(t, e1.SetText.Set("2"))
	assert.Equal(t, 3, value(t, e2.Value))
	assert.Equal(t, "3", text(t, e2.Text))
	assert.False(t, e2.Triggered)
	assert.Empty(t, e2.Data())
}

func TestDeactivate(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, e1.SetValue.Set(0))
	require.NoError(t, e2.SetValue.Set(1))
	require.NoError(t, patch.Deactivate(e1.Value))
	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	assert.Equal(t, 1, value(t, e2.Value))
	require.NoError(t, patch.Activate(e1.Value))
	assert.Equal(t, 1, value(t, e2.Value))

	require.NoError(t, patch.Connect(e1.Text, e2.SetText))
	require.NoError(t, e1.ComputeValueAndText.Set(2))
	require.NoError(t, patch.Deactivate(e1.Node))
	require.NoError(t, patch.Deactivate(e1.Node))
	require.NoError(t, e1.ComputeValueAndText.Set(3))
	assert.Equal(t, 2, value(t, e2.Value))
	require.NoError(t, patch.Activate(e1.Value))
	assert.Equal(t, 3, value(t, e2.Value))
	assert.Equal(t, "2", text(t, e2.Text))
	require.NoError(t, patch.Activate(e1.Node))
	assert.Equal(t, "3", text(t, e2.Text))
}

func TestDeactivateFinalState(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	require.NoError(t, patch.Deactivate(e1.Value))
	e2.Order = nil
	for i := 0; i < 5; i++ {
		require.NoError(t, e1.SetValue.Set(i))
	}
	assert.Empty(t, e2.Order)
	require.NoError(t, patch.Activate(e1.Value))
	assert.Equal(t, []string{"SetValue"}, e2.Order)
	assert.Equal(t, 4, value(t, e2.Value))
}

func TestDuplicateCalculation(t *testing.T) {
	_, e1, e2 := newExamples()
	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	require.NoError(t, patch.Connect(e1.Value, e2.SetNumber))
	require.NoError(t, patch.Connect(e2.Value, e1.SetValueNoUpdate))
	e2.History = nil
	require.NoError(t, e1.SetValue.Set(1))
	assert.Equal(t, []interface{}{1}, e2.History)

	require.NoError(t, patch.Deactivate(e1.Node))
	e2.History = nil
	require.NoError(t, e1.SetValue.Set(2))
	require.NoError(t, patch.Activate(e1.Node))
	assert.Equal(t, []interface{}{2}, e2.History)

	require.NoError(t, patch.DisconnectAll(e1.Node))
	require.NoError(t, patch.Connect(e1.Value, e2.AddItem))
	require.NoError(t, patch.Connect(e1.DoubleValue, e2.AddItem))
	require.NoError(t, patch.Connect(e2.Items, e1.TakeList))
	e2.History = nil
	require.NoError(t, e1.SetNumber.Set(3))
	assert.Equal(t, []interface{}{[]int{3, 6}}, e2.History)
}

func TestDiamond(t *testing.T) {
	g := patch.New(patch.WithLogger(log.Silent()))
	a := mock.NewExample(g, "A")
	b := mock.NewExample(g, "B")
	c := mock.NewExample(g, "C")
	d := mock.NewExample(g, "D")
	require.NoError(t, patch.Connect(a.Value, b.SetValue))
	require.NoError(t, patch.Connect(a.Value, c.SetValue))
	require.NoError(t, patch.Connect(b.Value, d.AddItem))
	require.NoError(t, patch.Connect(c.Value, d.AddItem))
	require.NoError(t, patch.Connect(d.Items, a.TakeList))

	for i := 1; i < 4; i++ {
		d.History = nil
		require.NoError(t, a.SetValue.Set(i))
		assert.Equal(t, []interface{}{[]int{i, i}}, d.History)
	}
}

func TestMetric(t *testing.T) {
	m, err := metric.New(prometheus.NewRegistry())
	require.NoError(t, err)
	g := patch.New(patch.WithLogger(log.Silent()), patch.WithMetric(m))
	e1 := mock.NewExample(g, "Example1")
	e2 := mock.NewExample(g, "Example2")

	require.NoError(t, patch.Connect(e1.Value, e2.SetValue))
	require.NoError(t, e1.SetValue.Set(1))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Calls("Example1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls("Example2")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Evaluations("Example1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Propagations("Example1")))
}

func TestDeclarationPanics(t *testing.T) {
	g := patch.New(patch.WithLogger(log.Silent()))
	e := mock.NewExample(g, "Example")
	n := g.Node("Other")
	assert.Panics(t, func() {
		patch.NewInput(n, "SetValue", func(int) error { return nil }, patch.Observe(e.Value))
	})
	assert.Panics(t, func() {
		patch.NewTrigger(n, "Trigger", nil)
	})
}
