// Package mock provides mock nodes and allows to execute integration tests.
package mock

import (
	"strconv"

	"github.com/dudk/patch"
	"github.com/dudk/patch/multiinput"
)

// Example is a node with connectors of all kinds. It records calls of its
// methods, so tests can check the order and the number of executions.
type Example struct {
	Node *patch.Node

	// Value is not caching and records every evaluation in History.
	Value       patch.Output
	DoubleValue patch.Output
	Float       patch.Output
	Text        patch.Output
	// Items records every evaluation in History.
	Items patch.Output

	SetValue            patch.Input
	SetNumber           patch.Input
	SetValueNoUpdate    patch.Input
	SetText             patch.Input
	ComputeValueAndText patch.Input
	TakeList            patch.Input
	Trigger             patch.Trigger
	AddItem             patch.MultiInput
	AddItemReplace      patch.MultiInput

	Triggered bool
	Order     []string
	History   []interface{}
	// ErrorOnCall is returned by SetValueNoUpdate and Trigger.
	ErrorOnCall error

	value int
	text  string
	items multiinput.Store[int]
}

// NewExample declares example node in graph.
func NewExample(g *patch.Graph, name string) *Example {
	e := &Example{Node: g.Node(name)}
	n := e.Node
	e.Value = patch.NewOutput(n, "Value", e.getValue, patch.Caching(false))
	e.DoubleValue = patch.NewOutput(n, "DoubleValue", e.getDoubleValue, patch.Caching(true))
	e.Float = patch.NewOutput(n, "Float", e.getFloat)
	e.Text = patch.NewOutput(n, "Text", e.getText, patch.Caching(false))
	e.Items = patch.NewOutput(n, "Items", e.getItems)

	e.SetValue = patch.NewInput(n, "SetValue", e.setValue, patch.Observe(e.Value))
	e.SetNumber = patch.NewInput(n, "SetNumber", e.setNumber,
		patch.Accept(patch.TypeOf[int](), patch.TypeOf[float64]()),
		patch.Observe(e.Value, e.DoubleValue),
	)
	e.SetValueNoUpdate = patch.NewInput(n, "SetValueNoUpdate", e.setValueNoUpdate)
	e.SetText = patch.NewInput(n, "SetText", e.setText)
	e.ComputeValueAndText = patch.NewInput(n, "ComputeValueAndText", e.computeValueAndText, patch.Observe(e.Value, e.Text))
	e.TakeList = patch.NewInput(n, "TakeList", func([]int) error { return nil })
	e.Trigger = patch.NewTrigger(n, "Trigger", e.trigger)
	e.AddItem = patch.NewMultiInput(n, "AddItem", e.addItem, e.items.Remove, patch.Observe(e.Items))
	e.AddItemReplace = patch.NewMultiInput(n, "AddItemReplace", e.addItem, e.items.Remove,
		patch.ReplaceWith(e.items.Replace),
		patch.Observe(e.Items),
	)
	return e
}

// Data returns current items without evaluation of output.
func (e *Example) Data() []int {
	return e.items.Data()
}

func (e *Example) getValue() (int, error) {
	e.History = append(e.History, e.value)
	return e.value, nil
}

func (e *Example) getDoubleValue() (int, error) {
	return 2 * e.value, nil
}

func (e *Example) getFloat() (float64, error) {
	return float64(e.value) + 0.5, nil
}

func (e *Example) getText() (string, error) {
	return e.text, nil
}

func (e *Example) getItems() ([]int, error) {
	items := e.items.Data()
	e.History = append(e.History, items)
	return items, nil
}

func (e *Example) setValue(v int) error {
	e.value = v
	e.Order = append(e.Order, "SetValue")
	return nil
}

func (e *Example) setNumber(v float64) error {
	e.value = int(v)
	e.Order = append(e.Order, "SetNumber")
	return nil
}

func (e *Example) setValueNoUpdate(v int) error {
	if e.ErrorOnCall != nil {
		return e.ErrorOnCall
	}
	e.value = v
	e.Order = append(e.Order, "SetValueNoUpdate")
	return nil
}

func (e *Example) setText(s string) error {
	e.text = s
	return nil
}

func (e *Example) computeValueAndText(v int) error {
	e.value = v
	e.text = strconv.Itoa(v)
	return nil
}

func (e *Example) trigger() error {
	if e.ErrorOnCall != nil {
		return e.ErrorOnCall
	}
	e.Triggered = true
	return nil
}

func (e *Example) addItem(v int) (int, error) {
	return e.items.Add(v), nil
}
