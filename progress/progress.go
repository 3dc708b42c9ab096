// Package progress tracks the progress of calculations in patch graphs.
//
// Indicator is attached to entry receivers. When an entry is called, the
// indicator counts executed steps of propagation. The number of expected
// steps is computed in advance by walking the graph from entries, so the
// progress reaches 100% exactly when the last step is done.
//
// Strategies differ only in the steps they count. All counts every step,
// Outputs counts only evaluated outputs and OutputsAndNonObservedInputs
// also counts receivers without observers, which otherwise don't result in
// any counted step.
package progress

import (
	"fmt"
	"math"

	"github.com/dudk/patch"
)

// Filter selects steps that are counted by indicator.
type Filter func(patch.Step) bool

// Progress is the value of indicator tuple output.
type Progress struct {
	Total   int
	Done    int
	Message string
}

// Indicator counts steps of propagation started by its entries. It's a
// node itself, so progress can be connected to other nodes.
type Indicator struct {
	node    *patch.Node
	filter  Filter
	entries []patch.Receiver

	expected map[patch.ConnectorID]struct{}
	finished map[patch.ConnectorID]struct{}
	message  string

	// ReportInput updates progress outputs.
	ReportInput  patch.Input
	AsTuple      patch.Output
	AsFloat      patch.Output
	AsPercentage patch.Output
}

// All counts all steps.
func All(g *patch.Graph, message string, entries ...patch.Receiver) (*Indicator, error) {
	return New(g, func(patch.Step) bool { return true }, message, entries...)
}

// Outputs counts only output evaluations.
func Outputs(g *patch.Graph, message string, entries ...patch.Receiver) (*Indicator, error) {
	return New(g, func(s patch.Step) bool {
		return s.Kind == patch.KindOutput
	}, message, entries...)
}

// OutputsAndNonObservedInputs counts output evaluations and calls of
// receivers without observers.
func OutputsAndNonObservedInputs(g *patch.Graph, message string, entries ...patch.Receiver) (*Indicator, error) {
	return New(g, func(s patch.Step) bool {
		return s.Kind == patch.KindOutput || !s.Observed
	}, message, entries...)
}

// New creates indicator with custom filter. Message is replaced with the
// name of last finished step, unless it's empty.
func New(g *patch.Graph, filter Filter, message string, entries ...patch.Receiver) (*Indicator, error) {
	i := &Indicator{
		node:     g.Node("ProgressIndicator"),
		filter:   filter,
		expected: make(map[patch.ConnectorID]struct{}),
		finished: make(map[patch.ConnectorID]struct{}),
		message:  message,
	}
	i.AsTuple = patch.NewOutput(i.node, "AsTuple", i.tuple, patch.Caching(false))
	i.AsFloat = patch.NewOutput(i.node, "AsFloat", func() (float64, error) {
		return i.Float(), nil
	}, patch.Caching(false))
	i.AsPercentage = patch.NewOutput(i.node, "AsPercentage", func() (int, error) {
		return i.Percentage(), nil
	}, patch.Caching(false))
	i.ReportInput = patch.NewInput(i.node, "Report", i.report,
		patch.Observe(i.AsTuple, i.AsFloat, i.AsPercentage),
	)
	for _, e := range entries {
		if err := i.AddEntry(e); err != nil {
			i.Destroy()
			return nil, err
		}
	}
	return i, nil
}

// AddEntry attaches indicator to receiver and adds the steps of its call
// to expected.
func (i *Indicator) AddEntry(r patch.Receiver) error {
	if g := i.node.Graph(); r.Graph() != g {
		return fmt.Errorf("%s doesn't belong to graph %s: %w", r.Name(), g.ID(), patch.ErrInvalidConnection)
	}
	err := patch.Walk(r, func(s patch.Step) {
		if i.filter(s) {
			i.expected[s.ID] = struct{}{}
		}
	})
	if err != nil {
		return err
	}
	if err := patch.AttachReporter(r, i); err != nil {
		return err
	}
	i.entries = append(i.entries, r)
	return nil
}

// Report counts executed step.
func (i *Indicator) Report(s patch.Step) error {
	return i.ReportInput.Set(s)
}

func (i *Indicator) report(s patch.Step) error {
	if !i.filter(s) {
		return nil
	}
	if _, ok := i.expected[s.ID]; !ok {
		return nil
	}
	if _, ok := i.finished[s.ID]; ok {
		return nil
	}
	i.finished[s.ID] = struct{}{}
	if i.message != "" {
		i.message = fmt.Sprintf("%s has just finished", s.Name)
	}
	return nil
}

func (i *Indicator) tuple() (Progress, error) {
	total, done, message := i.Tuple()
	return Progress{Total: total, Done: done, Message: message}, nil
}

// Tuple returns number of expected steps, number of finished steps and
// current message.
func (i *Indicator) Tuple() (int, int, string) {
	return len(i.expected), len(i.finished), i.message
}

// Float returns progress between 0 and 1.
func (i *Indicator) Float() float64 {
	if len(i.expected) == 0 {
		return 0
	}
	return float64(len(i.finished)) / float64(len(i.expected))
}

// Percentage returns progress between 0 and 100.
func (i *Indicator) Percentage() int {
	return int(math.Round(100 * i.Float()))
}

// Destroy detaches indicator from entries and removes its node from graph.
func (i *Indicator) Destroy() error {
	for _, e := range i.entries {
		patch.DetachReporter(e, i)
	}
	i.entries = nil
	return patch.Destroy(i.node)
}
