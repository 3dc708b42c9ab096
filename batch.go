package patch

import (
	"fmt"
	"reflect"
)

// Call is a single call of SetMultipleValues. Triggers take no arguments,
// inputs and multi inputs take a single value.
type Call struct {
	Target Receiver
	Args   []interface{}
}

// Deactivate stops outputs from passing values to connected receivers.
// Target is an output or a node, in which case all its outputs are
// deactivated. Cached values are kept.
func Deactivate(t Target) error {
	g, ids, err := t.targets()
	if err != nil {
		return err
	}
	outputs := g.outputs(ids)
	for _, o := range outputs {
		o.active = false
	}
	g.log.Debug(fmt.Sprintf("%v: deactivated %d outputs", g, len(outputs)))
	return nil
}

// Activate enables outputs deactivated by Deactivate. Outputs that changed
// while deactivated pass their latest value once. All outputs are updated
// in a single propagation.
func Activate(t Target) error {
	g, ids, err := t.targets()
	if err != nil {
		return err
	}
	return g.activate(g.outputs(ids), nil)
}

func (g *Graph) activate(outputs []*connector, reporter Reporter) error {
	var changed []*connector
	for _, o := range outputs {
		if o.active {
			continue
		}
		o.active = true
		if o.changed {
			changed = append(changed, o)
		}
	}
	g.log.Debug(fmt.Sprintf("%v: activated %d outputs, %d changed", g, len(outputs), len(changed)))
	p := g.newPropagation(reporter)
	// output announces to itself, so every changed output has pending
	// announcer until it's updated
	for _, o := range changed {
		p.announceOutput(o, o.id)
	}
	for _, o := range changed {
		if err := p.outputChanged(o, o.id); err != nil {
			return err
		}
	}
	return nil
}

// outputs returns output connectors with provided ids.
func (g *Graph) outputs(ids []ConnectorID) []*connector {
	var result []*connector
	for _, id := range ids {
		if c, ok := g.connectors[id]; ok && c.kind == KindOutput {
			result = append(result, c)
		}
	}
	return result
}

// SetMultipleValues applies calls with observers of called connectors
// deactivated. Observers are activated after the last call, so connected
// receivers get only the final state. Reporter gets the steps of all calls.
// If reporter is nil, every call reports to the reporter attached to its
// target, and steps of observers go to all of them.
//
// All calls are validated before the first one is applied. Observers are
// activated even if one of the calls fails, calls applied before the failure
// are not rolled back.
func SetMultipleValues(calls []Call, reporter Reporter) error {
	if len(calls) == 0 {
		return nil
	}
	var g *Graph
	receivers := make([]*connector, 0, len(calls))
	for _, call := range calls {
		if call.Target == nil {
			return fmt.Errorf("call without target: %w", ErrInvalidConnection)
		}
		ref := call.Target.self()
		c, err := ref.lookup()
		if err != nil {
			return err
		}
		if g == nil {
			g = ref.g
		} else if g != ref.g {
			return fmt.Errorf("%s belongs to different graph: %w", c.name, ErrInvalidConnection)
		}
		if err := checkArgs(c, call.Args); err != nil {
			return err
		}
		receivers = append(receivers, c)
	}

	var outputs []*connector
	seen := make(idSet)
	for _, c := range receivers {
		for _, id := range c.observers {
			o, ok := g.connectors[id]
			if !ok || !o.active {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			outputs = append(outputs, o)
		}
	}
	for _, o := range outputs {
		o.active = false
	}

	// observer steps go to every reporter attached to targets
	activation := reporter
	if activation == nil {
		activation = attached(receivers)
	}
	var err error
	for i, c := range receivers {
		if err = g.apply(c, calls[i].Args, reporter); err != nil {
			break
		}
	}
	if aerr := g.activate(outputs, activation); err == nil {
		err = aerr
	}
	return err
}

// reporters passes steps to multiple reporters.
type reporters []Reporter

func (rs reporters) Report(s Step) error {
	for _, r := range rs {
		if err := r.Report(s); err != nil {
			return err
		}
	}
	return nil
}

// attached returns reporters attached to receivers, each one once.
func attached(receivers []*connector) Reporter {
	var rs reporters
	for _, c := range receivers {
		if c.reporter == nil || containsReporter(rs, c.reporter) {
			continue
		}
		rs = append(rs, c.reporter)
	}
	switch len(rs) {
	case 0:
		return nil
	case 1:
		return rs[0]
	}
	return rs
}

func containsReporter(rs reporters, r Reporter) bool {
	if !reflect.TypeOf(r).Comparable() {
		return false
	}
	for _, v := range rs {
		if reflect.TypeOf(v) == reflect.TypeOf(r) && v == r {
			return true
		}
	}
	return false
}

func checkArgs(c *connector, args []interface{}) error {
	want := 1
	if c.kind == KindTrigger {
		want = 0
	}
	if len(args) != want {
		return fmt.Errorf("%s takes %d arguments, got %d: %w", c.name, want, len(args), ErrTypeMismatch)
	}
	if want == 1 && !c.accepts(args[0]) {
		return typeMismatch(c, args[0])
	}
	return nil
}

// apply calls receiver with validated arguments.
func (g *Graph) apply(c *connector, args []interface{}, reporter Reporter) error {
	if reporter == nil {
		reporter = c.reporter
	}
	c.reporter = nil
	p := g.newPropagation(reporter)
	switch c.kind {
	case KindTrigger:
		return p.call(c, c.fire)
	case KindInput:
		return p.call(c, func() error {
			return c.set(args[0])
		})
	default:
		return p.call(c, func() error {
			_, err := c.add(args[0])
			return err
		})
	}
}
