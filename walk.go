package patch

// Step is a connector executed during propagation: a called receiver or an
// evaluated output.
type Step struct {
	ID   ConnectorID
	Name string
	Kind Kind
	// Observed is true for receivers with declared observers.
	Observed bool
}

// Reporter receives steps of propagation.
type Reporter interface {
	Report(Step) error
}

func (c *connector) step() Step {
	return Step{
		ID:       c.id,
		Name:     c.name,
		Kind:     c.kind,
		Observed: len(c.observers) > 0,
	}
}

// AttachReporter attaches reporter to receiver. Reporter gets the steps of
// the next call of receiver and is detached after it.
func AttachReporter(r Receiver, reporter Reporter) error {
	c, err := r.self().lookup()
	if err != nil {
		return err
	}
	c.reporter = reporter
	return nil
}

// DetachReporter detaches reporter if it's still attached to receiver.
func DetachReporter(r Receiver, reporter Reporter) {
	if c, err := r.self().lookup(); err == nil && c.reporter == reporter {
		c.reporter = nil
	}
}

// Walk visits steps that would be executed if receiver is called with
// current connections. Every step is visited once. Deactivated outputs
// stop the walk and outputs connected only to triggers are not visited,
// because they aren't evaluated.
func Walk(r Receiver, fn func(Step)) error {
	c, err := r.self().lookup()
	if err != nil {
		return err
	}
	g := r.self().g
	visited := make(idSet)
	g.walkReceiver(c, visited, fn)
	return nil
}

func (g *Graph) walkReceiver(r *connector, visited idSet, fn func(Step)) {
	if _, ok := visited[r.id]; ok {
		return
	}
	visited[r.id] = struct{}{}
	fn(r.step())
	for _, id := range r.observers {
		o, ok := g.connectors[id]
		if !ok || !o.active {
			continue
		}
		if _, ok := visited[o.id]; ok {
			continue
		}
		visited[o.id] = struct{}{}
		for _, eid := range o.edges {
			if e, ok := g.connectors[eid]; ok && e.kind != KindTrigger {
				fn(o.step())
				break
			}
		}
		for _, eid := range o.edges {
			if e, ok := g.connectors[eid]; ok {
				g.walkReceiver(e, visited, fn)
			}
		}
	}
}
