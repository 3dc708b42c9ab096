package patch

type idSet map[ConnectorID]struct{}

// propagation holds the state of a single external call. Every call that
// changes node state creates a new propagation, so nested calls don't share
// their state.
//
// Propagation runs in two phases. First, the called receiver announces the
// change to its observers and every active output announces it to its
// connected receivers. Then the wrapped method is executed and its
// observers report the change. An output is updated only when all
// connectors that announced a change to it have reported, so it fires once
// even if it's reachable through multiple paths.
type propagation struct {
	g        *Graph
	reporter Reporter
	// pending holds connectors which announced a change to the key.
	pending   map[ConnectorID]idSet
	announced idSet
	fired     idSet
}

func (g *Graph) newPropagation(reporter Reporter) *propagation {
	return &propagation{
		g:         g,
		reporter:  reporter,
		pending:   make(map[ConnectorID]idSet),
		announced: make(idSet),
		fired:     make(idSet),
	}
}

// call executes a receiver method with attached reporter. Reporter is
// detached after the call.
func (g *Graph) call(r *connector, fn func() error) error {
	p := g.newPropagation(r.reporter)
	r.reporter = nil
	return p.call(r, fn)
}

// call announces the change of r, executes fn and updates observers.
func (p *propagation) call(r *connector, fn func() error) error {
	p.announceReceiver(r)
	if err := fn(); err != nil {
		return err
	}
	return p.report(r)
}

// wait records that from announced a change to id.
func (p *propagation) wait(id, from ConnectorID) {
	s, ok := p.pending[id]
	if !ok {
		s = make(idSet)
		p.pending[id] = s
	}
	s[from] = struct{}{}
}

// done removes from of pending announcers of id and returns true if
// nothing else is pending.
func (p *propagation) done(id, from ConnectorID) bool {
	s, ok := p.pending[id]
	if !ok {
		return true
	}
	delete(s, from)
	return len(s) == 0
}

func (p *propagation) announceReceiver(r *connector) {
	if _, ok := p.announced[r.id]; ok {
		return
	}
	p.announced[r.id] = struct{}{}
	for _, id := range r.observers {
		if o, ok := p.g.connectors[id]; ok {
			p.announceOutput(o, r.id)
		}
	}
}

func (p *propagation) announceOutput(o *connector, from ConnectorID) {
	p.wait(o.id, from)
	if _, ok := p.announced[o.id]; ok {
		return
	}
	p.announced[o.id] = struct{}{}
	if !o.active {
		return
	}
	for _, id := range o.edges {
		r, ok := p.g.connectors[id]
		if !ok {
			continue
		}
		// inputs have a single upstream, no need to wait
		if r.kind != KindInput {
			p.wait(r.id, o.id)
		}
		p.announceReceiver(r)
	}
}

// report is called when receiver method is executed.
func (p *propagation) report(r *connector) error {
	p.g.metric.Call(r.nodeName)
	if err := p.step(r); err != nil {
		return err
	}
	for _, id := range r.observers {
		o, ok := p.g.connectors[id]
		if !ok {
			continue
		}
		if err := p.outputChanged(o, r.id); err != nil {
			return err
		}
	}
	return nil
}

func (p *propagation) outputChanged(o *connector, from ConnectorID) error {
	if !p.done(o.id, from) {
		return nil
	}
	if _, ok := p.fired[o.id]; ok {
		return nil
	}
	p.fired[o.id] = struct{}{}
	o.valid = false
	o.cache = nil
	if !o.active {
		o.changed = true
		return nil
	}
	return p.forward(o, o.edges)
}

// forward delivers output value to provided receivers. Output is evaluated
// only if a receiver needs its value.
func (p *propagation) forward(o *connector, edges []ConnectorID) error {
	o.changed = false
	edges = append([]ConnectorID(nil), edges...)
	var (
		value     interface{}
		evaluated bool
	)
	for _, id := range edges {
		r, ok := p.g.connectors[id]
		// connection could be removed by one of previous receivers
		if !ok || !o.hasEdge(id) {
			continue
		}
		if r.kind == KindTrigger {
			if !p.done(r.id, o.id) {
				continue
			}
			if err := r.fire(); err != nil {
				return err
			}
			if err := p.report(r); err != nil {
				return err
			}
			continue
		}
		if !evaluated {
			v, err := p.g.evaluate(o)
			if err != nil {
				return err
			}
			value, evaluated = v, true
			if err := p.step(o); err != nil {
				return err
			}
		}
		p.g.metric.Propagation(o.nodeName)
		switch r.kind {
		case KindInput:
			if err := r.set(value); err != nil {
				return err
			}
		case KindMultiInput:
			if err := r.store(o.id, value); err != nil {
				return err
			}
			if !p.done(r.id, o.id) {
				continue
			}
		}
		if err := p.report(r); err != nil {
			return err
		}
	}
	return nil
}

// step passes executed connector to reporter.
func (p *propagation) step(c *connector) error {
	if p.reporter == nil {
		return nil
	}
	return p.reporter.Report(c.step())
}

// evaluate returns the value of output. Errors are not cached.
func (g *Graph) evaluate(o *connector) (interface{}, error) {
	if o.caching && o.valid {
		return o.cache, nil
	}
	v, err := o.get()
	if err != nil {
		return nil, err
	}
	g.metric.Evaluation(o.nodeName)
	if o.caching {
		o.cache, o.valid = v, true
	}
	return v, nil
}

// store delivers the value of connected output to multi input. The value
// previously delivered by the same output is replaced.
func (c *connector) store(from ConnectorID, value interface{}) error {
	if id, ok := c.ids[from]; ok {
		if c.replace != nil {
			return c.replace(id, value)
		}
		if err := c.remove(id); err != nil {
			return err
		}
		delete(c.ids, from)
	}
	id, err := c.add(value)
	if err != nil {
		return err
	}
	c.ids[from] = id
	return nil
}
