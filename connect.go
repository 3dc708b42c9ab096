package patch

import (
	"fmt"
)

// Target is a node or a connector. It's used by functions which can be
// applied to all connectors of node at once.
type Target interface {
	targets() (*Graph, []ConnectorID, error)
}

func (c conn) targets() (*Graph, []ConnectorID, error) {
	if _, err := c.lookup(); err != nil {
		return nil, nil, err
	}
	return c.g, []ConnectorID{c.id}, nil
}

// Connect makes a connection between output and receiver. Current value of
// output is passed to the receiver immediately, unless receiver is a trigger
// or output is deactivated.
//
// Graph is not changed if connection fails.
func Connect(out Output, in Receiver) error {
	o, err := out.lookup()
	if err != nil {
		return err
	}
	r, err := in.self().lookup()
	if err != nil {
		return err
	}
	g := out.g
	if e := g.checkConnect(o, r, in.self().g); e != nil {
		return &ConnectionError{Op: "connect", Output: o.name, Receiver: r.name, Err: e}
	}
	o.edges = append(o.edges, r.id)
	r.edges = append(r.edges, o.id)
	g.log.Debug(fmt.Sprintf("%v: connected %s to %s", g, o.name, r.name))
	if r.kind == KindTrigger || !o.active {
		return nil
	}
	return g.push(o, r)
}

func (g *Graph) checkConnect(o, r *connector, rg *Graph) error {
	switch {
	case g != rg:
		return fmt.Errorf("connectors belong to different graphs: %w", ErrInvalidConnection)
	case !r.compatible(o):
		return fmt.Errorf("%v is not accepted: %w", o.types[0], ErrTypeMismatch)
	case o.hasEdge(r.id):
		return fmt.Errorf("connection already exists: %w", ErrInvalidConnection)
	case r.kind == KindInput && len(r.edges) > 0:
		return fmt.Errorf("input is already connected: %w", ErrInvalidConnection)
	case g.reaches(r, o.id):
		return fmt.Errorf("connection makes a loop: %w", ErrInvalidConnection)
	}
	return nil
}

// reaches checks if output is updated when receiver is called, directly or
// through connections.
func (g *Graph) reaches(r *connector, output ConnectorID) bool {
	visited := make(idSet)
	stack := append([]ConnectorID(nil), r.observers...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == output {
			return true
		}
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		o, ok := g.connectors[id]
		if !ok {
			continue
		}
		for _, rid := range o.edges {
			if next, ok := g.connectors[rid]; ok {
				stack = append(stack, next.observers...)
			}
		}
	}
	return false
}

// push passes current value of output to a single receiver.
func (g *Graph) push(o, r *connector) error {
	p := g.newPropagation(nil)
	if r.kind == KindMultiInput {
		p.wait(r.id, o.id)
	}
	p.announceReceiver(r)
	return p.forward(o, []ConnectorID{r.id})
}

// Disconnect removes connection between output and receiver. Values
// delivered to multi input through this connection are removed and
// its observers are updated.
func Disconnect(out Output, in Receiver) error {
	o, err := out.lookup()
	if err != nil {
		return err
	}
	r, err := in.self().lookup()
	if err != nil {
		return err
	}
	if out.g != in.self().g || !o.hasEdge(r.id) {
		return &ConnectionError{
			Op:       "disconnect",
			Output:   o.name,
			Receiver: r.name,
			Err:      fmt.Errorf("connection doesn't exist: %w", ErrInvalidConnection),
		}
	}
	return out.g.disconnect(o, r)
}

func (g *Graph) disconnect(o, r *connector) error {
	o.removeEdge(r.id)
	r.removeEdge(o.id)
	g.log.Debug(fmt.Sprintf("%v: disconnected %s from %s", g, o.name, r.name))
	if r.kind != KindMultiInput {
		return nil
	}
	id, ok := r.ids[o.id]
	if !ok {
		return nil
	}
	delete(r.ids, o.id)
	return g.newPropagation(nil).call(r, func() error {
		return r.remove(id)
	})
}

// DisconnectAll removes all connections of node or connector. It's safe
// to call it multiple times.
func DisconnectAll(t Target) error {
	g, ids, err := t.targets()
	if err != nil {
		return err
	}
	var errs errorList
	for _, id := range ids {
		c, ok := g.connectors[id]
		if !ok {
			continue
		}
		for _, eid := range append([]ConnectorID(nil), c.edges...) {
			e, ok := g.connectors[eid]
			if !ok {
				continue
			}
			if c.kind == KindOutput {
				err = g.disconnect(c, e)
			} else {
				err = g.disconnect(e, c)
			}
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs.ret()
}
