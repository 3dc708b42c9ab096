package patch

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/dudk/patch/config"
	"github.com/dudk/patch/log"
	"github.com/dudk/patch/metric"
)

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// Graph owns connectors of all its nodes. Connectors are addressed by
// ConnectorID and connections are stored as ordered id lists, so the graph
// is the only owner of connector state.
//
// Graph is not safe for concurrent use. All calls, including propagation,
// must be made by a single goroutine.
type Graph struct {
	uid        string
	connectors map[ConnectorID]*connector
	next       ConnectorID
	caching    bool
	debug      bool
	metric     *metric.Metric
	log        log.Logger
}

// New creates a new graph and applies provided options.
func New(options ...Option) *Graph {
	g := &Graph{
		uid:        newUID(),
		connectors: make(map[ConnectorID]*connector),
		caching:    config.Default().Caching,
		log:        log.GetLogger(),
	}
	for _, option := range options {
		option(g)
	}
	if g.debug {
		log.EnableDebug(g.log)
	}
	return g
}

// ID returns unique id of the graph.
func (g *Graph) ID() string {
	return g.uid
}

// Len returns number of live connectors in the graph.
func (g *Graph) Len() int {
	return len(g.connectors)
}

func (g *Graph) String() string {
	return fmt.Sprintf("graph %s", g.uid)
}

// Node is an owner of connectors. Nodes are created by graph and their
// connectors are declared with NewOutput, NewInput, NewTrigger and
// NewMultiInput.
type Node struct {
	g          *Graph
	uid        string
	name       string
	connectors []ConnectorID
	destroyed  bool
}

// Node creates a new node in the graph. Name is used as a prefix of
// connector names.
func (g *Graph) Node(name string) *Node {
	n := &Node{
		g:    g,
		uid:  newUID(),
		name: name,
	}
	g.log.Debug(fmt.Sprintf("%v: node %s created with id %s", g, name, n.uid))
	return n
}

// ID returns unique id of the node.
func (n *Node) ID() string {
	return n.uid
}

// Name returns name of the node.
func (n *Node) Name() string {
	return n.name
}

// Graph returns the graph node belongs to.
func (n *Node) Graph() *Graph {
	return n.g
}

// Connectors returns connectors of the node in declaration order.
func (n *Node) Connectors() []Connector {
	result := make([]Connector, 0, len(n.connectors))
	for _, id := range n.connectors {
		if c, ok := n.g.connectors[id]; ok {
			result = append(result, c.handle(n.g))
		}
	}
	return result
}

// Outputs returns outputs of the node in declaration order.
func (n *Node) Outputs() []Output {
	var result []Output
	for _, id := range n.connectors {
		if c, ok := n.g.connectors[id]; ok && c.kind == KindOutput {
			result = append(result, Output{conn{g: n.g, id: id}})
		}
	}
	return result
}

func (n *Node) targets() (*Graph, []ConnectorID, error) {
	ids := make([]ConnectorID, len(n.connectors))
	copy(ids, n.connectors)
	return n.g, ids, nil
}

func (n *Node) String() string {
	return n.name
}
