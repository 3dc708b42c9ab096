package patch

import (
	"fmt"
	"reflect"
)

// ConnectorID addresses a connector in the graph.
type ConnectorID int

// Kind of connector.
type Kind int

const (
	// KindOutput provides values of node.
	KindOutput Kind = iota
	// KindInput receives a single value.
	KindInput
	// KindTrigger receives a notification without value.
	KindTrigger
	// KindMultiInput receives values from many outputs.
	KindMultiInput
)

func (k Kind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindInput:
		return "input"
	case KindTrigger:
		return "trigger"
	case KindMultiInput:
		return "multi input"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type (
	// Connector is a typed call surface of node method.
	Connector interface {
		ID() ConnectorID
		Name() string
		Kind() Kind
		Graph() *Graph
		self() conn
	}

	// Receiver is a connector that can be fed by outputs: Input, Trigger
	// or MultiInput.
	Receiver interface {
		Connector
		receiver()
	}

	// Output provides a value computed by node.
	Output struct {
		conn
	}

	// Input receives a single value and updates its observers.
	Input struct {
		conn
	}

	// Trigger is an input without value.
	Trigger struct {
		conn
	}

	// MultiInput receives values from any number of outputs. Every value
	// is addressed by id returned from Add.
	MultiInput struct {
		conn
	}
)

// conn is a reference to connector in graph.
type conn struct {
	g  *Graph
	id ConnectorID
}

// ID returns id of connector in its graph.
func (c conn) ID() ConnectorID {
	return c.id
}

// Name returns name of connector in form "node.method". Empty string is
// returned for destroyed connectors.
func (c conn) Name() string {
	if cr, err := c.lookup(); err == nil {
		return cr.name
	}
	return ""
}

// Graph returns the graph of connector.
func (c conn) Graph() *Graph {
	return c.g
}

func (c conn) self() conn {
	return c
}

func (c conn) String() string {
	return c.Name()
}

// lookup returns the connector record or ErrDestroyed.
func (c conn) lookup() (*connector, error) {
	if c.g == nil {
		return nil, ErrDestroyed
	}
	if cr, ok := c.g.connectors[c.id]; ok {
		return cr, nil
	}
	return nil, ErrDestroyed
}

// Kind returns KindOutput.
func (Output) Kind() Kind { return KindOutput }

// Kind returns KindInput.
func (Input) Kind() Kind { return KindInput }

// Kind returns KindTrigger.
func (Trigger) Kind() Kind { return KindTrigger }

// Kind returns KindMultiInput.
func (MultiInput) Kind() Kind { return KindMultiInput }

func (Input) receiver()      {}
func (Trigger) receiver()    {}
func (MultiInput) receiver() {}

// connector is a record in the graph arena. Edges, observers and owner
// node are stored as ids, the record never points to other records.
type connector struct {
	id        ConnectorID
	node      string
	nodeName  string
	name      string
	kind      Kind
	types     []reflect.Type
	observers []ConnectorID
	// observe holds observers until they are resolved by declare.
	observe []conn

	caching    bool
	cachingSet bool
	active     bool
	// changed is set when a deactivated output misses an update.
	changed bool
	valid   bool
	cache   interface{}

	edges []ConnectorID
	// ids are multi input ids of values delivered by connected outputs.
	ids      map[ConnectorID]int
	reporter Reporter

	get     func() (interface{}, error)
	set     func(interface{}) error
	fire    func() error
	add     func(interface{}) (int, error)
	remove  func(int) error
	replace func(int, interface{}) error
}

// handle returns public handle of the connector.
func (c *connector) handle(g *Graph) Connector {
	ref := conn{g: g, id: c.id}
	switch c.kind {
	case KindOutput:
		return Output{ref}
	case KindInput:
		return Input{ref}
	case KindTrigger:
		return Trigger{ref}
	default:
		return MultiInput{ref}
	}
}

// accepts checks if value can be passed to the connector.
func (c *connector) accepts(v interface{}) bool {
	if v == nil {
		for _, t := range c.types {
			if nillable(t) {
				return true
			}
		}
		return false
	}
	vt := reflect.TypeOf(v)
	for _, t := range c.types {
		if vt.AssignableTo(t) {
			return true
		}
	}
	return false
}

// compatible checks if output type can be delivered to the connector.
func (c *connector) compatible(out *connector) bool {
	if c.kind == KindTrigger {
		return true
	}
	ot := out.types[0]
	for _, t := range c.types {
		if ot.AssignableTo(t) {
			return true
		}
	}
	return false
}

// hasEdge checks if id is in edges.
func (c *connector) hasEdge(id ConnectorID) bool {
	return indexOf(c.edges, id) != -1
}

func (c *connector) removeEdge(id ConnectorID) {
	if i := indexOf(c.edges, id); i != -1 {
		c.edges = append(c.edges[:i], c.edges[i+1:]...)
	}
}

func indexOf(ids []ConnectorID, id ConnectorID) int {
	for i := range ids {
		if ids[i] == id {
			return i
		}
	}
	return -1
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// TypeOf returns reflect type of T. It's useful to declare interface types
// with Accept option.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// as converts value to T. Values of other types are converted when
// possible, zero value is returned otherwise.
func as[T any](v interface{}) T {
	if t, ok := v.(T); ok {
		return t
	}
	var t T
	if v == nil {
		return t
	}
	rv := reflect.ValueOf(v)
	tt := TypeOf[T]()
	if rv.Type().ConvertibleTo(tt) {
		reflect.ValueOf(&t).Elem().Set(rv.Convert(tt))
	}
	return t
}

// ConnectorOption configures declared connector.
type ConnectorOption func(*connector)

// Caching sets if output memoizes its value until one of its inputs
// changes. Default value is taken from graph config.
func Caching(enabled bool) ConnectorOption {
	return func(c *connector) {
		c.caching = enabled
		c.cachingSet = true
	}
}

// Observe declares outputs of the same node that are affected when the
// receiver is called. Observers are updated in the provided order.
func Observe(outputs ...Output) ConnectorOption {
	return func(c *connector) {
		for _, o := range outputs {
			c.observe = append(c.observe, o.conn)
		}
	}
}

// Accept replaces the accepted type of input with a set of types.
func Accept(types ...reflect.Type) ConnectorOption {
	return func(c *connector) {
		c.types = types
	}
}

// ReplaceWith provides an optional replace method of multi input. Without
// it the value delivered through connection is removed and added again.
func ReplaceWith[T any](fn func(int, T) error) ConnectorOption {
	return func(c *connector) {
		c.replace = func(id int, v interface{}) error {
			return fn(id, as[T](v))
		}
	}
}

// NewOutput declares output of node. fn is called every time the value is
// requested and the cache is not valid.
func NewOutput[T any](n *Node, name string, fn func() (T, error), options ...ConnectorOption) Output {
	mustFunc(n, name, fn == nil)
	c := &connector{
		kind:  KindOutput,
		types: []reflect.Type{TypeOf[T]()},
		get: func() (interface{}, error) {
			return fn()
		},
	}
	return Output{n.declare(c, name, options)}
}

// NewInput declares input of node.
func NewInput[T any](n *Node, name string, fn func(T) error, options ...ConnectorOption) Input {
	mustFunc(n, name, fn == nil)
	c := &connector{
		kind:  KindInput,
		types: []reflect.Type{TypeOf[T]()},
		set: func(v interface{}) error {
			return fn(as[T](v))
		},
	}
	return Input{n.declare(c, name, options)}
}

// NewTrigger declares trigger of node.
func NewTrigger(n *Node, name string, fn func() error, options ...ConnectorOption) Trigger {
	mustFunc(n, name, fn == nil)
	c := &connector{
		kind: KindTrigger,
		fire: fn,
	}
	return Trigger{n.declare(c, name, options)}
}

// NewMultiInput declares multi input of node. add must return id of added
// value, remove is called with that id when the value is removed.
func NewMultiInput[T any](n *Node, name string, add func(T) (int, error), remove func(int) error, options ...ConnectorOption) MultiInput {
	mustFunc(n, name, add == nil || remove == nil)
	c := &connector{
		kind:  KindMultiInput,
		types: []reflect.Type{TypeOf[T]()},
		ids:   make(map[ConnectorID]int),
		add: func(v interface{}) (int, error) {
			return add(as[T](v))
		},
		remove: remove,
	}
	return MultiInput{n.declare(c, name, options)}
}

func mustFunc(n *Node, name string, missing bool) {
	if missing {
		panic(fmt.Sprintf("%s.%s: function is not provided", n.name, name))
	}
}

// declare applies options, resolves observers and adds connector into
// graph arena.
func (n *Node) declare(c *connector, name string, options []ConnectorOption) conn {
	g := n.g
	if n.destroyed {
		panic(fmt.Sprintf("%s.%s: %v", n.name, name, ErrDestroyed))
	}
	c.node = n.uid
	c.nodeName = n.name
	c.name = n.name + "." + name
	c.active = true
	for _, option := range options {
		option(c)
	}
	if !c.cachingSet {
		c.caching = g.caching
	}
	if c.kind == KindOutput && len(c.observe) > 0 {
		panic(fmt.Sprintf("%s: outputs cannot have observers", c.name))
	}
	for _, o := range c.observe {
		oc, err := o.lookup()
		if err != nil || o.g != g || oc.node != n.uid {
			panic(fmt.Sprintf("%s: observer must be an output of %s", c.name, n.name))
		}
		if indexOf(c.observers, o.id) == -1 {
			c.observers = append(c.observers, o.id)
		}
	}
	c.observe = nil
	c.id = g.next
	g.next++
	g.connectors[c.id] = c
	n.connectors = append(n.connectors, c.id)
	return conn{g: g, id: c.id}
}
