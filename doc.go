/*
Package patch allows to wire DSP nodes into live computation graphs.

Concept

Nodes are ordinary structures. Their methods are exposed to the graph as
connectors of four kinds:

    Output - provides a value computed by node;
    Input - receives a single value;
    Trigger - receives a notification without value;
    MultiInput - receives values from any number of outputs.

Receivers declare outputs of the same node which are affected when the
receiver is called. These outputs are called observers. When a receiver is
called, its observers pass new values to all connected receivers and so on
down the graph.

It implies the following constraints:

    Input has at most one connected output;
    Output can be connected to any number of receivers;
    Connection can't make a loop.

Declaration

Connectors are declared when node is constructed:

    g := patch.New()
    n := g.Node("Gain")
    out := patch.NewOutput(n, "Output", gain.output)
    in := patch.NewInput(n, "SetInput", gain.setInput, patch.Observe(out))

Connections

Connect passes the current value of output to the receiver immediately.
After that every change is passed automatically:

    err := patch.Connect(generator.Signal, gain.SetInput)

Every output is updated at most once per call, even if it's reachable
through multiple paths. Observers are updated in declaration order and
receivers are updated in connection order.

Batches

Deactivate suppresses updates of outputs and Activate passes the latest
state once. SetMultipleValues applies several calls this way, so connected
nodes never see intermediate states.

Teardown

Destroy removes all connections of node and its connectors from graph.
Graph never references nodes after that.

Graph is not safe for concurrent use.
*/
package patch
