package patch

import (
	"fmt"
)

// Destroy disconnects all connectors of node and removes them from graph.
// Node methods are not referenced by graph after this call. Handles of
// destroyed connectors return ErrDestroyed.
func Destroy(n *Node) error {
	if n.destroyed {
		return nil
	}
	err := DisconnectAll(n)
	g := n.g
	for _, id := range n.connectors {
		delete(g.connectors, id)
	}
	n.connectors = nil
	n.destroyed = true
	g.log.Debug(fmt.Sprintf("%v: node %s destroyed", g, n.name))
	return err
}
