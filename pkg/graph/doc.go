// Package graph is the store of a mango session: the node arena keyed by id,
// the connection records keyed by (from, to), and the GUI twin of each node.
//
// Node inputs and connection records are two views of the same wiring. The
// store keeps them side by side but does not synchronise them on its own;
// the commands package is the only mutation path that updates both.
package graph
