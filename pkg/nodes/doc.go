// Package nodes contains the processing stages of a mango graph.
//
// Every node is pull-based: Pull asks the Source for the output of its
// upstream nodes, transforms it and returns a flow.Data. Nodes reference their
// inputs by id only; the graph that owns them resolves ids at pull time, so a
// removed upstream node shows up as a "No input" error instead of a dangling
// pointer.
package nodes
