/*
Package mango is a pull-based node-graph editor core for small text and JSON
processing pipelines.

A graph is a set of typed nodes (standard-in, lines, to-int, sum,
json-parse and friends) wired output to input. Nothing is computed until a
node is pulled: the pulled node pulls its inputs, which pull theirs, and the
resulting value flows back as a flow.Data.

# Concept

Every mutation of the graph is a command from pkg/commands, so each edit can
be undone and redone. The Editor type bundles the graph store, the build
registry, the undo history and the current selection into one session.
Graphs persist as YAML documents (pkg/codec).

# Usage

	ed := mango.New(mango.WithStdin(strings.NewReader("1\n2\n3\n")))
	in, _ := ed.AddNode("standard-in", "", 0, 0)
	_, _ = ed.Insert(commands.After, "lines")
	_, _ = ed.Insert(commands.After, "to-int")
	sum, _ := ed.Insert(commands.After, "sum")
	fmt.Println(ed.Pull(sum)) // Int(6)
	_ = in

# Batch mode

Runner pulls every terminal node (a node with no outgoing connection) in
ascending id order, which is what `mango run <file>` does.
*/
package mango
