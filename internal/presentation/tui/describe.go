package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/slipstream/mango"
	"github.com/slipstream/mango/internal/presentation/diagram"
	"github.com/slipstream/mango/pkg/nodes"
)

// DescribeGraph renders a markdown report of the graph held by ed: its
// nodes with their attributes and evaluated output, then its diagram.
func DescribeGraph(name string, ed *mango.Editor) string {
	g := ed.Graph()
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)

	all := g.Nodes()
	if len(all) == 0 {
		sb.WriteString("_Empty graph._\n")
		return sb.String()
	}

	var failed []int64
	sb.WriteString("| ID | Type | Label | Attributes | Output |\n")
	sb.WriteString("|---:|------|-------|------------|--------|\n")
	for _, n := range all {
		label := ""
		if gui, ok := g.GUI(n.ID()); ok {
			label = gui.Label
		}
		out := "_not evaluated_"
		if n.Type() != nodes.TypeStandardIn && n.Type() != nodes.TypeStandardOut {
			d := ed.Pull(n.ID())
			if d.IsError() {
				failed = append(failed, n.ID())
			}
			out = "`" + d.String() + "`"
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s |\n",
			n.ID(), n.Type(), cell(label), cell(attributes(n.Spec())), strings.ReplaceAll(out, "|", "\\|"))
	}

	conns := g.Connections()
	fmt.Fprintf(&sb, "\n%d nodes, %d connections, terminals: %v\n", len(all), len(conns), g.Terminals())

	overlay := &diagram.Overlay{Failed: failed}
	overlay.Selected, overlay.HasSelected = ed.Selected()
	sb.WriteString("\n```mermaid\n")
	sb.WriteString(diagram.GenerateMermaid(g, overlay))
	sb.WriteString("```\n")
	return sb.String()
}

func attributes(spec nodes.Spec) string {
	parts := make([]string, 0, len(spec.Attributes))
	for _, a := range spec.Attributes {
		parts = append(parts, fmt.Sprintf("%s=%v", a.Name, a.Value()))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
