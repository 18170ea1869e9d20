package diagram

import (
	"fmt"
	"strings"

	"github.com/slipstream/mango/pkg/graph"
	"github.com/slipstream/mango/pkg/nodes"
)

// Overlay contains evaluation state to visualize on the diagram.
type Overlay struct {
	Selected    int64
	HasSelected bool
	Failed      []int64
}

// slotNames labels the inputs of multi-input nodes.
var slotNames = map[string]map[int]string{
	nodes.TypeJSONObject: {nodes.SlotKeys: "keys", nodes.SlotValues: "values"},
}

// GenerateMermaid produces a Mermaid flowchart of g.
// Shapes follow the role of a node:
// - Source (standard-in): ((Circle))
// - Sink (standard-out): [/Parallelogram/]
// - Multi-input: [[Subroutine]]
// - Default: [Rectangle]
func GenerateMermaid(g *graph.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, n := range g.Nodes() {
		opener, closer := "[", "]"
		switch {
		case n.Type() == nodes.TypeStandardIn:
			opener, closer = "((", "))"
		case n.Type() == nodes.TypeStandardOut:
			opener, closer = "[/", "/]"
		case slotNames[n.Type()] != nil:
			opener, closer = "[[", "]]"
		}

		label := n.Type()
		if gui, ok := g.GUI(n.ID()); ok && gui.Label != "" && gui.Label != n.Type() {
			label = fmt.Sprintf("%s <br/> %s", escape(gui.Label), n.Type())
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID()), opener, label, closer)
	}

	for _, c := range g.Connections() {
		to, _ := g.Node(c.To)
		arrow := "-->"
		if name, ok := slotNames[typeOf(to)][c.ToSlot]; ok {
			arrow = fmt.Sprintf("-- \"%s\" -->", name)
		} else if c.ToSlot != nodes.NoSlot {
			arrow = fmt.Sprintf("-- \"%d\" -->", c.ToSlot)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(c.From), arrow, mermaidID(c.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#b71c1c,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef selected fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[int64]bool)
		for _, id := range overlay.Failed {
			if _, ok := g.Node(id); !ok || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s failed;\n", mermaidID(id))
		}
		if overlay.HasSelected {
			fmt.Fprintf(&sb, "    class %s selected;\n", mermaidID(overlay.Selected))
		}
	}

	return sb.String()
}

func typeOf(n nodes.Node) string {
	if n == nil {
		return ""
	}
	return n.Type()
}

func mermaidID(id int64) string {
	return fmt.Sprintf("n%d", id)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
