package export

import (
	"bytes"
	"fmt"

	"github.com/vizpipe/vizpipe/pkg/graph"
)

// NetworkDOT converts a graph to Graphviz DOT text for external layout
// engines. Node sizing mirrors the JSON document: the penwidth scales with
// degree so hubs stand out in whatever renderer consumes the output.
// Undirected graphs emit `graph`/`--`, directed ones `digraph`/`->`.
func NetworkDOT(g *graph.Graph) string {
	keyword, connector := "graph", "--"
	if g.Directed() {
		keyword, connector = "digraph", "->"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s G {\n", keyword)
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		fmt.Fprintf(&buf, "  %d [label=%q, penwidth=%d];\n", n.ID, n.Label, 1+g.Degree(n.ID))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Weight != graph.DefaultWeight {
			fmt.Fprintf(&buf, "  %d %s %d [weight=%g];\n", e.From, connector, e.To, e.Weight)
			continue
		}
		fmt.Fprintf(&buf, "  %d %s %d;\n", e.From, connector, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}
