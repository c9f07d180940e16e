package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/vizpipe/vizpipe/pkg/analytics"
	"github.com/vizpipe/vizpipe/pkg/geo"
	"github.com/vizpipe/vizpipe/pkg/graph"
	"github.com/vizpipe/vizpipe/pkg/hierarchy/tree"
)

func ring(n int) *graph.Graph {
	g := graph.New()
	for i := 1; i <= n; i++ {
		g.AddNode(graph.Node{ID: i, Label: fmt.Sprintf("N%d", i)})
	}
	for i := 1; i <= n; i++ {
		g.AddEdge(graph.Edge{From: i, To: i%n + 1, Weight: graph.DefaultWeight})
	}
	return g
}

func TestBuildNetwork(t *testing.T) {
	g := ring(5)
	doc := BuildNetwork(g, analytics.Degree(g), analytics.Betweenness(g))

	if len(doc.Nodes) != 5 || len(doc.Links) != 5 {
		t.Fatalf("doc = %d nodes / %d links, want 5/5", len(doc.Nodes), len(doc.Links))
	}
	for i, n := range doc.Nodes {
		if n.ID != i+1 {
			t.Errorf("node order: index %d has id %d, want %d", i, n.ID, i+1)
		}
		if n.Val != 2 || n.Group != 2 {
			t.Errorf("node %d val/group = %v/%d, want 2/2", n.ID, n.Val, n.Group)
		}
		if n.Centrality <= 0 {
			t.Errorf("node %d centrality = %v, want > 0 on a ring", n.ID, n.Centrality)
		}
	}
	if doc.Links[0].Source != 1 || doc.Links[0].Target != 2 || doc.Links[0].Value != 1.0 {
		t.Errorf("link 0 = %+v, want 1→2 value 1.0", doc.Links[0])
	}
}

func TestBuildNetworkMissingMetrics(t *testing.T) {
	g := ring(3)
	// Empty maps: the document must still cover every node with zeros.
	doc := BuildNetwork(g, analytics.CentralityMap{}, analytics.CentralityMap{})
	for _, n := range doc.Nodes {
		if n.Val != 0 || n.Centrality != 0 {
			t.Errorf("node %d = %+v, want zero metrics", n.ID, n)
		}
	}
}

func TestMarshalNetworkShape(t *testing.T) {
	g := ring(3)
	data, err := MarshalNetwork(g, analytics.Degree(g), analytics.Betweenness(g))
	if err != nil {
		t.Fatalf("MarshalNetwork: %v", err)
	}

	var decoded struct {
		Nodes []map[string]any `json:"nodes"`
		Links []map[string]any `json:"links"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"id", "label", "val", "group", "centrality"} {
		if _, ok := decoded.Nodes[0][key]; !ok {
			t.Errorf("node missing %q field", key)
		}
	}
	for _, key := range []string{"source", "target", "value"} {
		if _, ok := decoded.Links[0][key]; !ok {
			t.Errorf("link missing %q field", key)
		}
	}
}

func TestMarshalTree(t *testing.T) {
	root := &tree.Internal{
		Name: "root",
		Children: []tree.Node{
			&tree.Leaf{Name: "child", Value: 1},
		},
	}
	data, err := MarshalTree(root)
	if err != nil {
		t.Fatalf("MarshalTree: %v", err)
	}
	var decoded map[string]any
	json.Unmarshal(data, &decoded)
	if decoded["name"] != "root" {
		t.Errorf("name = %v", decoded["name"])
	}
	if _, ok := decoded["value"]; ok {
		t.Error("internal node has a value field")
	}
	children := decoded["children"].([]any)
	child := children[0].(map[string]any)
	if _, ok := child["children"]; ok {
		t.Error("leaf node has a children field")
	}
	if child["value"].(float64) != 1 {
		t.Errorf("leaf value = %v, want 1", child["value"])
	}
}

func TestMarshalFeatureCollection(t *testing.T) {
	pop := 2e6
	fc := geo.Features([]geo.CityRecord{{City: "a", Country: "b", Lat: 1, Lng: 2, Population: &pop}})
	data, err := MarshalFeatureCollection(fc)
	if err != nil {
		t.Fatalf("MarshalFeatureCollection: %v", err)
	}
	if !strings.Contains(string(data), `"FeatureCollection"`) {
		t.Error("output missing FeatureCollection tag")
	}
}

func TestNetworkDOT(t *testing.T) {
	g := ring(3)
	dot := NetworkDOT(g)

	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("undirected DOT starts with %q", dot[:20])
	}
	if !strings.Contains(dot, "1 -- 2;") {
		t.Error("missing undirected edge 1 -- 2")
	}
	if strings.Contains(dot, "->") {
		t.Error("undirected DOT contains directed connector")
	}

	d := graph.NewDirected()
	d.AddNode(graph.Node{ID: 1})
	d.AddNode(graph.Node{ID: 2})
	d.AddEdge(graph.Edge{From: 1, To: 2, Weight: 3.5})
	ddot := NetworkDOT(d)
	if !strings.HasPrefix(ddot, "digraph G {") {
		t.Errorf("directed DOT starts with %q", ddot[:20])
	}
	if !strings.Contains(ddot, "1 -> 2 [weight=3.5];") {
		t.Errorf("directed DOT missing weighted edge:\n%s", ddot)
	}
}
