package graph

import (
	"errors"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{ID: 1, Label: "alpha"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddNode(Node{ID: 1, Label: "dup"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate AddNode error = %v, want ErrDuplicateNodeID", err)
	}
	if err := g.AddNode(Node{ID: 2}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	n, ok := g.Node(2)
	if !ok || n.Label != "2" {
		t.Errorf("unlabeled node label = %q, want %q", n.Label, "2")
	}
}

func TestAddEdgeRequiresEndpoints(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1})

	if err := g.AddEdge(Edge{From: 1, To: 2}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge unknown target error = %v, want ErrUnknownTargetNode", err)
	}
	if err := g.AddEdge(Edge{From: 3, To: 1}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge unknown source error = %v, want ErrUnknownSourceNode", err)
	}

	g.EnsureNode(2)
	if err := g.AddEdge(Edge{From: 1, To: 2}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
}

func TestAddEdgeStoresWeightVerbatim(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 1})
	g.AddNode(Node{ID: 2})

	tests := []struct {
		name   string
		weight float64
	}{
		{"Default", DefaultWeight},
		{"Fractional", 2.5},
		{"ExplicitZero", 0},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.AddEdge(Edge{From: 1, To: 2, Weight: tt.weight})
			if got := g.Edges()[i].Weight; got != tt.weight {
				t.Errorf("stored weight = %v, want %v", got, tt.weight)
			}
		})
	}
}

func TestEnsureNode(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: 5, Label: "five"})

	if created := g.EnsureNode(5); created {
		t.Error("EnsureNode created a node over an existing one")
	}
	if n, _ := g.Node(5); n.Label != "five" {
		t.Errorf("EnsureNode changed label to %q", n.Label)
	}
	if created := g.EnsureNode(6); !created {
		t.Error("EnsureNode did not create a missing node")
	}
}

// ring builds an undirected cycle over ids 1..n.
func ring(n int) *Graph {
	g := New()
	for i := 1; i <= n; i++ {
		g.AddNode(Node{ID: i})
	}
	for i := 1; i <= n; i++ {
		next := i%n + 1
		g.AddEdge(Edge{From: i, To: next})
	}
	return g
}

func TestDegreeSumIsTwiceEdgeCount(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Graph
	}{
		{"Ring5", func() *Graph { return ring(5) }},
		{"Ring2", func() *Graph { return ring(2) }},
		{"Star", func() *Graph {
			g := New()
			g.AddNode(Node{ID: 0})
			for i := 1; i <= 4; i++ {
				g.AddNode(Node{ID: i})
				g.AddEdge(Edge{From: 0, To: i})
			}
			return g
		}},
		{"SelfLoop", func() *Graph {
			g := ring(3)
			g.AddEdge(Edge{From: 1, To: 1})
			return g
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.build()
			sum := 0
			for _, id := range g.NodeIDs() {
				sum += g.Degree(id)
			}
			if sum != 2*g.EdgeCount() {
				t.Errorf("degree sum = %d, want %d", sum, 2*g.EdgeCount())
			}
		})
	}
}

func TestDirectedAdjacency(t *testing.T) {
	g := NewDirected()
	g.AddNode(Node{ID: 1})
	g.AddNode(Node{ID: 2})
	g.AddEdge(Edge{From: 1, To: 2})

	if got := g.Neighbors(1); len(got) != 1 || got[0] != 2 {
		t.Errorf("Neighbors(1) = %v, want [2]", got)
	}
	if got := g.Neighbors(2); len(got) != 0 {
		t.Errorf("Neighbors(2) = %v, want empty (directed)", got)
	}
}

func TestCloneIsolation(t *testing.T) {
	g := ring(3)
	c := g.Clone()

	c.EnsureNode(99)
	c.AddEdge(Edge{From: 1, To: 99})
	if n, _ := c.Node(1); n != nil {
		n.Label = "mutated"
	}

	if g.HasNode(99) {
		t.Error("clone mutation leaked a node into the original")
	}
	if g.EdgeCount() != 3 {
		t.Errorf("original edge count = %d after clone mutation, want 3", g.EdgeCount())
	}
	if n, _ := g.Node(1); n.Label == "mutated" {
		t.Error("clone mutation leaked a label change into the original")
	}
}

func TestInducedSubgraph(t *testing.T) {
	g := ring(5)
	sub := g.InducedSubgraph([]int{1, 2, 3})

	if sub.NodeCount() != 3 {
		t.Fatalf("subgraph nodes = %d, want 3", sub.NodeCount())
	}
	// Ring edges 1-2 and 2-3 survive; 3-4, 4-5, 5-1 do not.
	if sub.EdgeCount() != 2 {
		t.Errorf("subgraph edges = %d, want 2", sub.EdgeCount())
	}
	if sub.HasNode(4) || sub.HasNode(5) {
		t.Error("subgraph contains nodes outside the requested set")
	}

	// Unknown and duplicate IDs are tolerated.
	sub2 := g.InducedSubgraph([]int{1, 1, 42})
	if sub2.NodeCount() != 1 {
		t.Errorf("subgraph nodes = %d, want 1", sub2.NodeCount())
	}
}
