package hierarchy

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vizpipe/vizpipe/pkg/hierarchy/tree"
)

// chain builds 1 -> 2 -> 3 -> ... -> n.
func chain(t *testing.T, n int) *Hierarchy {
	t.Helper()
	var nodes, links strings.Builder
	nodes.WriteString("node_id,node_name\n")
	links.WriteString("source_node_id,target_node_id\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&nodes, "%d,n%d\n", i, i)
	}
	for i := 1; i < n; i++ {
		fmt.Fprintf(&links, "%d,%d\n", i, i+1)
	}
	return load(t, nodes.String(), links.String())
}

func TestExtractTreeDepthZero(t *testing.T) {
	h := load(t, nodesCSV, linksCSV)
	root, err := h.ExtractTree(1, 0)
	if err != nil {
		t.Fatalf("ExtractTree: %v", err)
	}
	leaf, ok := root.(*tree.Leaf)
	if !ok {
		t.Fatalf("depth-0 root = %T, want *tree.Leaf", root)
	}
	if leaf.Name != "Life" || leaf.Value != 1 {
		t.Errorf("root = %+v, want Life with value 1", leaf)
	}
	if tree.Count(root) != 1 {
		t.Errorf("node count = %d, want 1", tree.Count(root))
	}
}

func TestExtractTreeDepthBound(t *testing.T) {
	h := chain(t, 6)
	tests := []struct {
		maxDepth  int
		wantCount int
	}{
		{0, 1},
		{1, 2},
		{3, 4},
		{9, 6}, // deeper than the data: whole chain, no padding
	}
	for _, tt := range tests {
		root, err := h.ExtractTree(1, tt.maxDepth)
		if err != nil {
			t.Fatalf("ExtractTree(1, %d): %v", tt.maxDepth, err)
		}
		if got := tree.Count(root); got != tt.wantCount {
			t.Errorf("maxDepth %d: count = %d, want %d", tt.maxDepth, got, tt.wantCount)
		}
		if got := tree.Depth(root); got > tt.maxDepth {
			t.Errorf("maxDepth %d: tree depth = %d, exceeds bound", tt.maxDepth, got)
		}
	}
}

func TestExtractTreeCutoffBecomesLeaf(t *testing.T) {
	h := load(t, nodesCSV, linksCSV)
	root, err := h.ExtractTree(1, 1)
	if err != nil {
		t.Fatalf("ExtractTree: %v", err)
	}
	inner, ok := root.(*tree.Internal)
	if !ok {
		t.Fatalf("root = %T, want *tree.Internal", root)
	}
	for _, c := range inner.Children {
		leaf, ok := c.(*tree.Leaf)
		if !ok {
			t.Fatalf("cutoff child %s = %T, want *tree.Leaf", c.NodeName(), c)
		}
		if leaf.Value != 1 {
			t.Errorf("cutoff child %s value = %d, want 1", leaf.Name, leaf.Value)
		}
	}
	// Eukaryotes (id 3) has real children in the data; the cutoff must
	// still emit it as a terminal.
	if tree.Count(root) != 4 {
		t.Errorf("count = %d, want 4", tree.Count(root))
	}
}

func TestExtractTreeShapeExclusivity(t *testing.T) {
	h := load(t, nodesCSV, linksCSV)
	root, err := h.ExtractTree(1, 2)
	if err != nil {
		t.Fatalf("ExtractTree: %v", err)
	}

	var check func(n tree.Node)
	check = func(n tree.Node) {
		switch v := n.(type) {
		case *tree.Internal:
			if len(v.Children) == 0 {
				t.Errorf("internal node %s has no children", v.Name)
			}
			for _, c := range v.Children {
				check(c)
			}
		case *tree.Leaf:
			if v.Value < 1 {
				t.Errorf("leaf %s value = %d, want >= 1", v.Name, v.Value)
			}
		default:
			t.Errorf("unexpected node type %T", n)
		}
	}
	check(root)
}

func TestExtractTreeDiamond(t *testing.T) {
	// 1 -> {2, 3}, both -> 4: node 4 must be finalized once, under the
	// first parent that discovers it.
	nodes := "node_id,node_name\n1,a\n2,b\n3,c\n4,d\n"
	links := "source_node_id,target_node_id\n1,2\n1,3\n2,4\n3,4\n"
	h := load(t, nodes, links)

	root, err := h.ExtractTree(1, 5)
	if err != nil {
		t.Fatalf("ExtractTree: %v", err)
	}
	if got := tree.Count(root); got != 4 {
		t.Errorf("count = %d, want 4 (diamond node must not duplicate)", got)
	}

	inner := root.(*tree.Internal)
	b := inner.Children[0].(*tree.Internal)
	if len(b.Children) != 1 || b.Children[0].NodeName() != "d" {
		t.Errorf("first path children = %v, want [d]", b.Children)
	}
	if _, ok := inner.Children[1].(*tree.Leaf); !ok {
		t.Errorf("second diamond parent = %T, want *tree.Leaf (child already claimed)", inner.Children[1])
	}
}

func TestExtractTreeErrors(t *testing.T) {
	h := load(t, nodesCSV, linksCSV)
	if _, err := h.ExtractTree(1, -1); !errors.Is(err, ErrNegativeDepth) {
		t.Errorf("negative depth error = %v, want ErrNegativeDepth", err)
	}
	if _, err := h.ExtractTree(99, 2); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown root error = %v, want ErrUnknownNode", err)
	}
}

func TestExtractGraph(t *testing.T) {
	nodes := "node_id,node_name\n1,a\n2,b\n3,c\n4,d\n"
	links := "source_node_id,target_node_id\n1,2\n1,3\n2,4\n3,4\n"
	h := load(t, nodes, links)

	g, err := h.ExtractGraph(1, 5)
	if err != nil {
		t.Fatalf("ExtractGraph: %v", err)
	}
	if !g.Directed() {
		t.Error("extracted graph is not directed")
	}
	if g.NodeCount() != 4 {
		t.Errorf("nodes = %d, want 4", g.NodeCount())
	}
	// Unlike the nested form, the induced subgraph keeps both diamond edges.
	if g.EdgeCount() != 4 {
		t.Errorf("edges = %d, want 4", g.EdgeCount())
	}

	bounded, err := h.ExtractGraph(1, 1)
	if err != nil {
		t.Fatalf("ExtractGraph bounded: %v", err)
	}
	if bounded.HasNode(4) {
		t.Error("graph contains a node beyond the depth bound")
	}
	if bounded.NodeCount() != 3 || bounded.EdgeCount() != 2 {
		t.Errorf("bounded graph = %d/%d, want 3 nodes / 2 edges",
			bounded.NodeCount(), bounded.EdgeCount())
	}

	n, _ := g.Node(1)
	if n.Label != "a" {
		t.Errorf("node label = %q, want %q", n.Label, "a")
	}
}
