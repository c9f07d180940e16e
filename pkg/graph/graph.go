package graph

import (
	"errors"
	"slices"
	"strconv"
)

var (
	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// DefaultWeight is the edge weight callers use when the input carries none.
// The graph itself never substitutes it: an edge's weight is stored as
// given, zero included.
const DefaultWeight = 1.0

// Node represents a vertex with an integer identifier and a display label.
// Labels default to the stringified ID when the source data carries none.
type Node struct {
	ID    int    // Unique identifier
	Label string // Display label (never empty after AddNode)
}

// Edge represents a connection between two nodes with a numeric weight.
// In an undirected graph, From/To ordering reflects the input data and
// carries no semantic meaning.
type Edge struct {
	From   int     // Source node ID
	To     int     // Target node ID
	Weight float64 // Edge weight, stored verbatim (see DefaultWeight)
}

// Graph is a mutable collection of nodes and edges, either undirected
// (network topologies) or directed (parent→child hierarchies).
//
// Every edge endpoint must reference an existing node: AddEdge rejects
// unknown endpoints rather than silently creating dangling references.
// Callers that want auto-creation (e.g., parsers mirroring the permissive
// behavior of common graph toolkits) call EnsureNode first.
//
// The zero value is not usable - use New or NewDirected.
// Graph is not safe for concurrent mutation without external synchronization.
type Graph struct {
	directed bool
	nodes    map[int]*Node
	edges    []Edge
	adjacent map[int][]int // nodeID -> neighbor IDs (successors if directed)
}

// New creates an empty undirected graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[int]*Node),
		adjacent: make(map[int][]int),
	}
}

// NewDirected creates an empty directed graph.
func NewDirected() *Graph {
	g := New()
	g.directed = true
	return g
}

// Directed reports whether edges are directed.
func (g *Graph) Directed() bool { return g.directed }

// AddNode adds a node to the graph. An empty label is replaced with the
// stringified ID. Returns ErrDuplicateNodeID if the ID is already present.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Label == "" {
		n.Label = strconv.Itoa(n.ID)
	}
	node := &n
	g.nodes[node.ID] = node
	return nil
}

// EnsureNode adds an unlabeled node if the ID is not yet present.
// Existing nodes are left untouched. Reports whether a node was created.
func (g *Graph) EnsureNode(id int) bool {
	if _, exists := g.nodes[id]; exists {
		return false
	}
	g.nodes[id] = &Node{ID: id, Label: strconv.Itoa(id)}
	return true
}

// AddEdge adds an edge between two existing nodes. The weight is stored as
// given, including an explicit zero - callers that mean "unweighted" pass
// DefaultWeight. Returns ErrUnknownSourceNode or ErrUnknownTargetNode when
// an endpoint is missing.
//
// For undirected graphs the edge is stored once but contributes to the
// adjacency of both endpoints. A self-loop's endpoints coincide, so in an
// undirected graph it contributes two adjacency entries and the degree sum
// stays at twice the edge count.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.adjacent[e.From] = append(g.adjacent[e.From], e.To)
	if !g.directed {
		g.adjacent[e.To] = append(g.adjacent[e.To], e.From)
	}
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id int) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int { return a.ID - b.ID })
	return nodes
}

// NodeIDs returns all node IDs in ascending order.
func (g *Graph) NodeIDs() []int {
	ids := make([]int, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Neighbors returns the IDs adjacent to the node: both endpoints see each
// other in undirected graphs, successors only in directed ones. The returned
// slice is a read-only view into the graph's adjacency index.
func (g *Graph) Neighbors(id int) []int { return g.adjacent[id] }

// Degree returns the number of edge endpoints incident to the node, 0 for
// unknown IDs. An undirected self-loop counts twice; in a directed graph
// this is the out-degree and a self-loop counts once.
func (g *Graph) Degree(id int) int { return len(g.adjacent[id]) }

// Clone returns a deep copy. Mutating the copy never affects the original,
// so multiple consumers can safely share one parsed graph.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		directed: g.directed,
		nodes:    make(map[int]*Node, len(g.nodes)),
		edges:    slices.Clone(g.edges),
		adjacent: make(map[int][]int, len(g.adjacent)),
	}
	for id, n := range g.nodes {
		copied := *n
		c.nodes[id] = &copied
	}
	for id, adj := range g.adjacent {
		c.adjacent[id] = slices.Clone(adj)
	}
	return c
}

// InducedSubgraph returns a new graph containing exactly the given node IDs
// (unknown IDs are ignored) and every original edge whose endpoints are both
// in the set. Node labels and edge weights are preserved.
func (g *Graph) InducedSubgraph(ids []int) *Graph {
	sub := New()
	sub.directed = g.directed
	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		if n, ok := g.nodes[id]; ok && !keep[id] {
			keep[id] = true
			_ = sub.AddNode(*n)
		}
	}
	for _, e := range g.edges {
		if keep[e.From] && keep[e.To] {
			_ = sub.AddEdge(e)
		}
	}
	return sub
}
