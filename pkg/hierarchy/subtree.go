package hierarchy

import (
	"github.com/vizpipe/vizpipe/pkg/graph"
	"github.com/vizpipe/vizpipe/pkg/hierarchy/tree"
)

// queueItem pairs a node ID with its hop-distance from the traversal root.
type queueItem struct {
	id    int
	depth int
}

// walk runs the shared breadth-first traversal: every node within maxDepth
// hops of root is visited exactly once, at its minimum discovered depth
// (first-visit-wins, so diamond shapes terminate and are never reprocessed).
// Children attached to a node are those it discovered itself; a child
// already claimed by an earlier path is not re-attached. Children of nodes
// at the cutoff depth are not explored at all.
//
// The traversal is an explicit queue rather than recursion: the full
// hierarchy runs to tens of thousands of nodes and the depth cutoff doubles
// as the loop termination condition.
func (h *Hierarchy) walk(root, maxDepth int) (order []queueItem, attached map[int][]int) {
	attached = make(map[int][]int)
	visited := map[int]bool{root: true}

	queue := []queueItem{{id: root, depth: 0}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]
		order = append(order, item)

		if item.depth >= maxDepth {
			continue
		}
		for _, child := range h.children[item.id] {
			if visited[child] {
				continue
			}
			visited[child] = true
			attached[item.id] = append(attached[item.id], child)
			queue = append(queue, queueItem{id: child, depth: item.depth + 1})
		}
	}
	return order, attached
}

// ExtractTree builds the nested tree of all nodes within maxDepth hops of
// root. Nodes at the cutoff - and nodes whose children were all claimed by
// shorter paths - become terminal leaves carrying the unit value marker,
// even when the source data has further descendants.
//
// maxDepth 0 yields a single terminal root. Negative depths are
// ErrNegativeDepth; an unloaded root is ErrUnknownNode.
func (h *Hierarchy) ExtractTree(root, maxDepth int) (tree.Node, error) {
	if maxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	if !h.has(root) {
		return nil, ErrUnknownNode
	}

	order, attached := h.walk(root, maxDepth)

	// Children are finalized before their parent in reverse BFS order.
	built := make(map[int]tree.Node, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i].id
		a := h.attrs[id]
		attrs := tree.Attrs{Leaf: a.Leaf, Extinct: a.Extinct, Confidence: a.Confidence}

		childIDs := attached[id]
		if len(childIDs) == 0 {
			built[id] = &tree.Leaf{Name: a.Name, Attrs: attrs, Value: 1}
			continue
		}
		children := make([]tree.Node, len(childIDs))
		for j, c := range childIDs {
			children[j] = built[c]
		}
		built[id] = &tree.Internal{Name: a.Name, Attrs: attrs, Children: children}
	}

	return built[root], nil
}

// ExtractGraph builds the induced directed subgraph over the nodes within
// maxDepth hops of root: exactly the visited IDs, and every parent→child
// link of the source data connecting two of them - including the extra
// edges of diamond shapes that the nested tree form collapses.
func (h *Hierarchy) ExtractGraph(root, maxDepth int) (*graph.Graph, error) {
	if maxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	if !h.has(root) {
		return nil, ErrUnknownNode
	}

	order, _ := h.walk(root, maxDepth)

	g := graph.NewDirected()
	visited := make(map[int]bool, len(order))
	for _, item := range order {
		visited[item.id] = true
		_ = g.AddNode(graph.Node{ID: item.id, Label: h.attrs[item.id].Name})
	}
	for _, item := range order {
		for _, child := range h.children[item.id] {
			if visited[child] {
				_ = g.AddEdge(graph.Edge{From: item.id, To: child, Weight: graph.DefaultWeight})
			}
		}
	}
	return g, nil
}
