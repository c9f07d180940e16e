// Package analytics computes basic graph metrics for the network pipeline.
//
// The metrics are best-effort visualization inputs, not analysis results:
// degenerate graphs (empty, single node, disconnected) produce zero-filled
// scores instead of errors, so a bad dataset can never take down the
// pipeline that consumes it.
package analytics

import (
	"github.com/vizpipe/vizpipe/pkg/graph"
)

// CentralityMap maps every node ID in a graph to a floating-point score.
// Nodes for which a metric could not be computed carry 0.0.
type CentralityMap map[int]float64

// Degree returns the incident edge count for every node in the graph.
// Isolated nodes are present with score 0.
func Degree(g *graph.Graph) CentralityMap {
	if g == nil {
		return CentralityMap{}
	}
	m := make(CentralityMap, g.NodeCount())
	for _, id := range g.NodeIDs() {
		m[id] = float64(g.Degree(id))
	}
	return m
}

// IsConnected reports whether every node can reach every other node,
// ignoring edge direction. Empty and single-node graphs count as
// connected.
func IsConnected(g *graph.Graph) bool {
	if g == nil || g.NodeCount() <= 1 {
		return true
	}

	ids := g.NodeIDs()
	adjacent := make(map[int][]int, len(ids))
	for _, e := range g.Edges() {
		adjacent[e.From] = append(adjacent[e.From], e.To)
		adjacent[e.To] = append(adjacent[e.To], e.From)
	}

	visited := make(map[int]bool, len(ids))
	queue := []int{ids[0]}
	visited[ids[0]] = true
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range adjacent[v] {
			if !visited[w] {
				visited[w] = true
				queue = append(queue, w)
			}
		}
	}
	return len(visited) == len(ids)
}

// Betweenness returns normalized betweenness centrality for every node:
// the fraction of all-pairs shortest paths passing through it, with ties
// among equal-length paths split proportionally (Brandes' algorithm,
// O(V·E) for unweighted graphs).
//
// Disconnected graphs are handled by summing over reachable pairs only;
// isolated nodes score 0.0. Graphs too small to have intermediate nodes
// (fewer than three) yield an all-zero map. Scores fall in [0, 1]: the
// center of a star is exactly 1.0.
func Betweenness(g *graph.Graph) CentralityMap {
	m := CentralityMap{}
	if g == nil {
		return m
	}

	ids := g.NodeIDs()
	n := len(ids)
	for _, id := range ids {
		m[id] = 0.0
	}
	if n < 3 {
		return m
	}

	// One Brandes pass per source: BFS accumulates shortest-path counts
	// (sigma) and predecessor lists, then dependencies are back-propagated
	// in reverse finish order.
	for _, source := range ids {
		stack := make([]int, 0, n)
		pred := make(map[int][]int, n)
		sigma := make(map[int]float64, n)
		dist := make(map[int]int, n)
		for _, id := range ids {
			sigma[id] = 0
			dist[id] = -1
		}
		sigma[source] = 1
		dist[source] = 0

		queue := []int{source}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)

			for _, w := range g.Neighbors(v) {
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					pred[w] = append(pred[w], v)
				}
			}
		}

		delta := make(map[int]float64, n)
		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range pred[w] {
				delta[v] += (sigma[v] / sigma[w]) * (1 + delta[w])
			}
			if w != source {
				m[w] += delta[w]
			}
		}
	}

	// Pair normalization to [0, 1]. Directed graphs accumulate once per
	// ordered pair over 1/((n-1)(n-2)) pairs; undirected passes visit each
	// unordered pair twice, which exactly cancels the halved pair count.
	// Either way the factor is the same.
	norm := 1.0 / float64((n-1)*(n-2))
	for id := range m {
		m[id] *= norm
	}

	return m
}
