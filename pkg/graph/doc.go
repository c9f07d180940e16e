// Package graph provides the in-memory graph structure shared by the
// dataset pipelines.
//
// A [Graph] holds integer-identified, labeled nodes and weighted edges, and
// can be undirected (network topologies) or directed (tree-of-life
// hierarchies). It is the hand-off type between parsing
// ([github.com/vizpipe/vizpipe/pkg/pajek]), analytics
// ([github.com/vizpipe/vizpipe/pkg/analytics]) and serialization
// ([github.com/vizpipe/vizpipe/pkg/export]).
//
// # Invariants
//
// Edge endpoints always reference declared nodes: AddEdge rejects unknown
// IDs, so a graph never contains dangling edges. Consumers that need an
// isolated copy (e.g., running several exports over one parse result) use
// Clone or InducedSubgraph; neither shares mutable state with the source.
package graph
