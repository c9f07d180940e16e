package export

import (
	"io"

	"github.com/vizpipe/vizpipe/pkg/analytics"
	"github.com/vizpipe/vizpipe/pkg/graph"
)

// NetworkNode is one entry of the network document's node list. Val drives
// node sizing in the frontend and Group its color bucket; both derive from
// degree. Centrality is the normalized betweenness score.
type NetworkNode struct {
	ID         int     `json:"id"`
	Label      string  `json:"label"`
	Val        float64 `json:"val"`
	Group      int     `json:"group"`
	Centrality float64 `json:"centrality"`
}

// NetworkLink is one entry of the network document's link list.
type NetworkLink struct {
	Source int     `json:"source"`
	Target int     `json:"target"`
	Value  float64 `json:"value"`
}

// Network is the network.json document shape.
type Network struct {
	Nodes []NetworkNode `json:"nodes"`
	Links []NetworkLink `json:"links"`
}

// BuildNetwork assembles the network document from a graph and its metric
// maps. Nodes are ordered by ID, links in parse order. Missing metric
// entries fall back to 0 so the document always covers every node.
func BuildNetwork(g *graph.Graph, degree, betweenness analytics.CentralityMap) Network {
	doc := Network{
		Nodes: make([]NetworkNode, 0, g.NodeCount()),
		Links: make([]NetworkLink, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		d := degree[n.ID]
		doc.Nodes = append(doc.Nodes, NetworkNode{
			ID:         n.ID,
			Label:      n.Label,
			Val:        d,
			Group:      int(d),
			Centrality: betweenness[n.ID],
		})
	}
	for _, e := range g.Edges() {
		doc.Links = append(doc.Links, NetworkLink{
			Source: e.From,
			Target: e.To,
			Value:  e.Weight,
		})
	}
	return doc
}

// MarshalNetwork converts the network document to JSON bytes.
func MarshalNetwork(g *graph.Graph, degree, betweenness analytics.CentralityMap) ([]byte, error) {
	return marshal(BuildNetwork(g, degree, betweenness))
}

// WriteNetwork writes the network document as JSON to w.
func WriteNetwork(w io.Writer, g *graph.Graph, degree, betweenness analytics.CentralityMap) error {
	return writeJSON(w, BuildNetwork(g, degree, betweenness))
}

// WriteNetworkFile writes the network document to a JSON file.
func WriteNetworkFile(path string, g *graph.Graph, degree, betweenness analytics.CentralityMap) error {
	return writeFile(path, BuildNetwork(g, degree, betweenness))
}
