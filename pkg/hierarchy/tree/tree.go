// Package tree defines the nested tree form produced by subtree extraction.
//
// The export contract requires every node to carry exactly one of a
// non-empty `children` list or a terminal `value` - downstream consumers
// treat the two shapes as disjoint. Instead of one struct with two optional
// fields, the package models this as a tagged variant: [Internal] always
// has children, [Leaf] always has a value, and the invariant holds by
// construction.
package tree

import (
	"encoding/json"
)

// Attrs is the fixed attribute set carried by every hierarchy node.
// Confidence is nil when the source table has no value; it serializes as
// JSON null, never as NaN and never as a missing key.
type Attrs struct {
	Leaf       bool     // source row flagged as a leaf taxon
	Extinct    bool     // source row flagged as extinct
	Confidence *float64 // placement confidence, nil when unknown
}

// Node is a node of the extracted tree: either an [Internal] node with
// children or a terminal [Leaf].
type Node interface {
	// NodeName returns the display name.
	NodeName() string
	// NodeAttrs returns the attribute set.
	NodeAttrs() Attrs

	json.Marshaler
}

// Internal is a tree node with at least one child.
type Internal struct {
	Name     string
	Attrs    Attrs
	Children []Node // never empty
}

// Leaf is a terminal tree node. Value is a synthetic unit marker
// ("at least one entity here"); a truncated subtree is represented by a
// Leaf even when the source node has real children.
type Leaf struct {
	Name  string
	Attrs Attrs
	Value int // always >= 1
}

// NodeName returns the display name.
func (n *Internal) NodeName() string { return n.Name }

// NodeAttrs returns the attribute set.
func (n *Internal) NodeAttrs() Attrs { return n.Attrs }

// NodeName returns the display name.
func (n *Leaf) NodeName() string { return n.Name }

// NodeAttrs returns the attribute set.
func (n *Leaf) NodeAttrs() Attrs { return n.Attrs }

// internalJSON and leafJSON fix the wire shape: shared attribute fields
// plus exactly one of children/value.
type internalJSON struct {
	Name       string   `json:"name"`
	Leaf       bool     `json:"leaf"`
	Extinct    bool     `json:"extinct"`
	Confidence *float64 `json:"confidence"`
	Children   []Node   `json:"children"`
}

type leafJSON struct {
	Name       string   `json:"name"`
	Leaf       bool     `json:"leaf"`
	Extinct    bool     `json:"extinct"`
	Confidence *float64 `json:"confidence"`
	Value      int      `json:"value"`
}

// MarshalJSON emits the internal-node shape with a children list.
func (n *Internal) MarshalJSON() ([]byte, error) {
	return json.Marshal(internalJSON{
		Name:       n.Name,
		Leaf:       n.Attrs.Leaf,
		Extinct:    n.Attrs.Extinct,
		Confidence: n.Attrs.Confidence,
		Children:   n.Children,
	})
}

// MarshalJSON emits the terminal shape with a value marker.
func (n *Leaf) MarshalJSON() ([]byte, error) {
	return json.Marshal(leafJSON{
		Name:       n.Name,
		Leaf:       n.Attrs.Leaf,
		Extinct:    n.Attrs.Extinct,
		Confidence: n.Attrs.Confidence,
		Value:      n.Value,
	})
}

// Count returns the total number of nodes in the tree rooted at n.
func Count(n Node) int {
	switch t := n.(type) {
	case *Internal:
		total := 1
		for _, c := range t.Children {
			total += Count(c)
		}
		return total
	case *Leaf:
		return 1
	default:
		return 0
	}
}

// Depth returns the maximum hop-distance from n to any descendant.
// A lone leaf has depth 0.
func Depth(n Node) int {
	inner, ok := n.(*Internal)
	if !ok {
		return 0
	}
	max := 0
	for _, c := range inner.Children {
		if d := Depth(c) + 1; d > max {
			max = d
		}
	}
	return max
}
