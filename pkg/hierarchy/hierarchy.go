// Package hierarchy loads the tree-of-life node/link tables and extracts
// depth-bounded subtrees from them.
//
// The source data is a flat node table (id, name, flags) plus a
// source→target edge table describing a parent→child relation over tens of
// thousands of nodes. Consumers never see the full hierarchy: extraction is
// always bounded by a maximum depth, which is the pipeline's memory and CPU
// backpressure mechanism.
package hierarchy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var (
	// ErrEmptyHierarchy is returned by [Load] when the node table contains
	// zero usable rows. This is fatal for the tree pipeline only.
	ErrEmptyHierarchy = errors.New("hierarchy contains no nodes")

	// ErrNoRootFound is returned by [Hierarchy.Root] when no node qualifies
	// as a root candidate.
	ErrNoRootFound = errors.New("no root candidate found")

	// ErrUnknownNode is returned by the extraction functions when the
	// requested root ID was never loaded.
	ErrUnknownNode = errors.New("unknown node ID")

	// ErrNegativeDepth is returned by the extraction functions for a
	// negative maximum depth.
	ErrNegativeDepth = errors.New("max depth must be non-negative")

	errMissingColumn = errors.New("missing required column")
)

// NodeAttrs is the fixed attribute set of one node-table row.
type NodeAttrs struct {
	Name       string
	Leaf       bool
	Extinct    bool
	Confidence *float64 // nil when the table has no value
}

// Stats reports what the loader encountered.
type Stats struct {
	NodeRows      int // well-formed node rows
	LinkRows      int // well-formed link rows
	SkippedRows   int // malformed rows in either table
	DanglingLinks int // links whose source or target was never declared
}

// Hierarchy is the loaded parent→child structure. It is built once by
// [Load] and read-only afterwards; extraction functions return fresh
// structures that share no mutable state with it.
type Hierarchy struct {
	attrs    map[int]NodeAttrs
	children map[int][]int // parent ID -> child IDs in link-table row order
	targets  map[int]bool  // IDs appearing as a link target
	order    []int         // node IDs in node-table row order
	stats    Stats
}

// LoadFiles opens and loads the node and link tables from CSV files.
func LoadFiles(nodesPath, linksPath string) (*Hierarchy, error) {
	nodesF, err := os.Open(nodesPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", nodesPath, err)
	}
	defer nodesF.Close()

	linksF, err := os.Open(linksPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", linksPath, err)
	}
	defer linksF.Close()

	return Load(nodesF, linksF)
}

// Load reads the node table and link table and builds the hierarchy.
//
// Both tables are CSV with a header row and are read by column name, not
// position. The node table requires node_id and node_name columns
// (leaf_node, extinct, confidence optional); the link table requires
// source_node_id and target_node_id. Malformed data rows are skipped and
// counted. Zero usable node rows is ErrEmptyHierarchy.
//
// Links referencing undeclared nodes are kept for child ordering purposes
// only if the parent exists; they still mark their target as "has a parent"
// so it cannot masquerade as a root.
func Load(nodes, links io.Reader) (*Hierarchy, error) {
	h := &Hierarchy{
		attrs:    make(map[int]NodeAttrs),
		children: make(map[int][]int),
		targets:  make(map[int]bool),
	}

	if err := h.loadNodes(nodes); err != nil {
		return nil, fmt.Errorf("node table: %w", err)
	}
	if len(h.attrs) == 0 {
		return nil, ErrEmptyHierarchy
	}
	if err := h.loadLinks(links); err != nil {
		return nil, fmt.Errorf("link table: %w", err)
	}
	return h, nil
}

func (h *Hierarchy) loadNodes(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	idCol, ok := cols["node_id"]
	if !ok {
		return fmt.Errorf("%w: node_id", errMissingColumn)
	}
	nameCol, ok := cols["node_name"]
	if !ok {
		return fmt.Errorf("%w: node_name", errMissingColumn)
	}
	leafCol, hasLeaf := cols["leaf_node"]
	extinctCol, hasExtinct := cols["extinct"]
	confCol, hasConf := cols["confidence"]

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.stats.SkippedRows++
			continue
		}

		id, err := intField(row, idCol)
		if err != nil {
			h.stats.SkippedRows++
			continue
		}
		attrs := NodeAttrs{Name: field(row, nameCol)}
		if hasLeaf {
			attrs.Leaf = boolField(row, leafCol)
		}
		if hasExtinct {
			attrs.Extinct = boolField(row, extinctCol)
		}
		if hasConf {
			attrs.Confidence = floatField(row, confCol)
		}

		if _, exists := h.attrs[id]; !exists {
			h.order = append(h.order, id)
		}
		h.attrs[id] = attrs
		h.stats.NodeRows++
	}
	return nil
}

func (h *Hierarchy) loadLinks(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil // no links: every node is a root candidate
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	cols := columnIndex(header)
	srcCol, ok := cols["source_node_id"]
	if !ok {
		return fmt.Errorf("%w: source_node_id", errMissingColumn)
	}
	dstCol, ok := cols["target_node_id"]
	if !ok {
		return fmt.Errorf("%w: target_node_id", errMissingColumn)
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.stats.SkippedRows++
			continue
		}

		src, errS := intField(row, srcCol)
		dst, errD := intField(row, dstCol)
		if errS != nil || errD != nil {
			h.stats.SkippedRows++
			continue
		}

		h.targets[dst] = true
		if !h.has(src) || !h.has(dst) {
			h.stats.DanglingLinks++
			continue
		}
		h.children[src] = append(h.children[src], dst)
		h.stats.LinkRows++
	}
	return nil
}

// Stats returns the loader statistics.
func (h *Hierarchy) Stats() Stats { return h.stats }

// NodeCount returns the number of loaded nodes.
func (h *Hierarchy) NodeCount() int { return len(h.attrs) }

// Attrs returns the attributes for a node ID and whether it is loaded.
func (h *Hierarchy) Attrs(id int) (NodeAttrs, bool) {
	a, ok := h.attrs[id]
	return a, ok
}

// Children returns the child IDs of a node in link-table row order.
// The returned slice is a read-only view.
func (h *Hierarchy) Children(id int) []int { return h.children[id] }

// Roots returns the IDs that never appear as a link target, in node-table
// row order. This is a pure function of the loaded data; deterministic
// regardless of map iteration order.
func (h *Hierarchy) Roots() []int {
	var roots []int
	for _, id := range h.order {
		if !h.targets[id] {
			roots = append(roots, id)
		}
	}
	return roots
}

// Root resolves the traversal root: the preferred ID if it is loaded,
// otherwise the first candidate from Roots. Multiple disjoint roots are an
// accepted limitation - only the selected subtree is reachable downstream.
func (h *Hierarchy) Root(preferred int) (int, error) {
	if h.has(preferred) {
		return preferred, nil
	}
	roots := h.Roots()
	if len(roots) == 0 {
		return 0, ErrNoRootFound
	}
	return roots[0], nil
}

func (h *Hierarchy) has(id int) bool {
	_, ok := h.attrs[id]
	return ok
}

// columnIndex maps normalized header names to their positions.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func intField(row []string, i int) (int, error) {
	return strconv.Atoi(field(row, i))
}

// boolField treats "1", "true", "TRUE" etc. as true; anything else
// (including a missing cell) as false.
func boolField(row []string, i int) bool {
	v, err := strconv.ParseBool(field(row, i))
	return err == nil && v
}

// floatField returns nil for empty or unparseable cells.
func floatField(row []string, i int) *float64 {
	s := field(row, i)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
