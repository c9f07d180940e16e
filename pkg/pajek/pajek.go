// Package pajek parses the Pajek .net graph format.
//
// Pajek files are line-oriented: a `*Vertices` marker is followed by vertex
// rows (`id "label" ...`), and `*Edges` / `*Arcs` markers by edge rows
// (`source target [weight]`). The parser is tolerant by policy - malformed
// rows are skipped and counted rather than aborting the file, since the
// upstream datasets are hand-curated and occasionally messy.
package pajek

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/vizpipe/vizpipe/pkg/graph"
)

// Section markers. Matching is a case-sensitive prefix test, so variants
// like "*Vertices 25" select the section too.
const (
	markerVertices = "*Vertices"
	markerEdges    = "*Edges"
	markerArcs     = "*Arcs"
)

var quotedLabelRE = regexp.MustCompile(`"([^"]*)"`)

// Options configures parsing behavior.
type Options struct {
	// DirectedArcs makes *Arcs rows produce a directed graph. The default
	// (false) folds Arcs into the undirected edge set, matching the
	// reference datasets which only ever carry *Edges sections. A file with
	// both kinds of sections is parsed with whichever directedness the flag
	// selects for the whole graph.
	DirectedArcs bool

	// Logger receives a warning per skipped row. Nil disables warnings.
	Logger func(format string, args ...any)
}

// Stats reports what the parser encountered beyond the resulting graph.
type Stats struct {
	VertexLines      int // well-formed vertex rows
	EdgeLines        int // well-formed edge/arc rows
	MalformedLines   int // rows skipped inside a section
	AutoCreatedNodes int // edge endpoints never declared as vertices
}

// ParseFile opens and parses a Pajek .net file.
func ParseFile(path string, opts Options) (*graph.Graph, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, opts)
}

// Parse reads Pajek-formatted text and returns the graph it describes.
//
// Dangling edge references - endpoints never declared in a *Vertices
// section - auto-create an unlabeled node rather than dropping the edge,
// so reported edge counts always match the input. Each creation is counted
// in Stats.AutoCreatedNodes.
//
// Lines outside any recognized section and blank lines are ignored. The
// only error condition is a failed read; malformed content never aborts
// the parse.
func Parse(r io.Reader, opts Options) (*graph.Graph, *Stats, error) {
	g := graph.New()
	if opts.DirectedArcs {
		g = graph.NewDirected()
	}
	stats := &Stats{}

	const (
		sectionNone = iota
		sectionVertices
		sectionEdges
	)
	section := sectionNone

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, markerVertices):
			section = sectionVertices
			continue
		case strings.HasPrefix(line, markerEdges), strings.HasPrefix(line, markerArcs):
			section = sectionEdges
			continue
		}

		if line == "" || section == sectionNone {
			continue
		}

		switch section {
		case sectionVertices:
			if !parseVertex(g, line) {
				stats.MalformedLines++
				warnf(opts, "pajek: skipping malformed vertex line %d: %q", lineNo, line)
				continue
			}
			stats.VertexLines++
		case sectionEdges:
			created, ok := parseEdge(g, line)
			if !ok {
				stats.MalformedLines++
				warnf(opts, "pajek: skipping malformed edge line %d: %q", lineNo, line)
				continue
			}
			stats.EdgeLines++
			stats.AutoCreatedNodes += created
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read: %w", err)
	}

	return g, stats, nil
}

// parseVertex handles one row of a *Vertices section. The first token must
// be an integer ID; the label is taken from the first quoted substring,
// falling back to the second token, falling back to the stringified ID.
// Reports whether the row was well-formed.
func parseVertex(g *graph.Graph, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}

	var label string
	if m := quotedLabelRE.FindStringSubmatch(line); m != nil {
		label = m[1]
	} else if len(parts) >= 2 {
		label = parts[1]
	}

	// Re-declared vertices keep their first label.
	_ = g.AddNode(graph.Node{ID: id, Label: label})
	return true
}

// parseEdge handles one row of an *Edges or *Arcs section: two integer IDs
// and an optional weight. An omitted or unparseable weight falls back to the
// default rather than failing the row; a parseable weight is kept as-is,
// zero included. Returns the number of auto-created endpoint nodes and
// whether the row was well-formed.
func parseEdge(g *graph.Graph, line string) (created int, ok bool) {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return 0, false
	}
	from, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	to, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}

	weight := graph.DefaultWeight
	if len(parts) > 2 {
		if w, err := strconv.ParseFloat(parts[2], 64); err == nil {
			weight = w
		}
	}

	if g.EnsureNode(from) {
		created++
	}
	if g.EnsureNode(to) {
		created++
	}
	_ = g.AddEdge(graph.Edge{From: from, To: to, Weight: weight})
	return created, true
}

func warnf(opts Options, format string, args ...any) {
	if opts.Logger != nil {
		opts.Logger(format, args...)
	}
}
