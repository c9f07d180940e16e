// Package pipeline orchestrates the dataset processing pipelines.
//
// Three independent pipelines turn raw datasets into visualization-ready
// artifacts:
//
//  1. Network: Pajek graph file → centrality metrics → force-graph JSON + DOT
//  2. Tree: hierarchy CSV tables → depth-bounded subtree → nested JSON
//  3. Map: world-cities CSV → significance filter → GeoJSON
//
// Each pipeline can be run on its own or as part of a combined run. A
// failure in one pipeline never aborts the others.
//
// # Usage
//
// Create a Runner and execute the pipelines:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    GraphFile: "data/network.net",
//	    OutputDir: "out",
//	}
//	result, err := runner.Execute(ctx, []string{pipeline.KindNetwork}, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := result.Artifacts["network.json"]
//
// Run a single pipeline without orchestration:
//
//	artifacts, hit, err := runner.ProcessNetwork(ctx, opts)
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vizpipe/vizpipe/pkg/cache"
	"github.com/vizpipe/vizpipe/pkg/config"
	"github.com/vizpipe/vizpipe/pkg/errors"
)

// Pipeline kinds.
const (
	KindNetwork = "network"
	KindTree    = "tree"
	KindMap     = "map"
)

// AllKinds lists every pipeline in execution order.
var AllKinds = []string{KindNetwork, KindTree, KindMap}

// ValidKinds is the set of recognized pipeline kinds.
var ValidKinds = map[string]bool{
	KindNetwork: true,
	KindTree:    true,
	KindMap:     true,
}

// ValidateKind checks that a pipeline kind is valid.
func ValidateKind(kind string) error {
	if !ValidKinds[kind] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid pipeline %q (must be one of: network, tree, map)", kind)
	}
	return nil
}

// Default values shared by CLI and config.
const (
	// DefaultRootID is the preferred subtree root when none is given.
	DefaultRootID = 1

	// DefaultMinPopulation is the city significance threshold when none
	// is given.
	DefaultMinPopulation = 1_000_000
)

// Options contains all configuration for the processing pipelines.
type Options struct {
	// Network pipeline
	GraphFile    string `json:"graph_file,omitempty"`
	DirectedArcs bool   `json:"directed_arcs,omitempty"`

	// Tree pipeline
	NodesFile string `json:"nodes_file,omitempty"`
	LinksFile string `json:"links_file,omitempty"`
	RootID    int    `json:"root_id,omitempty"`
	// MaxDepth bounds subtree extraction. Zero keeps only the root, so
	// no default is applied; callers that want the usual bound set it
	// explicitly (config.Default uses 3).
	MaxDepth int `json:"max_depth"`

	// Map pipeline
	CitiesFile    string  `json:"cities_file,omitempty"`
	MinPopulation float64 `json:"min_population,omitempty"`

	// OutputDir receives artifact files. Empty keeps artifacts in memory.
	OutputDir string `json:"output_dir,omitempty"`

	// Refresh bypasses the cache and recomputes artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// CacheTTL overrides the artifact cache lifetime. Zero uses
	// cache.TTLArtifact.
	CacheTTL time.Duration `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// FromConfig builds Options from a loaded config.
func FromConfig(cfg config.Config) Options {
	return Options{
		GraphFile:     cfg.Datasets.GraphFile,
		DirectedArcs:  cfg.Process.DirectedArcs,
		NodesFile:     cfg.Datasets.NodesFile,
		LinksFile:     cfg.Datasets.LinksFile,
		RootID:        cfg.Process.RootID,
		MaxDepth:      cfg.Process.MaxDepth,
		CitiesFile:    cfg.Datasets.CitiesFile,
		MinPopulation: cfg.Process.MinPopulation,
		OutputDir:     cfg.Datasets.OutputDir,
		CacheTTL:      time.Duration(cfg.Cache.TTLHours) * time.Hour,
	}
}

// ValidateAndSetDefaults checks shared fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth must be non-negative, got %d", o.MaxDepth)
	}
	if o.RootID == 0 {
		o.RootID = DefaultRootID
	}
	if o.MinPopulation == 0 {
		o.MinPopulation = DefaultMinPopulation
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = cache.TTLArtifact
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ValidateForNetwork checks required fields for the network pipeline.
func (o *Options) ValidateForNetwork() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.GraphFile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "graph file is required")
	}
	return nil
}

// ValidateForTree checks required fields for the tree pipeline.
func (o *Options) ValidateForTree() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.NodesFile == "" || o.LinksFile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "nodes and links files are required")
	}
	return nil
}

// ValidateForMap checks required fields for the map pipeline.
func (o *Options) ValidateForMap() error {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if o.CitiesFile == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cities file is required")
	}
	return nil
}

// keyOpts projects the options that shape artifact content into cache
// key options.
func (o *Options) keyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		RootID:        o.RootID,
		MaxDepth:      o.MaxDepth,
		MinPopulation: o.MinPopulation,
		DirectedArcs:  o.DirectedArcs,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this run in logs and reports.
	RunID string

	// Artifacts contains outputs keyed by artifact filename.
	Artifacts map[string][]byte

	// Stats contains size and timing information per pipeline.
	Stats Stats

	// CacheInfo tracks which pipelines hit the cache.
	CacheInfo CacheInfo

	// Failures records per-pipeline errors. A pipeline missing from the
	// map either succeeded or was not requested.
	Failures map[string]error
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NetworkNodes int
	NetworkEdges int
	TreeNodes    int
	MapFeatures  int

	NetworkTime time.Duration
	TreeTime    time.Duration
	MapTime     time.Duration
}

// CacheInfo tracks cache hits for each pipeline.
type CacheInfo struct {
	NetworkHit bool
	TreeHit    bool
	MapHit     bool
}

// fromArtifacts derives the size statistics from the serialized artifacts,
// so counts are available whether an artifact was computed or served from
// cache. Artifacts that fail to decode leave their counts at zero.
func (s *Stats) fromArtifacts(artifacts map[string][]byte) {
	if data, ok := artifacts[ArtifactNetwork]; ok {
		var network struct {
			Nodes []json.RawMessage `json:"nodes"`
			Links []json.RawMessage `json:"links"`
		}
		if json.Unmarshal(data, &network) == nil {
			s.NetworkNodes = len(network.Nodes)
			s.NetworkEdges = len(network.Links)
		}
	}
	if data, ok := artifacts[ArtifactTree]; ok {
		var root treeDoc
		if json.Unmarshal(data, &root) == nil {
			s.TreeNodes = root.count()
		}
	}
	if data, ok := artifacts[ArtifactMap]; ok {
		var fc struct {
			Features []json.RawMessage `json:"features"`
		}
		if json.Unmarshal(data, &fc) == nil {
			s.MapFeatures = len(fc.Features)
		}
	}
}

// treeDoc mirrors just enough of the tree artifact to count nodes.
type treeDoc struct {
	Children []treeDoc `json:"children"`
}

func (d treeDoc) count() int {
	n := 1
	for _, c := range d.Children {
		n += c.count()
	}
	return n
}
