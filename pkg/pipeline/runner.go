package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vizpipe/vizpipe/pkg/analytics"
	"github.com/vizpipe/vizpipe/pkg/cache"
	"github.com/vizpipe/vizpipe/pkg/errors"
	"github.com/vizpipe/vizpipe/pkg/export"
	"github.com/vizpipe/vizpipe/pkg/geo"
	"github.com/vizpipe/vizpipe/pkg/hierarchy"
	"github.com/vizpipe/vizpipe/pkg/hierarchy/tree"
	"github.com/vizpipe/vizpipe/pkg/pajek"
)

// Artifact filenames produced by the pipelines.
const (
	ArtifactNetwork    = "network.json"
	ArtifactNetworkDOT = "network.dot"
	ArtifactTree       = "tree.json"
	ArtifactMap        = "cities.json"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the requested pipelines. A failure in one pipeline is
// recorded in the result and never aborts the others; Execute returns an
// error only for invalid input or when every requested pipeline failed.
func (r *Runner) Execute(ctx context.Context, kinds []string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		kinds = AllKinds
	}
	for _, kind := range kinds {
		if err := ValidateKind(kind); err != nil {
			return nil, err
		}
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
		Failures:  make(map[string]error),
	}
	logger := r.Logger.With("run_id", result.RunID)

	for _, kind := range kinds {
		start := time.Now()
		var (
			artifacts map[string][]byte
			hit       bool
			err       error
		)
		switch kind {
		case KindNetwork:
			artifacts, hit, err = r.ProcessNetwork(ctx, opts)
			result.Stats.NetworkTime = time.Since(start)
			result.CacheInfo.NetworkHit = hit
		case KindTree:
			artifacts, hit, err = r.ProcessTree(ctx, opts)
			result.Stats.TreeTime = time.Since(start)
			result.CacheInfo.TreeHit = hit
		case KindMap:
			artifacts, hit, err = r.ProcessMap(ctx, opts)
			result.Stats.MapTime = time.Since(start)
			result.CacheInfo.MapHit = hit
		}
		if err != nil {
			logger.Error("pipeline failed", "pipeline", kind, "code", errors.GetCode(err), "err", err)
			result.Failures[kind] = err
			continue
		}
		logger.Info("pipeline complete",
			"pipeline", kind,
			"cache_hit", hit,
			"duration", time.Since(start))
		for name, data := range artifacts {
			result.Artifacts[name] = data
		}
	}

	result.Stats.fromArtifacts(result.Artifacts)

	if len(result.Failures) == len(kinds) {
		return result, errors.New(errors.ErrCodeInternal, "all %d pipelines failed", len(kinds))
	}

	if opts.OutputDir != "" {
		if err := r.writeArtifacts(opts.OutputDir, result.Artifacts); err != nil {
			return result, err
		}
	}

	return result, nil
}

// ProcessNetwork runs the network pipeline: parse the Pajek file, compute
// degree and betweenness centrality, and serialize force-graph JSON plus a
// DOT rendition. The boolean reports whether all artifacts came from cache.
func (r *Runner) ProcessNetwork(ctx context.Context, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForNetwork(); err != nil {
		return nil, false, err
	}

	raw, err := os.ReadFile(opts.GraphFile)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeDatasetIO, err, "reading graph file %s", opts.GraphFile)
	}
	inputHash := cache.Hash(raw)

	keys := map[string]string{
		ArtifactNetwork:    r.Keyer.ArtifactKey("network", inputHash, opts.keyOpts()),
		ArtifactNetworkDOT: r.Keyer.ArtifactKey("network-dot", inputHash, opts.keyOpts()),
	}
	if artifacts, ok := r.tryCache(ctx, keys, opts); ok {
		return artifacts, true, nil
	}

	g, stats, err := pajek.Parse(bytes.NewReader(raw), pajek.Options{
		DirectedArcs: opts.DirectedArcs,
		Logger:       warnLogger(opts.Logger),
	})
	if err != nil {
		return nil, false, err
	}
	if stats.MalformedLines > 0 {
		opts.Logger.Warn("skipped malformed graph rows",
			"code", errors.ErrCodeMalformedLine,
			"count", stats.MalformedLines)
	}
	if stats.AutoCreatedNodes > 0 {
		opts.Logger.Warn("auto-created undeclared edge endpoints",
			"code", errors.ErrCodeDanglingEdge,
			"count", stats.AutoCreatedNodes)
	}

	degree := analytics.Degree(g)
	if !analytics.IsConnected(g) {
		opts.Logger.Warn("graph is disconnected, betweenness is computed per component",
			"code", errors.ErrCodeDisconnectedMetric)
	}
	betweenness := analytics.Betweenness(g)

	opts.Logger.Info("processed network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())

	data, err := export.MarshalNetwork(g, degree, betweenness)
	if err != nil {
		return nil, false, err
	}
	artifacts := map[string][]byte{
		ArtifactNetwork:    data,
		ArtifactNetworkDOT: []byte(export.NetworkDOT(g)),
	}
	r.storeCache(ctx, keys, artifacts, opts)

	return artifacts, false, nil
}

// ProcessTree runs the tree pipeline: load the hierarchy tables, extract
// the depth-bounded subtree under the preferred root, and serialize the
// nested JSON document.
func (r *Runner) ProcessTree(ctx context.Context, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForTree(); err != nil {
		return nil, false, err
	}

	nodesRaw, err := os.ReadFile(opts.NodesFile)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeDatasetIO, err, "reading nodes file %s", opts.NodesFile)
	}
	linksRaw, err := os.ReadFile(opts.LinksFile)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeDatasetIO, err, "reading links file %s", opts.LinksFile)
	}
	inputHash := cache.Hash(append(append([]byte{}, nodesRaw...), linksRaw...))

	keys := map[string]string{
		ArtifactTree: r.Keyer.ArtifactKey("tree", inputHash, opts.keyOpts()),
	}
	if artifacts, ok := r.tryCache(ctx, keys, opts); ok {
		return artifacts, true, nil
	}

	h, err := hierarchy.Load(bytes.NewReader(nodesRaw), bytes.NewReader(linksRaw))
	if err != nil {
		return nil, false, treeError(err)
	}
	if s := h.Stats(); s.SkippedRows > 0 {
		opts.Logger.Warn("skipped malformed hierarchy rows",
			"code", errors.ErrCodeMalformedLine,
			"count", s.SkippedRows)
	}
	if s := h.Stats(); s.DanglingLinks > 0 {
		opts.Logger.Warn("ignored links to undeclared hierarchy nodes",
			"code", errors.ErrCodeDanglingEdge,
			"count", s.DanglingLinks)
	}

	rootID, err := h.Root(opts.RootID)
	if err != nil {
		return nil, false, treeError(err)
	}
	root, err := h.ExtractTree(rootID, opts.MaxDepth)
	if err != nil {
		return nil, false, treeError(err)
	}

	opts.Logger.Info("processed tree",
		"root", rootID,
		"max_depth", opts.MaxDepth,
		"nodes", tree.Count(root))

	data, err := export.MarshalTree(root)
	if err != nil {
		return nil, false, err
	}
	artifacts := map[string][]byte{ArtifactTree: data}
	r.storeCache(ctx, keys, artifacts, opts)

	return artifacts, false, nil
}

// ProcessMap runs the map pipeline: read the world-cities table, keep the
// significant cities, and serialize the GeoJSON FeatureCollection.
func (r *Runner) ProcessMap(ctx context.Context, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForMap(); err != nil {
		return nil, false, err
	}

	raw, err := os.ReadFile(opts.CitiesFile)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeDatasetIO, err, "reading cities file %s", opts.CitiesFile)
	}
	inputHash := cache.Hash(raw)

	keys := map[string]string{
		ArtifactMap: r.Keyer.ArtifactKey("map", inputHash, opts.keyOpts()),
	}
	if artifacts, ok := r.tryCache(ctx, keys, opts); ok {
		return artifacts, true, nil
	}

	records, stats, err := geo.ReadCities(bytes.NewReader(raw))
	if err != nil {
		return nil, false, err
	}
	if stats.SkippedRows > 0 {
		opts.Logger.Warn("skipped malformed city rows",
			"code", errors.ErrCodeMalformedLine,
			"count", stats.SkippedRows)
	}

	kept, filterStats := geo.Filter(records, geo.FilterOptions{
		MinPopulation: opts.MinPopulation,
		Logger:        warnLogger(opts.Logger),
	})

	opts.Logger.Info("processed map",
		"input", filterStats.Input,
		"kept", filterStats.Kept,
		"bad_coordinates", filterStats.BadCoordinates)

	data, err := export.MarshalFeatureCollection(geo.Features(kept))
	if err != nil {
		return nil, false, err
	}
	artifacts := map[string][]byte{ArtifactMap: data}
	r.storeCache(ctx, keys, artifacts, opts)

	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// tryCache returns all keyed artifacts if every one is cached. Transient
// backend failures are retried before the pipeline falls back to
// recomputing.
func (r *Runner) tryCache(ctx context.Context, keys map[string]string, opts Options) (map[string][]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	artifacts := make(map[string][]byte, len(keys))
	for name, key := range keys {
		var (
			data []byte
			hit  bool
		)
		err := cache.RetryWithBackoff(ctx, func() error {
			var err error
			data, hit, err = r.Cache.Get(ctx, key)
			return err
		})
		if err != nil || !hit {
			return nil, false
		}
		artifacts[name] = data
	}
	return artifacts, true
}

// storeCache caches each artifact under its key, retrying transient backend
// failures. A store that still fails is non-fatal.
func (r *Runner) storeCache(ctx context.Context, keys map[string]string, artifacts map[string][]byte, opts Options) {
	for name, key := range keys {
		data, ok := artifacts[name]
		if !ok {
			continue
		}
		err := cache.RetryWithBackoff(ctx, func() error {
			return r.Cache.Set(ctx, key, data, opts.CacheTTL)
		})
		if err != nil {
			opts.Logger.Debug("caching artifact failed", "artifact", name, "err", err)
		}
	}
}

// writeArtifacts writes each artifact to the output directory.
func (r *Runner) writeArtifacts(dir string, artifacts map[string][]byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDatasetIO, err, "creating output dir %s", dir)
	}
	for name, data := range artifacts {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeDatasetIO, err, "writing artifact %s", path)
		}
	}
	return nil
}

// treeError maps hierarchy sentinel errors to structured pipeline errors.
func treeError(err error) error {
	switch {
	case stderrors.Is(err, hierarchy.ErrEmptyHierarchy):
		return errors.Wrap(errors.ErrCodeEmptyHierarchy, err, "hierarchy has no nodes")
	case stderrors.Is(err, hierarchy.ErrNoRootFound):
		return errors.Wrap(errors.ErrCodeNoRootFound, err, "hierarchy has no root")
	case stderrors.Is(err, hierarchy.ErrUnknownNode), stderrors.Is(err, hierarchy.ErrNegativeDepth):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid subtree request")
	default:
		return err
	}
}

// warnLogger adapts a structured logger to the printf-style warning hook
// the parsers take.
func warnLogger(logger *log.Logger) func(format string, args ...any) {
	return func(format string, args ...any) {
		logger.Warnf(format, args...)
	}
}
