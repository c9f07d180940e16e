package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vizpipe/vizpipe/pkg/cache"
	"github.com/vizpipe/vizpipe/pkg/errors"
)

const sampleGraph = `*Vertices 3
1 "alpha"
2 "beta"
3 "gamma"
*Edges
1 2 1.0
2 3 2.5
`

const sampleNodes = `node_id,node_name,leaf_node,extinct,confidence
1,root,false,false,
2,branch,false,false,0.9
3,leaf,true,false,0.5
`

const sampleLinks = `source_node_id,target_node_id
1,2
2,3
`

const sampleCities = `city,country,lat,lng,population,capital
Metropolis,Freedonia,10.5,20.25,2000000,primary
Hamlet,Freedonia,1.0,2.0,500,
`

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// writeFixtures writes the sample datasets to a temp dir and returns
// options pointing at them.
func writeFixtures(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"network.net": sampleGraph,
		"nodes.csv":   sampleNodes,
		"links.csv":   sampleLinks,
		"cities.csv":  sampleCities,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
	return Options{
		GraphFile:  filepath.Join(dir, "network.net"),
		NodesFile:  filepath.Join(dir, "nodes.csv"),
		LinksFile:  filepath.Join(dir, "links.csv"),
		CitiesFile: filepath.Join(dir, "cities.csv"),
		RootID:     1,
		MaxDepth:   3,
		Logger:     discardLogger(),
	}
}

func TestProcessNetwork(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	opts := writeFixtures(t)

	artifacts, hit, err := r.ProcessNetwork(context.Background(), opts)
	if err != nil {
		t.Fatalf("ProcessNetwork: %v", err)
	}
	if hit {
		t.Error("first run should not hit cache")
	}

	var network struct {
		Nodes []struct {
			ID    int    `json:"id"`
			Label string `json:"label"`
		} `json:"nodes"`
		Links []struct {
			Source int `json:"source"`
			Target int `json:"target"`
		} `json:"links"`
	}
	if err := json.Unmarshal(artifacts[ArtifactNetwork], &network); err != nil {
		t.Fatalf("unmarshal network artifact: %v", err)
	}
	if len(network.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(network.Nodes))
	}
	if len(network.Links) != 2 {
		t.Errorf("links = %d, want 2", len(network.Links))
	}

	dot := string(artifacts[ArtifactNetworkDOT])
	if !strings.Contains(dot, "graph") || !strings.Contains(dot, "alpha") {
		t.Errorf("DOT artifact looks wrong: %s", dot)
	}
}

func TestProcessTree(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	opts := writeFixtures(t)

	artifacts, _, err := r.ProcessTree(context.Background(), opts)
	if err != nil {
		t.Fatalf("ProcessTree: %v", err)
	}

	var root struct {
		Name     string            `json:"name"`
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(artifacts[ArtifactTree], &root); err != nil {
		t.Fatalf("unmarshal tree artifact: %v", err)
	}
	if root.Name != "root" {
		t.Errorf("root name = %q, want root", root.Name)
	}
	if len(root.Children) != 1 {
		t.Errorf("root children = %d, want 1", len(root.Children))
	}
}

func TestProcessMap(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	opts := writeFixtures(t)

	artifacts, _, err := r.ProcessMap(context.Background(), opts)
	if err != nil {
		t.Fatalf("ProcessMap: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Properties struct {
				City string `json:"city"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(artifacts[ArtifactMap], &fc); err != nil {
		t.Fatalf("unmarshal map artifact: %v", err)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q", fc.Type)
	}
	// Hamlet is small and not a primary capital
	if len(fc.Features) != 1 || fc.Features[0].Properties.City != "Metropolis" {
		t.Errorf("features = %+v, want only Metropolis", fc.Features)
	}
}

func TestProcessNetworkCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	r := NewRunner(c, nil, discardLogger())
	opts := writeFixtures(t)
	ctx := context.Background()

	first, hit, err := r.ProcessNetwork(ctx, opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if hit {
		t.Error("first run should miss")
	}

	second, hit, err := r.ProcessNetwork(ctx, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !hit {
		t.Error("second run should hit cache")
	}
	if string(first[ArtifactNetwork]) != string(second[ArtifactNetwork]) {
		t.Error("cached artifact differs from computed artifact")
	}

	// Refresh bypasses the cache
	_, hit, err = r.ProcessNetwork(ctx, withRefresh(opts))
	if err != nil {
		t.Fatalf("refresh run: %v", err)
	}
	if hit {
		t.Error("refresh run should not hit cache")
	}
}

func withRefresh(opts Options) Options {
	opts.Refresh = true
	return opts
}

// flakyCache delegates to an inner cache after failing a set number of
// reads with a transient error.
type flakyCache struct {
	inner    cache.Cache
	getFails int
}

func (c *flakyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getFails > 0 {
		c.getFails--
		return nil, false, cache.Retryable(stderrors.New("backend unavailable"))
	}
	return c.inner.Get(ctx, key)
}

func (c *flakyCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, data, ttl)
}

func (c *flakyCache) Delete(ctx context.Context, key string) error { return c.inner.Delete(ctx, key) }
func (c *flakyCache) Close() error                                 { return c.inner.Close() }

func TestRunnerRetriesTransientCacheReads(t *testing.T) {
	inner, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	flaky := &flakyCache{inner: inner}
	r := NewRunner(flaky, nil, discardLogger())
	opts := writeFixtures(t)
	ctx := context.Background()

	if _, _, err := r.ProcessMap(ctx, opts); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// One transient read failure must not turn a cached entry into a miss.
	flaky.getFails = 1
	_, hit, err := r.ProcessMap(ctx, opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !hit {
		t.Error("transient backend failure was treated as a cache miss")
	}
}

func TestProcessNetworkWarningsCarryCodes(t *testing.T) {
	dir := t.TempDir()
	messy := filepath.Join(dir, "messy.net")
	content := `*Vertices
1 "a"
2 "b"
oops
*Edges
1 7
`
	if err := os.WriteFile(messy, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := Options{GraphFile: messy, Logger: log.New(&buf)}
	r := NewRunner(nil, nil, discardLogger())
	if _, _, err := r.ProcessNetwork(context.Background(), opts); err != nil {
		t.Fatalf("ProcessNetwork: %v", err)
	}

	// Malformed vertex row, dangling edge endpoint, and the isolated node 2
	// each degrade the run; the warnings must say which condition fired.
	out := buf.String()
	for _, code := range []errors.Code{
		errors.ErrCodeMalformedLine,
		errors.ErrCodeDanglingEdge,
		errors.ErrCodeDisconnectedMetric,
	} {
		if !strings.Contains(out, string(code)) {
			t.Errorf("warnings missing code %s:\n%s", code, out)
		}
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	opts := writeFixtures(t)
	opts.OutputDir = filepath.Join(t.TempDir(), "out")

	result, err := r.Execute(context.Background(), nil, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if len(result.Failures) != 0 {
		t.Errorf("Failures = %v", result.Failures)
	}

	for _, name := range []string{ArtifactNetwork, ArtifactNetworkDOT, ArtifactTree, ArtifactMap} {
		if _, ok := result.Artifacts[name]; !ok {
			t.Errorf("missing artifact %s", name)
		}
		if _, err := os.Stat(filepath.Join(opts.OutputDir, name)); err != nil {
			t.Errorf("artifact file %s not written: %v", name, err)
		}
	}

	if result.Stats.NetworkNodes != 3 || result.Stats.NetworkEdges != 2 {
		t.Errorf("network stats = %d/%d, want 3/2", result.Stats.NetworkNodes, result.Stats.NetworkEdges)
	}
	if result.Stats.TreeNodes != 3 {
		t.Errorf("tree stats = %d, want 3", result.Stats.TreeNodes)
	}
	if result.Stats.MapFeatures != 1 {
		t.Errorf("map stats = %d, want 1", result.Stats.MapFeatures)
	}
}

func TestExecuteFailureIsolation(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	opts := writeFixtures(t)
	opts.GraphFile = filepath.Join(t.TempDir(), "missing.net")

	result, err := r.Execute(context.Background(), AllKinds, opts)
	if err != nil {
		t.Fatalf("Execute should not fail when some pipelines succeed: %v", err)
	}

	failure, ok := result.Failures[KindNetwork]
	if !ok {
		t.Fatal("network failure should be recorded")
	}
	if !errors.Is(failure, errors.ErrCodeDatasetIO) {
		t.Errorf("failure code = %q, want DATASET_IO", errors.GetCode(failure))
	}

	// The other pipelines still produced artifacts
	if _, ok := result.Artifacts[ArtifactTree]; !ok {
		t.Error("tree artifact missing")
	}
	if _, ok := result.Artifacts[ArtifactMap]; !ok {
		t.Error("map artifact missing")
	}
}

func TestExecuteAllFail(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	missing := t.TempDir()
	opts := Options{
		GraphFile: filepath.Join(missing, "a.net"),
		Logger:    discardLogger(),
	}

	result, err := r.Execute(context.Background(), []string{KindNetwork}, opts)
	if err == nil {
		t.Fatal("expected error when every pipeline fails")
	}
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("error code = %q, want INTERNAL_ERROR", errors.GetCode(err))
	}
	if len(result.Failures) != 1 {
		t.Errorf("Failures = %v", result.Failures)
	}
}

func TestExecuteInvalidKind(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	opts := writeFixtures(t)

	_, err := r.Execute(context.Background(), []string{"chart"}, opts)
	if err == nil {
		t.Fatal("expected error for invalid kind")
	}
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error code = %q, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{MaxDepth: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.RootID != DefaultRootID {
		t.Errorf("RootID = %d, want default %d", opts.RootID, DefaultRootID)
	}
	if opts.MinPopulation != DefaultMinPopulation {
		t.Errorf("MinPopulation = %v, want default", opts.MinPopulation)
	}
	if opts.CacheTTL != cache.TTLArtifact {
		t.Errorf("CacheTTL = %v, want default", opts.CacheTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Zero max depth is a valid request (root only), negative is not
	zero := Options{MaxDepth: 0}
	if err := zero.ValidateAndSetDefaults(); err != nil {
		t.Errorf("zero max depth should validate: %v", err)
	}
	neg := Options{MaxDepth: -1}
	if err := neg.ValidateAndSetDefaults(); err == nil {
		t.Error("negative max depth should fail validation")
	}
}

func TestTreeErrorMapping(t *testing.T) {
	r := NewRunner(nil, nil, discardLogger())
	dir := t.TempDir()

	// Header-only tables: structurally valid CSV, no rows
	empty := filepath.Join(dir, "empty-nodes.csv")
	if err := os.WriteFile(empty, []byte("node_id,node_name\n"), 0644); err != nil {
		t.Fatal(err)
	}
	links := filepath.Join(dir, "links.csv")
	if err := os.WriteFile(links, []byte("source_node_id,target_node_id\n"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := Options{NodesFile: empty, LinksFile: links, Logger: discardLogger()}
	_, _, err := r.ProcessTree(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for empty hierarchy")
	}
	if !errors.Is(err, errors.ErrCodeEmptyHierarchy) {
		t.Errorf("error code = %q, want EMPTY_HIERARCHY", errors.GetCode(err))
	}
}
