package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vizpipe/vizpipe/pkg/errors"
	"github.com/vizpipe/vizpipe/pkg/pipeline"
)

// processCommand creates the process command that runs the dataset pipelines.
func (c *CLI) processCommand() *cobra.Command {
	var (
		configPath string
		noCache    bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "process [network|tree|map]...",
		Short: "Process raw datasets into visualization artifacts",
		Long: `Process raw datasets into visualization artifacts.

Three pipelines are available:

  network   Pajek graph file → centrality metrics → force-graph JSON + DOT
  tree      hierarchy CSV tables → depth-bounded subtree → nested JSON
  map       world-cities CSV → significance filter → GeoJSON

With no arguments all three pipelines run. A failing pipeline is reported
and skipped; the others still produce their artifacts.

Results are cached by input content, so re-running over unchanged datasets
is instant. Use --refresh to force recomputation.`,
		ValidArgs: pipeline.AllKinds,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			defaults := pipeline.FromConfig(cfg)
			applyUnsetFlags(cmd, &opts, defaults)
			opts.Logger = c.Logger

			runner, err := c.newRunner(cmd, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return c.runProcess(cmd, args, runner, opts)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", "", "output directory for artifacts")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and recompute")

	cmd.Flags().StringVar(&opts.GraphFile, "graph", "", "Pajek graph file (network)")
	cmd.Flags().BoolVar(&opts.DirectedArcs, "directed-arcs", false, "treat *Arcs sections as directed (network)")
	cmd.Flags().StringVar(&opts.NodesFile, "nodes", "", "hierarchy node table CSV (tree)")
	cmd.Flags().StringVar(&opts.LinksFile, "links", "", "hierarchy link table CSV (tree)")
	cmd.Flags().IntVar(&opts.RootID, "root", 0, "preferred subtree root node ID (tree)")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "subtree depth bound, 0 keeps only the root (tree)")
	cmd.Flags().StringVar(&opts.CitiesFile, "cities", "", "world-cities table CSV (map)")
	cmd.Flags().Float64Var(&opts.MinPopulation, "min-population", 0, "population threshold for city significance (map)")

	return cmd
}

// applyUnsetFlags fills every option the user did not set on the command
// line from the config-derived defaults. Flags always win over config.
func applyUnsetFlags(cmd *cobra.Command, opts *pipeline.Options, defaults pipeline.Options) {
	flagFor := map[string]func(){
		"graph":          func() { opts.GraphFile = defaults.GraphFile },
		"directed-arcs":  func() { opts.DirectedArcs = defaults.DirectedArcs },
		"nodes":          func() { opts.NodesFile = defaults.NodesFile },
		"links":          func() { opts.LinksFile = defaults.LinksFile },
		"root":           func() { opts.RootID = defaults.RootID },
		"max-depth":      func() { opts.MaxDepth = defaults.MaxDepth },
		"cities":         func() { opts.CitiesFile = defaults.CitiesFile },
		"min-population": func() { opts.MinPopulation = defaults.MinPopulation },
		"output":         func() { opts.OutputDir = defaults.OutputDir },
	}
	for name, apply := range flagFor {
		if !cmd.Flags().Changed(name) {
			apply()
		}
	}
	opts.CacheTTL = defaults.CacheTTL
}

// runProcess executes the pipelines and reports the outcome.
func (c *CLI) runProcess(cmd *cobra.Command, kinds []string, runner *pipeline.Runner, opts pipeline.Options) error {
	if len(kinds) == 0 {
		kinds = pipeline.AllKinds
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(cmd.Context(), "Processing datasets...")
	spinner.Start()

	result, err := runner.Execute(cmd.Context(), kinds, opts)
	if err != nil {
		spinner.StopWithError("Processing failed")
		if result != nil {
			for kind, failure := range result.Failures {
				printDetail("%s: %s", kind, errors.UserMessage(failure))
			}
		}
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Processed %d of %d pipelines", len(kinds)-len(result.Failures), len(kinds)))

	for _, kind := range kinds {
		if failure, ok := result.Failures[kind]; ok {
			printWarning("%s failed: %s", kind, errors.UserMessage(failure))
			continue
		}
		printSuccess("%s", kind)
		switch kind {
		case pipeline.KindNetwork:
			printStats([]string{
				fmt.Sprintf("%d nodes", result.Stats.NetworkNodes),
				fmt.Sprintf("%d edges", result.Stats.NetworkEdges),
			}, result.CacheInfo.NetworkHit)
		case pipeline.KindTree:
			printStats([]string{
				fmt.Sprintf("%d nodes", result.Stats.TreeNodes),
			}, result.CacheInfo.TreeHit)
		case pipeline.KindMap:
			printStats([]string{
				fmt.Sprintf("%d features", result.Stats.MapFeatures),
			}, result.CacheInfo.MapHit)
		}
	}

	if opts.OutputDir != "" {
		for _, name := range artifactNames(kinds, result) {
			printFile(filepath.Join(opts.OutputDir, name))
		}
		printNextStep("Serve the artifacts", fmt.Sprintf("vizpipe serve --dir %s", opts.OutputDir))
	}

	return nil
}

// artifactNames returns the produced artifact filenames in pipeline order.
func artifactNames(kinds []string, result *pipeline.Result) []string {
	order := map[string][]string{
		pipeline.KindNetwork: {pipeline.ArtifactNetwork, pipeline.ArtifactNetworkDOT},
		pipeline.KindTree:    {pipeline.ArtifactTree},
		pipeline.KindMap:     {pipeline.ArtifactMap},
	}
	var names []string
	for _, kind := range kinds {
		for _, name := range order[kind] {
			if _, ok := result.Artifacts[name]; ok {
				names = append(names, name)
			}
		}
	}
	return names
}
