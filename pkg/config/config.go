// Package config loads pipeline settings from a TOML file.
//
// All fields have working defaults, so a config file is optional: the CLI
// runs with Default() when no file is given, and a file only needs to name
// the settings it changes.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/vizpipe/vizpipe/pkg/errors"
)

// Config holds all pipeline settings.
type Config struct {
	Datasets Datasets `toml:"datasets"`
	Process  Process  `toml:"process"`
	Cache    CacheCfg `toml:"cache"`
	Serve    Serve    `toml:"serve"`
}

// Datasets names the input files and the output directory.
type Datasets struct {
	// GraphFile is the Pajek network file for the network pipeline.
	GraphFile string `toml:"graph_file"`
	// NodesFile and LinksFile are the CSV tables for the tree pipeline.
	NodesFile string `toml:"nodes_file"`
	LinksFile string `toml:"links_file"`
	// CitiesFile is the CSV table for the map pipeline.
	CitiesFile string `toml:"cities_file"`
	// OutputDir receives the exported artifacts.
	OutputDir string `toml:"output_dir"`
}

// Process holds the options that shape pipeline output.
type Process struct {
	// RootID is the preferred root for subtree extraction.
	RootID int `toml:"root_id"`
	// MaxDepth bounds subtree extraction. Zero keeps only the root.
	MaxDepth int `toml:"max_depth"`
	// MinPopulation is the population threshold for city filtering.
	MinPopulation float64 `toml:"min_population"`
	// DirectedArcs treats Pajek *Arcs sections as directed edges.
	DirectedArcs bool `toml:"directed_arcs"`
}

// CacheCfg selects and configures the artifact cache backend.
type CacheCfg struct {
	// Backend is one of "none", "file", "redis".
	Backend string `toml:"backend"`
	// Dir is the cache directory for the file backend.
	Dir string `toml:"dir"`
	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`
	// TTLHours is the entry lifetime. Zero means no expiration.
	TTLHours int `toml:"ttl_hours"`
}

// Serve configures the artifact HTTP server.
type Serve struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `toml:"addr"`
}

// Default returns a Config with working defaults for every field.
func Default() Config {
	return Config{
		Datasets: Datasets{
			GraphFile:  "data/network.net",
			NodesFile:  "data/nodes.csv",
			LinksFile:  "data/links.csv",
			CitiesFile: "data/cities.csv",
			OutputDir:  "out",
		},
		Process: Process{
			RootID:        1,
			MaxDepth:      3,
			MinPopulation: 1_000_000,
		},
		Cache: CacheCfg{
			Backend: "file",
			Dir:     ".vizpipe-cache",
		},
		Serve: Serve{
			Addr: ":8080",
		},
	}
}

// Load reads a TOML config file, layered over the defaults. Settings the
// file does not mention keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeDatasetIO, err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing config %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "", "none", "file", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want none, file, or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires redis_addr")
	}
	if c.Process.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_depth must be non-negative, got %d", c.Process.MaxDepth)
	}
	return nil
}
