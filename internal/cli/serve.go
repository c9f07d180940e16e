package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/vizpipe/vizpipe/pkg/buildinfo"
)

// serveCommand creates the serve command for the artifact HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve processed artifacts over HTTP",
		Long: `Serve processed artifacts over HTTP.

The server exposes the output directory of 'process' so a visualization
frontend can fetch network.json, tree.json, and cities.json directly.
A /healthz endpoint reports server status for probes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			if dir == "" {
				dir = cfg.Datasets.OutputDir
			}
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("artifact directory %s: %w (run 'vizpipe process' first)", dir, err)
			}
			return c.runServe(cmd, addr, dir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (TOML)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	cmd.Flags().StringVar(&dir, "dir", "", "artifact directory to serve (default from config)")

	return cmd
}

// newArtifactRouter builds the HTTP routes for the artifact server.
func (c *CLI) newArtifactRouter(dir string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(c.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	})
	r.Handle("/*", http.FileServer(http.Dir(dir)))

	return r
}

// logRequests is a chi middleware that logs each request through the CLI
// logger instead of chi's default stdlib logger.
func (c *CLI) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)
		c.Logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// runServe starts the HTTP server and blocks until the context is done.
func (c *CLI) runServe(cmd *cobra.Command, addr, dir string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           c.newArtifactRouter(dir),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving artifacts", "addr", addr, "dir", dir)
		printInfo("Serving %s on %s", dir, StyleHighlight.Render(addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-cmd.Context().Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
