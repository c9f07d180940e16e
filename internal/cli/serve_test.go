package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestArtifactRouterHealthz(t *testing.T) {
	c := New(io.Discard, LogInfo)
	router := c.newArtifactRouter(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal health response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
}

func TestArtifactRouterServesFiles(t *testing.T) {
	dir := t.TempDir()
	artifact := `{"nodes":[],"links":[]}`
	if err := os.WriteFile(filepath.Join(dir, "network.json"), []byte(artifact), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	router := c.newArtifactRouter(dir)

	req := httptest.NewRequest(http.MethodGet, "/network.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != artifact {
		t.Errorf("body = %q, want %q", rec.Body.String(), artifact)
	}
}

func TestArtifactRouterMissingFile(t *testing.T) {
	c := New(io.Discard, LogInfo)
	router := c.newArtifactRouter(t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/nope.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
