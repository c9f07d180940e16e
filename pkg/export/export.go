// Package export renders the pipeline's in-memory structures into the JSON
// artifacts consumed by the visualization frontend.
//
// Three artifacts are produced: a node/link network document
// (network.json), a nested hierarchy tree (tree.json) and a GeoJSON
// feature collection (cities.json). All serializers are pure
// transformations - they never mutate their inputs and have no side
// effects beyond the writer they are handed.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// writeJSON encodes v with two-space indentation, the format the frontend
// checks into version control for diffing.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFile writes v as JSON to path with 0644 permissions.
func writeFile(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeJSON(f, v)
}
