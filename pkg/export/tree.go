package export

import (
	"io"

	"github.com/vizpipe/vizpipe/pkg/hierarchy/tree"
)

// MarshalTree converts an extracted tree to JSON bytes. The nested shape
// is fixed by the tree package: every node carries either a non-empty
// children list or a terminal value, never both.
func MarshalTree(root tree.Node) ([]byte, error) {
	return marshal(root)
}

// WriteTree writes the tree as JSON to w.
func WriteTree(w io.Writer, root tree.Node) error {
	return writeJSON(w, root)
}

// WriteTreeFile writes the tree to a JSON file.
func WriteTreeFile(path string, root tree.Node) error {
	return writeFile(path, root)
}
