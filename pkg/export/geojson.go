package export

import (
	"io"

	"github.com/vizpipe/vizpipe/pkg/geo"
)

// MarshalFeatureCollection converts a feature collection to JSON bytes.
func MarshalFeatureCollection(fc geo.FeatureCollection) ([]byte, error) {
	return marshal(fc)
}

// WriteFeatureCollection writes the feature collection as JSON to w.
func WriteFeatureCollection(w io.Writer, fc geo.FeatureCollection) error {
	return writeJSON(w, fc)
}

// WriteFeatureCollectionFile writes the feature collection to a JSON file.
func WriteFeatureCollectionFile(path string, fc geo.FeatureCollection) error {
	return writeFile(path, fc)
}
