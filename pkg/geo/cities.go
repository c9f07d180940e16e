// Package geo filters the world-cities table and projects it into
// GeoJSON-shaped point features for map rendering.
package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

var errMissingColumn = errors.New("missing required column")

// CityRecord is one immutable row of the world-cities table. Required
// fields are always set; optional fields are nil when the source cell is
// empty or unparseable.
type CityRecord struct {
	City    string
	Country string
	Lat     float64
	Lng     float64

	Population *float64 // often absent for small places
	Capital    *string  // "primary", "admin", "minor", or nil
	ISO2       *string
	ISO3       *string
}

// ReadStats reports what the reader encountered.
type ReadStats struct {
	Rows        int // well-formed rows
	SkippedRows int // rows with unreadable CSV or missing required cells
}

// ReadCitiesFile opens and reads a world-cities CSV file.
func ReadCitiesFile(path string) ([]CityRecord, *ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCities(f)
}

// ReadCities reads the city table. Columns are located by header name
// (city, country, lat, lng required; population, capital, iso2, iso3
// optional), not by position. Rows missing a required field are skipped
// and counted; coordinate validity is the filter's concern, not the
// reader's.
func ReadCities(r io.Reader) ([]CityRecord, *ReadStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"city", "country", "lat", "lng"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", errMissingColumn, required)
		}
	}

	stats := &ReadStats{}
	var records []CityRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			stats.SkippedRows++
			continue
		}

		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		city := cell("city")
		country := cell("country")
		lat, errLat := strconv.ParseFloat(cell("lat"), 64)
		lng, errLng := strconv.ParseFloat(cell("lng"), 64)
		if city == "" || errLat != nil || errLng != nil {
			stats.SkippedRows++
			continue
		}

		records = append(records, CityRecord{
			City:       city,
			Country:    country,
			Lat:        lat,
			Lng:        lng,
			Population: optFloat(cell("population")),
			Capital:    optString(cell("capital")),
			ISO2:       optString(cell("iso2")),
			ISO3:       optString(cell("iso3")),
		})
		stats.Rows++
	}
	return records, stats, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
