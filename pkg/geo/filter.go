package geo

import "math"

// CapitalPrimary is the capital-status value that passes the filter
// regardless of population.
const CapitalPrimary = "primary"

// FilterOptions configures city selection.
type FilterOptions struct {
	// MinPopulation keeps cities whose population strictly exceeds it.
	// Records without population data fail this clause (they can still
	// pass as primary capitals).
	MinPopulation float64

	// Logger receives a warning per record dropped for bad coordinates.
	// Nil disables warnings.
	Logger func(format string, args ...any)
}

// FilterStats reports what the filter dropped and kept.
type FilterStats struct {
	Input          int
	Kept           int
	BadCoordinates int // non-finite lat/lng, excluded regardless of predicate
}

// Filter returns the records that satisfy the selection predicate -
// population above the threshold OR primary-capital status - preserving
// input order. Records with non-finite coordinates are excluded and
// counted, never fatal.
//
// Filtering is idempotent: applying the same options to the output yields
// an identical result set.
func Filter(records []CityRecord, opts FilterOptions) ([]CityRecord, *FilterStats) {
	stats := &FilterStats{Input: len(records)}
	var kept []CityRecord
	for _, rec := range records {
		if !isFinite(rec.Lat) || !isFinite(rec.Lng) {
			stats.BadCoordinates++
			if opts.Logger != nil {
				opts.Logger("geo: dropping %q: non-finite coordinates (%v, %v)", rec.City, rec.Lat, rec.Lng)
			}
			continue
		}

		bigEnough := rec.Population != nil && *rec.Population > opts.MinPopulation
		primary := rec.Capital != nil && *rec.Capital == CapitalPrimary
		if !bigEnough && !primary {
			continue
		}
		kept = append(kept, rec)
		stats.Kept++
	}
	return kept, stats
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
