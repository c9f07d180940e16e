package geo

// GeoJSON type tags.
const (
	typeFeature           = "Feature"
	typeFeatureCollection = "FeatureCollection"
	typePoint             = "Point"
)

// Geometry is a GeoJSON Point geometry with [lng, lat] coordinates.
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Properties is the descriptive bag attached to each feature. Optional
// values serialize as explicit JSON null - one "no value" sentinel across
// the whole dataset, never NaN and never a missing key.
type Properties struct {
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Population *float64 `json:"population"`
	Capital    *string  `json:"capital"`
	ISO2       *string  `json:"iso2"`
	ISO3       *string  `json:"iso3"`
}

// Feature is a GeoJSON point feature derived from one CityRecord.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// FeatureCollection is the GeoJSON artifact consumed by the map frontend.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Features projects city records into a FeatureCollection, preserving
// input order. The records are copied; mutating the collection never
// affects the source table.
func Features(records []CityRecord) FeatureCollection {
	features := make([]Feature, len(records))
	for i, rec := range records {
		features[i] = Feature{
			Type: typeFeature,
			Geometry: Geometry{
				Type:        typePoint,
				Coordinates: [2]float64{rec.Lng, rec.Lat},
			},
			Properties: Properties{
				City:       rec.City,
				Country:    rec.Country,
				Population: rec.Population,
				Capital:    rec.Capital,
				ISO2:       rec.ISO2,
				ISO3:       rec.ISO3,
			},
		}
	}
	return FeatureCollection{Type: typeFeatureCollection, Features: features}
}
