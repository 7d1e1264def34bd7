// Package geojson provides small WKT/WKB <-> GeoJSON conversion helpers
// for consumers embedding this module. The teacher's hand-rolled WKT
// parser/serializer is replaced here by thin wrappers over
// github.com/paulmach/orb, which the pack makes available and which
// already has full WKT/WKB coverage; internal/columnar's geometry column
// uses the same library for its WKB encoding, so this package keeps the
// two geometry code paths on one dependency rather than two.
package geojson

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// ParseWKT parses a WKT string into a GeoJSON geometry.
func ParseWKT(s string) (*geojson.Geometry, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("geojson: parsing wkt: %w", err)
	}
	return geojson.NewGeometry(g), nil
}

// ToWKT renders a GeoJSON geometry as WKT.
func ToWKT(g *geojson.Geometry) (string, error) {
	if g == nil || g.Geometry == nil {
		return "", fmt.Errorf("geojson: nil geometry")
	}
	return wkt.MarshalString(g.Geometry), nil
}

// ParseWKB parses a WKB byte slice into a GeoJSON geometry, the same
// decode path internal/columnar uses for its geometry column.
func ParseWKB(raw []byte) (*geojson.Geometry, error) {
	g, err := wkb.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("geojson: parsing wkb: %w", err)
	}
	return geojson.NewGeometry(g), nil
}

// ToWKB renders a GeoJSON geometry as WKB.
func ToWKB(g *geojson.Geometry) ([]byte, error) {
	if g == nil || g.Geometry == nil {
		return nil, fmt.Errorf("geojson: nil geometry")
	}
	return wkb.Marshal(g.Geometry)
}

// BoundToBbox converts an orb.Bound (a geometry's Bound()) into a
// minimal 2D [west, south, east, north] bbox slice.
func BoundToBbox(b orb.Bound) []float64 {
	return []float64{b.Min.X(), b.Min.Y(), b.Max.X(), b.Max.Y()}
}
