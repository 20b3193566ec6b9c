// Package params turns loosely typed request input into models.SearchParams.
//
// Nothing here returns an error: unparseable values are dropped and the
// pagination bounds are always enforced.
package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// DefaultRefreshLimit is the page size used by bulk refresh paths
const DefaultRefreshLimit = 100

// Source is a read-only view of request input
type Source interface {
	// Lookup returns the raw string for key and whether it was supplied
	Lookup(key string) (string, bool)
}

// Query adapts url.Values to Source
type Query url.Values

func (q Query) Lookup(key string) (string, bool) {
	values, ok := q[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Body adapts a decoded JSON object to Source. Arrays are joined with commas
// so they go through the same list parsing as query strings.
type Body map[string]interface{}

func (b Body) Lookup(key string) (string, bool) {
	raw, ok := b[key]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), true
	default:
		return "", false
	}
}

// FromQuery normalizes URL query parameters with the default page size
func FromQuery(values url.Values) models.SearchParams {
	return Normalize(Query(values), models.DefaultLimit)
}

// FromBody normalizes a JSON request body with the given default page size
func FromBody(body map[string]interface{}, defaultLimit int) models.SearchParams {
	return Normalize(Body(body), defaultLimit)
}

// Normalize builds a SearchParams from src. limit falls back to defaultLimit
// and is clamped to [1, 100]; offset is clamped to >= 0.
func Normalize(src Source, defaultLimit int) models.SearchParams {
	p := models.SearchParams{
		Query:           text(src, "q"),
		MinPrice:        number(src, "minPrice"),
		MaxPrice:        number(src, "maxPrice"),
		MinBeds:         number(src, "minBeds"),
		MaxBeds:         number(src, "maxBeds"),
		MinBaths:        number(src, "minBaths"),
		MaxBaths:        number(src, "maxBaths"),
		Status:          list(src, "status"),
		PropertyType:    list(src, "propertyType"),
		PropertySubType: list(src, "propertySubType"),
		City:            text(src, "city"),
		State:           text(src, "state"),
		Coordinates:     circle(src),
	}

	maxFee := number(src, "hoaMaxFee")
	frequency := text(src, "hoaFrequency")
	if maxFee != nil || frequency != "" {
		p.HOA = &models.HOAFilter{MaxFee: maxFee, Frequency: frequency}
	}

	if sortBy := models.SortField(text(src, "sortBy")); sortBy.Valid() {
		p.SortBy = sortBy
	}
	if order := models.SortOrder(strings.ToLower(text(src, "sortOrder"))); order.Valid() {
		p.SortOrder = order
	}

	if offset := number(src, "offset"); offset != nil {
		p.Offset = models.ClampOffset(toInt(*offset))
	}
	p.Limit = models.ClampLimit(defaultLimit)
	if limit := number(src, "limit"); limit != nil {
		p.Limit = clampExplicitLimit(toInt(*limit))
	}

	return p
}

// clampExplicitLimit differs from models.ClampLimit in that an explicit 0 is
// raised to 1 instead of meaning "default".
func clampExplicitLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	return models.ClampLimit(limit)
}

func toInt(f float64) int {
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if f < math.MinInt32 {
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

func text(src Source, key string) string {
	v, _ := src.Lookup(key)
	return strings.TrimSpace(v)
}

// list splits a comma-delimited value. Absent or all-empty input yields nil.
func list(src Source, key string) []string {
	raw, ok := src.Lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// number parses a finite float. Absent, empty and malformed input yield nil.
func number(src Source, key string) *float64 {
	raw, ok := src.Lookup(key)
	if !ok {
		return nil
	}
	return parseFinite(raw)
}

func parseFinite(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// circle reads near=<lat>,<lng> and radius. All three must be finite or the
// whole circle is dropped.
func circle(src Source) *models.GeoCircle {
	near, ok := src.Lookup("near")
	if !ok {
		return nil
	}
	parts := strings.Split(near, ",")
	if len(parts) != 2 {
		return nil
	}
	lat := parseFinite(parts[0])
	lng := parseFinite(parts[1])
	radius := number(src, "radius")
	if lat == nil || lng == nil || radius == nil {
		return nil
	}
	return &models.GeoCircle{Lat: *lat, Lng: *lng, RadiusMi: *radius}
}
