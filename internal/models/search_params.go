package models

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// SortField is a sortable listing attribute
type SortField string

const (
	SortByListPrice    SortField = "listPrice"
	SortByDaysOnMarket SortField = "daysOnMarket"
	SortByListingDate  SortField = "listingDate"
	SortByUpdatedAt    SortField = "updatedAt"
)

// Valid reports whether f is one of the supported sort fields
func (f SortField) Valid() bool {
	switch f {
	case SortByListPrice, SortByDaysOnMarket, SortByListingDate, SortByUpdatedAt:
		return true
	default:
		return false
	}
}

// SortOrder is the sort direction
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Valid reports whether o is asc or desc
func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

// HOAFilter restricts listings by association fee
type HOAFilter struct {
	MaxFee    *float64 `json:"maxFee,omitempty"`
	Frequency string   `json:"frequency,omitempty"`
}

// GeoCircle is a search radius in miles around a point
type GeoCircle struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusMi float64 `json:"radiusMi"`
}

// SearchParams is the canonical listing query
type SearchParams struct {
	Query           string     `json:"q,omitempty"`
	MinPrice        *float64   `json:"minPrice,omitempty"`
	MaxPrice        *float64   `json:"maxPrice,omitempty"`
	MinBeds         *float64   `json:"minBeds,omitempty"`
	MaxBeds         *float64   `json:"maxBeds,omitempty"`
	MinBaths        *float64   `json:"minBaths,omitempty"`
	MaxBaths        *float64   `json:"maxBaths,omitempty"`
	Status          []string   `json:"status,omitempty"`
	HOA             *HOAFilter `json:"hoa,omitempty"`
	PropertyType    []string   `json:"propertyType,omitempty"`
	PropertySubType []string   `json:"propertySubType,omitempty"`
	City            string     `json:"city,omitempty"`
	State           string     `json:"state,omitempty"`
	Coordinates     *GeoCircle `json:"coordinates,omitempty"`
	SortBy          SortField  `json:"sortBy,omitempty"`
	SortOrder       SortOrder  `json:"sortOrder,omitempty"`
	Offset          int        `json:"offset"`
	Limit           int        `json:"limit"`
}

// ClampLimit bounds a page size to [1, MaxLimit]; zero means DefaultLimit.
func ClampLimit(limit int) int {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ClampOffset bounds an offset to >= 0
func ClampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// EffectiveLimit is the page size actually requested from any backend
func (p SearchParams) EffectiveLimit() int {
	return ClampLimit(p.Limit)
}

// EffectiveOffset is the offset actually requested from any backend
func (p SearchParams) EffectiveOffset() int {
	return ClampOffset(p.Offset)
}
