package models

// ListingAgent is the listing agent attached to a property
type ListingAgent struct {
	ID    *string `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Property is the canonical listing record. ListingID is the only natural key;
// every other field is optional.
type Property struct {
	ListingID string `json:"listingId"`

	AddressLine1 *string  `json:"addressLine1,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
	PostalCode   *string  `json:"postalCode,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`

	PropertyType    *string  `json:"propertyType,omitempty"`
	PropertySubType *string  `json:"propertySubType,omitempty"`
	Bedrooms        *int     `json:"bedrooms,omitempty"`
	Bathrooms       *float64 `json:"bathrooms,omitempty"`
	HalfBaths       *int     `json:"halfBaths,omitempty"`
	SquareFootage   *float64 `json:"squareFootage,omitempty"`
	YearBuilt       *int     `json:"yearBuilt,omitempty"`

	ListPrice          *float64 `json:"listPrice,omitempty"`
	OriginalListPrice  *float64 `json:"originalListPrice,omitempty"`
	PricePerSquareFoot *float64 `json:"pricePerSquareFoot,omitempty"`

	BuildingName          *string `json:"buildingName,omitempty"`
	UnitNumber            *string `json:"unitNumber,omitempty"`
	Floor                 *int    `json:"floor,omitempty"`
	TotalFloorsInBuilding *int    `json:"totalFloorsInBuilding,omitempty"`
	UnitsInBuilding       *int    `json:"unitsInBuilding,omitempty"`

	HOAFee       *float64 `json:"hoaFee,omitempty"`
	HOAFrequency *string  `json:"hoaFrequency,omitempty"`

	ListingDate  *string `json:"listingDate,omitempty"`
	DaysOnMarket *int    `json:"daysOnMarket,omitempty"`

	ListingAgent *ListingAgent `json:"listingAgent,omitempty"`

	Photos     []string `json:"photos,omitempty"`
	Features   []string `json:"features,omitempty"`
	Appliances []string `json:"appliances,omitempty"`
	Amenities  []string `json:"amenities,omitempty"`

	Status *string `json:"status,omitempty"`
	// LastUpdated is an ISO-8601 timestamp; lexical order is chronological order.
	LastUpdated *string `json:"lastUpdated,omitempty"`
	Source      *string `json:"source,omitempty"`
}

// SearchResult is one page of properties
type SearchResult struct {
	Properties []Property `json:"properties"`
	TotalCount int        `json:"totalCount"`
	HasMore    bool       `json:"hasMore"`
	NextOffset *int       `json:"nextOffset,omitempty"`
}

// NewSearchResult builds a page, deriving NextOffset from hasMore
func NewSearchResult(properties []Property, total int, hasMore bool, nextOffset int) SearchResult {
	if properties == nil {
		properties = []Property{}
	}
	result := SearchResult{
		Properties: properties,
		TotalCount: total,
		HasMore:    hasMore,
	}
	if hasMore {
		result.NextOffset = &nextOffset
	}
	return result
}

// UpsertError records a single property the reconciler could not write
type UpsertError struct {
	ListingID string `json:"listingId"`
	Message   string `json:"message"`
}

// UpsertReport summarises one reconciler batch
type UpsertReport struct {
	Upserted  int           `json:"upserted"`
	Updated   int           `json:"updated"`
	Unchanged int           `json:"unchanged"`
	Errors    []UpsertError `json:"errors,omitempty"`
}

// Failed returns the number of properties that could not be written
func (r UpsertReport) Failed() int {
	return len(r.Errors)
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i
func IntPtr(i int) *int { return &i }

// Float64Ptr returns a pointer to f
func Float64Ptr(f float64) *float64 { return &f }
