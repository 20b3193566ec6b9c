package bridge

import (
	"github.com/n3t-leo/miamicondos/internal/models"
)

// MockSource serves a fixed listing set in place of the upstream API
type MockSource struct {
	listings []models.Property
}

func NewMockSource(listings []models.Property) *MockSource {
	return &MockSource{listings: listings}
}

// DefaultMockListings is the built-in offline data set
func DefaultMockListings() []models.Property {
	return []models.Property{
		{
			ListingID:             "MOCK-1001",
			AddressLine1:          models.StringPtr("123 Mockingbird Ln"),
			City:                  models.StringPtr("Miami"),
			State:                 models.StringPtr("FL"),
			PostalCode:            models.StringPtr("33101"),
			Lat:                   models.Float64Ptr(25.7617),
			Lng:                   models.Float64Ptr(-80.1918),
			PropertyType:          models.StringPtr("Condo"),
			Bedrooms:              models.IntPtr(2),
			Bathrooms:             models.Float64Ptr(2),
			SquareFootage:         models.Float64Ptr(1100),
			YearBuilt:             models.IntPtr(2010),
			ListPrice:             models.Float64Ptr(550000),
			BuildingName:          models.StringPtr("Mock Tower"),
			UnitNumber:            models.StringPtr("1203"),
			Floor:                 models.IntPtr(12),
			TotalFloorsInBuilding: models.IntPtr(30),
			HOAFee:                models.Float64Ptr(650),
			HOAFrequency:          models.StringPtr("Monthly"),
			ListingDate:           models.StringPtr("2024-01-08T12:00:00Z"),
			DaysOnMarket:          models.IntPtr(7),
			Photos:                []string{},
			Features:              []string{"Pool", "Gym"},
			Amenities:             []string{"Valet", "Doorman"},
			Status:                models.StringPtr("Active"),
			LastUpdated:           models.StringPtr("2024-01-15T12:00:00Z"),
			Source:                models.StringPtr(SourceMock),
		},
	}
}

// Search pages through the fixed listings. Filters other than offset and
// limit are ignored.
func (m *MockSource) Search(params models.SearchParams) models.SearchResult {
	offset, limit := params.EffectiveOffset(), params.EffectiveLimit()
	total := len(m.listings)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	page := make([]models.Property, end-start)
	copy(page, m.listings[start:end])

	hasMore := offset+len(page) < total
	return models.NewSearchResult(page, total, hasMore, offset+limit)
}
