package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3t-leo/miamicondos/internal/models"
)

func decodeRecord(t *testing.T, raw string) Record {
	t.Helper()
	var r Record
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestNormalizeRecord_FullRecord(t *testing.T) {
	r := decodeRecord(t, `{
		"ListingKey": "A11223344",
		"UnparsedAddress": "1000 Brickell Ave 2304",
		"City": "Miami",
		"StateOrProvince": "FL",
		"PostalCode": "33131",
		"Latitude": 25.7643,
		"Longitude": -80.1918,
		"PropertyType": "Residential",
		"PropertySubType": "Condominium",
		"BedroomsTotal": 2,
		"BathroomsFull": 2,
		"BathroomsHalf": 1,
		"LivingArea": 1250,
		"YearBuilt": 2016,
		"ListPrice": 875000,
		"OriginalListPrice": 899000,
		"PricePerSquareFoot": 700,
		"BuildingName": "Brickell House",
		"UnitNumber": "2304",
		"FloorNumber": 23,
		"StoriesTotal": 46,
		"UnitsInBuilding": 374,
		"AssociationFee": 1100,
		"AssociationFeeFrequency": "Monthly",
		"ListingContractDate": "2024-02-01",
		"DaysOnMarket": 12,
		"ListAgentFullName": "Dana Ruiz",
		"ListAgentEmail": "dana@example.com",
		"Media": [{"MediaURL": "https://cdn.example.com/1.jpg"}, {"MediaURL": ""}, {"Order": 3}],
		"InteriorFeatures": ["Balcony"],
		"Appliances": ["Dishwasher", 4],
		"AssociationAmenities": ["Pool", "Gym"],
		"StandardStatus": "Active",
		"ModificationTimestamp": "2024-02-10T08:00:00Z"
	}`)

	p := NormalizeRecord(r, "miamire")

	assert.Equal(t, "A11223344", p.ListingID)
	assert.Equal(t, "1000 Brickell Ave 2304", *p.AddressLine1)
	assert.Equal(t, "FL", *p.State)
	assert.Equal(t, 25.7643, *p.Lat)
	assert.Equal(t, -80.1918, *p.Lng)
	assert.Equal(t, 2, *p.Bedrooms)
	assert.Equal(t, 2.0, *p.Bathrooms)
	assert.Equal(t, 1, *p.HalfBaths)
	assert.Equal(t, 1250.0, *p.SquareFootage)
	assert.Equal(t, 23, *p.Floor)
	assert.Equal(t, 46, *p.TotalFloorsInBuilding)
	assert.Equal(t, "Monthly", *p.HOAFrequency)
	assert.Equal(t, "2024-02-01", *p.ListingDate)
	require.NotNil(t, p.ListingAgent)
	assert.Equal(t, "Dana Ruiz", *p.ListingAgent.Name)
	assert.Equal(t, "dana@example.com", *p.ListingAgent.Email)
	assert.Nil(t, p.ListingAgent.Phone)
	assert.Equal(t, []string{"https://cdn.example.com/1.jpg"}, p.Photos)
	assert.Equal(t, []string{"Balcony"}, p.Features)
	assert.Equal(t, []string{"Dishwasher"}, p.Appliances)
	assert.Equal(t, []string{"Pool", "Gym"}, p.Amenities)
	assert.Equal(t, "Active", *p.Status)
	assert.Equal(t, "2024-02-10T08:00:00Z", *p.LastUpdated)
	assert.Equal(t, "miamire", *p.Source)
}

func TestNormalizeRecord_FallbackChains(t *testing.T) {
	r := decodeRecord(t, `{
		"_id": 98765,
		"Address": "1 Ocean Dr",
		"latitude": 25.1,
		"longitude": "-80.2",
		"BathroomsTotalInteger": 3,
		"SqFtTotal": 1800,
		"ListDate": "2024-03-01",
		"MlsStatus": "Pending",
		"UpdatedAt": "2024-03-05T00:00:00Z",
		"Media": "not-a-list",
		"InteriorFeatures": "Balcony"
	}`)

	p := NormalizeRecord(r, "")

	assert.Equal(t, "98765", p.ListingID, "numeric ids are coerced to strings")
	assert.Equal(t, "1 Ocean Dr", *p.AddressLine1)
	assert.Equal(t, 25.1, *p.Lat)
	assert.Equal(t, -80.2, *p.Lng)
	assert.Equal(t, 3.0, *p.Bathrooms)
	assert.Equal(t, 1800.0, *p.SquareFootage)
	assert.Equal(t, "2024-03-01", *p.ListingDate)
	assert.Equal(t, "Pending", *p.Status)
	assert.Equal(t, "2024-03-05T00:00:00Z", *p.LastUpdated)
	assert.Equal(t, []string{}, p.Photos)
	assert.Nil(t, p.Features, "non-array features are dropped")
	assert.Nil(t, p.ListingAgent)
	assert.Nil(t, p.Source)
}

func TestNormalizeRecord_PrecedenceAndEmpty(t *testing.T) {
	r := decodeRecord(t, `{"ListingKey": "", "_id": "ID-2", "listing_id": "ID-3", "UnparsedAddress": "", "StreetNumberNumeric": 1200}`)
	p := NormalizeRecord(r, "miamire")

	assert.Equal(t, "ID-2", p.ListingID)
	assert.Equal(t, "1200", *p.AddressLine1)

	empty := NormalizeRecord(Record{}, "miamire")
	assert.Equal(t, "", empty.ListingID)
	assert.Nil(t, empty.ListPrice)
	assert.Equal(t, []string{}, empty.Photos)
}

func TestRecord_NumberRejectsGarbage(t *testing.T) {
	r := Record{"a": "abc", "b": true, "c": "42.5"}
	assert.Nil(t, r.Number("a"))
	assert.Nil(t, r.Number("b"))
	assert.Equal(t, 42.5, *r.Number("a", "b", "c"))
	assert.Equal(t, 43, *r.Int("c"))
}

func TestBuildQuery(t *testing.T) {
	params := models.SearchParams{
		Query:           "brickell",
		MaxPrice:        models.Float64Ptr(1500000),
		MinBeds:         models.Float64Ptr(2),
		HOA:             &models.HOAFilter{MaxFee: models.Float64Ptr(900), Frequency: "Monthly"},
		PropertyType:    []string{"Condo", "Co-op"},
		PropertySubType: []string{"Condominium"},
		State:           "FL",
		Coordinates:     &models.GeoCircle{Lat: 25.76, Lng: -80.19, RadiusMi: 2.5},
		SortBy:          models.SortByListPrice,
		SortOrder:       models.SortDesc,
		Limit:           500,
		Offset:          -3,
	}

	q := BuildQuery(params)

	assert.Equal(t, "brickell", q.Get("q"))
	assert.Equal(t, "1500000", q.Get("max_price"))
	assert.Equal(t, "2", q.Get("min_beds"))
	assert.Equal(t, "900", q.Get("hoa_max"))
	assert.Equal(t, "Monthly", q.Get("hoa_freq"))
	assert.Equal(t, "Condo,Co-op", q.Get("property_type"))
	assert.Equal(t, "Condominium", q.Get("property_subtype"))
	assert.Equal(t, "FL", q.Get("state"))
	assert.Equal(t, "25.76,-80.19", q.Get("near"))
	assert.Equal(t, "2.5", q.Get("radius"))
	assert.Equal(t, "listPrice", q.Get("sort_by"))
	assert.Equal(t, "desc", q.Get("order"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "0", q.Get("offset"))
	assert.False(t, q.Has("min_price"))
	assert.False(t, q.Has("city"))
	assert.False(t, q.Has("status"))
}

func TestListingsURL(t *testing.T) {
	u := listingsURL("https://api.example.com/", "miamire", "tok", BuildQuery(models.SearchParams{}))
	assert.Contains(t, u, "https://api.example.com/api/v2/miamire/listings?")
	assert.Contains(t, u, "access_token=tok")
}

func TestCacheKey(t *testing.T) {
	a := models.SearchParams{City: "Miami", MinPrice: models.Float64Ptr(100), Limit: 20}
	b := models.SearchParams{City: "Miami", MinPrice: models.Float64Ptr(100), Limit: 20}
	c := models.SearchParams{City: "Miami", MinPrice: models.Float64Ptr(200), Limit: 20}

	assert.Equal(t, CacheKey(a), CacheKey(b))
	assert.NotEqual(t, CacheKey(a), CacheKey(c))
	assert.Regexp(t, `^h[0-9a-f]{16}$`, CacheKey(a))
}
