package bridge

import (
	"math"
	"strconv"
	"strings"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// Record is one raw upstream listing as decoded from JSON
type Record map[string]interface{}

func (r Record) lookup(key string) (interface{}, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the first of keys holding a non-empty string or a number,
// rendered as text.
func (r Record) String(keys ...string) *string {
	for _, key := range keys {
		v, ok := r.lookup(key)
		if !ok {
			continue
		}
		switch value := v.(type) {
		case string:
			if value != "" {
				return &value
			}
		case float64:
			s := strconv.FormatFloat(value, 'f', -1, 64)
			return &s
		case bool:
			s := strconv.FormatBool(value)
			return &s
		}
	}
	return nil
}

// Number returns the first of keys holding a finite number or numeric string
func (r Record) Number(keys ...string) *float64 {
	for _, key := range keys {
		v, ok := r.lookup(key)
		if !ok {
			continue
		}
		var f float64
		switch value := v.(type) {
		case float64:
			f = value
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return &f
	}
	return nil
}

// Int is Number rounded to the nearest integer
func (r Record) Int(keys ...string) *int {
	f := r.Number(keys...)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

// Strings returns the string elements of an array field, or nil when the
// field is missing or not an array.
func (r Record) Strings(key string) []string {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// MediaURLs collects non-empty MediaURL values from an array of media objects.
// The result is never nil.
func (r Record) MediaURLs(key string) []string {
	urls := []string{}
	v, ok := r.lookup(key)
	if !ok {
		return urls
	}
	items, ok := v.([]interface{})
	if !ok {
		return urls
	}
	for _, item := range items {
		media, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if u := Record(media).String("MediaURL"); u != nil {
			urls = append(urls, *u)
		}
	}
	return urls
}

// NormalizeRecord maps an upstream record onto a Property. source tags the
// result with the dataset it came from.
func NormalizeRecord(r Record, source string) models.Property {
	p := models.Property{
		AddressLine1:          r.String("UnparsedAddress", "StreetNumberNumeric", "Address"),
		City:                  r.String("City"),
		State:                 r.String("StateOrProvince"),
		PostalCode:            r.String("PostalCode"),
		Lat:                   r.Number("Latitude", "latitude"),
		Lng:                   r.Number("Longitude", "longitude"),
		PropertyType:          r.String("PropertyType"),
		PropertySubType:       r.String("PropertySubType"),
		Bedrooms:              r.Int("BedroomsTotal"),
		Bathrooms:             r.Number("BathroomsFull", "BathroomsTotalInteger"),
		HalfBaths:             r.Int("BathroomsHalf"),
		SquareFootage:         r.Number("LivingArea", "SqFtTotal"),
		YearBuilt:             r.Int("YearBuilt"),
		ListPrice:             r.Number("ListPrice"),
		OriginalListPrice:     r.Number("OriginalListPrice"),
		PricePerSquareFoot:    r.Number("PricePerSquareFoot"),
		BuildingName:          r.String("BuildingName"),
		UnitNumber:            r.String("UnitNumber"),
		Floor:                 r.Int("FloorNumber"),
		TotalFloorsInBuilding: r.Int("StoriesTotal"),
		UnitsInBuilding:       r.Int("UnitsInBuilding"),
		HOAFee:                r.Number("AssociationFee"),
		HOAFrequency:          r.String("AssociationFeeFrequency"),
		ListingDate:           r.String("ListingContractDate", "ListDate"),
		DaysOnMarket:          r.Int("DaysOnMarket"),
		Photos:                r.MediaURLs("Media"),
		Features:              r.Strings("InteriorFeatures"),
		Appliances:            r.Strings("Appliances"),
		Amenities:             r.Strings("AssociationAmenities"),
		Status:                r.String("StandardStatus", "MlsStatus"),
		LastUpdated:           r.String("ModificationTimestamp", "ModificationTimestampMs", "UpdatedAt"),
	}

	if id := r.String("ListingKey", "_id", "listing_id"); id != nil {
		p.ListingID = *id
	}
	if name := r.String("ListAgentFullName"); name != nil {
		p.ListingAgent = &models.ListingAgent{
			Name:  name,
			Email: r.String("ListAgentEmail"),
			Phone: r.String("ListAgentDirectPhone"),
		}
	}
	if source != "" {
		p.Source = &source
	}
	return p
}
