package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ListingDocument is the persisted shape of a Property in the listings table
type ListingDocument struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ListingID string `gorm:"size:64;not null;uniqueIndex;column:listing_id" json:"listingId"`

	AddressLine1 *string  `gorm:"size:255" json:"addressLine1,omitempty"`
	City         *string  `gorm:"size:100;index;column:city" json:"city,omitempty"`
	State        *string  `gorm:"size:50;index;column:state" json:"state,omitempty"`
	PostalCode   *string  `gorm:"size:20" json:"postalCode,omitempty"`
	Location     GeoPoint `gorm:"type:text;column:location" json:"location"`

	PropertyType    *string  `gorm:"size:100" json:"propertyType,omitempty"`
	PropertySubType *string  `gorm:"size:100" json:"propertySubType,omitempty"`
	Bedrooms        *int     `json:"bedrooms,omitempty"`
	Bathrooms       *float64 `json:"bathrooms,omitempty"`
	HalfBaths       *int     `json:"halfBaths,omitempty"`
	SquareFootage   *float64 `json:"squareFootage,omitempty"`
	YearBuilt       *int     `json:"yearBuilt,omitempty"`

	ListPrice          *float64 `gorm:"index;column:list_price" json:"listPrice,omitempty"`
	OriginalListPrice  *float64 `json:"originalListPrice,omitempty"`
	PricePerSquareFoot *float64 `json:"pricePerSquareFoot,omitempty"`

	BuildingName          *string `gorm:"size:255" json:"buildingName,omitempty"`
	UnitNumber            *string `gorm:"size:50" json:"unitNumber,omitempty"`
	Floor                 *int    `json:"floor,omitempty"`
	TotalFloorsInBuilding *int    `gorm:"column:total_floors_in_building" json:"totalFloorsInBuilding,omitempty"`
	UnitsInBuilding       *int    `gorm:"column:units_in_building" json:"unitsInBuilding,omitempty"`

	HOAFee       *float64 `gorm:"column:hoa_fee" json:"hoaFee,omitempty"`
	HOAFrequency *string  `gorm:"size:50;column:hoa_frequency" json:"hoaFrequency,omitempty"`

	ListingDate  *string `gorm:"size:64;column:listing_date" json:"listingDate,omitempty"`
	DaysOnMarket *int    `gorm:"column:days_on_market" json:"daysOnMarket,omitempty"`

	ListingAgent AgentDoc `gorm:"type:text;column:listing_agent" json:"listingAgent"`

	Photos     PhotoList `gorm:"type:text" json:"photos"`
	Features   TagList   `gorm:"type:text" json:"features"`
	Appliances TagList   `gorm:"type:text" json:"appliances"`
	Amenities  TagList   `gorm:"type:text" json:"amenities"`

	Status      *string `gorm:"size:50;index;column:status" json:"status,omitempty"`
	LastUpdated *string `gorm:"size:64;column:last_updated" json:"lastUpdated,omitempty"`
	Source      *string `gorm:"size:100" json:"source,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name
func (ListingDocument) TableName() string {
	return "listings"
}

// GeoPoint is a nullable point stored as a GeoJSON geometry, coordinates [lng, lat]
type GeoPoint struct {
	Point orb.Point
	Valid bool
}

// NewGeoPoint builds a valid point from latitude and longitude
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Point: orb.Point{lng, lat}, Valid: true}
}

func (g GeoPoint) Value() (driver.Value, error) {
	if !g.Valid {
		return nil, nil
	}
	data, err := geojson.NewGeometry(g.Point).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal location: %w", err)
	}
	return string(data), nil
}

func (g *GeoPoint) Scan(src interface{}) error {
	*g = GeoPoint{}
	data, ok, err := columnBytes(src)
	if err != nil || !ok {
		return err
	}
	geometry, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return fmt.Errorf("failed to parse location: %w", err)
	}
	point, ok := geometry.Geometry().(orb.Point)
	if !ok {
		return fmt.Errorf("location is a %s, not a Point", geometry.Type)
	}
	g.Point = point
	g.Valid = true
	return nil
}

func (g GeoPoint) MarshalJSON() ([]byte, error) {
	if !g.Valid {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(g.Point).MarshalJSON()
}

// AgentDoc is the listing agent sub-document; an all-empty agent is stored as NULL
type AgentDoc struct {
	ID    *string `json:"id,omitempty"`
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// IsZero reports whether no agent field is set
func (a AgentDoc) IsZero() bool {
	return a.ID == nil && a.Name == nil && a.Email == nil && a.Phone == nil
}

func (a AgentDoc) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return jsonValue(a)
}

func (a *AgentDoc) Scan(src interface{}) error {
	*a = AgentDoc{}
	return scanJSON(src, a)
}

// PhotoRef wraps a photo URL
type PhotoRef struct {
	URL string `json:"url"`
}

// PhotoList is an ordered list of photo wrappers
type PhotoList []PhotoRef

func (l PhotoList) Value() (driver.Value, error) {
	if l == nil {
		l = PhotoList{}
	}
	return jsonValue(l)
}

func (l *PhotoList) Scan(src interface{}) error {
	*l = nil
	return scanJSON(src, l)
}

// URLs unwraps the list, dropping empty entries
func (l PhotoList) URLs() []string {
	if l == nil {
		return nil
	}
	urls := make([]string, 0, len(l))
	for _, ref := range l {
		if ref.URL != "" {
			urls = append(urls, ref.URL)
		}
	}
	return urls
}

// TagValue wraps a single tag
type TagValue struct {
	Value string `json:"value"`
}

// TagList is a list of tag wrappers
type TagList []TagValue

func (l TagList) Value() (driver.Value, error) {
	if l == nil {
		l = TagList{}
	}
	return jsonValue(l)
}

func (l *TagList) Scan(src interface{}) error {
	*l = nil
	return scanJSON(src, l)
}

// Values unwraps the list, dropping empty entries
func (l TagList) Values() []string {
	if l == nil {
		return nil
	}
	values := make([]string, 0, len(l))
	for _, tag := range l {
		if tag.Value != "" {
			values = append(values, tag.Value)
		}
	}
	return values
}

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanJSON(src interface{}, dst interface{}) error {
	data, ok, err := columnBytes(src)
	if err != nil || !ok {
		return err
	}
	return json.Unmarshal(data, dst)
}

// columnBytes returns ok=false for NULL or empty columns
func columnBytes(src interface{}) ([]byte, bool, error) {
	switch v := src.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return v, len(v) > 0, nil
	case string:
		return []byte(v), v != "", nil
	default:
		return nil, false, fmt.Errorf("unsupported column type %T", src)
	}
}

// NewListingDocument maps a Property into its persisted shape
func NewListingDocument(p Property) ListingDocument {
	doc := ListingDocument{
		ListingID:             p.ListingID,
		AddressLine1:          p.AddressLine1,
		City:                  p.City,
		State:                 p.State,
		PostalCode:            p.PostalCode,
		PropertyType:          p.PropertyType,
		PropertySubType:       p.PropertySubType,
		Bedrooms:              p.Bedrooms,
		Bathrooms:             p.Bathrooms,
		HalfBaths:             p.HalfBaths,
		SquareFootage:         p.SquareFootage,
		YearBuilt:             p.YearBuilt,
		ListPrice:             p.ListPrice,
		OriginalListPrice:     p.OriginalListPrice,
		PricePerSquareFoot:    p.PricePerSquareFoot,
		BuildingName:          p.BuildingName,
		UnitNumber:            p.UnitNumber,
		Floor:                 p.Floor,
		TotalFloorsInBuilding: p.TotalFloorsInBuilding,
		UnitsInBuilding:       p.UnitsInBuilding,
		HOAFee:                p.HOAFee,
		HOAFrequency:          p.HOAFrequency,
		ListingDate:           p.ListingDate,
		DaysOnMarket:          p.DaysOnMarket,
		Status:                p.Status,
		LastUpdated:           p.LastUpdated,
		Source:                p.Source,
	}

	if p.Lat != nil && p.Lng != nil {
		doc.Location = NewGeoPoint(*p.Lat, *p.Lng)
	}
	if p.ListingAgent != nil {
		doc.ListingAgent = AgentDoc{
			ID:    p.ListingAgent.ID,
			Name:  p.ListingAgent.Name,
			Email: p.ListingAgent.Email,
			Phone: p.ListingAgent.Phone,
		}
	}

	doc.Photos = make(PhotoList, 0, len(p.Photos))
	for _, url := range p.Photos {
		doc.Photos = append(doc.Photos, PhotoRef{URL: url})
	}
	doc.Features = newTagList(p.Features)
	doc.Appliances = newTagList(p.Appliances)
	doc.Amenities = newTagList(p.Amenities)

	return doc
}

func newTagList(values []string) TagList {
	tags := make(TagList, 0, len(values))
	for _, v := range values {
		tags = append(tags, TagValue{Value: v})
	}
	return tags
}

// ToProperty maps a stored document back into a Property
func (d ListingDocument) ToProperty() Property {
	p := Property{
		ListingID:             d.ListingID,
		AddressLine1:          d.AddressLine1,
		City:                  d.City,
		State:                 d.State,
		PostalCode:            d.PostalCode,
		PropertyType:          d.PropertyType,
		PropertySubType:       d.PropertySubType,
		Bedrooms:              d.Bedrooms,
		Bathrooms:             d.Bathrooms,
		HalfBaths:             d.HalfBaths,
		SquareFootage:         d.SquareFootage,
		YearBuilt:             d.YearBuilt,
		ListPrice:             d.ListPrice,
		OriginalListPrice:     d.OriginalListPrice,
		PricePerSquareFoot:    d.PricePerSquareFoot,
		BuildingName:          d.BuildingName,
		UnitNumber:            d.UnitNumber,
		Floor:                 d.Floor,
		TotalFloorsInBuilding: d.TotalFloorsInBuilding,
		UnitsInBuilding:       d.UnitsInBuilding,
		HOAFee:                d.HOAFee,
		HOAFrequency:          d.HOAFrequency,
		ListingDate:           d.ListingDate,
		DaysOnMarket:          d.DaysOnMarket,
		Photos:                d.Photos.URLs(),
		Features:              d.Features.Values(),
		Appliances:            d.Appliances.Values(),
		Amenities:             d.Amenities.Values(),
		Status:                d.Status,
		LastUpdated:           d.LastUpdated,
		Source:                d.Source,
	}

	if d.Location.Valid {
		lat := d.Location.Point.Lat()
		lng := d.Location.Point.Lon()
		p.Lat = &lat
		p.Lng = &lng
	}
	if !d.ListingAgent.IsZero() {
		p.ListingAgent = &ListingAgent{
			ID:    d.ListingAgent.ID,
			Name:  d.ListingAgent.Name,
			Email: d.ListingAgent.Email,
			Phone: d.ListingAgent.Phone,
		}
	}

	return p
}
