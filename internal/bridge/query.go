package bridge

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// BuildQuery maps search parameters onto upstream query keys. Unset fields
// are omitted; offset and limit are always sent, clamped.
func BuildQuery(p models.SearchParams) url.Values {
	q := url.Values{}

	setString(q, "q", p.Query)
	setNumber(q, "min_price", p.MinPrice)
	setNumber(q, "max_price", p.MaxPrice)
	setNumber(q, "min_beds", p.MinBeds)
	setNumber(q, "max_beds", p.MaxBeds)
	setNumber(q, "min_baths", p.MinBaths)
	setNumber(q, "max_baths", p.MaxBaths)
	setList(q, "status", p.Status)
	if p.HOA != nil {
		setNumber(q, "hoa_max", p.HOA.MaxFee)
		setString(q, "hoa_freq", p.HOA.Frequency)
	}
	setList(q, "property_type", p.PropertyType)
	setList(q, "property_subtype", p.PropertySubType)
	setString(q, "city", p.City)
	setString(q, "state", p.State)
	if p.Coordinates != nil {
		q.Set("near", formatFloat(p.Coordinates.Lat)+","+formatFloat(p.Coordinates.Lng))
		q.Set("radius", formatFloat(p.Coordinates.RadiusMi))
	}
	setString(q, "sort_by", string(p.SortBy))
	setString(q, "order", string(p.SortOrder))
	q.Set("offset", strconv.Itoa(p.EffectiveOffset()))
	q.Set("limit", strconv.Itoa(p.EffectiveLimit()))

	return q
}

// listingsURL is {base}/api/v2/{dataset}/listings?{query}&access_token={token}
func listingsURL(baseURL, dataset, token string, q url.Values) string {
	q.Set("access_token", token)
	base := strings.TrimRight(baseURL, "/")
	return base + "/api/v2/" + url.PathEscape(dataset) + "/listings?" + q.Encode()
}

func setString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setNumber(q url.Values, key string, value *float64) {
	if value != nil {
		q.Set(key, formatFloat(*value))
	}
}

func setList(q url.Values, key string, values []string) {
	if len(values) > 0 {
		q.Set(key, strings.Join(values, ","))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
