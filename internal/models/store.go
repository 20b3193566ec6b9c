package models

// ListingFilter is the subset of search criteria the listings table can answer.
// Empty fields do not constrain the query.
type ListingFilter struct {
	ListingID string
	City      string
	State     string
	Status    []string
	MinPrice  *float64
	MaxPrice  *float64
}

// ListingSort orders a listings query
type ListingSort struct {
	Field SortField
	Desc  bool
}

// ListingPage is one page of stored documents
type ListingPage struct {
	Docs        []ListingDocument
	TotalDocs   int64
	HasNextPage bool
}
