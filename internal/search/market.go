package search

import (
	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/models"
)

// MarketParams builds the fixed search for a market
func MarketParams(market config.Market, limit, offset int) models.SearchParams {
	params := models.SearchParams{
		City:         market.City,
		State:        market.State,
		PropertyType: market.PropertyTypes,
		Status:       market.Status,
		Limit:        models.ClampLimit(limit),
		Offset:       models.ClampOffset(offset),
	}
	if sortBy := models.SortField(market.SortBy); sortBy.Valid() {
		params.SortBy = sortBy
	}
	if order := models.SortOrder(market.SortOrder); order.Valid() {
		params.SortOrder = order
	}
	return params
}
