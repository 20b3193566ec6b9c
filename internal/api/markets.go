package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/models"
	"github.com/n3t-leo/miamicondos/internal/params"
	"github.com/n3t-leo/miamicondos/internal/search"
)

// MarketResponse is a live market search tagged with its origin
type MarketResponse struct {
	Source string `json:"_source"`
	Market string `json:"market"`
	models.SearchResult
}

// ListMarkets returns the configured markets
func (h *Handler) ListMarkets(c *gin.Context) {
	c.JSON(http.StatusOK, config.Markets())
}

// SearchMarket runs a market's fixed search straight against the upstream
func (h *Handler) SearchMarket(c *gin.Context) {
	h.searchMarket(c, c.Param("name"))
}

// MiamiCondos handles GET /condos/miami
func (h *Handler) MiamiCondos(c *gin.Context) {
	h.searchMarket(c, "miami")
}

func (h *Handler) searchMarket(c *gin.Context, name string) {
	market := config.GetMarketByName(name)
	if market == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found", "message": "Market not found"})
		return
	}

	page := params.FromQuery(c.Request.URL.Query())
	p := search.MarketParams(*market, page.Limit, page.Offset)

	result, err := h.upstream.SearchProperties(c.Request.Context(), p)
	if err != nil {
		h.renderError(c, err, "Market search failed")
		return
	}

	c.JSON(http.StatusOK, MarketResponse{
		Source:       h.upstream.Source(),
		Market:       market.Name,
		SearchResult: result,
	})
}
