package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/internal/bridge"
	"github.com/n3t-leo/miamicondos/internal/models"
	"github.com/n3t-leo/miamicondos/internal/params"
	"github.com/n3t-leo/miamicondos/internal/search"
)

// Planner resolves a search cache-first
type Planner interface {
	Resolve(ctx context.Context, params models.SearchParams) (search.Response, error)
}

// Refresher fetches from upstream and reconciles into the store
type Refresher interface {
	Refresh(ctx context.Context, params models.SearchParams) (search.RefreshReport, error)
}

// HealthChecker reports on the document store
type HealthChecker interface {
	Ping(ctx context.Context) error
	CountListings(ctx context.Context) (int64, error)
}

type Handler struct {
	planner   Planner
	upstream  search.Upstream
	refresher Refresher
	store     HealthChecker
	logger    *logrus.Logger
}

func NewHandler(planner Planner, upstream search.Upstream, refresher Refresher, store HealthChecker, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		planner:   planner,
		upstream:  upstream,
		refresher: refresher,
		store:     store,
		logger:    logger,
	}
}

// Search handles GET /search
func (h *Handler) Search(c *gin.Context) {
	p := params.FromQuery(c.Request.URL.Query())

	resp, err := h.planner.Resolve(c.Request.Context(), p)
	if err != nil {
		h.renderError(c, err, "Search failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AdminRefresh handles POST /admin/refresh
func (h *Handler) AdminRefresh(c *gin.Context) {
	body := map[string]interface{}{}
	if raw, err := c.GetRawData(); err == nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			h.logger.WithError(err).Warn("Ignoring malformed refresh body")
			body = map[string]interface{}{}
		}
	}

	p := params.FromBody(body, params.DefaultRefreshLimit)
	if p.Status == nil {
		p.Status = []string{"Active"}
	}

	report, err := h.refresher.Refresh(c.Request.Context(), p)
	if err != nil {
		h.renderError(c, err, "Refresh failed")
		return
	}

	c.JSON(http.StatusOK, report)
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.WithError(err).Error("Store health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "Store unreachable"})
		return
	}

	count, err := h.store.CountListings(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to count listings")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "Failed to count listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"listings": count,
		"upstream": h.upstream.Source(),
	})
}

// renderError writes {error, message} with the failure's status code
func (h *Handler) renderError(c *gin.Context, err error, logMessage string) {
	apiErr := bridge.AsAPIError(err)
	status := apiErr.StatusCode
	if status < http.StatusBadRequest || status > 599 {
		status = http.StatusInternalServerError
	}

	h.logger.WithFields(logrus.Fields{
		"status_code": status,
		"error":       apiErr.Err,
		"request_id":  c.GetString("request_id"),
	}).WithError(err).Error(logMessage)

	c.JSON(status, gin.H{"error": apiErr.Err, "message": apiErr.Message})
}
