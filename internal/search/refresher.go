package search

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// RefreshReport is the reconciler report plus how many listings were fetched
type RefreshReport struct {
	models.UpsertReport
	Fetched int `json:"fetched"`
}

// Refresher pulls one page from upstream and reconciles it into the store
type Refresher struct {
	upstream   Upstream
	reconciler Upserter
	logger     *logrus.Logger
}

func NewRefresher(upstream Upstream, reconciler Upserter, logger *logrus.Logger) *Refresher {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Refresher{upstream: upstream, reconciler: reconciler, logger: logger}
}

// Refresh fails only if the upstream fetch fails or ctx ends mid-batch;
// per-listing write failures are in the report.
func (r *Refresher) Refresh(ctx context.Context, params models.SearchParams) (RefreshReport, error) {
	result, err := r.upstream.SearchProperties(ctx, params)
	if err != nil {
		return RefreshReport{}, err
	}

	report, err := r.reconciler.Upsert(ctx, result.Properties)
	if err != nil {
		return RefreshReport{UpsertReport: report, Fetched: len(result.Properties)}, fmt.Errorf("failed to reconcile refreshed listings: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"source":   r.upstream.Source(),
		"fetched":  len(result.Properties),
		"upserted": report.Upserted,
		"updated":  report.Updated,
		"failed":   report.Failed(),
	}).Info("Refreshed listings")

	return RefreshReport{UpsertReport: report, Fetched: len(result.Properties)}, nil
}
