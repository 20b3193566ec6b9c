// Package processor merges fetched listings into the document store
package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// ErrMissingListingID rejects properties that have no natural key
var ErrMissingListingID = errors.New("listing has no listingId")

// ListingStore is the part of the document store the reconciler writes through
type ListingStore interface {
	FindListings(ctx context.Context, filter models.ListingFilter, sort *models.ListingSort, limit, page int) (models.ListingPage, error)
	CreateListing(ctx context.Context, doc *models.ListingDocument) error
	UpdateListing(ctx context.Context, id uint, doc *models.ListingDocument) error
}

type outcome int

const (
	outcomeInserted outcome = iota
	outcomeUpdated
	outcomeUnchanged
)

// Reconciler inserts new listings, overwrites stale ones and skips the rest
type Reconciler struct {
	store  ListingStore
	logger *logrus.Logger
}

func NewReconciler(store ListingStore, logger *logrus.Logger) *Reconciler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Reconciler{store: store, logger: logger}
}

// Upsert processes properties one at a time. A failing item is recorded in
// the report and does not stop the batch; only a done ctx does.
func (r *Reconciler) Upsert(ctx context.Context, properties []models.Property) (models.UpsertReport, error) {
	var report models.UpsertReport

	for i, p := range properties {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("upsert interrupted after %d of %d listings: %w", i, len(properties), err)
		}

		result, err := r.upsertOne(ctx, p)
		if err != nil {
			r.logger.WithFields(logrus.Fields{
				"listing_id": p.ListingID,
				"error":      err.Error(),
			}).Warn("Failed to upsert listing")
			report.Errors = append(report.Errors, models.UpsertError{
				ListingID: p.ListingID,
				Message:   err.Error(),
			})
			continue
		}

		switch result {
		case outcomeInserted:
			report.Upserted++
		case outcomeUpdated:
			report.Updated++
		case outcomeUnchanged:
			report.Unchanged++
		}
	}

	r.logger.WithFields(logrus.Fields{
		"batch_size": len(properties),
		"upserted":   report.Upserted,
		"updated":    report.Updated,
		"unchanged":  report.Unchanged,
		"failed":     report.Failed(),
	}).Info("Reconciled listings batch")

	return report, nil
}

func (r *Reconciler) upsertOne(ctx context.Context, p models.Property) (outcome, error) {
	if strings.TrimSpace(p.ListingID) == "" {
		return 0, ErrMissingListingID
	}

	page, err := r.store.FindListings(ctx, models.ListingFilter{ListingID: p.ListingID}, nil, 1, 1)
	if err != nil {
		return 0, fmt.Errorf("failed to look up listing: %w", err)
	}

	doc := models.NewListingDocument(p)
	if len(page.Docs) == 0 {
		if err := r.store.CreateListing(ctx, &doc); err != nil {
			return 0, err
		}
		return outcomeInserted, nil
	}

	existing := page.Docs[0]
	if !IsNewer(p.LastUpdated, existing.LastUpdated) {
		return outcomeUnchanged, nil
	}
	if err := r.store.UpdateListing(ctx, existing.ID, &doc); err != nil {
		return 0, err
	}
	return outcomeUpdated, nil
}

// IsNewer reports whether incoming supersedes stored. Timestamps are ISO-8601
// so lexical order is chronological; a missing side always counts as newer.
func IsNewer(incoming, stored *string) bool {
	if incoming == nil || stored == nil || *incoming == "" || *stored == "" {
		return true
	}
	return *incoming > *stored
}
