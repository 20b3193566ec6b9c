// Package search answers listing queries from the local store first and
// falls back to the upstream API.
package search

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/bridge"
	"github.com/n3t-leo/miamicondos/internal/models"
)

// Store is the read side of the document store
type Store interface {
	FindListings(ctx context.Context, filter models.ListingFilter, sort *models.ListingSort, limit, page int) (models.ListingPage, error)
}

// Upstream is the live (or mock) listings source
type Upstream interface {
	SearchProperties(ctx context.Context, params models.SearchParams) (models.SearchResult, error)
	Source() string
}

// Upserter persists fetched listings
type Upserter interface {
	Upsert(ctx context.Context, properties []models.Property) (models.UpsertReport, error)
}

// Response is a search result annotated with its provenance
type Response struct {
	Source   string               `json:"_source"`
	CacheKey string               `json:"cacheKey"`
	Now      int64                `json:"now"`
	TTLMs    int64                `json:"ttlMs"`
	Upsert   *models.UpsertReport `json:"upsert,omitempty"`
	models.SearchResult
}

type lookupState int

const (
	lookupHit lookupState = iota
	lookupMiss
	lookupDegraded
)

// cacheLookup is the outcome of reading the store. A degraded lookup carries
// the store error; callers fall back to upstream for both miss and degraded.
type cacheLookup struct {
	state lookupState
	page  models.ListingPage
	err   error
}

// Planner resolves searches cache-first
type Planner struct {
	store      Store
	upstream   Upstream
	reconciler Upserter
	ttlMs      int64
	logger     *logrus.Logger
	now        func() time.Time
}

func NewPlanner(store Store, upstream Upstream, reconciler Upserter, cacheCfg config.CacheConfig, logger *logrus.Logger) *Planner {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Planner{
		store:      store,
		upstream:   upstream,
		reconciler: reconciler,
		ttlMs:      cacheCfg.TTLMs,
		logger:     logger,
		now:        time.Now,
	}
}

// Resolve returns stored listings when any match, otherwise fetches from
// upstream and writes the results back. Store failures never fail the call.
func (p *Planner) Resolve(ctx context.Context, params models.SearchParams) (Response, error) {
	params.Limit = params.EffectiveLimit()
	params.Offset = params.EffectiveOffset()

	resp := Response{
		CacheKey: bridge.CacheKey(params),
		Now:      p.now().UnixMilli(),
		TTLMs:    p.ttlMs,
	}
	log := p.logger.WithField("cache_key", resp.CacheKey)

	lookup := p.lookup(ctx, params)
	switch lookup.state {
	case lookupHit:
		properties := make([]models.Property, 0, len(lookup.page.Docs))
		for _, doc := range lookup.page.Docs {
			properties = append(properties, doc.ToProperty())
		}
		total := int(lookup.page.TotalDocs)
		if total == 0 {
			total = len(properties)
		}
		resp.Source = bridge.SourceDB
		resp.SearchResult = models.NewSearchResult(properties, total, lookup.page.HasNextPage, params.Offset+len(properties))
		log.WithField("source", resp.Source).Debug("Served search from store")
		return resp, nil
	case lookupDegraded:
		log.WithError(lookup.err).Warn("Store lookup failed, falling back to upstream")
	}

	result, err := p.upstream.SearchProperties(ctx, params)
	if err != nil {
		return Response{}, err
	}
	resp.Source = p.upstream.Source()
	resp.SearchResult = result

	report, err := p.reconciler.Upsert(ctx, result.Properties)
	if err != nil {
		log.WithError(err).Warn("Failed to persist fetched listings")
	} else {
		resp.Upsert = &report
	}

	log.WithFields(logrus.Fields{
		"source":   resp.Source,
		"returned": len(result.Properties),
	}).Debug("Served search from upstream")
	return resp, nil
}

func (p *Planner) lookup(ctx context.Context, params models.SearchParams) cacheLookup {
	page, err := p.store.FindListings(ctx, StoreFilter(params), StoreSort(params), params.Limit, params.Offset/params.Limit+1)
	if err != nil {
		return cacheLookup{state: lookupDegraded, err: err}
	}
	if len(page.Docs) == 0 {
		return cacheLookup{state: lookupMiss}
	}
	return cacheLookup{state: lookupHit, page: page}
}

// StoreFilter keeps the criteria the listings table can answer: city, state,
// status and price range.
func StoreFilter(params models.SearchParams) models.ListingFilter {
	return models.ListingFilter{
		City:     params.City,
		State:    params.State,
		Status:   params.Status,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
	}
}

// StoreSort orders by SortBy, descending unless asc was asked for
func StoreSort(params models.SearchParams) *models.ListingSort {
	if !params.SortBy.Valid() {
		return nil
	}
	return &models.ListingSort{
		Field: params.SortBy,
		Desc:  params.SortOrder != models.SortAsc,
	}
}
