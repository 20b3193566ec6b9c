package scheduler

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/models"
	"github.com/n3t-leo/miamicondos/internal/search"
)

// Refresher fetches one search from upstream and reconciles it
type Refresher interface {
	Refresh(ctx context.Context, params models.SearchParams) (search.RefreshReport, error)
}

// Scheduler periodically refreshes every configured market
type Scheduler struct {
	refresher Refresher
	logger    *logrus.Logger
	markets   []config.Market
	cfg       config.RefreshConfig

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
}

func NewScheduler(refresher Refresher, cfg config.RefreshConfig, markets []config.Market, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		refresher: refresher,
		logger:    logger,
		markets:   markets,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start begins the refresh loop
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	if s.cfg.RunOnStartup {
		s.logger.Info("Running startup refresh")
		s.RunOnce(s.ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(s.ctx)
		}
	}
}

// RunOnce refreshes each market in turn. It returns false without doing
// anything if another run is still in progress.
func (s *Scheduler) RunOnce(ctx context.Context) bool {
	if !s.jobMutex.TryLock() {
		s.logger.Warn("Skipping refresh, previous run still in progress")
		return false
	}
	defer s.jobMutex.Unlock()

	started := time.Now()
	for _, market := range s.markets {
		if ctx.Err() != nil {
			return true
		}
		s.refreshMarket(ctx, market)
	}

	s.logger.WithFields(logrus.Fields{
		"markets":  len(s.markets),
		"duration": time.Since(started).String(),
	}).Info("Completed scheduled refresh")
	return true
}

func (s *Scheduler) refreshMarket(ctx context.Context, market config.Market) {
	fields := logrus.Fields{
		"market": market.Name,
		"city":   market.City,
		"state":  market.State,
	}
	s.logger.WithFields(fields).Info("Starting market refresh")

	report, err := s.refresher.Refresh(ctx, search.MarketParams(market, s.cfg.Limit, 0))
	if err != nil {
		s.logger.WithError(err).WithFields(fields).Error("Market refresh failed")
		return
	}

	s.logger.WithFields(fields).WithFields(logrus.Fields{
		"fetched":   report.Fetched,
		"upserted":  report.Upserted,
		"updated":   report.Updated,
		"unchanged": report.Unchanged,
		"failed":    report.Failed(),
	}).Info("Market refresh completed")
}

// Stop cancels any running refresh and waits for the loop to exit
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}
