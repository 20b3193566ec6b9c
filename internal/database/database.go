package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/n3t-leo/miamicondos/config"
	"github.com/n3t-leo/miamicondos/internal/models"
)

// ErrListingNotFound is returned when an update targets a missing row
var ErrListingNotFound = errors.New("listing not found")

// sortColumns maps sortable fields onto listings columns
var sortColumns = map[models.SortField]string{
	models.SortByListPrice:    "list_price",
	models.SortByDaysOnMarket: "days_on_market",
	models.SortByListingDate:  "listing_date",
	models.SortByUpdatedAt:    "updated_at",
}

// Database is the listings document store
type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewDatabase opens the store selected by cfg.Driver
func NewDatabase(cfg config.DatabaseConfig, logger *logrus.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		if dir := filepath.Dir(cfg.URL); dir != "." && !strings.HasPrefix(cfg.URL, "file:") {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.URL)
	case "postgres":
		dialector = postgres.Open(cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return Open(dialector, logger)
}

// Open wraps an already chosen gorm dialector
func Open(dialector gorm.Dialector, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db, logger: logger}, nil
}

// NewTestDB returns a migrated, private in-memory sqlite store
func NewTestDB(logger *logrus.Logger) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	d, err := Open(sqlite.Open(dsn), logger)
	if err != nil {
		return nil, err
	}
	// A shared-cache memory database lives only while a connection is open
	if sqlDB, err := d.db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := d.RunMigrations(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// GetDB exposes the underlying gorm handle
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// FindListings returns one page of listings matching filter. page starts at 1.
func (d *Database) FindListings(ctx context.Context, filter models.ListingFilter, sort *models.ListingSort, limit, page int) (models.ListingPage, error) {
	if limit < 1 {
		limit = models.DefaultLimit
	}
	if page < 1 {
		page = 1
	}

	var total int64
	if err := d.filtered(ctx, filter).Count(&total).Error; err != nil {
		return models.ListingPage{}, fmt.Errorf("failed to count listings: %w", err)
	}

	query := d.filtered(ctx, filter)
	if sort != nil {
		if column, ok := sortColumns[sort.Field]; ok {
			query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: sort.Desc})
		}
	}

	var docs []models.ListingDocument
	err := query.Order("id").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&docs).Error
	if err != nil {
		return models.ListingPage{}, fmt.Errorf("failed to query listings: %w", err)
	}

	return models.ListingPage{
		Docs:        docs,
		TotalDocs:   total,
		HasNextPage: int64(page*limit) < total,
	}, nil
}

func (d *Database) filtered(ctx context.Context, filter models.ListingFilter) *gorm.DB {
	query := d.db.WithContext(ctx).Model(&models.ListingDocument{})

	if filter.ListingID != "" {
		query = query.Where("listing_id = ?", filter.ListingID)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if len(filter.Status) > 0 {
		query = query.Where("status IN ?", filter.Status)
	}
	if filter.MinPrice != nil {
		query = query.Where("list_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("list_price <= ?", *filter.MaxPrice)
	}
	return query
}

// CreateListing inserts doc and fills in its ID
func (d *Database) CreateListing(ctx context.Context, doc *models.ListingDocument) error {
	doc.ID = 0
	if err := d.db.WithContext(ctx).Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create listing %s: %w", doc.ListingID, err)
	}
	return nil
}

// UpdateListing overwrites every column of row id with doc, including nulls
func (d *Database) UpdateListing(ctx context.Context, id uint, doc *models.ListingDocument) error {
	doc.ID = id
	result := d.db.WithContext(ctx).
		Model(doc).
		Select("*").
		Omit("id", "created_at").
		Updates(doc)
	if result.Error != nil {
		return fmt.Errorf("failed to update listing %s: %w", doc.ListingID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update listing %s: %w", doc.ListingID, ErrListingNotFound)
	}
	return nil
}

// CountListings returns the number of stored listings
func (d *Database) CountListings(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&models.ListingDocument{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// Ping checks the underlying connection
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
