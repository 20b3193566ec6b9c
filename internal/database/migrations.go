package database

import (
	"fmt"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// RunMigrations creates or updates the listings schema
func (d *Database) RunMigrations() error {
	if err := d.db.AutoMigrate(&models.ListingDocument{}); err != nil {
		return fmt.Errorf("failed to migrate listings: %w", err)
	}

	// Sort columns without a filter index
	for _, column := range []string{"listing_date", "days_on_market", "updated_at"} {
		name := "idx_listings_" + column
		if d.db.Migrator().HasIndex(&models.ListingDocument{}, name) {
			continue
		}
		if err := d.db.Exec(fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON listings(%s)", name, column)).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	d.logger.Info("Database migrations completed")
	return nil
}
