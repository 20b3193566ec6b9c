package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Market is a fixed listing search refreshed on a schedule
type Market struct {
	Name          string   `json:"name"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	PropertyTypes []string `json:"property_types"`
	Status        []string `json:"status"`
	SortBy        string   `json:"sort_by"`
	SortOrder     string   `json:"sort_order"`
}

// MarketsFile is the on-disk market catalogue
type MarketsFile struct {
	Markets []Market `json:"markets"`
}

// SupportedMarkets is the built-in catalogue used when no markets file is loaded
var SupportedMarkets = []Market{
	{
		Name:          "miami",
		City:          "Miami",
		State:         "FL",
		PropertyTypes: []string{"Condo", "Condominium", "Co-op"},
		Status:        []string{"Active"},
		SortBy:        "listPrice",
		SortOrder:     "desc",
	},
	// Add more markets here as needed
}

var (
	markets     = SupportedMarkets
	marketsLock sync.RWMutex
)

// LoadMarkets replaces the catalogue with the markets in a JSON file
func LoadMarkets(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read markets file: %w", err)
	}

	var file MarketsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse markets file: %w", err)
	}
	if len(file.Markets) == 0 {
		return fmt.Errorf("markets file %s defines no markets", path)
	}
	for i, m := range file.Markets {
		if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.City) == "" {
			return fmt.Errorf("market %d in %s needs a name and a city", i, path)
		}
	}

	marketsLock.Lock()
	defer marketsLock.Unlock()
	markets = file.Markets
	return nil
}

// Markets returns the active market catalogue
func Markets() []Market {
	marketsLock.RLock()
	defer marketsLock.RUnlock()

	out := make([]Market, len(markets))
	copy(out, markets)
	return out
}

// GetMarketNames returns a list of supported market names
func GetMarketNames() []string {
	current := Markets()
	names := make([]string, len(current))
	for i, market := range current {
		names[i] = market.Name
	}
	return names
}

// GetMarketByName returns a market configuration by name, case-insensitively
func GetMarketByName(name string) *Market {
	for _, market := range Markets() {
		if strings.EqualFold(market.Name, strings.TrimSpace(name)) {
			m := market
			return &m
		}
	}
	return nil
}

// resetMarkets restores the built-in catalogue
func resetMarkets() {
	marketsLock.Lock()
	defer marketsLock.Unlock()
	markets = SupportedMarkets
}
