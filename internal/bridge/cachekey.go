package bridge

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/n3t-leo/miamicondos/internal/models"
)

// CacheKey is a deterministic fingerprint of normalized search parameters
func CacheKey(params models.SearchParams) string {
	data, err := json.Marshal(params)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", params))
	}
	return fmt.Sprintf("h%016x", xxhash.Sum64(data))
}
