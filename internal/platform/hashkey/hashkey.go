package hashkey

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Key derives a cache key from prefix and the JSON encoding of request.
// Requests that encode identically share a key.
func Key(prefix string, request any) (string, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("cache key: encode request: %w", err)
	}
	return fmt.Sprintf("%s:%016x", prefix, xxhash.Sum64(raw)), nil
}
