package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"route-optimizer/internal/models"
)

// keyVersion is bumped whenever the cached payload or the solver's
// conventions change so stale entries stop matching
const keyVersion = "v2"

// RouteKey derives the cache key for an ordered list of stops. Order
// matters (the first stop is the start) and so do names. Coordinates are
// hashed at full precision: two inputs share a key only when every stop is
// bit-for-bit the same.
func RouteKey(coords []models.Coordinate) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s;%d\n", keyVersion, len(coords))
	for _, c := range coords {
		fmt.Fprintf(h, "%q|%s|%s\n", c.Name, exactFloat(c.Lat), exactFloat(c.Lng))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// exactFloat is the shortest decimal that round-trips to v
func exactFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
