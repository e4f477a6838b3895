// Package feed implements the change-feed contract two ways: a Redis
// pub/sub push subscription, and a polling fallback that fingerprints the
// order collection and fires when the fingerprint moves.
package feed

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/mfigueroa/fastfood-pos/internal/core/domain"
)

// Fingerprint reduces the order collection to one hex token. Each digest
// contributes id, status, USD total, creation time and item count; the
// per-row hashes are XOR-combined, so row order does not matter. This is
// a cache-invalidation heuristic, not a change feed: a change outside the
// digested fields is invisible to it.
func Fingerprint(digests []domain.OrderDigest) string {
	var combined uint64
	for _, d := range digests {
		row := fmt.Sprintf("%s-%s-%.2f-%d-%d",
			d.ID, d.Status, d.TotalUSD, d.CreatedAt.UnixMilli(), d.ItemCount)
		combined ^= xxhash.Sum64String(row)
	}
	return strconv.FormatUint(combined, 16)
}
