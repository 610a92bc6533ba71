package portfolio

import (
	"sort"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

// NormalizeActivities prepares a raw activity log for replay: entries without
// an asset id are dropped and the rest are sorted ascending by timestamp.
// The sort is stable, so entries sharing a timestamp keep their fetched
// relative order; no further tie-break is defined.
func NormalizeActivities(entries []polymarket.ActivityEntry) []polymarket.ActivityEntry {
	normalized := make([]polymarket.ActivityEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Asset == "" {
			continue
		}
		normalized = append(normalized, entry)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Timestamp < normalized[j].Timestamp
	})

	return normalized
}
