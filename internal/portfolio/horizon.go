package portfolio

import (
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

// Rounding precision differs by consumer: chart points keep six fractional
// digits, headline stats two.
const (
	seriesPrecision int32 = 6
	statsPrecision  int32 = 2
)

// DefaultHorizons are the lookback windows (in days) served when the caller
// requests none.
var DefaultHorizons = []int{1, 7, 30}

// BuildHistory reconstructs the per-horizon value series from a normalized
// activity log. One replay covers the maximal horizon window; each horizon is
// then sliced out of that full series.
func BuildHistory(activities []polymarket.ActivityEntry, end time.Time, horizons []int) map[string][]TimelinePoint {
	if len(horizons) == 0 {
		return map[string][]TimelinePoint{}
	}

	// Sample instants are whole seconds, so the window must be too: a
	// sub-second end would put cutoffs fractionally past the truncated
	// window-start sample and drop it from the maximal horizon.
	end = end.Truncate(time.Second)

	sorted := append([]int(nil), horizons...)
	sort.Ints(sorted)
	start := end.Add(-horizonWindow(sorted[len(sorted)-1]))

	timeline := BuildTimeline(activities, start, end)
	full := ReplayTimeline(activities, timeline)

	return SliceHorizons(full, end, sorted)
}

// SliceHorizons derives one windowed sub-series per horizon from the full
// replay series by keeping points at or after end−horizon. A horizon whose
// window holds no points falls back to the last known point, so every horizon
// has at least one renderable value whenever the full series is non-empty.
func SliceHorizons(full []Sample, end time.Time, horizons []int) map[string][]TimelinePoint {
	history := make(map[string][]TimelinePoint, len(horizons))
	for _, horizon := range horizons {
		cutoff := end.Add(-horizonWindow(horizon))

		filtered := make([]Sample, 0, len(full))
		for _, sample := range full {
			if !sample.At.Before(cutoff) {
				filtered = append(filtered, sample)
			}
		}
		if len(filtered) == 0 && len(full) > 0 {
			filtered = full[len(full)-1:]
		}

		points := make([]TimelinePoint, 0, len(filtered))
		for _, sample := range filtered {
			points = append(points, TimelinePoint{
				Date:  sample.At.UTC().Format(time.RFC3339),
				Value: roundTo(sample.Value, seriesPrecision),
			})
		}
		history[strconv.Itoa(horizon)] = points
	}
	return history
}

func horizonWindow(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}

func roundTo(value float64, places int32) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(places).Float64()
	return rounded
}
