package portfolio

import (
	"math"
	"time"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

// closeEpsilon is the holdings magnitude below which a position counts as
// exactly closed and its asset is removed from the holdings map.
const closeEpsilon = 1e-9

// ReplayTimeline folds the activity log into running holdings/price state and
// samples the portfolio value at each timeline instant. Activities must be
// normalized (ascending by timestamp) and the timeline strictly ascending.
//
// The replay runs in two phases over a single monotone cursor: a catch-up
// phase applies everything before the first instant to establish the opening
// state, then the sweep applies each remaining activity once as the instants
// advance. No activity is ever applied twice.
func ReplayTimeline(activities []polymarket.ActivityEntry, timeline []time.Time) []Sample {
	if len(timeline) == 0 {
		return nil
	}

	holdings := make(map[string]float64)
	lastPrice := make(map[string]float64)

	cursor := 0
	for cursor < len(activities) && activities[cursor].OccurredAt().Before(timeline[0]) {
		applyActivity(activities[cursor], holdings, lastPrice)
		cursor++
	}

	samples := make([]Sample, 0, len(timeline))
	for _, instant := range timeline {
		for cursor < len(activities) && !activities[cursor].OccurredAt().After(instant) {
			applyActivity(activities[cursor], holdings, lastPrice)
			cursor++
		}
		samples = append(samples, Sample{At: instant, Value: portfolioValue(holdings, lastPrice)})
	}

	return samples
}

// applyActivity mutates the replay state with one entry: the signed size moves
// holdings (dropping the asset when the balance closes to zero) and any quoted
// price overwrites the asset's last known price, holdings change or not.
func applyActivity(entry polymarket.ActivityEntry, holdings, lastPrice map[string]float64) {
	if entry.Asset == "" {
		return
	}
	if delta := entry.SignedSize(); delta != 0 {
		holdings[entry.Asset] += delta
		if math.Abs(holdings[entry.Asset]) < closeEpsilon {
			delete(holdings, entry.Asset)
		}
	}
	if entry.Price != nil {
		lastPrice[entry.Asset] = *entry.Price
	}
}

// portfolioValue marks current holdings to the last known prices. Assets
// without a known price contribute nothing.
func portfolioValue(holdings, lastPrice map[string]float64) float64 {
	var total float64
	for asset, qty := range holdings {
		price, ok := lastPrice[asset]
		if !ok {
			continue
		}
		total += qty * price
	}
	return total
}
