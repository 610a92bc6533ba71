package portfolio

import (
	"time"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

// Sample is a portfolio valuation at one instant of the replay timeline.
type Sample struct {
	At    time.Time
	Value float64
}

// TimelinePoint is one rendered point of a per-horizon value series.
type TimelinePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// WalletStats aggregates headline figures from the live position lists.
// They are computed independently of the replayed history: live data carries
// current mark-to-market while the replay reconstructs from the activity log,
// so the two views may legitimately disagree.
type WalletStats struct {
	TotalOpenValue       float64 `json:"total_open_value"`
	TotalInitialValue    float64 `json:"total_initial_value"`
	TotalUnrealizedPnl   float64 `json:"total_unrealized_pnl"`
	TotalRealizedPnl     float64 `json:"total_realized_pnl"`
	OpenPositionsCount   int     `json:"open_positions_count"`
	ClosedPositionsCount int     `json:"closed_positions_count"`
	ActivityStart        string  `json:"activity_start"`
	ActivityEnd          string  `json:"activity_end"`
}

// WalletSnapshot is the full wallet view: live positions, the reconstructed
// per-horizon value history and aggregate stats.
type WalletSnapshot struct {
	User            string                     `json:"user"`
	FetchedAt       string                     `json:"fetched_at"`
	OpenPositions   []polymarket.Position      `json:"open_positions"`
	ClosedPositions []polymarket.ClosedPosition `json:"closed_positions"`
	History         map[string][]TimelinePoint `json:"history"`
	Stats           WalletStats                `json:"stats"`
}
