package portfolio

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

// catchupPad extends the activity fetch before the window start so the replay
// enters the window with holdings already established.
const catchupPad = 30 * 24 * time.Hour

const defaultClosedLimit = 50

// DataSource provides the three external wallet views the snapshot needs.
// *polymarket.Client satisfies it.
type DataSource interface {
	Positions(ctx context.Context, user string) ([]polymarket.Position, error)
	ClosedPositions(ctx context.Context, user string, limit int) ([]polymarket.ClosedPosition, error)
	Activity(ctx context.Context, user string, end, start time.Time) ([]polymarket.ActivityEntry, error)
}

// Service computes wallet snapshots. Each request is self-contained: the three
// fetches run concurrently, join, and the replay works on request-local state.
type Service struct {
	source      DataSource
	logger      *zap.Logger
	closedLimit int
}

// ServiceOptions contains options for creating a Service.
type ServiceOptions struct {
	// ClosedLimit bounds the closed-positions fetch. Defaults to 50.
	ClosedLimit int
}

// NewService creates a snapshot service backed by the given data source.
func NewService(source DataSource, logger *zap.Logger, opts ...ServiceOptions) *Service {
	closedLimit := defaultClosedLimit
	if len(opts) > 0 && opts[0].ClosedLimit > 0 {
		closedLimit = opts[0].ClosedLimit
	}
	return &Service{
		source:      source,
		logger:      logger.Named("portfolio"),
		closedLimit: closedLimit,
	}
}

// WalletSnapshot fetches the wallet's open positions, closed positions and
// activity log, then assembles the per-horizon value history and aggregate
// stats as of the given reference time. Any fetch failure aborts the whole
// computation; no partial snapshot is ever returned.
func (s *Service) WalletSnapshot(ctx context.Context, user string, horizons []int, asOf time.Time) (*WalletSnapshot, error) {
	if user == "" {
		return nil, fmt.Errorf("wallet address is required")
	}
	if len(horizons) == 0 {
		horizons = DefaultHorizons
	}
	// Whole-second granularity throughout: timeline instants are truncated
	// to seconds, and window cutoffs must share that grid.
	asOf = asOf.UTC().Truncate(time.Second)

	maxHorizon := horizons[0]
	for _, h := range horizons[1:] {
		if h > maxHorizon {
			maxHorizon = h
		}
	}
	windowStart := asOf.Add(-horizonWindow(maxHorizon))

	start := time.Now()
	s.logger.Info("computing wallet snapshot",
		zap.String("wallet", user),
		zap.Ints("horizons", horizons),
		zap.Time("as_of", asOf))

	var (
		open   []polymarket.Position
		closed []polymarket.ClosedPosition
		log    []polymarket.ActivityEntry
	)

	// The three fetches are independent; join before aggregating. A failure
	// in one cancels the siblings through the group context.
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		open, err = s.source.Positions(gCtx, user)
		return err
	})
	g.Go(func() error {
		var err error
		closed, err = s.source.ClosedPositions(gCtx, user, s.closedLimit)
		return err
	})
	g.Go(func() error {
		var err error
		log, err = s.source.Activity(gCtx, user, asOf, windowStart.Add(-catchupPad))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch wallet data for %s: %w", user, err)
	}

	activities := NormalizeActivities(log)
	history := BuildHistory(activities, asOf, horizons)
	stats := computeStats(open, closed, windowStart, asOf)

	s.logger.Info("wallet snapshot ready",
		zap.String("wallet", user),
		zap.Int("open_positions", len(open)),
		zap.Int("closed_positions", len(closed)),
		zap.Int("activities", len(activities)),
		zap.Duration("duration", time.Since(start)))

	return &WalletSnapshot{
		User:            user,
		FetchedAt:       asOf.UTC().Format(time.RFC3339),
		OpenPositions:   open,
		ClosedPositions: closed,
		History:         history,
		Stats:           stats,
	}, nil
}

// computeStats derives the headline figures from the live position lists.
func computeStats(open []polymarket.Position, closed []polymarket.ClosedPosition, windowStart, windowEnd time.Time) WalletStats {
	var openValue, initialValue, unrealized, realized float64
	for _, p := range open {
		openValue += polymarket.Float(p.CurrentValue)
		initialValue += polymarket.Float(p.InitialValue)
		unrealized += polymarket.Float(p.CashPnl)
	}
	for _, p := range closed {
		realized += polymarket.Float(p.RealizedPnl)
	}

	return WalletStats{
		TotalOpenValue:       roundTo(openValue, statsPrecision),
		TotalInitialValue:    roundTo(initialValue, statsPrecision),
		TotalUnrealizedPnl:   roundTo(unrealized, statsPrecision),
		TotalRealizedPnl:     roundTo(realized, statsPrecision),
		OpenPositionsCount:   len(open),
		ClosedPositionsCount: len(closed),
		ActivityStart:        windowStart.UTC().Format(time.RFC3339),
		ActivityEnd:          windowEnd.UTC().Format(time.RFC3339),
	}
}
