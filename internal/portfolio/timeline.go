package portfolio

import (
	"sort"
	"time"

	"github.com/aymeric-roucher/PolymarketShowcase/internal/polymarket"
)

// BuildTimeline derives the sample instants for a replay window: the window
// boundaries plus every activity timestamp inside [start, end], deduplicated
// and strictly ascending. With no in-range activity the timeline degenerates
// to the two boundaries.
func BuildTimeline(activities []polymarket.ActivityEntry, start, end time.Time) []time.Time {
	instants := map[int64]struct{}{
		start.Unix(): {},
		end.Unix():   {},
	}
	for _, activity := range activities {
		at := activity.OccurredAt()
		if at.Before(start) || at.After(end) {
			continue
		}
		instants[at.Unix()] = struct{}{}
	}

	timeline := make([]time.Time, 0, len(instants))
	for unix := range instants {
		timeline = append(timeline, time.Unix(unix, 0).UTC())
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Before(timeline[j])
	})

	return timeline
}
