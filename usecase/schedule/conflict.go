package schedule

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/usecase/activity"
)

// Default working window for free-slot computation.
const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "21:00"
)

// Engine answers overlap and availability questions about one owner's day.
// All time values are 24h "HH:MM" strings, which order correctly under
// plain string comparison.
type Engine struct {
	activities *activity.Store
	logger     *zap.Logger
}

func New(activities *activity.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{activities: activities, logger: logger}
}

// Slot is one free interval inside the working window.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Overlaps implements the half-open interval test: [s1,e1) and [s2,e2)
// overlap iff s1 < e2 && s2 < e1. An interval with an empty end is a
// zero-duration point and collides only with intervals that strictly
// contain that point; two bare points never collide.
func Overlaps(s1, e1, s2, e2 string) bool {
	switch {
	case e1 == "" && e2 == "":
		return false
	case e1 == "":
		return s2 < s1 && s1 < e2
	case e2 == "":
		return s1 < s2 && s2 < e1
	default:
		return s1 < e2 && s2 < e1
	}
}

// HasConflict reports whether [startTime, endTime) on date collides with
// any of the owner's existing activities in any partition, and returns the
// colliding items. excludeID skips one activity, so an item can be moved
// over its own slot.
func (e *Engine) HasConflict(ctx context.Context, userID, date, startTime, endTime, excludeID string) (bool, []domain.Activity, error) {
	if startTime == "" {
		return false, nil, nil
	}
	existing, err := e.activities.ForDate(ctx, userID, date)
	if err != nil {
		return false, nil, err
	}

	var colliding []domain.Activity
	for _, item := range existing {
		if item.ID == excludeID || item.StartTime == "" {
			continue
		}
		if Overlaps(item.StartTime, item.EndTime, startTime, endTime) {
			colliding = append(colliding, item)
		}
	}
	return len(colliding) > 0, colliding, nil
}

// RangeIntersects returns the owner's Task/Work/Meeting items whose date
// span intersects [fromDate, toDate]. This is the whole-range rule plan
// actions are gated on: any item on any day of the range counts,
// regardless of exact times.
func (e *Engine) RangeIntersects(ctx context.Context, userID, fromDate, toDate string) ([]domain.Activity, error) {
	if toDate == "" {
		toDate = fromDate
	}
	partitions := []string{
		repository.PartitionTasks,
		repository.PartitionWork,
		repository.PartitionMeetings,
	}
	return e.activities.InRange(ctx, userID, fromDate, toDate, partitions)
}

// FreeSlots computes the open gaps of one owner's day inside the working
// window. Items lacking either time are ignored, intervals are merged
// before the sweep so nested or overlapping items cannot fabricate gaps,
// and everything is clamped to [workStart, workEnd].
func (e *Engine) FreeSlots(ctx context.Context, userID, date, workStart, workEnd string) ([]Slot, error) {
	if workStart == "" {
		workStart = DefaultWorkStart
	}
	if workEnd == "" {
		workEnd = DefaultWorkEnd
	}

	existing, err := e.activities.ForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	var intervals []Slot
	for _, item := range existing {
		if !item.HasInterval() || item.EndTime <= item.StartTime {
			continue
		}
		intervals = append(intervals, Slot{Start: item.StartTime, End: item.EndTime})
	}
	return sweep(mergeIntervals(intervals), workStart, workEnd), nil
}

// mergeIntervals collapses overlapping or touching intervals into their
// covering spans, sorted ascending by start (end breaks ties).
func mergeIntervals(intervals []Slot) []Slot {
	if len(intervals) == 0 {
		return nil
	}
	sorted := make([]Slot, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Slot{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// sweep walks merged intervals left to right, emitting the gap before each
// one and a final gap up to workEnd. Intervals fully outside the window
// are skipped; partial overlaps clamp to the window edges.
func sweep(merged []Slot, workStart, workEnd string) []Slot {
	var slots []Slot
	cursor := workStart

	for _, iv := range merged {
		if iv.End <= workStart || iv.Start >= workEnd {
			continue
		}
		start := iv.Start
		if start < workStart {
			start = workStart
		}
		end := iv.End
		if end > workEnd {
			end = workEnd
		}
		if start > cursor {
			slots = append(slots, Slot{Start: cursor, End: start})
		}
		if end > cursor {
			cursor = end
		}
	}
	if cursor < workEnd {
		slots = append(slots, Slot{Start: cursor, End: workEnd})
	}
	return slots
}
