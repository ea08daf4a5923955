package stats

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/dhanadurga/backend/domain"
	"github.com/dhanadurga/backend/internal/clock"
	"github.com/dhanadurga/backend/repository"
	"github.com/dhanadurga/backend/usecase/activity"
)

// streakHorizon bounds the backward walk, which also caps the reported
// streak.
const streakHorizon = 30

// Aggregator computes completion, consistency and streak figures over the
// partitioned activity store.
type Aggregator struct {
	docs   repository.DocumentStore
	clock  clock.Clock
	logger *zap.Logger
}

func New(docs repository.DocumentStore, clk clock.Clock, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	return &Aggregator{docs: docs, clock: clk, logger: logger}
}

type TodayStats struct {
	Total      int64   `json:"total"`
	Completed  int64   `json:"completed"`
	Percentage float64 `json:"percentage"`
}

type RoutineStats struct {
	WeeklyConsistency float64 `json:"weekly_consistency"`
	Streak            int     `json:"streak"`
	MonthlyCompleted  int64   `json:"monthly_completed"`
	MonthlyTotal      int64   `json:"monthly_total"`
}

type PlanStats struct {
	Total     int64 `json:"total"`
	Completed int64 `json:"completed"`
	Upcoming  int64 `json:"upcoming"`
}

type Summary struct {
	TotalTasks     int64        `json:"total_tasks"`
	CompletedTasks int64        `json:"completed_tasks"`
	Today          TodayStats   `json:"today"`
	Routine        RoutineStats `json:"routine"`
	Plan           PlanStats    `json:"plan"`
}

type DayStat struct {
	Date      string `json:"date"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
}

// generalPartitions are the collections counted by the overall figures.
// Plans are reported separately and excluded here.
var generalPartitions = []string{
	repository.PartitionTasks,
	repository.PartitionWork,
	repository.PartitionMeetings,
	repository.PartitionRoutines,
	repository.PartitionPersonal,
}

// Completion aggregates totals, today's completion rate, routine
// consistency/streak and plan figures for one owner. A non-empty category
// narrows the general counts to that category's partition. today.percentage
// is 0, not an error, when nothing is scheduled today.
func (a *Aggregator) Completion(ctx context.Context, userID, category string) (*Summary, error) {
	now := a.clock.Now()
	today := now.Format(domain.DateLayout)

	partitions := generalPartitions
	if category != "" {
		partitions = []string{activity.PartitionFor(domain.ParseCategory(category))}
	}

	summary := &Summary{}
	for _, partition := range partitions {
		total, err := a.docs.Count(ctx, partition, repository.Filter{UserID: userID})
		if err != nil {
			return nil, err
		}
		completed, err := a.docs.Count(ctx, partition, repository.Filter{
			UserID: userID,
			Eq:     map[string]string{"status": domain.StatusCompleted},
		})
		if err != nil {
			return nil, err
		}
		todayTotal, err := a.docs.Count(ctx, partition, repository.Filter{
			UserID: userID,
			Eq:     map[string]string{"date": today},
		})
		if err != nil {
			return nil, err
		}
		todayCompleted, err := a.docs.Count(ctx, partition, repository.Filter{
			UserID: userID,
			Eq:     map[string]string{"date": today, "status": domain.StatusCompleted},
		})
		if err != nil {
			return nil, err
		}

		summary.TotalTasks += total
		summary.CompletedTasks += completed
		summary.Today.Total += todayTotal
		summary.Today.Completed += todayCompleted
	}

	if summary.Today.Total > 0 {
		summary.Today.Percentage = round2(float64(summary.Today.Completed) / float64(summary.Today.Total) * 100)
	}

	routine, err := a.routineStats(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	summary.Routine = *routine

	plan, err := a.planStats(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	summary.Plan = *plan

	return summary, nil
}

// Streak walks backward from today for up to 30 days, counting days with
// at least one completed routine item. Today with zero completions does
// not break the streak (the day may still be in progress); any earlier
// empty day halts the walk immediately.
func (a *Aggregator) Streak(ctx context.Context, userID string) (int, error) {
	now := a.clock.Now()
	streak := 0
	for i := 0; i < streakHorizon; i++ {
		date := now.AddDate(0, 0, -i).Format(domain.DateLayout)
		count, err := a.docs.Count(ctx, repository.PartitionRoutines, repository.Filter{
			UserID: userID,
			Eq:     map[string]string{"date": date, "status": domain.StatusCompleted},
		})
		if err != nil {
			return 0, err
		}
		if count > 0 {
			streak++
			continue
		}
		if i > 0 {
			break
		}
	}
	return streak, nil
}

// WeeklyConsistency is the share of routine items completed over the last
// seven days, as a whole-number percentage. Zero routines yields 0.
func (a *Aggregator) WeeklyConsistency(ctx context.Context, userID string) (float64, error) {
	weekAgo := a.clock.Now().AddDate(0, 0, -7).Format(domain.DateLayout)
	total, err := a.docs.Count(ctx, repository.PartitionRoutines, repository.Filter{
		UserID: userID,
		Gte:    map[string]string{"date": weekAgo},
	})
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	completed, err := a.docs.Count(ctx, repository.PartitionRoutines, repository.Filter{
		UserID: userID,
		Eq:     map[string]string{"status": domain.StatusCompleted},
		Gte:    map[string]string{"date": weekAgo},
	})
	if err != nil {
		return 0, err
	}
	return math.Round(float64(completed) / float64(total) * 100), nil
}

// WeeklySeries returns per-day totals for the last seven days, today
// first.
func (a *Aggregator) WeeklySeries(ctx context.Context, userID string) ([]DayStat, error) {
	now := a.clock.Now()
	series := make([]DayStat, 0, 7)
	for i := 0; i < 7; i++ {
		date := now.AddDate(0, 0, -i).Format(domain.DateLayout)
		stat := DayStat{Date: date}
		for _, partition := range generalPartitions {
			total, err := a.docs.Count(ctx, partition, repository.Filter{
				UserID: userID,
				Eq:     map[string]string{"date": date},
			})
			if err != nil {
				return nil, err
			}
			completed, err := a.docs.Count(ctx, partition, repository.Filter{
				UserID: userID,
				Eq:     map[string]string{"date": date, "status": domain.StatusCompleted},
			})
			if err != nil {
				return nil, err
			}
			stat.Total += total
			stat.Completed += completed
		}
		series = append(series, stat)
	}
	return series, nil
}

func (a *Aggregator) routineStats(ctx context.Context, userID string, now time.Time) (*RoutineStats, error) {
	consistency, err := a.WeeklyConsistency(ctx, userID)
	if err != nil {
		return nil, err
	}
	streak, err := a.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(domain.DateLayout)
	monthlyTotal, err := a.docs.Count(ctx, repository.PartitionRoutines, repository.Filter{
		UserID: userID,
		Gte:    map[string]string{"date": firstOfMonth},
	})
	if err != nil {
		return nil, err
	}
	monthlyCompleted, err := a.docs.Count(ctx, repository.PartitionRoutines, repository.Filter{
		UserID: userID,
		Eq:     map[string]string{"status": domain.StatusCompleted},
		Gte:    map[string]string{"date": firstOfMonth},
	})
	if err != nil {
		return nil, err
	}

	return &RoutineStats{
		WeeklyConsistency: consistency,
		Streak:            streak,
		MonthlyCompleted:  monthlyCompleted,
		MonthlyTotal:      monthlyTotal,
	}, nil
}

func (a *Aggregator) planStats(ctx context.Context, userID, today string) (*PlanStats, error) {
	total, err := a.docs.Count(ctx, repository.PartitionPlans, repository.Filter{UserID: userID})
	if err != nil {
		return nil, err
	}
	completed, err := a.docs.Count(ctx, repository.PartitionPlans, repository.Filter{
		UserID: userID,
		Eq:     map[string]string{"status": domain.StatusCompleted},
	})
	if err != nil {
		return nil, err
	}
	upcoming, err := a.docs.Count(ctx, repository.PartitionPlans, repository.Filter{
		UserID: userID,
		Eq:     map[string]string{"status": domain.StatusPending},
		Gte:    map[string]string{"date": today},
	})
	if err != nil {
		return nil, err
	}
	return &PlanStats{Total: total, Completed: completed, Upcoming: upcoming}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
