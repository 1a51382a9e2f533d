package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/airpass/internal/timex"
)

const (
	insightsSampleSize = 30
	insightsTrendDays  = 7
	cleanDayThreshold  = 70
)

// InsightsService derives day-bucketed trends from exposure history.
type InsightsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewInsightsService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *InsightsService {
	return &InsightsService{db: db, repomanager: repomanager, logger: logger}
}

// Insights returns nil, nil when userKey has no profile.
func (s *InsightsService) Insights(ctx context.Context, userKey string) (*models.InsightsView, error) {
	p, err := s.repomanager.Profiles(s.db).GetByUserKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	list, err := s.repomanager.Exposures(s.db).ListByProfile(ctx, p.ID, insightsSampleSize)
	if err != nil {
		return nil, fmt.Errorf("error listing exposures: %w", err)
	}

	trend := buildTrend(list)
	return &models.InsightsView{
		Profile:     p,
		Trend:       trend,
		CleanStreak: cleanStreak(trend),
		SampleCount: len(list),
	}, nil
}

// buildTrend buckets exposures by UTC day and returns the most recent
// insightsTrendDays buckets in ascending day order.
func buildTrend(list []*models.Exposure) []models.TrendPoint {
	type bucket struct{ sum, count int }

	buckets := make(map[string]*bucket)
	for _, e := range list {
		day := timex.DayKeyFromMillis(e.Timestamp)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.sum += e.Score
		b.count++
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)
	if len(days) > insightsTrendDays {
		days = days[len(days)-insightsTrendDays:]
	}

	trend := make([]models.TrendPoint, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		trend = append(trend, models.TrendPoint{
			Day:     day,
			Average: roundDiv(b.sum, b.count),
			Samples: b.count,
		})
	}
	return trend
}

// cleanStreak counts trend days with an average of at least
// cleanDayThreshold, walking back from the most recent day until the first
// day below it. trend is read, never reordered.
func cleanStreak(trend []models.TrendPoint) int {
	n := 0
	for i := len(trend) - 1; i >= 0; i-- {
		if trend[i].Average < cleanDayThreshold {
			break
		}
		n++
	}
	return n
}

func roundDiv(sum, count int) int {
	return int(math.Round(float64(sum) / float64(count)))
}
