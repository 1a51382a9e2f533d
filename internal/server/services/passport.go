// Package services contains the server-side business logic: the exposure
// passport, insights, session auth, health profiles and reading history.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/airpass/internal/server/risk"
	"github.com/dmitrijs2005/airpass/internal/timex"
	"github.com/google/uuid"
)

const (
	DefaultPassportLimit = 6
	MaxPassportLimit     = 50

	// averageWindow is how many recent scores feed PassportView.AverageScore.
	averageWindow = 50
)

// ExposureInput is one exposure as submitted by a client. Timestamp is Unix
// epoch milliseconds; nil means now.
type ExposureInput struct {
	UserKey      string   `json:"userKey"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	LocationName string   `json:"locationName"`
	PM25         *float64 `json:"pm25,omitempty"`
	NO2          *float64 `json:"no2,omitempty"`
	CO           *float64 `json:"co,omitempty"`
	Mode         string   `json:"mode,omitempty"`
	Timestamp    *int64   `json:"timestamp,omitempty"`
}

func (in *ExposureInput) validate() error {
	if strings.TrimSpace(in.UserKey) == "" {
		return fmt.Errorf("%w: userKey is required", common.ErrorValidation)
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lon < -180 || in.Lon > 180 {
		return fmt.Errorf("%w: coordinates out of range", common.ErrorValidation)
	}
	for _, v := range []*float64{in.PM25, in.NO2, in.CO} {
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: pollutant readings must be non-negative", common.ErrorValidation)
		}
	}
	if in.Timestamp != nil && !timex.MillisInRange(*in.Timestamp) {
		return fmt.Errorf("%w: timestamp out of range", common.ErrorValidation)
	}
	return nil
}

// PassportService owns profile lifecycle, streak and points accrual and the
// exposure history of each profile.
type PassportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewPassportService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *PassportService {
	return &PassportService{
		db:          db,
		repomanager: repomanager,
		logger:      logger,
		now:         time.Now,
	}
}

// EnsureProfile returns the profile for userKey, creating it with zeroed
// counters when absent. Non-empty nickname and homeCity overwrite the stored
// values; the user link is backfilled from a "user-<id>" key when unset.
func (s *PassportService) EnsureProfile(ctx context.Context, userKey, nickname, homeCity string) (*models.Profile, error) {
	if strings.TrimSpace(userKey) == "" {
		return nil, fmt.Errorf("%w: userKey is required", common.ErrorValidation)
	}

	var profile *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, created, err := s.findOrCreate(ctx, tx, userKey, nickname, homeCity)
		if err != nil {
			return err
		}

		if !created {
			changed := false
			if nickname != "" && nickname != p.Nickname {
				p.Nickname = nickname
				changed = true
			}
			if homeCity != "" && homeCity != p.HomeCity {
				p.HomeCity = homeCity
				changed = true
			}
			if p.UserID == nil {
				id, err := s.linkedUserID(ctx, tx, userKey)
				if err != nil {
					return err
				}
				if id != nil {
					p.UserID = id
					changed = true
				}
			}
			if changed {
				if err := s.repomanager.Profiles(tx).Update(ctx, p); err != nil {
					return fmt.Errorf("error updating profile: %w", err)
				}
			}
		}

		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// LogExposure scores the readings, records the exposure and advances the
// profile's streak and points. The profile row stays locked for the whole
// transaction, so concurrent logs for one userKey apply one after another.
func (s *PassportService) LogExposure(ctx context.Context, in ExposureInput) (*models.ExposureSummary, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ts := s.now().UnixMilli()
	if in.Timestamp != nil {
		ts = *in.Timestamp
	}
	day := timex.DayKeyFromMillis(ts)
	assessment := risk.Score(in.PM25, in.NO2, in.CO)

	var summary *models.ExposureSummary
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		p, _, err := s.findOrCreate(ctx, tx, in.UserKey, "", "")
		if err != nil {
			return err
		}

		streak := nextStreak(p.LastActiveDate, day, p.Streak)
		p.Streak = streak
		p.BestStreak = max(p.BestStreak, streak)
		p.Points += risk.PointsFor(assessment.Score)
		p.LastActiveDate = day

		e, err := s.repomanager.Exposures(tx).Create(ctx, &models.Exposure{
			ProfileID:    p.ID,
			Lat:          in.Lat,
			Lon:          in.Lon,
			LocationName: in.LocationName,
			Timestamp:    ts,
			PM25:         in.PM25,
			NO2:          in.NO2,
			CO:           in.CO,
			Mode:         in.Mode,
			RiskLevel:    assessment.RiskLevel,
			Tips:         assessment.Tips,
			Score:        assessment.Score,
		})
		if err != nil {
			return fmt.Errorf("error creating exposure: %w", err)
		}

		if err := s.repomanager.Profiles(tx).Update(ctx, p); err != nil {
			return fmt.Errorf("error updating profile: %w", err)
		}

		summary = &models.ExposureSummary{
			ExposureID: e.ID,
			Points:     p.Points,
			Streak:     p.Streak,
			BestStreak: p.BestStreak,
			Score:      assessment.Score,
			RiskLevel:  assessment.RiskLevel,
			Tips:       assessment.Tips,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "exposure logged",
		"user_key", in.UserKey, "day", day, "score", summary.Score, "streak", summary.Streak)
	return summary, nil
}

// GetPassport returns the profile with its latest exposures. A missing
// profile yields an empty view rather than an error.
func (s *PassportService) GetPassport(ctx context.Context, userKey string, limit int) (*models.PassportView, error) {
	if limit <= 0 {
		limit = DefaultPassportLimit
	}
	limit = min(limit, MaxPassportLimit)

	view := &models.PassportView{Exposures: []*models.Exposure{}}

	p, err := s.repomanager.Profiles(s.db).GetByUserKey(ctx, userKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return view, nil
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	view.Profile = p

	repo := s.repomanager.Exposures(s.db)

	list, err := repo.ListByProfile(ctx, p.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing exposures: %w", err)
	}
	if len(list) > 0 {
		view.Exposures = list
		view.Latest = list[0]
	}

	scores, err := repo.RecentScores(ctx, p.ID, averageWindow)
	if err != nil {
		return nil, fmt.Errorf("error loading scores: %w", err)
	}
	if len(scores) > 0 {
		avg := roundMean(scores)
		view.AverageScore = &avg
	}

	return view, nil
}

// findOrCreate inserts the profile unless it exists and then reads it back
// under a row lock. It reports whether this call created the row.
func (s *PassportService) findOrCreate(ctx context.Context, tx dbx.DBTX, userKey, nickname, homeCity string) (*models.Profile, bool, error) {
	repo := s.repomanager.Profiles(tx)

	userID, err := s.linkedUserID(ctx, tx, userKey)
	if err != nil {
		return nil, false, err
	}

	created, err := repo.CreateIfAbsent(ctx, &models.Profile{
		UserKey:  userKey,
		UserID:   userID,
		Nickname: nickname,
		HomeCity: homeCity,
	})
	if err != nil {
		return nil, false, fmt.Errorf("error creating profile: %w", err)
	}

	p, err := repo.GetByUserKeyForUpdate(ctx, userKey)
	if err != nil {
		return nil, false, fmt.Errorf("error loading profile: %w", err)
	}

	if created {
		s.logger.Info(ctx, "profile created", "user_key", userKey)
	}
	return p, created, nil
}

// linkedUserID resolves the account behind a "user-<id>" key. Anonymous keys
// and ids with no matching user resolve to nil.
func (s *PassportService) linkedUserID(ctx context.Context, tx dbx.DBTX, userKey string) (*string, error) {
	id, ok := common.UserIDFromKey(userKey)
	if !ok {
		return nil, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	u, err := s.repomanager.Users(tx).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return &u.ID, nil
}

// nextStreak applies the daily streak rule: same day keeps the streak, the
// next calendar day extends it, anything else (including a first log or a
// day in the past) restarts it at 1.
// nextStreak treats an empty or unreadable lastActive as a first log.
func nextStreak(lastActive, day string, streak int) int {
	if lastActive == day {
		return streak
	}
	diff, err := timex.DaysBetween(lastActive, day)
	if err != nil || diff != 1 {
		return 1
	}
	return streak + 1
}

func roundMean(values []int) int {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return roundDiv(sum, len(values))
}
