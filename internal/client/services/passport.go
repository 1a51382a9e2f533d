package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/client/repositories/pending"
	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/logging"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/google/uuid"
)

// LogResult tells whether an exposure reached the server or was queued.
type LogResult struct {
	Summary *sm.ExposureSummary
	Queued  bool
	Pending int
}

// SyncResult counts the outcome of one replay of the offline queue.
type SyncResult struct {
	Sent      int
	Dropped   int
	Remaining int
	Last      *sm.ExposureSummary
}

// PassportService logs exposures (queueing them while offline) and reads the
// signed-in user's passport and insights.
type PassportService interface {
	EnsureProfile(ctx context.Context, nickname, homeCity string) (*sm.Profile, error)
	LogExposure(ctx context.Context, req models.ExposureRequest) (*LogResult, error)
	Sync(ctx context.Context) (*SyncResult, error)
	PendingCount(ctx context.Context) (int, error)
	Passport(ctx context.Context, limit int) (*sm.PassportView, error)
	Insights(ctx context.Context) (*sm.InsightsView, error)
}

type passportService struct {
	client  client.Client
	db      *sql.DB
	pending pending.Repository
	logger  logging.Logger
	now     func() time.Time
}

func NewPassportService(c client.Client, db *sql.DB, repo pending.Repository, logger logging.Logger) PassportService {
	return &passportService{client: c, db: db, pending: repo, logger: logger, now: time.Now}
}

func (s *passportService) EnsureProfile(ctx context.Context, nickname, homeCity string) (*sm.Profile, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.EnsureProfile(ctx, nickname, homeCity)
}

// LogExposure stamps the request with the current time when it carries none,
// so a queued exposure keeps the moment it was taken.
func (s *passportService) LogExposure(ctx context.Context, req models.ExposureRequest) (*LogResult, error) {
	userKey, err := currentUserKey(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if req.Timestamp == nil {
		ts := s.now().UnixMilli()
		req.Timestamp = &ts
	}
	req.UserKey = ""

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode exposure: %w", err)
	}

	sum, err := s.client.LogExposure(ctx, payload)
	if err == nil {
		return &LogResult{Summary: sum}, nil
	}
	if !errors.Is(err, client.ErrUnavailable) {
		return nil, err
	}

	p := &models.PendingExposure{ID: uuid.NewString(), UserKey: userKey, Payload: payload, Timestamp: *req.Timestamp}
	if err := s.pending.Add(ctx, p); err != nil {
		return nil, err
	}
	n, err := s.pending.Count(ctx, userKey)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "exposure queued offline", "id", p.ID, "pending", n)
	return &LogResult{Queued: true, Pending: n}, nil
}

// Sync replays queued exposures oldest first and removes each one the server
// accepts. It stops at the first transport failure, leaving the rest queued.
// Exposures the server rejects as invalid are dropped.
func (s *passportService) Sync(ctx context.Context) (*SyncResult, error) {
	userKey, err := currentUserKey(ctx, s.db)
	if err != nil {
		return nil, err
	}
	queue, err := s.pending.List(ctx, userKey)
	if err != nil {
		return nil, err
	}

	res := &SyncResult{}
	for i, p := range queue {
		sum, err := s.client.LogExposure(ctx, p.Payload)
		switch {
		case err == nil:
			if err := s.pending.Delete(ctx, p.ID); err != nil {
				return nil, err
			}
			res.Sent++
			res.Last = sum
		case errors.Is(err, common.ErrorValidation):
			s.logger.Warn(ctx, "dropping rejected exposure", "id", p.ID, "error", err)
			if err := s.pending.Delete(ctx, p.ID); err != nil {
				return nil, err
			}
			res.Dropped++
		default:
			if mErr := s.pending.MarkFailed(ctx, p.ID, err.Error()); mErr != nil {
				s.logger.Warn(ctx, "cannot record replay failure", "id", p.ID, "error", mErr)
			}
			res.Remaining = len(queue) - i
			if errors.Is(err, client.ErrUnavailable) {
				return res, nil
			}
			return res, fmt.Errorf("sync error: %w", err)
		}
	}

	if res.Sent > 0 || res.Dropped > 0 {
		s.logger.Info(ctx, "offline queue replayed", "sent", res.Sent, "dropped", res.Dropped)
	}
	return res, nil
}

func (s *passportService) PendingCount(ctx context.Context) (int, error) {
	userKey, err := currentUserKey(ctx, s.db)
	if err != nil {
		return 0, err
	}
	return s.pending.Count(ctx, userKey)
}

func (s *passportService) Passport(ctx context.Context, limit int) (*sm.PassportView, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.Passport(ctx, limit)
}

func (s *passportService) Insights(ctx context.Context) (*sm.InsightsView, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.Insights(ctx)
}
