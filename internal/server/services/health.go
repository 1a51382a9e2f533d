package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/repomanager"
	"github.com/lib/pq"
)

// HealthProfileInput holds the user-editable health fields.
type HealthProfileInput struct {
	Age             *int     `json:"age"`
	Gender          string   `json:"gender"`
	ActivityLevel   string   `json:"activityLevel"`
	OutdoorExposure string   `json:"outdoorExposure"`
	Conditions      []string `json:"conditions"`
	Sensitivity     string   `json:"sensitivity"`
}

// HealthService is a thin store for health profiles keyed by userKey.
type HealthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewHealthService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger) *HealthService {
	return &HealthService{db: db, repomanager: repomanager, logger: logger}
}

func requireUserKey(userKey string) error {
	if strings.TrimSpace(userKey) == "" {
		return fmt.Errorf("%w: userKey is required", common.ErrorValidation)
	}
	return nil
}

// Get returns nil, nil when userKey has no health profile.
func (s *HealthService) Get(ctx context.Context, userKey string) (*models.HealthProfile, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}
	hp, err := s.repomanager.HealthProfiles(s.db).Get(ctx, userKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error loading health profile: %w", err)
	}
	return hp, nil
}

// Save creates or replaces the health profile and recomputes IsComplete.
func (s *HealthService) Save(ctx context.Context, userKey string, in HealthProfileInput) (*models.HealthProfile, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
		return nil, fmt.Errorf("%w: age out of range", common.ErrorValidation)
	}

	hp := &models.HealthProfile{
		UserKey:         userKey,
		Age:             in.Age,
		Gender:          in.Gender,
		ActivityLevel:   in.ActivityLevel,
		OutdoorExposure: in.OutdoorExposure,
		Conditions:      cleanConditions(in.Conditions),
		Sensitivity:     in.Sensitivity,
	}
	hp.IsComplete = hp.Complete()

	saved, err := s.repomanager.HealthProfiles(s.db).Upsert(ctx, hp)
	if err != nil {
		return nil, fmt.Errorf("error saving health profile: %w", err)
	}
	return saved, nil
}

// UpdateConditions replaces the conditions of an existing profile. Unlike
// Save it never creates one: a missing profile yields common.ErrorNotFound.
func (s *HealthService) UpdateConditions(ctx context.Context, userKey string, conditions []string, sensitivity string) (*models.HealthProfile, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}
	hp, err := s.repomanager.HealthProfiles(s.db).UpdateConditions(ctx, userKey, cleanConditions(conditions), sensitivity)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating conditions: %w", err)
	}
	return hp, nil
}

// Delete is idempotent.
func (s *HealthService) Delete(ctx context.Context, userKey string) error {
	if err := requireUserKey(userKey); err != nil {
		return err
	}
	if err := s.repomanager.HealthProfiles(s.db).Delete(ctx, userKey); err != nil {
		return fmt.Errorf("error deleting health profile: %w", err)
	}
	return nil
}

// cleanConditions trims entries and drops blanks; order is kept.
func cleanConditions(in []string) pq.StringArray {
	out := pq.StringArray{}
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
