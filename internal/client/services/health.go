package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/client/models"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

// HealthService edits the signed-in user's health profile.
type HealthService interface {
	Get(ctx context.Context) (*sm.HealthProfile, error)
	Save(ctx context.Context, in models.HealthProfileRequest) (*sm.HealthProfile, error)
	UpdateConditions(ctx context.Context, conditions []string, sensitivity string) (*sm.HealthProfile, error)
	Delete(ctx context.Context) error
}

type healthService struct {
	client client.Client
	db     *sql.DB
}

func NewHealthService(c client.Client, db *sql.DB) HealthService {
	return &healthService{client: c, db: db}
}

func (s *healthService) Get(ctx context.Context) (*sm.HealthProfile, error) {
	key, err := currentUserKey(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.client.HealthProfile(ctx, key)
}

func (s *healthService) Save(ctx context.Context, in models.HealthProfileRequest) (*sm.HealthProfile, error) {
	key, err := currentUserKey(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.client.SaveHealthProfile(ctx, key, in)
}

func (s *healthService) UpdateConditions(ctx context.Context, conditions []string, sensitivity string) (*sm.HealthProfile, error) {
	key, err := currentUserKey(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.client.UpdateConditions(ctx, key, conditions, sensitivity)
}

func (s *healthService) Delete(ctx context.Context) error {
	key, err := currentUserKey(ctx, s.db)
	if err != nil {
		return err
	}
	return s.client.DeleteHealthProfile(ctx, key)
}
