package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"

	"github.com/dmitrijs2005/airpass/internal/client/client"
	"github.com/dmitrijs2005/airpass/internal/filex"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/netx"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

// HistoryService reads and manages the signed-in user's air-quality history.
type HistoryService interface {
	Record(ctx context.Context, r *sm.AirQualityReading) (*sm.AirQualityReading, error)
	List(ctx context.Context, limit int, from, to string) ([]*sm.AirQualityReading, error)
	Summary(ctx context.Context, days int) ([]sm.DaySummary, error)
	Clear(ctx context.Context) (int64, error)
	// Export creates a CSV export; when download is set the file is saved
	// under the local exports directory and its path returned.
	Export(ctx context.Context, download bool) (*sm.HistoryExport, string, error)
	Exports(ctx context.Context, limit int) ([]*sm.HistoryExport, error)
}

type historyService struct {
	client     client.Client
	db         *sql.DB
	http       *http.Client
	exportsDir string
	logger     logging.Logger
}

// NewHistoryService builds a HistoryService that saves downloads into exportsDir.
func NewHistoryService(c client.Client, db *sql.DB, exportsDir string, logger logging.Logger) HistoryService {
	return &historyService{client: c, db: db, http: &http.Client{}, exportsDir: exportsDir, logger: logger}
}

func (s *historyService) Record(ctx context.Context, r *sm.AirQualityReading) (*sm.AirQualityReading, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.RecordReading(ctx, r)
}

func (s *historyService) List(ctx context.Context, limit int, from, to string) ([]*sm.AirQualityReading, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.History(ctx, limit, from, to)
}

func (s *historyService) Summary(ctx context.Context, days int) ([]sm.DaySummary, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.DailySummary(ctx, days)
}

func (s *historyService) Clear(ctx context.Context) (int64, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return 0, err
	}
	return s.client.DeleteHistory(ctx)
}

func (s *historyService) Export(ctx context.Context, download bool) (*sm.HistoryExport, string, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, "", err
	}
	exp, err := s.client.Export(ctx)
	if err != nil {
		return nil, "", err
	}
	if !download || exp.URL == "" {
		return exp, "", nil
	}

	data, err := netx.Download(ctx, s.http, exp.URL)
	if err != nil {
		return exp, "", fmt.Errorf("download export: %w", err)
	}
	dir, err := filex.EnsureSubDir(s.exportsDir)
	if err != nil {
		return exp, "", err
	}
	name := path.Base(exp.StorageKey)
	if name == "." || name == "/" {
		name = exp.ID + ".csv"
	}
	p, err := filex.WriteFile(dir, name, data)
	if err != nil {
		return exp, "", err
	}
	s.logger.Debug(ctx, "export saved", "path", p, "rows", exp.Rows)
	return exp, p, nil
}

func (s *historyService) Exports(ctx context.Context, limit int) ([]*sm.HistoryExport, error) {
	if _, err := currentUserKey(ctx, s.db); err != nil {
		return nil, err
	}
	return s.client.Exports(ctx, limit)
}
