package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmitrijs2005/airpass/internal/common"
	"github.com/dmitrijs2005/airpass/internal/logging"
	"github.com/dmitrijs2005/airpass/internal/server/config"
	"github.com/dmitrijs2005/airpass/internal/server/models"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/airquality"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/airpass/internal/server/risk"
	"github.com/dmitrijs2005/airpass/internal/server/storage"
	"github.com/dmitrijs2005/airpass/internal/timex"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
	DefaultSummaryDays  = 7
	MaxSummaryDays      = 366
	DefaultSource       = "manual"

	maxExportRows     = 10000
	exportContentType = "text/csv"
)

var exportHeader = []string{
	"timestamp", "date", "lat", "lng", "location", "aqi",
	"pm25", "pm10", "no2", "o3", "co", "so2", "source", "risk_level",
}

// HistoryService records raw air-quality readings and exports them.
type HistoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       storage.ObjectStore
	logger      logging.Logger
	exportTTL   time.Duration
	now         func() time.Time
}

func NewHistoryService(db *sql.DB, repomanager repomanager.RepositoryManager, store storage.ObjectStore,
	cfg *config.Config, logger logging.Logger) *HistoryService {
	return &HistoryService{
		db:          db,
		repomanager: repomanager,
		store:       store,
		logger:      logger,
		exportTTL:   cfg.ExportURLTTL,
		now:         time.Now,
	}
}

// AQILevel buckets an AQI value: up to 50 is low, up to 100 moderate.
func AQILevel(aqi int) string {
	switch {
	case aqi <= 50:
		return risk.Low
	case aqi <= 100:
		return risk.Moderate
	default:
		return risk.High
	}
}

// Record stores a reading, filling timestamp, date, risk level and source
// when the caller left them empty.
func (s *HistoryService) Record(ctx context.Context, r *models.AirQualityReading) (*models.AirQualityReading, error) {
	if err := requireUserKey(r.UserKey); err != nil {
		return nil, err
	}
	if r.AQI < 0 {
		return nil, fmt.Errorf("%w: aqi must be non-negative", common.ErrorValidation)
	}
	if r.Lat < -90 || r.Lat > 90 || r.Lng < -180 || r.Lng > 180 {
		return nil, fmt.Errorf("%w: coordinates out of range", common.ErrorValidation)
	}

	if r.Timestamp == 0 {
		r.Timestamp = s.now().UnixMilli()
	}
	if r.Date == "" {
		r.Date = timex.DayKeyFromMillis(r.Timestamp)
	} else if _, err := time.Parse(timex.DayLayout, r.Date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", common.ErrorValidation)
	}
	if r.RiskLevel == "" {
		r.RiskLevel = AQILevel(r.AQI)
	}
	if r.Source == "" {
		r.Source = DefaultSource
	}

	saved, err := s.repomanager.AirQuality(s.db).Create(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("error recording reading: %w", err)
	}
	return saved, nil
}

// History returns readings newest first, optionally bounded by inclusive
// "YYYY-MM-DD" days.
func (s *HistoryService) History(ctx context.Context, userKey string, limit int, from, to string) ([]*models.AirQualityReading, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(timex.DayLayout, d); err != nil {
			return nil, fmt.Errorf("%w: dates must be YYYY-MM-DD", common.ErrorValidation)
		}
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	list, err := s.repomanager.AirQuality(s.db).List(ctx, userKey, airquality.Filter{From: from, To: to, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}
	if list == nil {
		list = []*models.AirQualityReading{}
	}
	return list, nil
}

// DailySummary aggregates the last days UTC days, today included.
func (s *HistoryService) DailySummary(ctx context.Context, userKey string, days int) ([]models.DaySummary, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = DefaultSummaryDays
	}
	days = min(days, MaxSummaryDays)

	from := timex.DayKey(s.now().AddDate(0, 0, -(days - 1)))
	out, err := s.repomanager.AirQuality(s.db).DailySummary(ctx, userKey, from)
	if err != nil {
		return nil, fmt.Errorf("error summarising history: %w", err)
	}
	if out == nil {
		out = []models.DaySummary{}
	}
	return out, nil
}

// Delete removes the whole history of userKey and returns the row count.
func (s *HistoryService) Delete(ctx context.Context, userKey string) (int64, error) {
	if err := requireUserKey(userKey); err != nil {
		return 0, err
	}
	n, err := s.repomanager.AirQuality(s.db).DeleteByUserKey(ctx, userKey)
	if err != nil {
		return 0, fmt.Errorf("error deleting history: %w", err)
	}
	s.logger.Info(ctx, "history deleted", "user_key", userKey, "rows", n)
	return n, nil
}

// Export renders the history as CSV, uploads it to object storage and
// returns the export with a presigned download link.
func (s *HistoryService) Export(ctx context.Context, userKey string) (*models.HistoryExport, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}

	list, err := s.repomanager.AirQuality(s.db).List(ctx, userKey, airquality.Filter{Limit: maxExportRows})
	if err != nil {
		return nil, fmt.Errorf("error listing history: %w", err)
	}

	body, err := renderCSV(list)
	if err != nil {
		return nil, fmt.Errorf("error rendering csv: %w", err)
	}

	repo := s.repomanager.Exports(s.db)
	exp, err := repo.Create(ctx, &models.HistoryExport{
		UserKey:    userKey,
		StorageKey: storage.ExportKey(s.now()),
		Rows:       len(list),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating export: %w", err)
	}

	if err := s.store.Put(ctx, exp.StorageKey, exportContentType, body); err != nil {
		s.logger.Warn(ctx, "export upload failed", "export_id", exp.ID, "error", err)
		if derr := repo.Delete(ctx, exp.ID); derr != nil {
			s.logger.Warn(ctx, "failed to remove pending export", "export_id", exp.ID, "error", derr)
		}
		return nil, err
	}
	if err := repo.MarkUploaded(ctx, exp.ID); err != nil {
		return nil, fmt.Errorf("error marking export uploaded: %w", err)
	}
	exp.Status = models.ExportCompleted

	if err := s.presign(ctx, exp); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "history exported", "user_key", userKey, "export_id", exp.ID, "rows", exp.Rows)
	return exp, nil
}

// ListExports returns completed exports newest first, each with a fresh
// download link.
func (s *HistoryService) ListExports(ctx context.Context, userKey string, limit int) ([]*models.HistoryExport, error) {
	if err := requireUserKey(userKey); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	list, err := s.repomanager.Exports(s.db).ListByUserKey(ctx, userKey, min(limit, MaxHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("error listing exports: %w", err)
	}
	for _, e := range list {
		if err := s.presign(ctx, e); err != nil {
			return nil, err
		}
	}
	if list == nil {
		list = []*models.HistoryExport{}
	}
	return list, nil
}

func (s *HistoryService) presign(ctx context.Context, e *models.HistoryExport) error {
	url, err := s.store.PresignGet(ctx, e.StorageKey, s.exportTTL)
	if err != nil {
		return err
	}
	expires := s.now().Add(s.exportTTL)
	e.URL = url
	e.ExpiresAt = &expires
	return nil
}

func renderCSV(list []*models.AirQualityReading) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range list {
		rec := []string{
			strconv.FormatInt(r.Timestamp, 10),
			r.Date,
			formatFloat(r.Lat),
			formatFloat(r.Lng),
			r.LocationName,
			strconv.Itoa(r.AQI),
			formatOptional(r.PM25),
			formatOptional(r.PM10),
			formatOptional(r.NO2),
			formatOptional(r.O3),
			formatOptional(r.CO),
			formatOptional(r.SO2),
			r.Source,
			r.RiskLevel,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
