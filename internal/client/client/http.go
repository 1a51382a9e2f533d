package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/airpass/internal/client/models"
	"github.com/dmitrijs2005/airpass/internal/common"
	sm "github.com/dmitrijs2005/airpass/internal/server/models"
)

const apiPrefix = "/api/v1"

// HTTPClient talks JSON to the AirPass HTTP API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client

	mu    sync.RWMutex
	token string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient validates baseURL and returns a client whose requests are
// bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be an absolute http(s) URL", baseURL)
	}
	return &HTTPClient{baseURL: u, http: &http.Client{Timeout: timeout}}, nil
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *HTTPClient) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusError maps an API status code to a sentinel error.
func statusError(status int, msg string) error {
	var base error
	switch {
	case status == http.StatusBadRequest:
		base = common.ErrorValidation
	case status == http.StatusUnauthorized:
		base = ErrUnauthorized
	case status == http.StatusNotFound:
		base = common.ErrorNotFound
	case status == http.StatusConflict:
		base = common.ErrorAlreadyExists
	case status == http.StatusTooManyRequests:
		base = ErrRateLimited
	default:
		base = common.ErrorInternal
	}
	if msg == "" {
		return fmt.Errorf("%w (status %d)", base, status)
	}
	return fmt.Errorf("%w: %s", base, msg)
}

// do sends one request. body may be nil, raw JSON ([]byte) or a value to
// marshal. When out is non-nil a 2xx response body is decoded into it.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := *c.baseURL
	u.Path = u.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.getToken(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return statusError(resp.StatusCode, e.Error)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func limitQuery(name string, n int) url.Values {
	q := url.Values{}
	if n > 0 {
		q.Set(name, strconv.Itoa(n))
	}
	return q
}

// userKeyPath is unescaped; url.URL.String escapes it on the way out.
func userKeyPath(userKey string) string {
	return apiPrefix + "/health-profiles/" + userKey
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (c *HTTPClient) Signup(ctx context.Context, email, password, name string) (*sm.AuthResult, error) {
	var res sm.AuthResult
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/signup", nil, credentials{email, password, name}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Login reports a 401 as common.ErrorInvalidCredentials.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (*sm.AuthResult, error) {
	var res sm.AuthResult
	err := c.do(ctx, http.MethodPost, apiPrefix+"/auth/login", nil, credentials{Email: email, Password: password}, &res)
	if errors.Is(err, ErrUnauthorized) {
		return nil, common.ErrorInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Session returns nil when the server has no live session for the token.
func (c *HTTPClient) Session(ctx context.Context) (*sm.SessionInfo, error) {
	var info *sm.SessionInfo
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/auth/session", nil, nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/auth/logout", nil, nil, nil)
}

func (c *HTTPClient) EnsureProfile(ctx context.Context, nickname, homeCity string) (*sm.Profile, error) {
	body := map[string]string{"nickname": nickname, "homeCity": homeCity}
	var p sm.Profile
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/passport/profile", nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LogExposure posts a pre-encoded models.ExposureRequest, so queued payloads
// are replayed byte for byte.
func (c *HTTPClient) LogExposure(ctx context.Context, payload []byte) (*sm.ExposureSummary, error) {
	var sum sm.ExposureSummary
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/passport/exposures", nil, payload, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}

func (c *HTTPClient) Passport(ctx context.Context, limit int) (*sm.PassportView, error) {
	var v sm.PassportView
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/passport/", limitQuery("limit", limit), nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Insights returns nil when the user has no passport yet.
func (c *HTTPClient) Insights(ctx context.Context) (*sm.InsightsView, error) {
	var v *sm.InsightsView
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/passport/insights", nil, nil, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// HealthProfile returns nil when none is stored.
func (c *HTTPClient) HealthProfile(ctx context.Context, userKey string) (*sm.HealthProfile, error) {
	var hp *sm.HealthProfile
	if err := c.do(ctx, http.MethodGet, userKeyPath(userKey)+"/", nil, nil, &hp); err != nil {
		return nil, err
	}
	return hp, nil
}

func (c *HTTPClient) SaveHealthProfile(ctx context.Context, userKey string, in models.HealthProfileRequest) (*sm.HealthProfile, error) {
	var hp sm.HealthProfile
	if err := c.do(ctx, http.MethodPut, userKeyPath(userKey)+"/", nil, in, &hp); err != nil {
		return nil, err
	}
	return &hp, nil
}

func (c *HTTPClient) UpdateConditions(ctx context.Context, userKey string, conditions []string, sensitivity string) (*sm.HealthProfile, error) {
	body := struct {
		Conditions  []string `json:"conditions"`
		Sensitivity string   `json:"sensitivity,omitempty"`
	}{conditions, sensitivity}
	var hp sm.HealthProfile
	if err := c.do(ctx, http.MethodPatch, userKeyPath(userKey)+"/conditions", nil, body, &hp); err != nil {
		return nil, err
	}
	return &hp, nil
}

func (c *HTTPClient) DeleteHealthProfile(ctx context.Context, userKey string) error {
	return c.do(ctx, http.MethodDelete, userKeyPath(userKey)+"/", nil, nil, nil)
}

func (c *HTTPClient) RecordReading(ctx context.Context, r *sm.AirQualityReading) (*sm.AirQualityReading, error) {
	var out sm.AirQualityReading
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/history/", nil, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) History(ctx context.Context, limit int, from, to string) ([]*sm.AirQualityReading, error) {
	q := limitQuery("limit", limit)
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	var out []*sm.AirQualityReading
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/history/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DailySummary(ctx context.Context, days int) ([]sm.DaySummary, error) {
	var out []sm.DaySummary
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/history/summary", limitQuery("days", days), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) DeleteHistory(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.do(ctx, http.MethodDelete, apiPrefix+"/history/", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *HTTPClient) Export(ctx context.Context) (*sm.HistoryExport, error) {
	var out sm.HistoryExport
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/history/export", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Exports(ctx context.Context, limit int) ([]*sm.HistoryExport, error) {
	var out []*sm.HistoryExport
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/history/exports", limitQuery("limit", limit), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
