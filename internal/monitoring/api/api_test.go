package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/merchantops/sentinel/internal/config"
	"github.com/merchantops/sentinel/internal/middleware"
	"github.com/merchantops/sentinel/internal/monitoring"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memMetricStore struct {
	mu      sync.Mutex
	samples []model.MetricSample
}

func (s *memMetricStore) Append(ctx context.Context, m *model.MetricSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, *m)
	return nil
}

func (s *memMetricStore) Query(ctx context.Context, t model.MetricType, c model.MetricCategory, since time.Time) ([]model.MetricSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MetricSample
	for _, m := range s.samples {
		if m.Type == t && m.Category == c && !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memMetricStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type memAlertStore struct {
	mu     sync.Mutex
	alerts map[string]model.Alert
}

func newMemAlertStore() *memAlertStore {
	return &memAlertStore{alerts: make(map[string]model.Alert)}
}

func (s *memAlertStore) Save(ctx context.Context, a *model.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[a.ID] = *a
	return nil
}

func (s *memAlertStore) FindByID(ctx context.Context, id string) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return nil, model.ErrAlertNotFound
	}
	cp := a
	return &cp, nil
}

func (s *memAlertStore) FindActive(ctx context.Context, at model.AlertType, metricName string) (*model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.Status != model.StatusResolved && a.AlertType == at && a.MetricName == metricName {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memAlertStore) FindBy(ctx context.Context, status model.AlertStatus, severity model.Severity) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Alert
	for _, a := range s.alerts {
		if a.Status == status && (severity == "" || a.Severity == severity) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memAlertStore) FindSince(ctx context.Context, since time.Time) ([]model.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Alert
	for _, a := range s.alerts {
		if !a.CreatedAt.Before(since) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *memAlertStore) DeleteResolvedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newTestAPI(t *testing.T, authToken string) (*monitoring.Engine, *gin.Engine, *memAlertStore, *memMetricStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)
	cfg.Server.AuthToken = authToken

	metricStore := &memMetricStore{}
	alertStore := newMemAlertStore()
	engine := monitoring.New(cfg, metricStore, alertStore, nil)

	router := gin.New()
	_, err = NewApi(engine, router, authToken)
	require.NoError(t, err)
	return engine, router, alertStore, metricStore
}

func do(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedAlert(t *testing.T, engine *monitoring.Engine) *model.Alert {
	t.Helper()
	rule := model.AlertRule{
		Name:           "api_latency_test",
		MetricType:     model.MetricTypePerformance,
		MetricCategory: model.CategoryResponseTime,
		Condition:      model.Condition{Operator: model.OpGT, Threshold: 1000, DurationMinutes: 5},
		Severity:       model.SeverityHigh,
		Enabled:        true,
	}
	a, err := engine.Manager.CreateOrUpdate(context.Background(), &rule, 1500, nil)
	require.NoError(t, err)
	return a
}

func TestAuthentication(t *testing.T) {
	_, router, _, _ := newTestAPI(t, "s3cret")

	w := do(router, http.MethodGet, "/v1/rules", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/v1/rules", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/v1/rules", "", map[string]string{"Authorization": "Bearer s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)

	// health endpoint stays open
	w = do(router, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	_, router, _, _ := newTestAPI(t, "")

	w := do(router, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = do(router, http.MethodGet, "/healthz", "", map[string]string{middleware.RequestIDHeader: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(middleware.RequestIDHeader))
}

func TestRulesCRUD(t *testing.T) {
	_, router, _, _ := newTestAPI(t, "")

	t.Run("ListSeededRules", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/rules", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Rules []model.AlertRule `json:"rules"`
			Total int               `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, len(resp.Rules), resp.Total)
		assert.NotEmpty(t, resp.Rules)
	})

	t.Run("CreateThenUpdateThenDelete", func(t *testing.T) {
		body := `{
  "name": "checkout_error_rate",
  "metricType": "ERROR",
  "metricCategory": "ERROR_RATE",
  "condition": {"operator": ">", "threshold": 2, "durationMinutes": 10},
  "severity": "MEDIUM",
  "enabled": true,
  "channels": ["DASHBOARD"]
}`
		w := do(router, http.MethodPost, "/v1/rules", body, nil)
		require.Equal(t, http.StatusCreated, w.Code)
		var created model.AlertRule
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		require.NotEmpty(t, created.ID)

		created.Condition.Threshold = 4
		buf, err := json.Marshal(created)
		require.NoError(t, err)
		w = do(router, http.MethodPut, "/v1/rules/"+created.ID, string(buf), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = do(router, http.MethodDelete, "/v1/rules/"+created.ID, "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = do(router, http.MethodDelete, "/v1/rules/"+created.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidRuleRejected", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/rules", `{"name": ""}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAlertEndpoints(t *testing.T) {
	engine, router, _, _ := newTestAPI(t, "")
	alert := seedAlert(t, engine)

	t.Run("ListActive", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/alerts", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Alerts []model.Alert `json:"alerts"`
			Total  int           `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, alert.ID, resp.Alerts[0].ID)
	})

	t.Run("SeverityFilter", func(t *testing.T) {
		w := do(router, http.MethodGet, "/v1/alerts?severity=CRITICAL", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Total int `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Zero(t, resp.Total)
	})

	t.Run("AcknowledgeRequiresUser", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/alerts/"+alert.ID+"/acknowledge", `{"note":"no user"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AcknowledgeThenResolve", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/alerts/"+alert.ID+"/acknowledge", `{"userID":"ops-1","note":"looking"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var acked model.Alert
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &acked))
		assert.Equal(t, model.StatusAcknowledged, acked.Status)

		w = do(router, http.MethodPost, "/v1/alerts/"+alert.ID+"/resolve", `{"userID":"ops-1","action":"restart"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// resolved is terminal
		w = do(router, http.MethodPost, "/v1/alerts/"+alert.ID+"/resolve", `{"userID":"ops-1"}`, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("UnknownAlert", func(t *testing.T) {
		w := do(router, http.MethodPost, "/v1/alerts/missing/acknowledge", `{"userID":"ops-1"}`, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMetricsHistoryEndpoint(t *testing.T) {
	_, router, _, metricStore := newTestAPI(t, "")
	require.NoError(t, metricStore.Append(context.Background(), &model.MetricSample{
		Type:      model.MetricTypePerformance,
		Category:  model.CategoryResponseTime,
		Name:      "api_response_time",
		Value:     250,
		CreatedAt: time.Now().UTC(),
	}))

	w := do(router, http.MethodGet, "/v1/metrics/history?type=PERFORMANCE&category=RESPONSE_TIME&hours=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Samples []model.MetricSample `json:"samples"`
		Total   int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)

	w = do(router, http.MethodGet, "/v1/metrics/history?type=PERFORMANCE", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportEndpoint(t *testing.T) {
	_, router, _, _ := newTestAPI(t, "")

	w := do(router, http.MethodGet, "/v1/reports/daily", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rep struct {
		Period string `json:"period"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, "daily", rep.Period)

	w = do(router, http.MethodGet, "/v1/reports/hourly", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestConfigEndpoints(t *testing.T) {
	engine, router, _, _ := newTestAPI(t, "")

	w := do(router, http.MethodGet, "/v1/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mc config.MonitoringConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mc))
	assert.Equal(t, "30s", mc.HealthCheckInterval)

	mc.HealthCheckInterval = "10s"
	mc.MemoryDegradedPct = 50
	buf, err := json.Marshal(mc)
	require.NoError(t, err)
	w = do(router, http.MethodPut, "/v1/config", string(buf), nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := engine.MonitoringSettings()
	assert.Equal(t, "10s", got.HealthCheckInterval)
	assert.Equal(t, float64(50), engine.Aggregator.Thresholds().MemoryDegradedPct)
	engine.Stop()

	w = do(router, http.MethodPut, "/v1/config", `{"metricRetentionDays": 0}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
