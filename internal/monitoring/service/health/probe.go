// Package health runs the per-service probes, the infrastructure sampler, and
// the aggregation into a platform-wide status.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/model"
)

// Probe checks one monitored service. Implementations must respect the
// caller's context deadline.
type Probe interface {
	ServiceName() string
	Check(ctx context.Context) model.HealthCheckResult
}

// HTTPProbe pings a service health endpoint and classifies the result by
// reachability and response time.
type HTTPProbe struct {
	name          string
	url           string
	client        *http.Client
	degradedAfter time.Duration
}

func NewHTTPProbe(name, url string, timeout, degradedAfter time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if degradedAfter <= 0 {
		degradedAfter = 2 * time.Second
	}
	return &HTTPProbe{
		name:          name,
		url:           url,
		client:        &http.Client{Timeout: timeout},
		degradedAfter: degradedAfter,
	}
}

func (p *HTTPProbe) ServiceName() string { return p.name }

// Check never returns an error: probe failures are recorded on the result as
// an unhealthy status with LastError set, per the propagation policy.
func (p *HTTPProbe) Check(ctx context.Context) model.HealthCheckResult {
	res := model.HealthCheckResult{
		ServiceName: p.name,
		Timestamp:   time.Now().UTC(),
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		res.Status = model.HealthUnhealthy
		res.Details.LastError = err.Error()
		res.Details.ErrorCount = 1
		return res
	}
	start := time.Now()
	resp, err := p.client.Do(req)
	res.ResponseTimeMS = float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		res.Status = model.HealthUnhealthy
		res.Details.LastError = err.Error()
		res.Details.ErrorCount = 1
		return res
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		res.Status = model.HealthUnhealthy
		res.Details.LastError = resp.Status
		res.Details.ErrorCount = 1
	case time.Since(start) > p.degradedAfter || resp.StatusCode >= 400:
		res.Status = model.HealthDegraded
	default:
		res.Status = model.HealthHealthy
	}
	return res
}
