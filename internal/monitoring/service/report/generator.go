// Package report builds periodic operational summaries from the alert store
// and health history.
package report

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/database"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/merchantops/sentinel/internal/monitoring/service/health"
	promModel "github.com/prometheus/common/model"
	"github.com/rs/zerolog/log"
)

// Period selects the report window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) Window() time.Duration {
	switch p {
	case PeriodWeekly:
		return 7 * 24 * time.Hour
	case PeriodMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// ServiceUptime is one row of the per-service availability table.
type ServiceUptime struct {
	Service   string  `json:"service"`
	UptimePct float64 `json:"uptimePct"`
}

// RuleNoise counts how often one alert series fired over the period.
type RuleNoise struct {
	MetricName  string `json:"metricName"`
	AlertCount  int    `json:"alertCount"`
	Occurrences int    `json:"occurrences"`
}

// OperationalReport summarizes one reporting period.
type OperationalReport struct {
	Period       Period                    `json:"period"`
	Covering     promModel.Duration        `json:"covering"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
	AlertsTotal  int                       `json:"alertsTotal"`
	BySeverity   map[model.Severity]int    `json:"bySeverity"`
	ByStatus     map[model.AlertStatus]int `json:"byStatus"`
	Escalated    int                       `json:"escalated"`
	Uptime       []ServiceUptime           `json:"uptime"`
	NoisiestRule []RuleNoise               `json:"noisiestRules"`
}

type Generator struct {
	alerts  database.AlertStore
	history *health.History

	mu     sync.RWMutex
	latest map[Period]*OperationalReport
}

func NewGenerator(alerts database.AlertStore, history *health.History) *Generator {
	return &Generator{alerts: alerts, history: history, latest: make(map[Period]*OperationalReport)}
}

// Generate builds a report for the period ending now and caches it as the
// latest for that period.
func (g *Generator) Generate(ctx context.Context, p Period) (*OperationalReport, error) {
	window := p.Window()
	since := time.Now().Add(-window)
	alerts, err := g.alerts.FindSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load alerts for report: %w", err)
	}

	rep := &OperationalReport{
		Period:      p,
		Covering:    promModel.Duration(window),
		GeneratedAt: time.Now().UTC(),
		AlertsTotal: len(alerts),
		BySeverity:  make(map[model.Severity]int),
		ByStatus:    make(map[model.AlertStatus]int),
	}
	noise := make(map[string]*RuleNoise)
	for _, a := range alerts {
		rep.BySeverity[a.Severity]++
		rep.ByStatus[a.Status]++
		if a.IsEscalated {
			rep.Escalated++
		}
		n, ok := noise[a.MetricName]
		if !ok {
			n = &RuleNoise{MetricName: a.MetricName}
			noise[a.MetricName] = n
		}
		n.AlertCount++
		n.Occurrences += a.OccurrenceCount
	}
	for _, n := range noise {
		rep.NoisiestRule = append(rep.NoisiestRule, *n)
	}
	sort.Slice(rep.NoisiestRule, func(i, j int) bool {
		return rep.NoisiestRule[i].Occurrences > rep.NoisiestRule[j].Occurrences
	})
	if len(rep.NoisiestRule) > 10 {
		rep.NoisiestRule = rep.NoisiestRule[:10]
	}

	for _, svc := range g.history.Services() {
		rep.Uptime = append(rep.Uptime, ServiceUptime{
			Service:   svc,
			UptimePct: g.history.UptimePct(svc, since),
		})
	}
	sort.Slice(rep.Uptime, func(i, j int) bool { return rep.Uptime[i].Service < rep.Uptime[j].Service })

	g.mu.Lock()
	g.latest[p] = rep
	g.mu.Unlock()
	log.Info().Str("period", string(p)).Int("alerts", rep.AlertsTotal).Msg("operational report generated")
	return rep, nil
}

// Latest returns the most recently generated report for the period, if any.
func (g *Generator) Latest(p Period) (*OperationalReport, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rep, ok := g.latest[p]
	return rep, ok
}
