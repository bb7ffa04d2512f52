package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/redis/go-redis/v9"
)

// DashboardSender publishes alerts to a Redis channel consumed by the operator
// dashboard, and keeps the latest payload per alert readable under a keyed entry.
type DashboardSender struct {
	rdb     *redis.Client
	channel string
}

func NewDashboardSender(rdb *redis.Client, channel string) *DashboardSender {
	if channel == "" {
		channel = "sentinel:alerts"
	}
	return &DashboardSender{rdb: rdb, channel: channel}
}

func (s *DashboardSender) Channel() model.Channel { return model.ChannelDashboard }

func (s *DashboardSender) Send(ctx context.Context, a *model.Alert) error {
	if s.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return err
	}
	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		return err
	}
	// keep last payload for dashboards that poll instead of subscribe
	return s.rdb.Set(ctx, "alert:latest:"+a.ID, payload, 0).Err()
}
