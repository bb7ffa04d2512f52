// Package notify owns the fan-out and aggregation policy for alert
// notifications. Transport lives in the channel senders.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/merchantops/sentinel/internal/monitoring/metrics"
	"github.com/merchantops/sentinel/internal/monitoring/model"
	"github.com/rs/zerolog/log"
)

// Sender delivers one alert over one channel.
type Sender interface {
	Channel() model.Channel
	Send(ctx context.Context, a *model.Alert) error
}

// Result maps each attempted channel to its outcome; nil means delivered.
type Result map[model.Channel]error

// Failed lists the channels that did not deliver.
func (r Result) Failed() []model.Channel {
	var out []model.Channel
	for ch, err := range r {
		if err != nil {
			out = append(out, ch)
		}
	}
	return out
}

// Dispatcher fans an alert out to all requested channels concurrently and
// waits for every sender to finish. There is no retry loop here; re-dispatch
// is driven by the caller.
type Dispatcher struct {
	senders map[model.Channel]Sender
	timeout time.Duration
}

func NewDispatcher(timeout time.Duration, senders ...Sender) *Dispatcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	m := make(map[model.Channel]Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Dispatcher{senders: m, timeout: timeout}
}

// Send delivers the alert on every requested channel. The returned Result holds
// the per-channel outcome; the error is non-nil when at least one channel
// failed. Channels with no configured sender are skipped with a warning rather
// than counted as failures.
func (d *Dispatcher) Send(ctx context.Context, a *model.Alert, channels []model.Channel) (Result, error) {
	start := time.Now()
	defer func() { metrics.DispatchDuration.Observe(time.Since(start).Seconds()) }()

	res := make(Result, len(channels))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, ch := range dedupe(channels) {
		sender, ok := d.senders[ch]
		if !ok {
			log.Warn().Str("channel", string(ch)).Str("alert", a.ID).Msg("no sender configured for channel; skipping")
			continue
		}
		wg.Add(1)
		go func(ch model.Channel, s Sender) {
			defer wg.Done()
			sctx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()
			err := s.Send(sctx, a)
			if err != nil {
				metrics.DispatchFailures.WithLabelValues(string(ch)).Inc()
				log.Error().Err(err).Str("channel", string(ch)).Str("alert", a.ID).Msg("notification send failed")
			}
			mu.Lock()
			res[ch] = err
			mu.Unlock()
		}(ch, sender)
	}
	wg.Wait()

	if failed := res.Failed(); len(failed) > 0 {
		names := make([]string, len(failed))
		for i, ch := range failed {
			names[i] = string(ch)
		}
		return res, fmt.Errorf("%w: %s", model.ErrDispatchFailed, strings.Join(names, ","))
	}
	return res, nil
}

func dedupe(channels []model.Channel) []model.Channel {
	seen := make(map[model.Channel]struct{}, len(channels))
	out := make([]model.Channel, 0, len(channels))
	for _, ch := range channels {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
