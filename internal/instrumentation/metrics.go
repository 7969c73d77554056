package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrKind   = "kind"
	attrStatus = "status"
	attrAction = "action"
	attrOp     = "operation"
)

// Status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Metrics records the assistant's observability metrics. The zero value
// is a no-op recorder.
type Metrics struct {
	pollCyclesTotal    metric.Int64Counter
	pollCycleDuration  metric.Float64Histogram
	notificationsTotal metric.Int64Counter
	oauthTotal         metric.Int64Counter
	intentParsesTotal  metric.Int64Counter
	messagesTotal      metric.Int64Counter
}

// NewMetrics creates a Metrics instance on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.pollCyclesTotal, err = meter.Int64Counter(
		"watcher_poll_cycles_total",
		metric.WithDescription("Total number of change watcher poll cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher_poll_cycles_total counter: %w", err)
	}

	m.pollCycleDuration, err = meter.Float64Histogram(
		"watcher_poll_cycle_duration_seconds",
		metric.WithDescription("Change watcher poll cycle duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher_poll_cycle_duration_seconds histogram: %w", err)
	}

	m.notificationsTotal, err = meter.Int64Counter(
		"watcher_notifications_total",
		metric.WithDescription("Total number of change notifications emitted"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher_notifications_total counter: %w", err)
	}

	m.oauthTotal, err = meter.Int64Counter(
		"oauth_operations_total",
		metric.WithDescription("Total number of OAuth exchanges and refreshes"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_operations_total counter: %w", err)
	}

	m.intentParsesTotal, err = meter.Int64Counter(
		"intent_parses_total",
		metric.WithDescription("Total number of intent extraction calls"),
		metric.WithUnit("{parse}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create intent_parses_total counter: %w", err)
	}

	m.messagesTotal, err = meter.Int64Counter(
		"messages_handled_total",
		metric.WithDescription("Total number of inbound messages handled"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages_handled_total counter: %w", err)
	}

	return m, nil
}

// RecordPollCycle records one completed watcher cycle.
func (m *Metrics) RecordPollCycle(ctx context.Context, status string, duration time.Duration) {
	if m.pollCyclesTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attrString(attrStatus, status))
	m.pollCyclesTotal.Add(ctx, 1, attrs)
	m.pollCycleDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordNotification records an emitted notification by kind
// ("updated" or "deleted").
func (m *Metrics) RecordNotification(ctx context.Context, kind string) {
	if m.notificationsTotal == nil {
		return
	}
	m.notificationsTotal.Add(ctx, 1, metric.WithAttributes(attrString(attrKind, kind)))
}

// RecordOAuth records an OAuth operation ("exchange" or "refresh").
func (m *Metrics) RecordOAuth(ctx context.Context, operation, status string) {
	if m.oauthTotal == nil {
		return
	}
	m.oauthTotal.Add(ctx, 1, metric.WithAttributes(
		attrString(attrOp, operation),
		attrString(attrStatus, status),
	))
}

// RecordIntentParse records an intent extraction by resolved action.
func (m *Metrics) RecordIntentParse(ctx context.Context, action, status string) {
	if m.intentParsesTotal == nil {
		return
	}
	m.intentParsesTotal.Add(ctx, 1, metric.WithAttributes(
		attrString(attrAction, action),
		attrString(attrStatus, status),
	))
}

// RecordMessage records one handled inbound message.
func (m *Metrics) RecordMessage(ctx context.Context, status string) {
	if m.messagesTotal == nil {
		return
	}
	m.messagesTotal.Add(ctx, 1, metric.WithAttributes(attrString(attrStatus, status)))
}
