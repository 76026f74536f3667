// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	InquiriesOpened prometheus.Counter
	InquiriesClosed prometheus.Counter
	InquiryFailures *prometheus.CounterVec // label: operation
	EventsIgnored   *prometheus.CounterVec // label: reason

	// Gauges
	OpenInquiries prometheus.Gauge
	GatewayUp     prometheus.Gauge // 1=connected,0=not

	// Histograms (seconds)
	GatewayCommandDuration *prometheus.HistogramVec // labels: command, outcome
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		InquiriesOpened = promauto.NewCounter(prometheus.CounterOpts{Name: "inquiry_channels_opened_total", Help: "Number of inquiry channels created"})
		InquiriesClosed = promauto.NewCounter(prometheus.CounterOpts{Name: "inquiry_channels_closed_total", Help: "Number of inquiry channels deleted"})
		InquiryFailures = promauto.NewCounterVec(prometheus.CounterOpts{Name: "inquiry_failures_total", Help: "Failed gateway operations while handling reactions"}, []string{"operation"})
		EventsIgnored = promauto.NewCounterVec(prometheus.CounterOpts{Name: "inquiry_events_ignored_total", Help: "Reaction events that did not change state"}, []string{"reason"})
		OpenInquiries = promauto.NewGauge(prometheus.GaugeOpts{Name: "inquiry_open_channels", Help: "Current number of tracked inquiry channels"})
		GatewayUp = promauto.NewGauge(prometheus.GaugeOpts{Name: "inquiry_gateway_up", Help: "Gateway connected=1 disconnected=0"})
		GatewayCommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inquiry_gateway_command_duration_seconds",
			Help:    "Latency of chat platform API calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"command", "outcome"})
	})
}

// IncOpened counts a created inquiry channel.
func IncOpened() {
	if InquiriesOpened != nil {
		InquiriesOpened.Inc()
	}
}

// IncClosed counts a deleted inquiry channel.
func IncClosed() {
	if InquiriesClosed != nil {
		InquiriesClosed.Inc()
	}
}

// IncFailure counts a failed operation (create_channel, delete_channel, ...).
func IncFailure(operation string) {
	if InquiryFailures != nil {
		InquiryFailures.WithLabelValues(operation).Inc()
	}
}

// IncIgnored counts an event that was filtered or deduplicated.
func IncIgnored(reason string) {
	if EventsIgnored != nil {
		EventsIgnored.WithLabelValues(reason).Inc()
	}
}

// SetOpenInquiries records the registry size.
func SetOpenInquiries(n int) {
	if OpenInquiries != nil {
		OpenInquiries.Set(float64(n))
	}
}

// SetGatewayUp sets gauge to 1 if connected else 0.
func SetGatewayUp(up bool) {
	if GatewayUp == nil {
		return
	}
	if up {
		GatewayUp.Set(1)
	} else {
		GatewayUp.Set(0)
	}
}

// ObserveGatewayCommand records the latency of one platform call.
func ObserveGatewayCommand(command string, d time.Duration, err error) {
	if GatewayCommandDuration == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	GatewayCommandDuration.WithLabelValues(command, outcome).Observe(d.Seconds())
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	v := ctx.Value(corrKey)
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
