// internal/metrics/metrics.go
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const namespace = "iocp_gateway"

var (
	registerOnce sync.Once

	messagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Decoded messages handed to the distributor.",
		},
		[]string{"origin", "kind"},
	)
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deliveries_total",
			Help:      "Delivery attempts per target endpoint.",
		},
		[]string{"target", "result"},
	)
	dropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_total",
			Help:      "Messages dropped before routing.",
		},
		[]string{"reason"},
	)
	linkHealth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_health",
			Help:      "Link health code per endpoint (0 unknown, 1 ok, 2 error, 4 disabled).",
		},
		[]string{"endpoint"},
	)
	secondsInError = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "link_seconds_in_error",
			Help:      "Seconds the endpoint link has been in error.",
		},
		[]string{"endpoint"},
	)
)

// Register adds the gateway collectors to the default registry once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(messagesReceived, deliveries, dropped, linkHealth, secondsInError)
	})
}

func RecordMessage(origin, kind string) {
	Register()
	messagesReceived.WithLabelValues(origin, kind).Inc()
}

// RecordDelivery counts one delivery attempt; a nil err is a success.
func RecordDelivery(target string, err error) {
	Register()
	result := "ok"
	if err != nil {
		result = "failed"
	}
	deliveries.WithLabelValues(target, result).Inc()
}

func RecordDrop(reason string) {
	Register()
	dropped.WithLabelValues(reason).Inc()
}

func SetLinkHealth(endpoint string, health uint16, seconds uint16) {
	Register()
	linkHealth.WithLabelValues(endpoint).Set(float64(health))
	secondsInError.WithLabelValues(endpoint).Set(float64(seconds))
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger zerolog.Logger) error {
	Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
