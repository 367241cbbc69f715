// internal/gateway/gateway.go
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/iocp-gateway/internal/config"
	"github.com/tamzrod/iocp-gateway/internal/distributor"
	"github.com/tamzrod/iocp-gateway/internal/endpoint"
	"github.com/tamzrod/iocp-gateway/internal/metrics"
	"github.com/tamzrod/iocp-gateway/internal/modbusdev"
	"github.com/tamzrod/iocp-gateway/internal/status"
	"github.com/tamzrod/iocp-gateway/internal/transport"
	"github.com/tamzrod/iocp-gateway/internal/transport/serialport"
	"github.com/tamzrod/iocp-gateway/internal/transport/tcp"
)

// CentralLabel names the upstream link in logs, health and metrics.
const CentralLabel = "central"

// Option adjusts how Build wires the gateway.
type Option func(*options)

type options struct {
	serialDialer   func(config.EndpointConfig) transport.Dialer
	upstreamDialer func(config.UpstreamConfig) transport.Dialer
}

// WithSerialDialer replaces the serial port dialer (tests, virtual ports).
func WithSerialDialer(fn func(config.EndpointConfig) transport.Dialer) Option {
	return func(o *options) { o.serialDialer = fn }
}

// WithUpstreamDialer replaces the upstream TCP dialer.
func WithUpstreamDialer(fn func(config.UpstreamConfig) transport.Dialer) Option {
	return func(o *options) { o.upstreamDialer = fn }
}

type runner interface {
	Run(ctx context.Context) error
}

// Gateway owns every endpoint, link and tracker of one process.
type Gateway struct {
	log     zerolog.Logger
	dist    *distributor.Distributor
	metrics string

	links    []runner
	modbus   []*modbusdev.Device
	trackers []*status.Tracker
}

// Build wires the gateway from validated, normalized config.
// Nothing is opened here: links connect in Run and retry on their own,
// so a missing device degrades the gateway instead of stopping it.
func Build(cfg *config.Config, logger zerolog.Logger, opts ...Option) (*Gateway, error) {
	if cfg == nil {
		return nil, errors.New("gateway: nil config")
	}

	o := options{
		serialDialer:   serialDialer,
		upstreamDialer: upstreamDialer,
	}
	for _, fn := range opts {
		fn(&o)
	}

	g := &Gateway{
		log:     logger,
		dist:    distributor.New(logger),
		metrics: cfg.Gateway.Metrics.Listen,
	}

	gc := cfg.Gateway
	backoff := backoffFrom(gc.Backoff)
	writeTimeout := time.Duration(gc.Upstream.WriteTimeoutMs) * time.Millisecond

	// ------------------------------------------------------------
	// UPSTREAM
	// ------------------------------------------------------------

	upTracker := g.tracker(CentralLabel)
	upLink, err := transport.New(transport.Config{
		Name:         CentralLabel,
		Dial:         o.upstreamDialer(gc.Upstream),
		WriteTimeout: writeTimeout,
		Backoff:      backoff,
	}, logger, upTracker)
	if err != nil {
		return nil, fmt.Errorf("gateway: upstream: %w", err)
	}

	central := endpoint.NewCentral(upLink, g.dist, logger)
	upLink.OnConnect(central.Connected)
	upLink.OnData(central.Receive)

	g.dist.RegisterUpstream(central)
	g.links = append(g.links, upLink)

	// ------------------------------------------------------------
	// SERIAL ENDPOINTS
	// ------------------------------------------------------------

	for _, e := range gc.Endpoints {
		link, err := transport.New(transport.Config{
			Name:         e.Label,
			Dial:         o.serialDialer(e),
			WriteTimeout: writeTimeout,
			Backoff:      backoff,
		}, logger, g.tracker(e.Label))
		if err != nil {
			return nil, fmt.Errorf("gateway: endpoint %q: %w", e.Label, err)
		}

		dev := endpoint.NewSerial(e.Label, link, g.dist, logger)
		link.OnConnect(dev.Connected)
		link.OnData(dev.Receive)

		g.dist.RegisterDevice(dev)
		g.links = append(g.links, link)
	}

	// ------------------------------------------------------------
	// MODBUS DEVICES
	// ------------------------------------------------------------

	for _, m := range gc.ModbusDevices {
		dev, err := modbusdev.Build(m, g.dist, logger, g.tracker(m.Label))
		if err != nil {
			return nil, fmt.Errorf("gateway: modbus device %q: %w", m.Label, err)
		}
		g.dist.RegisterDevice(dev)
		g.modbus = append(g.modbus, dev)
	}

	return g, nil
}

// Distributor exposes the router for inspection.
func (g *Gateway) Distributor() *distributor.Distributor { return g.dist }

// Run drives every link, device poller and health ticker until ctx is done.
func (g *Gateway) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	g.log.Info().
		Strs("devices", g.dist.Devices()).
		Msg("gateway starting")

	for _, l := range g.links {
		l := l
		eg.Go(func() error { return ignoreCanceled(l.Run(ctx)) })
	}

	for _, d := range g.modbus {
		d := d
		eg.Go(func() error {
			d.Run(ctx)
			return nil
		})
	}

	for _, t := range g.trackers {
		t := t
		eg.Go(func() error {
			t.Run(ctx)
			return nil
		})
	}

	if g.metrics != "" {
		eg.Go(func() error {
			// a metrics listener that cannot bind must not take the gateway down
			if err := metrics.Serve(ctx, g.metrics, g.log); err != nil {
				g.log.Error().Err(err).Str("addr", g.metrics).Msg("metrics listener failed")
			}
			return nil
		})
	}

	err := eg.Wait()

	for _, label := range g.dist.Devices() {
		g.dist.Unregister(label)
	}
	for _, t := range g.trackers {
		t.Disable()
	}
	g.log.Info().Msg("gateway stopped")
	return err
}

func (g *Gateway) tracker(label string) *status.Tracker {
	t := status.NewTracker(label, g.publishHealth)
	g.trackers = append(g.trackers, t)
	return t
}

func (g *Gateway) publishHealth(endpoint string, s status.Snapshot) {
	metrics.SetLinkHealth(endpoint, s.Health, s.SecondsInError)

	g.log.Debug().
		Str("endpoint", endpoint).
		Str("health", status.HealthName(s.Health)).
		Uint16("last_error", s.LastErrorCode).
		Uint16("seconds_in_error", s.SecondsInError).
		Msg("link health")
}

func serialDialer(e config.EndpointConfig) transport.Dialer {
	return serialport.Dialer(serialport.Config{
		Device:      e.Port,
		BaudRate:    e.Serial.BaudRate,
		DataBits:    e.Serial.DataBits,
		StopBits:    e.Serial.StopBits,
		Parity:      e.Serial.Parity,
		ReadTimeout: time.Duration(e.Serial.ReadTimeoutMs) * time.Millisecond,
	})
}

func upstreamDialer(u config.UpstreamConfig) transport.Dialer {
	return tcp.Dialer(tcp.Config{
		Host:           u.Host,
		Port:           u.Port,
		ConnectTimeout: time.Duration(u.ConnectTimeoutMs) * time.Millisecond,
	})
}

func backoffFrom(b config.BackoffConfig) transport.BackoffConfig {
	if b.InitialMs <= 0 {
		return transport.DefaultBackoff()
	}
	return transport.BackoffConfig{
		InitialDelay: time.Duration(b.InitialMs) * time.Millisecond,
		Multiplier:   b.Multiplier,
		MaxDelay:     time.Duration(b.MaxMs) * time.Millisecond,
		Jitter:       !b.NoJitter,
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
