// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultConnectTimeoutMs = 5000
	DefaultWriteTimeoutMs   = 1000
	DefaultBaudRate         = 9600
	DefaultDataBits         = 8
	DefaultStopBits         = 1
	DefaultParity           = "N"
	DefaultReadTimeoutMs    = 500
	DefaultModbusTimeoutMs  = 1000
	DefaultPollIntervalMs   = 1000
	DefaultBackoffInitialMs = 250
	DefaultBackoffMaxMs     = 5000
	DefaultBackoffFactor    = 2.0
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	g := &cfg.Gateway

	if g.Upstream.ConnectTimeoutMs == 0 {
		g.Upstream.ConnectTimeoutMs = DefaultConnectTimeoutMs
	}
	if g.Upstream.WriteTimeoutMs == 0 {
		g.Upstream.WriteTimeoutMs = DefaultWriteTimeoutMs
	}

	for i := range g.Endpoints {
		normalizeLine(&g.Endpoints[i].Serial)
	}

	for i := range g.ModbusDevices {
		m := &g.ModbusDevices[i]
		if m.Transport == "rtu" {
			normalizeLine(&m.Serial)
		}
		if m.TimeoutMs == 0 {
			m.TimeoutMs = DefaultModbusTimeoutMs
		}
		if m.Poll.IntervalMs == 0 {
			m.Poll.IntervalMs = DefaultPollIntervalMs
		}
		if m.SlaveID == 0 {
			m.SlaveID = 1
		}
	}

	if g.Backoff.InitialMs == 0 {
		g.Backoff.InitialMs = DefaultBackoffInitialMs
	}
	if g.Backoff.MaxMs == 0 {
		g.Backoff.MaxMs = DefaultBackoffMaxMs
	}
	if g.Backoff.Multiplier == 0 {
		g.Backoff.Multiplier = DefaultBackoffFactor
	}
}

func normalizeLine(l *LineConfig) {
	if l.BaudRate == 0 {
		l.BaudRate = DefaultBaudRate
	}
	if l.DataBits == 0 {
		l.DataBits = DefaultDataBits
	}
	if l.StopBits == 0 {
		l.StopBits = DefaultStopBits
	}
	if l.Parity == "" {
		l.Parity = DefaultParity
	}
	if l.ReadTimeoutMs == 0 {
		l.ReadTimeoutMs = DefaultReadTimeoutMs
	}
}
