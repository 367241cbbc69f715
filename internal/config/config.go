// internal/config/config.go
package config

type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
}

type GatewayConfig struct {
	Upstream      UpstreamConfig       `yaml:"upstream"`
	Endpoints     []EndpointConfig     `yaml:"endpoints"`
	ModbusDevices []ModbusDeviceConfig `yaml:"modbus_devices"`
	Backoff       BackoffConfig        `yaml:"backoff"`
	Metrics       MetricsConfig        `yaml:"metrics"`
	Log           LogConfig            `yaml:"log"`
}

// ---- UPSTREAM ----

type UpstreamConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	ConnectTimeoutMs int    `yaml:"connect_timeout_ms"`
	WriteTimeoutMs   int    `yaml:"write_timeout_ms"`
}

// ---- SERIAL ENDPOINT ----

// EndpointConfig is one IOCP serial device. Label is its identity.
type EndpointConfig struct {
	Label  string     `yaml:"label"`
	Port   string     `yaml:"port"` // device path, e.g. /dev/ttyUSB0
	Serial LineConfig `yaml:"serial"`
}

// LineConfig is passed through to the serial driver untouched.
type LineConfig struct {
	BaudRate      int    `yaml:"baud_rate"`
	DataBits      int    `yaml:"data_bits"`
	StopBits      int    `yaml:"stop_bits"`
	Parity        string `yaml:"parity"` // N, E, O
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- MODBUS DEVICE ----

type ModbusDeviceConfig struct {
	Label     string           `yaml:"label"`
	Transport string           `yaml:"transport"` // rtu | tcp
	Address   string           `yaml:"address"`   // device path (rtu) or host:port (tcp)
	SlaveID   uint8            `yaml:"slave_id"`
	TimeoutMs int              `yaml:"timeout_ms"`
	Serial    LineConfig       `yaml:"serial"` // rtu only
	Poll      PollConfig       `yaml:"poll"`
	Positions []RegisterConfig `yaml:"positions"`
}

// RegisterConfig maps one position name onto one holding register.
type RegisterConfig struct {
	Name     int    `yaml:"name"`
	Register uint16 `yaml:"register"`
	ReadOnly bool   `yaml:"read_only"`
}

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- AMBIENT ----

type BackoffConfig struct {
	InitialMs  int     `yaml:"initial_ms"`
	MaxMs      int     `yaml:"max_ms"`
	Multiplier float64 `yaml:"multiplier"`
	NoJitter   bool    `yaml:"no_jitter"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // empty disables the listener
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}
