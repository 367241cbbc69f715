// internal/transport/tcp/tcp.go
package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/tamzrod/iocp-gateway/internal/transport"
)

// Config is the upstream server address.
type Config struct {
	Host           string
	Port           int
	ConnectTimeout time.Duration
}

func (c Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Dialer opens one TCP connection per call.
func Dialer(cfg Config) transport.Dialer {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		if cfg.Host == "" {
			return nil, errors.New("tcp: invalid host")
		}
		if cfg.Port <= 0 || cfg.Port > 65535 {
			return nil, errors.New("tcp: invalid port")
		}

		d := net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}
		conn, err := d.DialContext(ctx, "tcp", cfg.Address())
		if err != nil {
			return nil, fmt.Errorf("tcp %s: dial: %w", cfg.Address(), err)
		}
		return conn, nil
	}
}
