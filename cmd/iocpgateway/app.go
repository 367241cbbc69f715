// cmd/iocpgateway/app.go
package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/tamzrod/iocp-gateway/internal/config"
	"github.com/tamzrod/iocp-gateway/internal/gateway"
	"github.com/tamzrod/iocp-gateway/internal/logging"
)

const appName = "iocpgateway"

func newApp() *cli.App {
	var (
		logLevel string
		logJSON  bool
	)

	return &cli.App{
		Name:  appName,
		Usage: "bridge IOCP serial field devices to an upstream IOCP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "trace, debug, info, warn, error (overridden by " + logging.EnvLogLevel + ")",
				Destination: &logLevel,
			},
			&cli.BoolFlag{
				Name:        "log-json",
				Usage:       "emit JSON log lines instead of console output",
				Destination: &logJSON,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "start the gateway",
				ArgsUsage: "<config.yaml>",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					logger := newLogger(c, cfg, logLevel, logJSON)

					g, err := gateway.Build(cfg, logger)
					if err != nil {
						return err
					}
					return g.Run(c.Context)
				},
			},
			{
				Name:      "check",
				Usage:     "validate a config file and exit",
				ArgsUsage: "<config.yaml>",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					logger := newLogger(c, cfg, logLevel, logJSON)

					if _, err := gateway.Build(cfg, logger); err != nil {
						return err
					}
					_, err = fmt.Fprintf(
						c.App.Writer,
						"config ok: %d serial endpoint(s), %d modbus device(s), upstream %s:%d\n",
						len(cfg.Gateway.Endpoints),
						len(cfg.Gateway.ModbusDevices),
						cfg.Gateway.Upstream.Host,
						cfg.Gateway.Upstream.Port,
					)
					return err
				},
			},
		},
	}
}

// loadConfig loads, validates and normalizes the config named by the first argument.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.Args().First()
	if path == "" {
		return nil, errors.New("usage: " + appName + " " + c.Command.Name + " <config.yaml>")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

// newLogger prefers the command line over the config file.
func newLogger(c *cli.Context, cfg *config.Config, level string, json bool) zerolog.Logger {
	if level == "" {
		level = cfg.Gateway.Log.Level
	}
	return logging.New(appName, logging.Options{
		Level: level,
		JSON:  json || cfg.Gateway.Log.JSON,
		Out:   c.App.ErrWriter,
	})
}
