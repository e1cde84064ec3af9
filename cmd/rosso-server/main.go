package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/rosso/internal/core/command"
	"github.com/yndnr/rosso/internal/core/service"
	"github.com/yndnr/rosso/internal/infra/buildinfo"
	"github.com/yndnr/rosso/internal/infra/confloader"
	"github.com/yndnr/rosso/internal/infra/shutdown"
	"github.com/yndnr/rosso/internal/infra/tlsroots"
	"github.com/yndnr/rosso/internal/server/config"
	"github.com/yndnr/rosso/internal/server/httpserver"
	"github.com/yndnr/rosso/internal/server/redisserver"
	"github.com/yndnr/rosso/internal/storage/memory"
	"github.com/yndnr/rosso/internal/telemetry/logger"
	"github.com/yndnr/rosso/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "rosso-server",
		Usage:   "in-memory key-value server speaking the Redis protocol",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"ROSSO_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Redis protocol listen address (overrides server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "admin-addr",
				Usage: "admin HTTP listen address (overrides server.admin.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info, warn, error (overrides log.level)",
			},
		},
		Commands: []*cli.Command{
			hashPasswordCommand(),
		},
		Action: serve,
	}
}

// flagOverrides maps explicitly set flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := map[string]any{}
	for flag, key := range map[string]string{
		"addr":       "server.redis.addr",
		"admin-addr": "server.admin.addr",
		"log-level":  "log.level",
	} {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

// loadConfig loads configuration from defaults, file, environment and overrides.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func serve(c *cli.Context) error {
	configFile := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := loadConfig(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	log.Info("starting rosso-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Get().Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	// Keyspace and background sweep
	ks := memory.New(memory.WithShards(cfg.Keyspace.Shards))
	sweeper := memory.NewSweeper(ks, cfg.Keyspace.SweepInterval, log)
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sweeper.Run(ctx)
	}()

	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewKeyspaceCollector(ks))

	auth := service.NewAuthService(service.AuthServiceConfig{
		PasswordHash: cfg.Security.RequirePassHash,
		RateLimit:    cfg.Server.Redis.RateLimit,
	})
	if !auth.Enabled() {
		log.Warn("no password configured, clients are not authenticated")
	}

	redisCfg := &redisserver.Config{
		Addr:         cfg.Server.Redis.Addr,
		ReadTimeout:  cfg.Server.Redis.ReadTimeout,
		WriteTimeout: cfg.Server.Redis.WriteTimeout,
		IdleTimeout:  cfg.Server.Redis.IdleTimeout,
		MaxClients:   cfg.Server.Redis.MaxClients,
	}
	var certWatcher *tlsroots.Watcher
	if cfg.Security.TLS.Enabled {
		certWatcher, redisCfg.TLS, err = serverTLS(cfg.Security.TLS, log)
		if err != nil {
			return fmt.Errorf("init tls: %w", err)
		}
		certWatcher.StartAsync()
	}
	redisSrv := redisserver.New(redisCfg, command.NewDispatcher(ks), auth, metrics, log)
	if err := redisSrv.Start(ctx); err != nil {
		if certWatcher != nil {
			certWatcher.Stop()
		}
		return fmt.Errorf("start redis server: %w", err)
	}

	shutdownHandler := shutdown.NewHandler(shutdownTimeout, log)

	// Hooks run in reverse registration order.
	shutdownHandler.OnShutdown("sweeper", func(ctx context.Context) error {
		cancel()
		select {
		case <-sweepDone:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	shutdownHandler.OnShutdown("redis server", redisSrv.Shutdown)
	if certWatcher != nil {
		shutdownHandler.OnShutdown("certificate watcher", func(context.Context) error {
			certWatcher.Stop()
			return nil
		})
	}

	if cfg.Server.Admin.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Stats:   ks,
			Conns:   redisSrv,
			Metrics: metrics,
			Logger:  log,
		})
		adminSrv := httpserver.New(cfg.Server.Admin.Addr, router, log)
		if err := adminSrv.Start(ctx); err != nil {
			_ = redisSrv.Shutdown(context.Background())
			return fmt.Errorf("start admin server: %w", err)
		}
		shutdownHandler.OnShutdown("admin server", adminSrv.Shutdown)
	}

	if configFile != "" {
		watcher, err := watchConfig(configFile, overrides, log)
		if err != nil {
			log.Warn("config watch disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchConfig reloads the configuration file on change. Only the log level
// is applied at runtime; other settings take effect on restart.
func watchConfig(path string, overrides map[string]any, log *slog.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		cfg, err := loadConfig(path, overrides)
		if err != nil {
			log.Error("config reload failed, keeping current settings", "error", err)
			return
		}
		previous := logger.GetLevel()
		if err := logger.SetLevel(cfg.Log.Level); err != nil {
			log.Error("config reload failed", "error", err)
			return
		}
		log.Info("config reloaded", "log_level", cfg.Log.Level, "previous_log_level", previous)
	})
	watcher.StartAsync()
	return watcher, nil
}

// serverTLS loads the listener key pair and, when configured, the client CAs.
func serverTLS(cfg config.TLSConfig, log *slog.Logger) (*tlsroots.Watcher, *tls.Config, error) {
	w, err := tlsroots.NewWatcher(cfg.CertFile, cfg.KeyFile, tlsroots.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	var clientCAs *tlsroots.Pool
	if cfg.CAFile != "" {
		if clientCAs, err = tlsroots.LoadPool(cfg.CAFile); err != nil {
			return nil, nil, err
		}
	}
	return w, tlsroots.ServerConfig(w, clientCAs), nil
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "print the argon2id hash for security.requirepass_hash",
		ArgsUsage: "[password]",
		Description: "Reads the password from the first argument, or from the first " +
			"line of standard input when no argument is given.",
		Action: func(c *cli.Context) error {
			password := c.Args().First()
			if password == "" {
				line, err := readPassword(c.App.Reader)
				if err != nil {
					return err
				}
				password = line
			}
			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}

func readPassword(r io.Reader) (string, error) {
	if r == nil {
		r = os.Stdin
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
