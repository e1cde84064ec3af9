package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/yndnr/rosso/internal/core/service"
	"github.com/yndnr/rosso/internal/telemetry/logger"
	"github.com/yndnr/rosso/pkg/cmap"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyKeyspace(&cfg.Keyspace),
		verifySecurity(&cfg.Security),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error

	if err := verifyAddr("server.redis.addr", cfg.Redis.Addr); err != nil {
		errs = append(errs, err)
	}
	if cfg.Redis.ReadTimeout < 0 || cfg.Redis.WriteTimeout < 0 || cfg.Redis.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.redis timeouts must not be negative"))
	}
	if cfg.Redis.RateLimit < 0 {
		errs = append(errs, errors.New("server.redis.rate_limit must not be negative"))
	}
	if cfg.Redis.MaxClients < 0 {
		errs = append(errs, errors.New("server.redis.max_clients must not be negative"))
	}

	if cfg.Admin.Enabled {
		if err := verifyAddr("server.admin.addr", cfg.Admin.Addr); err != nil {
			errs = append(errs, err)
		}
		if cfg.Admin.Addr == cfg.Redis.Addr {
			errs = append(errs, fmt.Errorf("server.admin.addr conflicts with server.redis.addr (%s)", cfg.Redis.Addr))
		}
	}

	return errors.Join(errs...)
}

func verifyAddr(field, addr string) error {
	if addr == "" {
		return fmt.Errorf("%s is required", field)
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%s: invalid port %q", field, port)
	}
	return nil
}

func verifyKeyspace(cfg *KeyspaceSection) error {
	if cfg.Shards <= 0 || !cmap.IsPowerOfTwo(cfg.Shards) {
		return fmt.Errorf("keyspace.shards must be a positive power of two, got %d", cfg.Shards)
	}
	if cfg.SweepInterval < 0 {
		return errors.New("keyspace.sweep_interval must not be negative")
	}
	return nil
}

func verifySecurity(cfg *SecuritySection) error {
	var errs []error
	if cfg.RequirePassHash != "" && !service.ValidHash(cfg.RequirePassHash) {
		errs = append(errs, errors.New("security.requirepass_hash is not a valid argon2id hash (use 'rosso-server hash-password')"))
	}
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" || cfg.TLS.KeyFile == "" {
			errs = append(errs, errors.New("security.tls.cert_file and security.tls.key_file are required when TLS is enabled"))
		}
	} else if cfg.TLS.CAFile != "" {
		errs = append(errs, errors.New("security.tls.ca_file is set but TLS is disabled"))
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text", "console", "":
		return nil
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
}
