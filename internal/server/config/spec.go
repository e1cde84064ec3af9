package config

import "time"

// ServerConfig is the root configuration for rosso-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Keyspace KeyspaceSection `koanf:"keyspace"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis RedisConfig `koanf:"redis"`
	Admin AdminConfig `koanf:"admin"`
}

// RedisConfig configures the Redis protocol server.
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`

	// RateLimit is commands per second per client IP (0 = unlimited).
	RateLimit int `koanf:"rate_limit"`

	// MaxClients caps concurrent connections (0 = unlimited).
	MaxClients int `koanf:"max_clients"`
}

// AdminConfig configures the admin HTTP server (health, info, metrics).
type AdminConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// KeyspaceSection configures the in-memory keyspace.
type KeyspaceSection struct {
	// Shards must be a power of two.
	Shards int `koanf:"shards"`

	// SweepInterval is the period of the background expired-key sweep (0 = lazy expiry only).
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// RequirePassHash is the argon2id hash of the AUTH password (empty = no auth).
	RequirePassHash string `koanf:"requirepass_hash"`

	TLS TLSConfig `koanf:"tls"`
}

// TLSConfig enables TLS on the Redis protocol listener.
type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`

	// CAFile holds the CAs trusted for client certificates. Setting it
	// requires clients to present a certificate.
	CAFile string `koanf:"ca_file"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
