package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/time/rate"

	"github.com/yndnr/rosso/internal/core/domain"
)

// Argon2id parameters for newly generated hashes.
const (
	argon2Time    = 2
	argon2Memory  = 16 * 1024
	argon2Threads = 2
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// HashPrefix starts every hash produced by HashPassword.
const HashPrefix = "$argon2id$"

// DefaultUser is the only user name AUTH accepts.
const DefaultUser = "default"

// AuthService handles connection authentication and rate limiting.
type AuthService struct {
	passwordHash string
	rateLimit    int
	rateLimiters *RateLimiterRegistry
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	// PasswordHash is the argon2id hash clients must match (empty = no auth).
	PasswordHash string

	// RateLimit is commands per second per client IP (0 = unlimited).
	RateLimit int
}

// NewAuthService creates a new AuthService.
func NewAuthService(config AuthServiceConfig) *AuthService {
	return &AuthService{
		passwordHash: config.PasswordHash,
		rateLimit:    config.RateLimit,
		rateLimiters: NewRateLimiterRegistry(),
	}
}

// Enabled reports whether clients must authenticate.
func (s *AuthService) Enabled() bool {
	return s != nil && s.passwordHash != ""
}

// Authenticate checks a username/password pair. An empty username means the default user.
func (s *AuthService) Authenticate(username, password string) error {
	if !s.Enabled() {
		return domain.ErrNoPasswordConfigured
	}
	if username != "" && username != DefaultUser {
		return domain.ErrWrongPass
	}
	if !verifyArgon2Hash(password, s.passwordHash) {
		return domain.ErrWrongPass
	}
	return nil
}

// CheckRateLimit consumes one token from the client's bucket.
func (s *AuthService) CheckRateLimit(clientIP string) error {
	if s == nil || s.rateLimit <= 0 {
		return nil
	}
	if !s.rateLimiters.GetOrCreate(clientIP, s.rateLimit).Allow() {
		return domain.ErrRateLimited
	}
	return nil
}

// ReleaseClient drops the limiter of a client with no remaining connections.
func (s *AuthService) ReleaseClient(clientIP string) {
	if s == nil {
		return
	}
	s.rateLimiters.Delete(clientIP)
}

// HashPassword returns an argon2id hash of password suitable for
// security.requirepass_hash.
// Format: $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		HashPrefix, argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// ValidHash reports whether hash is a well-formed argon2id hash.
func ValidHash(hash string) bool {
	_, err := parseArgon2Hash(hash)
	return err == nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parseArgon2Hash(hash string) (*argon2Params, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("expected 6 '$'-separated fields, got %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("unsupported version %q", parts[2])
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, fmt.Errorf("invalid parameters %q: %w", parts[3], err)
	}
	if p.memory == 0 || p.time == 0 || p.threads == 0 {
		return nil, fmt.Errorf("invalid parameters %q", parts[3])
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(p.key) == 0 {
		return nil, fmt.Errorf("empty key")
	}
	return p, nil
}

// verifyArgon2Hash verifies a secret against an Argon2id hash.
func verifyArgon2Hash(secret, hash string) bool {
	p, err := parseArgon2Hash(hash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(secret), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare(computed, p.key) == 1
}

// ============================================================================
// RateLimiterRegistry - Rate Limiter Management
// ============================================================================

// RateLimiterRegistry manages one rate limiter per client.
type RateLimiterRegistry struct {
	mu       sync.RWMutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiterRegistry creates a new RateLimiterRegistry.
func NewRateLimiterRegistry() *RateLimiterRegistry {
	return &RateLimiterRegistry{
		limiters: make(map[string]*rate.Limiter),
	}
}

// GetOrCreate retrieves an existing rate limiter or creates a new one
// allowing rateLimit events per second with an equal burst.
func (r *RateLimiterRegistry) GetOrCreate(clientID string, rateLimit int) *rate.Limiter {
	r.mu.RLock()
	limiter, exists := r.limiters[clientID]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := r.limiters[clientID]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	r.limiters[clientID] = limiter

	return limiter
}

// Delete removes the rate limiter for a client.
func (r *RateLimiterRegistry) Delete(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.limiters, clientID)
}

// Len returns the number of tracked clients.
func (r *RateLimiterRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.limiters)
}
