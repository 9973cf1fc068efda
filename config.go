package tripauth

import (
	"errors"
	"time"
)

// JWTConfig defines a public type used by tripauth APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	// Secret is the HS256 signing key. Required.
	Secret []byte
	// AccessTTL is the bearer-token lifetime.
	AccessTTL time.Duration
	Issuer    string
	Audience  string
	// Leeway tolerates small clock skew during validation.
	Leeway time.Duration
}

// RegistrationConfig defines a public type used by tripauth APIs.
//
// RegistrationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegistrationConfig struct {
	// PendingTTL is how long a staged registration survives in the cache.
	PendingTTL time.Duration
	// ResendCooldown is the minimum wait between registration attempts for
	// the same email.
	ResendCooldown time.Duration
}

// RefreshConfig defines a public type used by tripauth APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// TTL is the refresh-token validity window from mint time.
	TTL time.Duration
}

// CacheConfig defines a public type used by tripauth APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	// CallTimeout bounds each remote cache round trip.
	CallTimeout time.Duration
}

// AuditConfig defines a public type used by tripauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the request path when
	// the dispatcher buffer is full.
	DropIfFull bool
}

// MetricsConfig defines a public type used by tripauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config defines a public type used by tripauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT          JWTConfig
	Registration RegistrationConfig
	Refresh      RefreshConfig
	Cache        CacheConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL: time.Hour,
			Leeway:    30 * time.Second,
		},
		Registration: RegistrationConfig{
			PendingTTL:     24 * time.Hour,
			ResendCooldown: 5 * time.Minute,
		},
		Refresh: RefreshConfig{
			TTL: 7 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			CallTimeout: 3 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if len(c.JWT.Secret) == 0 {
		return errors.New("JWT.Secret is required")
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if c.Registration.PendingTTL <= 0 {
		return errors.New("Registration.PendingTTL must be positive")
	}
	if c.Registration.ResendCooldown < 0 {
		return errors.New("Registration.ResendCooldown must not be negative")
	}
	if c.Registration.ResendCooldown > c.Registration.PendingTTL {
		return errors.New("Registration.ResendCooldown must not exceed PendingTTL")
	}
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh.TTL must be positive")
	}
	if c.Cache.CallTimeout < 0 {
		return errors.New("Cache.CallTimeout must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.Secret = cloneBytes(cfg.JWT.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
