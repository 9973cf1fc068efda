package tripauth

import (
	"log/slog"
	"time"

	"github.com/tripmate/tripauth/cache"
	"github.com/tripmate/tripauth/internal"
	"github.com/tripmate/tripauth/jwt"
)

// Engine defines a public type used by tripauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config  Config
	cache   cache.Cache
	users   UserStore
	mailer  Mailer
	tokens  *jwt.Manager
	audit   *auditDispatcher
	metrics *Metrics
	logger  *slog.Logger
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// TokenManager exposes the bearer-token validator for the HTTP middleware.
func (e *Engine) TokenManager() *jwt.Manager {
	if e == nil {
		return nil
	}
	return e.tokens
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) ready() bool {
	return e != nil && e.cache != nil && e.users != nil && e.mailer != nil && e.tokens != nil
}

// mintRefreshToken builds a fresh refresh-token record from the configured
// validity window.
func (e *Engine) mintRefreshToken(now time.Time) (RefreshToken, error) {
	value, err := internal.NewRefreshTokenValue()
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Token:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(e.config.Refresh.TTL),
	}, nil
}

// issueTokens signs a bearer token for the account and pairs it with the
// given refresh token.
func (e *Engine) issueTokens(account *Account, refresh RefreshToken) (*TokenResponse, error) {
	access, expiresAt, err := e.tokens.Issue(account.ID, account.UserName, account.Email, account.Roles)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:           access,
		TokenType:             jwt.TokenType,
		ExpiresAt:             expiresAt,
		RefreshToken:          refresh.Token,
		RefreshTokenExpiresAt: refresh.ExpiresAt,
	}, nil
}
