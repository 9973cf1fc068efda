package tripauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tripmate/tripauth/internal"
)

const pendingKeyPrefix = "pendingUser:"

// pendingKey namespaces the staging entry for one email. The email is used
// as submitted; the API layer owns normalization.
func pendingKey(email string) string {
	return pendingKeyPrefix + email
}

// pendingRegistration is the cache-only staged account. The raw password is
// held until promotion and hashed through the store's creation path.
type pendingRegistration struct {
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Country   string    `json:"country"`
	Password  string    `json:"password"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// creationTime returns when the record was staged. Records written before
// CreatedAt existed derive it from the expiry and the TTL in effect.
func (p pendingRegistration) creationTime(ttl time.Duration) time.Time {
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt
	}
	return p.ExpiresAt.Add(-ttl)
}

// Register stages a new account behind an email-verification code. It
// returns the email the code was sent to. Nothing is written to the
// [UserStore] until [Engine.VerifyEmail] succeeds, and nothing is cached if
// the verification email cannot be delivered.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		e.metricInc(MetricRegisterRequest)
		return "", ErrRegistrationInvalid
	}
	if req.Password != req.ConfirmPassword {
		e.metricInc(MetricRegisterRequest)
		return "", ErrRegistrationInvalid
	}
	e.metricInc(MetricRegisterRequest)

	if _, err := e.users.FindByEmail(ctx, req.Email); err == nil {
		e.metricInc(MetricRegisterConflict)
		e.emitAudit(ctx, auditEventRegisterRequest, false, "", req.Email, ErrEmailTaken, nil)
		return "", ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("lookup by email: %w", err)
	}
	if _, err := e.users.FindByUsername(ctx, req.Username); err == nil {
		e.metricInc(MetricRegisterConflict)
		e.emitAudit(ctx, auditEventRegisterRequest, false, "", req.Email, ErrUsernameTaken, nil)
		return "", ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return "", fmt.Errorf("lookup by username: %w", err)
	}

	now := time.Now()
	ttl := e.config.Registration.PendingTTL
	key := pendingKey(req.Email)

	var stale pendingRegistration
	found, err := e.cache.Get(ctx, key, &stale)
	if err != nil {
		return "", fmt.Errorf("pending lookup: %w", err)
	}
	if found {
		if now.Sub(stale.creationTime(ttl)) < e.config.Registration.ResendCooldown {
			e.metricInc(MetricRegisterRateLimited)
			e.emitAudit(ctx, auditEventRegisterRateLimited, false, "", req.Email, ErrRegistrationCooldown, nil)
			return "", ErrRegistrationCooldown
		}
		if err := e.cache.Remove(ctx, key); err != nil {
			return "", fmt.Errorf("discard stale pending record: %w", err)
		}
	}

	code, err := internal.NewVerificationCode()
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}

	pending := pendingRegistration{
		Username:  req.Username,
		Email:     req.Email,
		Phone:     req.Phone,
		Country:   req.Country,
		Password:  req.Password,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	// Mail first: a staged record whose code was never delivered is
	// unverifiable and would only burn the cool-down window.
	if err := e.mailer.SendVerificationCode(ctx, req.Email, code); err != nil {
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventRegisterRequest, false, "", req.Email, ErrMailDelivery, nil)
		return "", fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	stored, err := e.cache.SetNX(ctx, key, pending, ttl)
	if err != nil {
		return "", fmt.Errorf("store pending record: %w", err)
	}
	if !stored {
		// A racing request for the same email staged first.
		e.metricInc(MetricRegisterRateLimited)
		e.emitAudit(ctx, auditEventRegisterRateLimited, false, "", req.Email, ErrRegistrationCooldown, nil)
		return "", ErrRegistrationCooldown
	}

	e.emitAudit(ctx, auditEventRegisterRequest, true, "", req.Email, nil, nil)

	return req.Email, nil
}

// VerifyEmail checks the staged code for the email and, on match, promotes
// the pending registration into a real account with the email confirmed and
// the account active. The new account is logged in immediately: the returned
// pair carries a bearer token and a freshly minted refresh token.
//
// A wrong code leaves the staged record intact so the user can retry within
// the TTL window.
func (e *Engine) VerifyEmail(ctx context.Context, email, code string) (*TokenResponse, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	key := pendingKey(email)

	var pending pendingRegistration
	found, err := e.cache.Get(ctx, key, &pending)
	if err != nil {
		return nil, fmt.Errorf("pending lookup: %w", err)
	}
	if !found {
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyConfirm, false, "", email, ErrVerificationExpired, nil)
		return nil, ErrVerificationExpired
	}

	if code == "" || code != pending.Code {
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyConfirm, false, "", email, ErrVerificationCode, nil)
		return nil, ErrVerificationCode
	}

	now := time.Now()
	refresh, err := e.mintRefreshToken(now)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}

	account := &Account{
		Email:          pending.Email,
		UserName:       pending.Username,
		Phone:          pending.Phone,
		Country:        pending.Country,
		EmailConfirmed: true,
		Active:         true,
		Roles:          []string{RoleUser},
		RefreshTokens:  []RefreshToken{refresh},
	}

	created, err := e.users.Create(ctx, account, pending.Password)
	if err != nil {
		// The staged record stays so the user can retry once the cause
		// (e.g. a policy rejection) is addressed.
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyConfirm, false, "", email, ErrAccountCreation, nil)
		return nil, fmt.Errorf("%w: %v", ErrAccountCreation, err)
	}

	if err := e.cache.Remove(ctx, key); err != nil {
		e.logger.Warn("verified pending record not removed", "error", err)
	}

	response, err := e.issueTokens(created, refresh)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	e.metricInc(MetricVerifySuccess)
	e.emitAudit(ctx, auditEventVerifyConfirm, true, created.ID, email, nil, nil)

	return response, nil
}
