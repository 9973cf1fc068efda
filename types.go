package tripauth

import (
	"context"
	"time"
)

// Role names carried as plain string claims inside access tokens.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Account is the full identity record held by a [UserStore]. It is created
// at verification time, mutated on login/refresh/reset, and never hard-deleted
// by this subsystem.
type Account struct {
	ID             string
	Email          string
	UserName       string
	PasswordHash   string
	Phone          string
	Country        string
	EmailConfirmed bool
	Active         bool
	Deleted        bool
	Roles          []string

	// RefreshTokens is the per-account token collection. Records are
	// appended on mint and revoked in place, never removed.
	RefreshTokens []RefreshToken

	// Version supports optimistic concurrency at the store layer. Stores
	// that honor it return [ErrVersionConflict] from Update when the row
	// moved underneath the caller.
	Version uint32
}

// ActiveRefreshToken returns a pointer to the first refresh token that is
// active at the given instant, or nil when none is.
func (a *Account) ActiveRefreshToken(now time.Time) *RefreshToken {
	for i := range a.RefreshTokens {
		if a.RefreshTokens[i].ActiveAt(now) {
			return &a.RefreshTokens[i]
		}
	}
	return nil
}

// FindRefreshToken returns a pointer to the record whose token string matches
// exactly, or nil.
func (a *Account) FindRefreshToken(token string) *RefreshToken {
	for i := range a.RefreshTokens {
		if a.RefreshTokens[i].Token == token {
			return &a.RefreshTokens[i]
		}
	}
	return nil
}

// RefreshToken is a single opaque refresh-token record owned by one Account.
type RefreshToken struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// RevokedAt is set exactly once and never cleared. A revoked record is
	// permanently inactive even before its natural expiry.
	RevokedAt *time.Time
}

// ActiveAt reports whether the record is usable at the given instant.
func (r RefreshToken) ActiveAt(now time.Time) bool {
	return r.RevokedAt == nil && now.Before(r.ExpiresAt)
}

// Active is ActiveAt against the current clock.
func (r RefreshToken) Active() bool {
	return r.ActiveAt(time.Now())
}

// RegisterRequest is the input for [Engine.Register]. Field-level validation
// (email shape, password character classes) belongs to the API layer; the
// engine checks presence and confirmation match only.
type RegisterRequest struct {
	Username        string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
	Country         string
}

// TokenResponse is the token pair returned by Login, Refresh, and
// VerifyEmail.
type TokenResponse struct {
	AccessToken           string    `json:"accessToken"`
	TokenType             string    `json:"tokenType"`
	ExpiresAt             time.Time `json:"expiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// UserStore is the credential-store interface that callers must implement to
// integrate tripauth with their account database. Absent records are reported
// as [ErrUserNotFound]; Update may report [ErrVersionConflict] when the store
// supports optimistic concurrency.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// FindByRefreshToken locates the account owning the record whose token
	// string matches exactly. Stores should index this lookup rather than
	// scan accounts.
	FindByRefreshToken(ctx context.Context, token string) (*Account, error)

	VerifyPassword(ctx context.Context, account *Account, plain string) (bool, error)

	// Create persists a new account, hashing plainPassword through the
	// store's own policy, and returns the stored record with its assigned
	// ID.
	Create(ctx context.Context, account *Account, plainPassword string) (*Account, error)

	Update(ctx context.Context, account *Account) error

	// GeneratePasswordResetToken mints a single-use reset code for the
	// account; ConsumePasswordResetToken burns it together with the new
	// password. The code's storage and expiry are the store's concern.
	GeneratePasswordResetToken(ctx context.Context, account *Account) (string, error)
	ConsumePasswordResetToken(ctx context.Context, account *Account, token, newPassword string) error
}

// Mailer is the notification-dispatcher interface. Both methods must return
// an error on transport failure so the engine can discard in-flight state.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string) error
	SendResetCode(ctx context.Context, to, code string) error
}
