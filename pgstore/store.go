package pgstore

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tripmate/tripauth"
	"github.com/tripmate/tripauth/internal"
	"github.com/tripmate/tripauth/password"
)

// Schema is the DDL for the three tables the store uses. It is idempotent;
// [EnsureSchema] applies it on startup.
//
//go:embed schema.sql
var Schema string

const defaultResetTTL = 10 * time.Minute

// poolIface is the slice of pgxpool.Pool the store needs. pgxmock's pool
// satisfies it too, which is what the tests run against.
type poolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Options tunes the store.
type Options struct {
	// Hasher is the Argon2id policy applied to new passwords. Zero value
	// means the package default (64 MiB, 3 passes, 2 lanes).
	Hasher password.Config
	// ResetTTL bounds how long a password-reset code stays redeemable.
	// Zero means 10 minutes.
	ResetTTL time.Duration
	// Logger receives operational warnings. Nil means slog.Default().
	Logger *slog.Logger
}

// Store defines a public type used by tripauth APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	pool     poolIface
	hasher   *password.Argon2
	resetTTL time.Duration
	logger   *slog.Logger
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(pool poolIface, opts Options) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pgstore: pool is required")
	}

	hcfg := opts.Hasher
	if hcfg == (password.Config{}) {
		hcfg = password.Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		}
	}
	hasher, err := password.NewArgon2(hcfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: hasher config: %w", err)
	}

	resetTTL := opts.ResetTTL
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{pool: pool, hasher: hasher, resetTTL: resetTTL, logger: logger}, nil
}

// EnsureSchema applies the embedded DDL. Safe to call on every startup.
func EnsureSchema(ctx context.Context, pool poolIface) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("pgstore: apply schema: %w", err)
	}
	return nil
}

const accountColumns = `id, email, user_name, password_hash, phone, country, email_confirmed, active, deleted, roles, version`

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// FindByEmail may return an error when input validation, dependency calls, or security checks fail.
// FindByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByEmail(ctx context.Context, email string) (*tripauth.Account, error) {
	return s.findAccount(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, email)
}

// FindByUsername describes the findbyusername operation and its observable behavior.
//
// FindByUsername may return an error when input validation, dependency calls, or security checks fail.
// FindByUsername does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByUsername(ctx context.Context, username string) (*tripauth.Account, error) {
	return s.findAccount(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE lower(user_name) = lower($1)`, username)
}

// FindByRefreshToken resolves the owning account through the refresh_tokens
// primary key, never by scanning accounts.
//
// FindByRefreshToken may return an error when input validation, dependency calls, or security checks fail.
// FindByRefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByRefreshToken(ctx context.Context, token string) (*tripauth.Account, error) {
	return s.findAccount(ctx,
		`SELECT a.id, a.email, a.user_name, a.password_hash, a.phone, a.country, a.email_confirmed, a.active, a.deleted, a.roles, a.version
		 FROM accounts a
		 JOIN refresh_tokens r ON r.account_id = a.id
		 WHERE r.token = $1`, token)
}

func (s *Store) findAccount(ctx context.Context, query string, arg any) (*tripauth.Account, error) {
	var acct tripauth.Account
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&acct.ID, &acct.Email, &acct.UserName, &acct.PasswordHash,
		&acct.Phone, &acct.Country, &acct.EmailConfirmed, &acct.Active,
		&acct.Deleted, &acct.Roles, &acct.Version,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tripauth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pgstore: load account: %w", err)
	}

	if err := s.loadRefreshTokens(ctx, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *Store) loadRefreshTokens(ctx context.Context, acct *tripauth.Account) error {
	rows, err := s.pool.Query(ctx,
		`SELECT token, issued_at, expires_at, revoked_at FROM refresh_tokens WHERE account_id = $1 ORDER BY issued_at`,
		acct.ID)
	if err != nil {
		return fmt.Errorf("pgstore: load refresh tokens: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rt tripauth.RefreshToken
		if err := rows.Scan(&rt.Token, &rt.IssuedAt, &rt.ExpiresAt, &rt.RevokedAt); err != nil {
			return fmt.Errorf("pgstore: scan refresh token: %w", err)
		}
		acct.RefreshTokens = append(acct.RefreshTokens, rt)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("pgstore: iterate refresh tokens: %w", err)
	}
	return nil
}

// VerifyPassword describes the verifypassword operation and its observable behavior.
//
// VerifyPassword may return an error when input validation, dependency calls, or security checks fail.
// VerifyPassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) VerifyPassword(ctx context.Context, account *tripauth.Account, plain string) (bool, error) {
	if account == nil || account.PasswordHash == "" {
		return false, nil
	}
	ok, err := s.hasher.Verify(plain, account.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("pgstore: verify password: %w", err)
	}
	return ok, nil
}

// Create persists a new account row plus any refresh-token records already
// attached to it, hashing plainPassword through the store's Argon2id policy.
// Unique-index violations surface as the engine's taken errors.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Create(ctx context.Context, account *tripauth.Account, plainPassword string) (*tripauth.Account, error) {
	if account == nil {
		return nil, errors.New("pgstore: nil account")
	}

	stored := *account
	stored.RefreshTokens = append([]tripauth.RefreshToken(nil), account.RefreshTokens...)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, fmt.Errorf("pgstore: hash password: %w", err)
	}
	stored.PasswordHash = hash
	stored.Version = 1

	_, err = s.pool.Exec(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		stored.ID, stored.Email, stored.UserName, stored.PasswordHash,
		stored.Phone, stored.Country, stored.EmailConfirmed, stored.Active,
		stored.Deleted, stored.Roles, stored.Version)
	if err != nil {
		if name, ok := uniqueViolation(err); ok {
			switch {
			case strings.Contains(name, "email"):
				return nil, tripauth.ErrEmailTaken
			case strings.Contains(name, "user_name"):
				return nil, tripauth.ErrUsernameTaken
			}
		}
		return nil, fmt.Errorf("pgstore: insert account: %w", err)
	}

	for i := range stored.RefreshTokens {
		if err := s.upsertRefreshToken(ctx, stored.ID, stored.RefreshTokens[i]); err != nil {
			return nil, err
		}
	}
	return &stored, nil
}

// Update writes the account row behind an optimistic version check and
// upserts its refresh-token records. A lost race returns
// [tripauth.ErrVersionConflict] and leaves the row untouched.
//
// Update may return an error when input validation, dependency calls, or security checks fail.
// Update does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Update(ctx context.Context, account *tripauth.Account) error {
	if account == nil {
		return errors.New("pgstore: nil account")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts
		 SET email = $2, user_name = $3, password_hash = $4, phone = $5, country = $6,
		     email_confirmed = $7, active = $8, deleted = $9, roles = $10,
		     version = version + 1
		 WHERE id = $1 AND version = $11`,
		account.ID, account.Email, account.UserName, account.PasswordHash,
		account.Phone, account.Country, account.EmailConfirmed, account.Active,
		account.Deleted, account.Roles, account.Version)
	if err != nil {
		return fmt.Errorf("pgstore: update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tripauth.ErrVersionConflict
	}

	for i := range account.RefreshTokens {
		if err := s.upsertRefreshToken(ctx, account.ID, account.RefreshTokens[i]); err != nil {
			return err
		}
	}
	account.Version++
	return nil
}

func (s *Store) upsertRefreshToken(ctx context.Context, accountID string, rt tripauth.RefreshToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (token, account_id, issued_at, expires_at, revoked_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (token) DO UPDATE SET revoked_at = EXCLUDED.revoked_at`,
		rt.Token, accountID, rt.IssuedAt, rt.ExpiresAt, rt.RevokedAt)
	if err != nil {
		return fmt.Errorf("pgstore: upsert refresh token: %w", err)
	}
	return nil
}

// GeneratePasswordResetToken mints a reset code for the account and stores
// its SHA-256 digest with an expiry. A second call replaces the first; only
// one code per account is ever live.
//
// GeneratePasswordResetToken may return an error when input validation, dependency calls, or security checks fail.
// GeneratePasswordResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) GeneratePasswordResetToken(ctx context.Context, account *tripauth.Account) (string, error) {
	if account == nil || account.ID == "" {
		return "", errors.New("pgstore: nil account")
	}

	code, err := internal.NewResetCode()
	if err != nil {
		return "", fmt.Errorf("pgstore: mint reset code: %w", err)
	}
	sum := sha256.Sum256([]byte(code))

	_, err = s.pool.Exec(ctx,
		`INSERT INTO password_resets (account_id, code_hash, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (account_id) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at`,
		account.ID, sum[:], time.Now().Add(s.resetTTL))
	if err != nil {
		return "", fmt.Errorf("pgstore: store reset code: %w", err)
	}
	return code, nil
}

// ConsumePasswordResetToken burns the account's live reset code and installs
// the new password. Any mismatch, expiry, or absent code reports
// [tripauth.ErrResetInvalid]; the caller learns nothing more specific.
//
// ConsumePasswordResetToken may return an error when input validation, dependency calls, or security checks fail.
// ConsumePasswordResetToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) ConsumePasswordResetToken(ctx context.Context, account *tripauth.Account, token, newPassword string) error {
	if account == nil || account.ID == "" {
		return tripauth.ErrResetInvalid
	}

	var (
		storedHash []byte
		expiresAt  time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT code_hash, expires_at FROM password_resets WHERE account_id = $1`,
		account.ID).Scan(&storedHash, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return tripauth.ErrResetInvalid
	}
	if err != nil {
		return fmt.Errorf("pgstore: load reset code: %w", err)
	}

	sum := sha256.Sum256([]byte(token))
	if subtle.ConstantTimeCompare(storedHash, sum[:]) != 1 || time.Now().After(expiresAt) {
		return tripauth.ErrResetInvalid
	}

	if _, err := s.pool.Exec(ctx,
		`DELETE FROM password_resets WHERE account_id = $1`, account.ID); err != nil {
		return fmt.Errorf("pgstore: burn reset code: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("pgstore: hash new password: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE accounts SET password_hash = $2, version = version + 1 WHERE id = $1 AND version = $3`,
		account.ID, hash, account.Version)
	if err != nil {
		return fmt.Errorf("pgstore: install new password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tripauth.ErrVersionConflict
	}

	account.PasswordHash = hash
	account.Version++
	return nil
}

func uniqueViolation(err error) (constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}
