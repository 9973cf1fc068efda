package tripauth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	registerAndVerify(t, te, aliceRequest())

	_, errUnknown := te.engine.Login(ctx, "nobody@x.com", "Abcdef1!")
	_, errWrongPass := te.engine.Login(ctx, "alice@x.com", "wrong-password")

	if !errors.Is(errUnknown, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", errUnknown)
	}
	if !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Fatal("both failures must carry the same message")
	}
}

func TestLoginMintsRefreshTokenWhenNoneActive(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	te.store.seed(&Account{
		Email:        "bob@x.com",
		UserName:     "bob",
		PasswordHash: mockHash("Secret99!"),
		Active:       true,
		Roles:        []string{RoleUser},
	})

	tokens, err := te.engine.Login(ctx, "bob@x.com", "Secret99!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", tokens)
	}
	if tokens.TokenType != "Bearer" {
		t.Fatalf("unexpected token type %q", tokens.TokenType)
	}

	account := te.store.account(t, "bob@x.com")
	rec := account.FindRefreshToken(tokens.RefreshToken)
	if rec == nil {
		t.Fatal("minted refresh token must be persisted")
	}
	if until := time.Until(rec.ExpiresAt); until < 6*24*time.Hour || until > 7*24*time.Hour {
		t.Fatalf("unexpected refresh expiry window: %v", rec.ExpiresAt)
	}
}

func TestLoginReusesActiveRefreshToken(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	registerAndVerify(t, te, aliceRequest())

	first, err := te.engine.Login(ctx, "alice@x.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, err := te.engine.Login(ctx, "alice@x.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if first.RefreshToken != second.RefreshToken {
		t.Fatal("login must reuse the active refresh token, not rotate it")
	}
	if !first.RefreshTokenExpiresAt.Equal(second.RefreshTokenExpiresAt) {
		t.Fatal("reused token must keep its original expiry")
	}

	// Reuse writes nothing: one account per mint, none for the reuse.
	account := te.store.account(t, "alice@x.com")
	if len(account.RefreshTokens) != 1 {
		t.Fatalf("expected a single refresh token, got %d", len(account.RefreshTokens))
	}
}

func TestLoginMintsAfterTokenRevoked(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	revoked := time.Now().Add(-time.Hour)
	te.store.seed(&Account{
		Email:        "carol@x.com",
		UserName:     "carol",
		PasswordHash: mockHash("Secret99!"),
		Active:       true,
		Roles:        []string{RoleUser},
		RefreshTokens: []RefreshToken{{
			Token:     "revoked-token",
			IssuedAt:  time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(6 * 24 * time.Hour),
			RevokedAt: &revoked,
		}},
	})

	tokens, err := te.engine.Login(ctx, "carol@x.com", "Secret99!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.RefreshToken == "revoked-token" {
		t.Fatal("a revoked token must never be reused")
	}
}

func TestLoginResponseLeaksNoSecrets(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := te.engine.Register(ctx, aliceRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	code := te.mailer.lastVerification(t).Code
	if _, err := te.engine.VerifyEmail(ctx, "alice@x.com", code); err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}

	tokens, err := te.engine.Login(ctx, "alice@x.com", "Abcdef1!")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	hash := te.store.account(t, "alice@x.com").PasswordHash
	for _, field := range []string{tokens.AccessToken, tokens.RefreshToken, tokens.TokenType} {
		if strings.Contains(field, hash) {
			t.Fatal("response must not contain the stored password hash")
		}
		if strings.Contains(field, code) && len(code) >= 6 {
			t.Fatal("response must not contain the verification code")
		}
	}
}
