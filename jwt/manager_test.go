package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func testManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()

	m, err := NewManager(Config{
		Secret:    []byte("test-secret"),
		AccessTTL: ttl,
		Issuer:    "tripmate",
		Audience:  "tripmate-clients",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(Config{AccessTTL: time.Hour}); err == nil {
		t.Fatal("expected error for missing secret")
	}
	if _, err := NewManager(Config{Secret: []byte("k")}); err == nil {
		t.Fatal("expected error for missing TTL")
	}
	if _, err := NewManager(Config{Secret: []byte("k"), AccessTTL: time.Hour, Leeway: 5 * time.Minute}); err == nil {
		t.Fatal("expected error for oversized leeway")
	}
}

func TestIssueAndParse(t *testing.T) {
	m := testManager(t, time.Hour)

	token, expiresAt, err := m.Issue("acc-1", "alice", "alice@x.com", []string{"User", "Admin"})
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if until := time.Until(expiresAt); until < 59*time.Minute || until > time.Hour {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.Subject != "acc-1" || claims.Name != "alice" || claims.Email != "alice@x.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "User" || claims.Roles[1] != "Admin" {
		t.Fatalf("unexpected roles %v", claims.Roles)
	}
	if claims.Issuer != "tripmate" {
		t.Fatalf("unexpected issuer %q", claims.Issuer)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := testManager(t, time.Millisecond)

	token, _, err := m.Issue("acc-1", "alice", "alice@x.com", nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := m.Parse(token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	m := testManager(t, time.Hour)
	other, err := NewManager(Config{
		Secret:    []byte("other-secret"),
		AccessTTL: time.Hour,
		Issuer:    "tripmate",
		Audience:  "tripmate-clients",
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, _, err := other.Issue("acc-1", "alice", "alice@x.com", nil)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := m.Parse(token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for foreign key, got %v", err)
	}
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	m := testManager(t, time.Hour)

	unsigned := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "acc-1",
			Issuer:    "tripmate",
			Audience:  gojwt.ClaimStrings{"tripmate-clients"},
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token failed: %v", err)
	}

	if _, err := m.Parse(token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for alg=none, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := testManager(t, time.Hour)

	for _, tok := range []string{"", "not-a-token", strings.Repeat("a.", 40)} {
		if _, err := m.Parse(tok); err != ErrTokenInvalid {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", tok, err)
		}
	}
}
