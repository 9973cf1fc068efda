package internal

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestNewVerificationCodeShape(t *testing.T) {
	seen := map[string]bool{}

	for i := 0; i < 256; i++ {
		code, err := NewVerificationCode()
		if err != nil {
			t.Fatalf("NewVerificationCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6-character code, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune("0123456789ABCDEF", r) {
				t.Fatalf("code %q contains non-uppercase-hex rune %q", code, r)
			}
		}
		seen[code] = true
	}

	// 256 draws from a 16^6 space colliding down to a handful would mean a
	// broken random source.
	if len(seen) < 200 {
		t.Fatalf("expected mostly distinct codes, got %d distinct of 256", len(seen))
	}
}

func TestNewRefreshTokenValue(t *testing.T) {
	a, err := NewRefreshTokenValue()
	if err != nil {
		t.Fatalf("NewRefreshTokenValue failed: %v", err)
	}
	b, err := NewRefreshTokenValue()
	if err != nil {
		t.Fatalf("NewRefreshTokenValue failed: %v", err)
	}
	if a == b {
		t.Fatal("two refresh tokens must not collide")
	}

	raw, err := base64.StdEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("refresh token is not standard base64: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 raw bytes, got %d", len(raw))
	}
}

func TestNewResetCodeURLSafe(t *testing.T) {
	code, err := NewResetCode()
	if err != nil {
		t.Fatalf("NewResetCode failed: %v", err)
	}
	if strings.ContainsAny(code, "+/=") {
		t.Fatalf("reset code %q is not URL-safe", code)
	}
	if _, err := base64.RawURLEncoding.DecodeString(code); err != nil {
		t.Fatalf("reset code is not raw URL base64: %v", err)
	}
}
