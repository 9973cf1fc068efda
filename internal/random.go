package internal

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const (
	verificationCodeLength = 6
	refreshTokenRawSize    = 32
	resetCodeRawSize       = 32
)

// NewVerificationCode returns a 6-character uppercase hex code drawn from
// crypto/rand. Four random bytes give eight hex digits; the code keeps the
// first six.
func NewVerificationCode() (string, error) {
	var raw [4]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	code := strings.ToUpper(hex.EncodeToString(raw[:]))
	return code[:verificationCodeLength], nil
}

// NewRefreshTokenValue returns an opaque refresh-token string: 32 random
// bytes, standard base64.
func NewRefreshTokenValue() (string, error) {
	var raw [refreshTokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw[:]), nil
}

// NewResetCode returns a password-reset code. URL-safe encoding, no padding,
// so the code survives being pasted into a query string.
func NewResetCode() (string, error) {
	var raw [resetCodeRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
