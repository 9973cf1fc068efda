package tripauth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrEmailTaken is an exported constant or variable used by the authentication engine.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is an exported constant or variable used by the authentication engine.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrRegistrationInvalid is an exported constant or variable used by the authentication engine.
	ErrRegistrationInvalid = errors.New("invalid registration request")
	// ErrRegistrationCooldown is an exported constant or variable used by the authentication engine.
	ErrRegistrationCooldown = errors.New("please wait before requesting another verification code")
	// ErrVerificationExpired is an exported constant or variable used by the authentication engine.
	ErrVerificationExpired = errors.New("invalid or expired verification request")
	// ErrVerificationCode is an exported constant or variable used by the authentication engine.
	ErrVerificationCode = errors.New("invalid verification code")
	// ErrAccountCreation is an exported constant or variable used by the authentication engine.
	ErrAccountCreation = errors.New("account creation failed")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrRefreshInvalid is an exported constant or variable used by the authentication engine.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrRefreshInactive is an exported constant or variable used by the authentication engine.
	ErrRefreshInactive = errors.New("inactive refresh token")
	// ErrResetInvalid is an exported constant or variable used by the authentication engine.
	ErrResetInvalid = errors.New("invalid or expired reset code")
	// ErrMailDelivery is an exported constant or variable used by the authentication engine.
	ErrMailDelivery = errors.New("failed to send email")
	// ErrStoreUpdate is an exported constant or variable used by the authentication engine.
	ErrStoreUpdate = errors.New("account update failed")
	// ErrVersionConflict is an exported constant or variable used by the authentication engine.
	ErrVersionConflict = errors.New("account version conflict")
)
