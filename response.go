package tripauth

import (
	"errors"
	"net/http"
)

// Response is the uniform envelope the thin API layer returns for every
// operation: success flag, numeric status classification, human-readable
// message, optional error list, optional payload. No stack trace or internal
// error type crosses this boundary.
type Response struct {
	Success bool     `json:"success"`
	Status  int      `json:"statusCode"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// OK builds a success envelope.
func OK(status int, message string, data any) Response {
	return Response{
		Success: true,
		Status:  status,
		Message: message,
		Data:    data,
	}
}

// FromError maps an engine error onto the envelope. Sentinel errors keep
// their message text; anything unrecognized is classified as an internal
// error without leaking its detail.
func FromError(err error) Response {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUsernameTaken):
		status = http.StatusConflict
		message = sentinelMessage(err)
	case errors.Is(err, ErrRegistrationCooldown):
		status = http.StatusTooManyRequests
		message = sentinelMessage(err)
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrRefreshInactive):
		status = http.StatusUnauthorized
		message = sentinelMessage(err)
	case errors.Is(err, ErrRegistrationInvalid),
		errors.Is(err, ErrVerificationExpired),
		errors.Is(err, ErrVerificationCode),
		errors.Is(err, ErrResetInvalid):
		status = http.StatusBadRequest
		message = sentinelMessage(err)
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = sentinelMessage(err)
	case errors.Is(err, ErrMailDelivery):
		message = ErrMailDelivery.Error()
	case errors.Is(err, ErrAccountCreation):
		message = ErrAccountCreation.Error()
	case errors.Is(err, ErrStoreUpdate):
		message = ErrStoreUpdate.Error()
	}

	return Response{
		Success: false,
		Status:  status,
		Message: message,
		Errors:  []string{message},
	}
}

// sentinelMessage strips wrapping detail down to the sentinel's own text.
func sentinelMessage(err error) string {
	for _, sentinel := range []error{
		ErrEmailTaken, ErrUsernameTaken, ErrRegistrationCooldown,
		ErrRegistrationInvalid, ErrVerificationExpired, ErrVerificationCode,
		ErrInvalidCredentials, ErrRefreshInvalid, ErrRefreshInactive,
		ErrUserNotFound, ErrResetInvalid,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
