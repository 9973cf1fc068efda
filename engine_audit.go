package tripauth

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventRegisterRequest     = "register_request"
	auditEventRegisterRateLimited = "register_rate_limited"
	auditEventVerifyConfirm       = "email_verification_confirm"
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventRefreshSuccess      = "refresh_success"
	auditEventRefreshFailure      = "refresh_failure"
	auditEventResetRequest        = "password_reset_request"
	auditEventResetConfirm        = "password_reset_confirm"
)

// AuditErrorCode defines a public type used by tripauth APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrInvalidRequest     AuditErrorCode = "invalid_request"
	auditErrInvalidCode        AuditErrorCode = "invalid_code"
	auditErrInvalidToken       AuditErrorCode = "invalid_token"
	auditErrInactiveToken      AuditErrorCode = "inactive_token"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrMailFailure        AuditErrorCode = "mail_failure"
	auditErrStoreFailure       AuditErrorCode = "store_failure"
	auditErrConflict           AuditErrorCode = "version_conflict"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	email string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrRegistrationCooldown):
		return auditErrRateLimited
	case errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrUsernameTaken):
		return auditErrDuplicate
	case errors.Is(err, ErrRegistrationInvalid):
		return auditErrInvalidRequest
	case errors.Is(err, ErrVerificationCode):
		return auditErrInvalidCode
	case errors.Is(err, ErrVerificationExpired),
		errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrResetInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrRefreshInactive):
		return auditErrInactiveToken
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrMailDelivery):
		return auditErrMailFailure
	case errors.Is(err, ErrVersionConflict):
		return auditErrConflict
	case errors.Is(err, ErrAccountCreation),
		errors.Is(err, ErrStoreUpdate):
		return auditErrStoreFailure
	default:
		return auditErrInternal
	}
}
