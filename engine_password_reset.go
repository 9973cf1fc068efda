package tripauth

import (
	"context"
	"errors"
	"fmt"
)

// ForgotPassword generates a single-use reset code through the store's own
// token machinery and emails it. An unknown email returns nil exactly like a
// known one; only the audit trail records the distinction, so the response
// shape cannot be used to enumerate accounts. Mail-transport failure is
// surfaced because the caller needs to know the code never left.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	e.metricInc(MetricResetRequest)

	account, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventResetRequest, true, "", email, nil, func() map[string]string {
				return map[string]string{"noop": "unknown_email"}
			})
			return nil
		}
		return fmt.Errorf("lookup by email: %w", err)
	}

	code, err := e.users.GeneratePasswordResetToken(ctx, account)
	if err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventResetRequest, false, account.ID, email, ErrStoreUpdate, nil)
		return fmt.Errorf("generate reset token: %w", err)
	}

	if err := e.mailer.SendResetCode(ctx, email, code); err != nil {
		e.metricInc(MetricMailFailure)
		e.emitAudit(ctx, auditEventResetRequest, false, account.ID, email, ErrMailDelivery, nil)
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	e.emitAudit(ctx, auditEventResetRequest, true, account.ID, email, nil, nil)

	return nil
}

// ResetPassword consumes a reset code together with the new password. Wrong
// or expired codes, unknown emails, and store-side policy rejections all
// come back as [ErrResetInvalid]; the code is single-use by construction of
// the store's token mechanism.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if code == "" || newPassword == "" {
		e.metricInc(MetricResetFailure)
		return ErrResetInvalid
	}

	account, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricResetFailure)
			e.emitAudit(ctx, auditEventResetConfirm, false, "", email, ErrResetInvalid, nil)
			return ErrResetInvalid
		}
		return fmt.Errorf("lookup by email: %w", err)
	}

	if err := e.users.ConsumePasswordResetToken(ctx, account, code, newPassword); err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventResetConfirm, false, account.ID, email, ErrResetInvalid, nil)
		return ErrResetInvalid
	}

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventResetConfirm, true, account.ID, email, nil, nil)

	return nil
}
