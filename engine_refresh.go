package tripauth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Refresh rotates a refresh token: the presented record is revoked, a
// replacement is minted on the same account, and a new bearer token is
// issued. The lookup matches on token string alone; no caller identity is
// consulted.
//
// A token that no account owns fails with [ErrRefreshInvalid]; a known but
// revoked or expired token fails with [ErrRefreshInactive]. Revocation is
// one-way: once rotated, the old token is inactive forever.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if refreshToken == "" {
		e.metricInc(MetricRefreshFailure)
		return nil, ErrRefreshInvalid
	}

	account, err := e.users.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshFailure, false, "", "", ErrRefreshInvalid, nil)
			return nil, ErrRefreshInvalid
		}
		return nil, fmt.Errorf("lookup by refresh token: %w", err)
	}

	record := account.FindRefreshToken(refreshToken)
	if record == nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, account.ID, account.Email, ErrRefreshInvalid, nil)
		return nil, ErrRefreshInvalid
	}

	now := time.Now()
	if !record.ActiveAt(now) {
		e.metricInc(MetricRefreshInactive)
		e.emitAudit(ctx, auditEventRefreshFailure, false, account.ID, account.Email, ErrRefreshInactive, nil)
		return nil, ErrRefreshInactive
	}

	revokedAt := now
	record.RevokedAt = &revokedAt

	replacement, err := e.mintRefreshToken(now)
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}
	account.RefreshTokens = append(account.RefreshTokens, replacement)

	if err := e.users.Update(ctx, account); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			// A concurrent rotation of the same token won the store
			// write; this caller's token is spent.
			e.metricInc(MetricRefreshInactive)
			e.emitAudit(ctx, auditEventRefreshFailure, false, account.ID, account.Email, ErrVersionConflict, nil)
			return nil, ErrRefreshInactive
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, account.ID, account.Email, ErrStoreUpdate, nil)
		return nil, fmt.Errorf("%w: %v", ErrStoreUpdate, err)
	}

	response, err := e.issueTokens(account, replacement)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, account.ID, account.Email, nil, nil)

	return response, nil
}
