package tripauth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Login authenticates email+password and returns a token pair. Unknown
// email and wrong password both come back as [ErrInvalidCredentials] so the
// response shape never reveals which half was wrong.
//
// Refresh-token attach policy: an account that already owns an active
// refresh token gets that token back verbatim; login does not rotate. A new
// record is minted and persisted only when none is active.
func (e *Engine) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	defer func() {
		e.metricObserve(MetricLoginLatency, time.Since(start))
	}()

	account, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventLoginFailure, false, "", email, ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	ok, err := e.users.VerifyPassword(ctx, account, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, account.ID, email, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	now := time.Now()

	var refresh RefreshToken
	if active := account.ActiveRefreshToken(now); active != nil {
		refresh = *active
	} else {
		refresh, err = e.mintRefreshToken(now)
		if err != nil {
			return nil, fmt.Errorf("mint refresh token: %w", err)
		}
		account.RefreshTokens = append(account.RefreshTokens, refresh)
		if err := e.users.Update(ctx, account); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUpdate, err)
		}
	}

	response, err := e.issueTokens(account, refresh)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, account.ID, email, nil, nil)

	return response, nil
}
