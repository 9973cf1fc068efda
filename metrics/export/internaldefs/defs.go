package internaldefs

import (
	"github.com/tripmate/tripauth"
)

// CounterDef defines a public type used by tripauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   tripauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by tripauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   tripauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: tripauth.MetricRegisterRequest, Name: "tripauth_register_request_total", Help: "Registration attempts that passed input validation."},
	{ID: tripauth.MetricRegisterRateLimited, Name: "tripauth_register_rate_limited_total", Help: "Registration attempts rejected by the resend cool-down."},
	{ID: tripauth.MetricRegisterConflict, Name: "tripauth_register_conflict_total", Help: "Registration attempts rejected as duplicate email or username."},
	{ID: tripauth.MetricVerifySuccess, Name: "tripauth_verify_success_total", Help: "Successful email verifications."},
	{ID: tripauth.MetricVerifyFailure, Name: "tripauth_verify_failure_total", Help: "Failed email verifications."},
	{ID: tripauth.MetricLoginSuccess, Name: "tripauth_login_success_total", Help: "Successful login attempts."},
	{ID: tripauth.MetricLoginFailure, Name: "tripauth_login_failure_total", Help: "Failed login attempts."},
	{ID: tripauth.MetricRefreshSuccess, Name: "tripauth_refresh_success_total", Help: "Successful refresh rotations."},
	{ID: tripauth.MetricRefreshFailure, Name: "tripauth_refresh_failure_total", Help: "Refresh attempts with an unknown or malformed token."},
	{ID: tripauth.MetricRefreshInactive, Name: "tripauth_refresh_inactive_total", Help: "Refresh attempts with a revoked or expired token."},
	{ID: tripauth.MetricResetRequest, Name: "tripauth_password_reset_request_total", Help: "Password reset requests."},
	{ID: tripauth.MetricResetSuccess, Name: "tripauth_password_reset_success_total", Help: "Successful password reset confirmations."},
	{ID: tripauth.MetricResetFailure, Name: "tripauth_password_reset_failure_total", Help: "Failed password reset confirmations."},
	{ID: tripauth.MetricMailFailure, Name: "tripauth_mail_failure_total", Help: "Email deliveries that failed."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: tripauth.MetricLoginLatency, Name: "tripauth_login_latency_seconds", Help: "Login latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
