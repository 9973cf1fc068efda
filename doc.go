// Package tripauth provides the account and session engine for the TripMate
// platform: registration staged behind an email-verification code, credential
// login, JWT access tokens with rotating opaque refresh tokens, and a
// code-based password-reset flow, layered over a Redis cache that degrades to
// an in-process store when the remote is unreachable.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// tripauth is the public surface. It exposes [Engine], [Builder], [Config],
// sentinel errors, and value types ([Account], [TokenResponse],
// MetricsSnapshot). Account persistence is the caller's concern, supplied as
// a [UserStore]; outbound email is supplied as a [Mailer]. Reference
// implementations live in pgstore/ and mail/.
//
// # What this package must NOT do
//
//   - Expose Redis clients, cache keys, or pending-registration internals in
//     its public API.
//   - Persist plaintext passwords anywhere but the staging cache entry that
//     dies on promotion or TTL.
//   - Return stored password hashes or verification codes in any response
//     value.
package tripauth
