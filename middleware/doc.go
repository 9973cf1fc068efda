// Package middleware exposes HTTP middleware adapters that gate handlers on
// the bearer tokens minted by the tripauth engine.
//
// # Guards
//
//   - [Guard] validates the Authorization bearer token and injects its
//     claims into the request context.
//   - [RequireRole] is [Guard] plus a role check against the token's role
//     claims.
//
// Rejections are written as the standard response envelope with status 401
// (or 403 for a missing role), so API clients see the same shape for guard
// failures as for engine failures.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the engine's token
//     manager).
//   - Touch the cache or the user store.
//   - Make authorization decisions beyond bearer validity and role
//     membership.
package middleware
