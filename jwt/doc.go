// Package jwt issues and validates the bearer tokens handed out by the
// tripauth engine. Tokens are HS256-signed over a symmetric key and carry
// the account id as subject plus name, email, and role claims.
//
// # What this package must NOT do
//
//   - Accept tokens signed with any method other than the configured one
//     (no alg-substitution, no "none").
//   - Touch Redis or the credential store; validation is purely local.
package jwt
