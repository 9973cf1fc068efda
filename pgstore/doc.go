// Package pgstore implements the engine's UserStore contract on PostgreSQL
// through pgx. Accounts, their refresh-token records, and pending password
// resets live in three tables; the schema ships with the package and is
// applied with [EnsureSchema].
//
// Passwords are hashed with the password package's Argon2id policy before
// they touch a row. Reset codes are stored as SHA-256 digests only; the
// plaintext code exists solely in the value returned to the caller.
//
// Updates are guarded by an optimistic version column. A write that loses
// the race returns the engine's version-conflict error, which the refresh
// flow relies on to make a spent token stay spent.
//
// # What this package must NOT do
//
//   - Store plaintext passwords or plaintext reset codes.
//   - Hard-delete account rows; the deleted flag is the only tombstone.
//   - Scan the accounts table to resolve a refresh token; the token column
//     is the lookup key.
package pgstore
