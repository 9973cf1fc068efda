// Package internal holds crypto-random primitives shared by the tripauth
// engine: verification codes, refresh-token values, and reset codes.
//
// # What this package must NOT do
//
//   - Use math/rand for anything. Every generator here reads crypto/rand.
//   - Be imported outside the tripauth module.
package internal
