// Package cache provides the string-keyed, TTL-bounded cache used by the
// tripauth engine, backed by Redis with a transparent in-process fallback.
//
// Values are JSON-serialized before they reach Redis. When the Redis client
// cannot be reached at construction, or a call later fails, the store flips
// to the in-process fallback for the remainder of its lifetime and the
// failure is logged — callers observe a miss or a best-effort write, never a
// transport error.
//
// # What this package must NOT do
//
//   - Propagate Redis transport errors to callers.
//   - Implement eviction policies beyond per-key TTL.
//   - Block a request on reconnect probing.
package cache
