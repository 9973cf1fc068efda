// Package mail delivers the transactional messages the engine sends during
// signup and password recovery. Messages are HTML, rendered from embedded
// templates, and submitted over SMTP with STARTTLS.
//
// # What this package must NOT do
//
//   - Generate or validate codes — callers pass the code, this package only
//     formats and sends it.
//   - Queue or retry; a failed send surfaces as an error and the caller
//     decides.
//   - Log message bodies or codes.
package mail
