// Package sanitizer normalizes contact data typed into the booking wizard.
//
// All functions are idempotent and never fail: invalid input degrades to an
// empty string and validation is left to the caller.
//
// Normalization includes:
//   - Phone numbers: keep digits only; optional E.164 rendering for events
//   - Names and notes: collapse whitespace, trim
//   - Emails: trim, lowercase
package sanitizer
