// Package sanitizer normalizes free-form listing input before validation and storage.
//
// Every function is idempotent and never returns an error: input that cannot be
// normalized comes back empty, or unchanged where the validator is expected to
// reject it with a field-level message.
package sanitizer
