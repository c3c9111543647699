// Package sanitizer normalizes account and turf input before validation and storage.
//
// All functions are idempotent. Invalid input is handed back trimmed rather
// than rejected, so the validators downstream report it with a field name.
//
// Normalization includes:
//   - Phone numbers: E.164 (+[country][number]), parsed against a default region
//   - Emails and usernames: trimmed and lowercased
//   - Names and locations: whitespace collapsed and trimmed
//   - URLs: HTTPS enforced, host lowercased, path preserved
//   - Slices: duplicates and empty values removed after normalization
package sanitizer
