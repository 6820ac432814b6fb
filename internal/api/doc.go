// Package api defines wire-format types and services for the HTTP API and
// the CLI's --json output. It translates catalog entries and decoded
// containers into transport-friendly DTOs.
//
// DTOs use camelCase JSON tags. Timestamps use RFC3339 with milliseconds.
// Binary payloads (frames, audio, exported containers) travel as standard
// base64 inside JSON bodies, which is what encoding/json does for []byte.
package api
