// Package catalog persists MAGF container sources in SQLite.
//
// The catalog stores raw frame, audio and cue assets rather than encoded
// containers. Every insert is validated by running the encoder, so Export can
// always rebuild a container on demand. Identifiers come from an
// AUTOINCREMENT column and are never reused after a delete.
package catalog
