// Package daemon runs the magf HTTP service: catalog management plus
// stateless encode and inspect endpoints.
//
// A Daemon holds an exclusive file lock in the data directory so only one
// instance serves a catalog at a time. Every request is tagged with a
// correlation id (echoed in X-Request-ID) that flows into log lines through
// the request context.
package daemon
