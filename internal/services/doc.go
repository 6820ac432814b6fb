// Package services carries request-scoped identifiers through
// context.Context so logging and handlers can tag work consistently.
package services
