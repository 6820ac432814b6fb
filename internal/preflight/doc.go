// Package preflight provides readiness checks for the file system paths and
// local daemon that magf depends on.
//
// The daemon runs RunAll at start and logs failures without refusing to
// start. The CLI "magf check" command renders the same results alongside
// CheckDaemon.
package preflight
