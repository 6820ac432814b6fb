// Package textutil turns catalog entry names into file names and download
// tokens.
package textutil
