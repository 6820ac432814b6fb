// Command magf encodes, inspects and plays MAGF containers, manages the
// local container catalog, and runs the catalog HTTP daemon.
package main
