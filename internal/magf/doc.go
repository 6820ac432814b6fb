// Package magf encodes and decodes MAGF containers, a compact loopable bundle
// of still frames, an optional audio clip, and optional timed text cues.
//
// A container is a 16-byte little-endian header followed by length-prefixed
// regions in a fixed order: a JSON manifest, the frame table, the audio chunk,
// and the cue list. Frame and audio payloads are opaque here; turning them
// into pixels and samples belongs to internal/media.
//
// Encode is the only trusted producer. Decode walks the buffer once with an
// advancing cursor and fails on the first inconsistency; there is no index
// table and no seeking. Both are pure functions over independent buffers and
// are safe to call concurrently.
//
// Callers match failures with errors.Is against the exported sentinels;
// ParseError and AssetError carry the region or asset position.
package magf
