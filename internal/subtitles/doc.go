// Package subtitles reads and writes the cue lists carried in a container's
// text track.
//
// SubRip (.srt) and the container's own JSON cue list are supported. Cue text
// is NFC-normalised on the way in so identical captions compare equal.
package subtitles
