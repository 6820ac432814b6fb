// Package player drives timed playback of a decoded MAGF container.
//
// A Player moves through Idle, Loading, Ready, Playing and Paused. Load decodes
// the container and materializes every frame and the audio clip before any
// frame is shown; any failure parks the player in Failed with the error kept
// for inspection. Play starts a ticker at the container frame interval. Each
// tick renders the current frame with the cue active at the elapsed playback
// time, then advances the index modulo the frame count. When the index wraps
// the audio clip is stopped and started again; audio and video are otherwise
// not synchronized.
//
// All tick work runs under the player mutex and carries a generation token.
// Pause, Restart, Load and Close bump the token, so a tick that was already
// queued when they returned does nothing. Read accessors are lock-free and may
// be called from Surface.Render.
package player
