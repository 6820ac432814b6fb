package api

import "magf/internal/magf"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ContainerSummary describes a catalog entry without its assets.
type ContainerSummary struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	FrameCount  int               `json:"frameCount"`
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	FPS         int               `json:"fps"`
	Duration    float64           `json:"duration"`
	HasAudio    bool              `json:"hasAudio"`
	HasText     bool              `json:"hasText"`
	EncodedSize int               `json:"encodedSize"`
	CreatedAt   string            `json:"createdAt,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ContainerListResponse wraps a collection of summaries.
type ContainerListResponse struct {
	Containers []ContainerSummary `json:"containers"`
}

// CreateContainerRequest carries raw assets. Frame dimensions are read from
// the image headers. A present but empty subtitles array produces an empty
// text track; an absent one produces none.
type CreateContainerRequest struct {
	Name      string            `json:"name,omitempty"`
	Frames    [][]byte          `json:"frames"`
	Audio     []byte            `json:"audio,omitempty"`
	Subtitles []magf.Cue        `json:"subtitles"`
	FPS       int               `json:"fps,omitempty"`
	Duration  float64           `json:"duration,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CatalogStats summarises the catalog.
type CatalogStats struct {
	Containers  int   `json:"containers"`
	Frames      int   `json:"frames"`
	EncodedSize int64 `json:"encodedSize"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	StartedAt    string        `json:"startedAt,omitempty"`
	CatalogPath  string        `json:"catalogPath"`
	LockFilePath string        `json:"lockFilePath"`
	Catalog      CatalogStats  `json:"catalog"`
	Checks       []CheckResult `json:"checks"`
}

// FrameInfo describes one frame payload of an inspected container.
type FrameInfo struct {
	Index  int    `json:"index"`
	Size   int    `json:"size"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AudioInfo describes the audio payload of an inspected container.
type AudioInfo struct {
	Size       int     `json:"size"`
	SampleRate int     `json:"sampleRate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
	BitDepth   int     `json:"bitDepth,omitempty"`
	Seconds    float64 `json:"seconds,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// InspectResult is the structural view of a decoded container.
type InspectResult struct {
	Version    uint16        `json:"version"`
	Duration   float64       `json:"duration"`
	FPS        int           `json:"fps"`
	IntervalMS float64       `json:"intervalMs"`
	Manifest   magf.Manifest `json:"manifest"`
	Frames     []FrameInfo   `json:"frames"`
	Audio      *AudioInfo    `json:"audio,omitempty"`
	Subtitles  []magf.Cue    `json:"subtitles,omitempty"`
	TotalSize  int           `json:"totalSize"`
	Warnings   []string      `json:"warnings,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
