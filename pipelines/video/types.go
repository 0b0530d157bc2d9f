package video

import (
	"errors"
	"image"
	"os"
	"time"
)

var (
	ErrNoSlides       = errors.New("no slides to render")
	ErrNoClips        = errors.New("no slide clips were produced")
	ErrExport         = errors.New("video export failed")
	ErrEmptyNarration = errors.New("narration text is empty after cleaning")
	ErrInvalidConfig  = errors.New("invalid video config")
)

// Status is the outcome class of a render, synthesis or build step
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// Result carries a value together with how it was obtained.
// Degraded results still hold a usable Value; Failed results do not.
type Result[T any] struct {
	Value  T
	Status Status
	Reason error
}

func OK[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

func Degraded[T any](v T, reason error) Result[T] {
	return Result[T]{Value: v, Status: StatusDegraded, Reason: reason}
}

func Failed[T any](reason error) Result[T] {
	return Result[T]{Status: StatusFailed, Reason: reason}
}

func (r Result[T]) Ok() bool { return r.Status != StatusFailed }

// RenderedSlide is a drawn slide waiting to be persisted for the encoder
type RenderedSlide struct {
	Index int
	Image image.Image
}

// Narration is a synthesized, post-processed audio track
type Narration struct {
	Path     string
	Duration float64 // seconds
}

// Clip is one encoded slide segment. It owns its files until Close.
type Clip struct {
	Index    int
	Path     string
	Duration float64 // seconds
	Width    int
	Height   int
	Title    string
	Text     string
	Silent   bool

	files []string
}

// Close removes every file the clip owns. Missing files are ignored.
func (c *Clip) Close() error {
	var errs []error
	for _, f := range c.files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	c.files = nil
	return errors.Join(errs...)
}

// Output describes an exported video
type Output struct {
	Path         string
	SubtitlePath string
	SizeMB       float64
	Duration     float64
}

// GenerateResult is what a full run hands back to the caller
type GenerateResult struct {
	VideoPath    string
	SubtitlePath string
	Metrics      MetricsSnapshot
	Elapsed      time.Duration
}

// ProgressFunc receives (done, total) after each slide completes
type ProgressFunc func(done, total int)
