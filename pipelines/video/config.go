package video

import (
	"fmt"
	"time"
)

// LogoMode controls on which slides the company logo is drawn
type LogoMode int

const (
	LogoFirstSlide LogoMode = iota
	LogoEverySlide
)

// VideoConfig holds the encoding and layout settings for one run.
// It is treated as an immutable value once a run starts.
type VideoConfig struct {
	Width  int
	Height int
	FPS    int

	VideoCodec string
	AudioCodec string
	Preset     string
	CRF        int

	MinSlideDuration float64 // seconds
	MaxSlideDuration float64 // seconds
	FadeDuration     float64 // seconds
	SlideTimeout     time.Duration

	Watermark       string // drawn in the footer when non-empty
	BackgroundMusic string // path to a music track mixed under narration
	Subtitles       bool   // write an .srt sidecar next to the video
	LogoMode        LogoMode

	OutputDir string // empty means the OS temp dir
}

func DefaultVideoConfig() VideoConfig {
	return VideoConfig{
		Width:            1080,
		Height:           1920,
		FPS:              30,
		VideoCodec:       "libx264",
		AudioCodec:       "aac",
		Preset:           "medium",
		CRF:              23,
		MinSlideDuration: 3.0,
		MaxSlideDuration: 20.0,
		FadeDuration:     0.5,
		SlideTimeout:     3 * time.Minute,
	}
}

// Validate rejects configurations no encoder run could satisfy
func (c VideoConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case c.FPS <= 0:
		return fmt.Errorf("%w: fps %d", ErrInvalidConfig, c.FPS)
	case c.MinSlideDuration <= 0:
		return fmt.Errorf("%w: min slide duration %.2f", ErrInvalidConfig, c.MinSlideDuration)
	case c.MinSlideDuration > c.MaxSlideDuration:
		return fmt.Errorf("%w: min slide duration %.2f exceeds max %.2f", ErrInvalidConfig, c.MinSlideDuration, c.MaxSlideDuration)
	case c.FadeDuration < 0:
		return fmt.Errorf("%w: negative fade %.2f", ErrInvalidConfig, c.FadeDuration)
	case c.CRF < 0 || c.CRF > 51:
		return fmt.Errorf("%w: crf %d", ErrInvalidConfig, c.CRF)
	case c.VideoCodec == "" || c.AudioCodec == "":
		return fmt.Errorf("%w: codecs must be set", ErrInvalidConfig)
	}
	return nil
}

// ClipDuration returns how long a slide stays on screen for a narration
// of the given length. Zero or negative narration means a silent slide.
func (c VideoConfig) ClipDuration(narration float64) float64 {
	if narration <= 0 {
		return c.MinSlideDuration
	}
	d := narration + 1.0
	if d < c.MinSlideDuration {
		return c.MinSlideDuration
	}
	if d > c.MaxSlideDuration {
		return c.MaxSlideDuration
	}
	return d
}

// fade is the fade length used for a clip, never more than half of it
func (c VideoConfig) fade(duration float64) float64 {
	f := c.FadeDuration
	if f > duration/2 {
		f = duration / 2
	}
	return f
}
