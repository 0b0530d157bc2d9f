package video

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"
)

// SlideMetrics counts what happened to the slides of one run.
// All fields are safe for concurrent use.
type SlideMetrics struct {
	TotalSlides     atomic.Int64
	ProcessedSlides atomic.Int64
	FailedSlides    atomic.Int64
	DegradedSlides  atomic.Int64
	SilentSlides    atomic.Int64

	durationBits   atomic.Uint64 // float64 seconds
	fileSizeBits   atomic.Uint64 // float64 MB
	generationNano atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of SlideMetrics
type MetricsSnapshot struct {
	TotalSlides     int64         `json:"total_slides"`
	ProcessedSlides int64         `json:"processed_slides"`
	FailedSlides    int64         `json:"failed_slides"`
	DegradedSlides  int64         `json:"degraded_slides"`
	SilentSlides    int64         `json:"silent_slides"`
	TotalDuration   float64       `json:"total_duration"`
	FileSizeMB      float64       `json:"file_size_mb"`
	GenerationTime  time.Duration `json:"generation_time"`
}

// AddDuration adds seconds to the total clip duration
func (m *SlideMetrics) AddDuration(seconds float64) {
	for {
		old := m.durationBits.Load()
		next := math.Float64bits(math.Float64frombits(old) + seconds)
		if m.durationBits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (m *SlideMetrics) SetFileSize(mb float64) {
	m.fileSizeBits.Store(math.Float64bits(mb))
}

func (m *SlideMetrics) SetGenerationTime(d time.Duration) {
	m.generationNano.Store(int64(d))
}

func (m *SlideMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TotalSlides:     m.TotalSlides.Load(),
		ProcessedSlides: m.ProcessedSlides.Load(),
		FailedSlides:    m.FailedSlides.Load(),
		DegradedSlides:  m.DegradedSlides.Load(),
		SilentSlides:    m.SilentSlides.Load(),
		TotalDuration:   math.Float64frombits(m.durationBits.Load()),
		FileSizeMB:      math.Float64frombits(m.fileSizeBits.Load()),
		GenerationTime:  time.Duration(m.generationNano.Load()),
	}
}

// Format renders a snapshot as "key: value" lines
func (s MetricsSnapshot) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "slides_total: %d\n", s.TotalSlides)
	fmt.Fprintf(&b, "slides_processed: %d\n", s.ProcessedSlides)
	fmt.Fprintf(&b, "slides_failed: %d\n", s.FailedSlides)
	fmt.Fprintf(&b, "slides_degraded: %d\n", s.DegradedSlides)
	fmt.Fprintf(&b, "slides_silent: %d\n", s.SilentSlides)
	fmt.Fprintf(&b, "duration_seconds: %.2f\n", s.TotalDuration)
	fmt.Fprintf(&b, "file_size_mb: %.2f\n", s.FileSizeMB)
	fmt.Fprintf(&b, "generation_seconds: %.2f\n", s.GenerationTime.Seconds())
	return b.String()
}
