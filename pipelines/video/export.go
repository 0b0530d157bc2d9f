package video

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ExportJob names where a run's export works and what it produces
type ExportJob struct {
	WorkDir string
	Name    string // output file name; generated when empty
}

// Exporter joins ordered clips into the final video
type Exporter interface {
	Export(ctx context.Context, clips []*Clip, job ExportJob) (*Output, error)
}

// FFmpegExporter concatenates clips with the concat demuxer and re-encodes
type FFmpegExporter struct {
	Config VideoConfig
	Runner Runner
	Prober Prober
}

func NewFFmpegExporter(cfg VideoConfig, runner Runner, prober Prober) *FFmpegExporter {
	return &FFmpegExporter{Config: cfg, Runner: runner, Prober: prober}
}

func (e *FFmpegExporter) Export(ctx context.Context, clips []*Clip, job ExportJob) (*Output, error) {
	if len(clips) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrExport, ErrNoClips)
	}

	paths := make([]string, 0, len(clips))
	rescale := false
	var sum float64
	for _, c := range clips {
		abs, err := filepath.Abs(c.Path)
		if err != nil {
			abs = c.Path
		}
		paths = append(paths, abs)
		if c.Width != e.Config.Width || c.Height != e.Config.Height {
			rescale = true
		}
		sum += c.Duration
	}

	listPath := filepath.Join(job.WorkDir, "concat_list.txt")
	if err := os.WriteFile(listPath, []byte(ConcatList(paths)), 0644); err != nil {
		return nil, fmt.Errorf("%w: write concat list: %w", ErrExport, err)
	}

	outDir := e.Config.OutputDir
	if outDir == "" {
		outDir = os.TempDir()
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create output dir: %w", ErrExport, err)
	}
	name := job.Name
	if name == "" {
		name = fmt.Sprintf("video_%d.mp4", time.Now().UnixNano())
	}
	outPath := filepath.Join(outDir, name)

	music := e.Config.BackgroundMusic
	if music != "" {
		if _, err := os.Stat(music); err != nil {
			log.Printf("[VIDEO] Background music %s unavailable, exporting without it: %v", music, err)
			music = ""
		}
	}

	args := ExportArgs(ExportParams{
		List:       listPath,
		Music:      music,
		Output:     outPath,
		Width:      e.Config.Width,
		Height:     e.Config.Height,
		Rescale:    rescale,
		FPS:        e.Config.FPS,
		Codec:      e.Config.VideoCodec,
		AudioCodec: e.Config.AudioCodec,
		Preset:     e.Config.Preset,
		CRF:        e.Config.CRF,
	})
	if _, err := e.Runner.Run(ctx, "ffmpeg", args...); err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("%w: %w", ErrExport, err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: output missing: %w", ErrExport, err)
	}

	out := &Output{
		Path:     outPath,
		SizeMB:   float64(info.Size()) / (1024 * 1024),
		Duration: sum,
	}
	if e.Prober != nil {
		if d, err := e.Prober.Duration(ctx, outPath); err == nil && d > 0 {
			out.Duration = d
		} else if err != nil {
			log.Printf("[VIDEO] Could not probe output, using clip total: %v", err)
		}
	}

	if e.Config.Subtitles {
		srtPath := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".srt"
		if err := os.WriteFile(srtPath, []byte(BuildSRT(clips)), 0644); err != nil {
			log.Printf("[VIDEO] Could not write subtitles: %v", err)
		} else {
			out.SubtitlePath = srtPath
		}
	}

	return out, nil
}

// BuildSRT writes one subtitle cue per clip, spanning the clip's time range
func BuildSRT(clips []*Clip) string {
	var b strings.Builder
	var start float64
	for i, c := range clips {
		end := start + c.Duration
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTime(start), srtTime(end), strings.TrimSpace(c.Text))
		start = end
	}
	return b.String()
}

func srtTime(sec float64) string {
	ms := int64(sec*1000 + 0.5)
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
