package video

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

var testFonts = LoadFonts(FontCandidates{Embedded: true})

// smallConfig keeps rendering fast while preserving the 9:16 layout
func smallConfig(t *testing.T) VideoConfig {
	t.Helper()
	cfg := DefaultVideoConfig()
	cfg.Width, cfg.Height = 270, 480
	cfg.OutputDir = t.TempDir()
	return cfg
}

func testSlides(n int) []common.Slide {
	slides := make([]common.Slide, n)
	for i := range slides {
		slides[i] = common.Slide{
			Title:   "Slide " + string(rune('A'+i)),
			Content: "First point here. Second point follows. Third.",
		}
	}
	return slides
}

// fakeRunner records invocations and writes the output file (last argument)
// of every ffmpeg call so later os.Stat checks succeed.
type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	fail  func(name string, args []string) error
	probe []byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if f.fail != nil {
		if err := f.fail(name, args); err != nil {
			return []byte("boom"), err
		}
	}
	if name == "ffprobe" {
		return f.probe, nil
	}
	if name == "ffmpeg" && len(args) > 0 {
		out := args[len(args)-1]
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(out, []byte("media"), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (f *fakeRunner) callsFor(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		if c[0] == name {
			out = append(out, c[1:])
		}
	}
	return out
}

type fakeProber struct {
	durations map[string]float64
	fallback  float64
	err       error
}

func (p fakeProber) Duration(_ context.Context, path string) (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	if d, ok := p.durations[filepath.Base(path)]; ok {
		return d, nil
	}
	return p.fallback, nil
}

// fakeSynth returns a fixed narration length, or fails for matching text
type fakeSynth struct {
	duration float64
	failOn   string
}

func (s fakeSynth) Synthesize(_ context.Context, req NarrationRequest) Result[*Narration] {
	if s.failOn != "" && strings.Contains(req.Text, s.failOn) {
		return Failed[*Narration](errors.New("tts down"))
	}
	if err := os.WriteFile(req.OutPath, []byte("wav"), 0o644); err != nil {
		return Failed[*Narration](err)
	}
	return OK(&Narration{Path: req.OutPath, Duration: s.duration})
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}
