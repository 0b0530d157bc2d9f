package video

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// NarrationRequest asks for the narration of one slide
type NarrationRequest struct {
	Text     string
	Language string
	Speed    float64
	OutPath  string // final audio file, .wav
}

// Synthesizer produces timed narration audio. Failures are returned as a
// Failed result so callers can fall back to a silent slide.
type Synthesizer interface {
	Synthesize(ctx context.Context, req NarrationRequest) Result[*Narration]
}

// Narrator synthesizes speech with a SpeechEngine and post-processes it
// with ffmpeg (gain and tempo). It never retries.
type Narrator struct {
	Engine SpeechEngine
	Runner Runner
	Prober Prober
}

func NewNarrator(engine SpeechEngine, runner Runner, prober Prober) *Narrator {
	return &Narrator{Engine: engine, Runner: runner, Prober: prober}
}

func (n *Narrator) Synthesize(ctx context.Context, req NarrationRequest) Result[*Narration] {
	text := CleanNarrationText(req.Text)
	if text == "" {
		return Failed[*Narration](ErrEmptyNarration)
	}
	if n.Engine == nil {
		return Failed[*Narration](errors.New("no speech engine configured"))
	}

	base := strings.TrimSuffix(req.OutPath, filepath.Ext(req.OutPath))
	raw := base + "_raw." + n.Engine.Ext()
	defer os.Remove(raw)

	if err := n.Engine.Speak(ctx, text, req.Language, raw); err != nil {
		return Failed[*Narration](fmt.Errorf("speech synthesis: %w", err))
	}

	if _, err := n.Runner.Run(ctx, "ffmpeg", NarrationArgs(raw, req.OutPath, req.Speed)...); err != nil {
		os.Remove(req.OutPath)
		return Failed[*Narration](fmt.Errorf("audio post-processing: %w", err))
	}

	dur, err := n.Prober.Duration(ctx, req.OutPath)
	if err != nil {
		os.Remove(req.OutPath)
		return Failed[*Narration](fmt.Errorf("read narration duration: %w", err))
	}
	if dur <= 0 {
		os.Remove(req.OutPath)
		return Failed[*Narration](fmt.Errorf("narration has no duration"))
	}

	return OK(&Narration{Path: req.OutPath, Duration: dur})
}
