package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

// BuildRequest is everything needed to turn one slide into a clip
type BuildRequest struct {
	Slide    common.Slide
	Template Template
	Index    int // 0-based position in the run
	Total    int
	Logo     image.Image
	Language string
	Speed    float64
}

// Builder turns a slide into an encoded clip
type Builder interface {
	Build(ctx context.Context, req BuildRequest) Result[*Clip]
}

// ClipBuilder renders, narrates and encodes a single slide
type ClipBuilder struct {
	Config   VideoConfig
	Renderer *Renderer
	Narrator Synthesizer // nil means every slide is silent
	Runner   Runner
	WorkDir  string
}

// Build reports failures as results. A Degraded result means the clip
// exists but something was skipped (silent narration, logo, post-processing).
func (b *ClipBuilder) Build(ctx context.Context, req BuildRequest) Result[*Clip] {
	if b.Config.SlideTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Config.SlideTimeout)
		defer cancel()
	}

	n := req.Index + 1
	var problems []error

	rendered := b.Renderer.Render(req.Slide, req.Template, n, req.Total, req.Logo)
	if rendered.Status == StatusDegraded {
		problems = append(problems, rendered.Reason)
	}

	imgPath, err := RenderedSlide{Index: req.Index, Image: rendered.Value}.Persist(b.WorkDir)
	if err != nil {
		return Failed[*Clip](fmt.Errorf("slide %d: persist image: %w", n, err))
	}
	clip := &Clip{
		Index:  req.Index,
		Width:  b.Config.Width,
		Height: b.Config.Height,
		Title:  req.Slide.Title,
		Text:   req.Slide.Content,
		files:  []string{imgPath},
	}

	var narration *Narration
	if b.Narrator != nil {
		res := b.Narrator.Synthesize(ctx, NarrationRequest{
			Text:     req.Slide.Content,
			Language: req.Language,
			Speed:    req.Speed,
			OutPath:  filepath.Join(b.WorkDir, fmt.Sprintf("narration_%03d.wav", n)),
		})
		if res.Ok() {
			narration = res.Value
			clip.files = append(clip.files, narration.Path)
		} else {
			log.Printf("[VIDEO] Slide %d narration failed, using silence: %v", n, res.Reason)
			problems = append(problems, fmt.Errorf("narration: %w", res.Reason))
		}
	}

	if err := ctx.Err(); err != nil {
		clip.Close()
		return Failed[*Clip](fmt.Errorf("slide %d: %w", n, err))
	}

	params := ClipParams{
		Image:      imgPath,
		Output:     filepath.Join(b.WorkDir, fmt.Sprintf("clip_%03d.mp4", n)),
		FPS:        b.Config.FPS,
		Codec:      b.Config.VideoCodec,
		AudioCodec: b.Config.AudioCodec,
		Preset:     b.Config.Preset,
		CRF:        b.Config.CRF,
	}
	if narration != nil {
		params.Audio = narration.Path
		params.Duration = b.Config.ClipDuration(narration.Duration)
	} else {
		clip.Silent = true
		params.Duration = b.Config.MinSlideDuration
	}
	params.Fade = b.Config.fade(params.Duration)

	clip.files = append(clip.files, params.Output)
	if _, err := b.Runner.Run(ctx, "ffmpeg", ClipArgs(params)...); err != nil {
		clip.Close()
		return Failed[*Clip](fmt.Errorf("slide %d: encode clip: %w", n, err))
	}
	if _, err := os.Stat(params.Output); err != nil {
		clip.Close()
		return Failed[*Clip](fmt.Errorf("slide %d: clip missing after encode: %w", n, err))
	}

	clip.Path = params.Output
	clip.Duration = params.Duration

	if len(problems) > 0 {
		return Degraded(clip, errors.Join(problems...))
	}
	return OK(clip)
}

// Persist writes the slide as slide_NNN.png (1-based) under dir for the encoder
func (r RenderedSlide) Persist(dir string) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("slide_%03d.png", r.Index+1))
	if err := common.SaveImage(path, r.Image); err != nil {
		return "", err
	}
	return path, nil
}
