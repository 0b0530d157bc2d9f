package video

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"time"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

// Assembler turns slides into ordered clips
type Assembler interface {
	Assemble(ctx context.Context, slides []common.Slide, opts AssembleOptions) ([]*Clip, error)
}

// LogoSource resolves a company logo; it must always return an image
type LogoSource interface {
	Resolve(ctx context.Context, company string) (image.Image, bool)
}

// GenerateOptions are the per-call choices of a run
type GenerateOptions struct {
	Template Template
	Language string
	Speed    float64
	Name     string // output file name
	Progress ProgressFunc
}

// Generator runs the whole slide-to-video flow
type Generator struct {
	Config      VideoConfig
	Fonts       *FontSet
	Narrator    Synthesizer
	Runner      Runner
	Prober      Prober
	Logos       LogoSource
	PostProcess PostProcessor

	// NewAssembler and Exporter default to the ffmpeg-backed implementations
	NewAssembler func(workDir string, metrics *SlideMetrics) Assembler
	Exporter     Exporter
}

func NewGenerator(cfg VideoConfig, narrator Synthesizer) *Generator {
	fonts := DefaultFonts()
	runner := ExecRunner{}
	return &Generator{
		Config:   cfg,
		Fonts:    fonts,
		Narrator: narrator,
		Runner:   runner,
		Prober:   FFProbe{Runner: runner},
		Logos:    NewLogoFetcher(fonts),
	}
}

// Generate builds a video from slides. An empty slide list fails with
// ErrNoSlides before anything touches the filesystem. Temporary files are
// removed whatever the outcome.
func (g *Generator) Generate(ctx context.Context, slides []common.Slide, company string, opts GenerateOptions) (*GenerateResult, error) {
	if len(slides) == 0 {
		return nil, ErrNoSlides
	}
	if err := g.Config.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	metrics := &SlideMetrics{}
	temps := &TempRegistry{}
	defer temps.Cleanup()

	workDir, err := os.MkdirTemp("", "crc-video-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	temps.Add(workDir)

	var logo image.Image
	if g.Logos != nil {
		var fetched bool
		logo, fetched = g.Logos.Resolve(ctx, company)
		log.Printf("[VIDEO] Logo for %q resolved (downloaded: %v)", company, fetched)
	} else {
		logo = InitialsLogo(company, g.Fonts)
	}

	assembler := g.assembler(workDir, metrics)
	log.Printf("[VIDEO] Assembling %d slides with template %s", len(slides), opts.Template)
	clips, err := assembler.Assemble(ctx, slides, AssembleOptions{
		Template: opts.Template,
		Logo:     logo,
		Language: opts.Language,
		Speed:    opts.Speed,
		Progress: opts.Progress,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, c := range clips {
			c.Close()
		}
	}()

	out, err := g.exporter().Export(ctx, clips, ExportJob{WorkDir: workDir, Name: opts.Name})
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	metrics.SetFileSize(out.SizeMB)
	metrics.SetGenerationTime(elapsed)

	snap := metrics.Snapshot()
	log.Printf("[VIDEO] Done: %s (%.1fs, %.1f MB, %d/%d slides, %s)",
		out.Path, out.Duration, out.SizeMB, snap.ProcessedSlides, snap.TotalSlides, elapsed.Round(time.Millisecond))

	return &GenerateResult{
		VideoPath:    out.Path,
		SubtitlePath: out.SubtitlePath,
		Metrics:      snap,
		Elapsed:      elapsed,
	}, nil
}

func (g *Generator) assembler(workDir string, metrics *SlideMetrics) Assembler {
	if g.NewAssembler != nil {
		return g.NewAssembler(workDir, metrics)
	}
	renderer := NewRenderer(g.Config, g.Fonts)
	renderer.PostProcess = g.PostProcess
	return NewCoordinator(&ClipBuilder{
		Config:   g.Config,
		Renderer: renderer,
		Narrator: g.Narrator,
		Runner:   g.Runner,
		WorkDir:  workDir,
	}, metrics)
}

func (g *Generator) exporter() Exporter {
	if g.Exporter != nil {
		return g.Exporter
	}
	return NewFFmpegExporter(g.Config, g.Runner, g.Prober)
}

// ConfigFromPipeline derives the video settings from the CLI/server config
func ConfigFromPipeline(cfg common.PipelineConfig) VideoConfig {
	vc := DefaultVideoConfig()
	vc.OutputDir = cfg.OutputDir
	vc.Subtitles = cfg.Subtitles
	vc.BackgroundMusic = cfg.MusicPath
	if cfg.LogoEveryPage {
		vc.LogoMode = LogoEverySlide
	}
	return vc
}

// ProcessVideoPipeline renders the slides of a script into a video in
// cfg.OutputDir. Missing TTS credentials produce a silent video.
func ProcessVideoPipeline(ctx context.Context, cfg common.PipelineConfig, slides []common.Slide, company string, post PostProcessor, progress ProgressFunc) (*GenerateResult, error) {
	vc := ConfigFromPipeline(cfg)

	var narrator Synthesizer
	runner := ExecRunner{}
	engine, err := NewSpeechEngine(cfg.TTSProvider, cfg.SarvamKey, cfg.DeepgramKey, runner)
	if err != nil {
		log.Printf("[VIDEO] Narration disabled: %v", err)
	} else {
		narrator = NewNarrator(engine, runner, FFProbe{Runner: runner})
	}

	gen := NewGenerator(vc, narrator)
	gen.PostProcess = post

	speed := cfg.Speed
	if speed <= 0 {
		speed = 1.0
	}
	return gen.Generate(ctx, slides, company, GenerateOptions{
		Template: ParseTemplate(cfg.Template),
		Language: cfg.Language,
		Speed:    speed,
		Name:     common.SanitizeFileName(company) + "_placement_video.mp4",
		Progress: progress,
	})
}
