package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/adityagirishh/company-resource-consolidator/common"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/dossier"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/enhance"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/share"
	"github.com/adityagirishh/company-resource-consolidator/pipelines/video"
)

// ContentGenerator writes the dossier and the Shorts script
type ContentGenerator interface {
	dossier.Researcher
	GenerateShortsScript(ctx context.Context, companyInfo string) (string, error)
	Close()
}

// RunResult is what one full pipeline run produced
type RunResult struct {
	ID           string                 `json:"id"`
	Company      string                 `json:"company"`
	OutputDir    string                 `json:"output_dir"`
	DossierPath  string                 `json:"dossier_path"`
	ScriptPath   string                 `json:"script_path,omitempty"`
	VideoPath    string                 `json:"video_path,omitempty"`
	SubtitlePath string                 `json:"subtitle_path,omitempty"`
	ShareLink    string                 `json:"share_link,omitempty"`
	Slides       int                    `json:"slides"`
	BrokenLinks  []string               `json:"broken_links,omitempty"`
	Metrics      *video.MetricsSnapshot `json:"metrics,omitempty"`
}

// Pipeline runs e-mail -> dossier -> script -> video -> share link. The
// function fields are the seams tests replace.
type Pipeline struct {
	NewGenerator func(ctx context.Context, cfg common.PipelineConfig) (ContentGenerator, error)
	NewBuilder   func(ctx context.Context, r dossier.Researcher, cfg common.PipelineConfig) *dossier.Builder
	RenderVideo  func(ctx context.Context, cfg common.PipelineConfig, slides []common.Slide, company string, progress video.ProgressFunc) (*video.GenerateResult, error)
	Out          *common.Formatter // nil in server mode
}

func NewPipeline(out *common.Formatter) *Pipeline {
	return &Pipeline{
		NewGenerator: newGeminiGenerator,
		NewBuilder:   dossier.NewBuilder,
		RenderVideo:  renderVideo,
		Out:          out,
	}
}

func newGeminiGenerator(ctx context.Context, cfg common.PipelineConfig) (ContentGenerator, error) {
	if cfg.GeminiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	return common.NewGeminiClient(ctx, cfg.GeminiKey, cfg.Model)
}

func renderVideo(ctx context.Context, cfg common.PipelineConfig, slides []common.Slide, company string, progress video.ProgressFunc) (*video.GenerateResult, error) {
	var post video.PostProcessor
	if cfg.Sharpen {
		post = enhance.NewEnhancer().PostProcessor()
	}
	return video.ProcessVideoPipeline(ctx, cfg, slides, company, post, progress)
}

// Research builds the dossier and writes dossier.txt
func (p *Pipeline) Research(ctx context.Context, gen ContentGenerator, cfg common.PipelineConfig) (*dossier.Result, string, error) {
	email, err := dossier.ReadInput(cfg)
	if err != nil {
		return nil, "", err
	}
	if p.Out != nil {
		p.Out.Researching(inputName(cfg))
	}

	builder := p.NewBuilder(ctx, gen, cfg)
	defer builder.Cache.Close()

	res, err := builder.Build(ctx, email)
	if err != nil {
		return nil, "", err
	}
	path, err := dossier.WriteDossier(cfg.OutputDir, res)
	if err != nil {
		return nil, "", err
	}
	if p.Out != nil {
		for _, l := range res.Links {
			p.Out.LinkCheck(l.URL, l.Valid)
		}
		p.Out.DossierDone(path, res.Company)
	}
	return res, path, nil
}

// Script generates the Shorts script from dossier text and writes script.txt
func (p *Pipeline) Script(ctx context.Context, gen ContentGenerator, cfg common.PipelineConfig, info string) ([]common.Slide, string, error) {
	if p.Out != nil {
		p.Out.Scripting()
	}
	script, err := gen.GenerateShortsScript(ctx, info)
	if err != nil {
		return nil, "", fmt.Errorf("generate script: %w", err)
	}
	slides := common.ParseScriptToSlides(script)
	if len(slides) == 0 {
		return nil, "", fmt.Errorf("generated script has no slides: %w", video.ErrNoSlides)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, "", err
	}
	path := filepath.Join(cfg.OutputDir, "script.txt")
	if err := os.WriteFile(path, []byte(script), 0644); err != nil {
		return nil, "", fmt.Errorf("write script: %w", err)
	}
	if p.Out != nil {
		p.Out.ScriptDone(path, len(slides))
	}
	return slides, path, nil
}

// Video renders slides into the placement video
func (p *Pipeline) Video(ctx context.Context, cfg common.PipelineConfig, slides []common.Slide, company string, progress video.ProgressFunc) (*video.GenerateResult, error) {
	if p.Out != nil {
		p.Out.Rendering(len(slides))
		if progress == nil {
			progress = p.Out.Progress
		}
	}
	out, err := p.RenderVideo(ctx, cfg, slides, company, progress)
	if err != nil {
		return nil, err
	}
	if p.Out != nil {
		p.Out.VideoDone(out.VideoPath, out.Metrics.FileSizeMB, out.Metrics.TotalDuration, out.Elapsed)
		if out.Metrics.FailedSlides > 0 {
			p.Out.Warning(fmt.Sprintf("%d of %d slides were skipped", out.Metrics.FailedSlides, out.Metrics.TotalSlides))
		}
	}
	return out, nil
}

// Run executes every step. The share link is built even when video
// rendering is skipped.
func (p *Pipeline) Run(ctx context.Context, cfg common.PipelineConfig, progress video.ProgressFunc) (*RunResult, error) {
	gen, err := p.NewGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer gen.Close()

	res := &RunResult{OutputDir: cfg.OutputDir}

	dos, dossierPath, err := p.Research(ctx, gen, cfg)
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}
	res.Company = dos.Company
	res.DossierPath = dossierPath
	res.BrokenLinks = dos.BrokenLinks()

	slides, scriptPath, err := p.Script(ctx, gen, cfg, dos.Text)
	if err != nil {
		return res, fmt.Errorf("script: %w", err)
	}
	res.ScriptPath = scriptPath
	res.Slides = len(slides)

	if !cfg.SkipVideo {
		out, err := p.Video(ctx, cfg, slides, dos.Company, progress)
		if err != nil {
			return res, fmt.Errorf("video: %w", err)
		}
		res.VideoPath = out.VideoPath
		res.SubtitlePath = out.SubtitlePath
		res.Metrics = &out.Metrics
	}

	res.ShareLink = share.WhatsAppLink(share.ComposeMessage(dos.Company, dos.Dossier.String(), res.VideoPath), cfg.Phone)
	if p.Out != nil {
		p.Out.ShareLink(res.ShareLink)
	}
	return res, nil
}

// RunOutputDir is the per-run directory under base
func RunOutputDir(base string, at time.Time) string {
	return filepath.Join(base, "output_"+at.Format("20060102_150405"))
}

// NewRunID returns a fresh run identifier
func NewRunID() string {
	return uuid.NewString()
}

// recordRun stores the outcome of a run; history may be nil
func recordRun(ctx context.Context, history *common.History, id string, cfg common.PipelineConfig, started time.Time, res *RunResult, runErr error) {
	if history == nil {
		return
	}
	run := common.Run{
		ID:        id,
		Status:    common.RunCompleted,
		OutputDir: cfg.OutputDir,
		StartedAt: started,
		Duration:  time.Since(started).Seconds(),
	}
	if res != nil {
		run.Company = res.Company
		run.VideoPath = res.VideoPath
		run.Slides = res.Slides
		if res.Metrics != nil {
			run.Failed = int(res.Metrics.FailedSlides)
		}
	}
	if runErr != nil {
		run.Status = common.RunFailed
		run.Error = runErr.Error()
	}
	if err := history.Record(ctx, run); err != nil {
		log.Printf("[HISTORY] Could not record run %s: %v", id, err)
	}
}

func inputName(cfg common.PipelineConfig) string {
	if cfg.EmailPath != "" {
		return filepath.Base(cfg.EmailPath)
	}
	return "inline e-mail"
}
