package video

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

type recordingExporter struct {
	calls int
}

func (e *recordingExporter) Export(context.Context, []*Clip, ExportJob) (*Output, error) {
	e.calls++
	return &Output{Path: "unused.mp4"}, nil
}

type staticLogos struct{ company string }

func (s *staticLogos) Resolve(_ context.Context, company string) (image.Image, bool) {
	s.company = company
	return InitialsLogo(company, testFonts), false
}

func testGenerator(t *testing.T, runner *fakeRunner) *Generator {
	t.Helper()
	return &Generator{
		Config:   smallConfig(t),
		Fonts:    testFonts,
		Narrator: fakeSynth{duration: 4},
		Runner:   runner,
		Prober:   fakeProber{fallback: 25},
		Logos:    &staticLogos{},
	}
}

func TestGenerate_EmptySlidesTouchesNothing(t *testing.T) {
	exporter := &recordingExporter{}
	g := testGenerator(t, &fakeRunner{})
	g.Exporter = exporter

	res, err := g.Generate(context.Background(), nil, "Acme", GenerateOptions{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoSlides)
	assert.Zero(t, exporter.calls)

	entries, err := os.ReadDir(g.Config.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	g := testGenerator(t, &fakeRunner{})
	g.Config.FPS = 0
	_, err := g.Generate(context.Background(), testSlides(2), "Acme", GenerateOptions{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGenerate_FullRun(t *testing.T) {
	runner := &fakeRunner{}
	g := testGenerator(t, runner)
	logos := g.Logos.(*staticLogos)

	var progress []int
	res, err := g.Generate(context.Background(), testSlides(5), "Acme Corp", GenerateOptions{
		Template: Professional,
		Name:     "acme.mp4",
		Progress: func(done, _ int) { progress = append(progress, done) },
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", logos.company)
	assert.Equal(t, filepath.Join(g.Config.OutputDir, "acme.mp4"), res.VideoPath)
	assert.FileExists(t, res.VideoPath)
	assert.Len(t, progress, 5)

	assert.Equal(t, int64(5), res.Metrics.TotalSlides)
	assert.Equal(t, int64(5), res.Metrics.ProcessedSlides)
	assert.InDelta(t, 25.0, res.Metrics.TotalDuration, 1e-9, "five clips of narration plus one second")
	assert.Greater(t, res.Metrics.FileSizeMB, 0.0)

	// 5 clip encodes then one export
	calls := runner.callsFor("ffmpeg")
	require.Len(t, calls, 6)
	workDir := filepath.Dir(argValue(calls[0], "-i"))
	assert.NoDirExists(t, workDir, "work dir is removed after the run")
}

func TestGenerate_AssemblerErrorCleansUp(t *testing.T) {
	g := testGenerator(t, &fakeRunner{})
	var workDir string
	g.NewAssembler = func(dir string, _ *SlideMetrics) Assembler {
		workDir = dir
		return NewCoordinator(&stubBuilder{fail: map[int]bool{0: true, 1: true}}, nil)
	}
	exporter := &recordingExporter{}
	g.Exporter = exporter

	_, err := g.Generate(context.Background(), testSlides(2), "Acme", GenerateOptions{})
	assert.ErrorIs(t, err, ErrNoClips)
	assert.Zero(t, exporter.calls)
	require.NotEmpty(t, workDir)
	assert.NoDirExists(t, workDir)
}

func TestConfigFromPipeline(t *testing.T) {
	vc := ConfigFromPipeline(common.PipelineConfig{
		OutputDir:     "/out",
		Subtitles:     true,
		MusicPath:     "bg.mp3",
		LogoEveryPage: true,
	})
	assert.Equal(t, "/out", vc.OutputDir)
	assert.True(t, vc.Subtitles)
	assert.Equal(t, "bg.mp3", vc.BackgroundMusic)
	assert.Equal(t, LogoEverySlide, vc.LogoMode)
	assert.Equal(t, 1080, vc.Width)
}
