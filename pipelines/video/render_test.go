package video

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRender_AlwaysConfiguredSize(t *testing.T) {
	cfg := smallConfig(t)
	r := NewRenderer(cfg, testFonts)

	inputs := []common.Slide{
		{Title: "", Content: ""},
		{Title: "short", Content: "one"},
		{Title: strings.Repeat("VERY LONG TITLE ", 20), Content: strings.Repeat("A sentence that keeps going. ", 40)},
		{Title: "unicode ✓ ünïcödé", Content: "Emoji 🚀 here. Tabs\tand\nnewlines."},
	}

	for _, tmpl := range append(Templates(), Template(42)) {
		for i, s := range inputs {
			res := r.Render(s, tmpl, i+1, len(inputs), nil)
			require.NotEqual(t, StatusFailed, res.Status)
			require.NotNil(t, res.Value)
			assert.Equal(t, cfg.Width, res.Value.Bounds().Dx(), "template %s input %d", tmpl, i)
			assert.Equal(t, cfg.Height, res.Value.Bounds().Dy(), "template %s input %d", tmpl, i)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	cfg := smallConfig(t)
	r := NewRenderer(cfg, testFonts)
	slide := common.Slide{Title: "The Drop", Content: "Stop scrolling. This is big. Apply now."}
	logo := InitialsLogo("Acme Corp", testFonts)

	a := r.Render(slide, Modern, 1, 6, logo)
	b := r.Render(slide, Modern, 1, 6, logo)
	assert.Equal(t, encodePNG(t, a.Value), encodePNG(t, b.Value))

	c := r.Render(slide, Colorful, 1, 6, logo)
	assert.NotEqual(t, encodePNG(t, a.Value), encodePNG(t, c.Value))
}

func TestRender_UnknownTemplateFallsBackToTechForward(t *testing.T) {
	cfg := smallConfig(t)
	r := NewRenderer(cfg, testFonts)
	slide := common.Slide{Title: "x", Content: "y"}

	def := r.Render(slide, TechForward, 2, 3, nil)
	parsed := r.Render(slide, ParseTemplate("does-not-exist"), 2, 3, nil)
	outOfRange := r.Render(slide, Template(42), 2, 3, nil)
	assert.Equal(t, encodePNG(t, def.Value), encodePNG(t, parsed.Value))
	assert.Equal(t, encodePNG(t, def.Value), encodePNG(t, outOfRange.Value))
}

func TestRender_FontFallbackIsDegraded(t *testing.T) {
	cfg := smallConfig(t)
	r := NewRenderer(cfg, LoadFonts(FontCandidates{Bold: []string{"/nonexistent.ttf"}}))

	res := r.Render(common.Slide{Title: "t", Content: "c"}, TechForward, 1, 1, nil)
	assert.Equal(t, StatusDegraded, res.Status)
	assert.ErrorIs(t, res.Reason, errFontFallback)
	assert.Equal(t, cfg.Width, res.Value.Bounds().Dx())
}

func TestRender_EmptyLogoIsDegraded(t *testing.T) {
	cfg := smallConfig(t)
	r := NewRenderer(cfg, testFonts)

	empty := image.NewRGBA(image.Rect(0, 0, 0, 0))
	res := r.Render(common.Slide{Title: "t", Content: "c"}, TechForward, 1, 1, empty)
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, cfg.Height, res.Value.Bounds().Dy())
}

func TestRender_LogoOnlyOnFirstSlideByDefault(t *testing.T) {
	cfg := smallConfig(t)
	logo := InitialsLogo("Acme", testFonts)
	slide := common.Slide{Title: "t", Content: "c"}

	r := NewRenderer(cfg, testFonts)
	withLogo := r.Render(slide, TechForward, 2, 3, logo)
	noLogo := r.Render(slide, TechForward, 2, 3, nil)
	assert.Equal(t, encodePNG(t, noLogo.Value), encodePNG(t, withLogo.Value))

	cfg.LogoMode = LogoEverySlide
	r = NewRenderer(cfg, testFonts)
	everySlide := r.Render(slide, TechForward, 2, 3, logo)
	assert.NotEqual(t, encodePNG(t, noLogo.Value), encodePNG(t, everySlide.Value))
}

func TestRender_PostProcess(t *testing.T) {
	cfg := smallConfig(t)
	slide := common.Slide{Title: "t", Content: "c"}

	t.Run("failure keeps unprocessed image", func(t *testing.T) {
		r := NewRenderer(cfg, testFonts)
		plain := r.Render(slide, TechForward, 1, 1, nil)

		r.PostProcess = func(image.Image) (image.Image, error) { return nil, errors.New("opencv missing") }
		res := r.Render(slide, TechForward, 1, 1, nil)
		assert.Equal(t, StatusDegraded, res.Status)
		assert.Equal(t, encodePNG(t, plain.Value), encodePNG(t, res.Value))
	})

	t.Run("wrong size is rejected", func(t *testing.T) {
		r := NewRenderer(cfg, testFonts)
		r.PostProcess = func(image.Image) (image.Image, error) {
			return image.NewRGBA(image.Rect(0, 0, 10, 10)), nil
		}
		res := r.Render(slide, TechForward, 1, 1, nil)
		assert.Equal(t, StatusDegraded, res.Status)
		assert.Equal(t, cfg.Width, res.Value.Bounds().Dx())
	})

	t.Run("success replaces image", func(t *testing.T) {
		r := NewRenderer(cfg, testFonts)
		r.PostProcess = func(img image.Image) (image.Image, error) {
			out := image.NewRGBA(img.Bounds())
			for i := range out.Pix {
				out.Pix[i] = 255
			}
			return out, nil
		}
		res := r.Render(slide, TechForward, 1, 1, nil)
		assert.Equal(t, StatusOK, res.Status)
		assert.Equal(t, color.RGBA{255, 255, 255, 255}, res.Value.At(5, 5))
	})
}

func TestSplitSentences(t *testing.T) {
	assert.Equal(t, []string{"One", "Two words", "Three"}, SplitSentences("One. Two words.. Three."))
	assert.Empty(t, SplitSentences(" . . "))
}
