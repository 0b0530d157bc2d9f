package video

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"

	"github.com/fogleman/gg"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

// Layout constants are expressed for a 1080 px wide canvas and scaled
const (
	baseWidth     = 1080.0
	padding       = 80.0
	titleSize     = 80.0
	bodySize      = 52.0
	smallSize     = 40.0
	logoDrawSize  = 150.0
	cardHeight    = 180.0
	cardGap       = 30.0
	cardRadius    = 20.0
	iconSize      = 30.0
	lineSpacing   = 60.0
	maxCards      = 4
	maxCardLines  = 2
	footerOffset  = 120.0
	progressWidth = 8.0
)

var errFontFallback = errors.New("no TrueType font available, drew with bitmap face")

// PostProcessor adjusts a finished slide, e.g. sharpening
type PostProcessor func(image.Image) (image.Image, error)

// Renderer draws slides as still images sized for vertical video
type Renderer struct {
	Config      VideoConfig
	Fonts       *FontSet
	PostProcess PostProcessor
}

func NewRenderer(cfg VideoConfig, fonts *FontSet) *Renderer {
	return &Renderer{Config: cfg, Fonts: fonts}
}

// Render draws slide number index (1-based) of total. It never fails: the
// result is always Width×Height, and sub-step problems are reported as
// Degraded with the partially drawn image.
func (r *Renderer) Render(slide common.Slide, tmpl Template, index, total int, logo image.Image) (res Result[image.Image]) {
	w, h := r.Config.Width, r.Config.Height
	scheme := tmpl.Scheme()

	defer func() {
		if p := recover(); p != nil {
			log.Printf("[VIDEO] Slide %d render panicked: %v", index, p)
			res = Degraded(plainSlide(w, h, scheme), fmt.Errorf("render panic: %v", p))
		}
	}()

	if total < index {
		total = index
	}
	if total < 1 {
		total = 1
	}

	var problems []error
	if r.Fonts.Fallback() {
		problems = append(problems, errFontFallback)
	}

	s := float64(w) / baseWidth
	dc := gg.NewContext(w, h)
	drawBackground(dc, scheme, s)

	pad := padding * s
	titleY := pad + 40*s
	if logo != nil && (index == 1 || r.Config.LogoMode == LogoEverySlide) {
		if err := drawLogo(dc, logo, s); err != nil {
			log.Printf("[VIDEO] Slide %d logo skipped: %v", index, err)
			problems = append(problems, err)
		} else {
			titleY = pad + logoDrawSize*s + 40*s
		}
	}

	titleBottom := r.drawTitle(dc, slide.Title, scheme, titleY, s)
	footerY := float64(h) - footerOffset*s
	r.drawCards(dc, slide.Content, scheme, titleBottom+70*s, footerY-40*s, s)
	r.drawFooter(dc, scheme, index, total, footerY, s)

	var img image.Image = dc.Image()
	if r.PostProcess != nil {
		out, err := r.PostProcess(img)
		switch {
		case err != nil:
			log.Printf("[VIDEO] Slide %d post-processing failed: %v", index, err)
			problems = append(problems, fmt.Errorf("post-process: %w", err))
		case out == nil || out.Bounds().Dx() != w || out.Bounds().Dy() != h:
			problems = append(problems, errors.New("post-process changed the slide size"))
		default:
			img = out
		}
	}

	if len(problems) > 0 {
		return Degraded(img, errors.Join(problems...))
	}
	return OK(img)
}

func drawBackground(dc *gg.Context, sc Scheme, s float64) {
	w, h := float64(dc.Width()), float64(dc.Height())

	switch sc.Background {
	case BackgroundGradient:
		grad := gg.NewLinearGradient(0, 0, 0, h)
		grad.AddColorStop(0, sc.BG)
		grad.AddColorStop(1, sc.BGEnd)
		dc.SetFillStyle(grad)
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
	case BackgroundPattern:
		dc.SetColor(sc.BG)
		dc.Clear()
		step := 100 * s
		if step < 4 {
			step = 4
		}
		dc.SetColor(sc.Pattern)
		dc.SetLineWidth(2 * s)
		for x := -h; x < w; x += step {
			dc.DrawLine(x, 0, x+h, h)
		}
		dc.Stroke()
	default:
		dc.SetColor(sc.BG)
		dc.Clear()
		dc.SetColor(sc.Accent)
		dc.DrawRectangle(0, 0, w, 12*s)
		dc.Fill()
	}
}

func drawLogo(dc *gg.Context, logo image.Image, s float64) error {
	b := logo.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return errors.New("logo has no pixels")
	}
	size := int(logoDrawSize * s)
	if size < 1 {
		size = 1
	}
	scaled := scaleSquare(logo, size)
	dc.DrawImage(scaled, (dc.Width()-size)/2, int(padding*s))
	return nil
}

// drawTitle draws the upper-cased title centred and returns its bottom edge
func (r *Renderer) drawTitle(dc *gg.Context, title string, sc Scheme, y, s float64) float64 {
	dc.SetFontFace(r.Fonts.Bold(titleSize * s))
	dc.SetColor(sc.Accent)

	maxW := float64(dc.Width()) - 2*padding*s
	lines := dc.WordWrap(strings.ToUpper(strings.TrimSpace(title)), maxW)
	if len(lines) > 2 {
		lines = lines[:2]
	}
	lh := dc.FontHeight() * 1.2
	cx := float64(dc.Width()) / 2
	for i, line := range lines {
		dc.DrawStringAnchored(line, cx, y+float64(i)*lh, 0.5, 1)
	}
	return y + float64(len(lines))*lh
}

// drawCards lays out up to four sentence cards between top and bottom.
// Sentences that do not fit are dropped.
func (r *Renderer) drawCards(dc *gg.Context, content string, sc Scheme, top, bottom, s float64) {
	points := SplitSentences(content)
	if len(points) > maxCards {
		points = points[:maxCards]
	}

	pad := padding * s
	cardW := float64(dc.Width()) - 2*pad
	cardH := cardHeight * s
	face := r.Fonts.Regular(bodySize * s)

	y := top
	for _, point := range points {
		if y+cardH > bottom {
			break
		}
		dc.DrawRoundedRectangle(pad, y, cardW, cardH, cardRadius*s)
		dc.SetColor(sc.Card)
		dc.Fill()

		iconX := pad + 30*s
		dc.DrawCircle(iconX+iconSize*s/2, y+cardH/2, iconSize*s/2)
		dc.SetColor(sc.Accent)
		dc.Fill()

		dc.SetFontFace(face)
		dc.SetColor(sc.Primary)
		textX := iconX + iconSize*s + 50*s
		lines := dc.WordWrap(point, pad+cardW-textX-30*s)
		if len(lines) > maxCardLines {
			lines = lines[:maxCardLines]
		}
		textY := y + 30*s
		for _, line := range lines {
			dc.DrawStringAnchored(line, textX, textY, 0, 1)
			textY += lineSpacing * s
		}

		y += cardH + cardGap*s
	}
}

func (r *Renderer) drawFooter(dc *gg.Context, sc Scheme, index, total int, y, s float64) {
	pad := padding * s
	w := float64(dc.Width())
	barW := w - 2*pad

	dc.SetLineWidth(progressWidth * s)
	dc.SetColor(sc.Secondary)
	dc.DrawLine(pad, y, w-pad, y)
	dc.Stroke()

	fill := barW * float64(index) / float64(total)
	if fill > barW {
		fill = barW
	}
	if fill > 0 {
		dc.SetColor(sc.Accent)
		dc.DrawLine(pad, y, pad+fill, y)
		dc.Stroke()
	}

	dc.SetFontFace(r.Fonts.Regular(smallSize * s))
	dc.SetColor(sc.Secondary)
	dc.DrawStringAnchored(fmt.Sprintf("%d / %d", index, total), pad, y+20*s, 0, 1)
	if r.Config.Watermark != "" {
		dc.DrawStringAnchored(r.Config.Watermark, w-pad, y+20*s, 1, 1)
	}
}

// SplitSentences breaks slide content into the fragments shown on cards
func SplitSentences(content string) []string {
	var out []string
	for _, part := range strings.Split(content, ".") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func plainSlide(w, h int, sc Scheme) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBAModel.Convert(sc.BG).(color.RGBA)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	return img
}
