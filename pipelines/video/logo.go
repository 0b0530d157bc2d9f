package video

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

const logoSize = 200

var logoPalette = []color.NRGBA{
	hex("#00F260"), hex("#0575E6"), hex("#F2C94C"), hex("#f2709c"),
	hex("#4facfe"), hex("#6A82FB"), hex("#FC466B"), hex("#38f9d7"),
}

// LogoFetcher resolves a company logo from a Clearbit-style endpoint and
// falls back to a generated initials badge.
type LogoFetcher struct {
	Client   *http.Client
	BaseURL  string // logo URL is BaseURL + "/" + domain
	Fonts    *FontSet
	MaxTries uint
}

func NewLogoFetcher(fonts *FontSet) *LogoFetcher {
	return &LogoFetcher{
		Client:   &http.Client{Timeout: 5 * time.Second},
		BaseURL:  "https://logo.clearbit.com",
		Fonts:    fonts,
		MaxTries: 3,
	}
}

// Resolve never fails: when the download does not yield an image the
// initials badge is returned and fetched is false.
func (f *LogoFetcher) Resolve(ctx context.Context, company string) (img image.Image, fetched bool) {
	img, err := f.fetch(ctx, company)
	if err != nil {
		log.Printf("[LOGO] Using initials for %q: %v", company, err)
		return InitialsLogo(company, f.Fonts), false
	}
	return img, true
}

func (f *LogoFetcher) fetch(ctx context.Context, company string) (image.Image, error) {
	domain := LogoDomain(company)
	if domain == "" {
		return nil, errors.New("no usable company name")
	}
	url := strings.TrimSuffix(f.BaseURL, "/") + "/" + domain

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	operation := func() (image.Image, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		if !strings.Contains(resp.Header.Get("Content-Type"), "image") {
			return nil, backoff.Permanent(fmt.Errorf("not an image: %q", resp.Header.Get("Content-Type")))
		}

		src, _, err := image.Decode(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode logo: %w", err))
		}
		return scaleSquare(src, logoSize), nil
	}

	tries := f.MaxTries
	if tries == 0 {
		tries = 1
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxInterval = 2 * time.Second

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(tries), backoff.WithMaxElapsedTime(15*time.Second))
}

// LogoDomain derives the guessed ".com" domain for a company name
func LogoDomain(company string) string {
	s := strings.ToLower(company)
	s = strings.NewReplacer(" ", "", "ltd", "", "pvt", "", ".", "").Replace(s)
	if s == "" {
		return ""
	}
	return s + ".com"
}

// Initials returns up to two upper-case initials, "CO" when none remain
func Initials(company string) string {
	var b strings.Builder
	n := 0
	for _, w := range strings.Fields(company) {
		switch strings.ToLower(strings.Trim(w, ".,")) {
		case "ltd", "pvt", "inc":
			continue
		}
		r := []rune(w)[0]
		b.WriteString(strings.ToUpper(string(r)))
		n++
		if n == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "CO"
	}
	return b.String()
}

// LogoColor picks the badge colour from a stable hash of the name
func LogoColor(company string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(company))
	return logoPalette[h.Sum32()%uint32(len(logoPalette))]
}

// InitialsLogo draws a round badge with the company initials
func InitialsLogo(company string, fonts *FontSet) image.Image {
	dc := gg.NewContext(logoSize, logoSize)

	c := float64(logoSize) / 2
	dc.DrawCircle(c, c, c-10)
	dc.SetColor(LogoColor(company))
	dc.Fill()

	dc.DrawCircle(c, c, c-7.5)
	dc.SetLineWidth(5)
	dc.SetColor(color.White)
	dc.Stroke()

	dc.SetFontFace(fonts.Bold(80))
	text := Initials(company)
	dc.SetColor(color.NRGBA{0, 0, 0, 76})
	dc.DrawStringAnchored(text, c+2, c+2, 0.5, 0.35)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(text, c, c, 0.5, 0.35)

	return dc.Image()
}

// scaleSquare resizes src to size×size
func scaleSquare(src image.Image, size int) image.Image {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
