package video

import (
	"log"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontCandidates lists font files to try, in order
type FontCandidates struct {
	Bold     []string
	Regular  []string
	Embedded bool // fall back to the bundled Go fonts before the bitmap face
}

// PlatformFonts returns the usual system locations for a clean sans-serif
func PlatformFonts() FontCandidates {
	return FontCandidates{
		Bold: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
			"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
			"/Library/Fonts/Arial Bold.ttf",
			`C:\Windows\Fonts\arialbd.ttf`,
		},
		Regular: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
			"/System/Library/Fonts/Supplemental/Arial.ttf",
			"/Library/Fonts/Arial.ttf",
			`C:\Windows\Fonts\arial.ttf`,
		},
		Embedded: true,
	}
}

// FontSet holds parsed fonts. Parsed fonts are shared; faces are not
// goroutine-safe, so callers create fresh faces per render.
type FontSet struct {
	bold    *truetype.Font
	regular *truetype.Font
}

var (
	defaultFontsOnce sync.Once
	defaultFonts     *FontSet
)

// DefaultFonts tries the platform candidates once per process
func DefaultFonts() *FontSet {
	defaultFontsOnce.Do(func() {
		defaultFonts = LoadFonts(PlatformFonts())
	})
	return defaultFonts
}

func LoadFonts(c FontCandidates) *FontSet {
	fs := &FontSet{
		bold:    firstFont(c.Bold),
		regular: firstFont(c.Regular),
	}
	if c.Embedded {
		if fs.bold == nil {
			fs.bold, _ = truetype.Parse(gobold.TTF)
		}
		if fs.regular == nil {
			fs.regular, _ = truetype.Parse(goregular.TTF)
		}
	}
	if fs.regular == nil {
		fs.regular = fs.bold
	}
	if fs.bold == nil {
		fs.bold = fs.regular
	}
	if fs.bold == nil {
		log.Printf("[VIDEO] No TrueType font found, using the built-in bitmap face")
	}
	return fs
}

// Fallback reports whether text will be drawn with the bitmap face
func (f *FontSet) Fallback() bool {
	return f == nil || f.bold == nil
}

func (f *FontSet) Bold(size float64) font.Face {
	if f.Fallback() {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f.bold, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

func (f *FontSet) Regular(size float64) font.Face {
	if f.Fallback() {
		return basicfont.Face7x13
	}
	return truetype.NewFace(f.regular, &truetype.Options{Size: size, Hinting: font.HintingFull})
}

func firstFont(paths []string) *truetype.Font {
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(data)
		if err != nil {
			log.Printf("[VIDEO] Skipping unreadable font %s: %v", p, err)
			continue
		}
		return f
	}
	return nil
}
