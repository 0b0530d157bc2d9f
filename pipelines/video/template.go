package video

import (
	"image/color"
	"strings"
)

// Template selects the visual scheme of every slide in a run
type Template int

const (
	TechForward Template = iota
	Professional
	Modern
	Colorful
)

// Background is how a scheme paints the canvas behind the content
type Background int

const (
	BackgroundFlat     Background = iota // flat fill with an accent bar on top
	BackgroundGradient                   // vertical gradient
	BackgroundPattern                    // flat fill with diagonal lines
)

// Scheme is the data a template carries
type Scheme struct {
	Background Background
	BG         color.NRGBA
	BGEnd      color.NRGBA // gradient end colour
	Primary    color.NRGBA
	Secondary  color.NRGBA
	Accent     color.NRGBA
	Card       color.NRGBA
	Pattern    color.NRGBA
}

var schemes = map[Template]Scheme{
	TechForward: {
		Background: BackgroundFlat,
		BG:         hex("#121212"),
		Primary:    hex("#FFFFFF"),
		Secondary:  hex("#AAAAAA"),
		Accent:     hex("#00F260"),
		Card:       color.NRGBA{34, 34, 34, 255},
	},
	Professional: {
		Background: BackgroundGradient,
		BG:         hex("#2c3e50"),
		BGEnd:      hex("#4a6d8c"),
		Primary:    hex("#ffffff"),
		Secondary:  hex("#ecf0f1"),
		Accent:     hex("#3498db"),
		Card:       color.NRGBA{255, 255, 255, 25},
	},
	Modern: {
		Background: BackgroundPattern,
		BG:         hex("#1a1a2e"),
		Primary:    hex("#00d4aa"),
		Secondary:  hex("#ffffff"),
		Accent:     hex("#ff6b6b"),
		Card:       color.NRGBA{0, 212, 170, 25},
		Pattern:    color.NRGBA{255, 107, 107, 30},
	},
	Colorful: {
		Background: BackgroundGradient,
		BG:         hex("#667eea"),
		BGEnd:      hex("#764ba2"),
		Primary:    hex("#ffffff"),
		Secondary:  hex("#ffffff"),
		Accent:     hex("#f5d76e"),
		Card:       color.NRGBA{255, 255, 255, 38},
	},
}

var templateNames = map[Template]string{
	TechForward:  "Tech-Forward",
	Professional: "Professional",
	Modern:       "Modern",
	Colorful:     "Colorful",
}

var templateAliases = map[string]Template{
	"techforward":  TechForward,
	"tech":         TechForward,
	"minimalist":   TechForward,
	"professional": Professional,
	"corporate":    Professional,
	"modern":       Modern,
	"colorful":     Colorful,
	"colourful":    Colorful,
}

// ParseTemplate maps a user-facing name to a template.
// Matching ignores case, spaces, dashes and underscores.
// Unknown names resolve to TechForward.
func ParseTemplate(name string) Template {
	key := strings.ToLower(name)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	if t, ok := templateAliases[key]; ok {
		return t
	}
	return TechForward
}

// Templates lists every template in declaration order
func Templates() []Template {
	return []Template{TechForward, Professional, Modern, Colorful}
}

func (t Template) String() string {
	if n, ok := templateNames[t]; ok {
		return n
	}
	return templateNames[TechForward]
}

func (t Template) Scheme() Scheme {
	if s, ok := schemes[t]; ok {
		return s
	}
	return schemes[TechForward]
}

// hex parses "#rrggbb"; malformed input yields opaque black
func hex(s string) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	c := color.NRGBA{A: 255}
	if len(s) != 6 {
		return c
	}
	var v [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(s[2*i])
		lo, ok2 := hexDigit(s[2*i+1])
		if !ok1 || !ok2 {
			return c
		}
		v[i] = hi<<4 | lo
	}
	c.R, c.G, c.B = v[0], v[1], v[2]
	return c
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
