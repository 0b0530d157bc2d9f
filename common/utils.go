package common

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
)

var (
	slideHeaderRe = regexp.MustCompile(`\[SLIDE\s*\d+\s*:\s*([^\]\n]*)\]`)
	narratorRe    = regexp.MustCompile(`(?i)narrator\s*:`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// LoadEnv loads environment variables from a dotenv file.
// Variables already present in the environment win.
func LoadEnv(filename string) error {
	return godotenv.Load(filename)
}

// SaveImage saves an image to the specified path as PNG
func SaveImage(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ParseScriptToSlides parses a generated script into slides.
// Each slide starts with a "[SLIDE N: TITLE]" header; its narration runs
// until the next header or the end of the script. Slides with an empty
// title or empty narration are dropped.
func ParseScriptToSlides(script string) []Slide {
	script = strings.TrimSpace(script)
	script = strings.Trim(script, "`")

	headers := slideHeaderRe.FindAllStringSubmatchIndex(script, -1)
	slides := make([]Slide, 0, len(headers))

	for i, h := range headers {
		title := strings.TrimSpace(script[h[2]:h[3]])

		end := len(script)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		content := script[h[1]:end]
		content = narratorRe.ReplaceAllString(content, "")
		content = whitespaceRe.ReplaceAllString(content, " ")
		content = strings.TrimSpace(content)

		if title == "" || content == "" {
			continue
		}
		slides = append(slides, Slide{Title: title, Content: content})
	}
	return slides
}

// SanitizeFileName turns a company name into a lower-case file name stem
func SanitizeFileName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "company"
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "company"
	}
	return sb.String()
}
