package common

import (
	"fmt"
	"io"
	"time"
)

// Formatter writes human-readable status lines for the CLI
type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Researching(source string) {
	fmt.Fprintf(f.w, "🔎 Researching company from %s...\n", source)
}

func (f *Formatter) DossierDone(path, company string) {
	fmt.Fprintf(f.w, "✅ Dossier for %s saved: %s\n", company, path)
}

func (f *Formatter) Scripting() {
	fmt.Fprintf(f.w, "✍️  Writing video script...\n")
}

func (f *Formatter) ScriptDone(path string, slides int) {
	fmt.Fprintf(f.w, "✅ Script with %d slides saved: %s\n", slides, path)
}

func (f *Formatter) Rendering(slides int) {
	fmt.Fprintf(f.w, "🎬 Building video from %d slides...\n", slides)
}

func (f *Formatter) Progress(done, total int) {
	fmt.Fprintf(f.w, "   %d/%d slides\n", done, total)
}

func (f *Formatter) VideoDone(path string, sizeMB, duration float64, took time.Duration) {
	fmt.Fprintf(f.w, "✅ Video saved: %s (%.1f MB, %.1fs, built in %s)\n", path, sizeMB, duration, formatDuration(took))
}

func (f *Formatter) LinkCheck(url string, ok bool) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s\n", url)
	} else {
		fmt.Fprintf(f.w, "  ❌ %s\n", url)
	}
}

func (f *Formatter) ShareLink(link string) {
	fmt.Fprintf(f.w, "\n📤 Share: %s\n", link)
}

func (f *Formatter) HistoryHeader() {
	fmt.Fprintf(f.w, "📁 Runs:\n\n")
}

func (f *Formatter) HistoryItem(r Run) {
	status := "✅"
	if r.Status != RunCompleted {
		status = "❌"
	}
	fmt.Fprintf(f.w, "  %s %s  %-24s %s\n", status, r.StartedAt.Format("2006-01-02 15:04"), r.Company, r.OutputDir)
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
