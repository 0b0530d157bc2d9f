package dossier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// SiteSummary is a short snapshot of a company website
type SiteSummary struct {
	URL         string
	Title       string
	Description string
	Excerpt     string // markdown
}

// Summarizer fetches a page and reduces it to title, description and a
// markdown excerpt of the main content.
type Summarizer struct {
	Client   *http.Client
	MaxChars int
}

func NewSummarizer() *Summarizer {
	return &Summarizer{
		Client:   &http.Client{Timeout: 15 * time.Second},
		MaxChars: 1500,
	}
}

var (
	blankLinesRe    = regexp.MustCompile(`\n{3,}`)
	removeSelectors = []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside", "form",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
)

func (s *Summarizer) Summarize(ctx context.Context, pageURL string) (*SiteSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; company-resource-consolidator)")
	req.Header.Set("Accept", "text/html")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	return s.summarizeHTML(pageURL, string(body))
}

func (s *Summarizer) summarizeHTML(pageURL, html string) (*SiteSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	sum := &SiteSummary{URL: pageURL}
	sum.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if sum.Title == "" {
		sum.Title, _ = doc.Find("meta[property='og:title']").Attr("content")
	}
	if d, ok := doc.Find("meta[name='description']").Attr("content"); ok {
		sum.Description = strings.TrimSpace(d)
	} else if d, ok := doc.Find("meta[property='og:description']").Attr("content"); ok {
		sum.Description = strings.TrimSpace(d)
	}

	doc.Find(strings.Join(removeSelectors, ", ")).Remove()

	content := doc.Find("main, article, #content, .content").First()
	if content.Length() == 0 {
		content = doc.Find("body")
	}
	inner, err := content.Html()
	if err != nil {
		return sum, nil
	}

	md, err := htmltomarkdown.ConvertString(inner)
	if err != nil {
		md = content.Text()
	}
	md = blankLinesRe.ReplaceAllString(strings.TrimSpace(md), "\n\n")
	if s.MaxChars > 0 && len(md) > s.MaxChars {
		md = truncateUTF8(md, s.MaxChars) + "..."
	}
	sum.Excerpt = md
	return sum, nil
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

// Markdown renders the summary as a dossier appendix
func (s *SiteSummary) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\n", s.URL)
	if s.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", s.Title)
	}
	if s.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", s.Description)
	}
	if s.Excerpt != "" {
		sb.WriteString("\n")
		sb.WriteString(s.Excerpt)
		sb.WriteString("\n")
	}
	return sb.String()
}
