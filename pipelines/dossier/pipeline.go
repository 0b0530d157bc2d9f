package dossier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adityagirishh/company-resource-consolidator/common"
)

// ErrEmptyEmail is returned when there is no e-mail text to research
var ErrEmptyEmail = errors.New("recruitment e-mail is empty")

// Researcher generates the raw dossier text for an e-mail
type Researcher interface {
	GenerateCompanyInfo(ctx context.Context, email string) (string, error)
}

// Result is a generated and enriched dossier
type Result struct {
	Dossier *Dossier
	Company string
	Text    string // final text written to dossier.txt
	Links   []LinkStatus
	Social  map[string]string
	Site    *SiteSummary
	Cached  bool
}

// BrokenLinks lists URLs that failed verification
func (r *Result) BrokenLinks() []string {
	var out []string
	for _, l := range r.Links {
		if !l.Valid {
			out = append(out, l.URL)
		}
	}
	return out
}

// Builder researches a company and enriches the result with verified
// links and a website snapshot. Every collaborator except Researcher is
// optional.
type Builder struct {
	Researcher Researcher
	Cache      *Cache
	Links      *LinkChecker
	Search     *SearchClient
	Site       *Summarizer
}

func (b *Builder) Build(ctx context.Context, email string) (*Result, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if b.Researcher == nil {
		return nil, errors.New("no researcher configured")
	}

	key := CacheKey("dossier", email)
	raw, cached := b.Cache.Get(ctx, key)
	if cached {
		log.Printf("[DOSSIER] Cache hit for e-mail %s", key)
	} else {
		var err error
		raw, err = b.Researcher.GenerateCompanyInfo(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("research company: %w", err)
		}
		if strings.TrimSpace(raw) == "" {
			return nil, errors.New("research returned no text")
		}
		b.Cache.Set(ctx, key, raw)
	}

	d := ParseDossier(raw)
	res := &Result{
		Dossier: d,
		Company: d.CompanyName(),
		Cached:  cached,
	}
	log.Printf("[DOSSIER] Company: %s (%d sections)", res.Company, len(d.Sections))

	if b.Links != nil {
		urls := d.URLs()
		res.Links = b.Links.CheckAll(ctx, urls)
		log.Printf("[DOSSIER] Verified %d links, %d broken", len(urls), len(res.BrokenLinks()))
	}

	if b.Search != nil || b.Links != nil {
		res.Social = b.socialLinks(ctx, res.Company)
	}

	if b.Site != nil {
		if site := b.websiteFor(res); site != "" {
			sum, err := b.Site.Summarize(ctx, site)
			if err != nil {
				log.Printf("[DOSSIER] Website summary for %s failed: %v", site, err)
			} else {
				res.Site = sum
			}
		}
	}

	res.Text = res.render()
	return res, nil
}

func (b *Builder) socialLinks(ctx context.Context, company string) map[string]string {
	search := b.Search
	if search == nil {
		search = &SearchClient{Links: b.Links}
	}
	return search.SocialLinks(ctx, company)
}

// websiteFor picks the known website, else the first valid link that is
// not a social or search page
func (b *Builder) websiteFor(res *Result) string {
	if p, ok := LookupCompany(res.Company); ok {
		return p.Website
	}
	for _, l := range res.Links {
		if !l.Valid {
			continue
		}
		skip := false
		for _, d := range []string{"linkedin.com", "facebook.com", "twitter.com", "x.com", "instagram.com", "youtube.com", "glassdoor.", "google."} {
			if strings.Contains(l.URL, d) {
				skip = true
				break
			}
		}
		if !skip {
			return l.URL
		}
	}
	return ""
}

func (r *Result) render() string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(r.Dossier.Raw))
	sb.WriteString("\n")

	if len(r.Social) > 0 {
		sb.WriteString("\nVERIFIED SOCIAL LINKS:\n")
		for _, p := range SocialPlatforms {
			fmt.Fprintf(&sb, "- %s: %s\n", p, r.Social[p])
		}
	}
	if broken := r.BrokenLinks(); len(broken) > 0 {
		sb.WriteString("\nUNVERIFIED LINKS:\n")
		for _, u := range broken {
			fmt.Fprintf(&sb, "- %s\n", u)
		}
	}
	if r.Site != nil {
		sb.WriteString("\nWEBSITE SNAPSHOT:\n")
		sb.WriteString(r.Site.Markdown())
	}
	return sb.String()
}

// NewBuilder wires the default collaborators from configuration
func NewBuilder(ctx context.Context, researcher Researcher, cfg common.PipelineConfig) *Builder {
	links := NewLinkChecker()
	return &Builder{
		Researcher: researcher,
		Cache:      NewCache(ctx, cfg.RedisURL, 24*time.Hour),
		Links:      links,
		Search:     NewSearchClient(cfg.SearchKey, cfg.SearchCX, links),
		Site:       NewSummarizer(),
	}
}

// ReadInput returns the e-mail text from cfg.EmailText or cfg.EmailPath
func ReadInput(cfg common.PipelineConfig) (string, error) {
	if strings.TrimSpace(cfg.EmailText) != "" {
		return cfg.EmailText, nil
	}
	if cfg.EmailPath == "" {
		return "", ErrEmptyEmail
	}
	return common.ReadEmail(cfg.EmailPath)
}

// WriteDossier saves the dossier text as dossier.txt under dir
func WriteDossier(dir string, res *Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, "dossier.txt")
	if err := os.WriteFile(path, []byte(res.Text), 0644); err != nil {
		return "", fmt.Errorf("write dossier: %w", err)
	}
	return path, nil
}
