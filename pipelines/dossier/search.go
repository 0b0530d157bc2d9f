package dossier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// NotAvailable marks a social platform with no verified page
const NotAvailable = "Not available"

// SocialPlatforms are the platforms searched for company pages
var SocialPlatforms = []string{"facebook", "twitter", "instagram"}

var platformDomains = map[string]string{
	"facebook":  "facebook.com",
	"twitter":   "twitter.com",
	"instagram": "instagram.com",
}

// SearchResult is one validated web search hit
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchClient queries Google Custom Search and keeps only links that resolve
type SearchClient struct {
	APIKey   string
	CX       string
	Endpoint string
	Client   *http.Client
	Links    *LinkChecker
	MaxTries uint

	limiter *rate.Limiter
}

func NewSearchClient(apiKey, cx string, links *LinkChecker) *SearchClient {
	if links == nil {
		links = NewLinkChecker()
	}
	return &SearchClient{
		APIKey:   apiKey,
		CX:       cx,
		Endpoint: "https://www.googleapis.com/customsearch/v1",
		Client:   &http.Client{Timeout: 15 * time.Second},
		Links:    links,
		MaxTries: 3,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Enabled reports whether credentials are configured
func (s *SearchClient) Enabled() bool {
	return s != nil && s.APIKey != "" && s.CX != ""
}

type searchResponse struct {
	Items []SearchResult `json:"items"`
}

// Search returns up to num results whose links pass validation
func (s *SearchClient) Search(ctx context.Context, query string, num int) ([]SearchResult, error) {
	if !s.Enabled() {
		return nil, errors.New("search credentials are not configured")
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("key", s.APIKey)
	params.Set("cx", s.CX)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	endpoint := s.Endpoint + "?" + params.Encode()

	operation := func() (*searchResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := s.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("search status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return nil, backoff.Permanent(fmt.Errorf("search status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		}

		var out searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode search response: %w", err))
		}
		return &out, nil
	}

	tries := s.MaxTries
	if tries == 0 {
		tries = 1
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	res, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(tries), backoff.WithMaxElapsedTime(30*time.Second))
	if err != nil {
		return nil, err
	}

	var validated []SearchResult
	for _, item := range res.Items {
		if s.Links.Validate(ctx, item.Link) {
			validated = append(validated, item)
		}
	}
	return validated, nil
}

// SocialLinks finds official pages per platform. Known companies use the
// pre-verified table; others are searched. Unfound platforms map to
// NotAvailable.
func (s *SearchClient) SocialLinks(ctx context.Context, company string) map[string]string {
	links := map[string]string{}
	for _, p := range SocialPlatforms {
		links[p] = NotAvailable
	}

	checker := NewLinkChecker()
	if s != nil && s.Links != nil {
		checker = s.Links
	}

	if profile, ok := LookupCompany(company); ok {
		for _, p := range SocialPlatforms {
			if u := profile.Social(p); checker.Validate(ctx, u) {
				links[p] = u
			}
		}
		return links
	}

	if !s.Enabled() {
		return links
	}

	queries := map[string]string{
		"facebook":  fmt.Sprintf(`site:facebook.com "%s" official`, company),
		"twitter":   fmt.Sprintf(`site:twitter.com "%s" verified`, company),
		"instagram": fmt.Sprintf(`site:instagram.com "%s" official`, company),
	}
	for _, p := range SocialPlatforms {
		log.Printf("[DOSSIER] Searching for %s %s page", company, p)
		results, err := s.Search(ctx, queries[p], 3)
		if err != nil {
			log.Printf("[DOSSIER] %s search failed: %v", p, err)
			continue
		}
		for _, r := range results {
			if IsCompanySocialPage(r.Link, company, p) {
				links[p] = r.Link
				break
			}
		}
	}
	return links
}

// IsCompanySocialPage accepts a URL on the platform's domain whose path
// mentions the company
func IsCompanySocialPage(link, company, platform string) bool {
	domain, ok := platformDomains[platform]
	if link == "" || !ok || !strings.Contains(link, domain) {
		return false
	}
	clean := strings.NewReplacer(" ", "", ".", "").Replace(strings.ToLower(company))
	if clean == "" {
		return false
	}
	return strings.Contains(strings.ToLower(link), clean)
}
