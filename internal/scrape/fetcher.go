// Package scrape fetches chapter text from the novel site.
package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/avast/retry-go/v4"

	"github.com/novelforge/novelforge/internal/novel"
)

// FetchError is returned when a chapter could not be retrieved after the
// full retry budget. It carries the last underlying cause.
type FetchError struct {
	Chapter int
	URL     string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("chapter %d fetch failed (%s): %v", e.Chapter, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// BaseURL is the chapter URL prefix; the chapter number is appended.
	BaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// Referer is sent with every request.
	Referer string
	// Timeout bounds each HTTP request (default 45s).
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt (default 2).
	MaxRetries int
	// Logger receives per-attempt progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Fetcher retrieves chapter pages and extracts title and body text.
// It is stateless with respect to jobs; rate control between chapters is the
// caller's responsibility.
type Fetcher struct {
	baseURL    string
	userAgent  string
	referer    string
	maxRetries int
	baseDelay  time.Duration
	client     *http.Client
	log        *slog.Logger
}

// NewFetcher creates a Fetcher for one novel's chapter URL prefix.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Fetcher{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		referer:    cfg.Referer,
		maxRetries: cfg.MaxRetries,
		baseDelay:  2 * time.Second,
		client:     &http.Client{Timeout: cfg.Timeout},
		log:        cfg.Logger,
	}
}

// URL returns the page URL for the given chapter number.
func (f *Fetcher) URL(chapter int) string {
	return fmt.Sprintf("%s%d", f.baseURL, chapter)
}

// Fetch retrieves one chapter with retries. Transport failures and
// parse failures (missing content container, empty body) share the same
// retry budget: wait 2×attempt seconds between tries, no jitter. After
// exhausting retries it returns a FetchError wrapping the last cause.
func (f *Fetcher) Fetch(ctx context.Context, chapter int) (novel.Chapter, error) {
	url := f.URL(chapter)

	var ch novel.Chapter
	err := retry.Do(
		func() error {
			var err error
			ch, err = f.fetchOnce(ctx, chapter, url)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.maxRetries+1)),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			// n is zero-based: 2s after the first attempt, 4s after the second.
			return time.Duration(n+1) * f.baseDelay
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.log.Warn("chapter fetch failed, retrying",
				"chapter", chapter, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return novel.Chapter{}, &FetchError{Chapter: chapter, URL: url, Err: err}
	}
	return ch, nil
}

// fetchOnce performs a single request and extraction.
func (f *Fetcher) fetchOnce(ctx context.Context, chapter int, url string) (novel.Chapter, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return novel.Chapter{}, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.referer != "" {
		req.Header.Set("Referer", f.referer)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return novel.Chapter{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return novel.Chapter{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return novel.Chapter{}, fmt.Errorf("failed to parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("div.cur a[title^='Chapter']").First().Text())
	if title == "" {
		title = fmt.Sprintf("Chapter %d", chapter)
	}

	content := doc.Find("div.txt")
	if content.Length() == 0 {
		return novel.Chapter{}, fmt.Errorf("chapter text not found")
	}

	var paragraphs []string
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return novel.Chapter{}, fmt.Errorf("empty chapter")
	}

	return novel.Chapter{Title: title, Paragraphs: paragraphs}, nil
}
