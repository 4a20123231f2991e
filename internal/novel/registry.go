package novel

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// popularLimit caps how many novels are taken from the popularity listing.
const popularLimit = 5

// Registry resolves the set of novels offered in the chat menu: the most
// popular novels scraped from the source site plus any custom novels from
// configuration.
type Registry struct {
	baseSite string
	custom   []Novel
	client   *http.Client
}

// NewRegistry creates a registry for the given source site.
// custom novels are always included, even when the site listing is down.
func NewRegistry(baseSite string, custom []Novel, client *http.Client) *Registry {
	if client == nil {
		client = http.DefaultClient
	}
	return &Registry{
		baseSite: strings.TrimRight(baseSite, "/"),
		custom:   custom,
		client:   client,
	}
}

// All returns the popular novels followed by the custom novels.
// A listing failure is returned alongside the custom novels so callers can
// degrade to the configured catalog.
func (r *Registry) All(ctx context.Context) ([]Novel, error) {
	popular, err := r.FetchPopular(ctx)
	novels := make([]Novel, 0, len(popular)+len(r.custom))
	novels = append(novels, popular...)
	novels = append(novels, r.custom...)
	return novels, err
}

// Lookup finds a novel by title in the full catalog.
func (r *Registry) Lookup(ctx context.Context, title string) (Novel, bool) {
	novels, _ := r.All(ctx)
	for _, n := range novels {
		if n.Title == title {
			return n, true
		}
	}
	return Novel{}, false
}

// FetchPopular scrapes the source site's popularity listing for the top
// novels. Rows missing a title link are skipped; a missing chapter count
// leaves TotalChapters nil.
func (r *Registry) FetchPopular(ctx context.Context) ([]Novel, error) {
	url := r.baseSite + "/sort/most-popular"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch popular listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("popular listing returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse popular listing: %w", err)
	}

	var novels []Novel
	doc.Find("div.li-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		link := row.Find("h3.tit a").First()
		title := strings.TrimSpace(link.Text())
		slug, ok := link.Attr("href")
		if title == "" || !ok {
			return true
		}

		n := Novel{
			Title:      title,
			ChapterURL: r.baseSite + strings.TrimRight(slug, "/") + "/chapter-",
		}

		// "1234 Chapters" style count; absent or malformed means unknown.
		if fields := strings.Fields(row.Find("span.s1").First().Text()); len(fields) > 0 {
			if total, err := strconv.Atoi(fields[0]); err == nil {
				n.TotalChapters = &total
			}
		}

		novels = append(novels, n)
		return len(novels) < popularLimit
	})

	return novels, nil
}
