package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/ymichaeli/fixture-sync/internal/config"
	"github.com/ymichaeli/fixture-sync/internal/fixture"
	"github.com/ymichaeli/fixture-sync/internal/logger"
)

const (
	// UserAgent identifies the tool to the club website.
	UserAgent = "fixture-sync/1.0 (github.com/ymichaeli/fixture-sync)"

	// Timeout bounds each page fetch so a hung request cannot stall the
	// whole batch.
	Timeout = 30 * time.Second
)

// Scraper fetches and parses the club's match listing.
type Scraper struct {
	client  *http.Client
	baseURL string
	tab     string
	offsets []int
	retries uint64

	tentativeToken string
	bracketRe      *regexp.Regexp
	clubNames      map[string]string
	aliases        map[string]string
	unknownVenue   string

	// now is swappable for tests; the date-filter windows derive from it.
	now func() time.Time
}

// New creates a Scraper from the application configuration.
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		baseURL:        cfg.SourceURL,
		tab:            cfg.Tab,
		offsets:        cfg.WindowOffsetsDays,
		retries:        cfg.FetchRetries,
		tentativeToken: cfg.TentativeToken,
		bracketRe:      regexp.MustCompile(`\([^)]*` + regexp.QuoteMeta(cfg.TentativeToken) + `[^)]*\)`),
		clubNames:      cfg.ClubNames,
		aliases:        cfg.CompetitionAliases,
		unknownVenue:   cfg.UnknownVenue,
		now:            time.Now,
	}
}

// FetchFixtures runs every configured window fetch and returns the union of
// parsed fixtures, deduplicated by key with the first sighting winning.
// A failed window is logged and skipped; the remaining windows still
// contribute, so one bad request never discards the whole scrape. The
// returned order is discovery order.
func (s *Scraper) FetchFixtures(ctx context.Context) ([]fixture.Raw, error) {
	all := make([]fixture.Raw, 0)
	seen := make(map[string]bool)

	for i, pageURL := range s.windowURLs() {
		doc, err := s.fetchDocument(ctx, pageURL)
		if err != nil {
			logger.Warn("Window fetch failed, continuing with remaining windows", logger.Fields{
				"window": i + 1,
			})
			logger.Error("Fetch error", logger.Fields{"window": i + 1}, err)
			logger.IncrCounter("scrape.fetch_failures")
			continue
		}

		rows := doc.Find("div.flex.border-b")
		logger.Info("Fetched match window", logger.Fields{
			"window": i + 1,
			"rows":   rows.Length(),
		})

		rows.Each(func(_ int, row *goquery.Selection) {
			raw, err := s.parseFixtureRow(row)
			if err != nil {
				// Malformed rows are dropped, never fatal for the batch.
				logger.Warn("Skipping a match row", logger.Fields{"window": i + 1})
				logger.IncrCounter("scrape.parse_failures")
				return
			}
			key := raw.DedupeKey()
			if seen[key] {
				return
			}
			seen[key] = true
			all = append(all, *raw)
		})
	}

	logger.Info("Total unique fixtures found", logger.Fields{"count": len(all)})
	return all, nil
}

// windowURLs builds one date-filtered listing URL per configured offset.
// The first window starts at the current minute; later windows start at
// midnight of their offset day, matching how the site's own filter behaves.
func (s *Scraper) windowURLs() []string {
	now := s.now()
	urls := make([]string, 0, len(s.offsets))
	for i, offset := range s.offsets {
		start := now.AddDate(0, 0, offset)
		var startDate string
		if i == 0 {
			startDate = start.Format("02/01/2006 15:04")
		} else {
			startDate = start.Format("02/01/2006") + " 00:00"
		}
		filters := fmt.Sprintf(
			`{"date":{"startDate":"%s","endDate":""},"league":"","session":"","gamesDirection":"1","againstTeam":""}`,
			startDate,
		)
		urls = append(urls, fmt.Sprintf("%s?filters=%s&tab=%s",
			s.baseURL, url.QueryEscape(filters), url.QueryEscape(s.tab)))
	}
	return urls
}

// fetchDocument fetches one listing page with bounded retries and parses it.
func (s *Scraper) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	fetch := func() (*goquery.Document, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("parsing HTML: %w", err))
		}
		return doc, nil
	}

	return backoff.RetryWithData(fetch,
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.retries), ctx))
}
