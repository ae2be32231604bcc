// Package feed pulls financial headlines from RSS feeds and labels them
// with the keyword scorer so they can be analysed like an uploaded file.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/sentidash/internal/dataset"
	"github.com/seenimoa/sentidash/internal/infra"
	"github.com/seenimoa/sentidash/internal/sentiment"
	"github.com/seenimoa/sentidash/pkg/models"
	"github.com/seenimoa/sentidash/pkg/utils"
)

// ErrEmptyFeed is returned when no source produced a single headline.
var ErrEmptyFeed = errors.New("no headlines fetched")

// Source is one RSS feed.
type Source struct {
	Name string `mapstructure:"name" json:"name"`
	URL  string `mapstructure:"url" json:"url"`
}

// DefaultSources lists the Indian financial news feeds used out of the box.
var DefaultSources = []Source{
	{Name: "Moneycontrol", URL: "https://www.moneycontrol.com/rss/marketreports.xml"},
	{Name: "Economic Times Markets", URL: "https://economictimes.indiatimes.com/markets/rssfeeds/1977021501.cms"},
	{Name: "LiveMint Markets", URL: "https://www.livemint.com/rss/markets"},
	{Name: "Business Standard Markets", URL: "https://www.business-standard.com/rss/markets-106.rss"},
}

// Columns is the column order of a fetched table.
var Columns = []string{
	dataset.ColumnDate,
	dataset.ColumnSentiment,
	dataset.ColumnHeadline,
	dataset.ColumnSource,
	dataset.ColumnURL,
}

// Fetcher fetches and labels headlines from a set of feeds.
type Fetcher struct {
	sources []Source
	client  *http.Client
	limiter *infra.RateLimiter
	cache   *infra.Cache[int, []models.Headline]
	scorer  *sentiment.Scorer
	log     *zap.Logger
	timeout time.Duration
	loc     *time.Location
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client used for feed requests.
func WithHTTPClient(c *http.Client) Option { return func(f *Fetcher) { f.client = c } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(f *Fetcher) { f.log = l } }

// WithRateLimit allows n requests per window across all sources.
func WithRateLimit(n int, window time.Duration) Option {
	return func(f *Fetcher) { f.limiter = infra.NewRateLimiter(n, window) }
}

// WithCacheTTL keeps results for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(f *Fetcher) {
		if ttl <= 0 {
			f.cache = nil
			return
		}
		f.cache = infra.NewCache[int, []models.Headline](ttl)
	}
}

// WithTimeout bounds a whole Fetch call.
func WithTimeout(d time.Duration) Option { return func(f *Fetcher) { f.timeout = d } }

// WithLocation sets the zone headline dates are reported in.
func WithLocation(loc *time.Location) Option { return func(f *Fetcher) { f.loc = loc } }

// WithScorer sets the labeller.
func WithScorer(s *sentiment.Scorer) Option { return func(f *Fetcher) { f.scorer = s } }

// NewFetcher creates a fetcher for sources; nil means DefaultSources.
func NewFetcher(sources []Source, opts ...Option) *Fetcher {
	if len(sources) == 0 {
		sources = DefaultSources
	}
	f := &Fetcher{
		sources: sources,
		client:  &http.Client{Timeout: 15 * time.Second},
		limiter: infra.NewRateLimiter(2, time.Second), // conservative: 2 req/s
		cache:   infra.NewCache[int, []models.Headline](10 * time.Minute),
		scorer:  sentiment.NewScorer(),
		log:     zap.NewNop(),
		timeout: 30 * time.Second,
		loc:     utils.IST,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Sources returns the configured feeds.
func (f *Fetcher) Sources() []Source { return f.sources }

// Fetch pulls every source concurrently and returns labelled headlines,
// newest first, at most limit of them (0 = no limit). Failing sources are
// logged and skipped; ErrEmptyFeed, joined with the per-source errors, is
// returned when nothing was fetched.
func (f *Fetcher) Fetch(ctx context.Context, limit int) ([]models.Headline, error) {
	if f.cache != nil {
		if cached, ok := f.cache.Get(limit); ok {
			return cached, nil
		}
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var (
		mu   sync.Mutex
		all  []models.Headline
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, src := range f.sources {
		g.Go(func() error {
			items, err := f.fetchSource(gctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				f.log.Warn("feed source failed", zap.String("source", src.Name), zap.Error(err))
				errs = append(errs, err)
				return nil // non-fatal
			}
			all = append(all, items...)
			return nil
		})
	}
	_ = g.Wait()

	all = dedupe(all)
	if len(all) == 0 {
		return nil, errors.Join(append([]error{ErrEmptyFeed}, errs...)...)
	}

	sortNewestFirst(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}

	f.log.Info("feed fetched",
		zap.Int("headlines", len(all)),
		zap.Int("sources", len(f.sources)),
		zap.Int("failed", len(errs)))

	if f.cache != nil {
		f.cache.Set(limit, all)
	}
	return all, nil
}

// FetchTable is Fetch followed by Table in the fetcher's zone.
func (f *Fetcher) FetchTable(ctx context.Context, limit int) (*dataset.Table, error) {
	hs, err := f.Fetch(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Table(hs, f.loc), nil
}

func (f *Fetcher) fetchSource(ctx context.Context, src Source) ([]models.Headline, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// gofeed parsers keep per-parse state, so each source gets its own.
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = "sentidash/1.0"

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", src.Name, err)
	}

	out := make([]models.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := cleanHTML(item.Title)
		if title == "" {
			continue
		}
		h := models.Headline{
			Title:  title,
			Source: src.Name,
			URL:    item.Link,
		}
		switch {
		case item.PublishedParsed != nil:
			h.Date = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			h.Date = *item.UpdatedParsed
		}

		f.scorer.Classify(&h, cleanHTML(item.Description))
		out = append(out, h)
	}
	return out, nil
}

// Table converts headlines to a dataset table with the Columns layout,
// dating each one as seen in loc (nil keeps the feed's own offset).
func Table(hs []models.Headline, loc *time.Location) *dataset.Table {
	rows := make([][]string, len(hs))
	for i, h := range hs {
		rows[i] = []string{
			utils.FormatDateIn(h.Date, loc),
			h.Sentiment.String(),
			h.Title,
			h.Source,
			h.URL,
		}
	}
	return dataset.MustNew(Columns, rows)
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// dedupe drops repeated stories, keyed by link or, without one, by title.
func dedupe(hs []models.Headline) []models.Headline {
	seen := make(map[string]bool, len(hs))
	out := hs[:0]
	for _, h := range hs {
		key := h.URL
		if key == "" {
			key = strings.ToLower(h.Title)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, h)
	}
	return out
}

// sortNewestFirst orders by date descending; undated headlines go last.
func sortNewestFirst(hs []models.Headline) {
	sort.SliceStable(hs, func(i, j int) bool {
		a, b := hs[i].Date, hs[j].Date
		if a.IsZero() != b.IsZero() {
			return !a.IsZero()
		}
		return a.After(b)
	})
}
