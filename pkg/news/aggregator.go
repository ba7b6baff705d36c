package news

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultKeywords select AI related entries by title or description.
var DefaultKeywords = []string{
	"ai",
	"artificial intelligence",
	"machine learning",
	"deep learning",
	"neural network",
}

// Feed is a named RSS or Atom source.
type Feed struct {
	Name string
	URL  string
}

// Article is a normalized feed entry.
type Article struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	Author      string    `json:"author,omitempty"`
}

// Query bounds an aggregation run.
type Query struct {
	Days  int
	Limit int
	Now   time.Time
}

// Options tunes an Aggregator.
type Options struct {
	HTTPClient  *http.Client
	Keywords    []string
	Concurrency int
	UserAgent   string
	Logger      zerolog.Logger
}

// Aggregator fetches feeds and merges their matching entries.
type Aggregator struct {
	feeds       []Feed
	client      *http.Client
	keywords    []string
	concurrency int
	userAgent   string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewAggregator builds an Aggregator over feeds.
func NewAggregator(feeds []Feed, opts Options) *Aggregator {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "codecoach-news/1.0"
	}

	return &Aggregator{
		feeds:       feeds,
		client:      client,
		keywords:    keywords,
		concurrency: concurrency,
		userAgent:   userAgent,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      opts.Logger.With().Str("component", "news_aggregator").Logger(),
	}
}

// Collect fetches every feed, keeps keyword matches published within the
// last q.Days days and returns them newest first, truncated to q.Limit.
// A failing feed is logged and skipped.
func (a *Aggregator) Collect(ctx context.Context, q Query) ([]Article, error) {
	now := q.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	cutoff := now.AddDate(0, 0, -q.Days)

	perFeed := make([][]Article, len(a.feeds))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)

	for i, feed := range a.feeds {
		group.Go(func() error {
			articles, err := a.fetch(groupCtx, feed)
			if err != nil {
				a.logger.Warn().Err(err).Str("feed", feed.Name).Msg("skipping news feed")
				return nil
			}
			perFeed[i] = articles
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var merged []Article
	for _, articles := range perFeed {
		for _, article := range articles {
			if article.PublishedAt.Before(cutoff) {
				continue
			}
			merged = append(merged, article)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	if q.Limit > 0 && len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}

	return merged, nil
}

func (a *Aggregator) fetch(ctx context.Context, feed Feed) ([]Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", feed.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", feed.URL, resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", feed.URL, err)
	}

	articles := make([]Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil || !a.matches(item) {
			continue
		}
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			continue
		}

		articles = append(articles, Article{
			Title:       strings.TrimSpace(item.Title),
			Content:     a.plainText(item.Description),
			URL:         item.Link,
			Source:      feed.Name,
			PublishedAt: published.UTC(),
			ImageURL:    imageURL(item),
			Author:      authorName(item),
		})
	}

	return articles, nil
}

func (a *Aggregator) matches(item *gofeed.Item) bool {
	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)
	for _, keyword := range a.keywords {
		if strings.Contains(title, keyword) || strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}

func (a *Aggregator) plainText(value string) string {
	stripped := html.UnescapeString(a.sanitizer.Sanitize(value))
	return strings.Join(strings.Fields(stripped), " ")
}

func imageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, name := range []string{"content", "thumbnail"} {
			for _, ext := range media[name] {
				if url := ext.Attrs["url"]; url != "" {
					return url
				}
			}
		}
	}
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
			return enclosure.URL
		}
	}
	return ""
}

func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, author := range item.Authors {
		if author != nil && author.Name != "" {
			return author.Name
		}
	}
	return ""
}
