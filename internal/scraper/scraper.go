// Package scraper fetches the configured news feed page and parses it into
// structured articles for the store. The feed is arbitrary HTML, so parsing
// is heuristic: headings become titles, nearby paragraphs become content,
// and timestamps/sources are scraped from surrounding text.
package scraper

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/itskundan-01/Finance-News-API/internal/types"
)

// ArticleStore persists parsed articles, skipping known titles.
type ArticleStore interface {
	InsertArticles(ctx context.Context, articles []types.Article) (int, error)
}

// Service scrapes the news feed and stores what it finds.
type Service struct {
	store     ArticleStore
	feedURL   string
	userAgent string
	client    *http.Client
}

// NewService builds a scraper for the given feed.
func NewService(store ArticleStore, feedURL, userAgent string) *Service {
	return &Service{
		store:     store,
		feedURL:   feedURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ScrapeAndStore runs one fetch-parse-store cycle.
func (s *Service) ScrapeAndStore(ctx context.Context) error {
	log.Printf("scraper: fetching %s", s.feedURL)

	doc, err := s.fetchPage(ctx)
	if err != nil {
		return err
	}

	articles := s.parseArticles(doc)
	log.Printf("scraper: extracted %d articles", len(articles))
	if len(articles) == 0 {
		return nil
	}

	inserted, err := s.store.InsertArticles(ctx, articles)
	if err != nil {
		return fmt.Errorf("failed to store articles: %w", err)
	}
	log.Printf("scraper: stored %d new articles", inserted)
	return nil
}

func (s *Service) fetchPage(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed HTML: %w", err)
	}
	return doc, nil
}

// ParseDocument extracts articles from an already-parsed feed page.
func (s *Service) ParseDocument(doc *goquery.Document) []types.Article {
	return s.parseArticles(doc)
}
