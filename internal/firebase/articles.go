package firebase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/itskundan-01/Finance-News-API/internal/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// searchScanLimit bounds the number of recent articles a text search reads.
const searchScanLimit = 500

// articleDocID derives a stable document ID from the article title so the
// scraper can re-insert the same headline without creating duplicates.
func articleDocID(title string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	sum := sha1.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// InsertArticles stores the scraped articles, skipping any whose title is
// already present. Returns the number of newly stored articles.
func (c *Firestore) InsertArticles(ctx context.Context, articles []types.Article) (int, error) {
	inserted := 0
	for _, article := range articles {
		id := articleDocID(article.Title)
		article.ID = id

		_, err := c.Collection(articlesCollection).Doc(id).Create(ctx, article)
		if err != nil {
			if status.Code(err) == codes.AlreadyExists {
				continue
			}
			return inserted, fmt.Errorf("failed to store article: %w", err)
		}
		inserted++
	}
	return inserted, nil
}

// ListArticles returns articles newest-first with pagination.
func (c *Firestore) ListArticles(ctx context.Context, limit, offset int) ([]types.Article, error) {
	query := c.Collection(articlesCollection).OrderBy("timestamp_iso", firestore.Desc)
	return c.collectArticles(ctx, query, limit, offset)
}

// ListArticlesByCategory returns articles tagged with the category,
// newest-first.
func (c *Firestore) ListArticlesByCategory(ctx context.Context, category string, limit, offset int) ([]types.Article, error) {
	query := c.Collection(articlesCollection).
		Where("categories", "array-contains", strings.ToLower(strings.TrimSpace(category))).
		OrderBy("timestamp_iso", firestore.Desc)
	return c.collectArticles(ctx, query, limit, offset)
}

// ListArticlesBySource returns articles from a named source, newest-first.
func (c *Firestore) ListArticlesBySource(ctx context.Context, source string, limit, offset int) ([]types.Article, error) {
	query := c.Collection(articlesCollection).
		Where("source", "==", source).
		OrderBy("timestamp_iso", firestore.Desc)
	return c.collectArticles(ctx, query, limit, offset)
}

// SearchArticles matches the query against title and content.
// Firestore doesn't implement full-text search, so this scans a bounded
// window of recent articles and filters manually.
func (c *Firestore) SearchArticles(ctx context.Context, search string, limit, offset int) ([]types.Article, error) {
	recent, err := c.ListArticles(ctx, searchScanLimit, 0)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	var matched []types.Article
	for _, article := range recent {
		title := strings.ToLower(article.Title)
		content := strings.ToLower(article.Content)
		if strings.Contains(title, search) || strings.Contains(content, search) {
			matched = append(matched, article)
		}
	}

	if offset >= len(matched) {
		return []types.Article{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (c *Firestore) collectArticles(ctx context.Context, query firestore.Query, limit, offset int) ([]types.Article, error) {
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var articles []types.Article
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get next document: %w", err)
		}

		var article types.Article
		if err := doc.DataTo(&article); err != nil {
			continue
		}
		articles = append(articles, article)
	}

	return articles, nil
}
