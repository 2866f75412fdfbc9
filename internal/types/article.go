package types

import "time"

// Article is a parsed news item produced by the scraper.
type Article struct {
	ID           string    `firestore:"id" json:"id"`
	Title        string    `firestore:"title" json:"title"`
	Content      string    `firestore:"content" json:"content"`
	URL          string    `firestore:"url" json:"url"`
	Source       string    `firestore:"source" json:"source"`
	Categories   []string  `firestore:"categories" json:"categories"`
	Timestamp    string    `firestore:"timestamp" json:"timestamp"`
	TimestampISO time.Time `firestore:"timestamp_iso" json:"timestamp_iso"`
	ScrapedAt    time.Time `firestore:"scraped_at" json:"scraped_at"`
}
