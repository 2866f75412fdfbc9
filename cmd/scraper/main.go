package main

import (
	"context"
	"log"
	"os"
	"time"

	fb "firebase.google.com/go/v4"
	"github.com/itskundan-01/Finance-News-API/internal/firebase"
	"github.com/itskundan-01/Finance-News-API/internal/scraper"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("note: could not load .env file (%v); continuing with system environment", err)
	}
	log.SetPrefix("[finance-news-scraper] ")
}

func main() {
	feedURL := os.Getenv("NEWS_FEED_URL")
	if feedURL == "" {
		log.Fatal("NEWS_FEED_URL environment variable is required")
	}
	userAgent := os.Getenv("NEWS_FEED_USER_AGENT")
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sa := option.WithCredentialsFile(os.Getenv("FIREBASE_CONFIG"))
	app, err := fb.NewApp(ctx, nil, sa)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v", err)
	}

	db, err := firebase.NewFirestore(ctx, app)
	if err != nil {
		log.Fatalf("error initializing firestore: %v", err)
	}
	defer db.Close()

	service := scraper.NewService(db, feedURL, userAgent)
	if err := service.ScrapeAndStore(ctx); err != nil {
		log.Fatalf("scrape failed: %v", err)
	}

	log.Println("Scrape completed successfully!")
}
