package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	fb "firebase.google.com/go/v4"
	"github.com/itskundan-01/Finance-News-API/internal/firebase"
	"github.com/itskundan-01/Finance-News-API/internal/keys"
	"github.com/itskundan-01/Finance-News-API/internal/quota"
	"github.com/itskundan-01/Finance-News-API/internal/scraper"
	"github.com/itskundan-01/Finance-News-API/internal/server/handlers"
	"github.com/itskundan-01/Finance-News-API/internal/server/middleware"
	"github.com/itskundan-01/Finance-News-API/internal/server/router"
	"github.com/patrickmn/go-cache"
	"google.golang.org/api/option"
)

const (
	newsCacheTTL          = 1 * time.Minute
	defaultScrapeInterval = 60 * time.Second
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Server owns the process-wide dependencies: one store handle, one window
// tracker, one scrape scheduler.
type Server struct {
	db        *firebase.Firestore
	scheduler *scraper.Scheduler
}

// New connects to Firestore and wires the whole service together.
func New(ctx context.Context) (*Server, *http.Server, error) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	adminUser := envOr("ADMIN_USERNAME", "admin")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		return nil, nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}

	sa := option.WithCredentialsFile(os.Getenv("FIREBASE_CONFIG"))
	app, err := fb.NewApp(ctx, nil, sa)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	db, err := firebase.NewFirestore(ctx, app)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing firestore: %w", err)
	}

	tiers := quota.DefaultTiers()
	gate := quota.NewGate(db, tiers, quota.NewWindowTracker())
	keySvc := keys.NewService(db, tiers)

	handler := handlers.New(db, db, keySvc, cache.New(newsCacheTTL, 10*time.Minute), []byte(jwtSecret))
	mw := middleware.NewManager(gate, []byte(jwtSecret))

	srv := &Server{db: db}

	if feedURL := os.Getenv("NEWS_FEED_URL"); feedURL != "" {
		svc := scraper.NewService(db, feedURL, envOr("NEWS_FEED_USER_AGENT", defaultUserAgent))
		srv.scheduler = scraper.NewScheduler(svc)
		if err := srv.scheduler.Start(scrapeInterval()); err != nil {
			return nil, nil, err
		}
		// Populate the store before the first scheduled run.
		go func() {
			scrapeCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := svc.ScrapeAndStore(scrapeCtx); err != nil {
				log.Printf("initial scrape failed: %v", err)
			}
		}()
	} else {
		log.Println("NEWS_FEED_URL not set, scraper disabled")
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router.New(handler, mw, adminUser, adminPassword),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return srv, httpServer, nil
}

// Close stops the scrape scheduler and releases the store handle.
func (s *Server) Close() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if err := s.db.Close(); err != nil {
		log.Printf("error closing firestore client: %v", err)
	}
}

func scrapeInterval() time.Duration {
	if value := os.Getenv("SCRAPE_INTERVAL"); value != "" {
		if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultScrapeInterval
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
