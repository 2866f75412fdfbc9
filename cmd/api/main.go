package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/itskundan-01/Finance-News-API/internal/server"
	"github.com/joho/godotenv"
)

func init() {
	if _, err := os.Stat("/.dockerenv"); os.IsNotExist(err) {
		if err := godotenv.Load(); err != nil {
			log.Printf("note: could not load .env file (%v); continuing with system environment", err)
		}
	} else {
		log.Println("Running in Docker container, skipping .env file loading")
	}
	log.SetPrefix("[finance-news-api] ")
}

func gracefulShutdown(apiServer *http.Server, srv *server.Server, done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	srv.Close()
	log.Println("Server exiting")

	done <- true
}

func main() {
	srv, apiServer, err := server.New(context.Background())
	if err != nil {
		log.Fatalf("failed to initialize server: %v", err)
	}

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, srv, done)

	log.Printf("listening on %s", apiServer.Addr)
	err = apiServer.ListenAndServe()

	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	log.Println("Graceful shutdown complete.")
}
