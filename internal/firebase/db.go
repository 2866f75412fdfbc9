package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
)

const (
	apiKeysCollection  = "api_keys"
	articlesCollection = "news_articles"
	usersCollection    = "users"
)

// Firestore wraps the Firestore client and provides database operations
type Firestore struct {
	*firestore.Client
}

// NewFirestore creates a new Firestore client from a Firebase app
func NewFirestore(ctx context.Context, app *firebase.App) (*Firestore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firestore client: %w", err)
	}

	return &Firestore{
		Client: client,
	}, nil
}
