package firebase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itskundan-01/Finance-News-API/internal/types"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func userDocID(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser registers an account, hashing the password with bcrypt.
// Returns types.ErrDuplicateKey when the email is already registered.
func (c *Firestore) CreateUser(ctx context.Context, email, name, password string) (*types.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := types.User{
		Email:          userDocID(email),
		Name:           name,
		HashedPassword: string(hashed),
		CreatedAt:      time.Now(),
	}

	_, err = c.Collection(usersCollection).Doc(user.Email).Create(ctx, user)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, types.ErrDuplicateKey
		}
		return nil, fmt.Errorf("failed to store user: %w", err)
	}
	return &user, nil
}

// GetUser retrieves an account by email.
func (c *Firestore) GetUser(ctx context.Context, email string) (*types.User, error) {
	doc, err := c.Collection(usersCollection).Doc(userDocID(email)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user types.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// VerifyPassword checks a plaintext password against the stored hash.
func (c *Firestore) VerifyPassword(user *types.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) == nil
}
