package types

import "time"

// User is a registered human account. Accounts authenticate with a JWT
// bearer token and carry no quota semantics of their own; quotas attach to
// the API keys a user holds.
type User struct {
	Email          string    `firestore:"email" json:"email"`
	Name           string    `firestore:"name" json:"name"`
	HashedPassword string    `firestore:"hashed_password" json:"-"`
	CreatedAt      time.Time `firestore:"created_at" json:"created_at"`
}
