package types

import "errors"

var (
	// ErrNotFound reports that no record matched the lookup.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey reports an API key collision at creation. The key
	// space makes this practically unreachable; creation retries with a
	// fresh key and never surfaces this error to callers.
	ErrDuplicateKey = errors.New("api key already exists")

	// ErrNotOwner reports a self-service operation against a key the
	// requester does not own.
	ErrNotOwner = errors.New("api key belongs to another owner")
)
