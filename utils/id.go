package utils

import "github.com/google/uuid"

// GenerateID returns a stable, globally unique record identifier. Records
// are keyed by these ids in both the local cache and the remote store, which
// is what makes mirror writes idempotent.
func GenerateID() string {
	return uuid.New().String()
}
