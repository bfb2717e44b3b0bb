package store

import "github.com/google/uuid"

// NewID returns a time-ordered identifier for a stored result.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
