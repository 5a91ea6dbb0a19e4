package common

import (
	"github.com/google/uuid"
)

// GenerateUUID returns a random v4 UUID string.
func GenerateUUID() string {
	return uuid.New().String()
}

// NewTimeID returns a time-ordered (v7) UUID string. Ids generated by the same
// process sort by creation time and never collide.
func NewTimeID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
