package util

import (
	"github.com/google/uuid"
)

// GenerateUUID generates a random UUID string used to tag a monitoring session
func GenerateUUID() string {
	return uuid.New().String()
}
