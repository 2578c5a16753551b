package models

import (
	"strings"

	"github.com/google/uuid"
)

const shortIDLen = 10

// NewShortID returns a user-facing identifier, distinct from the primary key.
func NewShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:shortIDLen]
}
