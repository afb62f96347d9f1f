package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one pipeline run triggered by one committed
	// parameter change.
	RunID ID
	// TargetID is the raw identifier a user types, i.e. the numeric
	// part of a KIC ID.
	TargetID string
)

func (id RunID) String() string    { return ID(id).String() }
func (id TargetID) String() string { return string(id) }

// NewRunID creates a fresh run identifier.
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseTargetID parses a user-entered identifier.
func ParseTargetID(s string) (TargetID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("target identifier cannot be empty")
	}
	return TargetID(s), nil
}
