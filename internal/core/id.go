package core

import "github.com/google/uuid"

// IDLength is the length of record and group identifiers.
const IDLength = 8

// NewID returns a short random identifier: the first 8 characters of a
// random UUID. Collisions are possible but not checked.
func NewID() string {
	return uuid.NewString()[:IDLength]
}
