package state

import (
	"github.com/google/uuid"
)

// NewID returns a fresh object identifier.
func NewID() string {
	return uuid.NewString()
}

// assignIDs gives o and all of its descendants an identifier that is not
// already taken. taken is updated in place.
func assignIDs(o *Object, taken map[string]bool, fresh bool) {
	if fresh || o.ID == "" || taken[o.ID] {
		o.ID = NewID()
	}
	taken[o.ID] = true
	for _, c := range o.Children {
		assignIDs(c, taken, fresh)
	}
}
