// Package store holds the document collaborators used to save and load
// scenes by identifier.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"SceneBoard/internal/state"
)

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrInvalidID = errors.New("store: invalid document id")
)

// Store saves documents under generated identifiers and loads them back.
type Store interface {
	Load(ctx context.Context, id string) (state.Document, error)
	Save(ctx context.Context, doc state.Document) (string, error)
}

// Blank is the document returned for a scene that was never saved.
func Blank() state.Document {
	return state.Document{Background: state.DefaultBackground, Objects: []state.ObjectDoc{}}
}

func newID() string {
	return uuid.NewString()
}

// checkID rejects anything that is not a canonical uuid, which also keeps
// identifiers safe to use as file names.
func checkID(id string) error {
	u, err := uuid.Parse(id)
	if err != nil || u.String() != id {
		return ErrInvalidID
	}
	return nil
}
