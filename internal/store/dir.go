package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

// Dir stores each document as <dir>/<id>.json.
type Dir struct {
	root string
}

// NewDir creates root when it does not exist yet.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("store: create %s: %w", root, err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) path(id string) string {
	return filepath.Join(d.root, id+".json")
}

func (d *Dir) Save(ctx context.Context, doc state.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := state.Marshal(doc)
	if err != nil {
		return "", err
	}
	id := newID()
	tmp, err := os.CreateTemp(d.root, ".save-*")
	if err != nil {
		return "", fmt.Errorf("store: save: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: save: %w", err)
	}
	if err := os.Rename(tmp.Name(), d.path(id)); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("store: save: %w", err)
	}
	log.WithFields(log.Fields{"component": "store", "id": id, "dir": d.root}).Info("document saved")
	return id, nil
}

func (d *Dir) Load(ctx context.Context, id string) (state.Document, error) {
	if err := ctx.Err(); err != nil {
		return state.Document{}, err
	}
	if err := checkID(id); err != nil {
		return state.Document{}, err
	}
	data, err := os.ReadFile(d.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return state.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return state.Document{}, fmt.Errorf("store: load %s: %w", id, err)
	}
	return state.Unmarshal(data)
}
