package store

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"SceneBoard/internal/state"
)

// Memory keeps encoded documents in process. Unknown identifiers load as a
// blank white scene.
type Memory struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) Save(ctx context.Context, doc state.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := state.Marshal(doc)
	if err != nil {
		return "", err
	}
	id := newID()
	m.mu.Lock()
	m.docs[id] = data
	m.mu.Unlock()
	log.WithFields(log.Fields{"component": "store", "id": id, "bytes": len(data)}).Debug("document saved")
	return id, nil
}

func (m *Memory) Load(ctx context.Context, id string) (state.Document, error) {
	if err := ctx.Err(); err != nil {
		return state.Document{}, err
	}
	m.mu.RLock()
	data, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return Blank(), nil
	}
	return state.Unmarshal(data)
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
