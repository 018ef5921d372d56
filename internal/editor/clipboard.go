package editor

import (
	"sync"

	"SceneBoard/internal/state"
)

// DefaultClipboardKey is the slot holding the most recent copy.
const DefaultClipboardKey = "sceneboard.clipboard"

// Slot is a key/value store outliving the editing session, such as the
// application preferences.
type Slot interface {
	Get(key string) string
	Set(key, value string)
}

// MemorySlot is a process-local Slot.
type MemorySlot struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string]string)}
}

func (m *MemorySlot) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *MemorySlot) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Clipboard stores one encoded object under a well-known key.
type Clipboard struct {
	slot   Slot
	key    string
	offset float64
}

// NewClipboard binds slot and key. An empty key selects
// DefaultClipboardKey.
func NewClipboard(slot Slot, key string) *Clipboard {
	if key == "" {
		key = DefaultClipboardKey
	}
	return &Clipboard{slot: slot, key: key, offset: state.DuplicateOffset}
}

// Copy encodes obj, and its subtree, overwriting the slot. obj is not
// modified.
func (c *Clipboard) Copy(obj *state.Object) error {
	data, err := state.MarshalObject(state.EncodeObject(obj))
	if err != nil {
		return err
	}
	c.slot.Set(c.key, string(data))
	return nil
}

// Empty reports whether there is anything to paste.
func (c *Clipboard) Empty() bool {
	return c.slot.Get(c.key) == ""
}

// Paste decodes the slot, shifts the copy by the paste offset, adds it on top
// of scene and makes it the sole selection. An empty slot returns nil, nil.
// A malformed payload returns a *state.DecodeError and leaves scene alone.
func (c *Clipboard) Paste(scene *state.Scene) (*state.Object, error) {
	data := c.slot.Get(c.key)
	if data == "" {
		return nil, nil
	}
	d, err := state.UnmarshalObject([]byte(data))
	if err != nil {
		return nil, err
	}
	obj, err := state.DecodeObject(d)
	if err != nil {
		return nil, err
	}
	obj.Translate(c.offset, c.offset)
	scene.Add(obj)
	if err := scene.Selection().Set(obj.ID); err != nil {
		return nil, err
	}
	return obj, nil
}
