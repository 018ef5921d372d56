package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionSetCollapsesDuplicates(t *testing.T) {
	s := NewScene()
	a := s.Add(NewRect(0, 0, 10, 10))
	b := s.Add(NewRect(0, 0, 10, 10))

	require.NoError(t, s.Selection().Set(a.ID, b.ID, a.ID))
	assert.Equal(t, []string{a.ID, b.ID}, s.Selection().IDs())
	assert.Same(t, a, s.Selection().Primary())

	err := s.Selection().Set(b.ID, "missing")
	assert.ErrorIs(t, err, ErrUnknownObject)
	assert.Equal(t, []string{a.ID, b.ID}, s.Selection().IDs(), "failed set keeps the old selection")
}

func TestSelectionToggle(t *testing.T) {
	s := NewScene()
	a := s.Add(NewRect(0, 0, 10, 10))
	b := s.Add(NewRect(0, 0, 10, 10))
	sel := s.Selection()

	require.NoError(t, sel.Toggle(a.ID))
	require.NoError(t, sel.Toggle(b.ID))
	assert.Equal(t, 2, sel.Len())
	require.NoError(t, sel.Toggle(a.ID))
	assert.Equal(t, []string{b.ID}, sel.IDs())
	assert.False(t, sel.Contains(a.ID))

	sel.Clear()
	assert.True(t, sel.Empty())
	assert.Nil(t, sel.Primary())
}

func TestSelectionIDsIsACopy(t *testing.T) {
	s := NewScene()
	a := s.Add(NewRect(0, 0, 10, 10))
	require.NoError(t, s.Selection().Add(a.ID))

	got := s.Selection().IDs()
	got[0] = "changed"
	assert.Equal(t, []string{a.ID}, s.Selection().IDs())
}

func TestSelectionGroupable(t *testing.T) {
	s := NewScene()
	a := s.Add(NewRect(0, 0, 10, 10))
	b := s.Add(NewRect(0, 0, 10, 10))
	c := s.Add(NewRect(0, 0, 10, 10))
	sel := s.Selection()

	require.NoError(t, sel.Set(a.ID))
	assert.False(t, sel.Groupable())
	require.NoError(t, sel.Set(a.ID, b.ID))
	assert.True(t, sel.Groupable())

	g, err := s.Group(sel.IDs())
	require.NoError(t, err)
	assert.ErrorIs(t, sel.Set(a.ID, c.ID), ErrGroupMember)
	assert.Equal(t, []string{g.ID}, sel.IDs())
	assert.False(t, sel.Groupable())
	require.NoError(t, sel.Set(g.ID, c.ID))
	assert.True(t, sel.Groupable())
}

func TestSelectionRejectsGroupMembers(t *testing.T) {
	s := NewScene()
	a := s.Add(NewRect(0, 0, 10, 10))
	b := s.Add(NewRect(20, 0, 10, 10))
	g, err := s.Group([]string{a.ID, b.ID})
	require.NoError(t, err)
	sel := s.Selection()

	for name, fn := range map[string]func(string) error{
		"set":    func(id string) error { return sel.Set(g.ID, id) },
		"add":    sel.Add,
		"toggle": sel.Toggle,
	} {
		err := fn(a.ID)
		var inv *InvariantError
		require.ErrorAs(t, err, &inv, name)
		assert.ErrorIs(t, err, ErrGroupMember, name)
		assert.NotErrorIs(t, err, ErrUnknownObject, name)
		assert.Equal(t, a.ID, inv.ID, name)
		assert.Equal(t, []string{g.ID}, sel.IDs(), name)
	}
}

func TestSelectionView(t *testing.T) {
	s := NewScene()
	_, ok := s.Selection().View()
	assert.False(t, ok)

	txt := NewText(0, 0, "hello")
	txt.Fill = "#2d3748"
	s.Add(txt)
	r := s.Add(NewRect(0, 0, 10, 10))
	require.NoError(t, s.Selection().Set(txt.ID, r.ID))

	v, ok := s.Selection().View()
	require.True(t, ok)
	assert.Equal(t, txt.ID, v.ID)
	assert.Equal(t, 2, v.Count)
	assert.True(t, v.IsText)
	assert.Equal(t, "hello", v.Text)
	assert.Equal(t, DefaultFontFamily, v.FontFamily)
	assert.Equal(t, "#2d3748", v.Fill)

	require.NoError(t, s.Selection().Set(r.ID))
	v, _ = s.Selection().View()
	assert.False(t, v.IsText)
	assert.Empty(t, v.Text)
}
