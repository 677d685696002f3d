package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile() UserProfile {
	return UserProfile{
		ID:   "sara-1234",
		Name: "Sara",
		Children: []ChildData{
			{Name: "Lina", Age: 9, Gender: GenderFemale, Birthday: "2016-03-15"},
			{Name: "Omar", Age: 4, Gender: GenderMale, Birthday: "2021-12-01"},
		},
	}
}

func newTestEditor() *Editor {
	return NewEditor(func() time.Time { return today })
}

func TestEditorAddChild(t *testing.T) {
	e := newTestEditor()
	p := sampleProfile()

	require.NoError(t, e.StartAdd())
	assert.True(t, e.Adding())
	require.NoError(t, e.UpdateDraft(ChildDraft{Name: "Yara", Gender: GenderFemale, Birthday: "2024-01-10"}))

	out, err := e.Save(p)
	require.NoError(t, err)
	require.Len(t, out.Children, 3)
	assert.Equal(t, 2, out.Children[2].Age)
	assert.Len(t, p.Children, 2, "input profile must not be mutated")
	assert.False(t, e.Active())
}

func TestEditorEditRecomputesAge(t *testing.T) {
	e := newTestEditor()
	p := sampleProfile()

	require.NoError(t, e.StartEdit(p, 0))
	idx, editing := e.Editing()
	assert.True(t, editing)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "Lina", e.Draft().Name)

	require.NoError(t, e.UpdateDraft(ChildDraft{Name: "Lina", Gender: GenderFemale, Birthday: "2016-03-14"}))
	out, err := e.Save(p)
	require.NoError(t, err)
	assert.Equal(t, 10, out.Children[0].Age)
	assert.Equal(t, 9, p.Children[0].Age)
}

func TestEditorOneAtATime(t *testing.T) {
	e := newTestEditor()
	p := sampleProfile()

	require.NoError(t, e.StartEdit(p, 1))
	assert.ErrorIs(t, e.StartAdd(), ErrEditInProgress)
	assert.ErrorIs(t, e.StartEdit(p, 0), ErrEditInProgress)
	_, err := e.Remove(p, 0)
	assert.ErrorIs(t, err, ErrEditInProgress)

	e.Cancel()
	assert.False(t, e.Active())
	out, err := e.Remove(p, 0)
	require.NoError(t, err)
	require.Len(t, out.Children, 1)
	assert.Equal(t, "Omar", out.Children[0].Name)
}

func TestEditorInvalidDraftKeepsEditOpen(t *testing.T) {
	e := newTestEditor()
	p := sampleProfile()

	require.NoError(t, e.StartAdd())
	require.NoError(t, e.UpdateDraft(ChildDraft{Name: "Yara"}))
	out, err := e.Save(p)
	assert.Error(t, err)
	assert.Equal(t, p, out)
	assert.True(t, e.Active())
}

func TestEditorErrors(t *testing.T) {
	e := newTestEditor()
	p := sampleProfile()

	assert.ErrorIs(t, e.UpdateDraft(ChildDraft{}), ErrNoEdit)
	_, err := e.Save(p)
	assert.ErrorIs(t, err, ErrNoEdit)
	assert.ErrorIs(t, e.StartEdit(p, 5), ErrChildIndex)
	_, err = e.Remove(p, -1)
	assert.ErrorIs(t, err, ErrChildIndex)
}
