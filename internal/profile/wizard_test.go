package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWizard() *Wizard {
	return NewWizard(
		WithClock(func() time.Time { return today }),
		WithIDGenerator(func(name string) string { return "test-1234" }),
	)
}

func TestWizardWithChildren(t *testing.T) {
	w := newTestWizard()
	assert.Equal(t, "name", w.Step().StepName())

	require.NoError(t, w.SubmitName(" Sara "))
	require.NoError(t, w.AnswerChildren(true))
	assert.Equal(t, "child", w.Step().StepName())

	require.NoError(t, w.AddChild("Lina", GenderFemale, "2016-03-15"))
	require.NoError(t, w.AddChild("Omar", GenderMale, "2021-12-01"))
	require.NoError(t, w.DoneAdding())
	assert.Equal(t, "confirm", w.Step().StepName())

	p, err := w.Finish()
	require.NoError(t, err)
	assert.Equal(t, "test-1234", p.ID)
	assert.Equal(t, "Sara", p.Name)
	require.Len(t, p.Children, 2)
	assert.Equal(t, 10, p.Children[0].Age)
	assert.Equal(t, 4, p.Children[1].Age)

	assert.Equal(t, "name", w.Step().StepName())
	_, err = w.Finish()
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestWizardWithoutChildren(t *testing.T) {
	w := newTestWizard()
	require.NoError(t, w.SubmitName("Sara"))
	require.NoError(t, w.AnswerChildren(false))

	p, err := w.Finish()
	require.NoError(t, err)
	assert.NotNil(t, p.Children)
	assert.Empty(t, p.Children)
}

func TestWizardRejectsBlankName(t *testing.T) {
	w := newTestWizard()
	assert.ErrorIs(t, w.SubmitName("   "), ErrNameRequired)
	assert.Equal(t, "name", w.Step().StepName())
}

func TestWizardIllegalTransitions(t *testing.T) {
	w := newTestWizard()
	assert.ErrorIs(t, w.AnswerChildren(true), ErrInvalidTransition)
	assert.ErrorIs(t, w.AddChild("Lina", GenderFemale, "2016-03-15"), ErrInvalidTransition)
	assert.ErrorIs(t, w.DoneAdding(), ErrInvalidTransition)
	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)

	require.NoError(t, w.SubmitName("Sara"))
	assert.ErrorIs(t, w.SubmitName("Other"), ErrInvalidTransition)
}

func TestWizardDoneAddingNeedsAChild(t *testing.T) {
	w := newTestWizard()
	require.NoError(t, w.SubmitName("Sara"))
	require.NoError(t, w.AnswerChildren(true))
	assert.ErrorIs(t, w.DoneAdding(), ErrNoChildren)
}

func TestWizardInvalidChildKeepsStep(t *testing.T) {
	w := newTestWizard()
	require.NoError(t, w.SubmitName("Sara"))
	require.NoError(t, w.AnswerChildren(true))

	assert.Error(t, w.AddChild("Lina", GenderUnset, "2016-03-15"))
	s, ok := w.Step().(ChildEntry)
	require.True(t, ok)
	assert.Empty(t, s.Children)
}

func TestWizardBackKeepsChildrenUntilNo(t *testing.T) {
	w := newTestWizard()
	require.NoError(t, w.SubmitName("Sara"))
	require.NoError(t, w.AnswerChildren(true))
	require.NoError(t, w.AddChild("Lina", GenderFemale, "2016-03-15"))
	require.NoError(t, w.Back())

	require.NoError(t, w.AnswerChildren(true))
	s := w.Step().(ChildEntry)
	assert.Len(t, s.Children, 1)

	require.NoError(t, w.Back())
	require.NoError(t, w.AnswerChildren(false))
	c := w.Step().(Confirm)
	assert.Empty(t, c.Children)
}
