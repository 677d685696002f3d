package profile

import "time"

type editMode int

const (
	editIdle editMode = iota
	editAdding
	editExisting
)

// ChildDraft is the child form as typed, before validation.
type ChildDraft struct {
	Name     string `json:"name"`
	Gender   Gender `json:"gender"`
	Birthday string `json:"birthday"`
}

// Editor maintains the children of an existing profile. Only one child
// can be added or edited at a time; the profile name is fixed.
type Editor struct {
	mode  editMode
	index int
	draft ChildDraft
	now   func() time.Time
}

func NewEditor(now func() time.Time) *Editor {
	if now == nil {
		now = time.Now
	}
	return &Editor{now: now}
}

func (e *Editor) Active() bool { return e.mode != editIdle }

func (e *Editor) Draft() ChildDraft { return e.draft }

// Editing returns the index of the child being edited, if any.
func (e *Editor) Editing() (int, bool) {
	return e.index, e.mode == editExisting
}

func (e *Editor) Adding() bool { return e.mode == editAdding }

func (e *Editor) StartAdd() error {
	if e.Active() {
		return ErrEditInProgress
	}
	e.mode, e.index, e.draft = editAdding, -1, ChildDraft{}
	return nil
}

func (e *Editor) StartEdit(p UserProfile, i int) error {
	if e.Active() {
		return ErrEditInProgress
	}
	if i < 0 || i >= len(p.Children) {
		return ErrChildIndex
	}
	c := p.Children[i]
	e.mode, e.index = editExisting, i
	e.draft = ChildDraft{Name: c.Name, Gender: c.Gender, Birthday: c.Birthday}
	return nil
}

func (e *Editor) UpdateDraft(d ChildDraft) error {
	if !e.Active() {
		return ErrNoEdit
	}
	e.draft = d
	return nil
}

// Save validates the draft, recomputes the age and returns the updated
// profile. On a validation error the edit stays open.
func (e *Editor) Save(p UserProfile) (UserProfile, error) {
	if !e.Active() {
		return p, ErrNoEdit
	}
	c, err := NewChild(e.draft.Name, e.draft.Gender, e.draft.Birthday, e.now())
	if err != nil {
		return p, err
	}
	out := p.Clone()
	if e.mode == editExisting {
		if e.index >= len(out.Children) {
			return p, ErrChildIndex
		}
		out.Children[e.index] = c
	} else {
		out.Children = append(out.Children, c)
	}
	e.Cancel()
	return out, nil
}

func (e *Editor) Cancel() {
	e.mode, e.index, e.draft = editIdle, -1, ChildDraft{}
}

func (e *Editor) Remove(p UserProfile, i int) (UserProfile, error) {
	if e.Active() {
		return p, ErrEditInProgress
	}
	if i < 0 || i >= len(p.Children) {
		return p, ErrChildIndex
	}
	out := p.Clone()
	out.Children = append(out.Children[:i], out.Children[i+1:]...)
	return out, nil
}
