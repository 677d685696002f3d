package profile

import (
	"fmt"
	"strings"
	"time"
)

// Step is one state of the onboarding wizard. Each variant carries exactly
// the data collected so far.
type Step interface {
	StepName() string
}

type NameEntry struct{}

type ChildrenChoice struct {
	Name string
	// Children added before going back from ChildEntry; restored on "yes".
	Children []ChildData
}

type ChildEntry struct {
	Name     string
	Children []ChildData
}

type Confirm struct {
	Name     string
	Children []ChildData
}

func (NameEntry) StepName() string      { return "name" }
func (ChildrenChoice) StepName() string { return "children" }
func (ChildEntry) StepName() string     { return "child" }
func (Confirm) StepName() string        { return "confirm" }

// Wizard walks name -> has-children? -> (add child)* -> confirm.
type Wizard struct {
	step  Step
	now   func() time.Time
	newID func(name string) string
}

type WizardOption func(*Wizard)

func WithClock(now func() time.Time) WizardOption {
	return func(w *Wizard) { w.now = now }
}

func WithIDGenerator(gen func(name string) string) WizardOption {
	return func(w *Wizard) { w.newID = gen }
}

func NewWizard(opts ...WizardOption) *Wizard {
	w := &Wizard{step: NameEntry{}, now: time.Now, newID: GenerateUserID}
	for _, o := range opts {
		o(w)
	}
	return w
}

func (w *Wizard) Step() Step { return w.step }

func (w *Wizard) SubmitName(name string) error {
	if _, ok := w.step.(NameEntry); !ok {
		return w.invalid("submit name")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	w.step = ChildrenChoice{Name: name}
	return nil
}

// AnswerChildren moves to child entry on yes. On no it goes straight to
// confirmation and drops any child drafted earlier.
func (w *Wizard) AnswerChildren(hasChildren bool) error {
	s, ok := w.step.(ChildrenChoice)
	if !ok {
		return w.invalid("answer children")
	}
	if hasChildren {
		w.step = ChildEntry{Name: s.Name, Children: s.Children}
	} else {
		w.step = Confirm{Name: s.Name}
	}
	return nil
}

func (w *Wizard) AddChild(name string, gender Gender, birthday string) error {
	s, ok := w.step.(ChildEntry)
	if !ok {
		return w.invalid("add child")
	}
	c, err := NewChild(name, gender, birthday, w.now())
	if err != nil {
		return err
	}
	children := append(append([]ChildData(nil), s.Children...), c)
	w.step = ChildEntry{Name: s.Name, Children: children}
	return nil
}

func (w *Wizard) DoneAdding() error {
	s, ok := w.step.(ChildEntry)
	if !ok {
		return w.invalid("finish adding children")
	}
	if len(s.Children) == 0 {
		return ErrNoChildren
	}
	w.step = Confirm{Name: s.Name, Children: s.Children}
	return nil
}

func (w *Wizard) Back() error {
	s, ok := w.step.(ChildEntry)
	if !ok {
		return w.invalid("go back")
	}
	w.step = ChildrenChoice{Name: s.Name, Children: s.Children}
	return nil
}

// Finish creates the profile. The wizard is reset so it cannot be
// finished twice.
func (w *Wizard) Finish() (UserProfile, error) {
	s, ok := w.step.(Confirm)
	if !ok {
		return UserProfile{}, w.invalid("finish")
	}
	p := UserProfile{
		ID:       w.newID(s.Name),
		Name:     s.Name,
		Children: append([]ChildData{}, s.Children...),
	}
	if err := p.Validate(); err != nil {
		return UserProfile{}, err
	}
	w.step = NameEntry{}
	return p, nil
}

func (w *Wizard) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s at step %q", ErrInvalidTransition, action, w.step.StepName())
}
