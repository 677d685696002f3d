package session

import "mumz-advisor/internal/profile"

// Command is one user action. Every state change goes through
// Session.Dispatch with one of the types below.
type Command interface {
	command()
}

type (
	SetInput struct{ Text string }
	Submit   struct{ Text string }
	Reset    struct{}

	SubmitName       struct{ Name string }
	AnswerChildren   struct{ HasChildren bool }
	AddChild         struct{ Draft profile.ChildDraft }
	DoneAddingChild  struct{}
	OnboardingBack   struct{}
	FinishOnboarding struct{}

	OpenProduct       struct{ ID string }
	NextProduct       struct{}
	PrevProduct       struct{}
	CloseProduct      struct{}
	SwipeProduct      struct{ StartX, EndX float64 }
	ToggleDescription struct{}

	AddToCart      struct{ ProductID string }
	RemoveFromCart struct{ ID string }
	Checkout       struct{}

	SetSheet struct {
		Sheet Sheet
		Open  bool
	}

	StartAddChild    struct{}
	StartEditChild   struct{ Index int }
	UpdateChildDraft struct{ Draft profile.ChildDraft }
	SaveChild        struct{}
	CancelChildEdit  struct{}
	RemoveChild      struct{ Index int }
)

func (SetInput) command()          {}
func (Submit) command()            {}
func (Reset) command()             {}
func (SubmitName) command()        {}
func (AnswerChildren) command()    {}
func (AddChild) command()          {}
func (DoneAddingChild) command()   {}
func (OnboardingBack) command()    {}
func (FinishOnboarding) command()  {}
func (OpenProduct) command()       {}
func (NextProduct) command()       {}
func (PrevProduct) command()       {}
func (CloseProduct) command()      {}
func (SwipeProduct) command()      {}
func (ToggleDescription) command() {}
func (AddToCart) command()         {}
func (RemoveFromCart) command()    {}
func (Checkout) command()          {}
func (SetSheet) command()          {}
func (StartAddChild) command()     {}
func (StartEditChild) command()    {}
func (UpdateChildDraft) command()  {}
func (SaveChild) command()         {}
func (CancelChildEdit) command()   {}
func (RemoveChild) command()       {}

// Sheet names the sheets a client can toggle directly. The product sheet
// follows OpenProduct/CloseProduct and the setup sheet follows onboarding.
type Sheet string

const (
	SheetCart    Sheet = "cart"
	SheetProfile Sheet = "profile"
)
