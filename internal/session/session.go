// Package session hosts the per-browser state: transcript, profile, cart,
// onboarding and the open sheets. The HTTP layer only ever calls Dispatch
// and Snapshot.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mumz-advisor/internal/cart"
	"mumz-advisor/internal/catalog"
	"mumz-advisor/internal/conversation"
	"mumz-advisor/internal/detail"
	"mumz-advisor/internal/metrics"
	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/store"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrUnknownCommand = errors.New("unknown command")
	ErrUnknownSheet   = errors.New("unknown sheet")
	// ErrOnboarded is returned for onboarding commands once a profile exists.
	ErrOnboarded = fmt.Errorf("%w: profile already exists", profile.ErrInvalidTransition)
)

type NoticeKind string

const (
	NoticeError NoticeKind = "error"
	NoticeInfo  NoticeKind = "info"
)

// Notice is a transient toast, delivered once in the next snapshot.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Deps are shared by every session of a process.
type Deps struct {
	Store     store.KV
	Assistant conversation.Assistant
	Logger    *zap.Logger
	Metrics   *metrics.Collector
	Now       func() time.Time
	NewUserID func(name string) string
}

type Session struct {
	id  string
	kv  store.KV
	log *zap.Logger
	met *metrics.Collector

	// mu serializes commands. A chat turn holds it only while reading the
	// profile, so snapshots stay available while the assistant answers.
	mu          sync.Mutex
	engine      *conversation.Engine
	cart        *cart.Cart
	wizard      *profile.Wizard
	editor      *profile.Editor
	viewer      detail.Viewer
	user        *profile.UserProfile
	cartOpen    bool
	profileOpen bool

	noticeMu sync.Mutex
	notices  []Notice
}

// New builds the session of one browser and loads its profile and cart.
func New(browserID string, deps Deps) *Session {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		id:  browserID,
		kv:  store.Namespace(deps.Store, browserID),
		log: log.With(zap.String("browser_id", browserID)),
		met: deps.Metrics,
	}

	engineOpts := []conversation.Option{
		conversation.WithNotifier(s),
		conversation.WithLogger(s.log),
	}
	if deps.Metrics != nil {
		engineOpts = append(engineOpts, conversation.WithObserver(deps.Metrics))
	}
	s.engine = conversation.New(deps.Assistant, engineOpts...)

	wizardOpts := []profile.WizardOption{profile.WithClock(now)}
	if deps.NewUserID != nil {
		wizardOpts = append(wizardOpts, profile.WithIDGenerator(deps.NewUserID))
	}
	s.wizard = profile.NewWizard(wizardOpts...)
	s.editor = profile.NewEditor(now)
	s.cart = cart.New(s.kv)

	s.load()
	return s
}

func (s *Session) ID() string { return s.id }

// Notify queues an error toast.
func (s *Session) Notify(message string) {
	s.notify(NoticeError, message)
}

func (s *Session) notify(kind NoticeKind, message string) {
	s.noticeMu.Lock()
	s.notices = append(s.notices, Notice{Kind: kind, Message: message})
	s.noticeMu.Unlock()
}

func (s *Session) drainNotices() []Notice {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	out := s.notices
	s.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Dispatch applies one command. On success the returned snapshot carries
// (and consumes) pending notices; on error it reflects the unchanged state
// and notices stay queued.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Snapshot, error) {
	var err error
	if sub, ok := cmd.(Submit); ok {
		err = s.submit(ctx, sub.Text)
	} else {
		s.mu.Lock()
		err = s.apply(cmd)
		s.mu.Unlock()
	}
	if err != nil {
		return s.snapshot(false), err
	}
	return s.snapshot(true), nil
}

// Snapshot returns the current state and consumes pending notices.
func (s *Session) Snapshot() Snapshot {
	return s.snapshot(true)
}

// Busy reports whether a chat turn is in flight.
func (s *Session) Busy() bool {
	return s.engine.Pending()
}

func (s *Session) submit(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return conversation.ErrNoProfile
	}
	u := s.user.Clone()
	s.mu.Unlock()
	return s.engine.Submit(ctx, text, &u)
}

func (s *Session) apply(cmd Command) error {
	switch c := cmd.(type) {
	case SetInput:
		s.engine.SetInput(c.Text)
	case Reset:
		return s.reset()

	case SubmitName:
		if err := s.requireSetup(); err != nil {
			return err
		}
		return s.wizard.SubmitName(c.Name)
	case AnswerChildren:
		if err := s.requireSetup(); err != nil {
			return err
		}
		return s.wizard.AnswerChildren(c.HasChildren)
	case AddChild:
		if err := s.requireSetup(); err != nil {
			return err
		}
		return s.wizard.AddChild(c.Draft.Name, c.Draft.Gender, c.Draft.Birthday)
	case DoneAddingChild:
		if err := s.requireSetup(); err != nil {
			return err
		}
		return s.wizard.DoneAdding()
	case OnboardingBack:
		if err := s.requireSetup(); err != nil {
			return err
		}
		return s.wizard.Back()
	case FinishOnboarding:
		return s.finishOnboarding()

	case OpenProduct:
		p, ok := s.engine.Product(c.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownProduct, c.ID)
		}
		s.viewer.Open(p, s.engine.Products())
	case NextProduct:
		s.viewer.Next()
	case PrevProduct:
		s.viewer.Prev()
	case CloseProduct:
		s.viewer.Close()
	case SwipeProduct:
		s.viewer.Swipe(c.StartX, c.EndX)
	case ToggleDescription:
		s.viewer.ToggleDescription()

	case AddToCart:
		return s.addToCart(c.ProductID)
	case RemoveFromCart:
		return s.removeFromCart(c.ID)
	case Checkout:
		s.notify(NoticeError, cart.PaymentsDisabledNotice)
		return s.cart.Checkout()

	case SetSheet:
		return s.setSheet(c.Sheet, c.Open)

	case StartAddChild:
		if s.user == nil {
			return conversation.ErrNoProfile
		}
		return s.editor.StartAdd()
	case StartEditChild:
		if s.user == nil {
			return conversation.ErrNoProfile
		}
		return s.editor.StartEdit(*s.user, c.Index)
	case UpdateChildDraft:
		return s.editor.UpdateDraft(c.Draft)
	case SaveChild:
		if s.user == nil {
			return conversation.ErrNoProfile
		}
		p, err := s.editor.Save(*s.user)
		if err != nil {
			return err
		}
		s.setUser(p)
	case CancelChildEdit:
		s.editor.Cancel()
	case RemoveChild:
		if s.user == nil {
			return conversation.ErrNoProfile
		}
		p, err := s.editor.Remove(*s.user, c.Index)
		if err != nil {
			return err
		}
		s.setUser(p)

	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
	return nil
}

func (s *Session) requireSetup() error {
	if s.user != nil {
		return ErrOnboarded
	}
	return nil
}

func (s *Session) finishOnboarding() error {
	if err := s.requireSetup(); err != nil {
		return err
	}
	p, err := s.wizard.Finish()
	if err != nil {
		return err
	}
	s.setUser(p)
	if err := s.cart.Switch(p.ID); err != nil {
		s.log.Warn("discarding stored cart", zap.Error(err))
	}
	s.log.Info("profile created", zap.String("user_id", p.ID), zap.Int("children", len(p.Children)))
	return nil
}

// setUser replaces the profile and persists it. A failed write is logged;
// the in-memory profile stays authoritative for this session.
func (s *Session) setUser(p profile.UserProfile) {
	p = p.Clone()
	s.user = &p
	if err := store.SaveJSON(s.kv, profile.StorageKey, p); err != nil {
		s.log.Error("persist profile", zap.Error(err))
	}
}

func (s *Session) findProduct(id string) (catalog.Product, bool) {
	if p, ok := s.engine.Product(id); ok {
		return p, true
	}
	if p, ok := s.viewer.Current(); ok && p.ID == id {
		return p, true
	}
	return catalog.Product{}, false
}

func (s *Session) addToCart(id string) error {
	if s.user == nil {
		return conversation.ErrNoProfile
	}
	p, ok := s.findProduct(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProduct, id)
	}
	changed, err := s.cart.Add(p)
	if err != nil {
		if errors.Is(err, cart.ErrNoUser) {
			return err
		}
		s.log.Error("persist cart", zap.Error(err))
	}
	if changed {
		s.cartMutated("add")
	}
	return nil
}

func (s *Session) removeFromCart(id string) error {
	if s.user == nil {
		return conversation.ErrNoProfile
	}
	removed, err := s.cart.Remove(id)
	if err != nil {
		if errors.Is(err, cart.ErrNoUser) {
			return err
		}
		s.log.Error("persist cart", zap.Error(err))
	}
	if removed {
		s.cartMutated("remove")
	}
	return nil
}

func (s *Session) cartMutated(op string) {
	if s.met != nil {
		s.met.CartMutated(op)
	}
}

func (s *Session) setSheet(sheet Sheet, open bool) error {
	switch sheet {
	case SheetCart:
		s.cartOpen = open
	case SheetProfile:
		if open && s.user == nil {
			return conversation.ErrNoProfile
		}
		if !open {
			s.editor.Cancel()
		}
		s.profileOpen = open
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSheet, sheet)
	}
	return nil
}

// reset starts a new page session: the transcript goes, the persisted
// profile and cart are read again. Nothing changes while a turn is in flight.
func (s *Session) reset() error {
	if err := s.engine.Reset(); err != nil {
		return err
	}
	s.viewer.Close()
	s.editor.Cancel()
	s.cartOpen, s.profileOpen = false, false
	s.load()
	return nil
}

// load reads the profile and its cart. Unreadable or invalid data counts as
// absent, which sends the browser through onboarding again.
func (s *Session) load() {
	s.user = nil
	var p profile.UserProfile
	found, err := store.LoadJSON(s.kv, profile.StorageKey, &p)
	switch {
	case err != nil:
		s.log.Warn("discarding stored profile", zap.Error(err))
	case found:
		if verr := p.Validate(); verr != nil {
			s.log.Warn("discarding stored profile", zap.Error(verr))
		} else {
			p = p.Clone()
			s.user = &p
		}
	}

	userID := ""
	if s.user != nil {
		userID = s.user.ID
	}
	if err := s.cart.Switch(userID); err != nil {
		s.log.Warn("discarding stored cart", zap.Error(err))
	}
}
