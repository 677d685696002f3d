// Package conversation owns the chat transcript and the lifecycle of the
// single in-flight question.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mumz-advisor/internal/catalog"
	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/types"
)

const (
	Greeting        = "Hello! I'm your product assistant. Ask me about our products!"
	FallbackMessage = "Sorry, I couldn't process your question. Please try again later."
	FailureNotice   = "Failed to get an answer. Please try again later."
)

var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrNoProfile  = errors.New("no user profile")
	ErrPending    = errors.New("a question is already in flight")
)

// Turn outcomes reported to the Observer.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Sender  Sender `json:"sender"`
}

// Assistant answers one question for one user.
type Assistant interface {
	Ask(ctx context.Context, query string, user profile.UserProfile) (*types.ChatResponse, error)
}

// Notifier receives transient error notifications (toasts).
type Notifier interface {
	Notify(message string)
}

type Observer interface {
	ObserveTurn(outcome string, elapsed time.Duration)
}

type Snapshot struct {
	Messages  []Message         `json:"messages"`
	Input     string            `json:"input"`
	Pending   bool              `json:"pending"`
	CanSubmit bool              `json:"canSubmit"`
	Products  []catalog.Product `json:"products"`
}

type Engine struct {
	mu        sync.Mutex
	assistant Assistant
	notifier  Notifier
	observer  Observer
	log       *zap.Logger
	newID     func() string

	messages []Message
	input    string
	pending  bool
	products []catalog.Product
}

type Option func(*Engine)

func WithNotifier(n Notifier) Option { return func(e *Engine) { e.notifier = n } }

func WithObserver(o Observer) Option { return func(e *Engine) { e.observer = o } }

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

func WithIDGenerator(gen func() string) Option { return func(e *Engine) { e.newID = gen } }

func New(a Assistant, opts ...Option) *Engine {
	e := &Engine{
		assistant: a,
		log:       zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	e.messages = []Message{e.message(Greeting, SenderAssistant)}
	e.products = []catalog.Product{}
	return e
}

func (e *Engine) SetInput(text string) {
	e.mu.Lock()
	e.input = text
	e.mu.Unlock()
}

// Submit runs one turn: it records the question, calls the assistant and
// records exactly one reply. A failed call is answered with the fallback
// message and a notification; it is not returned as an error. Errors are
// only returned for rejected submissions, which leave the state untouched.
func (e *Engine) Submit(ctx context.Context, text string, user *profile.UserProfile) error {
	query := strings.TrimSpace(text)
	if query == "" {
		return ErrEmptyQuery
	}
	if user == nil {
		return ErrNoProfile
	}

	e.mu.Lock()
	if e.pending {
		e.mu.Unlock()
		return ErrPending
	}
	e.messages = append(e.messages, e.message(query, SenderUser))
	e.input = ""
	e.pending = true
	e.products = []catalog.Product{}
	e.mu.Unlock()

	start := time.Now()
	resp, err := e.assistant.Ask(ctx, query, user.Clone())
	elapsed := time.Since(start)

	e.mu.Lock()
	if err != nil {
		e.messages = append(e.messages, e.message(FallbackMessage, SenderAssistant))
	} else {
		e.messages = append(e.messages, e.message(resp.Answer, SenderAssistant))
		e.products = catalog.ProjectAll(resp.RelatedProducts)
	}
	e.pending = false
	e.mu.Unlock()

	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
		e.log.Warn("assistant call failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		if e.notifier != nil {
			e.notifier.Notify(FailureNotice)
		}
	} else {
		e.log.Info("assistant answered",
			zap.Int("products", len(resp.RelatedProducts)),
			zap.Duration("elapsed", elapsed),
		)
	}
	if e.observer != nil {
		e.observer.ObserveTurn(outcome, elapsed)
	}
	return nil
}

// Product looks up a product of the current list by id.
func (e *Engine) Product(id string) (catalog.Product, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := catalog.IndexOf(e.products, id); i >= 0 {
		return e.products[i], true
	}
	return catalog.Product{}, false
}

func (e *Engine) Products() []catalog.Product {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]catalog.Product{}, e.products...)
}

func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// Reset starts a fresh transcript. It is refused with ErrPending while a
// turn is in flight, so at most one request is ever outstanding.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending {
		return ErrPending
	}
	e.messages = []Message{e.message(Greeting, SenderAssistant)}
	e.input = ""
	e.products = []catalog.Product{}
	return nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Messages:  append([]Message{}, e.messages...),
		Input:     e.input,
		Pending:   e.pending,
		CanSubmit: !e.pending && strings.TrimSpace(e.input) != "",
		Products:  append([]catalog.Product{}, e.products...),
	}
}

func (e *Engine) message(content string, sender Sender) Message {
	return Message{ID: e.newID(), Content: content, Sender: sender}
}
