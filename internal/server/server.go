package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mumz-advisor/internal/cart"
	"mumz-advisor/internal/config"
	"mumz-advisor/internal/conversation"
	"mumz-advisor/internal/metrics"
	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/session"
	"mumz-advisor/internal/types"
)

type Server struct {
	router   *chi.Mux
	cfg      config.Config
	sessions *session.Manager
	log      *zap.Logger
	metrics  *metrics.Collector
	validate *validator.Validate
	// storage health; nil means always healthy
	health func() error
}

type Option func(*Server)

func WithHealthCheck(fn func() error) Option {
	return func(s *Server) { s.health = fn }
}

func NewServer(cfg config.Config, sessions *session.Manager, log *zap.Logger, met *metrics.Collector, opts ...Option) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if met == nil {
		met = metrics.NewCollector("advisor")
	}
	r := chi.NewRouter()
	s := &Server{
		router:   r,
		cfg:      cfg,
		sessions: sessions,
		log:      log,
		metrics:  met,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, o := range opts {
		o(s)
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", BrowserIDHeader},
		ExposedHeaders:   []string{BrowserIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/session", s.handleSnapshot)
		r.Post("/session/reset", s.handleReset)
		r.Put("/input", s.handleSetInput)
		r.Post("/chat", s.handleChat)

		r.Route("/onboarding", func(r chi.Router) {
			r.Post("/name", s.handleOnboardingName)
			r.Post("/children", s.handleOnboardingChildren)
			r.Post("/child", s.handleOnboardingChild)
			r.Post("/done", s.handleOnboardingDone)
			r.Post("/back", s.handleOnboardingBack)
			r.Post("/finish", s.handleOnboardingFinish)
		})

		r.Post("/products/{id}/open", s.handleOpenProduct)
		r.Route("/detail", func(r chi.Router) {
			r.Post("/next", s.handleDetailNext)
			r.Post("/prev", s.handleDetailPrev)
			r.Post("/close", s.handleDetailClose)
			r.Post("/swipe", s.handleDetailSwipe)
			r.Post("/toggle-description", s.handleToggleDescription)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items", s.handleAddToCart)
			r.Delete("/items/{id}", s.handleRemoveFromCart)
			r.Post("/checkout", s.handleCheckout)
		})

		r.Post("/sheets/{sheet}/{action}", s.handleSheet)

		r.Route("/profile/children", func(r chi.Router) {
			r.Post("/add", s.handleStartAddChild)
			r.Post("/{index}/edit", s.handleStartEditChild)
			r.Put("/draft", s.handleUpdateChildDraft)
			r.Post("/save", s.handleSaveChild)
			r.Post("/cancel", s.handleCancelChildEdit)
			r.Delete("/{index}", s.handleRemoveChild)
		})
	})
}

func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health(); err != nil {
			s.log.Error("health check failed", zap.Error(err))
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dispatch runs cmd on the caller's session and answers with the new
// snapshot or the mapped error.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, cmd session.Command) {
	sess := s.session(w, r)
	snap, err := sess.Dispatch(r.Context(), cmd)
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) *session.Session {
	return s.sessions.Get(getOrCreateBrowserID(w, r, s.cfg.CookieSecure))
}

// decode reads a JSON body into v and validates it. It writes the 400
// itself and reports false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (s *Server) indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "index must be an integer")
		return 0, false
	}
	return i, true
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, types.ErrorResponse{Error: msg})
}

func (s *Server) writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if errors.Is(err, cart.ErrPaymentsDisabled) {
		msg = cart.PaymentsDisabledNotice
	}
	if code >= http.StatusInternalServerError {
		s.log.Error("command failed", zap.Error(err), zap.String("path", r.URL.Path))
		msg = "internal error"
	}
	s.writeError(w, code, msg)
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, session.ErrUnknownProduct):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrPaymentsDisabled):
		return http.StatusPaymentRequired
	case errors.Is(err, conversation.ErrPending),
		errors.Is(err, profile.ErrInvalidTransition),
		errors.Is(err, profile.ErrEditInProgress),
		errors.Is(err, profile.ErrNoEdit):
		return http.StatusConflict
	case errors.As(err, &verrs),
		errors.Is(err, conversation.ErrEmptyQuery),
		errors.Is(err, conversation.ErrNoProfile),
		errors.Is(err, profile.ErrNameRequired),
		errors.Is(err, profile.ErrBirthdayInFuture),
		errors.Is(err, profile.ErrChildIndex),
		errors.Is(err, profile.ErrNoChildren),
		errors.Is(err, session.ErrUnknownSheet),
		errors.Is(err, cart.ErrNoUser):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// requestLogger logs one line per request and feeds the HTTP metrics. The
// route pattern, not the raw path, is used as the metric label.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveRequest(r.Method, route, status, elapsed)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
