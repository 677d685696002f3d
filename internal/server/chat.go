package server

import (
	"context"
	"net/http"

	"mumz-advisor/internal/profile"
	"mumz-advisor/internal/session"
	"mumz-advisor/internal/types"
)

// GET /api/session
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.session(w, r).Snapshot())
}

// POST /api/session/reset
// Starts a new page session; profile and cart are reloaded from storage.
// 409 while a question is in flight.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.Reset{})
}

// PUT /api/input { text }
func (s *Server) handleSetInput(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.SetInput{Text: req.Text})
}

// POST /api/chat { text }
// Blocks until the turn settles. A client that goes away does not abort
// the turn; the outbound client timeout bounds it instead.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req types.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	sess := s.session(w, r)
	snap, err := sess.Dispatch(context.WithoutCancel(r.Context()), session.Submit{Text: req.Text})
	if err != nil {
		s.writeDispatchError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// POST /api/onboarding/name { name }
func (s *Server) handleOnboardingName(w http.ResponseWriter, r *http.Request) {
	var req types.NameRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.SubmitName{Name: req.Name})
}

// POST /api/onboarding/children { hasChildren }
func (s *Server) handleOnboardingChildren(w http.ResponseWriter, r *http.Request) {
	var req types.ChildrenAnswerRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.AnswerChildren{HasChildren: *req.HasChildren})
}

// POST /api/onboarding/child { name, gender, birthday }
func (s *Server) handleOnboardingChild(w http.ResponseWriter, r *http.Request) {
	var req types.ChildRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.AddChild{Draft: childDraft(req)})
}

// POST /api/onboarding/done
func (s *Server) handleOnboardingDone(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.DoneAddingChild{})
}

// POST /api/onboarding/back
func (s *Server) handleOnboardingBack(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.OnboardingBack{})
}

// POST /api/onboarding/finish
func (s *Server) handleOnboardingFinish(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.FinishOnboarding{})
}

func childDraft(req types.ChildRequest) profile.ChildDraft {
	return profile.ChildDraft{
		Name:     req.Name,
		Gender:   profile.Gender(req.Gender),
		Birthday: req.Birthday,
	}
}
