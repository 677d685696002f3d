package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mumz-advisor/internal/session"
	"mumz-advisor/internal/types"
)

// POST /api/products/{id}/open
func (s *Server) handleOpenProduct(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.OpenProduct{ID: chi.URLParam(r, "id")})
}

func (s *Server) handleDetailNext(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.NextProduct{})
}

func (s *Server) handleDetailPrev(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.PrevProduct{})
}

func (s *Server) handleDetailClose(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.CloseProduct{})
}

// POST /api/detail/swipe { startX, endX }
func (s *Server) handleDetailSwipe(w http.ResponseWriter, r *http.Request) {
	var req types.SwipeRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.SwipeProduct{StartX: *req.StartX, EndX: *req.EndX})
}

func (s *Server) handleToggleDescription(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.ToggleDescription{})
}

// POST /api/cart/items { productId }
func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req types.CartAddRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.AddToCart{ProductID: req.ProductID})
}

// DELETE /api/cart/items/{id}
func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.RemoveFromCart{ID: chi.URLParam(r, "id")})
}

// POST /api/cart/checkout
// Always 402: there is no payment flow.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.Checkout{})
}

// POST /api/sheets/{cart|profile}/{open|close}
func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	var open bool
	switch chi.URLParam(r, "action") {
	case "open":
		open = true
	case "close":
	default:
		s.writeError(w, http.StatusNotFound, "unknown sheet action")
		return
	}
	s.dispatch(w, r, session.SetSheet{Sheet: session.Sheet(chi.URLParam(r, "sheet")), Open: open})
}

// POST /api/profile/children/add
func (s *Server) handleStartAddChild(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.StartAddChild{})
}

// POST /api/profile/children/{index}/edit
func (s *Server) handleStartEditChild(w http.ResponseWriter, r *http.Request) {
	i, ok := s.indexParam(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, session.StartEditChild{Index: i})
}

// PUT /api/profile/children/draft { name, gender, birthday }
func (s *Server) handleUpdateChildDraft(w http.ResponseWriter, r *http.Request) {
	var req types.ChildRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.dispatch(w, r, session.UpdateChildDraft{Draft: childDraft(req)})
}

func (s *Server) handleSaveChild(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.SaveChild{})
}

func (s *Server) handleCancelChildEdit(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, session.CancelChildEdit{})
}

// DELETE /api/profile/children/{index}
func (s *Server) handleRemoveChild(w http.ResponseWriter, r *http.Request) {
	i, ok := s.indexParam(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, session.RemoveChild{Index: i})
}
