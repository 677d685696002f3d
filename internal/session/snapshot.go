package session

import (
	"mumz-advisor/internal/cart"
	"mumz-advisor/internal/catalog"
	"mumz-advisor/internal/conversation"
	"mumz-advisor/internal/profile"
)

// Snapshot is everything a client needs to render the page.
type Snapshot struct {
	Messages     []conversation.Message `json:"messages"`
	Input        string                 `json:"input"`
	Pending      bool                   `json:"pending"`
	CanSubmit    bool                   `json:"canSubmit"`
	InputEnabled bool                   `json:"inputEnabled"`
	Products     []catalog.Product      `json:"products"`
	User         *profile.UserProfile   `json:"user"`
	Onboarding   *OnboardingView        `json:"onboarding,omitempty"`
	Cart         CartView               `json:"cart"`
	Detail       *DetailView            `json:"detail,omitempty"`
	Editor       *EditorView            `json:"editor,omitempty"`
	Sheets       Sheets                 `json:"sheets"`
	Notices      []Notice               `json:"notices"`
}

type OnboardingView struct {
	Step     string              `json:"step"`
	Name     string              `json:"name,omitempty"`
	Children []profile.ChildData `json:"children"`
}

type CartView struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Badge string      `json:"badge"`
	Total string      `json:"total"`
}

type DetailView struct {
	Product             catalog.Product `json:"product"`
	Position            int             `json:"position"`
	Of                  int             `json:"of"`
	HasNext             bool            `json:"hasNext"`
	HasPrev             bool            `json:"hasPrev"`
	Features            []string        `json:"features"`
	ReadMore            bool            `json:"readMore"`
	DescriptionExpanded bool            `json:"descriptionExpanded"`
	InCart              bool            `json:"inCart"`
	CanAddToCart        bool            `json:"canAddToCart"`
}

type EditorView struct {
	Adding bool               `json:"adding"`
	Index  int                `json:"index"`
	Draft  profile.ChildDraft `json:"draft"`
}

type Sheets struct {
	Product bool `json:"product"`
	Cart    bool `json:"cart"`
	Profile bool `json:"profile"`
	Setup   bool `json:"setup"`
}

func (s *Session) snapshot(drain bool) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.engine.Snapshot()
	hasUser := s.user != nil
	snap := Snapshot{
		Messages:     conv.Messages,
		Input:        conv.Input,
		Pending:      conv.Pending,
		CanSubmit:    conv.CanSubmit && hasUser,
		InputEnabled: !conv.Pending && hasUser,
		Products:     conv.Products,
		Cart: CartView{
			Items: s.cart.Items(),
			Count: s.cart.Count(),
			Badge: cart.Badge(s.cart.Count()),
			Total: s.cart.Total(),
		},
		Sheets: Sheets{
			Product: s.viewer.IsOpen(),
			Cart:    s.cartOpen,
			Profile: s.profileOpen,
			Setup:   !hasUser,
		},
		Notices: []Notice{},
	}
	if hasUser {
		u := s.user.Clone()
		snap.User = &u
	} else {
		snap.Onboarding = onboardingView(s.wizard.Step())
	}
	if p, ok := s.viewer.Current(); ok {
		pos, of := s.viewer.Position()
		snap.Detail = &DetailView{
			Product:             p,
			Position:            pos,
			Of:                  of,
			HasNext:             s.viewer.HasNext(),
			HasPrev:             s.viewer.HasPrev(),
			Features:            catalog.FeatureList(p.Features),
			ReadMore:            catalog.NeedsReadMore(p.FullDescription),
			DescriptionExpanded: s.viewer.DescriptionExpanded(),
			InCart:              s.cart.Contains(p.ID),
			CanAddToCart:        hasUser && s.viewer.CanAddToCart(s.cart.Contains),
		}
	}
	if s.editor.Active() {
		i, editing := s.editor.Editing()
		if !editing {
			i = -1
		}
		snap.Editor = &EditorView{Adding: s.editor.Adding(), Index: i, Draft: s.editor.Draft()}
	}
	if drain {
		snap.Notices = s.drainNotices()
	}
	return snap
}

func onboardingView(step profile.Step) *OnboardingView {
	v := &OnboardingView{Step: step.StepName(), Children: []profile.ChildData{}}
	switch st := step.(type) {
	case profile.ChildrenChoice:
		v.Name = st.Name
		v.Children = append(v.Children, st.Children...)
	case profile.ChildEntry:
		v.Name = st.Name
		v.Children = append(v.Children, st.Children...)
	case profile.Confirm:
		v.Name = st.Name
		v.Children = append(v.Children, st.Children...)
	}
	return v
}
