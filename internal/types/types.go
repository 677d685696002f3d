package types

import (
	"bytes"
	"encoding/json"
	"strconv"

	"mumz-advisor/internal/profile"
)

// ChatRequest is the body posted to {API_URL}/chat.
type ChatRequest struct {
	Query string              `json:"query"`
	User  profile.UserProfile `json:"user"`
}

// ChatResponse is what the recommendation endpoint answers with.
type ChatResponse struct {
	Answer          string              `json:"answer"`
	RelatedProducts []ApiRelatedProduct `json:"relatedProducts"`
}

// ApiRelatedProduct is one raw recommendation record.
type ApiRelatedProduct struct {
	SKU               string     `json:"sku"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	BrandDefaultStore string     `json:"brand_default_store"`
	Features          string     `json:"features"`
	RecomAge          string     `json:"recom_age"`
	TopCategory       string     `json:"top_category"`
	SecondaryCategory string     `json:"secondary_category"`
	Action            string     `json:"action,omitempty"`
	ObjectID          string     `json:"objectID,omitempty"`
	Price             FlexString `json:"price,omitempty"`
	Image             string     `json:"image,omitempty"`
	URL               string     `json:"url,omitempty"`
}

// FlexString decodes a JSON string or number into its text form. Prices
// come back both ways depending on the index the record was served from.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Inbound API bodies.

type TextRequest struct {
	Text string `json:"text"`
}

type NameRequest struct {
	Name string `json:"name" validate:"required"`
}

type ChildrenAnswerRequest struct {
	HasChildren *bool `json:"hasChildren" validate:"required"`
}

type ChildRequest struct {
	Name     string `json:"name"`
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"`
}

type CartAddRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type SwipeRequest struct {
	StartX *float64 `json:"startX" validate:"required"`
	EndX   *float64 `json:"endX" validate:"required"`
}
