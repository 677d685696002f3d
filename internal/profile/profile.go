// Package profile holds the persisted user identity, the onboarding wizard
// that creates it and the editor used to maintain children afterwards.
package profile

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// StorageKey is where the profile lives in the key-value store.
const StorageKey = "chatUser"

const birthdayLayout = "2006-01-02"

type Gender string

const (
	GenderUnset  Gender = ""
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ChildData struct {
	Name     string `json:"name" validate:"required"`
	Age      int    `json:"age"`
	Gender   Gender `json:"gender" validate:"required,oneof=male female"`
	Birthday string `json:"birthday" validate:"required,datetime=2006-01-02"`
}

type UserProfile struct {
	ID       string      `json:"id" validate:"required"`
	Name     string      `json:"name" validate:"required"`
	Children []ChildData `json:"children" validate:"dive"`
}

var (
	ErrNameRequired      = errors.New("name is required")
	ErrBirthdayInFuture  = errors.New("birthday is in the future")
	ErrInvalidTransition = errors.New("invalid onboarding transition")
	ErrEditInProgress    = errors.New("another child is being edited")
	ErrNoEdit            = errors.New("no child is being edited")
	ErrChildIndex        = errors.New("child index out of range")
	ErrNoChildren        = errors.New("add at least one child first")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags of a profile and its children.
func (p UserProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// CartKey is the storage key of this user's cart.
func (p UserProfile) CartKey() string {
	return CartKey(p.ID)
}

func CartKey(userID string) string {
	return "cart_" + userID
}

// Clone returns a copy that shares no slice with p.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Children = append([]ChildData{}, p.Children...)
	return out
}

// NewChild validates the raw child fields and stamps the age computed on
// today. Name and birthday are trimmed first.
func NewChild(name string, gender Gender, birthday string, today time.Time) (ChildData, error) {
	c := ChildData{
		Name:     strings.TrimSpace(name),
		Gender:   Gender(strings.ToLower(strings.TrimSpace(string(gender)))),
		Birthday: strings.TrimSpace(birthday),
	}
	if err := validate.Struct(c); err != nil {
		return ChildData{}, fmt.Errorf("invalid child: %w", err)
	}
	age, err := AgeOn(c.Birthday, today)
	if err != nil {
		return ChildData{}, err
	}
	c.Age = age
	return c, nil
}

// AgeOn returns the number of whole years between birthday (YYYY-MM-DD)
// and today. A birthday not yet reached this year does not count.
func AgeOn(birthday string, today time.Time) (int, error) {
	b, err := time.Parse(birthdayLayout, birthday)
	if err != nil {
		return 0, fmt.Errorf("parse birthday %q: %w", birthday, err)
	}
	ty, tm, td := today.Date()
	by, bm, bd := b.Date()
	if ty < by || (ty == by && (tm < bm || (tm == bm && td < bd))) {
		return 0, ErrBirthdayInFuture
	}
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateUserID derives a stable id from the name plus a four digit
// random suffix, e.g. "sara-ahmed-4821".
func GenerateUserID(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return fmt.Sprintf("%s-%d", slug, 1000+rand.Intn(9000))
}
