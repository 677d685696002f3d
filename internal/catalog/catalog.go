// Package catalog projects raw recommendation records into the product
// shape shown in the carousel and detail sheet.
package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"mumz-advisor/internal/types"
)

// CurrencyPrefix is prepended to every price shown to the user.
const CurrencyPrefix = "AED"

const (
	defaultPrice             = "N/A"
	defaultBrand             = "N/A"
	defaultFeatures          = "No features available"
	defaultAgeRange          = "All ages"
	defaultTopCategory       = "Uncategorized"
	defaultFullDescription   = "No description available"
	descriptionPreviewLength = 100
)

type Product struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	Category          string `json:"category"`
	Brand             string `json:"brand"`
	Features          string `json:"features"`
	AgeRange          string `json:"ageRange"`
	TopCategory       string `json:"topCategory"`
	SecondaryCategory string `json:"secondaryCategory"`
	FullDescription   string `json:"fullDescription"`
	Image             string `json:"image,omitempty"`
	URL               string `json:"url,omitempty"`
}

// Project maps one raw record. Missing fields get fixed defaults so the
// result is always renderable.
func Project(p types.ApiRelatedProduct) Product {
	return Product{
		ID:                p.SKU,
		Title:             p.Name,
		Price:             FormatPrice(string(p.Price)),
		Category:          fmt.Sprintf("%s > %s", p.TopCategory, p.SecondaryCategory),
		Brand:             orDefault(p.BrandDefaultStore, defaultBrand),
		Features:          orDefault(p.Features, defaultFeatures),
		AgeRange:          orDefault(p.RecomAge, defaultAgeRange),
		TopCategory:       orDefault(p.TopCategory, defaultTopCategory),
		SecondaryCategory: p.SecondaryCategory,
		FullDescription:   orDefault(p.Description, defaultFullDescription),
		Image:             p.Image,
		URL:               p.URL,
	}
}

// ProjectAll keeps response order; nothing is deduplicated or sorted.
func ProjectAll(raw []types.ApiRelatedProduct) []Product {
	out := make([]Product, 0, len(raw))
	for _, p := range raw {
		out = append(out, Project(p))
	}
	return out
}

func FormatPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultPrice
	}
	return CurrencyPrefix + " " + raw
}

var priceNumber = regexp.MustCompile(`[\d.]+`)

// ParsePrice returns the first numeric run of a formatted price, or 0 when
// there is none ("N/A") or it does not parse ("1.2.3").
func ParsePrice(formatted string) float64 {
	m := priceNumber.FindString(formatted)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatTotal renders an amount the way cart totals are shown.
func FormatTotal(amount float64) string {
	return fmt.Sprintf("%s %.2f", CurrencyPrefix, amount)
}

var featureSeparator = regexp.MustCompile(`\s{2,}`)

// FeatureList splits the features blob on runs of two or more spaces.
func FeatureList(features string) []string {
	parts := featureSeparator.Split(strings.TrimSpace(features), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NeedsReadMore reports whether the description is long enough to be
// collapsed behind a "Read more" toggle.
func NeedsReadMore(description string) bool {
	return len([]rune(description)) > descriptionPreviewLength
}

// IndexOf returns the position of the product with id, or -1.
func IndexOf(products []Product, id string) int {
	for i, p := range products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
