// Package filters narrows a listing snapshot down to the listings that match
// the constraints a user entered in the search controls.
package filters

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Criteria holds the search constraints exactly as they arrive from the
// client. Every field is optional; blank fields and numeric fields that do
// not start with an integer impose no constraint.
type Criteria struct {
	Query        string `json:"q,omitempty"`
	City         string `json:"city,omitempty"`
	PriceMin     string `json:"priceMin,omitempty"`
	PriceMax     string `json:"priceMax,omitempty"`
	PropertyType string `json:"propertyType,omitempty"`
	ListingType  string `json:"listingType,omitempty"`
	Bedrooms     string `json:"bedrooms,omitempty"`
}

// FromQuery reads criteria from URL query parameters. "query" is accepted as
// an alias of "q".
func FromQuery(q url.Values) Criteria {
	text := q.Get("q")
	if strings.TrimSpace(text) == "" {
		text = q.Get("query")
	}
	return Criteria{
		Query:        text,
		City:         q.Get("city"),
		PriceMin:     q.Get("priceMin"),
		PriceMax:     q.Get("priceMax"),
		PropertyType: q.Get("propertyType"),
		ListingType:  q.Get("listingType"),
		Bedrooms:     q.Get("bedrooms"),
	}
}

// Normalize returns the effective criteria: numbers in canonical form,
// ignored values cleared and text trimmed, except a non-blank query which is
// matched as typed.
func (c Criteria) Normalize() Criteria {
	n := Criteria{
		City:         strings.TrimSpace(c.City),
		PropertyType: strings.TrimSpace(c.PropertyType),
		ListingType:  strings.TrimSpace(c.ListingType),
	}
	if strings.TrimSpace(c.Query) != "" {
		n.Query = c.Query
	}
	if v, ok := parseInt(c.PriceMin); ok {
		n.PriceMin = strconv.FormatInt(v, 10)
	}
	if v, ok := parseInt(c.PriceMax); ok {
		n.PriceMax = strconv.FormatInt(v, 10)
	}
	if v, ok := parseInt(c.Bedrooms); ok {
		n.Bedrooms = strconv.FormatInt(v, 10)
	}
	return n
}

// IsEmpty reports whether the criteria impose no constraint at all.
func (c Criteria) IsEmpty() bool {
	return c.Normalize() == Criteria{}
}

// parseInt reads the leading base-10 integer of s, after optional whitespace
// and sign, and ignores whatever follows it: "1500000.5" is 1500000 and
// "12abc" is 12. Input with no leading digits is unset. Values beyond the
// int64 range saturate.
func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return n, true
}
