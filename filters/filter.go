package filters

import (
	"strings"

	"github.com/dcode-github/property_tours/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type predicate func(l *models.Listing) bool

// compile turns criteria into the list of active predicates. Unset fields
// contribute nothing.
func compile(c Criteria) []predicate {
	var preds []predicate
	lower := cases.Lower(language.Und)

	// A non-blank query is matched as typed, surrounding spaces included.
	if strings.TrimSpace(c.Query) != "" {
		needle := lower.String(c.Query)
		preds = append(preds, func(l *models.Listing) bool {
			return strings.Contains(lower.String(l.Title), needle) ||
				strings.Contains(lower.String(l.Location), needle) ||
				strings.Contains(lower.String(l.City), needle) ||
				strings.Contains(lower.String(l.Neighborhood), needle)
		})
	}

	if city := strings.TrimSpace(c.City); city != "" {
		needle := lower.String(city)
		preds = append(preds, func(l *models.Listing) bool {
			return strings.Contains(lower.String(l.City), needle)
		})
	}

	if min, ok := parseInt(c.PriceMin); ok {
		preds = append(preds, func(l *models.Listing) bool { return l.Price >= min })
	}

	if max, ok := parseInt(c.PriceMax); ok {
		preds = append(preds, func(l *models.Listing) bool { return l.Price <= max })
	}

	if pt := strings.TrimSpace(c.PropertyType); pt != "" {
		want := models.PropertyType(pt)
		preds = append(preds, func(l *models.Listing) bool { return l.PropertyType == want })
	}

	if lt := strings.TrimSpace(c.ListingType); lt != "" {
		want := models.ListingType(lt)
		preds = append(preds, func(l *models.Listing) bool { return l.ListingType == want })
	}

	if beds, ok := parseInt(c.Bedrooms); ok {
		preds = append(preds, func(l *models.Listing) bool { return int64(l.Bedrooms) >= beds })
	}

	return preds
}

func matchAll(preds []predicate, l *models.Listing) bool {
	for _, p := range preds {
		if !p(l) {
			return false
		}
	}
	return true
}

// Apply returns the listings that satisfy every constraint in c, in their
// original order. The input slice is not modified. The result is never nil.
func Apply(listings []models.Listing, c Criteria) []models.Listing {
	preds := compile(c)
	out := make([]models.Listing, 0, len(listings))
	for i := range listings {
		if matchAll(preds, &listings[i]) {
			out = append(out, listings[i])
		}
	}
	return out
}

// Matches reports whether a single listing satisfies c.
func Matches(l models.Listing, c Criteria) bool {
	return matchAll(compile(c), &l)
}
