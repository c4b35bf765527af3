package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"offer-catalog-api/internal/models"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Categories is the fixed set of catalog categories an offer may belong to.
var Categories = []string{
	"Färska frukter & grönsaker",
	"Dagligvaror",
	"Kött & chark",
	"Mejeri",
	"Specialprodukter",
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidateOfferCreate checks a creation payload before any write.
func ValidateOfferCreate(in models.OfferCreate) error {
	if strings.TrimSpace(in.ProductName) == "" {
		return &ValidationError{Field: "product_name", Message: "is required"}
	}

	if err := validateCategory(in.Category); err != nil {
		return err
	}

	if in.OfferPrice <= 0 {
		return &ValidationError{Field: "offer_price", Message: "must be positive"}
	}

	// No ordering invariant between original_price and offer_price is
	// enforced; historical data contains offers where the reference price is
	// missing or equal to the offer price.
	if in.OriginalPrice != nil && *in.OriginalPrice <= 0 {
		return &ValidationError{Field: "original_price", Message: "must be positive when provided"}
	}

	if (in.WeekNumber == nil) != (in.Year == nil) {
		return &ValidationError{Field: "week_number", Message: "week_number and year must be provided together"}
	}
	if in.WeekNumber != nil {
		if err := validateWeekNumber(*in.WeekNumber); err != nil {
			return err
		}
	}
	if in.Year != nil {
		if err := validateYear(*in.Year); err != nil {
			return err
		}
	}

	return nil
}

// ValidateOfferPatch checks a partial update. An empty patch is rejected so a
// PUT with no recognized fields cannot silently succeed.
func ValidateOfferPatch(p models.OfferPatch) error {
	if p.IsEmpty() {
		return &ValidationError{Field: "body", Message: "no fields to update"}
	}

	if p.ProductName != nil && strings.TrimSpace(*p.ProductName) == "" {
		return &ValidationError{Field: "product_name", Message: "cannot be empty"}
	}
	if p.Category != nil {
		if err := validateCategory(*p.Category); err != nil {
			return err
		}
	}
	if p.OfferPrice != nil && *p.OfferPrice <= 0 {
		return &ValidationError{Field: "offer_price", Message: "must be positive"}
	}
	if p.OriginalPrice != nil && *p.OriginalPrice <= 0 {
		return &ValidationError{Field: "original_price", Message: "must be positive when provided"}
	}
	if p.WeekNumber != nil {
		if err := validateWeekNumber(*p.WeekNumber); err != nil {
			return err
		}
	}
	if p.Year != nil {
		if err := validateYear(*p.Year); err != nil {
			return err
		}
	}

	return nil
}

// ValidateReorderRequest checks the two offer identifiers of a swap.
func ValidateReorderRequest(req models.ReorderRequest) error {
	if req.OfferIDA == "" {
		return &ValidationError{Field: "offer_id_a", Message: "is required"}
	}
	if req.OfferIDB == "" {
		return &ValidationError{Field: "offer_id_b", Message: "is required"}
	}
	if req.OfferIDA == req.OfferIDB {
		return &ValidationError{Field: "offer_id_b", Message: "must differ from offer_id_a"}
	}
	return nil
}

// ValidateContactMessage checks a public contact form submission.
func ValidateContactMessage(in models.ContactMessageCreate) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	if err := ValidateEmail(in.Email); err != nil {
		return err
	}
	if strings.TrimSpace(in.Message) == "" {
		return &ValidationError{Field: "message", Message: "is required"}
	}
	if len(in.Message) > 10000 {
		return &ValidationError{Field: "message", Message: "cannot exceed 10000 characters"}
	}
	return nil
}

// ValidateEmail checks an email address for the newsletter and contact forms.
func ValidateEmail(email string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "is required"}
	}
	if !emailRegex.MatchString(email) {
		return &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

// ValidateProductCreate checks an inventory product payload.
func ValidateProductCreate(in models.ProductCreate) error {
	if strings.TrimSpace(in.Name) == "" {
		return &ValidationError{Field: "name", Message: "is required"}
	}
	return nil
}

func validateCategory(category string) error {
	if category == "" {
		return &ValidationError{Field: "category", Message: "is required"}
	}
	for _, c := range Categories {
		if c == category {
			return nil
		}
	}
	return &ValidationError{
		Field:   "category",
		Message: fmt.Sprintf("must be one of: %s", strings.Join(Categories, ", ")),
	}
}

func validateWeekNumber(week int) error {
	if week < 1 || week > 53 {
		return &ValidationError{Field: "week_number", Message: "must be between 1 and 53"}
	}
	return nil
}

func validateYear(year int) error {
	if year < 2000 || year > 2200 {
		return &ValidationError{Field: "year", Message: "must be a plausible calendar year"}
	}
	return nil
}

// SanitizeString strips control characters and trims surrounding whitespace.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}
