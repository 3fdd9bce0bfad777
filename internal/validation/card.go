package validation

import (
	"strconv"
	"strings"
	"time"
)

// CardRequest mirrors the card fields needed for payment validation. Only
// shape is checked client-side; the processor is authoritative.
type CardRequest struct {
	Number   string
	ExpMonth string
	ExpYear  string
	CVC      string
}

// ValidateCardRequest validates the fields of a card payment form.
func ValidateCardRequest(req CardRequest) []FieldError {
	var errs []FieldError

	number := strings.ReplaceAll(strings.TrimSpace(req.Number), " ", "")
	if number == "" {
		errs = append(errs, FieldError{Field: "number", Message: "card number is required"})
	} else if len(number) < 12 || len(number) > 19 || !digitsOnly(number) {
		errs = append(errs, FieldError{Field: "number", Message: "card number must be 12-19 digits"})
	}

	month, err := strconv.Atoi(req.ExpMonth)
	if err != nil || month < 1 || month > 12 {
		errs = append(errs, FieldError{Field: "expMonth", Message: "expiry month must be 1-12"})
	}

	year, err := strconv.Atoi(req.ExpYear)
	if err != nil || year < time.Now().Year() {
		errs = append(errs, FieldError{Field: "expYear", Message: "expiry year must not be in the past"})
	}

	if len(req.CVC) < 3 || len(req.CVC) > 4 || !digitsOnly(req.CVC) {
		errs = append(errs, FieldError{Field: "cvc", Message: "cvc must be 3 or 4 digits"})
	}

	return errs
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
