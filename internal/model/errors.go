package model

import (
	"sort"
	"strings"
)

// Machine readable validation codes.  Clients switch on these values; the
// Message field carries the human text shown to end users.
const (
	CodeRequired              = "required"
	CodeQuantityRequired      = "quantity_required"
	CodeInvalidQuantity       = "invalid_quantity"
	CodeDestinationRequired   = "destination_required"
	CodePaymentMethodRequired = "payment_method_required"
	CodeOutOfStock            = "out_of_stock"
	CodeInsufficientStock     = "insufficient_stock"
	CodeNegativePrice         = "negative_price"
	CodeNegativeStock         = "negative_stock"
	CodePastDeparture         = "past_departure"
	CodeInvalid               = "invalid"
)

// ValidationError is a field scoped, user correctable error.  Field is the
// JSON key of the offending input and Code one of the Code* constants.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Message }

// NewValidationError builds a ValidationError.
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// ValidationErrors collects every field failure of a record.  It is returned
// by the catalog validators, which report all fields at once.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Fields maps each field to its message, suitable for a JSON response.
func (errs ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

// orNil returns nil for an empty slice so callers can `return errs.orNil()`
// without producing a non-nil error interface.
func (errs ValidationErrors) orNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
