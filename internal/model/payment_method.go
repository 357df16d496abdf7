package model

import "strings"

// PaymentMethod is a way of paying for a trip (card, transfer...).  It maps
// to the `payment_methods` table.
type PaymentMethod struct {
	ID   uint64 `json:"id"`   // payment_methods.id
	Name string `json:"name"` // payment_methods.name
}

// Validate checks that the payment method has a non-empty name.
func (p *PaymentMethod) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	var errs ValidationErrors
	if p.Name == "" {
		errs = append(errs, NewValidationError("name", CodeRequired, "El nombre es requerido."))
	} else if len([]rune(p.Name)) > 100 {
		errs = append(errs, NewValidationError("name", CodeInvalid, "El nombre no puede superar 100 caracteres."))
	}
	return errs.orNil()
}
