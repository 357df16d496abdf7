package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DefaultAvailableCount is the stock given to a destination created without
// an explicit value.
const DefaultAvailableCount = 12

// lowStockThreshold is the count below which availability is shown as a
// warning.
const lowStockThreshold = 5

// Destination is a bookable trip.  It owns its available counter; reservations
// decrement it as they are created.
//
// Fields:
//  ID              – destinations.id
//  Name            – trip name.
//  Description     – free text description.
//  ImageURL        – optional absolute URL of a cover picture.
//  Price           – price per slot (cents).
//  DepartsAt       – departure timestamp, UTC.
//  AvailableCount  – remaining slots; never negative.
//  CategoryID      – categories.id
//  PaymentMethodID – payment_methods.id
type Destination struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image_url"`
	Price           Money     `json:"price"`
	DepartsAt       time.Time `json:"departs_at"`
	AvailableCount  int64     `json:"available_count"`
	CategoryID      uint64    `json:"category_id"`
	PaymentMethodID uint64    `json:"payment_method_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validate checks field level rules.  The departure date is only compared
// with now when creating is true; existing trips keep their date even after
// it has passed.
func (d *Destination) Validate(now time.Time, creating bool) error {
	d.Name = strings.TrimSpace(d.Name)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	var errs ValidationErrors
	if d.Name == "" {
		errs = append(errs, NewValidationError("name", CodeRequired, "El nombre del destino es requerido."))
	} else if len([]rune(d.Name)) > 150 {
		errs = append(errs, NewValidationError("name", CodeInvalid, "El nombre no puede superar 150 caracteres."))
	}
	if strings.TrimSpace(d.Description) == "" {
		errs = append(errs, NewValidationError("description", CodeRequired, "La descripción es requerida."))
	}
	if d.ImageURL != "" {
		if u, err := url.Parse(d.ImageURL); err != nil || u.Scheme == "" || u.Host == "" || len(d.ImageURL) > 200 {
			errs = append(errs, NewValidationError("image_url", CodeInvalid, "Ingrese una URL válida."))
		}
	}
	if d.Price < 0 {
		errs = append(errs, NewValidationError("price", CodeNegativePrice, "El precio debe ser un valor positivo."))
	}
	if d.AvailableCount < 0 {
		errs = append(errs, NewValidationError("available_count", CodeNegativeStock, "El stock del viaje debe ser igual a 0, o un valor positivo."))
	}
	if d.DepartsAt.IsZero() {
		errs = append(errs, NewValidationError("departs_at", CodeRequired, "La fecha de salida es requerida."))
	} else if creating && d.DepartsAt.Before(now) {
		errs = append(errs, NewValidationError("departs_at", CodePastDeparture, "La fecha de salida no puede ser anterior a la fecha actual."))
	}
	if d.CategoryID == 0 {
		errs = append(errs, NewValidationError("category_id", CodeRequired, "Debe seleccionar una categoría."))
	}
	if d.PaymentMethodID == 0 {
		errs = append(errs, NewValidationError("payment_method_id", CodeRequired, "Debe seleccionar un método de pago."))
	}
	return errs.orNil()
}

// AvailabilityMessage renders the remaining slots for display.
func (d *Destination) AvailabilityMessage() string {
	switch {
	case d.AvailableCount <= 0:
		return "No hay cupos disponibles"
	case d.AvailableCount < lowStockThreshold:
		return fmt.Sprintf("Últimos %d cupos!", d.AvailableCount)
	default:
		return fmt.Sprintf("Disponibles: %d", d.AvailableCount)
	}
}
