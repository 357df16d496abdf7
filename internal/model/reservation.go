package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Reservation is a user's booking of Quantity slots of a destination.  It is
// immutable once created; its only side effect is the stock decrement done
// when it is inserted.
//
// Fields:
//  ID              – reservations.id
//  Code            – public UUID reference printed on receipts.
//  UserID          – users.id of the traveller.
//  DestinationID   – destinations.id
//  PaymentMethodID – payment_methods.id
//  Quantity        – slots booked (> 0).
//  CreatedAt       – set by the database on insert.
//  Destination     – optional loaded destination, used for Total.
type Reservation struct {
	ID              uint64       `json:"id"`
	Code            string       `json:"code"`
	UserID          uint64       `json:"user_id"`
	DestinationID   uint64       `json:"destination_id"`
	PaymentMethodID uint64       `json:"payment_method_id"`
	Quantity        int64        `json:"quantity"`
	CreatedAt       time.Time    `json:"created_at"`
	Destination     *Destination `json:"-"`
}

// Total is quantity × destination price.  It is zero when the destination
// has not been loaded and ErrMoneyOverflow when the product does not fit.
func (r *Reservation) Total() (Money, error) {
	if r.Destination == nil {
		return 0, nil
	}
	return r.Destination.Price.Mul(r.Quantity)
}

// CheckTotal rejects a booking whose total cannot be represented.
func CheckTotal(d *Destination, quantity int64) error {
	if _, err := d.Price.Mul(quantity); err != nil {
		return NewValidationError("quantity", CodeInvalidQuantity, "El total de la reserva excede el máximo permitido.")
	}
	return nil
}

// ParseQuantity coerces the raw quantity sent by a client.  An empty value
// yields CodeQuantityRequired and anything that is not an integer yields
// CodeInvalidQuantity.  Sign is not checked here; see CheckStock.
func ParseQuantity(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, NewValidationError("quantity", CodeQuantityRequired, "Debe especificar una cantidad.")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Accept integral decimals such as "3.0".
		whole, frac, ok := strings.Cut(raw, ".")
		if !ok || strings.Trim(frac, "0") != "" {
			return 0, NewValidationError("quantity", CodeInvalidQuantity, "La cantidad debe ser un número válido.")
		}
		n, err = strconv.ParseInt(whole, 10, 64)
		if err != nil {
			return 0, NewValidationError("quantity", CodeInvalidQuantity, "La cantidad debe ser un número válido.")
		}
	}
	return n, nil
}

// CheckStock applies, in order, the stock rules of a new reservation: the
// destination must have slots left, the quantity must be positive and it
// must not exceed the remaining slots.
func CheckStock(d *Destination, quantity int64) error {
	if d == nil {
		return NewValidationError("destination_id", CodeDestinationRequired, "Debe seleccionar un destino válido.")
	}
	if d.AvailableCount <= 0 {
		return NewValidationError("destination_id", CodeOutOfStock, "No hay cupos disponibles para este destino.")
	}
	if quantity <= 0 {
		return NewValidationError("quantity", CodeInvalidQuantity, "La cantidad debe ser mayor a cero.")
	}
	if quantity > d.AvailableCount {
		return NewValidationError("quantity", CodeInsufficientStock,
			fmt.Sprintf("Solo quedan %d cupos disponibles.", d.AvailableCount))
	}
	return nil
}
