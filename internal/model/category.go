package model

import "strings"

// Category groups destinations (beach, mountain, cruise...).  This struct
// corresponds to a row in the `categories` table.
type Category struct {
	ID   uint64 `json:"id"`   // categories.id
	Name string `json:"name"` // categories.name
}

// Validate checks that the category has a non-empty name.
func (c *Category) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	var errs ValidationErrors
	if c.Name == "" {
		errs = append(errs, NewValidationError("name", CodeRequired, "El nombre es requerido."))
	} else if len([]rune(c.Name)) > 150 {
		errs = append(errs, NewValidationError("name", CodeInvalid, "El nombre no puede superar 150 caracteres."))
	}
	return errs.orNil()
}
