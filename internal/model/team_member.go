package model

import "strings"

// TeamMember is an entry of the public "about us" page (`team_members`).
type TeamMember struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	GitHub   string `json:"github"`
	LinkedIn string `json:"linkedin"`
	Image    string `json:"image"`
	Role     string `json:"role"`
}

// Validate requires a name; the remaining fields are free text capped at
// the column width.
func (m *TeamMember) Validate() error {
	m.FullName = strings.TrimSpace(m.FullName)
	var errs ValidationErrors
	if m.FullName == "" {
		errs = append(errs, NewValidationError("full_name", CodeRequired, "El nombre es requerido."))
	}
	for field, v := range map[string]string{
		"full_name": m.FullName, "github": m.GitHub, "linkedin": m.LinkedIn, "image": m.Image, "role": m.Role,
	} {
		if len([]rune(v)) > 100 {
			errs = append(errs, NewValidationError(field, CodeInvalid, "El valor no puede superar 100 caracteres."))
		}
	}
	return errs.orNil()
}
