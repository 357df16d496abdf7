package model

import "time"

// DefaultProfileImage is used until the user uploads a picture.
const DefaultProfileImage = "users/usuario_defecto.jpg"

// Profile holds contact details of a user.  There is exactly one profile per
// user (profiles.user_id is unique) and no cross-field rule applies.
type Profile struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Image     string    `json:"image"`
	Address   *string   `json:"address"`
	Location  *string   `json:"location"`
	Email     *string   `json:"email"`
	Telephone *string   `json:"telephone"`
	DNI       *string   `json:"dni"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
