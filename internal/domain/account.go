package domain

import "time"

// Account es el registro de identidad de un usuario.
type Account struct {
	ID                 string     `json:"_id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	IsAdmin            bool       `json:"isAdmin"`
	ResetCodeHash      string     `json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`
	PasswordChangedAt  time.Time  `json:"-"`
	Img                string     `json:"img"`
	CreatedAt          time.Time  `json:"createdOn"`
}

// HasResetCode indica si hay un codigo de recuperacion pendiente.
func (a Account) HasResetCode() bool {
	return a.ResetCodeHash != ""
}

// Profile es la vista del usuario autenticado: cuenta mas listas y puntajes.
type Profile struct {
	Account
	Watchlist []string     `json:"watchlist"`
	Favorites []string     `json:"favorites"`
	Seen      []string     `json:"seen"`
	Ratings   []UserRating `json:"ratings"`
}
