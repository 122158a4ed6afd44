package domain

import "time"

type Quote struct {
	ID        string    `json:"_id,omitempty"`
	Quote     string    `json:"quote"`
	Subquote  string    `json:"subquote"`
	CreatedAt time.Time `json:"createdOn,omitzero"`
}
