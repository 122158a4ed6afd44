package domain

import "time"

type Movie struct {
	ID          string        `json:"_id"`
	Title       string        `json:"title"`
	Director    string        `json:"director"`
	Description string        `json:"description,omitempty"`
	Date        string        `json:"date"`
	Runtime     string        `json:"runtime"`
	Rating      string        `json:"rating"`
	Img         string        `json:"img"`
	Genres      []string      `json:"genres"`
	AvgRating   *float64      `json:"avgRating,omitempty"`
	Ratings     []MovieRating `json:"ratings"`
	CreatedAt   time.Time     `json:"createdOn"`
}

// MovieRating es un puntaje visto desde la pelicula.
type MovieRating struct {
	UserID string  `json:"id"`
	Rating float64 `json:"rating"`
}

// UserRating es un puntaje visto desde el usuario.
type UserRating struct {
	MovieID string  `json:"movie"`
	Rating  float64 `json:"rating"`
}
