package domain

// ListKind identifica una lista personal de peliculas.
type ListKind string

const (
	ListWatchlist ListKind = "watchlist"
	ListFavorites ListKind = "favorites"
	ListSeen      ListKind = "seen"
)

func (k ListKind) Valid() bool {
	switch k {
	case ListWatchlist, ListFavorites, ListSeen:
		return true
	}
	return false
}
