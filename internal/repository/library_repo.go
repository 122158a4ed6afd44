package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinetrack/internal/domain"
)

// LibraryRepository persiste listas personales y puntajes de usuarios.
type LibraryRepository interface {
	AddToList(ctx context.Context, userID string, list domain.ListKind, movieID string) error
	RemoveFromList(ctx context.Context, userID string, list domain.ListKind, movieID string) error
	ListMovieIDs(ctx context.Context, userID string, list domain.ListKind) ([]string, error)
	ListMovies(ctx context.Context, userID string, list domain.ListKind) ([]domain.Movie, error)
	UnseenMovies(ctx context.Context, userID string) ([]domain.Movie, error)
	UpsertRating(ctx context.Context, userID, movieID string, rating float64) error
	DeleteRating(ctx context.Context, userID, movieID string) error
	UserRatings(ctx context.Context, userID string) ([]domain.UserRating, error)
	RatedMovies(ctx context.Context, userID string) ([]domain.Movie, error)
}

type PgLibraryRepository struct {
	pool   *pgxpool.Pool
	movies *PgMovieRepository
}

func NewPgLibraryRepository(pool *pgxpool.Pool) *PgLibraryRepository {
	return &PgLibraryRepository{pool: pool, movies: NewPgMovieRepository(pool)}
}

// AddToList es idempotente: una pelicula aparece a lo sumo una vez por lista.
func (r *PgLibraryRepository) AddToList(ctx context.Context, userID string, list domain.ListKind, movieID string) error {
	const query = `
		INSERT INTO user_movies (user_id, list, movie_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, list, movie_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, userID, string(list), movieID)
	return err
}

func (r *PgLibraryRepository) RemoveFromList(ctx context.Context, userID string, list domain.ListKind, movieID string) error {
	const query = `DELETE FROM user_movies WHERE user_id = $1 AND list = $2 AND movie_id = $3`
	_, err := r.pool.Exec(ctx, query, userID, string(list), movieID)
	return err
}

func (r *PgLibraryRepository) ListMovieIDs(ctx context.Context, userID string, list domain.ListKind) ([]string, error) {
	const query = `
		SELECT movie_id FROM user_movies
		WHERE user_id = $1 AND list = $2
		ORDER BY added_at, movie_id
	`
	rows, err := r.pool.Query(ctx, query, userID, string(list))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PgLibraryRepository) ListMovies(ctx context.Context, userID string, list domain.ListKind) ([]domain.Movie, error) {
	query := movieSelect + `
		JOIN user_movies um ON um.movie_id = m.id
		WHERE um.user_id = $1 AND um.list = $2
		ORDER BY um.added_at, m.id
	`
	return r.movies.query(ctx, query, userID, string(list))
}

func (r *PgLibraryRepository) UnseenMovies(ctx context.Context, userID string) ([]domain.Movie, error) {
	query := movieSelect + `
		WHERE NOT EXISTS (
			SELECT 1 FROM user_movies um
			WHERE um.movie_id = m.id AND um.user_id = $1 AND um.list = 'seen'
		)
	` + MovieSort{}.orderBy()
	return r.movies.query(ctx, query, userID)
}

// UpsertRating reemplaza el puntaje previo del usuario para la pelicula.
func (r *PgLibraryRepository) UpsertRating(ctx context.Context, userID, movieID string, rating float64) error {
	const query = `
		INSERT INTO ratings (user_id, movie_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET rating = EXCLUDED.rating, created_at = now()
	`
	_, err := r.pool.Exec(ctx, query, userID, movieID, rating)
	return err
}

func (r *PgLibraryRepository) DeleteRating(ctx context.Context, userID, movieID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM ratings WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	return err
}

func (r *PgLibraryRepository) UserRatings(ctx context.Context, userID string) ([]domain.UserRating, error) {
	rows, err := r.pool.Query(ctx, `SELECT movie_id, rating FROM ratings WHERE user_id = $1 ORDER BY created_at, movie_id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UserRating, error) {
		var ur domain.UserRating
		err := row.Scan(&ur.MovieID, &ur.Rating)
		return ur, err
	})
}

func (r *PgLibraryRepository) RatedMovies(ctx context.Context, userID string) ([]domain.Movie, error) {
	query := movieSelect + `
		JOIN ratings ur ON ur.movie_id = m.id
		WHERE ur.user_id = $1
		ORDER BY ur.created_at, m.id
	`
	return r.movies.query(ctx, query, userID)
}
