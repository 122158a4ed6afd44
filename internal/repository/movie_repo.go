package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinetrack/internal/domain"
)

// MovieSortField enumera las columnas por las que se puede ordenar el catálogo.
type MovieSortField int

const (
	SortByDirector MovieSortField = iota
	SortByTitle
	SortByDate
	SortByRuntime
	SortByRating
	SortByAvgRating
	SortByCreatedAt
)

// MovieSort describe el orden de un listado.
type MovieSort struct {
	Field MovieSortField
	Desc  bool
}

func (s MovieSort) orderBy() string {
	column := "director"
	switch s.Field {
	case SortByTitle:
		column = "title"
	case SortByDate:
		column = "date"
	case SortByRuntime:
		column = "runtime"
	case SortByRating:
		column = "rating"
	case SortByAvgRating:
		column = "avg_rating"
	case SortByCreatedAt:
		column = "created_at"
	}
	dir := " ASC NULLS LAST"
	if s.Desc {
		dir = " DESC NULLS LAST"
	}
	return " ORDER BY m." + column + dir + ", m.id"
}

// MovieRepository define el contrato de persistencia del catálogo.
type MovieRepository interface {
	List(ctx context.Context, sort MovieSort) ([]domain.Movie, error)
	FindByTitle(ctx context.Context, title string, sort MovieSort) ([]domain.Movie, error)
	GetByID(ctx context.Context, id string) (domain.Movie, error)
	Create(ctx context.Context, movie domain.Movie) error
	Update(ctx context.Context, movie domain.Movie) error
	ListIDs(ctx context.Context) ([]string, error)
	RatingStats(ctx context.Context, id string) (sum float64, count int, err error)
	SetAvgRating(ctx context.Context, id string, avg *float64) error
}

type PgMovieRepository struct {
	pool *pgxpool.Pool
}

func NewPgMovieRepository(pool *pgxpool.Pool) *PgMovieRepository {
	return &PgMovieRepository{pool: pool}
}

const movieSelect = `
	SELECT m.id, m.title, m.director, m.description, m.date, m.runtime, m.rating,
		m.img, m.genres, m.avg_rating::float8, m.created_at,
		COALESCE((
			SELECT json_agg(json_build_object('id', r.user_id, 'rating', r.rating) ORDER BY r.created_at)
			FROM ratings r WHERE r.movie_id = m.id
		), '[]'::json)
	FROM movies m
`

func (r *PgMovieRepository) List(ctx context.Context, sort MovieSort) ([]domain.Movie, error) {
	return r.query(ctx, movieSelect+sort.orderBy())
}

func (r *PgMovieRepository) FindByTitle(ctx context.Context, title string, sort MovieSort) ([]domain.Movie, error) {
	query := movieSelect + ` WHERE m.title ILIKE '%' || $1 || '%'` + sort.orderBy()
	return r.query(ctx, query, escapeLike(title))
}

func (r *PgMovieRepository) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	return scanMovie(r.pool.QueryRow(ctx, movieSelect+` WHERE m.id = $1`, id))
}

func (r *PgMovieRepository) Create(ctx context.Context, movie domain.Movie) error {
	const query = `
		INSERT INTO movies (id, title, director, description, date, runtime, rating, img, genres, avg_rating, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.pool.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Director,
		movie.Description,
		movie.Date,
		movie.Runtime,
		movie.Rating,
		movie.Img,
		nonNilStrings(movie.Genres),
		movie.AvgRating,
		movie.CreatedAt,
	)
	return mapWriteErr(err)
}

func (r *PgMovieRepository) Update(ctx context.Context, movie domain.Movie) error {
	const query = `
		UPDATE movies
		SET title = $2, director = $3, description = $4, date = $5, runtime = $6,
			rating = $7, img = $8, genres = $9, avg_rating = COALESCE($10, avg_rating)
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		movie.ID,
		movie.Title,
		movie.Director,
		movie.Description,
		movie.Date,
		movie.Runtime,
		movie.Rating,
		movie.Img,
		nonNilStrings(movie.Genres),
		movie.AvgRating,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMovieRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM movies ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *PgMovieRepository) RatingStats(ctx context.Context, id string) (float64, int, error) {
	const query = `
		SELECT COALESCE(SUM(r.rating), 0), COUNT(r.rating)
		FROM movies m
		LEFT JOIN ratings r ON r.movie_id = m.id
		WHERE m.id = $1
		GROUP BY m.id
	`
	var (
		sum   float64
		count int
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&sum, &count)
	return sum, count, err
}

func (r *PgMovieRepository) SetAvgRating(ctx context.Context, id string, avg *float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE movies SET avg_rating = $2 WHERE id = $1`, id, avg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgMovieRepository) query(ctx context.Context, query string, args ...any) ([]domain.Movie, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movies := make([]domain.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var m domain.Movie
	err := row.Scan(
		&m.ID,
		&m.Title,
		&m.Director,
		&m.Description,
		&m.Date,
		&m.Runtime,
		&m.Rating,
		&m.Img,
		&m.Genres,
		&m.AvgRating,
		&m.CreatedAt,
		&m.Ratings,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Movie{}, err
	}
	return m, err
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
