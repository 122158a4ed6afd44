package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinetrack/internal/domain"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote domain.Quote) error
	LatestSince(ctx context.Context, since time.Time) (domain.Quote, error)
}

type PgQuoteRepository struct {
	pool *pgxpool.Pool
}

func NewPgQuoteRepository(pool *pgxpool.Pool) *PgQuoteRepository {
	return &PgQuoteRepository{pool: pool}
}

func (r *PgQuoteRepository) Create(ctx context.Context, quote domain.Quote) error {
	const query = `
		INSERT INTO quotes (id, quote, subquote, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, quote.ID, quote.Quote, quote.Subquote, quote.CreatedAt)
	return err
}

// LatestSince devuelve la cita más reciente creada a partir de since.
func (r *PgQuoteRepository) LatestSince(ctx context.Context, since time.Time) (domain.Quote, error) {
	const query = `
		SELECT id, quote, subquote, created_at
		FROM quotes
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var q domain.Quote
	err := r.pool.QueryRow(ctx, query, since).Scan(&q.ID, &q.Quote, &q.Subquote, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quote{}, err
	}
	return q, err
}
