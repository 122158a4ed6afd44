package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cinetrack/internal/domain"
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) error
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	UpdateProfile(ctx context.Context, id string, update AccountUpdate) error
	UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error
	SetResetCode(ctx context.Context, id, codeHash string, expiresAt *time.Time) error
	ConsumeResetCode(ctx context.Context, id, codeHash string) (bool, error)
	SetResetToken(ctx context.Context, id, tokenID string) error
	ConsumeResetToken(ctx context.Context, id, tokenID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// AccountUpdate lleva los campos opcionales editables del perfil.
type AccountUpdate struct {
	Name  *string
	Email *string
	Img   *string
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id, name, email, password_hash, is_admin, reset_code_hash,
		reset_code_expires_at, password_changed_at, img, created_at`

func (r *PgAccountRepository) Create(ctx context.Context, account domain.Account) error {
	const query = `
		INSERT INTO users (id, name, email, password_hash, is_admin, reset_code_hash,
			password_changed_at, img, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.IsAdmin,
		account.ResetCodeHash,
		account.PasswordChangedAt,
		account.Img,
		account.CreatedAt,
	)
	return mapWriteErr(err)
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM users WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *PgAccountRepository) UpdateProfile(ctx context.Context, id string, update AccountUpdate) error {
	const query = `
		UPDATE users
		SET name = COALESCE($2, name),
			email = COALESCE($3, email),
			img = COALESCE($4, img)
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, update.Name, update.Email, update.Img)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string, changedAt time.Time) error {
	const query = `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3, reset_token_id = ''
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash, changedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) SetResetCode(ctx context.Context, id, codeHash string, expiresAt *time.Time) error {
	const query = `
		UPDATE users
		SET reset_code_hash = $2, reset_code_expires_at = $3
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, codeHash, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ConsumeResetCode limpia el código sólo si sigue siendo codeHash; false si otro
// request ya lo consumió o lo reemplazó.
func (r *PgAccountRepository) ConsumeResetCode(ctx context.Context, id, codeHash string) (bool, error) {
	const query = `
		UPDATE users
		SET reset_code_hash = '', reset_code_expires_at = NULL
		WHERE id = $1 AND reset_code_hash = $2 AND reset_code_hash <> ''
	`
	tag, err := r.pool.Exec(ctx, query, id, codeHash)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetResetToken registra el único token de recuperación vigente de la cuenta.
func (r *PgAccountRepository) SetResetToken(ctx context.Context, id, tokenID string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET reset_token_id = $2 WHERE id = $1`, id, tokenID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ConsumeResetToken invalida tokenID; false si ya se usó o fue reemplazado.
func (r *PgAccountRepository) ConsumeResetToken(ctx context.Context, id, tokenID string) (bool, error) {
	const query = `
		UPDATE users
		SET reset_token_id = ''
		WHERE id = $1 AND reset_token_id = $2 AND reset_token_id <> ''
	`
	tag, err := r.pool.Exec(ctx, query, id, tokenID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgAccountRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&a.IsAdmin,
		&a.ResetCodeHash,
		&a.ResetCodeExpiresAt,
		&a.PasswordChangedAt,
		&a.Img,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Account{}, err
	}
	return a, err
}
