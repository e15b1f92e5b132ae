package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/lib/pq"
)

var (
	ErrMarshalNotFound      = errors.New("marshal not found")
	ErrMarshalEmailConflict = errors.New("marshal with this email already exists")
)

type MarshalRepository interface {
	Create(ctx context.Context, marshal *models.Marshal) error
	GetByID(ctx context.Context, id int) (*models.Marshal, error)
	GetByEmail(ctx context.Context, email string) (*models.Marshal, error)
}

type postgresMarshalRepository struct {
	db *sql.DB
}

func NewPostgresMarshalRepository(db *sql.DB) MarshalRepository {
	return &postgresMarshalRepository{db: db}
}

func (r *postgresMarshalRepository) Create(ctx context.Context, marshal *models.Marshal) error {
	query := `
		INSERT INTO marshals (email, password_hash, guild_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		marshal.Email, marshal.PasswordHash, marshal.GuildID,
	).Scan(&marshal.ID, &marshal.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "marshals_email_key" {
				return ErrMarshalEmailConflict
			}
		}
		return fmt.Errorf("failed to create marshal: %w", err)
	}
	return nil
}

func (r *postgresMarshalRepository) GetByID(ctx context.Context, id int) (*models.Marshal, error) {
	query := `SELECT id, email, password_hash, guild_id, created_at FROM marshals WHERE id = $1`
	return r.scanMarshal(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMarshalRepository) GetByEmail(ctx context.Context, email string) (*models.Marshal, error) {
	query := `SELECT id, email, password_hash, guild_id, created_at FROM marshals WHERE email = $1`
	return r.scanMarshal(r.db.QueryRowContext(ctx, query, email))
}

func (r *postgresMarshalRepository) scanMarshal(row *sql.Row) (*models.Marshal, error) {
	m := &models.Marshal{}
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.GuildID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMarshalNotFound
		}
		return nil, fmt.Errorf("failed to scan marshal: %w", err)
	}
	return m, nil
}
