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
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPlayerTagConflict   = errors.New("player tag is already registered")
	ErrPlayerAlreadyExists = errors.New("discord account already has a registered player")
)

type PlayerRepository interface {
	Create(ctx context.Context, p *models.Player) error
	GetByDiscordID(ctx context.Context, discordID string) (*models.Player, error)
	GetByTag(ctx context.Context, tag string) (*models.Player, error)
	Delete(ctx context.Context, discordID string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (discord_id, player_tag, player_name, icon_id, trophies, club_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		p.DiscordID, p.PlayerTag, p.PlayerName, p.IconID, p.Trophies, p.ClubName,
	).Scan(&p.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "players_player_tag_key":
				return ErrPlayerTagConflict
			case "players_pkey":
				return ErrPlayerAlreadyExists
			}
		}
		return fmt.Errorf("failed to create player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) GetByDiscordID(ctx context.Context, discordID string) (*models.Player, error) {
	query := `
		SELECT discord_id, player_tag, player_name, icon_id, trophies, club_name, created_at
		FROM players
		WHERE discord_id = $1`

	return r.scanPlayer(r.db.QueryRowContext(ctx, query, discordID))
}

func (r *postgresPlayerRepository) GetByTag(ctx context.Context, tag string) (*models.Player, error) {
	query := `
		SELECT discord_id, player_tag, player_name, icon_id, trophies, club_name, created_at
		FROM players
		WHERE player_tag = $1`

	return r.scanPlayer(r.db.QueryRowContext(ctx, query, tag))
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, discordID string) error {
	query := `DELETE FROM players WHERE discord_id = $1`
	result, err := r.db.ExecContext(ctx, query, discordID)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", discordID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) scanPlayer(row *sql.Row) (*models.Player, error) {
	p := &models.Player{}
	err := row.Scan(&p.DiscordID, &p.PlayerTag, &p.PlayerName, &p.IconID, &p.Trophies, &p.ClubName, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player: %w", err)
	}
	return p, nil
}
