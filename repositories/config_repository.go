package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/brawl-tournament-system/models"
)

var ErrGuildConfigNotFound = errors.New("guild config not found")

type GuildConfigRepository interface {
	Upsert(ctx context.Context, cfg *models.GuildConfig) error
	GetByGuildID(ctx context.Context, guildID string) (*models.GuildConfig, error)
}

type postgresGuildConfigRepository struct {
	db *sql.DB
}

func NewPostgresGuildConfigRepository(db *sql.DB) GuildConfigRepository {
	return &postgresGuildConfigRepository{db: db}
}

func (r *postgresGuildConfigRepository) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	query := `
		INSERT INTO guild_configs (guild_id, marshal_role_id, announcement_channel_id, log_channel_id, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (guild_id) DO UPDATE SET
			marshal_role_id = EXCLUDED.marshal_role_id,
			announcement_channel_id = EXCLUDED.announcement_channel_id,
			log_channel_id = EXCLUDED.log_channel_id,
			updated_at = NOW()
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		cfg.GuildID, cfg.MarshalRoleID, cfg.AnnouncementChannelID, cfg.LogChannelID,
	).Scan(&cfg.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert guild config for %s: %w", cfg.GuildID, err)
	}
	return nil
}

func (r *postgresGuildConfigRepository) GetByGuildID(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	query := `
		SELECT guild_id, marshal_role_id, announcement_channel_id, log_channel_id, updated_at
		FROM guild_configs
		WHERE guild_id = $1`

	cfg := &models.GuildConfig{}
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(
		&cfg.GuildID, &cfg.MarshalRoleID, &cfg.AnnouncementChannelID, &cfg.LogChannelID, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuildConfigNotFound
		}
		return nil, fmt.Errorf("failed to scan guild config: %w", err)
	}
	return cfg, nil
}
