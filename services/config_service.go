package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/Dosada05/brawl-tournament-system/repositories"
)

type GuildConfigInput struct {
	MarshalRoleID         string `json:"marshal_role_id"`
	AnnouncementChannelID string `json:"announcement_channel_id"`
	LogChannelID          string `json:"log_channel_id"`
}

// GuildConfigService хранит настройки бота для каждого Discord-сервера.
type GuildConfigService interface {
	Set(ctx context.Context, guildID string, input GuildConfigInput) (*models.GuildConfig, error)
	Get(ctx context.Context, guildID string) (*models.GuildConfig, error)
}

type guildConfigService struct {
	configRepo repositories.GuildConfigRepository
}

func NewGuildConfigService(configRepo repositories.GuildConfigRepository) GuildConfigService {
	return &guildConfigService{configRepo: configRepo}
}

func (s *guildConfigService) Set(ctx context.Context, guildID string, input GuildConfigInput) (*models.GuildConfig, error) {
	if guildID == "" || input.MarshalRoleID == "" || input.AnnouncementChannelID == "" {
		return nil, ErrValidationFailed
	}

	cfg := &models.GuildConfig{
		GuildID:               guildID,
		MarshalRoleID:         input.MarshalRoleID,
		AnnouncementChannelID: input.AnnouncementChannelID,
		LogChannelID:          input.LogChannelID,
	}
	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save guild config for %s: %w", guildID, err)
	}
	return cfg, nil
}

func (s *guildConfigService) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	cfg, err := s.configRepo.GetByGuildID(ctx, guildID)
	if err != nil {
		if errors.Is(err, repositories.ErrGuildConfigNotFound) {
			return nil, ErrGuildConfigNotFound
		}
		return nil, fmt.Errorf("failed to load guild config for %s: %w", guildID, err)
	}
	return cfg, nil
}
