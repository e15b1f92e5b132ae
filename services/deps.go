package services

import (
	"context"

	"github.com/Dosada05/brawl-tournament-system/models"
)

// GameAPI — клиент игрового API. Реализуется пакетом brawlstars,
// в тестах подменяется фейком.
type GameAPI interface {
	GetProfile(ctx context.Context, tag string) (*models.PlayerProfile, error)
	GetBattleLog(ctx context.Context, tag string) ([]models.BattleLogItem, error)
}

// Broadcaster рассылает события комнатам websocket-хаба.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}
