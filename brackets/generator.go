package brackets

import (
	"context"

	"github.com/Dosada05/brawl-tournament-system/models"
)

// GenerateParams — входные данные для построения одного раунда сетки.
// Roster подаётся в порядке посева; генератор его не перемешивает.
type GenerateParams struct {
	TournamentID int
	Round        int
	Roster       []models.Player
}

// BracketGenerator строит матчи раунда из списка участников.
// Сегодня используется только для первого раунда; раунды 2+ —
// точка расширения (тот же алгоритм поверх списка победителей).
type BracketGenerator interface {
	Generate(ctx context.Context, params GenerateParams) ([]models.Match, error)

	GetName() string
}
