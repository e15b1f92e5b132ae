package brackets

import (
	"context"
	"errors"
	"math"

	"github.com/Dosada05/brawl-tournament-system/models"
)

var (
	ErrNotEnoughPlayers = errors.New("not enough players to generate a single elimination bracket (minimum 2)")
	ErrInvalidRound     = errors.New("bracket round must be positive")
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// RoundsForPlayers — сколько всего раундов нужно турниру на n участников.
func RoundsForPlayers(n int) int {
	if n < 2 {
		return 0
	}
	return int(math.Ceil(math.Log2(float64(n))))
}

// Generate строит матчи раунда позиционно: сторона 1 — roster[i],
// сторона 2 — roster[slots+i], где slots = 2^(rounds-1). Если второго
// индекса нет, сторона 2 помечается Dummy (bye). Каждый участник попадает
// ровно в один матч; матчей всегда ровно slots.
//
// Идентификаторы матчей детерминированны, поэтому повторный вызов с теми же
// входами даёт тот же набор id — вызывающий обязан сначала убедиться, что
// матчи турнира ещё не созданы, иначе будет конфликт уникальности в БД.
func (g *SingleEliminationGenerator) Generate(ctx context.Context, params GenerateParams) ([]models.Match, error) {
	roster := params.Roster
	n := len(roster)

	if n < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if params.Round < 1 {
		return nil, ErrInvalidRound
	}

	rounds := RoundsForPlayers(n)
	slots := 1 << uint(rounds-1)

	matches := make([]models.Match, 0, slots)

	for i := 0; i < slots; i++ {
		// Сторона 1 гарантированно существует: slots <= n.
		p1 := roster[i].DiscordID

		m := models.Match{
			ID:              models.GenerateMatchID(params.TournamentID, params.Round, i+1),
			TournamentID:    params.TournamentID,
			Round:           params.Round,
			SequenceInRound: i + 1,
			Player1Type:     models.PlayerTypePlayer,
			DiscordID1:      &p1,
		}

		if slots+i < n {
			p2 := roster[slots+i].DiscordID
			m.Player2Type = models.PlayerTypePlayer
			m.DiscordID2 = &p2
		} else {
			// Bye: соперника нет, реальный игрок проходит дальше автоматически.
			m.Player2Type = models.PlayerTypeDummy
		}

		matches = append(matches, m)
	}

	return matches, nil
}
