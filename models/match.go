package models

import "fmt"

// PlayerType описывает, кто занимает сторону матча.
type PlayerType string

const (
	// PlayerTypePlayer — реальный игрок, discord id стороны обязателен.
	PlayerTypePlayer PlayerType = "player"
	// PlayerTypeDummy — пустая сторона (bye), реальный соперник проходит автоматически.
	PlayerTypeDummy PlayerType = "dummy"
	// PlayerTypePending — соперник ещё не определён (победитель предыдущего матча).
	// Генератор первого раунда его не создаёт, но модель и проверки его учитывают.
	PlayerTypePending PlayerType = "pending"
)

// PlayerNumber — номер стороны матча.
type PlayerNumber int

const (
	PlayerNumber1 PlayerNumber = 1
	PlayerNumber2 PlayerNumber = 2
)

func (n PlayerNumber) Opponent() PlayerNumber {
	if n == PlayerNumber1 {
		return PlayerNumber2
	}
	return PlayerNumber1
}

// MatchState — агрегированное состояние жизненного цикла матча.
type MatchState string

const (
	MatchStateAwaitingPlayers MatchState = "awaiting_players"
	MatchStateActive          MatchState = "active"
	MatchStateCompleted       MatchState = "completed"
)

// Match — одна пара сетки. ID детерминированно выводится из
// (tournament_id, round, sequence_in_round), поэтому повторная генерация
// с теми же входами даёт те же идентификаторы.
type Match struct {
	ID              string `json:"id" db:"id"`
	TournamentID    int    `json:"tournament_id" db:"tournament_id"`
	Round           int    `json:"round" db:"round"`
	SequenceInRound int    `json:"sequence_in_round" db:"sequence_in_round"`

	Player1Type PlayerType `json:"player_1_type" db:"player_1_type"`
	Player2Type PlayerType `json:"player_2_type" db:"player_2_type"`
	DiscordID1  *string    `json:"discord_id_1,omitempty" db:"discord_id_1"`
	DiscordID2  *string    `json:"discord_id_2,omitempty" db:"discord_id_2"`

	Player1Ready bool          `json:"player_1_ready" db:"player_1_ready"`
	Player2Ready bool          `json:"player_2_ready" db:"player_2_ready"`
	WinnerNumber *PlayerNumber `json:"winner_number,omitempty" db:"winner_number"`
}

// GenerateMatchID выводит идентификатор матча из его координат в сетке.
func GenerateMatchID(tournamentID, round, sequenceInRound int) string {
	return fmt.Sprintf("%d.%d.%d", tournamentID, round, sequenceInRound)
}

// PlayerNumberFor возвращает номер стороны для данного discord id,
// или nil, если игрок в этом матче не участвует.
func (m *Match) PlayerNumberFor(discordID string) *PlayerNumber {
	if m.DiscordID1 != nil && *m.DiscordID1 == discordID {
		n := PlayerNumber1
		return &n
	}
	if m.DiscordID2 != nil && *m.DiscordID2 == discordID {
		n := PlayerNumber2
		return &n
	}
	return nil
}

// IsBye — матч без соперника: одна из сторон Dummy.
func (m *Match) IsBye() bool {
	return m.Player1Type == PlayerTypeDummy || m.Player2Type == PlayerTypeDummy
}

// State вычисляет состояние жизненного цикла из полей матча.
func (m *Match) State() MatchState {
	if m.WinnerNumber != nil {
		return MatchStateCompleted
	}
	if m.Player1Type == PlayerTypePending || m.Player2Type == PlayerTypePending {
		return MatchStateAwaitingPlayers
	}
	return MatchStateActive
}

// ReadyFor сообщает, отметилась ли данная сторона как готовая.
func (m *Match) ReadyFor(n PlayerNumber) bool {
	if n == PlayerNumber1 {
		return m.Player1Ready
	}
	return m.Player2Ready
}

// DiscordIDFor возвращает discord id данной стороны (nil для Dummy/Pending).
func (m *Match) DiscordIDFor(n PlayerNumber) *string {
	if n == PlayerNumber1 {
		return m.DiscordID1
	}
	return m.DiscordID2
}
