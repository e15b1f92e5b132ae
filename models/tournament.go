package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	TournamentStatusPending TournamentStatus = "pending"
	TournamentStatusStarted TournamentStatus = "started"
	TournamentStatusPaused  TournamentStatus = "paused"
	TournamentStatusEnded   TournamentStatus = "ended"
)

// Tournament представляет турнир внутри одного Discord-сервера (guild).
type Tournament struct {
	ID                    int              `json:"id" db:"id"`
	GuildID               string           `json:"guild_id" db:"guild_id"`
	Name                  string           `json:"name" db:"name"`
	Status                TournamentStatus `json:"status" db:"status"`
	RoleID                string           `json:"role_id" db:"role_id"`
	AnnouncementChannelID string           `json:"announcement_channel_id" db:"announcement_channel_id"`
	NotificationChannelID string           `json:"notification_channel_id" db:"notification_channel_id"`

	// WinsRequired — сколько побед нужно, чтобы взять матч (best-of-N).
	WinsRequired int `json:"wins_required" db:"wins_required"`

	// Rounds вычисляется при старте: ceil(log2(количество участников)).
	Rounds       int `json:"rounds" db:"rounds"`
	CurrentRound int `json:"current_round" db:"current_round"`

	// Map и Mode фильтруют battle log при проверке результатов.
	Map  string `json:"map" db:"map"`
	Mode string `json:"mode" db:"mode"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	LogoKey   *string   `json:"-" db:"logo_key"`
	LogoURL   *string   `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Roster  []Player `json:"roster,omitempty" db:"-"`
	Matches []Match  `json:"matches,omitempty" db:"-"`
}

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusPending, TournamentStatusStarted, TournamentStatusPaused, TournamentStatusEnded:
		return true
	}
	return false
}
