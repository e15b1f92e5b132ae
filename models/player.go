package models

import "time"

// Player — зарегистрированный игрок: Discord-аккаунт, привязанный к игровому тегу.
// Тег уникален: не больше одного игрового аккаунта на Discord-идентичность.
type Player struct {
	DiscordID  string    `json:"discord_id" db:"discord_id"`
	PlayerTag  string    `json:"player_tag" db:"player_tag"`
	PlayerName string    `json:"player_name" db:"player_name"`
	IconID     int       `json:"icon_id" db:"icon_id"`
	Trophies   int       `json:"trophies" db:"trophies"`
	ClubName   *string   `json:"club_name,omitempty" db:"club_name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// RosterEntry фиксирует участие игрока в турнире. Порядок посева —
// порядок записи (enrolled_at, затем discord_id для стабильности).
type RosterEntry struct {
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	DiscordID    string    `json:"discord_id" db:"discord_id"`
	EnrolledAt   time.Time `json:"enrolled_at" db:"enrolled_at"`
}

// Marshal — организатор турниров, аутентифицируется по email/паролю.
type Marshal struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	GuildID      string    `json:"guild_id" db:"guild_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// GuildConfig — конфигурация бота для одного Discord-сервера.
type GuildConfig struct {
	GuildID               string    `json:"guild_id" db:"guild_id"`
	MarshalRoleID         string    `json:"marshal_role_id" db:"marshal_role_id"`
	AnnouncementChannelID string    `json:"announcement_channel_id" db:"announcement_channel_id"`
	LogChannelID          string    `json:"log_channel_id" db:"log_channel_id"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}
