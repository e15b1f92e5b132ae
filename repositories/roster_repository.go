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
	ErrRosterEntryNotFound     = errors.New("roster entry not found")
	ErrRosterEntryConflict     = errors.New("player is already enrolled in this tournament")
	ErrRosterPlayerInvalid     = errors.New("roster entry references an unknown player")
	ErrRosterTournamentInvalid = errors.New("roster entry references an unknown tournament")
)

type RosterRepository interface {
	Enter(ctx context.Context, tournamentID int, discordID string) error
	Leave(ctx context.Context, tournamentID int, discordID string) error
	// ListByTournament возвращает состав в порядке посева:
	// по времени записи, затем по discord_id для стабильности.
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Player, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	ListActiveTournaments(ctx context.Context, discordID string) ([]models.Tournament, error)
}

type postgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) RosterRepository {
	return &postgresRosterRepository{db: db}
}

func (r *postgresRosterRepository) Enter(ctx context.Context, tournamentID int, discordID string) error {
	query := `
		INSERT INTO roster_entries (tournament_id, discord_id)
		VALUES ($1, $2)`

	_, err := r.db.ExecContext(ctx, query, tournamentID, discordID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrRosterEntryConflict
			case "23503":
				switch pqErr.Constraint {
				case "roster_entries_discord_id_fkey":
					return ErrRosterPlayerInvalid
				case "roster_entries_tournament_id_fkey":
					return ErrRosterTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to enter tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresRosterRepository) Leave(ctx context.Context, tournamentID int, discordID string) error {
	query := `DELETE FROM roster_entries WHERE tournament_id = $1 AND discord_id = $2`
	result, err := r.db.ExecContext(ctx, query, tournamentID, discordID)
	if err != nil {
		return fmt.Errorf("failed to leave tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrRosterEntryNotFound)
}

func (r *postgresRosterRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Player, error) {
	query := `
		SELECT p.discord_id, p.player_tag, p.player_name, p.icon_id, p.trophies, p.club_name, p.created_at
		FROM roster_entries re
		JOIN players p ON p.discord_id = re.discord_id
		WHERE re.tournament_id = $1
		ORDER BY re.enrolled_at ASC, re.discord_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query roster for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	roster := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if scanErr := rows.Scan(&p.DiscordID, &p.PlayerTag, &p.PlayerName, &p.IconID, &p.Trophies, &p.ClubName, &p.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", scanErr)
		}
		roster = append(roster, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during roster rows iteration: %w", err)
	}
	return roster, nil
}

func (r *postgresRosterRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM roster_entries WHERE tournament_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count roster for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresRosterRepository) ListActiveTournaments(ctx context.Context, discordID string) ([]models.Tournament, error) {
	query := `
		SELECT t.id, t.guild_id, t.name, t.status, t.role_id, t.announcement_channel_id,
		       t.notification_channel_id, t.wins_required, t.rounds, t.current_round, t.map, t.mode,
		       t.created_at, t.logo_key
		FROM roster_entries re
		JOIN tournaments t ON t.id = re.tournament_id
		WHERE re.discord_id = $1 AND t.status IN ($2, $3)
		ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, discordID,
		models.TournamentStatusStarted, models.TournamentStatusPaused)
	if err != nil {
		return nil, fmt.Errorf("failed to query active tournaments for player %s: %w", discordID, err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.GuildID, &t.Name, &t.Status, &t.RoleID, &t.AnnouncementChannelID,
			&t.NotificationChannelID, &t.WinsRequired, &t.Rounds, &t.CurrentRound, &t.Map, &t.Mode,
			&t.CreatedAt, &t.LogoKey,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}
