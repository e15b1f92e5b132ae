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
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchIDConflict        = errors.New("match id conflict: bracket already generated")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	// ErrMatchAlreadyDecided — попытка записать победителя в матч, где он
	// уже установлен. Обнаруживается условным UPDATE, никогда не
	// перезаписывает тихо.
	ErrMatchAlreadyDecided = errors.New("match winner is already set")
	// ErrMatchAlreadyReady — сторона уже отмечалась готовой: флаг монотонный.
	ErrMatchAlreadyReady = errors.New("player is already marked ready")
)

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id string) (*models.Match, error)
	GetByPlayer(ctx context.Context, tournamentID int, discordID string) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, round *int) ([]models.Match, error)
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	// SetReady выставляет флаг готовности стороны. Повторный вызов для той
	// же стороны возвращает ErrMatchAlreadyReady.
	SetReady(ctx context.Context, id string, number models.PlayerNumber) error
	// SetWinner записывает победителя, только если он ещё не установлен.
	// Конкурирующая запись получает ErrMatchAlreadyDecided.
	SetWinner(ctx context.Context, id string, number models.PlayerNumber) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, round, sequence_in_round,
	player_1_type, player_2_type, discord_id_1, discord_id_2,
	player_1_ready, player_2_ready, winner_number`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches (
			id, tournament_id, round, sequence_in_round,
			player_1_type, player_2_type, discord_id_1, discord_id_2,
			player_1_ready, player_2_ready, winner_number
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := executor.ExecContext(ctx, query,
		match.ID, match.TournamentID, match.Round, match.SequenceInRound,
		match.Player1Type, match.Player2Type, match.DiscordID1, match.DiscordID2,
		match.Player1Ready, match.Player2Ready, match.WinnerNumber,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				// Детерминированные id: дубликат означает, что сетка для
				// этого турнира уже создавалась.
				return ErrMatchIDConflict
			case "23503":
				if pqErr.Constraint == "matches_tournament_id_fkey" {
					return ErrMatchTournamentInvalid
				}
			}
		}
		return fmt.Errorf("failed to create match %s: %w", match.ID, err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) GetByPlayer(ctx context.Context, tournamentID int, discordID string) (*models.Match, error) {
	// Игроку показывается его нерешённый матч текущего раунда;
	// решённые идут после, поэтому ORDER BY winner_number NULLS FIRST.
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND (discord_id_1 = $2 OR discord_id_2 = $2)
		ORDER BY (winner_number IS NULL) DESC, round DESC, sequence_in_round ASC
		LIMIT 1`

	return r.scanMatch(r.db.QueryRowContext(ctx, query, tournamentID, discordID))
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int, round *int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`
	args := []interface{}{tournamentID}

	if round != nil {
		query += ` AND round = $2`
		args = append(args, *round)
	}
	query += ` ORDER BY round ASC, sequence_in_round ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := rows.Scan(
			&m.ID, &m.TournamentID, &m.Round, &m.SequenceInRound,
			&m.Player1Type, &m.Player2Type, &m.DiscordID1, &m.DiscordID2,
			&m.Player1Ready, &m.Player2Ready, &m.WinnerNumber,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	query := `SELECT COUNT(*) FROM matches WHERE tournament_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches for tournament %d: %w", tournamentID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) SetReady(ctx context.Context, id string, number models.PlayerNumber) error {
	var query string
	switch number {
	case models.PlayerNumber1:
		query = `UPDATE matches SET player_1_ready = TRUE WHERE id = $1 AND player_1_ready = FALSE`
	case models.PlayerNumber2:
		query = `UPDATE matches SET player_2_ready = TRUE WHERE id = $1 AND player_2_ready = FALSE`
	default:
		return fmt.Errorf("invalid player number %d", number)
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to set ready for match %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return r.classifyNoOp(ctx, id, func(m *models.Match) error {
			if m.ReadyFor(number) {
				return ErrMatchAlreadyReady
			}
			return fmt.Errorf("failed to set ready for match %s", id)
		})
	}
	return nil
}

func (r *postgresMatchRepository) SetWinner(ctx context.Context, id string, number models.PlayerNumber) error {
	// Условный UPDATE сериализует конкурирующие записи победителя:
	// вторая попытка не затрагивает строк и завершается конфликтом.
	query := `UPDATE matches SET winner_number = $1 WHERE id = $2 AND winner_number IS NULL`

	result, err := r.db.ExecContext(ctx, query, number, id)
	if err != nil {
		return fmt.Errorf("failed to set winner for match %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return r.classifyNoOp(ctx, id, func(m *models.Match) error {
			if m.WinnerNumber != nil {
				return ErrMatchAlreadyDecided
			}
			return fmt.Errorf("failed to set winner for match %s", id)
		})
	}
	return nil
}

// classifyNoOp различает "матч не найден" и "условие UPDATE не выполнено".
func (r *postgresMatchRepository) classifyNoOp(ctx context.Context, id string, classify func(*models.Match) error) error {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return classify(m)
}

func (r *postgresMatchRepository) scanMatch(row *sql.Row) (*models.Match, error) {
	m := &models.Match{}
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.SequenceInRound,
		&m.Player1Type, &m.Player2Type, &m.DiscordID1, &m.DiscordID2,
		&m.Player1Ready, &m.Player2Ready, &m.WinnerNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}
	return m, nil
}
