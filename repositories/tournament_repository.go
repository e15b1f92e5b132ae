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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name conflict for this guild")
	ErrTournamentInUse        = errors.New("tournament is in use (roster entries/matches exist)")
)

type ListTournamentsFilter struct {
	GuildID string
	Status  *models.TournamentStatus
	Limit   int
	Offset  int
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	SetRounds(ctx context.Context, exec SQLExecutor, id int, rounds, currentRound int) error
	SetMap(ctx context.Context, exec SQLExecutor, id int, gameMap string) error
	SetWinsRequired(ctx context.Context, exec SQLExecutor, id int, winsRequired int) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			guild_id, name, status, role_id, announcement_channel_id,
			notification_channel_id, wins_required, rounds, current_round, map, mode
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.GuildID, t.Name, t.Status, t.RoleID, t.AnnouncementChannelID,
		t.NotificationChannelID, t.WinsRequired, t.Rounds, t.CurrentRound, t.Map, t.Mode,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, guild_id, name, status, role_id, announcement_channel_id,
		       notification_channel_id, wins_required, rounds, current_round, map, mode,
		       created_at, logo_key
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.GuildID, &t.Name, &t.Status, &t.RoleID, &t.AnnouncementChannelID,
		&t.NotificationChannelID, &t.WinsRequired, &t.Rounds, &t.CurrentRound, &t.Map, &t.Mode,
		&t.CreatedAt, &t.LogoKey,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `
		SELECT id, guild_id, name, status, role_id, announcement_channel_id,
		       notification_channel_id, wins_required, rounds, current_round, map, mode,
		       created_at, logo_key
		FROM tournaments
		WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.GuildID != "" {
		query += fmt.Sprintf(" AND guild_id = $%d", argID)
		args = append(args, filter.GuildID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
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
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetRounds(ctx context.Context, exec SQLExecutor, id int, rounds, currentRound int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET rounds = $1, current_round = $2 WHERE id = $3`
	result, err := executor.ExecContext(ctx, query, rounds, currentRound, id)
	if err != nil {
		return fmt.Errorf("failed to set rounds for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetMap(ctx context.Context, exec SQLExecutor, id int, gameMap string) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET map = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, gameMap, id)
	if err != nil {
		return fmt.Errorf("failed to set map for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) SetWinsRequired(ctx context.Context, exec SQLExecutor, id int, winsRequired int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE tournaments SET wins_required = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, winsRequired, id)
	if err != nil {
		return fmt.Errorf("failed to set wins_required for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE tournaments SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update tournament logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "tournaments_guild_id_name_key" {
				return ErrTournamentNameConflict
			}
		case "23503":
			// FK со стороны roster_entries/matches: турнир нельзя удалить,
			// пока на него ссылаются.
			return ErrTournamentInUse
		}
	}
	return err
}
