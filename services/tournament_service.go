package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Dosada05/brawl-tournament-system/brackets"
	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/Dosada05/brawl-tournament-system/repositories"
	"github.com/Dosada05/brawl-tournament-system/storage"
	"golang.org/x/sync/errgroup"
)

const defaultWinsRequired = 3

type CreateTournamentInput struct {
	GuildID               string `json:"guild_id"`
	Name                  string `json:"name"`
	RoleID                string `json:"role_id"`
	AnnouncementChannelID string `json:"announcement_channel_id"`
	NotificationChannelID string `json:"notification_channel_id"`
	WinsRequired          int    `json:"wins_required"`
	Map                   string `json:"map"`
	Mode                  string `json:"mode"`
}

// TournamentStartedPayload уходит в комнату турнира при генерации сетки.
type TournamentStartedPayload struct {
	TournamentID int            `json:"tournament_id"`
	Rounds       int            `json:"rounds"`
	CurrentRound int            `json:"current_round"`
	Matches      []models.Match `json:"matches"`
}

// TournamentStatusPayload уходит при pause/resume/end.
type TournamentStatusPayload struct {
	TournamentID int                     `json:"tournament_id"`
	Status       models.TournamentStatus `json:"status"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	// Get возвращает турнир вместе с составом и матчами.
	Get(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	// Start фиксирует состав, генерирует сетку первого раунда и переводит
	// турнир в started. Все записи идут в одной транзакции: либо сетка
	// сохранена целиком и турнир запущен, либо ничего не изменилось.
	Start(ctx context.Context, id int, opts StartOptions) (*models.Tournament, error)
	SetStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	rosterRepo     repositories.RosterRepository
	matchRepo      repositories.MatchRepository
	generator      brackets.BracketGenerator
	uploader       storage.FileUploader
	broadcaster    Broadcaster
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	rosterRepo repositories.RosterRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.BracketGenerator,
	uploader storage.FileUploader,
	broadcaster Broadcaster,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		rosterRepo:     rosterRepo,
		matchRepo:      matchRepo,
		generator:      generator,
		uploader:       uploader,
		broadcaster:    broadcaster,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if input.GuildID == "" || input.Mode == "" {
		return nil, ErrValidationFailed
	}

	winsRequired := input.WinsRequired
	if winsRequired == 0 {
		winsRequired = defaultWinsRequired
	}
	if winsRequired < 1 {
		return nil, ErrInvalidWinsRequired
	}

	tournament := &models.Tournament{
		GuildID:               input.GuildID,
		Name:                  name,
		Status:                models.TournamentStatusPending,
		RoleID:                input.RoleID,
		AnnouncementChannelID: input.AnnouncementChannelID,
		NotificationChannelID: input.NotificationChannelID,
		WinsRequired:          winsRequired,
		Map:                   input.Map,
		Mode:                  input.Mode,
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return tournament, nil
}

func (s *tournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roster, rosterErr := s.rosterRepo.ListByTournament(gCtx, id)
		if rosterErr != nil {
			return rosterErr
		}
		tournament.Roster = roster
		return nil
	})
	g.Go(func() error {
		matches, matchErr := s.matchRepo.ListByTournament(gCtx, id, nil)
		if matchErr != nil {
			return matchErr
		}
		tournament.Matches = matches
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d details: %w", id, err)
	}

	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		s.populateLogoURL(&tournaments[i])
	}
	return tournaments, nil
}

// StartOptions — необязательные правки при запуске: карта и порог побед.
// Нулевые значения оставляют то, что задано при создании турнира.
type StartOptions struct {
	Map          string `json:"map"`
	WinsRequired int    `json:"wins_required"`
}

func (s *tournamentService) Start(ctx context.Context, id int, opts StartOptions) (*models.Tournament, error) {
	if opts.WinsRequired < 0 {
		return nil, ErrInvalidWinsRequired
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	if tournament.Status != models.TournamentStatusPending {
		return nil, ErrTournamentNotPending
	}

	// Состав в порядке записи: первый записавшийся против среднего и так далее.
	roster, err := s.rosterRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster for tournament %d: %w", id, err)
	}
	if len(roster) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	existing, err := s.matchRepo.CountByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches for tournament %d: %w", id, err)
	}
	if existing > 0 {
		return nil, ErrBracketAlreadyGenerated
	}

	matches, err := s.generator.Generate(ctx, brackets.GenerateParams{
		TournamentID: id,
		Round:        1,
		Roster:       roster,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughPlayers) {
			return nil, ErrNotEnoughPlayers
		}
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", id, err)
	}
	rounds := brackets.RoundsForPlayers(len(roster))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("Error during rollback for tournament %d: %v. Original error: %v", id, rbErr, txErr)
			}
		}
	}()

	for i := range matches {
		if txErr = s.matchRepo.Create(ctx, tx, &matches[i]); txErr != nil {
			if errors.Is(txErr, repositories.ErrMatchIDConflict) {
				txErr = ErrBracketAlreadyGenerated
			}
			return nil, txErr
		}
	}
	if opts.Map != "" {
		if txErr = s.tournamentRepo.SetMap(ctx, tx, id, opts.Map); txErr != nil {
			return nil, txErr
		}
		tournament.Map = opts.Map
	}
	if opts.WinsRequired > 0 {
		if txErr = s.tournamentRepo.SetWinsRequired(ctx, tx, id, opts.WinsRequired); txErr != nil {
			return nil, txErr
		}
		tournament.WinsRequired = opts.WinsRequired
	}
	if txErr = s.tournamentRepo.SetRounds(ctx, tx, id, rounds, 1); txErr != nil {
		return nil, txErr
	}
	if txErr = s.tournamentRepo.UpdateStatus(ctx, tx, id, models.TournamentStatusStarted); txErr != nil {
		return nil, txErr
	}

	// Коммит до ответа и рассылки: событие о старте уходит только после
	// того, как сетка и статус реально сохранены.
	if cErr := tx.Commit(); cErr != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", cErr)
	}

	tournament.Status = models.TournamentStatusStarted
	tournament.Rounds = rounds
	tournament.CurrentRound = 1
	tournament.Roster = roster
	tournament.Matches = matches

	s.broadcast(id, brackets.EventTournamentStarted, TournamentStartedPayload{
		TournamentID: id,
		Rounds:       rounds,
		CurrentRound: 1,
		Matches:      matches,
	})
	return tournament, nil
}

func (s *tournamentService) SetStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, ErrValidationFailed
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, ErrInvalidStatusTransition
	}

	if tournament.Status != status {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, id, status); err != nil {
			return nil, fmt.Errorf("failed to update tournament %d status: %w", id, err)
		}
		tournament.Status = status
		s.broadcast(id, brackets.EventTournamentStatus, TournamentStatusPayload{
			TournamentID: id,
			Status:       status,
		})
	}
	return tournament, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", id, err)
	}

	ext, ok := logoExtensions[contentType]
	if !ok {
		return nil, ErrValidationFailed
	}

	key := fmt.Sprintf("tournaments/logos/%d.%s", id, ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload logo for tournament %d: %w", id, err)
	}

	// Старый логотип с другим расширением убираем, чтобы не копить мусор.
	if tournament.LogoKey != nil && *tournament.LogoKey != key {
		if delErr := s.uploader.Delete(ctx, *tournament.LogoKey); delErr != nil {
			log.Printf("Failed to delete previous logo %s: %v", *tournament.LogoKey, delErr)
		}
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("failed to persist logo key for tournament %d: %w", id, err)
	}
	tournament.LogoKey = &key
	s.populateLogoURL(tournament)
	return tournament, nil
}

func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentInUse):
			return ErrValidationFailed
		}
		return fmt.Errorf("failed to delete tournament %d: %w", id, err)
	}
	return nil
}

var logoExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
}

func (s *tournamentService) populateLogoURL(t *models.Tournament) {
	if t != nil && t.LogoKey != nil && *t.LogoKey != "" && s.uploader != nil {
		url := s.uploader.GetPublicURL(*t.LogoKey)
		if url != "" {
			t.LogoURL = &url
		}
	}
}

func (s *tournamentService) broadcast(tournamentID int, eventType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	roomID := TournamentRoomID(tournamentID)
	s.broadcaster.BroadcastToRoom(roomID, brackets.Event{
		Type:    eventType,
		RoomID:  roomID,
		Payload: payload,
	})
}

// TournamentRoomID — имя websocket-комнаты турнира.
func TournamentRoomID(tournamentID int) string {
	return fmt.Sprintf("tournament_%d", tournamentID)
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	// pending -> started здесь не разрешён: запуск идёт только через Start,
	// где генерируется сетка.
	allowedTransitions := map[models.TournamentStatus][]models.TournamentStatus{
		models.TournamentStatusPending: {models.TournamentStatusEnded},
		models.TournamentStatusStarted: {models.TournamentStatusPaused, models.TournamentStatusEnded},
		models.TournamentStatusPaused:  {models.TournamentStatusStarted, models.TournamentStatusEnded},
		models.TournamentStatusEnded:   {},
	}
	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}
