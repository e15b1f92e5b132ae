package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/brawl-tournament-system/brawlstars"
	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/Dosada05/brawl-tournament-system/repositories"
)

// PlayerProfileView объединяет сохранённую привязку и живой профиль из игры.
type PlayerProfileView struct {
	Player  *models.Player        `json:"player"`
	Profile *models.PlayerProfile `json:"profile,omitempty"`
}

type PlayerService interface {
	// Register привязывает игровой тег к Discord-аккаунту. Тег проверяется
	// через игровой API, кешируемые поля (имя, иконка, трофеи) берутся из
	// профиля на момент регистрации.
	Register(ctx context.Context, discordID, rawTag string) (*models.Player, error)
	Deregister(ctx context.Context, discordID string) error
	Profile(ctx context.Context, discordID string) (*PlayerProfileView, error)
	Enroll(ctx context.Context, tournamentID int, discordID string) error
	Leave(ctx context.Context, tournamentID int, discordID string) error
}

type playerService struct {
	playerRepo     repositories.PlayerRepository
	rosterRepo     repositories.RosterRepository
	tournamentRepo repositories.TournamentRepository
	gameAPI        GameAPI
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	rosterRepo repositories.RosterRepository,
	tournamentRepo repositories.TournamentRepository,
	gameAPI GameAPI,
) PlayerService {
	return &playerService{
		playerRepo:     playerRepo,
		rosterRepo:     rosterRepo,
		tournamentRepo: tournamentRepo,
		gameAPI:        gameAPI,
	}
}

func (s *playerService) Register(ctx context.Context, discordID, rawTag string) (*models.Player, error) {
	tag := brawlstars.NormalizeTag(rawTag)
	if tag == "" {
		return nil, ErrPlayerTagRequired
	}

	profile, err := s.gameAPI.GetProfile(ctx, tag)
	if err != nil {
		return nil, mapGameAPIError(err)
	}

	player := &models.Player{
		DiscordID:  discordID,
		PlayerTag:  tag,
		PlayerName: profile.Name,
		IconID:     profile.Icon.ID,
		Trophies:   profile.Trophies,
	}
	if profile.Club != nil {
		clubName := profile.Club.Name
		player.ClubName = &clubName
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerAlreadyExists):
			return nil, ErrAlreadyRegistered
		case errors.Is(err, repositories.ErrPlayerTagConflict):
			return nil, ErrPlayerTagTaken
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) Deregister(ctx context.Context, discordID string) error {
	// Нельзя удалять привязку, пока игрок участвует в идущем турнире:
	// судейство матчей опирается на сохранённый тег.
	active, err := s.rosterRepo.ListActiveTournaments(ctx, discordID)
	if err != nil {
		return fmt.Errorf("failed to check active tournaments: %w", err)
	}
	if len(active) > 0 {
		return ErrPlayerInActivePlay
	}

	if err := s.playerRepo.Delete(ctx, discordID); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

func (s *playerService) Profile(ctx context.Context, discordID string) (*PlayerProfileView, error) {
	player, err := s.playerRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	view := &PlayerProfileView{Player: player}

	// Живой профиль — best effort: при недоступности игрового API
	// отдаём кешированные поля без него.
	if profile, err := s.gameAPI.GetProfile(ctx, player.PlayerTag); err == nil {
		view.Profile = profile
	}
	return view, nil
}

func (s *playerService) Enroll(ctx context.Context, tournamentID int, discordID string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.TournamentStatusPending {
		return ErrEnrollmentClosed
	}

	if err := s.rosterRepo.Enter(ctx, tournamentID, discordID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRosterEntryConflict):
			return ErrAlreadyEnrolled
		case errors.Is(err, repositories.ErrRosterPlayerInvalid):
			return ErrPlayerNotFound
		case errors.Is(err, repositories.ErrRosterTournamentInvalid):
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to enroll in tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (s *playerService) Leave(ctx context.Context, tournamentID int, discordID string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	// Покинуть можно только до старта: после генерации сетки состав зафиксирован.
	if tournament.Status != models.TournamentStatusPending {
		return ErrEnrollmentClosed
	}

	if err := s.rosterRepo.Leave(ctx, tournamentID, discordID); err != nil {
		if errors.Is(err, repositories.ErrRosterEntryNotFound) {
			return ErrNotEnrolled
		}
		return fmt.Errorf("failed to leave tournament %d: %w", tournamentID, err)
	}
	return nil
}

// mapGameAPIError переводит ошибки клиента игрового API в сервисные.
func mapGameAPIError(err error) error {
	switch {
	case errors.Is(err, brawlstars.ErrNotFound):
		return ErrGameTagNotFound
	case errors.Is(err, brawlstars.ErrMaintenance):
		return ErrGameAPIUnavailable
	case errors.Is(err, brawlstars.ErrUnauthorized):
		return ErrGameAPIUnauthorized
	}
	return fmt.Errorf("%w: %v", ErrGameAPIUnavailable, err)
}
