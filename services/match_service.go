package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/brawl-tournament-system/brackets"
	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/Dosada05/brawl-tournament-system/repositories"
	"github.com/Dosada05/brawl-tournament-system/verification"
)

// PlayerReadyPayload уходит в комнату турнира, когда сторона отмечается готовой.
type PlayerReadyPayload struct {
	TournamentID int                 `json:"tournament_id"`
	MatchID      string              `json:"match_id"`
	PlayerNumber models.PlayerNumber `json:"player_number"`
	DiscordID    string              `json:"discord_id"`
}

// MatchDecidedPayload уходит при записи победителя (судейство или bye).
type MatchDecidedPayload struct {
	TournamentID    int                 `json:"tournament_id"`
	MatchID         string              `json:"match_id"`
	WinnerNumber    models.PlayerNumber `json:"winner_number"`
	WinnerDiscordID *string             `json:"winner_discord_id,omitempty"`
	IsBye           bool                `json:"is_bye"`
}

// SubmitResult — итог судейства по battle log.
type SubmitResult struct {
	Match *models.Match `json:"match"`
	// BattlesCounted — сколько боёв прошло фильтр допуска.
	BattlesCounted int    `json:"battles_counted"`
	Verdict        string `json:"verdict"`
}

type MatchService interface {
	// GetPlayerMatch возвращает матч игрока в турнире. Bye-матч при первом
	// обращении автоматически завершается в пользу реальной стороны.
	GetPlayerMatch(ctx context.Context, tournamentID int, discordID string) (*models.Match, error)
	Ready(ctx context.Context, tournamentID int, discordID string) (*models.Match, error)
	// Submit запрашивает battle log подавшего, фильтрует записи и выносит
	// вердикт best-of-N. Недостаток улик и неубедительный лог не меняют
	// состояние матча.
	Submit(ctx context.Context, tournamentID int, discordID string) (*SubmitResult, error)
}

type matchService struct {
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	gameAPI        GameAPI
	broadcaster    Broadcaster
}

func NewMatchService(
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	gameAPI GameAPI,
	broadcaster Broadcaster,
) MatchService {
	return &matchService{
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		gameAPI:        gameAPI,
		broadcaster:    broadcaster,
	}
}

func (s *matchService) GetPlayerMatch(ctx context.Context, tournamentID int, discordID string) (*models.Match, error) {
	_, match, err := s.loadRunningMatch(ctx, tournamentID, discordID)
	if err != nil {
		return nil, err
	}

	if match.IsBye() && match.WinnerNumber == nil {
		if err := s.completeBye(ctx, tournamentID, match); err != nil {
			return nil, err
		}
	}
	return match, nil
}

func (s *matchService) Ready(ctx context.Context, tournamentID int, discordID string) (*models.Match, error) {
	_, match, err := s.loadRunningMatch(ctx, tournamentID, discordID)
	if err != nil {
		return nil, err
	}
	// Готовность против Dummy не имеет смысла — bye закрывается сразу.
	if match.IsBye() && match.WinnerNumber == nil {
		if err := s.completeBye(ctx, tournamentID, match); err != nil {
			return nil, err
		}
	}
	if match.WinnerNumber != nil {
		return nil, ErrMatchAlreadyDecided
	}
	if match.State() == models.MatchStateAwaitingPlayers {
		return nil, ErrOpponentPending
	}

	number := match.PlayerNumberFor(discordID)
	if number == nil {
		return nil, ErrNotInMatch
	}

	if err := s.matchRepo.SetReady(ctx, match.ID, *number); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchAlreadyReady):
			return nil, ErrAlreadyReady
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to mark ready in match %s: %w", match.ID, err)
	}

	if *number == models.PlayerNumber1 {
		match.Player1Ready = true
	} else {
		match.Player2Ready = true
	}

	s.broadcast(tournamentID, brackets.EventPlayerReady, PlayerReadyPayload{
		TournamentID: tournamentID,
		MatchID:      match.ID,
		PlayerNumber: *number,
		DiscordID:    discordID,
	})
	return match, nil
}

func (s *matchService) Submit(ctx context.Context, tournamentID int, discordID string) (*SubmitResult, error) {
	tournament, match, err := s.loadRunningMatch(ctx, tournamentID, discordID)
	if err != nil {
		return nil, err
	}
	if match.WinnerNumber != nil {
		return nil, ErrMatchAlreadyDecided
	}
	if match.State() == models.MatchStateAwaitingPlayers {
		return nil, ErrOpponentPending
	}

	submitterNumber := match.PlayerNumberFor(discordID)
	if submitterNumber == nil {
		return nil, ErrNotInMatch
	}

	// Bye решается без обращения к игровому API.
	if match.IsBye() {
		if err := s.completeBye(ctx, tournamentID, match); err != nil {
			return nil, err
		}
		return &SubmitResult{Match: match, Verdict: "bye"}, nil
	}

	submitter, err := s.playerRepo.GetByDiscordID(ctx, discordID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load submitter: %w", err)
	}

	opponentID := match.DiscordIDFor(submitterNumber.Opponent())
	if opponentID == nil {
		return nil, ErrOpponentPending
	}
	opponent, err := s.playerRepo.GetByDiscordID(ctx, *opponentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load opponent: %w", err)
	}

	items, err := s.gameAPI.GetBattleLog(ctx, submitter.PlayerTag)
	if err != nil {
		return nil, mapGameAPIError(err)
	}
	// API отдаёт бои от новых к старым, судейство идёт в хронологии.
	reverseBattleLog(items)

	admissible := verification.Filter(items, verification.FilterParams{
		Player1Tag: submitter.PlayerTag,
		Player2Tag: opponent.PlayerTag,
		Mode:       tournament.Mode,
		NotBefore:  tournament.CreatedAt,
	})

	if !verification.HasMinimumEvidence(len(admissible), tournament.WinsRequired) {
		return nil, ErrEvidenceInsufficient
	}

	verdict := verification.Adjudicate(admissible, tournament.WinsRequired)
	if verdict == verification.VerdictInconclusive {
		return nil, ErrAdjudicationInconclusive
	}

	winnerNumber := *submitterNumber
	if verdict == verification.VerdictOpponentWins {
		winnerNumber = submitterNumber.Opponent()
	}

	if err := s.setWinner(ctx, tournamentID, match, winnerNumber, false); err != nil {
		return nil, err
	}

	return &SubmitResult{
		Match:          match,
		BattlesCounted: len(admissible),
		Verdict:        verdict.String(),
	}, nil
}

// loadRunningMatch загружает идущий турнир и матч игрока в нём.
func (s *matchService) loadRunningMatch(ctx context.Context, tournamentID int, discordID string) (*models.Tournament, *models.Match, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, nil, ErrTournamentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if tournament.Status != models.TournamentStatusStarted {
		return nil, nil, ErrTournamentNotStarted
	}

	match, err := s.matchRepo.GetByPlayer(ctx, tournamentID, discordID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil, ErrNotInMatch
		}
		return nil, nil, fmt.Errorf("failed to load match for player %s: %w", discordID, err)
	}
	return tournament, match, nil
}

func (s *matchService) completeBye(ctx context.Context, tournamentID int, match *models.Match) error {
	winnerNumber := models.PlayerNumber1
	if match.Player1Type == models.PlayerTypeDummy {
		winnerNumber = models.PlayerNumber2
	}
	return s.setWinner(ctx, tournamentID, match, winnerNumber, true)
}

func (s *matchService) setWinner(ctx context.Context, tournamentID int, match *models.Match, winnerNumber models.PlayerNumber, isBye bool) error {
	if err := s.matchRepo.SetWinner(ctx, match.ID, winnerNumber); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchAlreadyDecided):
			return ErrMatchAlreadyDecided
		case errors.Is(err, repositories.ErrMatchNotFound):
			return ErrMatchNotFound
		}
		return fmt.Errorf("failed to set winner for match %s: %w", match.ID, err)
	}
	match.WinnerNumber = &winnerNumber

	s.broadcast(tournamentID, brackets.EventMatchDecided, MatchDecidedPayload{
		TournamentID:    tournamentID,
		MatchID:         match.ID,
		WinnerNumber:    winnerNumber,
		WinnerDiscordID: match.DiscordIDFor(winnerNumber),
		IsBye:           isBye,
	})
	return nil
}

func (s *matchService) broadcast(tournamentID int, eventType string, payload interface{}) {
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

func reverseBattleLog(items []models.BattleLogItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
