package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/brawl-tournament-system/brackets"
	"github.com/Dosada05/brawl-tournament-system/brawlstars"
	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceID  = "alice-discord"
	bobID    = "bob-discord"
	aliceTag = "ALICE01"
	bobTag   = "BOB0002"
)

func startedTournament() *models.Tournament {
	return &models.Tournament{
		ID:           1,
		GuildID:      "guild-1",
		Name:         "Weekly Showdown",
		Status:       models.TournamentStatusStarted,
		WinsRequired: 3,
		Rounds:       1,
		CurrentRound: 1,
		Mode:         "brawlBall",
		CreatedAt:    time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func aliceVsBob() *models.Match {
	a, b := aliceID, bobID
	return &models.Match{
		ID:              "1.1.1",
		TournamentID:    1,
		Round:           1,
		SequenceInRound: 1,
		Player1Type:     models.PlayerTypePlayer,
		Player2Type:     models.PlayerTypePlayer,
		DiscordID1:      &a,
		DiscordID2:      &b,
	}
}

func byeMatch() *models.Match {
	a := aliceID
	return &models.Match{
		ID:              "1.1.2",
		TournamentID:    1,
		Round:           1,
		SequenceInRound: 2,
		Player1Type:     models.PlayerTypePlayer,
		Player2Type:     models.PlayerTypeDummy,
		DiscordID1:      &a,
	}
}

// tournamentBattle строит запись battle log, проходящую фильтр для
// турнира startedTournament и пары alice/bob.
func tournamentBattle(result string) models.BattleLogItem {
	return models.BattleLogItem{
		BattleTime: "20240815T110000.000Z",
		Event:      models.BattleEvent{Mode: "brawlBall", Map: "Center Stage"},
		Battle: models.Battle{
			Mode:   "brawlBall",
			Type:   "ranked",
			Result: result,
			Teams: [][]models.BattleTeamPlayer{
				{{Tag: aliceTag}},
				{{Tag: bobTag}},
			},
		},
	}
}

type matchServiceEnv struct {
	service MatchService

	tournamentRepo *fakeTournamentRepo
	matchRepo      *fakeMatchRepo
	playerRepo     *fakePlayerRepo
	gameAPI        *fakeGameAPI
	broadcaster    *fakeBroadcaster
}

func newMatchServiceEnv(matches ...*models.Match) *matchServiceEnv {
	env := &matchServiceEnv{
		tournamentRepo: newFakeTournamentRepo(startedTournament()),
		matchRepo:      newFakeMatchRepo(matches...),
		playerRepo: newFakePlayerRepo(
			&models.Player{DiscordID: aliceID, PlayerTag: aliceTag, PlayerName: "Alice"},
			&models.Player{DiscordID: bobID, PlayerTag: bobTag, PlayerName: "Bob"},
		),
		gameAPI:     newFakeGameAPI(),
		broadcaster: &fakeBroadcaster{},
	}
	env.service = NewMatchService(env.tournamentRepo, env.matchRepo, env.playerRepo, env.gameAPI, env.broadcaster)
	return env
}

func TestSubmitDecidesForSubmitter(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogs[aliceTag] = []models.BattleLogItem{
		tournamentBattle("victory"),
		tournamentBattle("draw"),
		tournamentBattle("victory"),
		tournamentBattle("defeat"),
		tournamentBattle("victory"),
	}

	result, err := env.service.Submit(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "submitter_wins", result.Verdict)
	assert.Equal(t, 5, result.BattlesCounted)

	stored, err := env.matchRepo.GetByID(context.Background(), "1.1.1")
	require.NoError(t, err)
	require.NotNil(t, stored.WinnerNumber)
	assert.Equal(t, models.PlayerNumber1, *stored.WinnerNumber)
	assert.Equal(t, []string{brackets.EventMatchDecided}, env.broadcaster.eventTypes())
}

func TestSubmitDecidesForOpponent(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogs[aliceTag] = []models.BattleLogItem{
		tournamentBattle("defeat"),
		tournamentBattle("victory"),
		tournamentBattle("defeat"),
		tournamentBattle("defeat"),
	}

	result, err := env.service.Submit(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "opponent_wins", result.Verdict)

	stored, _ := env.matchRepo.GetByID(context.Background(), "1.1.1")
	require.NotNil(t, stored.WinnerNumber)
	assert.Equal(t, models.PlayerNumber2, *stored.WinnerNumber)
}

func TestSubmitRestoresChronology(t *testing.T) {
	// API отдаёт бои от новых к старым: хронологически сначала были три
	// поражения. Если бы порядок не восстанавливался, победили бы "свежие"
	// три победы.
	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogs[aliceTag] = []models.BattleLogItem{
		tournamentBattle("victory"),
		tournamentBattle("victory"),
		tournamentBattle("victory"),
		tournamentBattle("defeat"),
		tournamentBattle("defeat"),
		tournamentBattle("defeat"),
	}

	result, err := env.service.Submit(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "opponent_wins", result.Verdict)
}

func TestSubmitInsufficientEvidence(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogs[aliceTag] = []models.BattleLogItem{
		tournamentBattle("victory"),
		tournamentBattle("victory"),
	}

	_, err := env.service.Submit(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrEvidenceInsufficient)

	// Матч не тронут, события не рассылались.
	stored, _ := env.matchRepo.GetByID(context.Background(), "1.1.1")
	assert.Nil(t, stored.WinnerNumber)
	assert.Empty(t, env.broadcaster.events)
}

func TestSubmitInconclusive(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogs[aliceTag] = []models.BattleLogItem{
		tournamentBattle("draw"),
		tournamentBattle("draw"),
		tournamentBattle("draw"),
	}

	_, err := env.service.Submit(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrAdjudicationInconclusive)

	stored, _ := env.matchRepo.GetByID(context.Background(), "1.1.1")
	assert.Nil(t, stored.WinnerNumber)
}

func TestSubmitIgnoresInadmissibleBattles(t *testing.T) {
	// Товарищеские победы не должны добить до порога.
	friendly := tournamentBattle("victory")
	friendly.Battle.Type = "friendly"

	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogs[aliceTag] = []models.BattleLogItem{
		friendly, friendly, friendly,
		tournamentBattle("victory"),
		tournamentBattle("victory"),
		tournamentBattle("victory"),
	}

	result, err := env.service.Submit(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "submitter_wins", result.Verdict)
	assert.Equal(t, 3, result.BattlesCounted)
}

func TestSubmitByeWithoutGameAPI(t *testing.T) {
	env := newMatchServiceEnv(byeMatch())

	result, err := env.service.Submit(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "bye", result.Verdict)
	assert.Zero(t, env.gameAPI.battleLogCalls)

	stored, _ := env.matchRepo.GetByID(context.Background(), "1.1.2")
	require.NotNil(t, stored.WinnerNumber)
	assert.Equal(t, models.PlayerNumber1, *stored.WinnerNumber)
}

func TestSubmitAlreadyDecided(t *testing.T) {
	match := aliceVsBob()
	winner := models.PlayerNumber1
	match.WinnerNumber = &winner

	env := newMatchServiceEnv(match)
	_, err := env.service.Submit(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
}

func TestSubmitConcurrentSingleWinner(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	winningLog := []models.BattleLogItem{
		tournamentBattle("victory"),
		tournamentBattle("victory"),
		tournamentBattle("victory"),
	}
	env.gameAPI.battleLogs[aliceTag] = winningLog
	env.gameAPI.battleLogs[bobTag] = winningLog

	// Оба игрока отправляют результат одновременно: победителя фиксирует
	// ровно один вызов, второй получает конфликт.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, discordID := range []string{aliceID, bobID} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := env.service.Submit(context.Background(), 1, id)
			errs <- err
		}(discordID)
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrMatchAlreadyDecided):
			conflicted++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	stored, err := env.matchRepo.GetByID(context.Background(), "1.1.1")
	require.NoError(t, err)
	require.NotNil(t, stored.WinnerNumber)
	assert.Equal(t, []string{brackets.EventMatchDecided}, env.broadcaster.eventTypes())
}

func TestSubmitGameAPIUnavailable(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	env.gameAPI.battleLogErr = brawlstars.ErrMaintenance

	_, err := env.service.Submit(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrGameAPIUnavailable)

	stored, _ := env.matchRepo.GetByID(context.Background(), "1.1.1")
	assert.Nil(t, stored.WinnerNumber)
}

func TestSubmitRequiresRunningTournament(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())
	env.tournamentRepo.tournaments[1].Status = models.TournamentStatusPaused

	_, err := env.service.Submit(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrTournamentNotStarted)
}

func TestSubmitNotInMatch(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())

	_, err := env.service.Submit(context.Background(), 1, "stranger")
	assert.ErrorIs(t, err, ErrNotInMatch)
}

func TestReadyIsMonotonic(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())

	match, err := env.service.Ready(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.True(t, match.Player1Ready)
	assert.False(t, match.Player2Ready)

	// Повторная отметка той же стороны отклоняется.
	_, err = env.service.Ready(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrAlreadyReady)

	// Противоположная сторона отмечается независимо.
	match, err = env.service.Ready(context.Background(), 1, bobID)
	require.NoError(t, err)
	assert.True(t, match.Player2Ready)

	assert.Equal(t, []string{brackets.EventPlayerReady, brackets.EventPlayerReady}, env.broadcaster.eventTypes())
}

func TestReadyRejectedAfterDecision(t *testing.T) {
	match := aliceVsBob()
	winner := models.PlayerNumber2
	match.WinnerNumber = &winner

	env := newMatchServiceEnv(match)
	_, err := env.service.Ready(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)
}

func TestReadyAutoCompletesBye(t *testing.T) {
	env := newMatchServiceEnv(byeMatch())

	_, err := env.service.Ready(context.Background(), 1, aliceID)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)

	stored, _ := env.matchRepo.GetByID(context.Background(), "1.1.2")
	require.NotNil(t, stored.WinnerNumber)
	assert.Equal(t, models.PlayerNumber1, *stored.WinnerNumber)
	assert.False(t, stored.Player1Ready)
	assert.Equal(t, []string{brackets.EventMatchDecided}, env.broadcaster.eventTypes())
}

func TestGetPlayerMatchAutoCompletesBye(t *testing.T) {
	env := newMatchServiceEnv(byeMatch())

	match, err := env.service.GetPlayerMatch(context.Background(), 1, aliceID)
	require.NoError(t, err)
	require.NotNil(t, match.WinnerNumber)
	assert.Equal(t, models.PlayerNumber1, *match.WinnerNumber)
	assert.Equal(t, models.MatchStateCompleted, match.State())
	assert.Equal(t, []string{brackets.EventMatchDecided}, env.broadcaster.eventTypes())

	// Повторный просмотр уже решённого bye не дублирует событие.
	_, err = env.service.GetPlayerMatch(context.Background(), 1, aliceID)
	require.NoError(t, err)
	assert.Len(t, env.broadcaster.events, 1)
}

func TestGetPlayerMatchRegularMatchUntouched(t *testing.T) {
	env := newMatchServiceEnv(aliceVsBob())

	match, err := env.service.GetPlayerMatch(context.Background(), 1, bobID)
	require.NoError(t, err)
	assert.Nil(t, match.WinnerNumber)
	assert.Equal(t, models.MatchStateActive, match.State())
	assert.Empty(t, env.broadcaster.events)
}
