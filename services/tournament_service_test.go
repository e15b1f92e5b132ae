package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/brawl-tournament-system/brackets"
	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tournamentServiceEnv struct {
	service TournamentService

	db             *sql.DB
	dbMock         sqlmock.Sqlmock
	tournamentRepo *fakeTournamentRepo
	rosterRepo     *fakeRosterRepo
	matchRepo      *fakeMatchRepo
	broadcaster    *fakeBroadcaster
}

func newTournamentServiceEnv(t *testing.T, seed ...*models.Tournament) *tournamentServiceEnv {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := &tournamentServiceEnv{
		db:             db,
		dbMock:         dbMock,
		tournamentRepo: newFakeTournamentRepo(seed...),
		rosterRepo:     newFakeRosterRepo(),
		matchRepo:      newFakeMatchRepo(),
		broadcaster:    &fakeBroadcaster{},
	}
	env.service = NewTournamentService(
		db,
		env.tournamentRepo,
		env.rosterRepo,
		env.matchRepo,
		brackets.NewSingleEliminationGenerator(),
		nil,
		env.broadcaster,
	)
	return env
}

func pendingTournament() *models.Tournament {
	return &models.Tournament{
		ID:           1,
		GuildID:      "guild-1",
		Name:         "Weekly Showdown",
		Status:       models.TournamentStatusPending,
		WinsRequired: 3,
		Mode:         "brawlBall",
		CreatedAt:    time.Date(2024, 8, 15, 10, 0, 0, 0, time.UTC),
	}
}

func enroll(env *tournamentServiceEnv, tournamentID int, n int) {
	players := make([]models.Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, models.Player{DiscordID: string(rune('a'+i)) + "-discord"})
	}
	env.rosterRepo.rosters[tournamentID] = players
}

func TestCreateTournamentDefaults(t *testing.T) {
	env := newTournamentServiceEnv(t)

	tournament, err := env.service.Create(context.Background(), CreateTournamentInput{
		GuildID: "guild-1",
		Name:    "  Weekly Showdown  ",
		Mode:    "brawlBall",
	})
	require.NoError(t, err)
	assert.Equal(t, "Weekly Showdown", tournament.Name)
	assert.Equal(t, models.TournamentStatusPending, tournament.Status)
	assert.Equal(t, 3, tournament.WinsRequired)
}

func TestCreateTournamentValidation(t *testing.T) {
	env := newTournamentServiceEnv(t)

	_, err := env.service.Create(context.Background(), CreateTournamentInput{GuildID: "g", Mode: "brawlBall"})
	assert.ErrorIs(t, err, ErrTournamentNameRequired)

	_, err = env.service.Create(context.Background(), CreateTournamentInput{GuildID: "g", Name: "x"})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = env.service.Create(context.Background(), CreateTournamentInput{
		GuildID: "g", Name: "x", Mode: "brawlBall", WinsRequired: -1,
	})
	assert.ErrorIs(t, err, ErrInvalidWinsRequired)
}

func TestCreateTournamentNameConflict(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())

	_, err := env.service.Create(context.Background(), CreateTournamentInput{
		GuildID: "guild-1",
		Name:    "Weekly Showdown",
		Mode:    "brawlBall",
	})
	assert.ErrorIs(t, err, ErrTournamentNameConflict)
}

func TestStartGeneratesBracket(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())
	enroll(env, 1, 5)

	env.dbMock.ExpectBegin()
	env.dbMock.ExpectCommit()

	tournament, err := env.service.Start(context.Background(), 1, StartOptions{})
	require.NoError(t, err)

	assert.Equal(t, models.TournamentStatusStarted, tournament.Status)
	assert.Equal(t, 3, tournament.Rounds) // ceil(log2(5))
	assert.Equal(t, 1, tournament.CurrentRound)
	require.Len(t, tournament.Matches, 4)

	stored, err := env.matchRepo.ListByTournament(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	persisted, err := env.tournamentRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusStarted, persisted.Status)
	assert.Equal(t, 3, persisted.Rounds)

	assert.Equal(t, []string{brackets.EventTournamentStarted}, env.broadcaster.eventTypes())
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestStartAppliesOverrides(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())
	enroll(env, 1, 4)

	env.dbMock.ExpectBegin()
	env.dbMock.ExpectCommit()

	tournament, err := env.service.Start(context.Background(), 1, StartOptions{
		Map:          "Sneaky Fields",
		WinsRequired: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sneaky Fields", tournament.Map)
	assert.Equal(t, 2, tournament.WinsRequired)

	persisted, err := env.tournamentRepo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Sneaky Fields", persisted.Map)
	assert.Equal(t, 2, persisted.WinsRequired)

	_, err = env.service.Start(context.Background(), 1, StartOptions{WinsRequired: -1})
	assert.ErrorIs(t, err, ErrInvalidWinsRequired)
}

func TestStartCommitFailureSurfaces(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())
	enroll(env, 1, 4)

	env.dbMock.ExpectBegin()
	env.dbMock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	_, err := env.service.Start(context.Background(), 1, StartOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit failed")

	// Старт не удался — никаких рассылок о начале турнира.
	assert.Empty(t, env.broadcaster.eventTypes())
	assert.NoError(t, env.dbMock.ExpectationsWereMet())
}

func TestStartRequiresPending(t *testing.T) {
	started := pendingTournament()
	started.Status = models.TournamentStatusStarted

	env := newTournamentServiceEnv(t, started)
	_, err := env.service.Start(context.Background(), 1, StartOptions{})
	assert.ErrorIs(t, err, ErrTournamentNotPending)
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())
	enroll(env, 1, 1)

	_, err := env.service.Start(context.Background(), 1, StartOptions{})
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
	assert.Empty(t, env.broadcaster.events)
}

func TestStartRejectsExistingBracket(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())
	enroll(env, 1, 4)
	require.NoError(t, env.matchRepo.Create(context.Background(), nil, &models.Match{
		ID: "1.1.1", TournamentID: 1, Round: 1, SequenceInRound: 1,
	}))

	_, err := env.service.Start(context.Background(), 1, StartOptions{})
	assert.ErrorIs(t, err, ErrBracketAlreadyGenerated)
}

func TestStartNotFound(t *testing.T) {
	env := newTournamentServiceEnv(t)

	_, err := env.service.Start(context.Background(), 99, StartOptions{})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestSetStatusTransitions(t *testing.T) {
	started := pendingTournament()
	started.Status = models.TournamentStatusStarted
	env := newTournamentServiceEnv(t, started)

	tournament, err := env.service.SetStatus(context.Background(), 1, models.TournamentStatusPaused)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusPaused, tournament.Status)

	tournament, err = env.service.SetStatus(context.Background(), 1, models.TournamentStatusStarted)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusStarted, tournament.Status)

	tournament, err = env.service.SetStatus(context.Background(), 1, models.TournamentStatusEnded)
	require.NoError(t, err)
	assert.Equal(t, models.TournamentStatusEnded, tournament.Status)

	// Завершённый турнир больше не меняет статус.
	_, err = env.service.SetStatus(context.Background(), 1, models.TournamentStatusStarted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	assert.Equal(t, []string{
		brackets.EventTournamentStatus,
		brackets.EventTournamentStatus,
		brackets.EventTournamentStatus,
	}, env.broadcaster.eventTypes())
}

func TestSetStatusRejectsStartWithoutBracket(t *testing.T) {
	env := newTournamentServiceEnv(t, pendingTournament())

	// pending -> started идёт только через Start.
	_, err := env.service.SetStatus(context.Background(), 1, models.TournamentStatusStarted)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}
