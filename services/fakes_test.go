package services

import (
	"context"
	"sync"

	"github.com/Dosada05/brawl-tournament-system/brackets"
	"github.com/Dosada05/brawl-tournament-system/brawlstars"
	"github.com/Dosada05/brawl-tournament-system/models"
	"github.com/Dosada05/brawl-tournament-system/repositories"
)

// Незасеянный тег отдаём как 404 игрового API.
var errProfileNotSeeded = brawlstars.ErrNotFound

// Фейки репозиториев и внешних зависимостей для сервисных тестов:
// хранят данные в памяти и воспроизводят семантику ошибок Postgres-реализаций.

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo(seed ...*models.Tournament) *fakeTournamentRepo {
	r := &fakeTournamentRepo{tournaments: make(map[int]*models.Tournament), nextID: 1}
	for _, t := range seed {
		r.tournaments[t.ID] = t
		if t.ID >= r.nextID {
			r.nextID = t.ID + 1
		}
	}
	return r
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	for _, existing := range r.tournaments {
		if existing.GuildID == t.GuildID && existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, _ repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	out := make([]models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, *t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) SetRounds(_ context.Context, _ repositories.SQLExecutor, id int, rounds, currentRound int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Rounds = rounds
	t.CurrentRound = currentRound
	return nil
}

func (r *fakeTournamentRepo) SetMap(_ context.Context, _ repositories.SQLExecutor, id int, gameMap string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Map = gameMap
	return nil
}

func (r *fakeTournamentRepo) SetWinsRequired(_ context.Context, _ repositories.SQLExecutor, id int, winsRequired int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinsRequired = winsRequired
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(_ context.Context, id int, logoKey *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[string]*models.Match
	order   []string
}

func newFakeMatchRepo(seed ...*models.Match) *fakeMatchRepo {
	r := &fakeMatchRepo{matches: make(map[string]*models.Match)}
	for _, m := range seed {
		r.matches[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[match.ID]; ok {
		return repositories.ErrMatchIDConflict
	}
	copied := *match
	r.matches[match.ID] = &copied
	r.order = append(r.order, match.ID)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) GetByPlayer(_ context.Context, tournamentID int, discordID string) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var decided *models.Match
	for _, id := range r.order {
		m := r.matches[id]
		if m.TournamentID != tournamentID || m.PlayerNumberFor(discordID) == nil {
			continue
		}
		if m.WinnerNumber == nil {
			copied := *m
			return &copied, nil
		}
		decided = m
	}
	if decided != nil {
		copied := *decided
		return &copied, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID int, round *int) ([]models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Match, 0)
	for _, id := range r.order {
		m := r.matches[id]
		if m.TournamentID != tournamentID {
			continue
		}
		if round != nil && m.Round != *round {
			continue
		}
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMatchRepo) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) SetReady(_ context.Context, id string, number models.PlayerNumber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.ReadyFor(number) {
		return repositories.ErrMatchAlreadyReady
	}
	if number == models.PlayerNumber1 {
		m.Player1Ready = true
	} else {
		m.Player2Ready = true
	}
	return nil
}

func (r *fakeMatchRepo) SetWinner(_ context.Context, id string, number models.PlayerNumber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if m.WinnerNumber != nil {
		return repositories.ErrMatchAlreadyDecided
	}
	m.WinnerNumber = &number
	return nil
}

type fakePlayerRepo struct {
	players map[string]*models.Player
}

func newFakePlayerRepo(seed ...*models.Player) *fakePlayerRepo {
	r := &fakePlayerRepo{players: make(map[string]*models.Player)}
	for _, p := range seed {
		r.players[p.DiscordID] = p
	}
	return r
}

func (r *fakePlayerRepo) Create(_ context.Context, p *models.Player) error {
	if _, ok := r.players[p.DiscordID]; ok {
		return repositories.ErrPlayerAlreadyExists
	}
	for _, existing := range r.players {
		if existing.PlayerTag == p.PlayerTag {
			return repositories.ErrPlayerTagConflict
		}
	}
	copied := *p
	r.players[p.DiscordID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByDiscordID(_ context.Context, discordID string) (*models.Player, error) {
	p, ok := r.players[discordID]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePlayerRepo) GetByTag(_ context.Context, tag string) (*models.Player, error) {
	for _, p := range r.players {
		if p.PlayerTag == tag {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) Delete(_ context.Context, discordID string) error {
	if _, ok := r.players[discordID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, discordID)
	return nil
}

type fakeRosterRepo struct {
	rosters map[int][]models.Player
	active  []models.Tournament
}

func newFakeRosterRepo() *fakeRosterRepo {
	return &fakeRosterRepo{rosters: make(map[int][]models.Player)}
}

func (r *fakeRosterRepo) Enter(_ context.Context, tournamentID int, discordID string) error {
	for _, p := range r.rosters[tournamentID] {
		if p.DiscordID == discordID {
			return repositories.ErrRosterEntryConflict
		}
	}
	r.rosters[tournamentID] = append(r.rosters[tournamentID], models.Player{DiscordID: discordID})
	return nil
}

func (r *fakeRosterRepo) Leave(_ context.Context, tournamentID int, discordID string) error {
	roster := r.rosters[tournamentID]
	for i, p := range roster {
		if p.DiscordID == discordID {
			r.rosters[tournamentID] = append(roster[:i], roster[i+1:]...)
			return nil
		}
	}
	return repositories.ErrRosterEntryNotFound
}

func (r *fakeRosterRepo) ListByTournament(_ context.Context, tournamentID int) ([]models.Player, error) {
	return r.rosters[tournamentID], nil
}

func (r *fakeRosterRepo) CountByTournament(_ context.Context, tournamentID int) (int, error) {
	return len(r.rosters[tournamentID]), nil
}

func (r *fakeRosterRepo) ListActiveTournaments(_ context.Context, _ string) ([]models.Tournament, error) {
	return r.active, nil
}

type fakeGameAPI struct {
	mu             sync.Mutex
	profiles       map[string]*models.PlayerProfile
	battleLogs     map[string][]models.BattleLogItem
	profileErr     error
	battleLogErr   error
	profileCalls   int
	battleLogCalls int
}

func newFakeGameAPI() *fakeGameAPI {
	return &fakeGameAPI{
		profiles:   make(map[string]*models.PlayerProfile),
		battleLogs: make(map[string][]models.BattleLogItem),
	}
}

func (a *fakeGameAPI) GetProfile(_ context.Context, tag string) (*models.PlayerProfile, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.profileCalls++
	if a.profileErr != nil {
		return nil, a.profileErr
	}
	p, ok := a.profiles[tag]
	if !ok {
		return nil, errProfileNotSeeded
	}
	return p, nil
}

func (a *fakeGameAPI) GetBattleLog(_ context.Context, tag string) ([]models.BattleLogItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.battleLogCalls++
	if a.battleLogErr != nil {
		return nil, a.battleLogErr
	}
	return a.battleLogs[tag], nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []brackets.Event
}

func (b *fakeBroadcaster) BroadcastToRoom(_ string, message interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if event, ok := message.(brackets.Event); ok {
		b.events = append(b.events, event)
	}
}

func (b *fakeBroadcaster) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	types := make([]string, 0, len(b.events))
	for _, e := range b.events {
		types = append(types, e.Type)
	}
	return types
}
