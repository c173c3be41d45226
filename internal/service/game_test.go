package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickerhub/foosball-api/internal/domain"
	"github.com/kickerhub/foosball-api/internal/repository"
)

// fakeGameRepo keeps a single aggregate in memory and hands out IDs the
// way the database would.
type fakeGameRepo struct {
	games  map[uint]domain.Game
	nextID uint
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{
		games:  map[uint]domain.Game{},
		nextID: 1,
	}
}

func (f *fakeGameRepo) FindByID(_ context.Context, id uint) (domain.Game, error) {
	game, ok := f.games[id]
	if !ok {
		return domain.Game{}, repository.ErrGameNotFound
	}

	return cloneGame(game), nil
}

// cloneGame hands out an independent snapshot, the way the database
// would, so callers mutating the aggregate cannot reach the stored one
// through shared slice backing arrays.
func cloneGame(game domain.Game) domain.Game {
	game.Teams = append([]domain.Team(nil), game.Teams...)
	for ti := range game.Teams {
		team := &game.Teams[ti]
		team.Players = append([]domain.Player(nil), team.Players...)
		for pi := range team.Players {
			player := &team.Players[pi]
			player.Scores = append([]domain.Score(nil), player.Scores...)
		}
	}

	return game
}

func (f *fakeGameRepo) FindAll(_ context.Context, _ repository.GameFilter) ([]domain.Game, error) {
	var games []domain.Game
	for _, g := range f.games {
		games = append(games, g)
	}

	return games, nil
}

func (f *fakeGameRepo) Save(_ context.Context, game domain.Game) (domain.Game, error) {
	if game.ID == 0 {
		game.ID = f.take()
	}
	for ti := range game.Teams {
		team := &game.Teams[ti]
		if team.ID == 0 {
			team.ID = f.take()
		}
		team.GameID = game.ID
		for pi := range team.Players {
			player := &team.Players[pi]
			if player.ID == 0 {
				player.ID = f.take()
			}
			player.GameID = game.ID
			player.TeamID = team.ID
			for si := range player.Scores {
				score := &player.Scores[si]
				if score.ID == 0 {
					score.ID = f.take()
				}
				score.GameID = game.ID
				score.TeamID = team.ID
				score.PlayerID = player.ID
			}
		}
	}

	f.games[game.ID] = game

	return game, nil
}

func (f *fakeGameRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.games[id]; !ok {
		return repository.ErrGameNotFound
	}
	delete(f.games, id)

	return nil
}

func (f *fakeGameRepo) AddScore(_ context.Context, score domain.Score) (domain.Score, error) {
	score.ID = f.take()

	game := f.games[score.GameID]
	for ti := range game.Teams {
		for pi := range game.Teams[ti].Players {
			if game.Teams[ti].Players[pi].ID == score.PlayerID {
				game.Teams[ti].Players[pi].Scores = append(game.Teams[ti].Players[pi].Scores, score)
			}
		}
	}
	f.games[score.GameID] = game

	return score, nil
}

func (f *fakeGameRepo) SetEnd(_ context.Context, id uint, end time.Time) error {
	game, ok := f.games[id]
	if !ok {
		return repository.ErrGameNotFound
	}
	game.End = &end
	f.games[id] = game

	return nil
}

func (f *fakeGameRepo) FindPlayers(_ context.Context, gameID uint) ([]domain.Player, error) {
	game := f.games[gameID]

	return game.Players(), nil
}

func (f *fakeGameRepo) FindScores(_ context.Context, gameID uint) ([]domain.Score, error) {
	game := f.games[gameID]

	return game.Scores(), nil
}

func (f *fakeGameRepo) take() uint {
	id := f.nextID
	f.nextID++

	return id
}

type fakeUserLookup struct {
	users map[uint]string
}

func (f *fakeUserLookup) FindExistingIDs(_ context.Context, ids []uint) (domain.UserSet, error) {
	var found []uint
	for _, id := range ids {
		if _, ok := f.users[id]; ok {
			found = append(found, id)
		}
	}

	return domain.NewUserSet(found...), nil
}

func (f *fakeUserLookup) FindByIDs(_ context.Context, ids []uint) ([]domain.User, error) {
	var users []domain.User
	for _, id := range ids {
		if name, ok := f.users[id]; ok {
			users = append(users, domain.User{ID: id, Name: name})
		}
	}

	return users, nil
}

func newGameService(repo *fakeGameRepo) *GameService {
	users := &fakeUserLookup{users: map[uint]string{
		1: "ann", 2: "ben", 3: "cam", 4: "dot",
		5: "eli", 6: "fay", 7: "gus", 8: "ivy",
	}}

	svc := NewGameService(repo, users)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	return svc
}

func twoTeamDraft() GameDraft {
	var red, blue TeamDraft
	red.Name, blue.Name = "red", "blue"
	for i := 1; i <= 4; i++ {
		red.Players = append(red.Players, PlayerDraft{UserID: uint(i), Position: i})
		blue.Players = append(blue.Players, PlayerDraft{UserID: uint(i + 4), Position: i})
	}

	return GameDraft{Teams: []TeamDraft{red, blue}}
}

func TestCreateGame(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	created, err := svc.CreateGame(context.Background(), twoTeamDraft())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.False(t, created.Start.IsZero(), "start defaults to now")
	assert.Nil(t, created.End)
	require.Len(t, created.Teams, 2)
	assert.Len(t, created.Teams[0].Players, 4)
}

func TestCreateGame_RejectsRuleViolations(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	draft := twoTeamDraft()
	draft.Teams[1].Name = "red"

	_, err := svc.CreateGame(context.Background(), draft)
	assert.ErrorIs(t, err, domain.ErrDuplicateTeamName)
	assert.Empty(t, repo.games, "invalid game must not be persisted")
}

func TestCreateGame_RejectsUnknownUser(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	draft := twoTeamDraft()
	draft.Teams[0].Players[0].UserID = 99

	_, err := svc.CreateGame(context.Background(), draft)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestUpdateGame_MergesAndValidates(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	created, err := svc.CreateGame(context.Background(), twoTeamDraft())
	require.NoError(t, err)

	// Rename an existing team by ID.
	teamID := created.Teams[0].ID
	updated, err := svc.UpdateGame(context.Background(), created.ID, GameDraft{
		Teams: []TeamDraft{{ID: &teamID, Name: "crimson"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "crimson", updated.Teams[0].Name)
	assert.Len(t, updated.Teams[0].Players, 4, "merge must not drop players")
}

func TestUpdateGame_UnknownIDs(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)

	created, err := svc.CreateGame(context.Background(), twoTeamDraft())
	require.NoError(t, err)

	missing := uint(999)

	_, err = svc.UpdateGame(context.Background(), created.ID, GameDraft{
		Teams: []TeamDraft{{ID: &missing, Name: "ghost"}},
	})
	assert.ErrorIs(t, err, ErrTeamNotInGame)

	teamID := created.Teams[0].ID
	_, err = svc.UpdateGame(context.Background(), created.ID, GameDraft{
		Teams: []TeamDraft{{ID: &teamID, Name: "red", Players: []PlayerDraft{{ID: &missing, UserID: 1, Position: 1}}}},
	})
	assert.ErrorIs(t, err, ErrPlayerNotInGame)

	_, err = svc.UpdateGame(context.Background(), missing, GameDraft{})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestAddScore_CapSequenceAndAutoEnd(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	ctx := context.Background()

	created, err := svc.CreateGame(ctx, twoTeamDraft())
	require.NoError(t, err)

	scorer := created.Teams[0].Players[0].ID

	for i := 0; i < 10; i++ {
		score, err := svc.AddScore(ctx, created.ID, scorer, nil, false)
		require.NoError(t, err, "admission %d", i+1)
		assert.NotNil(t, score.Time, "score time defaults to now")
		assert.Equal(t, created.Teams[0].ID, score.TeamID)
	}

	// The tenth goal concluded the match; the end is stamped.
	game, err := svc.GetGame(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, game.End)
	assert.True(t, game.IsOver())

	// The eleventh attempt bounces off the closed game.
	_, err = svc.AddScore(ctx, created.ID, scorer, nil, false)
	assert.ErrorIs(t, err, domain.ErrGameOver)
}

func TestAddScore_OwnGoalCreditsOpponent(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	ctx := context.Background()

	created, err := svc.CreateGame(ctx, twoTeamDraft())
	require.NoError(t, err)

	scorer := created.Teams[0].Players[0].ID
	_, err = svc.AddScore(ctx, created.ID, scorer, nil, true)
	require.NoError(t, err)

	game, err := svc.GetGame(ctx, created.ID)
	require.NoError(t, err)

	points := game.Points()
	assert.Equal(t, 0, points[0])
	assert.Equal(t, 1, points[1])
}

func TestAddScore_Rejections(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	ctx := context.Background()

	created, err := svc.CreateGame(ctx, twoTeamDraft())
	require.NoError(t, err)

	_, err = svc.AddScore(ctx, 999, 1, nil, false)
	assert.ErrorIs(t, err, ErrGameNotFound)

	_, err = svc.AddScore(ctx, created.ID, 999, nil, false)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

func TestGetTeams_ResolvesUserNames(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	ctx := context.Background()

	created, err := svc.CreateGame(ctx, twoTeamDraft())
	require.NoError(t, err)

	rosters, err := svc.GetTeams(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, rosters, 2)

	assert.Equal(t, "red", rosters[0].Name)
	require.Len(t, rosters[0].Players, 4)
	assert.Equal(t, "ann", rosters[0].Players[0].Name)
	assert.Equal(t, 1, rosters[0].Players[0].Position)
}

func TestUpdateGame_ExplicitEndCloses(t *testing.T) {
	repo := newFakeGameRepo()
	svc := newGameService(repo)
	ctx := context.Background()

	created, err := svc.CreateGame(ctx, twoTeamDraft())
	require.NoError(t, err)

	end := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateGame(ctx, created.ID, GameDraft{End: &end})
	require.NoError(t, err)
	require.NotNil(t, updated.End)

	_, err = svc.AddScore(ctx, created.ID, created.Teams[0].Players[0].ID, nil, false)
	assert.ErrorIs(t, err, domain.ErrGameOver)
}
