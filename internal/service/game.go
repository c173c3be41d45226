package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kickerhub/foosball-api/internal/domain"
	"github.com/kickerhub/foosball-api/internal/repository"
)

var (
	ErrGameNotFound    = repository.ErrGameNotFound
	ErrTeamNotInGame   = errors.New("team does not exist")
	ErrPlayerNotInGame = errors.New("player does not exist")
	ErrScoreNotInGame  = errors.New("score does not exist")
)

type GameRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Game, error)
	FindAll(ctx context.Context, filter repository.GameFilter) ([]domain.Game, error)
	Save(ctx context.Context, game domain.Game) (domain.Game, error)
	Delete(ctx context.Context, id uint) error
	AddScore(ctx context.Context, score domain.Score) (domain.Score, error)
	SetEnd(ctx context.Context, id uint, end time.Time) error
	FindPlayers(ctx context.Context, gameID uint) ([]domain.Player, error)
	FindScores(ctx context.Context, gameID uint) ([]domain.Score, error)
}

type GameUserRepository interface {
	FindExistingIDs(ctx context.Context, ids []uint) (domain.UserSet, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error)
}

type GameService struct {
	repo  GameRepository
	users GameUserRepository
	now   func() time.Time
}

func NewGameService(repo GameRepository, users GameUserRepository) *GameService {
	return &GameService{
		repo:  repo,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GameFilter narrows ListGames. Zero fields are ignored.
type GameFilter struct {
	UserID        uint
	StartedAfter  *time.Time
	StartedBefore *time.Time
}

// GameDraft is a client-proposed aggregate. On update, elements
// carrying an ID address existing rows inside the same game; elements
// without one are appended.
type GameDraft struct {
	Start *time.Time
	End   *time.Time
	Teams []TeamDraft
}

type TeamDraft struct {
	ID      *uint
	Name    string
	Players []PlayerDraft
}

type PlayerDraft struct {
	ID       *uint
	UserID   uint
	Position int
	Scores   []ScoreDraft
}

type ScoreDraft struct {
	ID      *uint
	Time    *time.Time
	OwnGoal bool
}

// TeamRoster is the team listing shape: player entries resolved to
// user names.
type TeamRoster struct {
	ID      uint           `json:"id"`
	Name    string         `json:"name"`
	Players []RosterPlayer `json:"players"`
}

type RosterPlayer struct {
	ID       uint   `json:"id"`
	Position int    `json:"position"`
	Name     string `json:"name"`
}

func (s *GameService) ListGames(ctx context.Context, filter GameFilter) ([]domain.Game, error) {
	games, err := s.repo.FindAll(ctx, repository.GameFilter{
		UserID:        filter.UserID,
		StartedAfter:  filter.StartedAfter,
		StartedBefore: filter.StartedBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return games, nil
}

func (s *GameService) GetGame(ctx context.Context, id uint) (domain.Game, error) {
	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Game{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return game, nil
}

// CreateGame builds the aggregate from the draft, validates it as a
// whole and persists it. A missing start defaults to now. A finished
// game (either side at the cap) gets its end stamped immediately.
func (s *GameService) CreateGame(ctx context.Context, draft GameDraft) (domain.Game, error) {
	game := domain.Game{
		Start: s.now(),
		End:   draft.End,
	}
	if draft.Start != nil {
		game.Start = *draft.Start
	}

	for _, td := range draft.Teams {
		team := domain.Team{Name: td.Name}
		for _, pd := range td.Players {
			player := domain.Player{
				UserID:   pd.UserID,
				Position: pd.Position,
			}
			for _, sd := range pd.Scores {
				player.Scores = append(player.Scores, domain.Score{
					Time:    sd.Time,
					OwnGoal: sd.OwnGoal,
				})
			}
			team.Players = append(team.Players, player)
		}
		game.Teams = append(game.Teams, team)
	}

	if err := s.validate(ctx, &game); err != nil {
		return domain.Game{}, err
	}

	s.stampEndIfOver(&game)

	saved, err := s.repo.Save(ctx, game)
	if err != nil {
		return domain.Game{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return saved, nil
}

// UpdateGame merges the draft into the stored aggregate, re-validates
// and persists. Drafted elements with IDs must already belong to this
// game.
func (s *GameService) UpdateGame(ctx context.Context, id uint, draft GameDraft) (domain.Game, error) {
	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Game{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if draft.Start != nil {
		game.Start = *draft.Start
	}
	if draft.End != nil {
		game.End = draft.End
	}

	if err := s.mergeTeams(&game, draft.Teams); err != nil {
		return domain.Game{}, err
	}

	if err := s.validate(ctx, &game); err != nil {
		return domain.Game{}, err
	}

	s.stampEndIfOver(&game)

	saved, err := s.repo.Save(ctx, game)
	if err != nil {
		return domain.Game{}, fmt.Errorf("s.repo.Save -> %w", err)
	}

	return saved, nil
}

func (s *GameService) DeleteGame(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// AddScore admits a single goal: the game must still be open, no team
// may already be at the cap, and the player must belong to the game.
// The score time defaults to now and the game's end is stamped as soon
// as the goal concludes the match.
func (s *GameService) AddScore(ctx context.Context, gameID, playerID uint, at *time.Time, ownGoal bool) (domain.Score, error) {
	game, err := s.repo.FindByID(ctx, gameID)
	if err != nil {
		return domain.Score{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	player, err := game.CanAddScore(playerID)
	if err != nil {
		return domain.Score{}, err
	}

	when := s.now()
	if at != nil {
		when = *at
	}

	score := domain.Score{
		PlayerID: player.ID,
		GameID:   player.GameID,
		TeamID:   player.TeamID,
		Time:     &when,
		OwnGoal:  ownGoal,
	}

	created, err := s.repo.AddScore(ctx, score)
	if err != nil {
		return domain.Score{}, fmt.Errorf("s.repo.AddScore -> %w", err)
	}

	player.Scores = append(player.Scores, created)
	if game.IsOver() && game.End == nil {
		if err := s.repo.SetEnd(ctx, game.ID, s.now()); err != nil {
			return domain.Score{}, fmt.Errorf("s.repo.SetEnd -> %w", err)
		}
	}

	return created, nil
}

// GetPlayers lists a game's players ordered by team then position.
func (s *GameService) GetPlayers(ctx context.Context, gameID uint) ([]domain.Player, error) {
	if _, err := s.repo.FindByID(ctx, gameID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	players, err := s.repo.FindPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPlayers -> %w", err)
	}

	return players, nil
}

// GetScores lists a game's scores in the order they were recorded.
func (s *GameService) GetScores(ctx context.Context, gameID uint) ([]domain.Score, error) {
	if _, err := s.repo.FindByID(ctx, gameID); err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	scores, err := s.repo.FindScores(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindScores -> %w", err)
	}

	return scores, nil
}

// GetTeams lists a game's teams with each lineup resolved to user
// names.
func (s *GameService) GetTeams(ctx context.Context, gameID uint) ([]TeamRoster, error) {
	game, err := s.repo.FindByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	users, err := s.users.FindByIDs(ctx, collectUserIDs(&game))
	if err != nil {
		return nil, fmt.Errorf("s.users.FindByIDs -> %w", err)
	}

	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	rosters := make([]TeamRoster, 0, len(game.Teams))
	for _, team := range game.Teams {
		roster := TeamRoster{
			ID:      team.ID,
			Name:    team.Name,
			Players: make([]RosterPlayer, 0, len(team.Players)),
		}
		for _, p := range team.Players {
			roster.Players = append(roster.Players, RosterPlayer{
				ID:       p.ID,
				Position: p.Position,
				Name:     names[p.UserID],
			})
		}
		rosters = append(rosters, roster)
	}

	return rosters, nil
}

func (s *GameService) mergeTeams(game *domain.Game, drafts []TeamDraft) error {
	for _, td := range drafts {
		var team *domain.Team
		if td.ID == nil {
			game.Teams = append(game.Teams, domain.Team{GameID: game.ID})
			team = &game.Teams[len(game.Teams)-1]
		} else {
			for i := range game.Teams {
				if game.Teams[i].ID == *td.ID {
					team = &game.Teams[i]
					break
				}
			}
			if team == nil {
				return ErrTeamNotInGame
			}
		}
		team.Name = td.Name

		for _, pd := range td.Players {
			var player *domain.Player
			if pd.ID == nil {
				team.Players = append(team.Players, domain.Player{
					GameID: game.ID,
					TeamID: team.ID,
				})
				player = &team.Players[len(team.Players)-1]
			} else {
				for i := range team.Players {
					if team.Players[i].ID == *pd.ID {
						player = &team.Players[i]
						break
					}
				}
				if player == nil {
					return ErrPlayerNotInGame
				}
			}
			player.UserID = pd.UserID
			player.Position = pd.Position

			for _, sd := range pd.Scores {
				var score *domain.Score
				if sd.ID == nil {
					player.Scores = append(player.Scores, domain.Score{
						PlayerID: player.ID,
						GameID:   game.ID,
						TeamID:   team.ID,
					})
					score = &player.Scores[len(player.Scores)-1]
				} else {
					for i := range player.Scores {
						if player.Scores[i].ID == *sd.ID {
							score = &player.Scores[i]
							break
						}
					}
					if score == nil {
						return ErrScoreNotInGame
					}
				}
				score.Time = sd.Time
				score.OwnGoal = sd.OwnGoal
			}
		}
	}

	return nil
}

func (s *GameService) validate(ctx context.Context, game *domain.Game) error {
	users, err := s.users.FindExistingIDs(ctx, collectUserIDs(game))
	if err != nil {
		return fmt.Errorf("s.users.FindExistingIDs -> %w", err)
	}

	return game.Validate(users)
}

func (s *GameService) stampEndIfOver(game *domain.Game) {
	if game.End == nil && game.IsOver() {
		end := s.now()
		game.End = &end
	}
}

func collectUserIDs(game *domain.Game) []uint {
	var ids []uint
	for _, p := range game.Players() {
		ids = append(ids, p.UserID)
	}

	return ids
}
