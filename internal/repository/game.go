package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/kickerhub/foosball-api/internal/domain"
	"github.com/kickerhub/foosball-api/internal/repository/dao"
)

var ErrGameNotFound = dao.ErrGameNotFound

// GameFilter narrows ListGames. Zero fields are ignored.
type GameFilter struct {
	UserID        uint
	StartedAfter  *time.Time
	StartedBefore *time.Time
}

type GameDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Game, error)
	FindAll(ctx context.Context, filter dao.GameFilter) ([]dao.Game, error)
	Save(ctx context.Context, game dao.Game) (dao.Game, error)
	Delete(ctx context.Context, id uint) error
	InsertScore(ctx context.Context, score dao.Score) (dao.Score, error)
	SetEnd(ctx context.Context, id uint, end time.Time) error
	FindPlayers(ctx context.Context, gameID uint) ([]dao.Player, error)
	FindScores(ctx context.Context, gameID uint) ([]dao.Score, error)
}

type GameRepository struct {
	dao GameDAO
}

func NewGameRepository(dao GameDAO) *GameRepository {
	return &GameRepository{
		dao: dao,
	}
}

func (r *GameRepository) FindByID(ctx context.Context, id uint) (domain.Game, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Game{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.gameToDomain(found), nil
}

func (r *GameRepository) FindAll(ctx context.Context, filter GameFilter) ([]domain.Game, error) {
	found, err := r.dao.FindAll(ctx, dao.GameFilter{
		UserID:        filter.UserID,
		StartedAfter:  filter.StartedAfter,
		StartedBefore: filter.StartedBefore,
	})
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	games := make([]domain.Game, 0, len(found))
	for _, g := range found {
		games = append(games, r.gameToDomain(g))
	}

	return games, nil
}

func (r *GameRepository) Save(ctx context.Context, game domain.Game) (domain.Game, error) {
	saved, err := r.dao.Save(ctx, r.gameToDAO(game))
	if err != nil {
		return domain.Game{}, fmt.Errorf("r.dao.Save -> %w", err)
	}

	return r.gameToDomain(saved), nil
}

func (r *GameRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *GameRepository) AddScore(ctx context.Context, score domain.Score) (domain.Score, error) {
	inserted, err := r.dao.InsertScore(ctx, dao.Score{
		PlayerID: score.PlayerID,
		GameID:   score.GameID,
		TeamID:   score.TeamID,
		Time:     score.Time,
		OwnGoal:  score.OwnGoal,
	})
	if err != nil {
		return domain.Score{}, fmt.Errorf("r.dao.InsertScore -> %w", err)
	}

	return r.scoreToDomain(inserted), nil
}

func (r *GameRepository) SetEnd(ctx context.Context, id uint, end time.Time) error {
	if err := r.dao.SetEnd(ctx, id, end); err != nil {
		return fmt.Errorf("r.dao.SetEnd -> %w", err)
	}

	return nil
}

func (r *GameRepository) FindPlayers(ctx context.Context, gameID uint) ([]domain.Player, error) {
	found, err := r.dao.FindPlayers(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPlayers -> %w", err)
	}

	players := make([]domain.Player, 0, len(found))
	for _, p := range found {
		players = append(players, r.playerToDomain(p))
	}

	return players, nil
}

func (r *GameRepository) FindScores(ctx context.Context, gameID uint) ([]domain.Score, error) {
	found, err := r.dao.FindScores(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindScores -> %w", err)
	}

	scores := make([]domain.Score, 0, len(found))
	for _, s := range found {
		scores = append(scores, r.scoreToDomain(s))
	}

	return scores, nil
}

func (r *GameRepository) gameToDomain(g dao.Game) domain.Game {
	game := domain.Game{
		ID:    g.ID,
		Start: g.Start,
		End:   g.End,
		Teams: make([]domain.Team, 0, len(g.Teams)),
	}

	for _, t := range g.Teams {
		team := domain.Team{
			ID:      t.ID,
			GameID:  t.GameID,
			Name:    t.Name,
			Players: make([]domain.Player, 0, len(t.Players)),
		}
		for _, p := range t.Players {
			team.Players = append(team.Players, r.playerToDomain(p))
		}
		game.Teams = append(game.Teams, team)
	}

	return game
}

func (r *GameRepository) playerToDomain(p dao.Player) domain.Player {
	player := domain.Player{
		ID:       p.ID,
		UserID:   p.UserID,
		GameID:   p.GameID,
		TeamID:   p.TeamID,
		Position: p.Position,
		Scores:   make([]domain.Score, 0, len(p.Scores)),
	}
	for _, s := range p.Scores {
		player.Scores = append(player.Scores, r.scoreToDomain(s))
	}

	return player
}

func (r *GameRepository) scoreToDomain(s dao.Score) domain.Score {
	return domain.Score{
		ID:       s.ID,
		PlayerID: s.PlayerID,
		GameID:   s.GameID,
		TeamID:   s.TeamID,
		Time:     s.Time,
		OwnGoal:  s.OwnGoal,
	}
}

func (r *GameRepository) gameToDAO(g domain.Game) dao.Game {
	game := dao.Game{
		ID:    g.ID,
		Start: g.Start,
		End:   g.End,
		Teams: make([]dao.Team, 0, len(g.Teams)),
	}

	for _, t := range g.Teams {
		team := dao.Team{
			ID:      t.ID,
			GameID:  t.GameID,
			Name:    t.Name,
			Players: make([]dao.Player, 0, len(t.Players)),
		}
		for _, p := range t.Players {
			player := dao.Player{
				ID:       p.ID,
				UserID:   p.UserID,
				GameID:   p.GameID,
				TeamID:   p.TeamID,
				Position: p.Position,
				Scores:   make([]dao.Score, 0, len(p.Scores)),
			}
			for _, s := range p.Scores {
				player.Scores = append(player.Scores, dao.Score{
					ID:       s.ID,
					PlayerID: s.PlayerID,
					GameID:   s.GameID,
					TeamID:   s.TeamID,
					Time:     s.Time,
					OwnGoal:  s.OwnGoal,
				})
			}
			team.Players = append(team.Players, player)
		}
		game.Teams = append(game.Teams, team)
	}

	return game
}
