package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrGameNotFound = errors.New("game does not exist")

type Game struct {
	ID    uint      `gorm:"primaryKey"`
	Start time.Time `gorm:"not null;index"`
	End   *time.Time

	Teams []Team `gorm:"foreignKey:GameID"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Team struct {
	ID     uint `gorm:"primaryKey"`
	GameID uint `gorm:"not null;index"`
	Name   string

	Players []Player `gorm:"foreignKey:TeamID"`
}

type Player struct {
	ID       uint `gorm:"primaryKey"`
	UserID   uint `gorm:"not null;index"`
	GameID   uint `gorm:"not null;index"`
	TeamID   uint `gorm:"not null;index"`
	Position int

	Scores []Score `gorm:"foreignKey:PlayerID"`
}

type Score struct {
	ID       uint       `gorm:"primaryKey"`
	PlayerID uint       `gorm:"not null;index"`
	GameID   uint       `gorm:"not null;index"`
	TeamID   uint       `gorm:"not null"`
	Time     *time.Time `gorm:"not null"`
	OwnGoal  bool       `gorm:"not null;default:false"`
}

// GameFilter narrows FindAll. Zero fields are ignored.
type GameFilter struct {
	UserID        uint
	StartedAfter  *time.Time // inclusive
	StartedBefore *time.Time // exclusive
}

type GameDAO struct {
	db *gorm.DB
}

func NewGameDAO(db *gorm.DB) *GameDAO {
	return &GameDAO{
		db: db,
	}
}

func (d *GameDAO) FindByID(ctx context.Context, id uint) (Game, error) {
	var game Game

	result := d.db.WithContext(ctx).
		Preload("Teams", func(db *gorm.DB) *gorm.DB { return db.Order("teams.id") }).
		Preload("Teams.Players", func(db *gorm.DB) *gorm.DB { return db.Order("players.id") }).
		Preload("Teams.Players.Scores", func(db *gorm.DB) *gorm.DB { return db.Order("scores.id") }).
		First(&game, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Game{}, ErrGameNotFound
		}

		return Game{}, result.Error
	}

	return game, nil
}

func (d *GameDAO) FindAll(ctx context.Context, filter GameFilter) ([]Game, error) {
	query := d.db.WithContext(ctx).
		Preload("Teams", func(db *gorm.DB) *gorm.DB { return db.Order("teams.id") }).
		Preload("Teams.Players", func(db *gorm.DB) *gorm.DB { return db.Order("players.id") }).
		Preload("Teams.Players.Scores", func(db *gorm.DB) *gorm.DB { return db.Order("scores.id") })

	if filter.UserID != 0 {
		query = query.Where("id IN (?)",
			d.db.Model(&Player{}).Select("game_id").Where("user_id = ?", filter.UserID))
	}
	if filter.StartedAfter != nil {
		query = query.Where("start >= ?", *filter.StartedAfter)
	}
	if filter.StartedBefore != nil {
		query = query.Where("start < ?", *filter.StartedBefore)
	}

	var games []Game
	if result := query.Order("id").Find(&games); result.Error != nil {
		return nil, result.Error
	}

	return games, nil
}

// Save persists the whole aggregate in one transaction, creating rows
// with zero IDs and updating the rest. Child foreign keys are wired as
// parents are written so freshly created teams and players can carry
// new children.
func (d *GameDAO) Save(ctx context.Context, game Game) (Game, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The domain aggregate carries no audit columns, so an update
		// must not write the zero value over created_at.
		omits := []string{"Teams"}
		if game.ID != 0 {
			omits = append(omits, "created_at")
		}
		if err := tx.Omit(omits...).Save(&game).Error; err != nil {
			return err
		}

		for ti := range game.Teams {
			team := &game.Teams[ti]
			team.GameID = game.ID
			if err := tx.Omit("Players").Save(team).Error; err != nil {
				return err
			}

			for pi := range team.Players {
				player := &team.Players[pi]
				player.GameID = game.ID
				player.TeamID = team.ID
				if err := tx.Omit("Scores").Save(player).Error; err != nil {
					return err
				}

				for si := range player.Scores {
					score := &player.Scores[si]
					score.GameID = game.ID
					score.TeamID = team.ID
					score.PlayerID = player.ID
					if err := tx.Save(score).Error; err != nil {
						return err
					}
				}
			}
		}

		return nil
	})
	if err != nil {
		return Game{}, err
	}

	return game, nil
}

// Delete removes the game and everything it owns. The cascade is
// spelled out inside one transaction rather than left to database
// constraints; children go first so the foreign keys stay satisfied.
func (d *GameDAO) Delete(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&Score{}, &Player{}, &Team{}} {
			if err := tx.Where("game_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Game{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrGameNotFound
		}

		return nil
	})
}

func (d *GameDAO) InsertScore(ctx context.Context, score Score) (Score, error) {
	result := d.db.WithContext(ctx).Create(&score)
	if result.Error != nil {
		return Score{}, result.Error
	}

	return score, nil
}

// SetEnd stamps the game's end time without rewriting the aggregate.
func (d *GameDAO) SetEnd(ctx context.Context, id uint, end time.Time) error {
	result := d.db.WithContext(ctx).Model(&Game{}).Where("id = ?", id).Update("end", end)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGameNotFound
	}

	return nil
}

// FindPlayers lists a game's players ordered by team then position.
func (d *GameDAO) FindPlayers(ctx context.Context, gameID uint) ([]Player, error) {
	var players []Player

	result := d.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("team_id").Order("position").
		Find(&players)
	if result.Error != nil {
		return nil, result.Error
	}

	return players, nil
}

// FindScores lists a game's scores in insertion order.
func (d *GameDAO) FindScores(ctx context.Context, gameID uint) ([]Score, error) {
	var scores []Score

	result := d.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("id").
		Find(&scores)
	if result.Error != nil {
		return nil, result.Error
	}

	return scores, nil
}
