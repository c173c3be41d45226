package domain

import "time"

// MaxPoints is the point total that ends a foosball match.
const MaxPoints = 10

type Game struct {
	ID    uint       `json:"id"`
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
	Teams []Team     `json:"teams"`
}

type Team struct {
	ID      uint     `json:"id"`
	GameID  uint     `json:"game_id"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

type Player struct {
	ID       uint    `json:"id"`
	UserID   uint    `json:"user_id"`
	GameID   uint    `json:"game_id"`
	TeamID   uint    `json:"team_id"`
	Position int     `json:"position"`
	Scores   []Score `json:"scores"`
}

type Score struct {
	ID       uint       `json:"id"`
	PlayerID uint       `json:"player_id"`
	GameID   uint       `json:"game_id"`
	TeamID   uint       `json:"team_id"`
	Time     *time.Time `json:"time"`
	OwnGoal  bool       `json:"own_goal"`
}

// Players flattens the aggregate's players across teams.
func (g *Game) Players() []Player {
	var players []Player
	for _, t := range g.Teams {
		players = append(players, t.Players...)
	}

	return players
}

// Scores flattens the aggregate's scores across teams and players.
func (g *Game) Scores() []Score {
	var scores []Score
	for _, t := range g.Teams {
		for _, p := range t.Players {
			scores = append(scores, p.Scores...)
		}
	}

	return scores
}

// FindPlayer returns the player with the given ID, or nil if no player
// in this game has it.
func (g *Game) FindPlayer(playerID uint) *Player {
	for ti := range g.Teams {
		for pi := range g.Teams[ti].Players {
			if g.Teams[ti].Players[pi].ID == playerID {
				return &g.Teams[ti].Players[pi]
			}
		}
	}

	return nil
}
