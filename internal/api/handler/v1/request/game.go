package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// GameRequest is the nested aggregate payload shared by game creation
// and game update. On update, elements carrying an id address existing
// rows; elements without one are appended. Timestamps are RFC 3339.
type GameRequest struct {
	Start string        `json:"start"`
	End   string        `json:"end"`
	Teams []TeamPayload `json:"teams"`
}

type TeamPayload struct {
	ID      *uint           `json:"id"`
	Name    string          `json:"name"`
	Players []PlayerPayload `json:"players"`
}

type PlayerPayload struct {
	ID       *uint          `json:"id"`
	Position int            `json:"position"`
	User     *UserRef       `json:"user"`
	Scores   []ScorePayload `json:"scores"`
}

type UserRef struct {
	ID uint `json:"id"`
}

type ScorePayload struct {
	ID      *uint  `json:"id"`
	Time    string `json:"time"`
	OwnGoal bool   `json:"own_goal"`
}

func (req *GameRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Start, validation.Date(time.RFC3339)),
		validation.Field(&req.End, validation.Date(time.RFC3339)),
	)
	if err != nil {
		return err
	}

	for _, team := range req.Teams {
		if err := team.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func (t *TeamPayload) Validate() error {
	err := validation.ValidateStruct(
		t,
		validation.Field(&t.Name, validation.Length(0, 100)),
	)
	if err != nil {
		return err
	}

	for _, player := range t.Players {
		for _, score := range player.Scores {
			if err := score.Validate(); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *ScorePayload) Validate() error {
	return validation.ValidateStruct(
		s,
		validation.Field(&s.Time, validation.Date(time.RFC3339)),
	)
}

type SubmitScoreRequest struct {
	PlayerID uint   `json:"player_id"`
	Time     string `json:"time"`
	OwnGoal  bool   `json:"own_goal"`
}

func (req *SubmitScoreRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PlayerID, validation.Required.Error("must pass player_id")),
		validation.Field(&req.Time, validation.Date(time.RFC3339)),
	)
}
