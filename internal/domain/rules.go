package domain

import "errors"

// Rule violations reported by Validate, in evaluation order. The error
// text is the reason string returned to clients verbatim.
var (
	ErrTooManyTeams      = errors.New("too many teams")
	ErrTooManyPlayers    = errors.New("too many players on team")
	ErrDuplicateTeamName = errors.New("each team must have a different name")
	ErrUnknownUser       = errors.New("user does not exist")
	ErrBadPosition       = errors.New("player must be in position 1-4")
	ErrPositionTaken     = errors.New("more than one player in the same position")
	ErrScoreWithoutTime  = errors.New("every score must have a time")
	ErrOverMaxPoints     = errors.New("each team can have a max of 10 points")
	ErrUserOnBothTeams   = errors.New("each user can only be on a single team")
)

// Admission failures reported by CanAddScore.
var (
	ErrGameOver       = errors.New("game is already over")
	ErrTeamAtCap      = errors.New("team already has 10 points")
	ErrPlayerNotFound = errors.New("player not found")
)

var ruleViolations = []error{
	ErrTooManyTeams,
	ErrTooManyPlayers,
	ErrDuplicateTeamName,
	ErrUnknownUser,
	ErrBadPosition,
	ErrPositionTaken,
	ErrScoreWithoutTime,
	ErrOverMaxPoints,
	ErrUserOnBothTeams,
	ErrGameOver,
	ErrTeamAtCap,
}

// IsRuleViolation reports whether err is one of the match-rule
// failures, i.e. a client mistake rather than a server fault.
func IsRuleViolation(err error) bool {
	for _, violation := range ruleViolations {
		if errors.Is(err, violation) {
			return true
		}
	}

	return false
}

// Validate checks the aggregate against the match rules and returns the
// first violation encountered, or nil. The check order is fixed so a
// malformed game always reports the same single cause. users holds the
// IDs of every user known to exist; the caller collects them up front.
func (g *Game) Validate(users UserSet) error {
	if len(g.Teams) > 2 {
		return ErrTooManyTeams
	}

	for i, team := range g.Teams {
		if len(team.Players) > 4 {
			return ErrTooManyPlayers
		}

		for j, other := range g.Teams {
			if i != j && other.Name == team.Name {
				return ErrDuplicateTeamName
			}
		}

		for _, p := range team.Players {
			if !users.Contains(p.UserID) {
				return ErrUnknownUser
			}
		}

		// Every position must be in range before duplicates are even
		// considered, so a team that is wrong both ways reports the
		// range violation.
		counts := map[int]int{}
		for _, p := range team.Players {
			if p.Position < 1 || p.Position > 4 {
				return ErrBadPosition
			}
			counts[p.Position]++
		}
		for _, n := range counts {
			if n > 1 {
				return ErrPositionTaken
			}
		}
	}

	for _, s := range g.Scores() {
		if s.Time == nil {
			return ErrScoreWithoutTime
		}
	}

	for _, pts := range g.Points() {
		if pts > MaxPoints {
			return ErrOverMaxPoints
		}
	}

	if len(g.Teams) == 2 {
		seen := map[uint]bool{}
		for _, p := range g.Teams[0].Players {
			seen[p.UserID] = true
		}
		for _, p := range g.Teams[1].Players {
			if seen[p.UserID] {
				return ErrUserOnBothTeams
			}
		}
	}

	return nil
}

// Points derives each team's point total, index-aligned with g.Teams.
// A goal counts for the scorer's team unless it is an own goal, in
// which case it counts for the opposing team. Own goals in a game that
// does not have exactly two teams credit nobody.
func (g *Game) Points() []int {
	points := make([]int, len(g.Teams))

	for i, team := range g.Teams {
		for _, p := range team.Players {
			for _, s := range p.Scores {
				switch {
				case !s.OwnGoal:
					points[i]++
				case len(g.Teams) == 2:
					points[1-i]++
				}
			}
		}
	}

	return points
}

// CanAddScore decides whether a goal by the given player may be
// recorded. It rejects once the game has ended, once any team has
// reached the cap, and when the player is not part of this game, in
// that order. On success it returns the scoring player.
func (g *Game) CanAddScore(playerID uint) (*Player, error) {
	if g.End != nil {
		return nil, ErrGameOver
	}

	for _, pts := range g.Points() {
		if pts >= MaxPoints {
			return nil, ErrTeamAtCap
		}
	}

	player := g.FindPlayer(playerID)
	if player == nil {
		return nil, ErrPlayerNotFound
	}

	return player, nil
}

// IsOver reports whether the match has concluded: either an end time is
// recorded, or a full two-team game has a side at exactly MaxPoints.
func (g *Game) IsOver() bool {
	if g.End != nil {
		return true
	}

	if len(g.Teams) != 2 {
		return false
	}

	for _, pts := range g.Points() {
		if pts == MaxPoints {
			return true
		}
	}

	return false
}
