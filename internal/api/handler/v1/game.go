package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kickerhub/foosball-api/internal/api/handler/v1/request"
	"github.com/kickerhub/foosball-api/internal/api/handler/v1/response"
	"github.com/kickerhub/foosball-api/internal/domain"
	"github.com/kickerhub/foosball-api/internal/service"
)

type GameService interface {
	ListGames(ctx context.Context, filter service.GameFilter) ([]domain.Game, error)
	GetGame(ctx context.Context, id uint) (domain.Game, error)
	CreateGame(ctx context.Context, draft service.GameDraft) (domain.Game, error)
	UpdateGame(ctx context.Context, id uint, draft service.GameDraft) (domain.Game, error)
	DeleteGame(ctx context.Context, id uint) error
	AddScore(ctx context.Context, gameID, playerID uint, at *time.Time, ownGoal bool) (domain.Score, error)
	GetPlayers(ctx context.Context, gameID uint) ([]domain.Player, error)
	GetScores(ctx context.Context, gameID uint) ([]domain.Score, error)
	GetTeams(ctx context.Context, gameID uint) ([]service.TeamRoster, error)
}

type GameHandler struct {
	svc GameService
}

func NewGameHandler(svc GameService) *GameHandler {
	return &GameHandler{
		svc: svc,
	}
}

// HandleListGames godoc
// @Summary      List games
// @Description  Optional filters: user_id, started_after (inclusive), started_before (exclusive).
// @Tags         games
// @Produce      json
// @Param        user_id         query  int     false  "only games fielding this user"
// @Param        started_after   query  string  false  "RFC 3339 lower bound on start"
// @Param        started_before  query  string  false  "RFC 3339 upper bound on start"
// @Success      200  {array}   domain.Game
// @Failure      400  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /games [get]
func (h *GameHandler) HandleListGames(ctx *gin.Context) {
	var filter service.GameFilter

	if raw, ok := ctx.GetQuery("user_id"); ok {
		uid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("user_id must be an integer")))
			return
		}
		filter.UserID = uint(uid)
	}

	if raw, ok := ctx.GetQuery("started_after"); ok {
		after, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("started_after must be a RFC 3339 timestamp")))
			return
		}
		filter.StartedAfter = &after
	}

	if raw, ok := ctx.GetQuery("started_before"); ok {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("started_before must be a RFC 3339 timestamp")))
			return
		}
		filter.StartedBefore = &before
	}

	games, err := h.svc.ListGames(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListGames -> h.svc.ListGames -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, games)
}

// HandleGetGame godoc
// @Summary      Get a game with its teams, players and scores
// @Tags         games
// @Produce      json
// @Param        gameID  path  int  true  "game ID"
// @Success      200  {object}  domain.Game
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /games/{gameID} [get]
func (h *GameHandler) HandleGetGame(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	game, err := h.svc.GetGame(ctx.Request.Context(), id)
	if err != nil {
		h.renderGameErr(ctx, "HandleGetGame", err)
		return
	}

	ctx.JSON(http.StatusOK, game)
}

// HandleCreateGame godoc
// @Summary      Create a game
// @Description  Accepts a full aggregate: teams, players and scores in one request.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        request  body      request.GameRequest  true  "game to create"
// @Success      201      {object}  domain.Game
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /games [post]
func (h *GameHandler) HandleCreateGame(ctx *gin.Context) {
	var req request.GameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	draft, err := gameDraftFromRequest(&req)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateGame(ctx.Request.Context(), draft)
	if err != nil {
		h.renderGameErr(ctx, "HandleCreateGame", err)
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateGame godoc
// @Summary      Update a game
// @Description  Merges the payload into the stored aggregate: elements with an id must exist in this game, elements without one are appended. The merged game is validated as a whole.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        gameID   path      int                  true  "game ID"
// @Param        request  body      request.GameRequest  true  "changes to apply"
// @Success      200      {object}  domain.Game
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /games/{gameID} [put]
func (h *GameHandler) HandleUpdateGame(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.GameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	draft, err := gameDraftFromRequest(&req)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateGame(ctx.Request.Context(), id, draft)
	if err != nil {
		h.renderGameErr(ctx, "HandleUpdateGame", err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteGame godoc
// @Summary      Delete a game and everything it owns
// @Tags         games
// @Param        gameID  path  int  true  "game ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /games/{gameID} [delete]
func (h *GameHandler) HandleDeleteGame(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.DeleteGame(ctx.Request.Context(), id); err != nil {
		h.renderGameErr(ctx, "HandleDeleteGame", err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetPlayers godoc
// @Summary      List a game's players
// @Tags         games
// @Produce      json
// @Param        gameID  path  int  true  "game ID"
// @Success      200  {array}   domain.Player
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /games/{gameID}/players [get]
func (h *GameHandler) HandleGetPlayers(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	players, err := h.svc.GetPlayers(ctx.Request.Context(), id)
	if err != nil {
		h.renderGameErr(ctx, "HandleGetPlayers", err)
		return
	}

	ctx.JSON(http.StatusOK, players)
}

// HandleGetScores godoc
// @Summary      List a game's scores
// @Tags         games
// @Produce      json
// @Param        gameID  path  int  true  "game ID"
// @Success      200  {array}   domain.Score
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /games/{gameID}/scores [get]
func (h *GameHandler) HandleGetScores(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	scores, err := h.svc.GetScores(ctx.Request.Context(), id)
	if err != nil {
		h.renderGameErr(ctx, "HandleGetScores", err)
		return
	}

	ctx.JSON(http.StatusOK, scores)
}

// HandleGetTeams godoc
// @Summary      List a game's teams with their lineups
// @Tags         games
// @Produce      json
// @Param        gameID  path  int  true  "game ID"
// @Success      200  {array}   service.TeamRoster
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /games/{gameID}/teams [get]
func (h *GameHandler) HandleGetTeams(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	teams, err := h.svc.GetTeams(ctx.Request.Context(), id)
	if err != nil {
		h.renderGameErr(ctx, "HandleGetTeams", err)
		return
	}

	ctx.JSON(http.StatusOK, teams)
}

// HandleSubmitScore godoc
// @Summary      Record a goal
// @Description  Rejected once the game has ended or a team holds 10 points. The score time defaults to now, own_goal to false.
// @Tags         games
// @Accept       json
// @Produce      json
// @Param        gameID   path      int                         true  "game ID"
// @Param        request  body      request.SubmitScoreRequest  true  "goal to record"
// @Success      201      {object}  domain.Score
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /games/{gameID}/score [post]
func (h *GameHandler) HandleSubmitScore(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "gameID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.SubmitScoreRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("must pass in score object")))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var at *time.Time
	if req.Time != "" {
		parsed, err := time.Parse(time.RFC3339, req.Time)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("time must be a RFC 3339 timestamp")))
			return
		}
		at = &parsed
	}

	score, err := h.svc.AddScore(ctx.Request.Context(), id, req.PlayerID, at, req.OwnGoal)
	if err != nil {
		h.renderGameErr(ctx, "HandleSubmitScore", err)
		return
	}

	ctx.JSON(http.StatusCreated, score)
}

// renderGameErr maps game service failures onto transport codes: rule
// violations are client mistakes (400), dangling references are 404,
// anything else is a server fault.
func (h *GameHandler) renderGameErr(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		response.RenderErr(ctx, response.ErrNotFound(service.ErrGameNotFound))
	case errors.Is(err, service.ErrTeamNotInGame),
		errors.Is(err, service.ErrPlayerNotInGame),
		errors.Is(err, service.ErrScoreNotInGame):
		response.RenderErr(ctx, response.ErrNotFound(err))
	case errors.Is(err, domain.ErrPlayerNotFound):
		response.RenderErr(ctx, response.ErrNotFound(domain.ErrPlayerNotFound))
	case domain.IsRuleViolation(err):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	default:
		err = fmt.Errorf("v1.%v -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

func gameDraftFromRequest(req *request.GameRequest) (service.GameDraft, error) {
	var draft service.GameDraft

	if req.Start != "" {
		start, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			return service.GameDraft{}, errors.New("start must be a RFC 3339 timestamp")
		}
		draft.Start = &start
	}
	if req.End != "" {
		end, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			return service.GameDraft{}, errors.New("end must be a RFC 3339 timestamp")
		}
		draft.End = &end
	}

	for _, team := range req.Teams {
		td := service.TeamDraft{
			ID:   team.ID,
			Name: team.Name,
		}
		for _, player := range team.Players {
			pd := service.PlayerDraft{
				ID:       player.ID,
				Position: player.Position,
			}
			if player.User != nil {
				pd.UserID = player.User.ID
			}
			for _, score := range player.Scores {
				sd := service.ScoreDraft{
					ID:      score.ID,
					OwnGoal: score.OwnGoal,
				}
				if score.Time != "" {
					at, err := time.Parse(time.RFC3339, score.Time)
					if err != nil {
						return service.GameDraft{}, errors.New("score times must be RFC 3339 timestamps")
					}
					sd.Time = &at
				}
				pd.Scores = append(pd.Scores, sd)
			}
			td.Players = append(td.Players, pd)
		}
		draft.Teams = append(draft.Teams, td)
	}

	return draft, nil
}
