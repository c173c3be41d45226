package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kickerhub/foosball-api/internal/api/handler/v1/request"
	"github.com/kickerhub/foosball-api/internal/api/handler/v1/response"
	"github.com/kickerhub/foosball-api/internal/domain"
	"github.com/kickerhub/foosball-api/internal/service"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, id uint, update service.UserUpdate) (domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{
		svc: svc,
	}
}

// HandleListUsers godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      500  {object}  response.Err
// @Router       /users [get]
func (h *UserHandler) HandleListUsers(ctx *gin.Context) {
	users, err := h.svc.ListUsers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListUsers -> h.svc.ListUsers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// HandleCreateUser godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateUserRequest  true  "user to create"
// @Success      201      {object}  domain.User
// @Failure      400      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /users [post]
func (h *UserHandler) HandleCreateUser(ctx *gin.Context) {
	var req request.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user := domain.User{
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.Birthday != "" {
		birthday, err := time.Parse(request.DateFormat, req.Birthday)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("birthday must be in format %v", request.DateFormat)))
			return
		}
		user.Birthday = &birthday
	}

	created, err := h.svc.CreateUser(ctx.Request.Context(), user)
	if err != nil {
		if errors.Is(err, service.ErrUserNameExists) || errors.Is(err, service.ErrEmptyUserName) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		err = fmt.Errorf("v1.HandleCreateUser -> h.svc.CreateUser -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateUser godoc
// @Summary      Update a user
// @Description  Applies a partial update; absent fields keep their stored values.
// @Tags         users
// @Accept       json
// @Param        userID   path      int                        true  "user ID"
// @Param        request  body      request.UpdateUserRequest  true  "fields to update"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/{userID} [put]
func (h *UserHandler) HandleUpdateUser(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var req request.UpdateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	update := service.UserUpdate{
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(request.DateFormat, *req.Birthday)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("birthday must be in format %v", request.DateFormat)))
			return
		}
		update.Birthday = &birthday
	}

	if _, err := h.svc.UpdateUser(ctx.Request.Context(), id, update); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))
		case errors.Is(err, service.ErrUserNameExists), errors.Is(err, service.ErrEmptyUserName):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateUser -> h.svc.UpdateUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDeleteUser godoc
// @Summary      Delete a user
// @Description  Rejected while any game still fields the user as a player.
// @Tags         users
// @Param        userID  path  int  true  "user ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      405  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /users/{userID} [delete]
func (h *UserHandler) HandleDeleteUser(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "userID")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.DeleteUser(ctx.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrNotFound(service.ErrUserNotFound))
		case errors.Is(err, service.ErrUserInGames):
			response.RenderErr(ctx, response.ErrMethodNotAllowed(service.ErrUserInGames))
		default:
			err = fmt.Errorf("v1.HandleDeleteUser -> h.svc.DeleteUser -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
