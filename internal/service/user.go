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
	ErrUserNameExists = repository.ErrUserNameExists
	ErrUserNotFound   = repository.ErrUserNotFound
	ErrUserInGames    = errors.New("can't delete user that is in games")
	ErrEmptyUserName  = errors.New("must include a name")
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
	Delete(ctx context.Context, id uint) error
	CountPlayers(ctx context.Context, userID uint) (int64, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo: repo,
	}
}

// UserUpdate carries a partial update; nil fields keep the stored
// value.
type UserUpdate struct {
	Name      *string
	FirstName *string
	LastName  *string
	Birthday  *time.Time
	Email     *string
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return users, nil
}

func (s *UserService) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if user.Name == "" {
		return domain.User{}, ErrEmptyUserName
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint, update UserUpdate) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Birthday != nil {
		user.Birthday = update.Birthday
	}
	if update.Email != nil {
		user.Email = *update.Email
	}

	if user.Name == "" {
		return domain.User{}, ErrEmptyUserName
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	return updated, nil
}

// DeleteUser removes a user unless any game still fields them as a
// player.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	count, err := s.repo.CountPlayers(ctx, id)
	if err != nil {
		return fmt.Errorf("s.repo.CountPlayers -> %w", err)
	}
	if count > 0 {
		return ErrUserInGames
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}
