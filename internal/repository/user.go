package repository

import (
	"context"
	"fmt"

	"github.com/kickerhub/foosball-api/internal/domain"
	"github.com/kickerhub/foosball-api/internal/repository/dao"
)

var (
	ErrUserNameExists = dao.ErrUserNameExists
	ErrUserNotFound   = dao.ErrUserNotFound
)

type UserDAO interface {
	Insert(ctx context.Context, user dao.User) (dao.User, error)
	FindByID(ctx context.Context, id uint) (dao.User, error)
	FindAll(ctx context.Context) ([]dao.User, error)
	Update(ctx context.Context, user dao.User) (dao.User, error)
	Delete(ctx context.Context, id uint) error
	CountPlayers(ctx context.Context, userID uint) (int64, error)
	FindExisting(ctx context.Context, ids []uint) ([]uint, error)
	FindByIDs(ctx context.Context, ids []uint) ([]dao.User, error)
}

type UserRepository struct {
	dao UserDAO
}

func NewUserRepository(dao UserDAO) *UserRepository {
	return &UserRepository{
		dao: dao,
	}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	created, err := r.dao.Insert(ctx, r.domainToDAO(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (domain.User, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	found, err := r.dao.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, r.daoToDomain(u))
	}

	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	updated, err := r.dao.Update(ctx, r.domainToDAO(user))
	if err != nil {
		return domain.User{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *UserRepository) CountPlayers(ctx context.Context, userID uint) (int64, error) {
	count, err := r.dao.CountPlayers(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountPlayers -> %w", err)
	}

	return count, nil
}

// FindExistingIDs builds the set of users, out of the given IDs, that
// actually exist. The game service feeds it to the aggregate validator.
func (r *UserRepository) FindExistingIDs(ctx context.Context, ids []uint) (domain.UserSet, error) {
	found, err := r.dao.FindExisting(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindExisting -> %w", err)
	}

	return domain.NewUserSet(found...), nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.User, error) {
	found, err := r.dao.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByIDs -> %w", err)
	}

	users := make([]domain.User, 0, len(found))
	for _, u := range found {
		users = append(users, r.daoToDomain(u))
	}

	return users, nil
}

func (r *UserRepository) daoToDomain(u dao.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Name:      u.Name,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Birthday:  u.Birthday,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (r *UserRepository) domainToDAO(u domain.User) dao.User {
	return dao.User{
		ID:        u.ID,
		Name:      u.Name,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Birthday:  u.Birthday,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
