package dao

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNameExists = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user does not exist")
)

type User struct {
	ID uint `gorm:"primaryKey"`

	Name      string `gorm:"unique;not null"`
	FirstName string
	LastName  string
	Birthday  *time.Time `gorm:"type:date"`
	Email     string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{
		db: db,
	}
}

func (d *UserDAO) Insert(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Create(&user)
	if result.Error != nil {
		if isUserNameViolation(result.Error) {
			return User{}, ErrUserNameExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id uint) (User, error) {
	var user User

	result := d.db.WithContext(ctx).First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrUserNotFound
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) FindAll(ctx context.Context) ([]User, error) {
	var users []User

	result := d.db.WithContext(ctx).Order("id").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func (d *UserDAO) Update(ctx context.Context, user User) (User, error) {
	result := d.db.WithContext(ctx).Save(&user)
	if result.Error != nil {
		if isUserNameViolation(result.Error) {
			return User{}, ErrUserNameExists
		}

		return User{}, result.Error
	}

	return user, nil
}

func (d *UserDAO) Delete(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountPlayers reports how many player rows reference the user across
// all games. A user with a nonzero count may not be deleted.
func (d *UserDAO) CountPlayers(ctx context.Context, userID uint) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Player{}).Where("user_id = ?", userID).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// FindExisting filters the given IDs down to those present in the users
// table.
func (d *UserDAO) FindExisting(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	result := d.db.WithContext(ctx).Model(&User{}).Where("id IN ?", ids).Pluck("id", &found)
	if result.Error != nil {
		return nil, result.Error
	}

	return found, nil
}

// FindByIDs loads the users with the given IDs; missing IDs are simply
// absent from the result.
func (d *UserDAO) FindByIDs(ctx context.Context, ids []uint) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []User
	result := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

func isUserNameViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		strings.Contains(pgErr.Message, `unique constraint "uni_users_name"`)
}
