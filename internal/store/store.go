package store

import (
	"context"
	"errors"

	"github.com/myflix/movie-api/internal/models"
)

// Sentinel errors returned by store implementations.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// UserUpdate carries a partial profile update. Nil fields are left
// untouched; PasswordHash must already be hashed by the caller.
type UserUpdate struct {
	Name         *string
	Username     *string
	PasswordHash *string
	Email        *string
	Birthdate    *string
}

// Empty reports whether the update would change nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Username == nil && u.PasswordHash == nil && u.Email == nil && u.Birthdate == nil
}

// UserStore is the persistence contract for user records. AddFavorite
// and RemoveFavorite are atomic set mutations: duplicate adds and
// absent removes succeed without changing the stored set, and both
// return the resulting record so callers can observe the effect
// without a second read.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, userID string, update UserUpdate) (*models.User, error)
	Delete(ctx context.Context, userID string) (*models.User, error)
	AddFavorite(ctx context.Context, userID, movieID string) (*models.User, error)
	RemoveFavorite(ctx context.Context, userID, movieID string) (*models.User, error)
}

// MovieStore is the read-only persistence contract for the catalog.
type MovieStore interface {
	List(ctx context.Context) ([]models.Movie, error)
	GetByID(ctx context.Context, movieID string) (*models.Movie, error)
	GetGenreByName(ctx context.Context, name string) (*models.Genre, error)
	GetDirectorByName(ctx context.Context, name string) (*models.Director, error)
}
