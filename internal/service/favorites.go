package service

import (
	"context"
	stderrors "errors"

	"github.com/sirupsen/logrus"

	"github.com/myflix/movie-api/internal/metrics"
	"github.com/myflix/movie-api/internal/models"
	"github.com/myflix/movie-api/internal/store"
	"github.com/myflix/movie-api/pkg/errors"
)

// FavoritesService maintains the user-movie favorites relation. Both
// mutations check that the user and the movie exist before touching
// the set, then delegate to the store's atomic set update, which makes
// each operation idempotent: adding a present id or removing an
// absent one succeeds without changing the set.
//
// The check-then-mutate sequence is not transactional; a movie
// deleted between the check and the update can leave a stale
// reference. That window is an accepted weak-consistency boundary.
type FavoritesService struct {
	users  store.UserStore
	movies store.MovieStore
	logger *logrus.Logger
}

// NewFavoritesService creates a favorites service over the given stores.
func NewFavoritesService(users store.UserStore, movies store.MovieStore, logger *logrus.Logger) *FavoritesService {
	return &FavoritesService{
		users:  users,
		movies: movies,
		logger: logger,
	}
}

// Add inserts movieID into the user's favorites set and returns the
// updated user. Adding an already-present id is a success no-op.
func (s *FavoritesService) Add(ctx context.Context, userID, movieID string) (*models.User, error) {
	user, err := s.mutate(ctx, userID, movieID, s.users.AddFavorite)
	recordOutcome("add", err)
	return user, err
}

// Remove deletes movieID from the user's favorites set and returns
// the updated user. Removing an absent id is a success no-op.
func (s *FavoritesService) Remove(ctx context.Context, userID, movieID string) (*models.User, error) {
	user, err := s.mutate(ctx, userID, movieID, s.users.RemoveFavorite)
	recordOutcome("remove", err)
	return user, err
}

// Titles resolves the user's favorites to movie titles. A favorite
// whose movie no longer exists is skipped rather than failing the
// whole listing.
func (s *FavoritesService) Titles(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewAppError(errors.CodeNotFound, "User not found", nil)
		}
		return nil, errors.WrapError(err, "failed to load user")
	}

	titles := make([]string, 0, len(user.Favorites))
	for _, movieID := range user.Favorites {
		movie, err := s.movies.GetByID(ctx, movieID)
		if err != nil {
			if stderrors.Is(err, store.ErrNotFound) {
				s.logger.WithFields(logrus.Fields{
					"user_id":  userID,
					"movie_id": movieID,
				}).Warn("Favorite references a missing movie")
				continue
			}
			return nil, errors.WrapError(err, "failed to load movie")
		}
		titles = append(titles, movie.Title)
	}

	return titles, nil
}

type favoriteMutation func(ctx context.Context, userID, movieID string) (*models.User, error)

func (s *FavoritesService) mutate(ctx context.Context, userID, movieID string, apply favoriteMutation) (*models.User, error) {
	// Existence checks come first so the caller gets a 404 instead of
	// a silent set update against a missing record.
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewAppError(errors.CodeNotFound, "Movie not found", nil)
		}
		return nil, errors.WrapError(err, "failed to load movie")
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewAppError(errors.CodeNotFound, "User not found", nil)
		}
		return nil, errors.WrapError(err, "failed to load user")
	}

	user, err := apply(ctx, userID, movieID)
	if err != nil {
		// The record can vanish between the check and the update.
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewAppError(errors.CodeNotFound, "User not found", nil)
		}
		return nil, errors.WrapError(err, "failed to update favorites")
	}

	return user, nil
}

func recordOutcome(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.Code == errors.CodeNotFound {
			status = "not_found"
		}
	}
	metrics.RecordFavoritesMutation(operation, status)
}
