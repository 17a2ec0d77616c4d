package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/myflix/movie-api/internal/models"
)

// MemoryUserStore is an in-memory UserStore used for unit testing
// handlers and services without a running DynamoDB endpoint. It
// mirrors the engine semantics the DynamoDB store relies on:
// favorites behave as a set, and the whole record is returned from
// every mutation.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error
}

// NewMemoryUserStore instantiates an empty in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]*models.User)}
}

// WithError configures the store to return the provided error for
// subsequent calls.
func (m *MemoryUserStore) WithError(err error) *MemoryUserStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MemoryUserStore) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.UserID]; ok {
		return ErrConflict
	}

	m.users[user.UserID] = copyUser(user)
	return nil
}

func (m *MemoryUserStore) GetByID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(user), nil
}

func (m *MemoryUserStore) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, user := range m.users {
		if user.Username == username {
			return copyUser(user), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryUserStore) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	users := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, *copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (m *MemoryUserStore) Update(_ context.Context, userID string, update UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Birthdate != nil {
		user.Birthdate = *update.Birthdate
	}
	user.UpdatedAt = time.Now().UTC()

	return copyUser(user), nil
}

func (m *MemoryUserStore) Delete(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.users, userID)
	return copyUser(user), nil
}

func (m *MemoryUserStore) AddFavorite(_ context.Context, userID, movieID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	if !user.HasFavorite(movieID) {
		user.Favorites = append(user.Favorites, movieID)
	}
	user.UpdatedAt = time.Now().UTC()

	return copyUser(user), nil
}

func (m *MemoryUserStore) RemoveFavorite(_ context.Context, userID, movieID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}

	kept := user.Favorites[:0]
	for _, id := range user.Favorites {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	user.Favorites = kept
	user.UpdatedAt = time.Now().UTC()

	return copyUser(user), nil
}

// MemoryMovieStore is an in-memory MovieStore for tests.
type MemoryMovieStore struct {
	mu     sync.Mutex
	movies map[string]*models.Movie
	err    error
}

// NewMemoryMovieStore instantiates an empty in-memory movie store.
func NewMemoryMovieStore() *MemoryMovieStore {
	return &MemoryMovieStore{movies: make(map[string]*models.Movie)}
}

// Seed inserts a movie document.
func (m *MemoryMovieStore) Seed(movie models.Movie) *MemoryMovieStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movies[movie.MovieID] = &movie
	return m
}

// WithError configures the store to return the provided error for
// subsequent calls.
func (m *MemoryMovieStore) WithError(err error) *MemoryMovieStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

func (m *MemoryMovieStore) List(_ context.Context) ([]models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	movies := make([]models.Movie, 0, len(m.movies))
	for _, movie := range m.movies {
		movies = append(movies, *movie)
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].MovieID < movies[j].MovieID })
	return movies, nil
}

func (m *MemoryMovieStore) GetByID(_ context.Context, movieID string) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	movie, ok := m.movies[movieID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *movie
	return &copied, nil
}

func (m *MemoryMovieStore) GetGenreByName(_ context.Context, name string) (*models.Genre, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, movie := range m.movies {
		if movie.Genre.Name == name {
			genre := movie.Genre
			return &genre, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryMovieStore) GetDirectorByName(_ context.Context, name string) (*models.Director, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	for _, movie := range m.movies {
		if movie.Director.Name == name {
			director := movie.Director
			return &director, nil
		}
	}
	return nil, ErrNotFound
}

func copyUser(user *models.User) *models.User {
	copied := *user
	copied.Favorites = make([]string, len(user.Favorites))
	copy(copied.Favorites, user.Favorites)
	return &copied
}
