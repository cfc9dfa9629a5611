package memory

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/pokedexlab/pokedex-be/internal/models"
	"github.com/pokedexlab/pokedex-be/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

// Store is a map-backed UserStore with the same save rules as the Mongo
// store. It backs the handler and middleware tests and local development
// without a database.
type Store struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User

	// FailSaves forces every Save to report a generic failure; tests use it
	// to drive the 500 paths.
	FailSaves bool
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{users: make(map[primitive.ObjectID]models.User)}
}

// FindByID fetches a copy of the stored user.
func (s *Store) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return cloneUser(user), nil
}

// FindByCredentials matches on email then verifies the bcrypt hash.
func (s *Store) FindByCredentials(ctx context.Context, email, password string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
				return models.User{}, storage.ErrInvalidCredentials
			}
			return cloneUser(user), nil
		}
	}
	return models.User{}, storage.ErrInvalidCredentials
}

// Save validates, hashes a plaintext password once, and upserts by id.
func (s *Store) Save(ctx context.Context, user *models.User) error {
	if s.FailSaves {
		return errSaveFailed
	}
	if verr := storage.ValidateUser(user); verr != nil {
		return verr
	}
	hash, err := storage.EnsurePasswordHash(user.PasswordHash)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.users {
		if id != user.ID && existing.Email == user.Email {
			return &storage.ValidationError{Fields: []storage.FieldError{
				{Field: "email", Message: "is already taken"},
			}}
		}
	}
	s.users[user.ID] = cloneUser(*user)
	return nil
}

// Delete removes the user.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

var errSaveFailed = errors.New("save failed")

func cloneUser(u models.User) models.User {
	if u.Tokens != nil {
		u.Tokens = append(make([]string, 0, len(u.Tokens)), u.Tokens...)
	}
	if u.FavoritePokemons != nil {
		u.FavoritePokemons = append(make([]models.Favorite, 0, len(u.FavoritePokemons)), u.FavoritePokemons...)
	}
	return u
}
