package storage

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/crypto/bcrypt"

	"github.com/pokedexlab/pokedex-be/internal/models"
)

// ValidateUser applies the save-time rules shared by every store
// implementation: required fields, email format, and non-empty favorite names.
// Uniqueness is left to the store's index.
func ValidateUser(user *models.User) *ValidationError {
	var fields []FieldError

	if err := validation.Validate(user.Username, validation.Required); err != nil {
		fields = append(fields, FieldError{Field: "username", Message: err.Error()})
	}
	if err := validation.Validate(user.Email, validation.Required, is.Email); err != nil {
		fields = append(fields, FieldError{Field: "email", Message: err.Error()})
	}
	if err := validation.Validate(user.PasswordHash, validation.Required); err != nil {
		fields = append(fields, FieldError{Field: "password", Message: err.Error()})
	}
	for _, fav := range user.FavoritePokemons {
		if err := validation.Validate(fav.Name, validation.Required); err != nil {
			fields = append(fields, FieldError{Field: "favorite name", Message: err.Error()})
			break
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// EnsurePasswordHash hashes a plaintext password with bcrypt. Values that are
// already bcrypt hashes pass through untouched so a profile update never
// re-hashes the stored hash.
func EnsurePasswordHash(password string) (string, error) {
	if _, err := bcrypt.Cost([]byte(password)); err == nil {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
