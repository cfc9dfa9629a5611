package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pokedexlab/pokedex-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidCredentials indicates the email/password pair did not match. The
// same error covers an unknown email and a wrong password so callers cannot
// tell the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidationError aggregates field-level failures from a save.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := e.Messages()
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Messages returns the human-readable messages, one per failed field.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.String())
	}
	return msgs
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// UserStore captures persistence operations needed by the handlers and the
// token service. Implementations must enforce email uniqueness.
type UserStore interface {
	// FindByID fetches a user by id; ErrNotFound when absent.
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	// FindByCredentials looks a user up by email and verifies the password
	// against the stored hash. Both failure modes return ErrInvalidCredentials.
	FindByCredentials(ctx context.Context, email, password string) (models.User, error)
	// Save validates and persists the user, inserting or replacing by id. A
	// plaintext password is hashed exactly once; an already-hashed value is
	// stored as-is. Returns *ValidationError for field-level failures,
	// including a duplicate email.
	Save(ctx context.Context, user *models.User) error
	// Delete removes the user document and with it every issued token.
	Delete(ctx context.Context, id primitive.ObjectID) error
}
