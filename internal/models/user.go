package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AllowedUpdateFields are the profile fields a user may change through PATCH.
var AllowedUpdateFields = []string{"username", "email", "first_name", "last_name"}

// User is the account aggregate stored as a single document. Password hash and
// issued tokens never serialize to JSON.
type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username         string             `bson:"username" json:"username"`
	Email            string             `bson:"email" json:"email"`
	FirstName        string             `bson:"first_name" json:"first_name"`
	LastName         string             `bson:"last_name" json:"last_name"`
	PasswordHash     string             `bson:"password_hash" json:"-"`
	Tokens           []string           `bson:"tokens" json:"-"`
	FavoritePokemons []Favorite         `bson:"favorite_pokemons" json:"favorite_pokemons"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// Favorite is one entry in a user's favorites list. Only the name is required.
type Favorite struct {
	Name  string   `bson:"name" json:"name"`
	Image string   `bson:"image,omitempty" json:"image,omitempty"`
	Types []string `bson:"types,omitempty" json:"types,omitempty"`
}

// NewUser builds an unsaved user; the password is still plaintext here and is
// hashed by the store on first save.
func NewUser(username, email, firstName, lastName, password string) *User {
	now := time.Now().UTC()
	return &User{
		ID:               primitive.NewObjectID(),
		Username:         username,
		Email:            email,
		FirstName:        firstName,
		LastName:         lastName,
		PasswordHash:     password,
		Tokens:           []string{},
		FavoritePokemons: []Favorite{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// AddToken appends a freshly issued session token.
func (u *User) AddToken(token string) {
	u.Tokens = append(u.Tokens, token)
	u.UpdatedAt = time.Now().UTC()
}

// RemoveToken removes the first occurrence of token. Removing a token that is
// not present is not an error.
func (u *User) RemoveToken(token string) {
	for i, t := range u.Tokens {
		if t == token {
			u.Tokens = append(u.Tokens[:i], u.Tokens[i+1:]...)
			break
		}
	}
	u.UpdatedAt = time.Now().UTC()
}

// HasToken reports whether token is still active for this user.
func (u *User) HasToken(token string) bool {
	for _, t := range u.Tokens {
		if t == token {
			return true
		}
	}
	return false
}

// AddFavorite appends an entry to the favorites list. Duplicate names are the
// caller's concern; the list itself is ordered and unconstrained.
func (u *User) AddFavorite(f Favorite) {
	u.FavoritePokemons = append(u.FavoritePokemons, f)
	u.UpdatedAt = time.Now().UTC()
}

// RemoveFavorite removes the first favorite whose name exactly equals name.
// A miss leaves the list untouched and is not an error.
func (u *User) RemoveFavorite(name string) {
	for i, f := range u.FavoritePokemons {
		if f.Name == name {
			u.FavoritePokemons = append(u.FavoritePokemons[:i], u.FavoritePokemons[i+1:]...)
			break
		}
	}
	u.UpdatedAt = time.Now().UTC()
}

// ApplyUpdates sets the given whitelisted fields. Callers must have already
// checked the keys against AllowedUpdateFields.
func (u *User) ApplyUpdates(updates map[string]string) {
	for field, value := range updates {
		switch field {
		case "username":
			u.Username = value
		case "email":
			u.Email = value
		case "first_name":
			u.FirstName = value
		case "last_name":
			u.LastName = value
		}
	}
	u.UpdatedAt = time.Now().UTC()
}
