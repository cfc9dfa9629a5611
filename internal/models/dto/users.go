package dto

import "github.com/pokedexlab/pokedex-be/internal/models"

type CreateUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and account creation.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type RemoveFavoriteRequest struct {
	Name string `json:"name"`
}
