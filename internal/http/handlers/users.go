package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/pokedexlab/pokedex-be/internal/auth"
	"github.com/pokedexlab/pokedex-be/internal/http/respond"
	"github.com/pokedexlab/pokedex-be/internal/middleware"
	"github.com/pokedexlab/pokedex-be/internal/models"
	"github.com/pokedexlab/pokedex-be/internal/models/dto"
	"github.com/pokedexlab/pokedex-be/internal/storage"
	"github.com/pokedexlab/pokedex-be/internal/validate"
)

const genericLoginFailure = "unable to authenticate with the provided credentials"

// UserHandler owns the /users endpoints: account lifecycle, session tokens,
// and the favorites list.
type UserHandler struct {
	store  storage.UserStore
	tokens *auth.TokenService
}

// NewUserHandler constructs the handler.
func NewUserHandler(store storage.UserStore, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{store: store, tokens: tokens}
}

// Register attaches the user routes to the mux. protect wraps a route with the
// auth guard; limit wraps the unauthenticated routes with the rate limiter.
func (h *UserHandler) Register(mux *http.ServeMux, protect, limit func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/users/me", protect(h.handleMe))
	mux.HandleFunc("/users/logout", protect(h.handleLogout))
	mux.HandleFunc("/users/favorite", protect(h.handleFavorite))
	mux.HandleFunc("/users/login", limit(h.handleLogin))
	mux.HandleFunc("/users/create", limit(h.handleCreate))
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSelf(w, r)
	case http.MethodDelete:
		h.deleteSelf(w, r)
	case http.MethodPatch:
		h.patchSelf(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// getSelf re-reads the record; the id came from a verified token, so a lookup
// failure here is an internal error, not a 404.
func (h *UserHandler) getSelf(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	fresh, err := h.store.FindByID(r.Context(), user.ID)
	if err != nil {
		log.Printf("get self: %v", err)
		respond.Status(w, http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, withLists(fresh))
}

func (h *UserHandler) deleteSelf(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	if err := h.store.Delete(r.Context(), user.ID); err != nil {
		log.Printf("delete self: %v", err)
		respond.Status(w, http.StatusInternalServerError)
		return
	}
	respond.Text(w, http.StatusOK, "user deleted successfully")
}

func (h *UserHandler) patchSelf(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	// Key check runs before any field is touched so a body with one bad key
	// mutates nothing.
	for field := range updates {
		if !allowedUpdate(field) {
			respond.Error(w, http.StatusBadRequest, "invalid updates")
			return
		}
	}

	user.ApplyUpdates(updates)
	if err := h.store.Save(r.Context(), user); err != nil {
		log.Printf("patch self: %v", err)
		respond.Status(w, http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, withLists(*user))
}

func (h *UserHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	user, _ := middleware.UserFrom(r.Context())
	token, _ := middleware.TokenFrom(r.Context())

	if err := h.tokens.Revoke(r.Context(), user, token); err != nil {
		log.Printf("logout: %v", err)
		respond.Status(w, http.StatusInternalServerError)
		return
	}
	respond.JSON(w, http.StatusOK, dto.MessageResponse{Message: "logged out successfully"})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Messages(w, http.StatusBadRequest, []string{genericLoginFailure})
		return
	}

	user, err := h.store.FindByCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		// One message for unknown email and wrong password alike; the
		// response must not reveal whether the account exists.
		respond.Messages(w, http.StatusBadRequest, []string{genericLoginFailure})
		return
	}

	token, err := h.tokens.Issue(r.Context(), &user)
	if err != nil {
		log.Printf("login: issue token: %v", err)
		respond.Messages(w, http.StatusBadRequest, []string{genericLoginFailure})
		return
	}
	respond.JSON(w, http.StatusOK, dto.AuthResponse{User: withLists(user), Token: token})
}

func (h *UserHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Messages(w, http.StatusBadRequest, []string{"invalid JSON payload"})
		return
	}

	// Format and strength checks run before any record is constructed, so
	// this path never leans on the store's constraints.
	if msgs := validate.Credentials(req.Email, req.Password); len(msgs) > 0 {
		respond.Messages(w, http.StatusBadRequest, msgs)
		return
	}

	user := models.NewUser(req.Username, req.Email, req.FirstName, req.LastName, req.Password)
	token, err := h.tokens.Issue(r.Context(), user)
	if err != nil {
		if verr, ok := storage.AsValidation(err); ok {
			respond.Messages(w, http.StatusBadRequest, verr.Messages())
			return
		}
		log.Printf("create account: %v", err)
		respond.Messages(w, http.StatusBadRequest, []string{"unable to create account"})
		return
	}
	respond.JSON(w, http.StatusCreated, dto.AuthResponse{User: withLists(*user), Token: token})
}

func (h *UserHandler) handleFavorite(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getFavorites(w, r)
	case http.MethodPost:
		h.addFavorite(w, r)
	case http.MethodDelete:
		h.removeFavorite(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *UserHandler) getFavorites(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	respond.JSON(w, http.StatusOK, favoritesOf(*user))
}

func (h *UserHandler) addFavorite(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var fav models.Favorite
	if err := json.NewDecoder(r.Body).Decode(&fav); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user.AddFavorite(fav)
	if err := h.store.Save(r.Context(), user); err != nil {
		respond.Error(w, http.StatusBadRequest, "unable to save favorite")
		return
	}
	respond.JSON(w, http.StatusOK, favoritesOf(*user))
}

func (h *UserHandler) removeFavorite(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())

	var req dto.RemoveFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	// A name with no match is a no-op; the save still runs.
	user.RemoveFavorite(req.Name)
	if err := h.store.Save(r.Context(), user); err != nil {
		respond.Error(w, http.StatusBadRequest, "unable to remove favorite")
		return
	}
	respond.JSON(w, http.StatusOK, withLists(*user))
}

func allowedUpdate(field string) bool {
	for _, allowed := range models.AllowedUpdateFields {
		if field == allowed {
			return true
		}
	}
	return false
}

// withLists guarantees the favorites list marshals as [] rather than null.
func withLists(user models.User) models.User {
	if user.FavoritePokemons == nil {
		user.FavoritePokemons = []models.Favorite{}
	}
	return user
}

func favoritesOf(user models.User) []models.Favorite {
	if user.FavoritePokemons == nil {
		return []models.Favorite{}
	}
	return user.FavoritePokemons
}
