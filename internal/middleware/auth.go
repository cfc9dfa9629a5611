package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pokedexlab/pokedex-be/internal/auth"
	"github.com/pokedexlab/pokedex-be/internal/http/respond"
	"github.com/pokedexlab/pokedex-be/internal/models"
	"github.com/pokedexlab/pokedex-be/internal/storage"
)

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

// RequireUser guards a handler with bearer-token authentication. Verification
// runs in two steps: the token signature and claims must parse to a user id,
// and the raw token must still be present in that user's token list. Tokens
// removed by logout or account deletion fail the second step even while their
// signature is still valid.
func RequireUser(store storage.UserStore, tokens *auth.TokenService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "please authenticate")
			return
		}

		subject, err := tokens.Verify(raw)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "please authenticate")
			return
		}
		id, err := primitive.ObjectIDFromHex(subject)
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "please authenticate")
			return
		}

		user, err := store.FindByID(r.Context(), id)
		if err != nil || !user.HasToken(raw) {
			respond.Error(w, http.StatusUnauthorized, "please authenticate")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, &user)
		ctx = context.WithValue(ctx, tokenKey, raw)
		next(w, r.WithContext(ctx))
	}
}

// UserFrom returns the authenticated user attached by RequireUser.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// TokenFrom returns the raw bearer token for the current request.
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	return token, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
