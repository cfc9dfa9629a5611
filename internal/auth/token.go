package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pokedexlab/pokedex-be/internal/models"
	"github.com/pokedexlab/pokedex-be/internal/storage"
)

// ErrInvalidToken covers malformed, tampered, and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenService mints and revokes bearer tokens bound to a user. Every issued
// token is appended to the user's token list so logout and account deletion
// can invalidate it before expiry.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	store  storage.UserStore
}

// NewTokenService creates a service with the provided secret, issuer, and
// token lifetime, persisting token lists through store.
func NewTokenService(secret, issuer string, ttl time.Duration, store storage.UserStore) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		store:  store,
	}
}

// Issue signs a new token for the user, appends it to the user's token list,
// and persists the user.
func (t *TokenService) Issue(ctx context.Context, user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": t.issuer,
		"sub": user.ID.Hex(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	user.AddToken(token)
	if err := t.store.Save(ctx, user); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	return token, nil
}

// Revoke removes exactly the matching token value from the user's list and
// persists the user. Revoking a token that is already gone still saves.
func (t *TokenService) Revoke(ctx context.Context, user *models.User, token string) error {
	user.RemoveToken(token)
	if err := t.store.Save(ctx, user); err != nil {
		return fmt.Errorf("persist token removal: %w", err)
	}
	return nil
}

// Verify parses and validates the token signature and registered claims,
// returning the bound user id. Whether the token is still active for that
// user is the guard's second step, not checked here.
func (t *TokenService) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
