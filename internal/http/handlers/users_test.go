package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedexlab/pokedex-be/internal/auth"
	"github.com/pokedexlab/pokedex-be/internal/middleware"
	"github.com/pokedexlab/pokedex-be/internal/models"
	"github.com/pokedexlab/pokedex-be/internal/models/dto"
	"github.com/pokedexlab/pokedex-be/internal/storage/memory"
)

type fixture struct {
	ts    *httptest.Server
	store *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenService("test-secret", "pokedex-test", time.Hour, store)

	protect := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.RequireUser(store, tokens, next)
	}
	passthrough := func(next http.HandlerFunc) http.HandlerFunc { return next }

	mux := http.NewServeMux()
	NewUserHandler(store, tokens).Register(mux, protect, passthrough)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return &fixture{ts: ts, store: store}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, raw
}

func (f *fixture) createAccount(t *testing.T, email, password string) dto.AuthResponse {
	t.Helper()
	resp, raw := f.do(t, http.MethodPost, "/users/create", "", map[string]string{
		"username": "ash",
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestCreateAccount(t *testing.T) {
	f := newFixture(t)

	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")
	assert.Equal(t, "ash@example.com", created.User.Email)
	assert.NotEmpty(t, created.Token)

	// the initial token authenticates immediately
	resp, _ := f.do(t, http.MethodGet, "/users/me", created.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAccountInvalidEmail(t *testing.T) {
	f := newFixture(t)

	resp, raw := f.do(t, http.MethodPost, "/users/create", "", map[string]string{
		"username": "ash",
		"email":    "not-an-email",
		"password": "Str0ng!pass",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var msgs []string
	require.NoError(t, json.Unmarshal(raw, &msgs))
	assert.NotEmpty(t, msgs)

	// validation failed before construction: logging in must not find a record
	resp, _ = f.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "not-an-email", "password": "Str0ng!pass",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateAccountDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, raw := f.do(t, http.MethodPost, "/users/create", "", map[string]string{
		"username": "gary",
		"email":    "ash@example.com",
		"password": "An0ther!pass",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var msgs []string
	require.NoError(t, json.Unmarshal(raw, &msgs))
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "email")
}

func TestLoginRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, raw := f.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "ash@example.com", "password": "Str0ng!pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)

	// password and tokens never serialize
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "tokens")

	resp, _ = f.do(t, http.MethodGet, "/users/me", out.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoginFailureDoesNotEnumerate(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "ash@example.com", "Str0ng!pass")

	respWrongPass, rawWrongPass := f.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "ash@example.com", "password": "wrong-pass1",
	})
	respUnknown, rawUnknown := f.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "nobody@example.com", "password": "wrong-pass1",
	})

	assert.Equal(t, http.StatusBadRequest, respWrongPass.StatusCode)
	assert.Equal(t, http.StatusBadRequest, respUnknown.StatusCode)
	assert.Equal(t, string(rawWrongPass), string(rawUnknown))

	var msgs []string
	require.NoError(t, json.Unmarshal(rawWrongPass, &msgs))
	assert.NotEmpty(t, msgs)
}

func TestGetSelfOmitsSecrets(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, raw := f.do(t, http.MethodGet, "/users/me", created.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "ash@example.com", body["email"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "tokens")
}

func TestPatchSelfAppliesWhitelistedFields(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, raw := f.do(t, http.MethodPatch, "/users/me", created.Token, map[string]string{
		"first_name": "Ash",
		"last_name":  "Ketchum",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.User
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "Ash", updated.FirstName)
	assert.Equal(t, "Ketchum", updated.LastName)
	assert.Equal(t, "ash@example.com", updated.Email)
}

func TestPatchSelfRejectsDisallowedKeysBeforeApplying(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, raw := f.do(t, http.MethodPatch, "/users/me", created.Token, map[string]string{
		"username": "red",
		"role":     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"invalid updates"}`, string(raw))

	// nothing was applied, including the allowed key in the same body
	stored, err := f.store.FindByID(context.Background(), created.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "ash", stored.Username)
}

func TestPatchSelfSaveFailure(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	f.store.FailSaves = true
	resp, raw := f.do(t, http.MethodPatch, "/users/me", created.Token, map[string]string{
		"username": "red",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, raw)
}

func TestLogoutRemovesOnlyCurrentToken(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	_, raw := f.do(t, http.MethodPost, "/users/login", "", map[string]string{
		"email": "ash@example.com", "password": "Str0ng!pass",
	})
	var second dto.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &second))

	resp, _ := f.do(t, http.MethodPost, "/users/logout", created.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// the logged-out token is stale, the other session survives
	resp, _ = f.do(t, http.MethodGet, "/users/me", created.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/users/me", second.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// a second logout with the stale token fails at the guard
	resp, _ = f.do(t, http.MethodPost, "/users/logout", created.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeleteSelfInvalidatesTokens(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, raw := f.do(t, http.MethodDelete, "/users/me", created.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user deleted successfully", string(raw))

	resp, _ = f.do(t, http.MethodGet, "/users/me", created.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFavoritesRoundTrip(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	// empty list serializes as [], not null
	resp, raw := f.do(t, http.MethodGet, "/users/favorite", created.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(raw))

	resp, raw = f.do(t, http.MethodPost, "/users/favorite", created.Token, models.Favorite{
		Name: "pikachu", Types: []string{"electric"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var favs []models.Favorite
	require.NoError(t, json.Unmarshal(raw, &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, "pikachu", favs[0].Name)

	resp, raw = f.do(t, http.MethodDelete, "/users/favorite", created.Token, map[string]string{
		"name": "pikachu",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// removal returns the full user record
	var user models.User
	require.NoError(t, json.Unmarshal(raw, &user))
	assert.Equal(t, "ash@example.com", user.Email)
	assert.Empty(t, user.FavoritePokemons)
}

func TestRemoveFavoriteMissingNameIsNoop(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	f.do(t, http.MethodPost, "/users/favorite", created.Token, models.Favorite{Name: "eevee"})

	resp, _ := f.do(t, http.MethodDelete, "/users/favorite", created.Token, map[string]string{
		"name": "mewtwo",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, raw := f.do(t, http.MethodGet, "/users/favorite", created.Token, nil)
	var favs []models.Favorite
	require.NoError(t, json.Unmarshal(raw, &favs))
	require.Len(t, favs, 1)
	assert.Equal(t, "eevee", favs[0].Name)
}

func TestAddFavoriteWithoutNameFails(t *testing.T) {
	f := newFixture(t)
	created := f.createAccount(t, "ash@example.com", "Str0ng!pass")

	resp, _ := f.do(t, http.MethodPost, "/users/favorite", created.Token, map[string]string{
		"image": "pikachu.png",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// the failed save left the list untouched
	_, raw := f.do(t, http.MethodGet, "/users/favorite", created.Token, nil)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodDelete, "/users/me"},
		{http.MethodPatch, "/users/me"},
		{http.MethodPost, "/users/logout"},
		{http.MethodGet, "/users/favorite"},
		{http.MethodPost, "/users/favorite"},
		{http.MethodDelete, "/users/favorite"},
	} {
		resp, _ := f.do(t, tc.method, tc.path, "", nil)
		assert.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}
}
