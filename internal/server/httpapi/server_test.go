package httpapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/logging"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/config"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/inmemory"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/repomanager"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func newTestHandler(t *testing.T) http.Handler {
	return newTestHandlerWith(t, inmemory.NewManager())
}

func newTestHandlerWith(t *testing.T, m repomanager.RepositoryManager) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		SecretKey:             "test-secret",
		TokenValidityDuration: time.Hour,
		BcryptCost:            bcrypt.MinCost,
	}

	tokens := services.NewTokenService(db, m, cfg)
	auth := services.NewAuthService(db, m, tokens, cfg)
	todos := services.NewTodoService(db, m)

	l := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv, err := NewHTTPServer(":0", l, auth, todos, tokens)
	require.NoError(t, err)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func registerUser(t *testing.T, h http.Handler, name, email string) (userID, token string) {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	decode(t, rec, &resp)
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.Token)
	return resp.User.ID, resp.Token
}

func TestTodoLifecycle(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/todos", token, map[string]any{
		"title": "  Write tests  ",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created todoJSON
	decode(t, rec, &created)
	assert.Equal(t, "Write tests", created.Title)
	assert.False(t, created.IsCompleted)
	assert.Nil(t, created.Description)

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/todos/"+created.ID+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var toggled todoJSON
	decode(t, rec, &toggled)
	assert.True(t, toggled.IsCompleted)

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/todos/"+created.ID, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = doJSON(t, h, http.MethodGet, "/api/v1/todos/"+created.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var msg messageJSON
	decode(t, rec, &msg)
	assert.Equal(t, "Not found.", msg.Message)
}

func TestTodoUpdate_PartialPatch(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/todos", token, map[string]any{
		"title":       "Buy milk",
		"description": "2% if they have it",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created todoJSON
	decode(t, rec, &created)

	// patching the title must leave the description alone
	rec = doJSON(t, h, http.MethodPatch, "/api/v1/todos/"+created.ID, token, map[string]any{
		"title": "Buy oat milk",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated todoJSON
	decode(t, rec, &updated)
	assert.Equal(t, "Buy oat milk", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "2% if they have it", *updated.Description)

	// an explicit null clears it
	rec = doJSON(t, h, http.MethodPatch, "/api/v1/todos/"+created.ID, token, map[string]any{
		"description": nil,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &updated)
	assert.Nil(t, updated.Description)
}

func TestTodoCreate_BlankTitleIs422(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/todos", token, map[string]any{
		"title": "   ",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp validationJSON
	decode(t, rec, &resp)
	assert.Equal(t, "The given data was invalid.", resp.Message)
	assert.Contains(t, resp.Errors, "title")
}

func TestTodos_OwnershipIsolation(t *testing.T) {
	h := newTestHandler(t)
	_, aliceToken := registerUser(t, h, "Alice", "alice@example.com")
	_, bobToken := registerUser(t, h, "Bob", "bob@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/todos", aliceToken, map[string]any{
		"title": "Alice's secret plan",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created todoJSON
	decode(t, rec, &created)

	for _, req := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/v1/todos/" + created.ID, nil},
		{http.MethodPatch, "/api/v1/todos/" + created.ID, map[string]any{"title": "Mine"}},
		{http.MethodPatch, "/api/v1/todos/" + created.ID + "/toggle", nil},
		{http.MethodDelete, "/api/v1/todos/" + created.ID, nil},
	} {
		rec := doJSON(t, h, req.method, req.path, bobToken, req.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", req.method, req.path)
	}

	// Bob's list stays empty while Alice still sees her todo
	rec = doJSON(t, h, http.MethodGet, "/api/v1/todos", bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var bobPage pageJSON
	decode(t, rec, &bobPage)
	assert.Empty(t, bobPage.Data)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/todos/"+created.ID, aliceToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTodoList_PaginationEnvelope(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	titles := []string{"One", "Two", "Three", "Four", "Five"}
	for _, title := range titles {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/todos", token, map[string]any{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/todos?page=2&per_page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page pageJSON
	decode(t, rec, &page)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Three", page.Data[0].Title)
	assert.Equal(t, "Two", page.Data[1].Title)

	assert.Equal(t, 2, page.Meta.CurrentPage)
	assert.Equal(t, 3, page.Meta.LastPage)
	assert.Equal(t, 2, page.Meta.PerPage)
	assert.EqualValues(t, 5, page.Meta.Total)
	require.NotNil(t, page.Meta.From)
	require.NotNil(t, page.Meta.To)
	assert.Equal(t, 3, *page.Meta.From)
	assert.Equal(t, 4, *page.Meta.To)

	assert.Equal(t, "/api/v1/todos?page=1", page.Links.First)
	assert.Equal(t, "/api/v1/todos?page=3", page.Links.Last)
	require.NotNil(t, page.Links.Prev)
	require.NotNil(t, page.Links.Next)
	assert.Equal(t, "/api/v1/todos?page=1", *page.Links.Prev)
	assert.Equal(t, "/api/v1/todos?page=3", *page.Links.Next)
}

func TestTodoList_FirstAndLastPageLinks(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/todos", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page pageJSON
	decode(t, rec, &page)
	assert.Empty(t, page.Data)
	assert.Nil(t, page.Links.Prev)
	assert.Nil(t, page.Links.Next)
	assert.Nil(t, page.Meta.From)
	assert.Nil(t, page.Meta.To)
	assert.Equal(t, 1, page.Meta.LastPage)
}

func TestAuth_MissingOrInvalidToken(t *testing.T) {
	h := newTestHandler(t)

	for _, token := range []string{"", "garbage"} {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/todos", token, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var msg messageJSON
		decode(t, rec, &msg)
		assert.Equal(t, "Unauthenticated.", msg.Message)
	}
}

func TestAuth_MeAndLogout(t *testing.T) {
	h := newTestHandler(t)
	userID, token := registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me userJSON
	decode(t, rec, &me)
	assert.Equal(t, userID, me.ID)
	assert.Equal(t, "alice@example.com", me.Email)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// the revoked token no longer opens any protected route
	rec = doJSON(t, h, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RefreshRotatesToken(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/auth/refresh", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEqual(t, token, resp.Token)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	h := newTestHandler(t)
	registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var msg messageJSON
	decode(t, rec, &msg)
	assert.Equal(t, "Unauthenticated.", msg.Message)
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	h := newTestHandler(t)
	registerUser(t, h, "Alice", "alice@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":     "Impostor",
		"email":    "alice@example.com",
		"password": "password456",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp validationJSON
	decode(t, rec, &resp)
	assert.Equal(t, []string{"The email has already been taken."}, resp.Errors["email"])
}

func TestMalformedBodyIs422(t *testing.T) {
	h := newTestHandler(t)
	_, token := registerUser(t, h, "Alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/todos", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp validationJSON
	decode(t, rec, &resp)
	assert.Contains(t, resp.Errors, "body")
}
