package users

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/userbase-hq/userbase/testing"
)

func newTestHandler(repo RepositoryPort) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo))
	router := chi.NewRouter()
	router.Route("/users", handler.MountRoutes)
	return router
}

func TestGetUserMalformedIDIsBadRequest(t *testing.T) {
	router := newTestHandler(newMockRepository())

	for _, id := range []string{"abc", "0", "-1", "1.5"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
		assert.Equal(t, http.StatusBadRequest, res.Code, "id %q", id)
	}
}

func TestGetUserMissingIsNotFound(t *testing.T) {
	router := newTestHandler(newMockRepository())

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users/99", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestGetUserFound(t *testing.T) {
	repo := newMockRepository()
	created := repo.add("Ada", "ada@example.com", "+380000000042")
	router := newTestHandler(repo)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users/1", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var got User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "ada@example.com", got.Email)
}

func TestCreateUserEndpoint(t *testing.T) {
	router := newTestHandler(newMockRepository())

	body := `{"name":"Ada Lovelace","email":"ada@example.com","phone":"+380000000042","birthDate":"1815-12-10"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	var got User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &got))
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.NotZero(t, got.ID)
}

func TestCreateUserEndpointRejectsInvalidBody(t *testing.T) {
	router := newTestHandler(newMockRepository())

	cases := []string{
		`not json`,
		`{"name":"","email":"x@example.com","phone":"+380000000001","birthDate":"1990-01-01"}`,
		`{"name":"A","email":"nope","phone":"+380000000001","birthDate":"1990-01-01"}`,
		`{"name":"A","email":"x@example.com","phone":"12345","birthDate":"1990-01-01"}`,
		`{"name":"A","email":"x@example.com","phone":"+380000000001","birthDate":"01/01/1990"}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		assert.Equal(t, http.StatusBadRequest, res.Code, "body %q", body)
	}
}

func TestCreateUserEndpointDuplicateConflict(t *testing.T) {
	repo := newMockRepository()
	repo.add("Taken", "taken@example.com", "+380000000001")
	router := newTestHandler(repo)

	body := `{"name":"Other","email":"taken@example.com","phone":"+380000000002","birthDate":"1990-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestListUsersEndpointPassesQueryParams(t *testing.T) {
	repo := newMockRepository()
	seedMock(repo, 12)
	router := newTestHandler(repo)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users?limit=5", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var page Page
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &page))
	assert.Len(t, page.Users, 5)
	assert.Equal(t, "5", page.NextCursor)
}

func TestListUsersEndpointRejectsBadLimit(t *testing.T) {
	router := newTestHandler(newMockRepository())

	for _, query := range []string{"limit=abc", "limit=0", "limit=1000", "cursor=zzz"} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, res.Code, "query %q", query)
	}
}
