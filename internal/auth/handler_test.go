package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/userbase-hq/userbase/testing"
)

func newTestRouter(t *testing.T, repo Repository) (*chi.Mux, *Issuer) {
	t.Helper()
	issuer := NewIssuer("handler-secret", 15*time.Minute, 24*time.Hour)
	handler := NewHandler(discardLogger(), NewService(repo, issuer), issuer)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)
	return router, issuer
}

func TestLoginEndpointReturnsTokenPair(t *testing.T) {
	repo := newMockRepo(&User{ID: 1, Email: "test@example.com", Phone: "+380123456789"})
	router, issuer := newTestRouter(t, repo)

	res := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"test@example.com","phone":"+380123456789"}`, "")
	require.Equal(t, http.StatusOK, res.Code)

	var pair TokenPair
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &pair))
	subject, err := issuer.Subject(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), subject)
}

func TestLoginEndpointGenericDenial(t *testing.T) {
	repo := newMockRepo(&User{ID: 1, Email: "test@example.com", Phone: "+380123456789"})
	router, _ := newTestRouter(t, repo)

	wrongPhone := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"test@example.com","phone":"+380000000000"}`, "")
	unknownEmail := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"other@example.com","phone":"+380123456789"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPhone.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPhone.Body.String(), unknownEmail.Body.String())
}

func TestLoginEndpointValidatesInput(t *testing.T) {
	router, _ := newTestRouter(t, newMockRepo())

	res := doJSON(router, http.MethodPost, "/auth/login", `{"email":"not-an-email","phone":""}`, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRefreshEndpointRequiresAccessToken(t *testing.T) {
	router, _ := newTestRouter(t, newMockRepo())

	res := doJSON(router, http.MethodPost, "/auth/refresh", `{"refreshToken":"x"}`, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRefreshEndpointRotatesOnce(t *testing.T) {
	repo := newMockRepo(&User{ID: 4, Email: "test@example.com", Phone: "+380123456789"})
	router, _ := newTestRouter(t, repo)

	loginRes := doJSON(router, http.MethodPost, "/auth/login",
		`{"email":"test@example.com","phone":"+380123456789"}`, "")
	require.Equal(t, http.StatusOK, loginRes.Code)
	var pair TokenPair
	require.NoError(t, json.Unmarshal(loginRes.Body.Bytes(), &pair))

	body := `{"refreshToken":"` + pair.RefreshToken + `"}`
	first := doJSON(router, http.MethodPost, "/auth/refresh", body, pair.AccessToken)
	require.Equal(t, http.StatusOK, first.Code)

	replay := doJSON(router, http.MethodPost, "/auth/refresh", body, pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doJSON(router http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}
