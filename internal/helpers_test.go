package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"sports-platform/internal/audit"
	"sports-platform/internal/auth"
	"sports-platform/internal/cache"
	"sports-platform/internal/models"
	"sports-platform/internal/notify"
	"sports-platform/internal/store/memstore"
)

const testSecret = "test-secret"

type testEnv struct {
	t      *testing.T
	d      *Deps
	r      *gin.Engine
	events *notify.Memory
	audit  *audit.Memory
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ev := &notify.Memory{}
	au := audit.NewMemory(500)
	d := &Deps{
		Store:     memstore.New(),
		Tokens:    auth.NewIssuer(testSecret, time.Hour, 24*time.Hour),
		Audit:     au,
		Cache:     cache.NewMemory(),
		CacheTTL:  time.Minute,
		Events:    ev,
		Log:       zerolog.Nop(),
		UploadDir: t.TempDir(),
	}
	return &testEnv{t: t, d: d, r: NewRouter(d), events: ev, audit: au}
}

func (e *testEnv) request(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

// do sends body as JSON with "Authorization: Bearer <token>" when token is set.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.request(req)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type authBody struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"`
	User      models.User `json:"user"`
}

// seed stores a user directly and returns a token for it.
func (e *testEnv) seed(role models.Role, email string) (string, *models.User) {
	e.t.Helper()
	u := &models.User{Name: string(role) + " " + email, Email: email, Role: role}
	require.NoError(e.t, e.d.Store.Users.Create(context.Background(), u))
	tok, err := e.d.Tokens.Issue(identityOf(u))
	require.NoError(e.t, err)
	return tok, u
}

func (e *testEnv) register(body map[string]any) authBody {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", "", body)
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authBody](e.t, w)
}

func (e *testEnv) createTournament(token, name string) models.Tournament {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/tournaments", token, map[string]any{
		"name": name, "date": "2026-05-01", "location": "Main Arena",
	})
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Tournament](e.t, w)
}

func (e *testEnv) closeTournament(token string, t models.Tournament) {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/tournaments/"+t.ID.Hex()+"/close", token, nil)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
}
