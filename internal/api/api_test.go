package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zixindh/counter/internal/middleware"
	"github.com/zixindh/counter/internal/storage/file"
	"github.com/zixindh/counter/internal/utils"
)

const testSecret = "test-secret"

// newTestRouter wires the handlers the way cmd/server does, over a file
// store in a temp dir and with caching disabled.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := file.New(filepath.Join(t.TempDir(), "user_data.json"))
	cache := utils.NewCache(nil)

	r := gin.New()
	r.POST("/session", LoginHandler(store, testSecret))
	r.DELETE("/session", LogoutHandler(testSecret))
	g := r.Group("/api")
	g.Use(middleware.JWTAuthMiddleware(testSecret))
	g.GET("/total", GetTotalHandler(store, cache, time.Second))
	g.POST("/add", AddHandler(store, cache))
	g.POST("/reset", ResetHandler(store, cache))
	g.GET("/totals", ListTotalsHandler(store, cache, time.Second))
	return r
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, name string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/session", "", `{"username":"`+name+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func getTotal(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(r, http.MethodGet, "/api/total", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp TotalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Total
}

func TestLoginCreatesZeroRecord(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "alice")
	assert.Equal(t, "0", getTotal(t, r, token))
}

func TestLoginTrimsWhitespace(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodPost, "/session", "", `{"username":"  alice  "}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestLoginRejectsBadNames(t *testing.T) {
	r := newTestRouter(t)
	for _, body := range []string{
		`{}`,
		`{"username":"   "}`,
		`{"username":"bad\nname"}`,
		`{"username":"` + strings.Repeat("a", 65) + `"}`,
	} {
		w := doJSON(r, http.MethodPost, "/session", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestQuickAddsAccumulate(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/add", token, `{"amount":10}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPost, "/api/add", token, `{"amount":50}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "60", getTotal(t, r, token))
}

func TestCustomAmountAndNegativeEntry(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "bob")

	w := doJSON(r, http.MethodPost, "/api/add", token, `{"amount":"99.50"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPost, "/api/add", token, `{"amount":-100}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "-0.5", getTotal(t, r, token))
}

func TestInvalidAmountsRejectedWithoutMutation(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "alice")

	for _, body := range []string{
		`{}`,
		`{"amount":0}`,
		`{"amount":10001}`,
		`{"amount":-10001}`,
		`{"amount":"abc"}`,
	} {
		w := doJSON(r, http.MethodPost, "/api/add", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.Equal(t, "0", getTotal(t, r, token))
}

func TestResetReturnsToZero(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/add", token, `{"amount":123}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPost, "/api/reset", token, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "0", getTotal(t, r, token))
}

func TestTallyRoutesRequireToken(t *testing.T) {
	r := newTestRouter(t)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/total"},
		{http.MethodPost, "/api/add"},
		{http.MethodPost, "/api/reset"},
		{http.MethodGet, "/api/totals"},
	} {
		w := doJSON(r, tc.method, tc.path, "", `{"amount":10}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)

		w = doJSON(r, tc.method, tc.path, "bogus-token", `{"amount":10}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestTotalsListsAllUsers(t *testing.T) {
	r := newTestRouter(t)
	aliceToken := login(t, r, "alice")
	bobToken := login(t, r, "bob")

	w := doJSON(r, http.MethodPost, "/api/add", aliceToken, `{"amount":60}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/totals", bobToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Totals map[string]string `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "60", resp.Totals["alice"])
	assert.Equal(t, "0", resp.Totals["bob"])
}

func TestSecondLoginKeepsTotal(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "alice")

	w := doJSON(r, http.MethodPost, "/api/add", token, `{"amount":42}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Logging in again from another device must not reset anything.
	w = doJSON(r, http.MethodPost, "/session", "", `{"username":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.Total)
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(r, http.MethodDelete, "/session", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
