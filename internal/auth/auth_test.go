package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-secret"

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, r)

	r, err = ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)
	assert.Equal(t, "/admin_dashboard", r.Home())

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", h)
	assert.True(t, CheckPassword(h, "s3cret"))
	assert.False(t, CheckPassword(h, "wrong"))
}

func TestSessionRoundTrip(t *testing.T) {
	tok, exp, err := IssueSession(42, "asha", RoleStudent, testKey, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ParseSession(tok, testKey)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID())
	assert.Equal(t, "asha", claims.Username)
	assert.Equal(t, RoleStudent, claims.Role)

	_, err = ParseSession(tok, "other-key")
	assert.Error(t, err)

	expired, _, err := IssueSession(42, "asha", RoleStudent, testKey, -time.Minute)
	require.NoError(t, err)
	_, err = ParseSession(expired, testKey)
	assert.Error(t, err)
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(testKey))
	r.GET("/page", RequireLogin(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/data", RequireLogin(), func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/admin", RequireRole(RoleAdmin), func(c *gin.Context) { c.String(http.StatusOK, "admin") })
	return r
}

func request(t *testing.T, r http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireLogin(t *testing.T) {
	r := newRouter()

	w := request(t, r, "/page", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = request(t, r, "/api/data", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, r, "/page", "garbage")
	assert.Equal(t, http.StatusFound, w.Code)

	tok, _, err := IssueSession(7, "ravi", RoleStudent, testKey, time.Hour)
	require.NoError(t, err)
	w = request(t, r, "/page", tok)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole(t *testing.T) {
	r := newRouter()

	student, _, err := IssueSession(7, "ravi", RoleStudent, testKey, time.Hour)
	require.NoError(t, err)
	w := request(t, r, "/admin", student)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Values("Set-Cookie")[0], "flash=")

	admin, _, err := IssueSession(1, "root", RoleAdmin, testKey, time.Hour)
	require.NoError(t, err)
	w = request(t, r, "/admin", admin)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
}
