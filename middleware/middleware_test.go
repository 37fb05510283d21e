package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"servicedesk/apperrors"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"
	"servicedesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubIdentity struct {
	uid string
}

func (s stubIdentity) CreateAccount(context.Context, string, string, string) (string, error) {
	return "", nil
}
func (s stubIdentity) DeleteAccount(context.Context, string) error { return nil }
func (s stubIdentity) VerifyIDToken(ctx context.Context, tok string) (string, error) {
	if tok != "good-id-token" {
		return "", apperrors.NewAuthError("invalid id token")
	}
	return s.uid, nil
}

type countingCache struct {
	users map[string]models.User
	sets  int
}

func (c *countingCache) Get(_ context.Context, uid string) (*models.User, bool) {
	u, ok := c.users[uid]
	if !ok {
		return nil, false
	}
	return &u, true
}
func (c *countingCache) Set(_ context.Context, u models.User) { c.users[u.UID] = u; c.sets++ }
func (c *countingCache) Invalidate(_ context.Context, uid string) { delete(c.users, uid) }

type authFixture struct {
	router   *gin.Engine
	sessions *utils.SessionTokens
	users    *userRepo.MemoryUserRepo
	cache    *countingCache
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := userRepo.NewMemoryUserRepo()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{UID: "A1", Email: "admin@x.io", Name: "Ada", UserType: models.UserTypeAdmin, IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{UID: "T1", Email: "tech@x.io", Name: "Tom", UserType: models.UserTypeTechnician, IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{UID: "OFF", Email: "off@x.io", Name: "Off", UserType: models.UserTypeEndUser}))

	sessions, err := utils.NewSessionTokens("test-secret", time.Hour)
	require.NoError(t, err)
	cache := &countingCache{users: map[string]models.User{}}

	auth := &Authenticator{Users: users, Sessions: sessions, Identity: stubIdentity{uid: "T1"}, Cache: cache}
	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(auth), func(c *gin.Context) {
		u, ok := CurrentUser(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"uid": u.UID, "tokenType": c.GetString(utils.TokenTypeKey)})
	})
	r.GET("/admin", JWTAuthMiddleware(auth), RequireRoles(models.UserTypeAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return &authFixture{router: r, sessions: sessions, users: users, cache: cache}
}

func (f *authFixture) token(t *testing.T, uid string) string {
	t.Helper()
	u, err := f.users.GetByID(context.Background(), uid)
	require.NoError(t, err)
	tok, _, err := f.sessions.Generate(*u)
	require.NoError(t, err)
	return tok
}

func (f *authFixture) do(path, token, tokenType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tokenType != "" {
		req.Header.Set(utils.TokenTypeHeader, tokenType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_SessionToken(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do("/me", f.token(t, "A1"), "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "A1", body["uid"])
	assert.Equal(t, utils.TokenTypeSession, body["tokenType"])

	// Second request is served from the cache.
	w = f.do("/me", f.token(t, "A1"), utils.TokenTypeSession)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, f.cache.sets)
}

func TestJWTAuthMiddleware_FirebaseToken(t *testing.T) {
	f := newAuthFixture(t)

	w := f.do("/me", "good-id-token", "Firebase")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"T1"`)

	w = f.do("/me", "bad-id-token", utils.TokenTypeFirebase)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	f := newAuthFixture(t)

	other, err := utils.NewSessionTokens("other-secret", time.Hour)
	require.NoError(t, err)
	forged, _, err := other.Generate(models.User{UID: "A1"})
	require.NoError(t, err)

	expired := &utils.SessionTokens{Secret: []byte("test-secret"), TTL: time.Minute,
		Now: func() time.Time { return time.Now().Add(-time.Hour) }}
	stale, _, err := expired.Generate(models.User{UID: "A1"})
	require.NoError(t, err)

	ghost, _, err := f.sessions.Generate(models.User{UID: "GONE"})
	require.NoError(t, err)

	cases := []struct {
		name      string
		token     string
		tokenType string
		want      int
	}{
		{"missing header", "", "", http.StatusUnauthorized},
		{"wrong signature", forged, "", http.StatusUnauthorized},
		{"expired", stale, "", http.StatusUnauthorized},
		{"unknown user", ghost, "", http.StatusUnauthorized},
		{"deactivated user", f.token(t, "OFF"), "", http.StatusForbidden},
		{"unknown token type", f.token(t, "A1"), "magic", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do("/me", tc.token, tc.tokenType)
			assert.Equal(t, tc.want, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	f := newAuthFixture(t)

	assert.Equal(t, http.StatusNoContent, f.do("/admin", f.token(t, "A1"), "").Code)
	assert.Equal(t, http.StatusForbidden, f.do("/admin", f.token(t, "T1"), "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimitMiddleware(3), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit("1.1.1.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hit("1.1.1.1"))
	assert.Equal(t, http.StatusOK, hit("2.2.2.2"))
}

func TestRateLimiterStore_EvictsIdle(t *testing.T) {
	s := newRateLimiterStore(10)
	now := time.Now()
	s.getLimiter("a", now)
	s.getLimiter("b", now.Add(limiterIdleTTL+time.Second))
	assert.Len(t, s.limiters, 1)
	assert.Contains(t, s.limiters, "b")
}

func TestRateLimiterStore_SweepsOncePerTTL(t *testing.T) {
	s := newRateLimiterStore(10)
	t0 := time.Now()
	s.getLimiter("a", t0)
	s.getLimiter("b", t0.Add(limiterIdleTTL/2))

	// a is stale and a full TTL has passed since the last sweep
	s.getLimiter("c", t0.Add(limiterIdleTTL+limiterIdleTTL/4))
	assert.NotContains(t, s.limiters, "a")
	assert.Contains(t, s.limiters, "b")

	// b is stale now, but the next sweep is not due yet
	s.getLimiter("d", t0.Add(limiterIdleTTL*8/5))
	assert.Contains(t, s.limiters, "b")
	assert.Len(t, s.limiters, 3)
}

func TestGetClientIP(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "9.9.9.9:1234"
	assert.Equal(t, "9.9.9.9", getClientIP(c))

	c.Request.Header.Set("X-Real-IP", " 8.8.8.8 ")
	assert.Equal(t, "8.8.8.8", getClientIP(c))

	c.Request.Header.Set("X-Forwarded-For", "7.7.7.7, 6.6.6.6")
	assert.Equal(t, "7.7.7.7", getClientIP(c))
}
