package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"recruitment_portal/internal/metrics"
	"recruitment_portal/internal/model"
	"recruitment_portal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	mu       sync.Mutex
	events   []string
	requests []recordedRequest
}

func (f *fakeRecorder) RecordRequest(method, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, route, status})
}

func (f *fakeRecorder) RecordAuthEvent(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeRecorder) RecordApplicationSubmitted() {}

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(jwtUtil *utils.JWTUtil, rec metrics.Recorder) *gin.Engine {
	r := gin.New()
	auth := JWTAuthMiddleware(jwtUtil, rec)

	r.GET("/me", auth, func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.POST("/jobs", auth, AdminMiddleware(rec), func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	})
	r.GET("/no-auth-admin", AdminMiddleware(rec), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil(testSecret, time.Hour)
	rec := &fakeRecorder{}
	r := setupRouter(jwtUtil, rec)

	userToken, err := jwtUtil.GenerateToken("u-1", model.RoleUser)
	require.NoError(t, err)
	foreignToken, err := utils.NewJWTUtil("other-secret", time.Hour).GenerateToken("u-1", model.RoleAdmin)
	require.NoError(t, err)

	t.Run("no header", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Authorization header required"}`, w.Body.String())
	})

	t.Run("not bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", "not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("signed with another secret", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", foreignToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", userToken)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "u-1", body["id"])
		assert.Equal(t, model.RoleUser, body["role"])
	})

	assert.Equal(t, []string{
		metrics.EventUnauthenticated, metrics.EventUnauthenticated,
		metrics.EventUnauthenticated, metrics.EventUnauthenticated,
	}, rec.events)
}

func TestJWTAuthMiddleware_Expired(t *testing.T) {
	issued := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	now := issued
	jwtUtil := utils.NewJWTUtil(testSecret, 5*time.Hour).WithClock(func() time.Time { return now })
	r := setupRouter(jwtUtil, nil)

	token, err := jwtUtil.GenerateToken("u-1", model.RoleUser)
	require.NoError(t, err)

	now = issued.Add(5*time.Hour - time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/me", token).Code)

	now = issued.Add(5*time.Hour + time.Second)
	w := doRequest(r, http.MethodGet, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	jwtUtil := utils.NewJWTUtil(testSecret, time.Hour)
	rec := &fakeRecorder{}
	r := setupRouter(jwtUtil, rec)

	userToken, _ := jwtUtil.GenerateToken("u-1", model.RoleUser)
	adminToken, _ := jwtUtil.GenerateToken("a-1", model.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodPost, "/jobs", "").Code)

	w := doRequest(r, http.MethodPost, "/jobs", userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"You do not have permission to access this resource"}`, w.Body.String())

	assert.Equal(t, http.StatusCreated, doRequest(r, http.MethodPost, "/jobs", adminToken).Code)

	// role check without an identity in context is treated as unauthenticated
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/no-auth-admin", "").Code)

	assert.Contains(t, rec.events, metrics.EventForbidden)
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(6, 2) // one token every 10s
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/applications", func(c *gin.Context) {
		c.Set(AuthUserKey, c.GetHeader("X-User"))
		c.Next()
	}, rl.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	submit := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/applications", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, submit("alice").Code)
	assert.Equal(t, http.StatusCreated, submit("alice").Code)

	w := submit("alice")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "10", w.Header().Get("Retry-After"))

	// other users have their own bucket
	assert.Equal(t, http.StatusCreated, submit("bob").Code)

	now = now.Add(10 * time.Second)
	assert.Equal(t, http.StatusCreated, submit("alice").Code)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	rec := &fakeRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/api/jobs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	doRequest(r, http.MethodGet, "/api/jobs/123", "")
	doRequest(r, http.MethodGet, "/nowhere", "")

	require.Len(t, rec.requests, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/api/jobs/:id", http.StatusNotFound}, rec.requests[0])
	assert.Equal(t, unmatchedRoute, rec.requests[1].route)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestLogger(&log))
	r.GET("/fail", func(c *gin.Context) {
		c.Set(AuthUserKey, "u-7")
		c.Status(http.StatusInternalServerError)
	})

	doRequest(r, http.MethodGet, "/fail", "")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "/fail", entry["path"])
	assert.Equal(t, float64(500), entry["status"])
	assert.Equal(t, "u-7", entry["user_id"])
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://portal.example.gov"))
	r.GET("/api/jobs", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, http.MethodOptions, "/api/jobs", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.example.gov", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	var readErr error
	handlerCalled := false
	router := gin.New()
	router.POST("/upload", BodyLimit(10), func(c *gin.Context) {
		handlerCalled = true
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	t.Run("declared length over the cap", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, 11)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.False(t, handlerCalled)
	})

	t.Run("unknown length is cut off while reading", func(t *testing.T) {
		handlerCalled = false
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, 64)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.True(t, handlerCalled)
		var maxErr *http.MaxBytesError
		assert.ErrorAs(t, readErr, &maxErr)
	})

	t.Run("within the cap", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(make([]byte, 10)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, readErr)
	})
}
