package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/container"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/interface/middleware"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

func newServer(t *testing.T, own entity.Ownership, opts ...func(*config.Config)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AppName:             "bmi-test",
		Env:                 "test",
		DBDriver:            "memory",
		JWTSecret:           "secret",
		AccessTTL:           time.Hour,
		DebugMetricsEnabled: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	c, err := container.New(context.Background(), cfg, helpers.NewDiscardLogger(), own)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return NewEngine(c)
}

func send(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEndToEnd_RegisterLoginRecordList(t *testing.T) {
	r := newServer(t, entity.OwnedByUser)

	w := send(t, r, http.MethodPost, "/bmi/register", "", gin.H{"name": "Ann", "email": "ann@x.com", "password": "pw1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = send(t, r, http.MethodPost, "/bmi/login", "", gin.H{"email": "ann@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)

	w = send(t, r, http.MethodPost, "/bmi", login.AccessToken, gin.H{"weight": 70, "height": 175, "bmi": 22.9, "status": "Normal"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entity.BMIView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = send(t, r, http.MethodGet, "/user/bmi", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []entity.BMIView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)
	assert.Equal(t, 70, mine[0].Weight)
	assert.Equal(t, 175, mine[0].Height)
	assert.Equal(t, 22.9, mine[0].BMI)
	assert.Equal(t, "Normal", mine[0].Status)
	assert.Empty(t, mine[0].Name)
}

func TestAuthVariant_GuardsBMIRoutes(t *testing.T) {
	r := newServer(t, entity.OwnedByUser)

	w := send(t, r, http.MethodGet, "/bmi", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"msg":"missing access token"}`, w.Body.String())
}

func TestPublicVariant_Routes(t *testing.T) {
	r := newServer(t, entity.OwnedByName)

	w := send(t, r, http.MethodPost, "/bmi", "", gin.H{"name": "Ann", "weight": 70, "height": 175, "bmi": 22.9, "status": "Normal"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(t, r, http.MethodGet, "/bmi/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ann"`)

	// no auth routes in the public variant
	assert.Equal(t, http.StatusNotFound, send(t, r, http.MethodGet, "/user/bmi", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, send(t, r, http.MethodPost, "/bmi/login", "", gin.H{}).Code)
}

func TestHealthAndDebugVars(t *testing.T) {
	r := newServer(t, entity.OwnedByName)

	w := send(t, r, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = send(t, r, http.MethodGet, "/debug/vars", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bmi_records_created"`)
	assert.Contains(t, w.Body.String(), `"users_registered"`)
}

func registerAndLogin(t *testing.T, r http.Handler, name, email string) string {
	t.Helper()
	w := send(t, r, http.MethodPost, "/bmi/register", "", gin.H{"name": name, "email": email, "password": "pw1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = send(t, r, http.MethodPost, "/bmi/login", "", gin.H{"email": email, "password": "pw1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	return login.AccessToken
}

func TestAuthVariant_CreateLimitedPerUser(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newServer(t, entity.OwnedByUser, func(cfg *config.Config) {
		cfg.RedisAddr = mr.Addr()
		cfg.BMICreateRatePerMin = 1
	})
	ann := registerAndLogin(t, r, "Ann", "ann@x.com")
	bob := registerAndLogin(t, r, "Bob", "bob@x.com")
	rec := gin.H{"weight": 70, "height": 175, "bmi": 22.9, "status": "Normal"}

	w := send(t, r, http.MethodPost, "/bmi", ann, rec)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = send(t, r, http.MethodPost, "/bmi", ann, rec)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"msg":"rate limit exceeded"}`, w.Body.String())

	// same IP, different account
	w = send(t, r, http.MethodPost, "/bmi", bob, rec)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// reads are not limited
	assert.Equal(t, http.StatusOK, send(t, r, http.MethodGet, "/user/bmi", ann, nil).Code)
}

func TestLogin_LimitedPerIP(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newServer(t, entity.OwnedByUser, func(cfg *config.Config) {
		cfg.RedisAddr = mr.Addr()
		cfg.LoginRatePerMin = 1
	})
	registerAndLogin(t, r, "Ann", "ann@x.com")

	w := send(t, r, http.MethodPost, "/bmi/login", "", gin.H{"email": "ann@x.com", "password": "pw1"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"msg":"rate limit exceeded"}`, w.Body.String())
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	r := newServer(t, entity.OwnedByName, func(cfg *config.Config) {
		cfg.RedisAddr = mr.Addr()
		cfg.BMICreateRatePerMin = 1
	})
	mr.Close()

	rec := gin.H{"name": "Ann", "weight": 70, "height": 175, "bmi": 22.9, "status": "Normal"}
	for i := 0; i < 3; i++ {
		w := send(t, r, http.MethodPost, "/bmi", "", rec)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

type echoModule struct{}

func (echoModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ip", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.CtxRealIPKey))
	})
}

func TestRegistry_UseAppliesToModules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	reg := NewRegistry(r, "/api")
	reg.Use(middleware.RealIP())
	reg.Add(echoModule{})
	reg.RegisterAll()

	req := httptest.NewRequest(http.MethodGet, "/api/ip", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "203.0.113.9", w.Body.String())
}
