package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"couponhub/internal/auth"
	"couponhub/internal/config"
	"couponhub/internal/email"
	"couponhub/internal/handlers"
	"couponhub/internal/models"
	"couponhub/internal/routes"
	"couponhub/internal/services"
	"couponhub/internal/validator"
)

// envelope mirrors both halves of the API response format.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
}

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.Init())

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Coupon{},
		&models.CouponClaim{},
		&models.Badge{},
		&models.UserBadge{},
		&models.PointEvent{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.PaymentTransaction{},
		&models.UsageTrack{},
	))

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", AccessExpiry: 60, RefreshExpiry: 168},
		Points: config.PointsConfig{
			Upload:                 10,
			Claim:                  2,
			ClaimBonus:             1,
			DailyClaimsLimit:       10,
			PremiumDailyClaimsFree: 50,
		},
		Stripe: config.StripeConfig{SecretKey: "sk_test", WebhookSecret: "whsec_test"},
		HTTP:   config.HTTPConfig{RateLimitMax: 100},
	}

	jwtManager, err := auth.NewManager(cfg.JWT.Secret, "couponhub", time.Duration(cfg.JWT.AccessExpiry)*time.Minute)
	require.NoError(t, err)

	container := services.NewServiceContainer(db, nil, jwtManager, email.NoopProvider{}, cfg)
	engine := gin.New()
	routes.SetupRoutes(engine, handlers.NewAppHandlers(container, jwtManager), nil, cfg)

	return &testServer{engine: engine, db: db}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

type authPayload struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
	Tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	} `json:"tokens"`
}

func (s *testServer) register(t *testing.T, username, emailAddr string) authPayload {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"email":    emailAddr,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	env := decode(t, w)
	require.True(t, env.Success)

	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload
}

func (s *testServer) login(t *testing.T, emailAddr, password string) authPayload {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    emailAddr,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	env := decode(t, w)
	var payload authPayload
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	return payload
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterEndpoint(t *testing.T) {
	s := newTestServer(t)

	payload := s.register(t, "alice", "alice@example.com")
	assert.Equal(t, "alice", payload.User.Username)
	assert.Equal(t, "user", payload.User.Role)
	assert.NotEmpty(t, payload.Tokens.AccessToken)
	assert.NotEmpty(t, payload.Tokens.RefreshToken)

	t.Run("duplicate email", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, "USER_EXISTS", env.Error)
	})

	t.Run("invalid body", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"username": "x",
			"email":    "not-an-email",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		env := decode(t, w)
		assert.Equal(t, "VALIDATION_ERROR", env.Error)
		assert.NotEmpty(t, env.Errors)
	})

	t.Run("response never leaks password material", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
			"username": "bob",
			"email":    "bob@example.com",
			"password": "password123",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "password")
		assert.NotContains(t, w.Body.String(), "hash")
	})
}

func TestLoginEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com")

	t.Run("wrong password", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w).Error)
	})

	t.Run("success", func(t *testing.T) {
		payload := s.login(t, "alice@example.com", "password123")
		assert.Equal(t, "alice", payload.User.Username)
	})
}

func TestRefreshEndpoint(t *testing.T) {
	s := newTestServer(t)
	payload := s.register(t, "alice", "alice@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
		"refresh_token": payload.Tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var rotated struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &rotated))
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEqual(t, payload.Tokens.RefreshToken, rotated.RefreshToken)

	t.Run("consumed token is rejected", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", gin.H{
			"refresh_token": payload.Tokens.RefreshToken,
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decode(t, w).Error)
	})
}

func TestMeEndpoint(t *testing.T) {
	s := newTestServer(t)
	payload := s.register(t, "alice", "alice@example.com")

	t.Run("without token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "MISSING_TOKEN", decode(t, w).Error)
	})

	t.Run("with a garbage token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decode(t, w).Error)
	})

	t.Run("with a valid token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/auth/me", payload.Tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var me struct {
			Username string `json:"username"`
			Email    string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
		assert.Equal(t, "alice", me.Username)
		assert.Equal(t, "alice@example.com", me.Email)
	})
}

func TestAdminRoutesAreRoleGated(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "alice@example.com")

	t.Run("regular user is refused", func(t *testing.T) {
		token := s.login(t, "alice@example.com", "password123").Tokens.AccessToken
		w := s.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", decode(t, w).Error)
	})

	t.Run("admin gets through", func(t *testing.T) {
		require.NoError(t, s.db.Model(&models.User{}).
			Where("email = ?", "alice@example.com").
			Update("role", models.UserRoleAdmin).Error)

		// The old token still carries the user role, a fresh login is needed.
		token := s.login(t, "alice@example.com", "password123").Tokens.AccessToken
		w := s.do(t, http.MethodGet, "/api/v1/admin/users", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCouponEndpoints(t *testing.T) {
	s := newTestServer(t)
	uploader := s.register(t, "alice", "alice@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/coupons", uploader.Tokens.AccessToken, gin.H{
		"title":          "20% off at TestMart",
		"code":           "SAVE20",
		"store":          "TestMart",
		"discount_type":  "percent",
		"discount_value": 20,
		"expires_at":     time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var created struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, "SAVE20", created.Code, "uploader sees their own code")

	t.Run("anonymous catalog hides the code", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/coupons", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var page struct {
			Items []map[string]any `json:"items"`
			Total int64            `json:"total"`
		}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
		require.Len(t, page.Items, 1)
		assert.NotContains(t, page.Items[0], "code")
	})

	t.Run("creating needs a token", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/coupons", "", gin.H{})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "MISSING_TOKEN", decode(t, w).Error)
	})

	t.Run("bad coupon code fails validation", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/coupons", uploader.Tokens.AccessToken, gin.H{
			"title":          "Broken deal",
			"code":           "not valid!!",
			"store":          "TestMart",
			"discount_type":  "percent",
			"discount_value": 10,
			"expires_at":     time.Now().Add(time.Hour).Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "VALIDATION_ERROR", decode(t, w).Error)
	})

	t.Run("claiming reveals the code and pays points", func(t *testing.T) {
		claimer := s.register(t, "bob", "bob@example.com")

		w := s.do(t, http.MethodPost, "/api/v1/coupons/"+created.ID+"/claim", claimer.Tokens.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

		var claim struct {
			Coupon struct {
				Code    string `json:"code"`
				Claimed bool   `json:"claimed"`
			} `json:"coupon"`
			PointsAwarded   int   `json:"points_awarded"`
			ClaimsRemaining int64 `json:"claims_remaining"`
		}
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &claim))
		assert.Equal(t, "SAVE20", claim.Coupon.Code)
		assert.True(t, claim.Coupon.Claimed)
		assert.Equal(t, 2, claim.PointsAwarded)

		t.Run("second claim conflicts", func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/coupons/"+created.ID+"/claim", claimer.Tokens.AccessToken, nil)
			assert.Equal(t, http.StatusConflict, w.Code)
			assert.Equal(t, "ALREADY_CLAIMED", decode(t, w).Error)
		})
	})
}

func TestWebhookEndpointRejectsBadSignature(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe",
		bytes.NewReader([]byte(`{"id":"evt_1","type":"checkout.session.completed"}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PAYMENT_PROVIDER_ERROR", decode(t, w).Error)
}

func TestGamificationEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("leaderboard is public", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/gamification/leaderboard", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("achievements need a token", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/gamification/achievements", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
