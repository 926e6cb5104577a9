package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/lostfound-service/internal/api/http/handlers"
	"github.com/spec-kit/lostfound-service/internal/auth"
	"github.com/spec-kit/lostfound-service/internal/config"
	"github.com/spec-kit/lostfound-service/internal/events"
	"github.com/spec-kit/lostfound-service/internal/observability"
	"github.com/spec-kit/lostfound-service/internal/repository/memory"
	"github.com/spec-kit/lostfound-service/internal/service"
	"github.com/spec-kit/lostfound-service/internal/storage"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T, limiter *auth.RateLimiter) *fiber.App {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	cfg := config.Config{
		App: config.AppConfig{Name: "lostfound-test"},
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret",
			AccessTokenTTLMinutes:   60,
			PasswordResetTTLMinutes: 30,
			BcryptCost:              bcrypt.MinCost,
		},
	}

	store := memory.NewStore()
	hash, err := auth.HashPassword(memory.SeedPassword, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, memory.Seed(ctx, store, hash))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	images := storage.NewMemoryStore("/api/uploads")

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          store.Users,
		PasswordResetRepo: store.PasswordResets,
		Logger:            logger,
	})
	itemService := service.NewItemService(service.ItemDependencies{
		ItemRepo:   store.Items,
		UserRepo:   store.Users,
		Images:     images,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, store.Notifications, logger, cfg.Notification, metrics)
	notificationService.RegisterHandlers()

	app := NewApp(AppOptions{Name: cfg.App.Name, BodyLimit: 6 << 20}, logger, metrics)
	contactService := service.NewContactService(service.ContactDependencies{
		MessageRepo: store.Messages,
		ItemRepo:    store.Items,
		UserRepo:    store.Users,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, "test"),
		Auth:           handlers.NewAuthHandler(authService, true),
		Users:          handlers.NewUsersHandler(service.NewUserService(cfg, service.UserDependencies{
			UserRepo:    store.Users,
			ItemRepo:    store.Items,
			MessageRepo: store.Messages,
			Logger:      logger,
		})),
		Items:          handlers.NewItemsHandler(itemService),
		AdminItems:     handlers.NewAdminItemsHandler(itemService),
		Contact:        handlers.NewContactHandler(contactService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Stats:          handlers.NewStatsHandler(service.NewStatsService(store.Items)),
		Uploads:        handlers.NewUploadsHandler(images),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users, authService.Revocations(), logger),
		RateLimiter:    limiter,
		Metrics:        metrics.Handler(),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any, token string) (*nethttp.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *nethttp.Request) (*nethttp.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, env := do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": memory.SeedPassword,
	}, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestConnectivityCheck(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/api/test", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Message)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestLoginFailureEnvelope(t *testing.T) {
	app := newTestApp(t, nil)

	resp, env := do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@emsi.ma", "password": "nope",
	}, "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	app := newTestApp(t, nil)

	resp, env := do(t, app, nethttp.MethodGet, "/api/admin/users", nil, "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)

	userToken := login(t, app, "user@emsi.ma")
	resp, env = do(t, app, nethttp.MethodGet, "/api/admin/users", nil, userToken)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	adminToken := login(t, app, "admin@emsi.ma")
	resp, env = do(t, app, nethttp.MethodGet, "/api/admin/users", nil, adminToken)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 5)
	assert.NotContains(t, users[0], "passwordHash")

	resp, env = do(t, app, nethttp.MethodDelete, "/api/admin/users/1", nil, adminToken)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ADMIN_DELETE_FORBIDDEN", env.Error.Code)

	resp, env = do(t, app, nethttp.MethodDelete, "/api/admin/users/3", nil, adminToken)
	assert.Equal(t, nethttp.StatusConflict, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	resp, _ = do(t, app, nethttp.MethodGet, "/api/items/2", nil, "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestReportAndList(t *testing.T) {
	app := newTestApp(t, nil)
	token := login(t, app, "sarah.ahmed@emsi.ma")

	resp, env := do(t, app, nethttp.MethodPost, "/api/items", map[string]any{"type": "Found"}, token)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "description")

	resp, env = do(t, app, nethttp.MethodPost, "/api/items", map[string]any{
		"description": "iPad Air Gris Sidéral",
		"location":    "Salle 204",
		"type":        "Found",
		"category":    "electronics",
	}, token)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	var report struct {
		Item struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"item"`
		Matches []struct {
			ID int64 `json:"id"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "pending", report.Item.Status)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, int64(9), report.Matches[0].ID)

	owner := login(t, app, "user@emsi.ma")
	resp, env = do(t, app, nethttp.MethodGet, "/api/notifications/unread-count", nil, owner)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	resp, env = do(t, app, nethttp.MethodGet, "/api/items?type=Lost&pageSize=2", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, 4, page.Total)
	assert.Len(t, page.Items, 2)

	resp, _ = do(t, app, nethttp.MethodDelete, "/api/items/1", nil, token)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode)
}

func TestListBeyondLastPage(t *testing.T) {
	app := newTestApp(t, nil)

	resp, env := do(t, app, nethttp.MethodGet, "/api/items?page=100000000000000000&pageSize=100", nil, "")
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var page struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 8, page.Total)
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	app := newTestApp(t, nil)

	resp, env := do(t, app, nethttp.MethodGet, "/api/nowhere", nil, "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	resp, env = do(t, app, nethttp.MethodGet, "/api/items/999", nil, "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ITEM_NOT_FOUND", env.Error.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp(t, nil)
	token := login(t, app, "user@emsi.ma")

	resp, _ := do(t, app, nethttp.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, nethttp.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp, env := do(t, app, nethttp.MethodGet, "/api/users/me", nil, token)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	app := newTestApp(t, nil)

	resp, env := do(t, app, nethttp.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "f.zahra@emsi.ma"}, "")
	require.Equal(t, nethttp.StatusAccepted, resp.StatusCode)
	var data struct {
		ResetToken string `json:"resetToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.ResetToken)

	resp, _ = do(t, app, nethttp.MethodPost, "/api/auth/reset-password", map[string]string{
		"token": data.ResetToken, "password": "fresh-pass",
	}, "")
	assert.Equal(t, nethttp.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, app, nethttp.MethodPost, "/api/auth/login", map[string]string{
		"email": "f.zahra@emsi.ma", "password": "fresh-pass",
	}, "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
}

func TestLoginIsRateLimited(t *testing.T) {
	app := newTestApp(t, auth.NewRateLimiter(1, 1, zap.NewNop()))
	body := map[string]string{"email": "admin@emsi.ma", "password": "nope"}

	resp, _ := do(t, app, nethttp.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	resp, env := do(t, app, nethttp.MethodPost, "/api/auth/login", body, "")
	assert.Equal(t, nethttp.StatusTooManyRequests, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "RATE_LIMITED", env.Error.Code)
}

func TestUploadAndServeImage(t *testing.T) {
	app := newTestApp(t, nil)
	token := login(t, app, "user@emsi.ma")
	png := []byte("\x89PNG\r\n\x1a\nfake-image")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="wallet.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/items/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, env := send(t, app, req)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	var data struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.True(t, strings.HasPrefix(data.URL, "/api/uploads/uploads/"))
	assert.True(t, strings.HasSuffix(data.URL, ".png"))

	got, err := app.Test(httptest.NewRequest(nethttp.MethodGet, data.URL, nil), -1)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, nethttp.StatusOK, got.StatusCode)
	assert.Equal(t, "image/png", got.Header.Get("Content-Type"))
	served, err := io.ReadAll(got.Body)
	require.NoError(t, err)
	assert.Equal(t, png, served)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	_, _ = do(t, app, nethttp.MethodGet, "/api/test", nil, "")

	resp, err := app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "lostfound_http_requests_total")
}
