package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "stockex-backend/internal/application/auth"
	"stockex-backend/internal/domain"
	"stockex-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserFinder struct {
	user *domain.User
}

func (f *fakeUserFinder) FindByEmailAndPassword(_ context.Context, email, password string) (*domain.User, error) {
	if f.user != nil && f.user.Email == email && password == "password123" {
		return f.user, nil
	}
	return nil, authsvc.ErrInvalidCredentials
}

func setupAuthApp(t *testing.T, finder authsvc.UserFinder) (*fiber.App, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{UserFinder: finder, Rdb: rdb}
	app := fiber.New()
	app.Use(middleware.Session(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	app.Delete("/sessions", h.LogoutAll)
	return app, rdb
}

func login(t *testing.T, app *fiber.App, email, password string) (int, string) {
	b, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c.Value
		}
	}
	return resp.StatusCode, cookie
}

func TestLogin_MeLogout(t *testing.T) {
	user := &domain.User{UserID: uuid.New(), Fullname: "Ada", Email: "ada@example.com", Role: "investor"}
	app, rdb := setupAuthApp(t, &fakeUserFinder{user: user})

	status, cookie := login(t, app, "ada@example.com", "password123")
	require.Equal(t, fiber.StatusOK, status)
	require.True(t, strings.HasPrefix(cookie, "s:"))
	sid := strings.TrimPrefix(cookie, "s:")

	members, err := rdb.SMembers(context.Background(), middleware.UserSessionsPrefix+user.UserID.String()).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{sid}, members)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", data["email"])

	req = httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	n, _ := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+sid).Result()
	assert.Zero(t, n)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_Failures(t *testing.T) {
	app, _ := setupAuthApp(t, &fakeUserFinder{user: &domain.User{UserID: uuid.New(), Email: "ada@example.com"}})

	status, _ := login(t, app, "ada@example.com", "wrong")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = login(t, app, "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestLogin_NoFinder(t *testing.T) {
	app, _ := setupAuthApp(t, nil)
	status, _ := login(t, app, "a@b.co", "x")
	assert.Equal(t, fiber.StatusInternalServerError, status)
}

func TestLogoutAll_EndsEverySession(t *testing.T) {
	user := &domain.User{UserID: uuid.New(), Fullname: "Ada", Email: "ada@example.com", Role: "investor"}
	app, rdb := setupAuthApp(t, &fakeUserFinder{user: user})
	ctx := context.Background()

	_, first := login(t, app, "ada@example.com", "password123")
	_, second := login(t, app, "ada@example.com", "password123")
	require.NotEqual(t, first, second)

	req := httptest.NewRequest("DELETE", "/sessions", nil)
	req.Header.Set("Cookie", middleware.SessionCookieName+"="+first)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, c := range []string{first, second} {
		n, _ := rdb.Exists(ctx, middleware.SessionRedisPrefix+strings.TrimPrefix(c, "s:")).Result()
		assert.Zero(t, n)
	}
	n, _ := rdb.Exists(ctx, middleware.UserSessionsPrefix+user.UserID.String()).Result()
	assert.Zero(t, n)

	req = httptest.NewRequest("DELETE", "/sessions", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
