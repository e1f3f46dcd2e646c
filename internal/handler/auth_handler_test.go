package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"account-service/config"
	"account-service/internal/domain/account"
	"account-service/internal/middleware"
	"account-service/internal/repository"
	"account-service/internal/services"
	"account-service/internal/storage"
	"account-service/internal/transport/httpdto"
	"account-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMedia struct{}

func (fakeMedia) Upload(_ context.Context, localPath string) (storage.UploadResult, error) {
	key := filepath.Base(localPath)
	return storage.UploadResult{Key: key, SecureURL: "https://cdn.example.com/" + key}, nil
}

type testApp struct {
	router *gin.Engine
	repo   *repository.MemoryAccountRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AccessTokenSecret:  "access-secret",
		AccessExpiryMin:    15,
		RefreshTokenSecret: "refresh-secret",
		RefreshExpiryDays:  10,
	}
	l := logger.NewNop()
	repo := repository.NewMemoryAccountRepository()
	issuer := services.NewTokenIssuer(repo, cfg)
	svc := services.NewAuthService(repo, issuer, fakeMedia{}, nil, l)
	h := NewAuthHandler(svc, CookieConfig{Secure: true})

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.ErrorHandler(l))
	users := r.Group("/v1/users")
	users.POST("/register", middleware.StageFiles(t.TempDir(), 1<<20, l, AvatarField, CoverImageField), h.Register)
	users.POST("/login", h.Login)
	users.POST("/logout", middleware.AuthMiddleware(svc), h.Logout)
	users.GET("/me", middleware.AuthMiddleware(svc), h.Me)

	return &testApp{router: r, repo: repo}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func registerRequest(t *testing.T, fields map[string]string, withAvatar bool) *http.Request {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withAvatar {
		fw, err := mw.CreateFormFile(AvatarField, "me.png")
		require.NoError(t, err)
		_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/users/register", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func loginRequest(t *testing.T, body map[string]string) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/users/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

var janeDoe = map[string]string{
	"fullName": "Jane Doe",
	"email":    "jane@example.com",
	"username": "JaneDoe",
	"password": "secret1",
}

func TestRegister(t *testing.T) {
	app := newTestApp(t)

	w := app.do(registerRequest(t, janeDoe, true))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body httpdto.Response[account.Profile]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, body.StatusCode)
	assert.True(t, body.Success)
	assert.Equal(t, "User successfully registered", body.Message)
	assert.Equal(t, "janedoe", body.Data.Username)
	assert.Equal(t, "Jane Doe", body.Data.FullName)
	assert.True(t, strings.HasPrefix(body.Data.Avatar, "https://cdn.example.com/"))

	var raw struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw.Data, "password")
	assert.NotContains(t, raw.Data, "refreshToken")
}

func TestRegisterErrors(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(registerRequest(t, janeDoe, true)).Code)

	blank := map[string]string{"fullName": " ", "email": "", "username": "", "password": ""}
	duplicate := map[string]string{"fullName": "Other", "email": "jane@example.com", "username": "other", "password": "pw"}
	fresh := map[string]string{"fullName": "John", "email": "john@example.com", "username": "john", "password": "pw"}

	tests := []struct {
		name        string
		fields      map[string]string
		avatar      bool
		wantStatus  int
		wantMessage string
	}{
		{name: "all blank", fields: blank, avatar: true, wantStatus: http.StatusBadRequest, wantMessage: "All fields are required"},
		{name: "duplicate email", fields: duplicate, avatar: true, wantStatus: http.StatusConflict, wantMessage: "User with email or username already exist"},
		{name: "missing avatar", fields: fresh, wantStatus: http.StatusBadRequest, wantMessage: "Avatar image is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(registerRequest(t, tt.fields, tt.avatar))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body httpdto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.False(t, body.Success)
		})
	}
	assert.Equal(t, 1, app.repo.Len())
}

func TestLoginWrongPassword(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(registerRequest(t, janeDoe, true)).Code)

	w := app.do(loginRequest(t, map[string]string{"username": "janedoe", "password": "wrong"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Result().Cookies())
	var body httpdto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid user credentials", body.Message)

	stored, err := app.repo.FindByUsernameOrEmail(context.Background(), "janedoe", "")
	require.NoError(t, err)
	assert.False(t, stored.RefreshToken.Valid)
}

func TestLoginUnknownUser(t *testing.T) {
	app := newTestApp(t)

	w := app.do(loginRequest(t, map[string]string{"email": "ghost@example.com", "password": "secret1"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User does not exist")
}

func TestLoginLogoutFlow(t *testing.T) {
	app := newTestApp(t)
	require.Equal(t, http.StatusCreated, app.do(registerRequest(t, janeDoe, true)).Code)

	w := app.do(loginRequest(t, map[string]string{"username": "JaneDoe", "password": "secret1"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body httpdto.Response[httpdto.LoginResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.StatusCode)
	assert.Equal(t, "User logged in successfully", body.Message)
	assert.Equal(t, "janedoe", body.Data.User.Username)
	require.NotEmpty(t, body.Data.AccessToken)
	require.NotEmpty(t, body.Data.RefreshToken)

	cookies := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		cookies[c.Name] = c
	}
	require.Len(t, cookies, 2)
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		c := cookies[name]
		require.NotNil(t, c, name)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, "/", c.Path)
	}
	assert.Equal(t, body.Data.AccessToken, cookies[middleware.AccessTokenCookie].Value)
	assert.Equal(t, body.Data.RefreshToken, cookies[RefreshTokenCookie].Value)
	assert.Equal(t, 15*60, cookies[middleware.AccessTokenCookie].MaxAge)

	stored, err := app.repo.GetAccountByID(context.Background(), body.Data.User.ID)
	require.NoError(t, err)
	assert.Equal(t, body.Data.RefreshToken, stored.RefreshToken.String)

	me := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	me.AddCookie(cookies[middleware.AccessTokenCookie])
	w = app.do(me)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"janedoe"`)

	logout := httptest.NewRequest(http.MethodPost, "/v1/users/logout", nil)
	logout.Header.Set("Authorization", "Bearer "+body.Data.AccessToken)
	w = app.do(logout)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		assert.Empty(t, c.Value)
		assert.Negative(t, c.MaxAge)
	}

	stored, err = app.repo.GetAccountByID(context.Background(), body.Data.User.ID)
	require.NoError(t, err)
	assert.False(t, stored.RefreshToken.Valid)
}

func TestMeRequiresToken(t *testing.T) {
	app := newTestApp(t)

	w := app.do(httptest.NewRequest(http.MethodGet, "/v1/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
