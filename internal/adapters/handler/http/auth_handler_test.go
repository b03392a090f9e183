package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-fast-engine/internal/core/services"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func setupHandler() (*gin.Engine, *MockUserRepository, *services.TokenService) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo)
	tokens := services.NewTokenService("handler-secret", "kanso-test", time.Hour, mockRepo)
	authHandler := NewAuthHandler(authService, tokens)

	router := gin.New()
	authHandler.RegisterRoutes(router.Group(""))

	return router, mockRepo, tokens
}

func postJSON(router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success: Should return 201, the user and a usable token", func(t *testing.T) {
		router, mockRepo, tokens := setupHandler()

		var created *domain.User
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
			Return(nil)

		w := postJSON(router, "/auth/register", map[string]string{
			"email":     "api_test@kanso.app",
			"password":  "PasswordSuperSegreta1!",
			"full_name": "Api Tester",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		var response authResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "api_test@kanso.app", response.User.Email)
		assert.Equal(t, "Api Tester", response.User.FullName)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.Equal(t, int64(3600), response.ExpiresIn)
		assert.NotContains(t, w.Body.String(), "password")

		mockRepo.On("GetByID", mock.Anything, created.ID).Return(created, nil)
		userID, err := tokens.ValidateToken(response.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, created.ID, userID)
	})

	t.Run("Fail: Should return 400 for Bad JSON (Invalid Email)", func(t *testing.T) {
		router, mockRepo, _ := setupHandler()

		w := postJSON(router, "/auth/register", map[string]string{"email": "not-an-email", "password": "Password123!"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return 400 for Bad JSON (Password too short)", func(t *testing.T) {
		router, mockRepo, _ := setupHandler()

		w := postJSON(router, "/auth/register", map[string]string{"email": "valid@email.com", "password": "short"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return 409 Conflict if email exists", func(t *testing.T) {
		router, mockRepo, _ := setupHandler()
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		w := postJSON(router, "/auth/register", map[string]string{"email": "duplicate@kanso.app", "password": "PasswordValidissima!"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "email already exists")
	})

	t.Run("Fail: Should return 500 Internal Server Error on DB failure", func(t *testing.T) {
		router, mockRepo, _ := setupHandler()
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db connection lost"))

		w := postJSON(router, "/auth/register", map[string]string{"email": "crash@kanso.app", "password": "PasswordValidissima!"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "internal server error")
		assert.NotContains(t, w.Body.String(), "db connection lost")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	user, err := domain.NewUser("user-1", "login@kanso.app", "")
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("CorrectHorse1"))

	t.Run("Success", func(t *testing.T) {
		router, mockRepo, _ := setupHandler()
		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)

		w := postJSON(router, "/auth/login", map[string]string{"email": "login@kanso.app", "password": "CorrectHorse1"})

		require.Equal(t, http.StatusOK, w.Code)
		var response authResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "user-1", response.User.ID)
		assert.NotEmpty(t, response.AccessToken)
	})

	t.Run("Wrong password and unknown email look the same", func(t *testing.T) {
		router, mockRepo, _ := setupHandler()
		mockRepo.On("GetByEmail", mock.Anything, "login@kanso.app").Return(user, nil)
		mockRepo.On("GetByEmail", mock.Anything, "ghost@kanso.app").Return(nil, domain.ErrUserNotFound)

		wrong := postJSON(router, "/auth/login", map[string]string{"email": "login@kanso.app", "password": "nope-nope"})
		ghost := postJSON(router, "/auth/login", map[string]string{"email": "ghost@kanso.app", "password": "nope-nope"})

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, ghost.Code)
		assert.Equal(t, wrong.Body.String(), ghost.Body.String())
	})
}
