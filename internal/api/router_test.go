package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fantasy-ai/backend/internal/api"
	"fantasy-ai/backend/internal/auth"
	"fantasy-ai/backend/internal/interfaces/mocks"
	"fantasy-ai/backend/internal/model"
)

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockChatService, *mocks.MockCharacterService) {
	chats := mocks.NewMockChatService(t)
	sessions := mocks.NewMockSessionService(t)
	characters := mocks.NewMockCharacterService(t)
	r := api.NewRouter(auth.New(testSecret), api.NewChatHandler(chats, sessions), api.NewCharacterHandler(characters), []string{"https://app.example.com"})
	return r, chats, characters
}

func TestRouter_Healthz(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRouter_Identity(t *testing.T) {
	t.Run("Anonymous requests are rejected", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Device header identifies a guest", func(t *testing.T) {
		r, chats, _ := newTestRouter(t)
		chats.On("ListRecentChats", mock.Anything, model.Identity{DeviceID: "device-9", Guest: true}).Return([]model.RecentChat{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		req.Header.Set(auth.DeviceHeader, "device-9")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Bearer token identifies a user", func(t *testing.T) {
		r, chats, _ := newTestRouter(t)
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   "user-7",
			"email": "u7@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)
		chats.On("ListRecentChats", mock.Anything, mock.MatchedBy(func(id model.Identity) bool {
			return id.UserID == "user-7" && !id.Guest
		})).Return([]model.RecentChat{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/chats", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Catalog is public", func(t *testing.T) {
		r, _, characters := newTestRouter(t)
		characters.On("Categories").Return([]model.Category{}).Once()

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func TestRouter_CORS(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chats", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", auth.DeviceHeader)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}
