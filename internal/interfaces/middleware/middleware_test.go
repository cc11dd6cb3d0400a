package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/interfaces/middleware"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/versioning"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Cors("https://app.example.com"))
	r.GET("/me", middleware.RequireAuth(), func(c *gin.Context) {
		user := c.MustGet(constants.ContextKeyUser).(auth.UserSession)
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	auth.SetSecret("middleware-test-secret")
	r := newRouter()

	token, err := auth.GenerateToken(auth.UserSession{ID: "owner-1"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.status == http.StatusOK {
				assert.Equal(t, "owner-1", body["id"])
			} else {
				assert.Equal(t, "UNAUTHORIZED", body["code"])
				assert.Contains(t, body["message"], "unauthorized: ")
				assert.Equal(t, body["message"], body["error"])
				assert.Contains(t, body, "data")
			}
		})
	}
}

func TestCors(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/v", middleware.APIVersion(), func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet(middleware.ContextKeyAPIVersion).(versioning.APIVersion).String())
	})

	tests := []struct {
		header string
		status int
	}{
		{"", http.StatusOK},
		{"v1", http.StatusOK},
		{"v1.5", http.StatusBadRequest},
		{"v2.0", http.StatusBadRequest},
		{"banana", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/v", nil)
		if tt.header != "" {
			req.Header.Set(versioning.Header, tt.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tt.status, w.Code, tt.header)
		assert.Equal(t, "v1.0", w.Header().Get(versioning.Header))
	}
}
