package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/interfaces/rest"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
)

// MockStatsService is a mock implementation of rest.StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) ComputeStats(ctx context.Context, ownerID, moduleID string) (*models.StatsResult, error) {
	args := m.Called(ctx, ownerID, moduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StatsResult), args.Error(1)
}

func TestStatsHandler_GetStats(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockService := new(MockStatsService)
	handler := rest.NewStatsHandler(mockService)

	newContext := func(moduleID string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Set(constants.ContextKeyUser, auth.UserSession{ID: "owner-1"})
		c.Params = gin.Params{{Key: "id", Value: moduleID}}
		c.Request = httptest.NewRequest(http.MethodGet, "/api/modules/"+moduleID+"/stats", nil)
		return c, w
	}

	t.Run("Success", func(t *testing.T) {
		c, w := newContext("mod-1")
		result := &models.StatsResult{TotalCount: 3, ActiveCount: 2, CancelledCount: 1, MonthlyTotal: 10, YearlyTotal: 120, EstimatedAnnual: 240}
		mockService.On("ComputeStats", mock.Anything, "owner-1", "mod-1").Return(result, nil).Once()

		handler.GetStats(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Stats models.StatsResult `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, *result, body.Stats)
		mockService.AssertExpectations(t)
	})

	t.Run("Module Not Found", func(t *testing.T) {
		c, w := newContext("missing")
		mockService.On("ComputeStats", mock.Anything, "owner-1", "missing").
			Return(nil, apperrors.NewNotFoundError("Module", "missing")).Once()

		handler.GetStats(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body["code"])
		assert.Nil(t, body["data"])
		mockService.AssertExpectations(t)
	})
}
