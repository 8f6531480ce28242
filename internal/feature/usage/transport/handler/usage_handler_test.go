package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	usagedomain "evolve_backend/internal/feature/usage/domain"
	"evolve_backend/internal/feature/usage/usecase"
	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// mockUsageUsecase is a mock implementation of the UsageUsecase interface.
type mockUsageUsecase struct {
	TrackFunc  func(ctx context.Context, clerkID string) (usecase.Status, error)
	StatusFunc func(ctx context.Context, clerkID string) (usecase.Status, error)

	TrackCalls int
}

func (m *mockUsageUsecase) Track(ctx context.Context, clerkID string) (usecase.Status, error) {
	m.TrackCalls++
	if m.TrackFunc != nil {
		return m.TrackFunc(ctx, clerkID)
	}
	return usecase.Status{}, nil
}

func (m *mockUsageUsecase) Status(ctx context.Context, clerkID string) (usecase.Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, clerkID)
	}
	return usecase.Status{}, nil
}

func TestUsageHandler_Track(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		subject        string
		trackErr       error
		expectedStatus int
		expectedBody   string
		expectedCalls  int
	}{
		{
			name:           "success",
			body:           `{"clerkId":"u1"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Usage tracked successfully"}`,
			expectedCalls:  1,
		},
		{
			name:           "quota exceeded",
			body:           `{"clerkId":"u1"}`,
			trackErr:       usagedomain.ErrQuotaExceeded,
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   `{"message":"Daily free limit reached. Upgrade your plan to continue."}`,
			expectedCalls:  1,
		},
		{
			name:           "unknown user",
			body:           `{"clerkId":"ghost"}`,
			trackErr:       domain.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"user not found"}`,
			expectedCalls:  1,
		},
		{
			name:           "store failure does not leak details",
			body:           `{"clerkId":"u1"}`,
			trackErr:       errors.New("dial tcp 10.0.0.1:5432: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message":"internal server error"}`,
			expectedCalls:  1,
		},
		{
			name:           "missing clerkId",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"message":"clerkId is required"}`,
		},
		{
			name:           "other user's id",
			body:           `{"clerkId":"u2"}`,
			subject:        "u1",
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"message":"forbidden"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockUsageUsecase{
				TrackFunc: func(ctx context.Context, clerkID string) (usecase.Status, error) {
					return usecase.Status{}, tt.trackErr
				},
			}
			h := NewUsageHandler(mockUC)
			router := gin.New()
			router.POST("/usage/track", withSubject(tt.subject), h.Track)

			req, _ := http.NewRequest(http.MethodPost, "/usage/track", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			assert.Equal(t, tt.expectedCalls, mockUC.TrackCalls)
		})
	}
}

func TestUsageHandler_Status(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         usecase.Status
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "free plan",
			status:         usecase.Status{Plan: entity.PlanFree, TodayCount: 5, Remaining: 0},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"subscriptionPlan":"Free","todayCount":5,"remainingCount":0}`,
		},
		{
			name:           "paid plan",
			status:         usecase.Status{Plan: entity.PlanPro, Unlimited: true},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"subscriptionPlan":"Pro","todayCount":0,"remainingCount":"unlimited"}`,
		},
		{
			name:           "not found",
			err:            domain.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message":"user not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUsageHandler(&mockUsageUsecase{
				StatusFunc: func(ctx context.Context, clerkID string) (usecase.Status, error) { return tt.status, tt.err },
			})
			router := gin.New()
			router.GET("/usage/status/:clerkId", func(c *gin.Context) { h.Status(c, c.Param("clerkId")) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/usage/status/u1", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// withSubject simulates the auth middleware by putting a token subject in the context.
func withSubject(sub string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sub != "" {
			c.Set(jwtmw.ContextClerkID, sub)
		}
		c.Next()
	}
}
