package getclaims

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/benefit-ledger/internal/models"
	"github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
)

// MockService реализует интерфейс getclaims.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) GetClaimsAndPoints(ctx context.Context, subscriberID string) ([]models.ClaimStatus, int, error) {
	args := m.Called(ctx, subscriberID)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.ClaimStatus), args.Int(1), args.Error(2)
}

func TestGetClaimsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное чтение требований и баллов",
			url:  "/getClaims?patientId=user-1",
			setupMock: func(m *MockService) {
				claims := []models.ClaimStatus{
					{Name: "dental", Used: 1, Limit: 2},
					{Name: "checkup", Used: 0, Limit: 1},
				}
				m.On("GetClaimsAndPoints", mock.Anything, "user-1").Return(claims, 70, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"points":70`,
		},
		{
			name:           "отсутствует patientId",
			url:            "/getClaims",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"missing patientId"}`,
		},
		{
			name: "подписчик не найден",
			url:  "/getClaims?patientId=ghost",
			setupMock: func(m *MockService) {
				m.On("GetClaimsAndPoints", mock.Anything, "ghost").
					Return(nil, 0, fmt.Errorf("subscriber: %w", entitlement.ErrSubscriberNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"subscriber not found"}`,
		},
		{
			name: "ошибка сервиса",
			url:  "/getClaims?patientId=user-1",
			setupMock: func(m *MockService) {
				m.On("GetClaimsAndPoints", mock.Anything, "user-1").
					Return(nil, 0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not read claims"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
