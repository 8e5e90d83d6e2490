package redeempoints

import (
	"bytes"
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

	"github.com/magabrotheeeer/benefit-ledger/internal/services/entitlement"
)

// MockService реализует интерфейс redeempoints.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) RedeemPoints(ctx context.Context, subscriberID string, amount int) (int, error) {
	args := m.Called(ctx, subscriberID, amount)
	return args.Int(0), args.Error(1)
}

func TestRedeemPointsHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное списание баллов",
			body: `{"patientId":"user-1","pointsToRedeem":20}`,
			setupMock: func(m *MockService) {
				m.On("RedeemPoints", mock.Anything, "user-1", 20).Return(30, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"points":30}`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"patientId":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "нулевое количество баллов отклоняется валидатором",
			body:           `{"patientId":"user-1","pointsToRedeem":0}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "недостаточно баллов",
			body: `{"patientId":"user-1","pointsToRedeem":100}`,
			setupMock: func(m *MockService) {
				m.On("RedeemPoints", mock.Anything, "user-1", 100).
					Return(0, fmt.Errorf("balance: %w", entitlement.ErrInsufficientBalance))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"insufficient balance"}`,
		},
		{
			name: "подписчик не найден",
			body: `{"patientId":"ghost","pointsToRedeem":10}`,
			setupMock: func(m *MockService) {
				m.On("RedeemPoints", mock.Anything, "ghost", 10).
					Return(0, fmt.Errorf("subscriber: %w", entitlement.ErrSubscriberNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"subscriber not found"}`,
		},
		{
			name: "ошибка сервиса",
			body: `{"patientId":"user-1","pointsToRedeem":10}`,
			setupMock: func(m *MockService) {
				m.On("RedeemPoints", mock.Anything, "user-1", 10).
					Return(0, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not redeem points"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/redeemPoints", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
