package checkoutcreate

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

	"github.com/magabrotheeeer/benefit-ledger/internal/paymentprovider"
	"github.com/magabrotheeeer/benefit-ledger/internal/services/checkout"
)

// MockService реализует интерфейс checkoutcreate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) CreateCheckoutSession(ctx context.Context, planID, userID string) (*paymentprovider.CheckoutSession, error) {
	args := m.Called(ctx, planID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CheckoutSession), args.Error(1)
}

func TestCheckoutCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное создание сессии",
			body: `{"planId":"price_basic","userId":"user-1"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "price_basic", "user-1").
					Return(&paymentprovider.CheckoutSession{
						ID:  "cs_123",
						URL: "https://pay.example.com/cs_123",
					}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"id":"cs_123"`,
		},
		{
			name:           "некорректный JSON",
			body:           `{"planId":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "отсутствует userId",
			body:           `{"planId":"price_basic"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"status":"Error"`,
		},
		{
			name: "неизвестный план",
			body: `{"planId":"price_ghost","userId":"user-1"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "price_ghost", "user-1").
					Return(nil, fmt.Errorf("plan: %w", checkout.ErrPlanNotFound))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"Invalid plan"}`,
		},
		{
			name: "подписчик не найден",
			body: `{"planId":"price_basic","userId":"ghost"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "price_basic", "ghost").
					Return(nil, fmt.Errorf("subscriber: %w", checkout.ErrSubscriberNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"subscriber not found"}`,
		},
		{
			name: "ошибка провайдера",
			body: `{"planId":"price_basic","userId":"user-1"}`,
			setupMock: func(m *MockService) {
				m.On("CreateCheckoutSession", mock.Anything, "price_basic", "user-1").
					Return(nil, errors.New("provider timeout"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create checkout session"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
