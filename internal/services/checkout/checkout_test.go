package checkout

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/benefit-ledger/internal/models"
	"github.com/magabrotheeeer/benefit-ledger/internal/paymentprovider"
	"github.com/magabrotheeeer/benefit-ledger/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetPlanByPriceRef(ctx context.Context, priceRef string) (*models.Plan, error) {
	args := m.Called(ctx, priceRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Plan), args.Error(1)
}
func (m *RepoMock) GetSubscriber(ctx context.Context, uid string) (*models.Subscriber, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}
func (m *RepoMock) ListPurchases(ctx context.Context, subscriberUID string) ([]*models.Purchase, error) {
	args := m.Called(ctx, subscriberUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Purchase), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CheckoutSession), args.Error(1)
}
func (m *ProviderMock) CreatePortalSession(ctx context.Context, req paymentprovider.CreatePortalSessionRequest) (*paymentprovider.PortalSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PortalSession), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var testURLs = URLConfig{
	SuccessURL:      "https://app.example.com/success",
	CancelURL:       "https://app.example.com/cancel",
	PortalReturnURL: "https://app.example.com/account",
}

func TestService_CreateCheckoutSession(t *testing.T) {
	plan := &models.Plan{ID: "plan_basic", Name: "basic", PriceRef: "price_basic"}

	tests := []struct {
		name       string
		planID     string
		userID     string
		setupMocks func(r *RepoMock, p *ProviderMock)
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:   "success passes customer ref and metadata",
			planID: "price_basic",
			userID: "user-1",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetPlanByPriceRef", mock.Anything, "price_basic").Return(plan, nil).Once()
				r.On("GetSubscriber", mock.Anything, "user-1").
					Return(&models.Subscriber{UID: "user-1", CustomerRef: "cus_42"}, nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req paymentprovider.CreateCheckoutSessionRequest) bool {
					return req.PriceRef == "price_basic" &&
						req.Mode == "subscription" &&
						req.Customer == "cus_42" &&
						req.SuccessURL == testURLs.SuccessURL &&
						req.Metadata["userId"] == "user-1" &&
						req.Metadata["planId"] == "plan_basic"
				})).Return(&paymentprovider.CheckoutSession{ID: "cs_1", URL: "https://pay/cs_1"}, nil).Once()
			},
		},
		{
			name:   "unknown plan",
			planID: "price_ghost",
			userID: "user-1",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("GetPlanByPriceRef", mock.Anything, "price_ghost").
					Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrPlanNotFound,
		},
		{
			name:   "unknown subscriber",
			planID: "price_basic",
			userID: "ghost",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("GetPlanByPriceRef", mock.Anything, "price_basic").Return(plan, nil).Once()
				r.On("GetSubscriber", mock.Anything, "ghost").Return(nil, storage.ErrNotFound).Once()
			},
			wantErr: ErrSubscriberNotFound,
		},
		{
			name:       "empty user id",
			planID:     "price_basic",
			userID:     "  ",
			setupMocks: func(_ *RepoMock, _ *ProviderMock) {},
			wantErr:    ErrInvalidArgument,
		},
		{
			name:   "provider failure is passed through",
			planID: "price_basic",
			userID: "user-1",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetPlanByPriceRef", mock.Anything, "price_basic").Return(plan, nil).Once()
				r.On("GetSubscriber", mock.Anything, "user-1").
					Return(&models.Subscriber{UID: "user-1"}, nil).Once()
				p.On("CreateCheckoutSession", mock.Anything, mock.Anything).
					Return(nil, errors.New("provider timeout")).Once()
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			svc := New(repo, provider, testURLs, newNoopLogger())
			tt.setupMocks(repo, provider)

			session, err := svc.CreateCheckoutSession(context.Background(), tt.planID, tt.userID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantAnyErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, session)
			}
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestService_CreatePortalSession(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock, p *ProviderMock)
		wantErr    error
	}{
		{
			name: "customer ref taken from matching purchase",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetSubscriber", mock.Anything, "user-1").
					Return(&models.Subscriber{UID: "user-1", CustomerRef: "cus_stale"}, nil).Once()
				r.On("ListPurchases", mock.Anything, "user-1").Return([]*models.Purchase{
					{ID: "p1", PlanID: "plan_basic", CustomerRef: "cus_fresh"},
				}, nil).Once()
				p.On("CreatePortalSession", mock.Anything, paymentprovider.CreatePortalSessionRequest{
					Customer:  "cus_fresh",
					ReturnURL: testURLs.PortalReturnURL,
				}).Return(&paymentprovider.PortalSession{URL: "https://portal/x"}, nil).Once()
			},
		},
		{
			name: "falls back to subscriber customer ref",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetSubscriber", mock.Anything, "user-1").
					Return(&models.Subscriber{UID: "user-1", CustomerRef: "cus_42"}, nil).Once()
				r.On("ListPurchases", mock.Anything, "user-1").
					Return([]*models.Purchase{}, nil).Once()
				p.On("CreatePortalSession", mock.Anything, paymentprovider.CreatePortalSessionRequest{
					Customer:  "cus_42",
					ReturnURL: testURLs.PortalReturnURL,
				}).Return(&paymentprovider.PortalSession{URL: "https://portal/x"}, nil).Once()
			},
		},
		{
			name: "no customer ref anywhere",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("GetSubscriber", mock.Anything, "user-1").
					Return(&models.Subscriber{UID: "user-1"}, nil).Once()
				r.On("ListPurchases", mock.Anything, "user-1").
					Return([]*models.Purchase{}, nil).Once()
			},
			wantErr: ErrNoCustomerRef,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			svc := New(repo, provider, testURLs, newNoopLogger())
			tt.setupMocks(repo, provider)

			session, err := svc.CreatePortalSession(context.Background(), "user-1", "plan_basic")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, session)
			}
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}
