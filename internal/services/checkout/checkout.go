// Package checkout содержит бизнес-логику выпуска hosted-сессий
// платёжного провайдера: checkout-сессии для оплаты плана и сессии
// личного кабинета для управления подпиской.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/benefit-ledger/internal/lib/identity"
	"github.com/magabrotheeeer/benefit-ledger/internal/models"
	"github.com/magabrotheeeer/benefit-ledger/internal/paymentprovider"
	"github.com/magabrotheeeer/benefit-ledger/internal/storage"
)

// Ошибки бизнес-логики выпуска сессий.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrPlanNotFound       = errors.New("plan not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrNoCustomerRef      = errors.New("no customer reference for plan")
)

// Repository определяет методы хранилища, используемые сервисом.
type Repository interface {
	GetPlanByPriceRef(ctx context.Context, priceRef string) (*models.Plan, error)
	GetSubscriber(ctx context.Context, uid string) (*models.Subscriber, error)
	ListPurchases(ctx context.Context, subscriberUID string) ([]*models.Purchase, error)
}

// ProviderClient описывает вызовы платёжного провайдера.
type ProviderClient interface {
	CreateCheckoutSession(ctx context.Context, req paymentprovider.CreateCheckoutSessionRequest) (*paymentprovider.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, req paymentprovider.CreatePortalSessionRequest) (*paymentprovider.PortalSession, error)
}

// URLConfig — адреса возврата для hosted-сессий.
type URLConfig struct {
	SuccessURL      string
	CancelURL       string
	PortalReturnURL string
}

// Service реализует выпуск сессий провайдера.
type Service struct {
	repo     Repository
	provider ProviderClient
	urls     URLConfig
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, provider ProviderClient, urls URLConfig, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		urls:     urls,
		log:      log,
	}
}

// CreateCheckoutSession создаёт hosted checkout-сессию для оплаты плана.
// planID — внешний идентификатор цены плана у провайдера. Существующий
// customer_ref подписчика переиспользуется, чтобы провайдер не плодил
// дубликаты клиентов.
func (s *Service) CreateCheckoutSession(ctx context.Context, planID, userID string) (*paymentprovider.CheckoutSession, error) {
	uid := identity.Normalize(userID)
	if uid == "" || planID == "" {
		return nil, fmt.Errorf("empty plan or user id: %w", ErrInvalidArgument)
	}

	plan, err := s.repo.GetPlanByPriceRef(ctx, planID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("plan %q: %w", planID, ErrPlanNotFound)
		}
		return nil, err
	}
	subscriber, err := s.repo.GetSubscriber(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("subscriber %q: %w", uid, ErrSubscriberNotFound)
		}
		return nil, err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, paymentprovider.CreateCheckoutSessionRequest{
		PriceRef:   plan.PriceRef,
		Mode:       "subscription",
		Customer:   subscriber.CustomerRef,
		SuccessURL: s.urls.SuccessURL,
		CancelURL:  s.urls.CancelURL,
		Metadata: map[string]string{
			"userId": uid,
			"planId": plan.ID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	s.log.Info("checkout session created",
		slog.String("subscriber_uid", uid),
		slog.String("plan_id", plan.ID),
		slog.String("session_id", session.ID))
	return session, nil
}

// CreatePortalSession создаёт сессию личного кабинета. Внешний идентификатор
// клиента берётся из покупки указанного плана, либо из записи подписчика.
func (s *Service) CreatePortalSession(ctx context.Context, userID, planID string) (*paymentprovider.PortalSession, error) {
	uid := identity.Normalize(userID)
	if uid == "" || planID == "" {
		return nil, fmt.Errorf("empty plan or user id: %w", ErrInvalidArgument)
	}

	subscriber, err := s.repo.GetSubscriber(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("subscriber %q: %w", uid, ErrSubscriberNotFound)
		}
		return nil, err
	}

	customerRef := ""
	purchases, err := s.repo.ListPurchases(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, purchase := range purchases {
		if purchase.PlanID == planID && purchase.CustomerRef != "" {
			customerRef = purchase.CustomerRef
			break
		}
	}
	if customerRef == "" {
		customerRef = subscriber.CustomerRef
	}
	if customerRef == "" {
		return nil, fmt.Errorf("subscriber %q, plan %q: %w", uid, planID, ErrNoCustomerRef)
	}

	session, err := s.provider.CreatePortalSession(ctx, paymentprovider.CreatePortalSessionRequest{
		Customer:  customerRef,
		ReturnURL: s.urls.PortalReturnURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create portal session: %w", err)
	}
	s.log.Info("portal session created", slog.String("subscriber_uid", uid))
	return session, nil
}
