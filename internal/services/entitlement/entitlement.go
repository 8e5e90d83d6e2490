// Package entitlement содержит бизнес-логику реестра требований:
// обработку событий платёжного провайдера, агрегированное чтение требований
// текущего месяца, списание одной единицы услуги и списание баллов.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/benefit-ledger/internal/lib/identity"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/monthkey"
	"github.com/magabrotheeeer/benefit-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/benefit-ledger/internal/models"
	"github.com/magabrotheeeer/benefit-ledger/internal/storage"
)

// Repository определяет методы хранилища, используемые сервисом.
type Repository interface {
	// GetPlan возвращает план каталога по ID.
	GetPlan(ctx context.Context, id string) (*models.Plan, error)
	// GetSubscriber возвращает подписчика по каноническому UID.
	GetSubscriber(ctx context.Context, uid string) (*models.Subscriber, error)
	// UpsertSubscriber создаёт подписчика либо обновляет его email.
	UpsertSubscriber(ctx context.Context, uid, email string) error
	// SetSubscriberCustomerRef записывает внешний идентификатор клиента.
	SetSubscriberCustomerRef(ctx context.Context, uid, customerRef string) (int, error)
	// CreatePurchase вставляет покупку идемпотентно по checkout-сессии.
	CreatePurchase(ctx context.Context, purchase models.Purchase) error
	// ListPurchases возвращает покупки подписчика, новые первыми.
	ListPurchases(ctx context.Context, subscriberUID string) ([]*models.Purchase, error)
	// UpdatePurchaseStatusByCustomerRef меняет статус покупок клиента.
	UpdatePurchaseStatusByCustomerRef(ctx context.Context, customerRef, status string) (int, error)
	// IncrementClaim атомарно увеличивает used с проверкой лимита.
	IncrementClaim(ctx context.Context, purchaseID, monthKey, claimName string) (int, error)
	// DeductPoints атомарно списывает баллы с проверкой баланса.
	DeductPoints(ctx context.Context, uid string, amount int) (int, error)
}

// EventsPublisher публикует доменные события для конвейера уведомлений.
type EventsPublisher interface {
	PublishPurchaseCreated(info models.PurchaseInfo) error
}

// CheckoutCompletedEvent — данные события успешной оплаты.
type CheckoutCompletedEvent struct {
	SessionID   string
	UserID      string
	PlanID      string
	CustomerRef string
}

// SubscriptionEvent — данные события изменения подписки у провайдера.
type SubscriptionEvent struct {
	CustomerRef       string
	CancelAtPeriodEnd bool
}

// Service реализует операции реестра требований.
type Service struct {
	repo   Repository
	events EventsPublisher
	log    *slog.Logger
}

// New создает новый экземпляр Service. events может быть nil, если
// конвейер уведомлений не настроен.
func New(repo Repository, events EventsPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// HandleCheckoutCompleted создаёт покупку по событию успешной оплаты:
// копирует услуги плана в карту текущего месяца с used = 0 и записывает
// внешний идентификатор клиента у подписчика. Отсутствие плана или
// подписчика — аномалия данных: ошибка возвращается для логирования,
// но webhook всё равно подтверждает приём.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, event CheckoutCompletedEvent) error {
	uid := identity.Normalize(event.UserID)
	if uid == "" || event.PlanID == "" {
		return fmt.Errorf("checkout event missing user or plan: %w", ErrInvalidArgument)
	}

	plan, err := s.repo.GetPlan(ctx, event.PlanID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("plan %q: %w", event.PlanID, ErrPlanNotFound)
		}
		return err
	}
	subscriber, err := s.repo.GetSubscriber(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("subscriber %q: %w", uid, ErrSubscriberNotFound)
		}
		return err
	}

	if event.CustomerRef != "" {
		if _, err := s.repo.SetSubscriberCustomerRef(ctx, uid, event.CustomerRef); err != nil {
			return err
		}
	}

	month := models.MonthClaims{}
	for _, item := range plan.Claimables {
		month[item.Name] = models.ClaimCounter{Used: 0, Limit: item.Limit}
	}
	sessionID := event.SessionID
	if sessionID == "" {
		// Без идентификатора сессии дедупликация невозможна,
		// вставка вырождается в обычный append.
		sessionID = uuid.New().String()
	}
	purchase := models.Purchase{
		ID:                uuid.New().String(),
		SubscriberUID:     uid,
		PlanID:            plan.ID,
		PlanName:          plan.Name,
		CustomerRef:       event.CustomerRef,
		Status:            models.PurchaseStatusActive,
		CheckoutSessionID: sessionID,
		CreatedAt:         time.Now().UTC(),
		Claims: models.ClaimsLedger{
			monthkey.Current(): month,
		},
	}

	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		if errors.Is(err, storage.ErrPurchaseExists) {
			s.log.Info("duplicate checkout event ignored",
				slog.String("checkout_session_id", sessionID))
			return nil
		}
		return err
	}
	s.log.Info("purchase created",
		slog.String("subscriber_uid", uid),
		slog.String("plan_id", plan.ID),
		slog.String("purchase_id", purchase.ID))

	if s.events != nil {
		info := models.PurchaseInfo{
			Email:         subscriber.Email,
			SubscriberUID: uid,
			PlanName:      plan.Name,
		}
		if err := s.events.PublishPurchaseCreated(info); err != nil {
			s.log.Warn("failed to publish purchase event", sl.Err(err))
		}
	}
	return nil
}

// HandleSubscriptionUpdated меняет статус покупки по внешнему
// идентификатору клиента: inactive при cancel_at_period_end, иначе active.
func (s *Service) HandleSubscriptionUpdated(ctx context.Context, event SubscriptionEvent) error {
	if event.CustomerRef == "" {
		return fmt.Errorf("subscription event missing customer ref: %w", ErrInvalidArgument)
	}

	status := models.PurchaseStatusActive
	if event.CancelAtPeriodEnd {
		status = models.PurchaseStatusInactive
	}
	updated, err := s.repo.UpdatePurchaseStatusByCustomerRef(ctx, event.CustomerRef, status)
	if err != nil {
		return err
	}
	if updated == 0 {
		s.log.Info("no purchase matches customer ref, update skipped",
			slog.String("customer_ref", event.CustomerRef))
		return nil
	}
	s.log.Info("purchase status updated",
		slog.String("customer_ref", event.CustomerRef),
		slog.String("status", status))
	return nil
}

// HandleSubscriptionDeleted помечает покупки клиента неактивными.
func (s *Service) HandleSubscriptionDeleted(ctx context.Context, event SubscriptionEvent) error {
	if event.CustomerRef == "" {
		return fmt.Errorf("subscription event missing customer ref: %w", ErrInvalidArgument)
	}

	updated, err := s.repo.UpdatePurchaseStatusByCustomerRef(ctx, event.CustomerRef, models.PurchaseStatusInactive)
	if err != nil {
		return err
	}
	if updated == 0 {
		s.log.Info("no purchase matches customer ref, deletion skipped",
			slog.String("customer_ref", event.CustomerRef))
		return nil
	}
	s.log.Info("purchase deactivated after subscription deletion",
		slog.String("customer_ref", event.CustomerRef))
	return nil
}

// GetClaimsAndPoints возвращает плоский список услуг текущего месяца по
// всем покупкам подписчика и его баланс баллов. Операция только читает:
// отсутствующий в покупке месяц трактуется как пустой и не создаётся.
func (s *Service) GetClaimsAndPoints(ctx context.Context, subscriberID string) ([]models.ClaimStatus, int, error) {
	uid := identity.Normalize(subscriberID)
	if uid == "" {
		return nil, 0, fmt.Errorf("empty subscriber id: %w", ErrInvalidArgument)
	}

	subscriber, err := s.repo.GetSubscriber(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, fmt.Errorf("subscriber %q: %w", uid, ErrSubscriberNotFound)
		}
		return nil, 0, err
	}

	purchases, err := s.repo.ListPurchases(ctx, uid)
	if err != nil {
		return nil, 0, err
	}

	month := monthkey.Current()
	claims := make([]models.ClaimStatus, 0)
	for _, purchase := range purchases {
		for name, counter := range purchase.Claims[month] {
			claims = append(claims, models.ClaimStatus{
				Name:  name,
				Used:  counter.Used,
				Limit: counter.Limit,
			})
		}
	}
	return claims, subscriber.Points, nil
}

// UseClaim списывает одну единицу услуги: находит первую покупку, в карте
// текущего месяца которой есть услуга, и выполняет атомарный инкремент
// с проверкой лимита на стороне хранилища. Ноль изменённых строк после
// успешного поиска означает, что лимит выбран конкурентным запросом.
func (s *Service) UseClaim(ctx context.Context, subscriberID, claimName string) error {
	uid := identity.Normalize(subscriberID)
	if uid == "" || claimName == "" {
		return fmt.Errorf("empty subscriber id or claim name: %w", ErrInvalidArgument)
	}

	purchases, err := s.repo.ListPurchases(ctx, uid)
	if err != nil {
		return err
	}

	month := monthkey.Current()
	for _, purchase := range purchases {
		counter, ok := purchase.Claims[month][claimName]
		if !ok {
			continue
		}
		if counter.Used+1 > counter.Limit {
			return fmt.Errorf("claim %q in purchase %s: %w", claimName, purchase.ID, ErrLimitExceeded)
		}
		updated, err := s.repo.IncrementClaim(ctx, purchase.ID, month, claimName)
		if err != nil {
			return err
		}
		if updated == 0 {
			return fmt.Errorf("claim %q in purchase %s: %w", claimName, purchase.ID, ErrLimitExceeded)
		}
		s.log.Info("claim used",
			slog.String("subscriber_uid", uid),
			slog.String("claim", claimName),
			slog.String("purchase_id", purchase.ID))
		return nil
	}
	return fmt.Errorf("claim %q: %w", claimName, ErrClaimNotFound)
}

// RedeemPoints списывает amount баллов подписчика. Проверка баланса и
// списание выполняются одним условным UPDATE; возвращает остаток баллов.
func (s *Service) RedeemPoints(ctx context.Context, subscriberID string, amount int) (int, error) {
	uid := identity.Normalize(subscriberID)
	if uid == "" {
		return 0, fmt.Errorf("empty subscriber id: %w", ErrInvalidArgument)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("non-positive amount %d: %w", amount, ErrInvalidArgument)
	}

	subscriber, err := s.repo.GetSubscriber(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, fmt.Errorf("subscriber %q: %w", uid, ErrSubscriberNotFound)
		}
		return 0, err
	}
	if subscriber.Points < amount {
		return 0, fmt.Errorf("balance %d, requested %d: %w", subscriber.Points, amount, ErrInsufficientBalance)
	}

	updated, err := s.repo.DeductPoints(ctx, uid, amount)
	if err != nil {
		return 0, err
	}
	if updated == 0 {
		// Баланс успел уменьшиться между чтением и списанием.
		return 0, fmt.Errorf("balance changed concurrently: %w", ErrInsufficientBalance)
	}
	s.log.Info("points redeemed",
		slog.String("subscriber_uid", uid),
		slog.Int("amount", amount))
	return subscriber.Points - amount, nil
}

// Register создаёт подписчика либо обновляет его email.
func (s *Service) Register(ctx context.Context, userID, email string) error {
	uid := identity.Normalize(userID)
	if uid == "" {
		return fmt.Errorf("empty subscriber id: %w", ErrInvalidArgument)
	}
	return s.repo.UpsertSubscriber(ctx, uid, email)
}
