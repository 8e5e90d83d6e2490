// Package models содержит структуры данных реестра льгот: каталог планов,
// подписчики, покупки с журналом требований и DTO входящих запросов.
package models

import "time"

// Статусы покупки. Неактивная покупка сохраняет историю требований,
// но подписка у провайдера отменена.
const (
	PurchaseStatusActive   = "active"
	PurchaseStatusInactive = "inactive"
)

// ClaimableItem — услуга плана с месячным лимитом использований.
type ClaimableItem struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

// Plan — запись каталога планов. PriceRef — внешний идентификатор цены
// у платёжного провайдера, по нему события оплаты сопоставляются с планом.
type Plan struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	PriceRef   string          `json:"priceRef"`
	Claimables []ClaimableItem `json:"claimables"`
}

// Subscriber — подписчик сервиса. UID — канонический идентификатор,
// нормализованный на всех границах. CustomerRef — идентификатор клиента
// у платёжного провайдера, Points — баланс бонусных баллов.
type Subscriber struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	CustomerRef string `json:"customerRef,omitempty"`
	Points      int    `json:"points"`
}

// ClaimCounter — счётчик использования одной услуги за месяц.
type ClaimCounter struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// MonthClaims — счётчики услуг одного месяца, ключ — имя услуги.
type MonthClaims map[string]ClaimCounter

// ClaimsLedger — журнал требований покупки, ключ — месяц в формате YYYY-MM.
type ClaimsLedger map[string]MonthClaims

// Purchase — покупка плана. CheckoutSessionID служит ключом идемпотентности
// при повторной доставке события оплаты.
type Purchase struct {
	ID                string       `json:"id"`
	SubscriberUID     string       `json:"subscriberUid"`
	PlanID            string       `json:"planId"`
	PlanName          string       `json:"planName"`
	CustomerRef       string       `json:"customerRef,omitempty"`
	Status            string       `json:"status"`
	CheckoutSessionID string       `json:"checkoutSessionId"`
	CreatedAt         time.Time    `json:"createdAt"`
	Claims            ClaimsLedger `json:"claims"`
}

// ClaimStatus — плоское представление услуги текущего месяца для выдачи
// в API: имя, использовано, лимит.
type ClaimStatus struct {
	Name  string `json:"name"`
	Used  int    `json:"used"`
	Limit int    `json:"limit"`
}

// PurchaseInfo — сообщение о созданной покупке для конвейера уведомлений.
type PurchaseInfo struct {
	Email         string `json:"email"`
	SubscriberUID string `json:"subscriberUid"`
	PlanName      string `json:"planName"`
}

// DummyUseClaimRequest — запрос на списание одной единицы услуги.
type DummyUseClaimRequest struct {
	PatientID string `json:"patientId" validate:"required"`
	ClaimName string `json:"claimName" validate:"required"`
}

// DummyRedeemRequest — запрос на списание баллов.
type DummyRedeemRequest struct {
	PatientID      string `json:"patientId" validate:"required"`
	PointsToRedeem int    `json:"pointsToRedeem" validate:"required,gt=0"`
}

// DummyCheckoutRequest — запрос на создание checkout-сессии. PlanID —
// внешний идентификатор цены плана у провайдера.
type DummyCheckoutRequest struct {
	PlanID string `json:"planId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
}

// DummyPortalRequest — запрос на создание сессии личного кабинета.
type DummyPortalRequest struct {
	UserID string `json:"userId" validate:"required"`
	PlanID string `json:"planId" validate:"required"`
}

// DummyRegisterRequest — запрос на регистрацию подписчика.
type DummyRegisterRequest struct {
	UserID string `json:"userId" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
}
