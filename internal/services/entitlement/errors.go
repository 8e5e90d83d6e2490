package entitlement

import "errors"

// Ошибки бизнес-логики. Обработчики транслируют их в HTTP-статусы,
// webhook-путь логирует и подтверждает приём независимо от результата.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrSubscriberNotFound  = errors.New("subscriber not found")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrClaimNotFound       = errors.New("claim not found")
	ErrLimitExceeded       = errors.New("claim limit exceeded")
	ErrInsufficientBalance = errors.New("insufficient points balance")
)
