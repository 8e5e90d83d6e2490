package paymentprovider

// Запрос на создание hosted checkout-сессии. Customer передаётся, если у
// подписчика уже есть идентификатор клиента у провайдера. Metadata
// возвращается провайдером в событии checkout.session.completed и несёт
// внутренние идентификаторы пользователя и плана.
type CreateCheckoutSessionRequest struct {
	PriceRef   string            `json:"price"`
	Mode       string            `json:"mode"`
	Customer   string            `json:"customer,omitempty"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Ответ провайдера на создание checkout-сессии
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Запрос на создание сессии личного кабинета
type CreatePortalSessionRequest struct {
	Customer  string `json:"customer"`
	ReturnURL string `json:"return_url"`
}

// Ответ провайдера на создание сессии личного кабинета
type PortalSession struct {
	URL string `json:"url"`
}
