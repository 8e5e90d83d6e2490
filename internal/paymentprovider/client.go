// Package paymentprovider реализует клиент внешнего платёжного провайдера:
// создание hosted checkout-сессий и сессий личного кабинета. Провайдер
// используется как внешний коллаборатор, внутренняя логика сервиса от его
// ответов не зависит.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/magabrotheeeer/benefit-ledger/internal/config"
)

type Client struct {
	accountID  string
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент платёжного провайдера
func NewClient(cfg config.PaymentProvider) *Client {
	return &Client{
		accountID:  cfg.AccountID,
		secretKey:  cfg.SecretKey,
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	url := c.apiURL + path
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.accountID + ":" + c.secretKey))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("unexpected status: " + resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

// CreateCheckoutSession отправляет запрос на создание hosted checkout-сессии
func (c *Client) CreateCheckoutSession(ctx context.Context, reqParams CreateCheckoutSessionRequest) (*CheckoutSession, error) {
	req, err := c.newRequest(ctx, "POST", "/checkout/sessions", reqParams)
	if err != nil {
		return nil, err
	}

	var session CheckoutSession
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreatePortalSession отправляет запрос на создание сессии личного кабинета
// для существующего клиента провайдера
func (c *Client) CreatePortalSession(ctx context.Context, reqParams CreatePortalSessionRequest) (*PortalSession, error) {
	req, err := c.newRequest(ctx, "POST", "/billing_portal/sessions", reqParams)
	if err != nil {
		return nil, err
	}

	var session PortalSession
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}
