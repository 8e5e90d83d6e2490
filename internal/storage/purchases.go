package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/benefit-ledger/internal/models"
)

// ErrPurchaseExists возвращается CreatePurchase при повторной доставке
// события оплаты с уже обработанным идентификатором checkout-сессии.
var ErrPurchaseExists = errors.New("purchase already exists")

// CreatePurchase вставляет новую покупку. Вставка идемпотентна по
// checkout_session_id: конфликт означает повторную доставку события.
func (s *Storage) CreatePurchase(ctx context.Context, purchase models.Purchase) error {
	const op = "storage.CreatePurchase"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	claims, err := json.Marshal(purchase.Claims)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO purchases (id, subscriber_uid, plan_id, plan_name,
			      customer_ref, status, checkout_session_id, created_at, claims)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (checkout_session_id) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query,
		purchase.ID, purchase.SubscriberUID, purchase.PlanID, purchase.PlanName,
		purchase.CustomerRef, purchase.Status, purchase.CheckoutSessionID,
		purchase.CreatedAt, claims)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrPurchaseExists)
	}
	return nil
}

// ListPurchases возвращает все покупки подписчика, новые первыми.
func (s *Storage) ListPurchases(ctx context.Context, subscriberUID string) ([]*models.Purchase, error) {
	const op = "storage.ListPurchases"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, subscriber_uid, plan_id, plan_name, customer_ref,
			      status, checkout_session_id, created_at, claims
			  FROM purchases
			  WHERE subscriber_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, subscriberUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Purchase
	for rows.Next() {
		var item models.Purchase
		var claims []byte
		if err := rows.Scan(&item.ID, &item.SubscriberUID, &item.PlanID, &item.PlanName,
			&item.CustomerRef, &item.Status, &item.CheckoutSessionID,
			&item.CreatedAt, &claims); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(claims, &item.Claims); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdatePurchaseStatusByCustomerRef обновляет статус покупок с данным
// внешним идентификатором клиента и возвращает количество изменённых строк.
func (s *Storage) UpdatePurchaseStatusByCustomerRef(ctx context.Context, customerRef, status string) (int, error) {
	const op = "storage.UpdatePurchaseStatusByCustomerRef"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE purchases SET status = $2 WHERE customer_ref = $1`
	result, err := s.DB.ExecContext(ctx, query, customerRef, status)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// IncrementClaim атомарно увеличивает счётчик used одной услуги одного
// месяца одной покупки. Проверка used < limit и сам инкремент выполняются
// одним UPDATE по строке покупки, поэтому два конкурентных списания не
// могут оба пройти проверку лимита: проигравший получит 0 строк.
// Обновляется только одно поле used по JSONB-пути; остальной реестр
// покупки не перезаписывается.
func (s *Storage) IncrementClaim(ctx context.Context, purchaseID, monthKey, claimName string) (int, error) {
	const op = "storage.IncrementClaim"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE purchases
			  SET claims = jsonb_set(claims,
			      ARRAY[$2::text, $3::text, 'used'],
			      to_jsonb((claims #>> ARRAY[$2::text, $3::text, 'used'])::int + 1))
			  WHERE id = $1
			    AND claims #> ARRAY[$2::text, $3::text] IS NOT NULL
			    AND (claims #>> ARRAY[$2::text, $3::text, 'used'])::int
			      < (claims #>> ARRAY[$2::text, $3::text, 'limit'])::int`
	result, err := s.DB.ExecContext(ctx, query, purchaseID, monthKey, claimName)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
