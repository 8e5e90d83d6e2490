package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/benefit-ledger/internal/models"
)

// GetSubscriber возвращает подписчика по каноническому идентификатору.
func (s *Storage) GetSubscriber(ctx context.Context, uid string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, COALESCE(email, ''), COALESCE(customer_ref, ''), points
			  FROM subscribers WHERE uid = $1`
	row := s.DB.QueryRowContext(ctx, query, uid)

	var result models.Subscriber
	if err := row.Scan(&result.UID, &result.Email, &result.CustomerRef, &result.Points); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpsertSubscriber создаёт подписчика либо обновляет его email.
func (s *Storage) UpsertSubscriber(ctx context.Context, uid, email string) error {
	const op = "storage.UpsertSubscriber"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscribers (uid, email)
			  VALUES ($1, NULLIF($2, ''))
			  ON CONFLICT (uid) DO UPDATE
			  SET email = COALESCE(NULLIF(EXCLUDED.email, ''), subscribers.email)`
	if _, err := s.DB.ExecContext(ctx, query, uid, email); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSubscriberCustomerRef записывает внешний идентификатор клиента
// у платёжного провайдера и возвращает количество изменённых строк.
func (s *Storage) SetSubscriberCustomerRef(ctx context.Context, uid, customerRef string) (int, error) {
	const op = "storage.SetSubscriberCustomerRef"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers SET customer_ref = $2 WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, uid, customerRef)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// DeductPoints атомарно списывает amount баллов подписчика. Условие
// points >= amount входит в сам UPDATE, поэтому два конкурентных списания
// не могут вместе увести баланс в минус: проигравший получит 0 строк.
func (s *Storage) DeductPoints(ctx context.Context, uid string, amount int) (int, error) {
	const op = "storage.DeductPoints"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers
			  SET points = points - $2
			  WHERE uid = $1
			    AND points >= $2`
	result, err := s.DB.ExecContext(ctx, query, uid, amount)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
