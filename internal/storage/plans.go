package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/benefit-ledger/internal/models"
)

// GetPlan возвращает план каталога по его идентификатору.
func (s *Storage) GetPlan(ctx context.Context, id string) (*models.Plan, error) {
	const op = "storage.GetPlan"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price_ref, claimables
			  FROM plans WHERE id = $1`
	return s.scanPlan(s.DB.QueryRowContext(ctx, query, id), op)
}

// GetPlanByPriceRef возвращает план по внешнему идентификатору цены.
// Используется при создании checkout-сессии, где клиент передаёт
// идентификатор продукта провайдера, а не внутренний ID плана.
func (s *Storage) GetPlanByPriceRef(ctx context.Context, priceRef string) (*models.Plan, error) {
	const op = "storage.GetPlanByPriceRef"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price_ref, claimables
			  FROM plans WHERE price_ref = $1`
	return s.scanPlan(s.DB.QueryRowContext(ctx, query, priceRef), op)
}

// ListPlans возвращает весь каталог планов.
func (s *Storage) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	const op = "storage.ListPlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, price_ref, claimables
			  FROM plans
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Plan
	for rows.Next() {
		var item models.Plan
		var claimables []byte
		if err := rows.Scan(&item.ID, &item.Name, &item.PriceRef, &claimables); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := json.Unmarshal(claimables, &item.Claimables); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Storage) scanPlan(row *sql.Row, op string) (*models.Plan, error) {
	var result models.Plan
	var claimables []byte
	if err := row.Scan(&result.ID, &result.Name, &result.PriceRef, &claimables); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(claimables, &result.Claimables); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
