package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nonncal/ono-tebe-nado/internal/model"
)

var ErrLotNotFound = errors.New("lot not found")

// ILotrepo is the Postgres-backed catalog source. It serves the same
// interface as the upstream API client for deployments that run the
// storefront straight against the lot database.
type ILotrepo interface {
	ListLots(ctx context.Context) ([]model.Lot, error)
	GetLot(ctx context.Context, id string) (model.LotDetail, error)
	SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error)
}

type Lotrepo struct {
	pool *pgxpool.Pool
}

func NewLotrepo(pool *pgxpool.Pool) *Lotrepo {
	return &Lotrepo{
		pool: pool,
	}
}

func (lr *Lotrepo) ListLots(ctx context.Context) ([]model.Lot, error) {
	const q = `
		SELECT
			l.id,
			l.title,
			l.about,
			l.description,
			l.image,
			l.status,
			l.datetime,
			l.price,
			l.min_price,
			l.history
		FROM lots l
		ORDER BY l.datetime;
	`

	rows, err := lr.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()

	var lots []model.Lot
	for rows.Next() {
		var lot model.Lot
		if err := rows.Scan(
			&lot.ID,
			&lot.Title,
			&lot.About,
			&lot.Description,
			&lot.Image,
			&lot.Status,
			&lot.Datetime,
			&lot.Price,
			&lot.MinPrice,
			&lot.History,
		); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}

	return lots, nil
}

func (lr *Lotrepo) GetLot(ctx context.Context, id string) (model.LotDetail, error) {
	const q = `
		SELECT
			l.description,
			l.history
		FROM lots l
		WHERE l.id = $1
		LIMIT 1;
	`

	var detail model.LotDetail
	err := lr.pool.QueryRow(ctx, q, id).Scan(&detail.Description, &detail.History)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LotDetail{}, fmt.Errorf("%w: %s", ErrLotNotFound, id)
		}
		return model.LotDetail{}, fmt.Errorf("get lot %s: %w", id, err)
	}

	return detail, nil
}

// SubmitOrder stores the order with its item rows in one transaction and
// returns the generated id and the total over the ordered lots.
func (lr *Lotrepo) SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error) {
	const insertOrder = `
		INSERT INTO orders (
			email,
			phone,
			created_at
		)
		VALUES ($1, $2, NOW())
		RETURNING id;
	`
	const insertItem = `
		INSERT INTO order_items (order_id, lot_id)
		VALUES ($1, $2);
	`
	const sumLots = `
		SELECT COALESCE(SUM(l.price), 0)
		FROM lots l
		WHERE l.id = ANY($1);
	`

	tx, err := lr.pool.Begin(ctx)
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("submit order: %w", err)
	}
	defer tx.Rollback(ctx)

	var result model.OrderResult
	if err := tx.QueryRow(ctx, insertOrder, order.Email, order.Phone).Scan(&result.ID); err != nil {
		return model.OrderResult{}, fmt.Errorf("insert order: %w", err)
	}

	for _, lotID := range order.Items {
		if _, err := tx.Exec(ctx, insertItem, result.ID, lotID); err != nil {
			return model.OrderResult{}, fmt.Errorf("insert order item %s: %w", lotID, err)
		}
	}

	if err := tx.QueryRow(ctx, sumLots, order.Items).Scan(&result.Total); err != nil {
		return model.OrderResult{}, fmt.Errorf("sum order total: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.OrderResult{}, fmt.Errorf("submit order: %w", err)
	}

	return result, nil
}
