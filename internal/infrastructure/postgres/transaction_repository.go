package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del registro autoritativo de transacciones
// (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Record persiste la cabecera y sus líneas; devuelve el registro canónico.
func (r *TransactionRepo) Record(tx *entity.Transaction) (*entity.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transactions (id, timestamp, total_value, total_items, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.Timestamp, tx.TotalValue, tx.TotalItems, tx.Status, tx.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("transaction ya registrada: %w", err)
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	itemQuery := `
		INSERT INTO transaction_items (id, transaction_id, item_code, item_name, quantity, unit_price, total_price, supplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, it := range tx.Items {
		_, err := r.q.Exec(context.Background(), itemQuery,
			uuid.New().String(), tx.ID, nullIfEmpty(it.ItemCode), it.ItemName,
			it.Quantity, it.UnitPrice, it.TotalPrice, it.Supplier,
		)
		if err != nil {
			return nil, fmt.Errorf("insert transaction item: %w", err)
		}
	}

	canonical := *tx
	canonical.Local = false
	return &canonical, nil
}

// List devuelve las transacciones más recientes con sus líneas.
func (r *TransactionRepo) List(limit, offset int) ([]*entity.Transaction, error) {
	query := `
		SELECT id, timestamp, total_value, total_items, status, created_at
		FROM transactions ORDER BY timestamp DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*entity.Transaction
	for rows.Next() {
		var t entity.Transaction
		if err := rows.Scan(&t.ID, &t.Timestamp, &t.TotalValue, &t.TotalItems, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range txs {
		items, err := r.listItems(t.ID)
		if err != nil {
			return nil, err
		}
		t.Items = items
	}
	return txs, nil
}

// GetByID obtiene una transacción completa. Devuelve (nil, nil) si no existe.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `
		SELECT id, timestamp, total_value, total_items, status, created_at
		FROM transactions WHERE id = $1`
	var t entity.Transaction
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&t.ID, &t.Timestamp, &t.TotalValue, &t.TotalItems, &t.Status, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	items, err := r.listItems(t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return &t, nil
}

func (r *TransactionRepo) listItems(transactionID string) ([]entity.TransactionItem, error) {
	query := `
		SELECT item_code, item_name, quantity, unit_price, total_price, supplier
		FROM transaction_items WHERE transaction_id = $1`
	rows, err := r.q.Query(context.Background(), query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	defer rows.Close()

	var items []entity.TransactionItem
	for rows.Next() {
		var it entity.TransactionItem
		var code *string
		if err := rows.Scan(&code, &it.ItemName, &it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.Supplier); err != nil {
			return nil, fmt.Errorf("scan transaction item: %w", err)
		}
		if code != nil {
			it.ItemCode = *code
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
