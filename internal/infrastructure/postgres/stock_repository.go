package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

const stockColumns = `id, item_code, name, avg_cost_price, avg_selling_price,
	       current_stock, stock_value, projected_profit, reorder_level,
	       last_stock_update, created_at`

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

func scanStockItem(row pgx.Row) (*entity.StockItem, error) {
	var s entity.StockItem
	var code *string
	err := row.Scan(
		&s.ID, &code, &s.Name, &s.AvgCostPrice, &s.AvgSellingPrice,
		&s.CurrentStock, &s.StockValue, &s.ProjectedProfit, &s.ReorderLevel,
		&s.LastStockUpdate, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if code != nil {
		s.ItemCode = *code
	}
	return &s, nil
}

// LookupByCode busca por código canónico. Devuelve (nil, nil) si no existe.
func (r *StockRepo) LookupByCode(code string) (*entity.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE item_code = $1`
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup stock by code: %w", err)
	}
	return item, nil
}

// LookupByName busca por nombre de artículo. Devuelve (nil, nil) si no existe.
func (r *StockRepo) LookupByName(name string) (*entity.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE name = $1`
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup stock by name: %w", err)
	}
	return item, nil
}

// List devuelve todos los registros de stock ordenados por nombre.
func (r *StockRepo) List() ([]*entity.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items ORDER BY name`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var items []*entity.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// LowStock consulta la vista dedicada low_stock_view. Si la vista no fue
// creada devuelve domain.ErrUnavailable para que el caller degrade a
// List() + filtro en el cliente.
func (r *StockRepo) LowStock() ([]*entity.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM low_stock_view ORDER BY current_stock`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, domain.ErrUnavailable
		}
		return nil, fmt.Errorf("low stock query: %w", err)
	}
	defer rows.Close()

	var items []*entity.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan low stock: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
// Devuelve (nil, nil) si la identidad no existe.
func (r *StockRepo) GetForUpdate(id string) (*entity.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_items WHERE id = $1 FOR UPDATE`
	item, err := scanStockItem(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return item, nil
}

// Create inserta un registro de stock nuevo.
func (r *StockRepo) Create(item *entity.StockItem) error {
	query := `
		INSERT INTO stock_items (id, item_code, name, avg_cost_price, avg_selling_price,
		                         current_stock, stock_value, projected_profit, reorder_level,
		                         last_stock_update, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, nullIfEmpty(item.ItemCode), item.Name,
		item.AvgCostPrice, item.AvgSellingPrice,
		item.CurrentStock, item.StockValue, item.ProjectedProfit,
		item.ReorderLevel, item.LastStockUpdate, item.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("stock item ya existe: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert stock item: %w", err)
	}
	return nil
}

// Update escribe el registro completo por identidad conocida.
func (r *StockRepo) Update(item *entity.StockItem) error {
	query := `
		UPDATE stock_items
		SET item_code = COALESCE($2, item_code),
		    name = $3,
		    avg_cost_price = $4,
		    avg_selling_price = $5,
		    current_stock = $6,
		    stock_value = $7,
		    projected_profit = $8,
		    reorder_level = $9,
		    last_stock_update = $10
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, nullIfEmpty(item.ItemCode), item.Name,
		item.AvgCostPrice, item.AvgSellingPrice,
		item.CurrentStock, item.StockValue, item.ProjectedProfit,
		item.ReorderLevel, item.LastStockUpdate,
	)
	if err != nil {
		return fmt.Errorf("update stock item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
