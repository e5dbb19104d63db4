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

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo implementación de SupplierRepository (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// UpsertByName inserta el proveedor o actualiza su contacto si el nombre ya
// existe, y devuelve el registro resultante.
func (r *SupplierRepo) UpsertByName(supplier *entity.Supplier) (*entity.Supplier, error) {
	if supplier.ID == "" {
		supplier.ID = uuid.New().String()
	}
	query := `
		INSERT INTO suppliers (id, name, contact, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (name)
		DO UPDATE SET contact = COALESCE(NULLIF(EXCLUDED.contact, ''), suppliers.contact),
		              updated_at = now()
		RETURNING id, name, contact, created_at, updated_at`
	var s entity.Supplier
	var contact *string
	err := r.q.QueryRow(context.Background(), query,
		supplier.ID, supplier.Name, supplier.Contact,
	).Scan(&s.ID, &s.Name, &contact, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert supplier: %w", err)
	}
	if contact != nil {
		s.Contact = *contact
	}
	return &s, nil
}

// GetByName obtiene un proveedor por nombre. Devuelve (nil, nil) si no existe.
func (r *SupplierRepo) GetByName(name string) (*entity.Supplier, error) {
	query := `SELECT id, name, contact, created_at, updated_at FROM suppliers WHERE name = $1`
	var s entity.Supplier
	var contact *string
	err := r.q.QueryRow(context.Background(), query, name).Scan(
		&s.ID, &s.Name, &contact, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	if contact != nil {
		s.Contact = *contact
	}
	return &s, nil
}

// List devuelve los proveedores registrados, paginados.
func (r *SupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) {
	query := `
		SELECT id, name, contact, created_at, updated_at
		FROM suppliers ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		var contact *string
		if err := rows.Scan(&s.ID, &s.Name, &contact, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		if contact != nil {
			s.Contact = *contact
		}
		suppliers = append(suppliers, &s)
	}
	return suppliers, rows.Err()
}
