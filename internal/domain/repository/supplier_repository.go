package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// SupplierRepository define el puerto de persistencia para proveedores,
// deduplicados por nombre.
type SupplierRepository interface {
	// UpsertByName crea el proveedor si el nombre no existe o actualiza su
	// contacto si ya existe. Devuelve el registro resultante.
	UpsertByName(supplier *entity.Supplier) (*entity.Supplier, error)
	GetByName(name string) (*entity.Supplier, error)
	List(limit, offset int) ([]*entity.Supplier, error)
}
