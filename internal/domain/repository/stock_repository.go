package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// StockRepository define el puerto de persistencia de los registros de stock.
// Lookup por código o nombre devuelve (nil, nil) si no existe: no-encontrado
// es un resultado válido, no un error. GetForUpdate bloquea la fila (SELECT
// FOR UPDATE) y se usa dentro de transacciones para que la lectura-cálculo-
// escritura del promedio ponderado sea atómica frente a escrituras concurrentes.
type StockRepository interface {
	LookupByCode(code string) (*entity.StockItem, error)
	LookupByName(name string) (*entity.StockItem, error)
	List() ([]*entity.StockItem, error)
	// LowStock consulta la vista dedicada de bajo stock. Puede devolver
	// domain.ErrUnavailable si la vista no existe; el caller debe degradar a
	// List() + filtro con la misma regla de clasificación.
	LowStock() ([]*entity.StockItem, error)
	GetForUpdate(id string) (*entity.StockItem, error)
	Create(item *entity.StockItem) error
	Update(item *entity.StockItem) error
}
