package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Nivel de reorden por defecto y umbral crítico fijo para alertas de stock.
const (
	DefaultReorderLevel int64 = 5
	CriticalStockLevel  int64 = 2
)

// Estados de stock para la vista de alertas.
const (
	StockStatusNormal   = "normal"
	StockStatusLow      = "low"
	StockStatusCritical = "critical"
)

// StockItem representa el registro persistente de un artículo del inventario.
// Los promedios de costo y venta son ponderados por cantidad; StockValue y
// ProjectedProfit son derivados y se recalculan en cada mutación, nunca se
// almacenan de forma independiente.
type StockItem struct {
	ID              string // identidad asignada por el almacén
	ItemCode        string // código canónico asignado externamente (puede estar vacío)
	Name            string
	AvgCostPrice    decimal.Decimal
	AvgSellingPrice decimal.Decimal
	CurrentStock    int64 // siempre >= 0
	StockValue      decimal.Decimal
	ProjectedProfit decimal.Decimal
	ReorderLevel    int64
	LastStockUpdate time.Time
	CreatedAt       time.Time
}

// Recompute recalcula StockValue y ProjectedProfit a partir de los promedios
// y la cantidad en existencia.
func (s *StockItem) Recompute() {
	qty := decimal.NewFromInt(s.CurrentStock)
	s.StockValue = s.AvgCostPrice.Mul(qty)
	s.ProjectedProfit = s.AvgSellingPrice.Sub(s.AvgCostPrice).Mul(qty)
}

// StockStatus clasifica el artículo según su existencia actual frente al nivel
// de reorden. La misma regla se usa en la consulta dedicada de alertas y en el
// filtro de respaldo del cliente.
func (s *StockItem) StockStatus() string {
	reorder := s.ReorderLevel
	if reorder <= 0 {
		reorder = DefaultReorderLevel
	}
	switch {
	case s.CurrentStock <= CriticalStockLevel:
		return StockStatusCritical
	case s.CurrentStock <= reorder:
		return StockStatusLow
	default:
		return StockStatusNormal
	}
}
