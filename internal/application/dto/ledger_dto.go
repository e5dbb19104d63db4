package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockItemDTO es la fila del libro de stock para la UI, con los derivados
// recalculados desde promedios y cantidad.
type StockItemDTO struct {
	ID              string          `json:"id"`
	ItemCode        string          `json:"item_code,omitempty"`
	Name            string          `json:"name"`
	AvgCostPrice    decimal.Decimal `json:"avg_cost_price"`
	AvgSellingPrice decimal.Decimal `json:"avg_selling_price"`
	CurrentStock    int64           `json:"current_stock"`
	StockValue      decimal.Decimal `json:"stock_value"`
	ProjectedProfit decimal.Decimal `json:"projected_profit"`
	ReorderLevel    int64           `json:"reorder_level"`
	Status          string          `json:"status"`
	LastStockUpdate time.Time       `json:"last_stock_update"`
}
