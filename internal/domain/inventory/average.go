package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// WeightedAverage implementa la lógica de promedio ponderado (servicio de dominio).
// NuevoPromedio = ((StockActual * PrecioActual) + (CantEntrada * PrecioEntrada)) / (StockActual + CantEntrada)
// Con StockActual = 0 el promedio degenera al precio de la entrada.
func WeightedAverage(stockActual int64, precioActual decimal.Decimal, cantEntrada int64, precioEntrada decimal.Decimal) decimal.Decimal {
	prev := decimal.NewFromInt(stockActual)
	add := decimal.NewFromInt(cantEntrada)
	sum := prev.Add(add)
	if sum.LessThanOrEqual(decimal.Zero) {
		return precioEntrada
	}
	num := prev.Mul(precioActual).Add(add.Mul(precioEntrada))
	return num.Div(sum)
}

// ApplyOrderLine fusiona una línea de pedido en el registro de stock: suma la
// cantidad, pondera los promedios de costo y venta, recalcula los derivados y
// sella la fecha de última mutación. El artículo nuevo (CurrentStock = 0) toma
// como promedio el primer precio observado.
func ApplyOrderLine(item *entity.StockItem, line entity.OrderLine, now time.Time) {
	item.AvgCostPrice = WeightedAverage(item.CurrentStock, item.AvgCostPrice, line.Quantity, line.CostPrice)
	item.AvgSellingPrice = WeightedAverage(item.CurrentStock, item.AvgSellingPrice, line.Quantity, line.SellingPrice)
	item.CurrentStock += line.Quantity
	item.Recompute()
	item.LastStockUpdate = now
}
