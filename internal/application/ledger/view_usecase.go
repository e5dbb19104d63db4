package ledger

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// ViewUseCase deriva la vista del libro de stock: valor almacenado, utilidad
// proyectada y clasificación de bajo stock. Es de solo lectura y función pura
// de los registros persistidos.
type ViewUseCase struct {
	stockRepo repository.StockRepository
	log       *logger.Logger
}

// NewViewUseCase construye el caso de uso.
func NewViewUseCase(stockRepo repository.StockRepository, log *logger.Logger) *ViewUseCase {
	return &ViewUseCase{stockRepo: stockRepo, log: log}
}

// Ledger devuelve todos los registros con los campos derivados recalculados de
// forma defensiva: el almacén puede ir rezagado frente a la fórmula.
func (uc *ViewUseCase) Ledger() ([]dto.StockItemDTO, error) {
	items, err := uc.stockRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toDTO(item))
	}
	return out, nil
}

// LowStockAlerts consulta primero la vista dedicada de bajo stock; si no está
// disponible degrada a la lista completa filtrada en el cliente con la misma
// regla de clasificación, de modo que ambos caminos marquen idéntico conjunto.
func (uc *ViewUseCase) LowStockAlerts() ([]dto.StockItemDTO, error) {
	items, err := uc.stockRepo.LowStock()
	if err != nil {
		if !errors.Is(err, domain.ErrUnavailable) {
			return nil, err
		}
		uc.log.Warn().Msg("consulta de bajo stock no disponible, filtrando la lista completa")
		all, err := uc.stockRepo.List()
		if err != nil {
			return nil, err
		}
		items = filterLowStock(all)
	}

	out := make([]dto.StockItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toDTO(item))
	}
	return out, nil
}

// filterLowStock aplica en el cliente la misma regla que la vista dedicada.
func filterLowStock(items []*entity.StockItem) []*entity.StockItem {
	low := make([]*entity.StockItem, 0, len(items))
	for _, item := range items {
		if item.StockStatus() != entity.StockStatusNormal {
			low = append(low, item)
		}
	}
	return low
}

// toDTO recalcula los derivados desde sus componentes antes de exponerlos.
func toDTO(item *entity.StockItem) dto.StockItemDTO {
	qty := decimal.NewFromInt(item.CurrentStock)
	stockValue := item.AvgCostPrice.Mul(qty)
	projected := item.AvgSellingPrice.Sub(item.AvgCostPrice).Mul(qty)
	return dto.StockItemDTO{
		ID:              item.ID,
		ItemCode:        item.ItemCode,
		Name:            item.Name,
		AvgCostPrice:    item.AvgCostPrice,
		AvgSellingPrice: item.AvgSellingPrice,
		CurrentStock:    item.CurrentStock,
		StockValue:      stockValue,
		ProjectedProfit: projected,
		ReorderLevel:    item.ReorderLevel,
		Status:          item.StockStatus(),
		LastStockUpdate: item.LastStockUpdate,
	}
}
