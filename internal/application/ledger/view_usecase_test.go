package ledger_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/ledger"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// stubStockRepo sirve una lista fija y simula la vista dedicada según el modo.
type stubStockRepo struct {
	items      []*entity.StockItem
	lowStock   []*entity.StockItem
	lowErr     error
	listErr    error
	lowCalled  bool
	listCalled bool
}

func (s *stubStockRepo) LookupByCode(string) (*entity.StockItem, error) { return nil, nil }
func (s *stubStockRepo) LookupByName(string) (*entity.StockItem, error) { return nil, nil }
func (s *stubStockRepo) GetForUpdate(string) (*entity.StockItem, error) { return nil, nil }
func (s *stubStockRepo) Create(*entity.StockItem) error                 { return nil }
func (s *stubStockRepo) Update(*entity.StockItem) error                 { return nil }

func (s *stubStockRepo) List() ([]*entity.StockItem, error) {
	s.listCalled = true
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.items, nil
}

func (s *stubStockRepo) LowStock() ([]*entity.StockItem, error) {
	s.lowCalled = true
	if s.lowErr != nil {
		return nil, s.lowErr
	}
	return s.lowStock, nil
}

func item(name string, stock int64, cost, selling string, reorder int64) *entity.StockItem {
	return &entity.StockItem{
		ID:              name,
		Name:            name,
		AvgCostPrice:    dec(cost),
		AvgSellingPrice: dec(selling),
		CurrentStock:    stock,
		ReorderLevel:    reorder,
	}
}

// Inventario sintético que cubre las tres clasificaciones.
func sampleInventory() []*entity.StockItem {
	return []*entity.StockItem{
		item("normal", 20, "10", "15", 5),
		item("bajo", 4, "10", "15", 5),
		item("critico", 1, "10", "15", 5),
		item("agotado", 0, "10", "15", 5),
	}
}

func TestLedger_RecalculaDerivadosDefensivamente(t *testing.T) {
	stale := item("rezagado", 10, "7", "11", 5)
	// Derivados persistidos desalineados con la fórmula.
	stale.StockValue = dec("999")
	stale.ProjectedProfit = dec("-1")
	repo := &stubStockRepo{items: []*entity.StockItem{stale}}

	out, err := ledger.NewViewUseCase(repo, logger.Nop()).Ledger()
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.True(t, dec("70").Equal(out[0].StockValue), "stock_value se recalcula desde los componentes")
	assert.True(t, dec("40").Equal(out[0].ProjectedProfit))
}

func TestLowStockAlerts_VistaDedicada(t *testing.T) {
	inv := sampleInventory()
	repo := &stubStockRepo{items: inv, lowStock: inv[1:]}

	out, err := ledger.NewViewUseCase(repo, logger.Nop()).LowStockAlerts()
	require.NoError(t, err)

	assert.True(t, repo.lowCalled)
	assert.False(t, repo.listCalled, "con la vista disponible no se relee la lista completa")
	assert.Len(t, out, 3)
}

// Con la vista no disponible el filtro en cliente marca exactamente el mismo
// conjunto que marcaría la vista dedicada.
func TestLowStockAlerts_DegradaAlFiltroEnCliente(t *testing.T) {
	repo := &stubStockRepo{items: sampleInventory(), lowErr: domain.ErrUnavailable}

	out, err := ledger.NewViewUseCase(repo, logger.Nop()).LowStockAlerts()
	require.NoError(t, err)
	require.True(t, repo.listCalled, "la degradación debe releer la lista completa")

	names := make([]string, 0, len(out))
	for _, it := range out {
		names = append(names, it.Name)
	}
	assert.ElementsMatch(t, []string{"bajo", "critico", "agotado"}, names)

	for _, it := range out {
		assert.NotEqual(t, entity.StockStatusNormal, it.Status)
	}
}

func TestLowStockAlerts_NivelDeReordenCeroUsaElPorDefecto(t *testing.T) {
	inv := []*entity.StockItem{
		item("sin-reorden-bajo", 4, "1", "2", 0),   // 4 <= 5 por defecto
		item("sin-reorden-normal", 9, "1", "2", 0), // 9 > 5 por defecto
	}
	repo := &stubStockRepo{items: inv, lowErr: domain.ErrUnavailable}

	out, err := ledger.NewViewUseCase(repo, logger.Nop()).LowStockAlerts()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "sin-reorden-bajo", out[0].Name)
}

// Un error distinto a no-disponible no degrada: se propaga.
func TestLowStockAlerts_ErrorRealSePropaga(t *testing.T) {
	boom := errors.New("conexión rechazada")
	repo := &stubStockRepo{lowErr: boom}

	_, err := ledger.NewViewUseCase(repo, logger.Nop()).LowStockAlerts()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, repo.listCalled)
}
