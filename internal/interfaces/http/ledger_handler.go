package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/ledger"
)

// LedgerHandler expone la vista del libro de stock y las alertas.
type LedgerHandler struct {
	view *ledger.ViewUseCase
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(view *ledger.ViewUseCase) *LedgerHandler {
	return &LedgerHandler{view: view}
}

// List godoc
// @Summary      Libro de stock completo
// @Tags         ledger
// @Produce      json
// @Success      200  {array}   dto.StockItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/ledger [get]
func (h *LedgerHandler) List(c *fiber.Ctx) error {
	items, err := h.view.Ledger()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// Alerts godoc
// @Summary      Alertas de bajo stock
// @Description  Artículos en o bajo su nivel de reorden; "critical" con 2 o
//
//	menos unidades. Si la vista dedicada no existe, se filtra la
//	lista completa con la misma regla.
//
// @Tags         ledger
// @Produce      json
// @Success      200  {array}   dto.StockItemDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/ledger/alerts [get]
func (h *LedgerHandler) Alerts(c *fiber.Ctx) error {
	items, err := h.view.LowStockAlerts()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}
