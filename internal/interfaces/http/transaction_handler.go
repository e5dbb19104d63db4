package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/transactions"
	"github.com/jhoicas/Almacen-api/internal/domain"
)

// TransactionHandler expone el historial de transacciones y sus comprobantes.
type TransactionHandler struct {
	history *transactions.HistoryUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(history *transactions.HistoryUseCase) *TransactionHandler {
	return &TransactionHandler{history: history}
}

// List godoc
// @Summary      Historial de transacciones
// @Description  Las entradas de la cola local de respaldo aparecen por delante
//
//	de los registros autoritativos, marcadas con local:true.
//
// @Tags         transactions
// @Produce      json
// @Param        limit   query  int  false  "máximo de filas (por defecto 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}   dto.TransactionDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	txs, err := h.history.History(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(fiber.Map{"total": len(txs), "transactions": txs})
}

// Receipt godoc
// @Summary      Comprobante PDF de una transacción
// @Tags         transactions
// @Produce      application/pdf
// @Param        id  path  string  true  "id de la transacción"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id}/receipt [get]
func (h *TransactionHandler) Receipt(c *fiber.Ctx) error {
	pdfBytes, tx, err := h.history.Receipt(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "transacción no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="comprobante-`+tx.ID+`.pdf"`)
	return c.Send(pdfBytes)
}
