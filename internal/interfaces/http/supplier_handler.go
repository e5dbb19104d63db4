package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// SupplierHandler expone el listado de proveedores registrados.
type SupplierHandler struct {
	suppliers repository.SupplierRepository
}

// NewSupplierHandler construye el handler.
func NewSupplierHandler(suppliers repository.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// List godoc
// @Summary      Proveedores registrados
// @Tags         suppliers
// @Produce      json
// @Param        limit   query  int  false  "máximo de filas (por defecto 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}   dto.SupplierDTO
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/suppliers [get]
func (h *SupplierHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	suppliers, err := h.suppliers.List(page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.SupplierDTO, 0, len(suppliers))
	for _, s := range suppliers {
		out = append(out, dto.SupplierDTO{ID: s.ID, Name: s.Name, Contact: s.Contact})
	}
	return c.JSON(fiber.Map{"total": len(out), "suppliers": out})
}
