package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/application/transactions"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

var validate = validator.New()

// OrderHandler maneja la confirmación de lotes de pedido.
type OrderHandler struct {
	reconciler *orders.Reconciler
}

// NewOrderHandler construye el handler.
func NewOrderHandler(reconciler *orders.Reconciler) *OrderHandler {
	return &OrderHandler{reconciler: reconciler}
}

// SubmitBatch godoc
// @Summary      Confirmar un lote de líneas de pedido
// @Description  Fusiona cada línea en el libro de stock con costeo de promedio
//
//	ponderado. Acepta JSON o multipart (campo "payload" + archivos
//	"attachment_<índice de línea>").
//
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OrderBatchRequest  true  "líneas del pedido"
// @Success      200   {object}  dto.BatchResultDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/orders/batch [post]
func (h *OrderHandler) SubmitBatch(c *fiber.Ctx) error {
	var in dto.OrderBatchRequest
	var files map[int]*multipart.FileHeader

	if form, err := c.MultipartForm(); err == nil && form != nil {
		payload := form.Value["payload"]
		if len(payload) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "falta el campo payload"})
		}
		if err := json.Unmarshal([]byte(payload[0]), &in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "payload inválido"})
		}
		files = attachmentFiles(form)
	} else if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	if err := validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	batch, err := toOrderLines(in, files)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}

	result, err := h.reconciler.ProcessBatch(c.Context(), batch)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrEmptyBatch) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(toBatchResultDTO(result))
}

// attachmentFiles mapea los archivos "attachment_<i>" a su índice de línea.
func attachmentFiles(form *multipart.Form) map[int]*multipart.FileHeader {
	files := make(map[int]*multipart.FileHeader)
	for field, headers := range form.File {
		const prefix = "attachment_"
		if len(headers) == 0 || len(field) <= len(prefix) || field[:len(prefix)] != prefix {
			continue
		}
		idx, err := strconv.Atoi(field[len(prefix):])
		if err != nil {
			continue
		}
		files[idx] = headers[0]
	}
	return files
}

// toOrderLines mapea el request a líneas de dominio, leyendo los adjuntos.
func toOrderLines(in dto.OrderBatchRequest, files map[int]*multipart.FileHeader) ([]entity.OrderLine, error) {
	batch := make([]entity.OrderLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		line := entity.OrderLine{
			ItemCode:        l.ItemCode,
			ItemName:        l.ItemName,
			CostPrice:       l.CostPrice,
			SellingPrice:    l.SellingPrice,
			Quantity:        l.Quantity,
			SupplierName:    l.SupplierName,
			SupplierContact: l.SupplierContact,
			DateOrdered:     l.DateOrdered,
		}
		if fh, ok := files[i]; ok {
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			content, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, err
			}
			line.Attachment = &entity.FileUpload{
				FileName: fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Size:     fh.Size,
				Content:  content,
			}
		}
		batch = append(batch, line)
	}
	return batch, nil
}

func toBatchResultDTO(result *orders.BatchResult) dto.BatchResultDTO {
	lines := make([]dto.LineResultDTO, 0, len(result.Lines))
	for _, r := range result.Lines {
		lr := dto.LineResultDTO{
			Index:    r.Index,
			ItemName: r.ItemName,
			Status:   r.Status,
			Reason:   r.Reason,
			Warnings: r.Warnings,
		}
		if r.Item != nil {
			d := stockItemToDTO(r.Item)
			lr.Item = &d
		}
		lines = append(lines, lr)
	}

	ledger := make([]dto.StockItemDTO, 0, len(result.Ledger))
	for _, item := range result.Ledger {
		ledger = append(ledger, stockItemToDTO(item))
	}

	out := dto.BatchResultDTO{
		TransactionID: result.TransactionID,
		Merged:        result.Merged,
		Failed:        result.Failed,
		Lines:         lines,
		Ledger:        ledger,
	}
	if result.Transaction != nil {
		t := transactions.ToTransactionDTO(result.Transaction)
		out.Transaction = &t
	}
	return out
}

func stockItemToDTO(item *entity.StockItem) dto.StockItemDTO {
	return dto.StockItemDTO{
		ID:              item.ID,
		ItemCode:        item.ItemCode,
		Name:            item.Name,
		AvgCostPrice:    item.AvgCostPrice,
		AvgSellingPrice: item.AvgSellingPrice,
		CurrentStock:    item.CurrentStock,
		StockValue:      item.StockValue,
		ProjectedProfit: item.ProjectedProfit,
		ReorderLevel:    item.ReorderLevel,
		Status:          item.StockStatus(),
		LastStockUpdate: item.LastStockUpdate,
	}
}
