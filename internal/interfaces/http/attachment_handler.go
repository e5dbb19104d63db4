package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// AttachmentHandler maneja la carga y descarga de adjuntos.
type AttachmentHandler struct {
	store orders.AttachmentStore
}

// NewAttachmentHandler construye el handler.
func NewAttachmentHandler(store orders.AttachmentStore) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

// Upload godoc
// @Summary      Subir un adjunto sin enlazar
// @Description  El adjunto se correlaciona por transaction_id y se enlaza a su
//
//	dueño en un paso posterior.
//
// @Tags         attachments
// @Accept       multipart/form-data
// @Produce      json
// @Param        file            formData  file    true   "binario"
// @Param        transaction_id  formData  string  true   "id de correlación"
// @Param        entity_type     formData  string  false  "stock | transaction"
// @Success      201  {object}  dto.AttachmentDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/attachments [post]
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "falta el archivo"})
	}
	transactionID := c.FormValue("transaction_id")
	if transactionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "falta transaction_id"})
	}
	entityType := c.FormValue("entity_type")
	if entityType == "" {
		entityType = entity.AttachmentEntityStock
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "archivo ilegible"})
	}
	content, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "archivo ilegible"})
	}

	att, err := h.store.Upload(c.Context(), orders.UploadInput{
		EntityType:    entityType,
		TransactionID: transactionID,
		File: entity.FileUpload{
			FileName: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  content,
		},
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(toAttachmentDTO(att))
}

// Download godoc
// @Summary      Descargar el binario de un adjunto
// @Tags         attachments
// @Produce      octet-stream
// @Param        id  path  string  true  "id del adjunto"
// @Success      200
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	r, att, err := h.store.Download(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "adjunto no encontrado"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, att.MimeType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+att.FileName+`"`)
	return c.Send(content)
}

// ListByTransaction godoc
// @Summary      Adjuntos correlacionados a una transacción
// @Tags         attachments
// @Produce      json
// @Param        transaction_id  query  string  true  "id de correlación"
// @Success      200  {array}  dto.AttachmentDTO
// @Router       /api/attachments [get]
func (h *AttachmentHandler) ListByTransaction(c *fiber.Ctx) error {
	transactionID := c.Query("transaction_id")
	if transactionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "falta transaction_id"})
	}
	atts, err := h.store.ListByTransaction(c.Context(), transactionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.AttachmentDTO, 0, len(atts))
	for _, a := range atts {
		out = append(out, toAttachmentDTO(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "attachments": out})
}

func toAttachmentDTO(a *entity.Attachment) dto.AttachmentDTO {
	return dto.AttachmentDTO{
		ID:            a.ID,
		EntityType:    a.EntityType,
		EntityID:      a.EntityID,
		TransactionID: a.TransactionID,
		FileName:      a.FileName,
		MimeType:      a.MimeType,
		Size:          a.Size,
	}
}
