package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDTO es el registro de transacción expuesto en el historial.
// Local marca las entradas que aún viven solo en la cola de respaldo.
type TransactionDTO struct {
	ID         string               `json:"id"`
	Timestamp  time.Time            `json:"timestamp"`
	Items      []TransactionItemDTO `json:"items"`
	TotalValue decimal.Decimal      `json:"total_value"`
	TotalItems int64                `json:"total_items"`
	Status     string               `json:"status"`
	Local      bool                 `json:"local,omitempty"`
}

// TransactionItemDTO línea dentro del registro.
type TransactionItemDTO struct {
	ItemCode   string          `json:"item_code,omitempty"`
	ItemName   string          `json:"item_name"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Supplier   string          `json:"supplier"`
}

// SupplierDTO proveedor registrado.
type SupplierDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

// AttachmentDTO metadatos de un adjunto.
type AttachmentDTO struct {
	ID            string `json:"id"`
	EntityType    string `json:"entity_type"`
	EntityID      string `json:"entity_id,omitempty"`
	TransactionID string `json:"transaction_id"`
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type"`
	Size          int64  `json:"size"`
}
