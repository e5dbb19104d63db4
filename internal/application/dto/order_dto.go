package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderBatchRequest body para POST /api/orders/batch.
type OrderBatchRequest struct {
	Lines []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrderLineRequest es una línea del pedido tal como la envía la UI.
type OrderLineRequest struct {
	ItemCode        string          `json:"item_code,omitempty"`
	ItemName        string          `json:"item_name" validate:"required"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	Quantity        int64           `json:"quantity" validate:"required,min=1"`
	SupplierName    string          `json:"supplier_name,omitempty"`
	SupplierContact string          `json:"supplier_contact,omitempty"`
	DateOrdered     time.Time       `json:"date_ordered,omitempty"`
}

// LineResultDTO resultado discriminado por línea.
type LineResultDTO struct {
	Index    int           `json:"index"`
	ItemName string        `json:"item_name"`
	Status   string        `json:"status"` // ok | failed
	Item     *StockItemDTO `json:"item,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// BatchResultDTO respuesta de la confirmación del lote.
type BatchResultDTO struct {
	TransactionID string          `json:"transaction_id"`
	Merged        int             `json:"merged"`
	Failed        int             `json:"failed"`
	Lines         []LineResultDTO `json:"lines"`
	Transaction   *TransactionDTO `json:"transaction,omitempty"`
	Ledger        []StockItemDTO  `json:"ledger"`
}
