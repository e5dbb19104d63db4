package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una transacción de pedido.
const (
	// TransactionStatusCompleted: todas las líneas del lote se fusionaron.
	TransactionStatusCompleted = "completed"
	// TransactionStatusPartial: al menos una línea falló; el registro cubre
	// igualmente el lote originalmente enviado.
	TransactionStatusPartial = "partial"
)

// Transaction es el registro de solo-anexado de un pedido confirmado.
// Resume el lote tal como fue enviado, no filtrado por éxito de cada línea.
type Transaction struct {
	ID         string
	Timestamp  time.Time
	Items      []TransactionItem
	TotalValue decimal.Decimal // suma de TotalPrice de las líneas
	TotalItems int64           // suma de cantidades
	Status     string
	Local      bool // true si solo existe en la cola local de respaldo
	CreatedAt  time.Time
}

// TransactionItem es una línea dentro del registro de transacción.
type TransactionItem struct {
	ItemCode   string
	ItemName   string
	Quantity   int64
	UnitPrice  decimal.Decimal // costo unitario de la línea
	TotalPrice decimal.Decimal
	Supplier   string
}
