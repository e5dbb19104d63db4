package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSupplierName es el marcador de compra directa: no registra proveedor.
const DefaultSupplierName = "Direct Purchase"

// OrderLine es una línea de un pedido pendiente. Es efímera: se construye desde
// la entrada del usuario, se consume al confirmar el lote y se descarta.
type OrderLine struct {
	ItemCode        string // código canónico si el artículo ya existe (opcional)
	ItemName        string
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal
	Quantity        int64 // >= 1
	SupplierName    string
	SupplierContact string
	DateOrdered     time.Time
	Attachment      *FileUpload // comprobante adjunto (opcional)
}

// HasSupplier indica si la línea trae un proveedor real que deba registrarse.
func (l OrderLine) HasSupplier() bool {
	return l.SupplierName != "" && l.SupplierName != DefaultSupplierName
}

// FileUpload es el contenido crudo de un archivo adjunto antes de subirse al
// almacén de binarios.
type FileUpload struct {
	FileName string
	MimeType string
	Size     int64
	Content  []byte
}
