package orders

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// Estado de cada línea del lote tras la reconciliación.
const (
	LineOK     = "ok"
	LineFailed = "failed"
)

// LineResult es el resultado discriminado de una línea: o bien el artículo
// actualizado, o bien la razón del fallo. Los fallos de efectos laterales
// (proveedor, adjunto) no vuelven la línea fallida: quedan en Warnings.
type LineResult struct {
	Index    int
	ItemName string
	Status   string
	Item     *entity.StockItem
	Reason   string
	Warnings []string
}

// OK indica si la fusión de stock de la línea se persistió.
func (r LineResult) OK() bool { return r.Status == LineOK }

// BatchResult agrega el resultado de todo el lote. Ledger es la lista de stock
// releída tras el lote (resincronización de la caché de presentación) y
// Transaction el registro resumen, que puede ser local si el log autoritativo
// no estaba disponible.
type BatchResult struct {
	TransactionID string
	Lines         []LineResult
	Merged        int
	Failed        int
	Transaction   *entity.Transaction
	Ledger        []*entity.StockItem
}
