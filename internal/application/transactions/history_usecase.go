package transactions

import (
	"context"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ReceiptGenerator genera la representación PDF del comprobante de una
// transacción.
type ReceiptGenerator interface {
	GenerateReceiptPDF(ctx context.Context, tx *entity.Transaction) ([]byte, error)
}

// HistoryUseCase expone el historial de transacciones. El adaptador del log
// intercala las entradas de la cola local de respaldo por delante de los
// registros autoritativos.
type HistoryUseCase struct {
	txLog orders.TransactionLog
	pdf   ReceiptGenerator
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(txLog orders.TransactionLog, pdf ReceiptGenerator) *HistoryUseCase {
	return &HistoryUseCase{txLog: txLog, pdf: pdf}
}

// History devuelve las transacciones más recientes.
func (uc *HistoryUseCase) History(ctx context.Context, limit, offset int) ([]dto.TransactionDTO, error) {
	txs, err := uc.txLog.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ToTransactionDTO(tx))
	}
	return out, nil
}

// Receipt genera el PDF del comprobante de la transacción indicada.
func (uc *HistoryUseCase) Receipt(ctx context.Context, id string) ([]byte, *entity.Transaction, error) {
	tx, err := uc.txLog.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if tx == nil {
		return nil, nil, domain.ErrNotFound
	}
	pdfBytes, err := uc.pdf.GenerateReceiptPDF(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return pdfBytes, tx, nil
}

// ToTransactionDTO mapea la entidad al DTO del historial.
func ToTransactionDTO(tx *entity.Transaction) dto.TransactionDTO {
	items := make([]dto.TransactionItemDTO, 0, len(tx.Items))
	for _, it := range tx.Items {
		items = append(items, dto.TransactionItemDTO{
			ItemCode:   it.ItemCode,
			ItemName:   it.ItemName,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
			Supplier:   it.Supplier,
		})
	}
	return dto.TransactionDTO{
		ID:         tx.ID,
		Timestamp:  tx.Timestamp,
		Items:      items,
		TotalValue: tx.TotalValue,
		TotalItems: tx.TotalItems,
		Status:     tx.Status,
		Local:      tx.Local,
	}
}
