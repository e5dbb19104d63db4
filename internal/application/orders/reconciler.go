package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Reconciler confirma lotes de líneas de pedido contra el almacén de stock.
// Cada línea es una unidad de trabajo independiente: se procesa en orden y de
// forma secuencial (nunca concurrente) para que dos líneas del mismo artículo
// no compitan por la misma lectura-cálculo-escritura del promedio ponderado, y
// un fallo en una línea nunca aborta el resto del lote.
type Reconciler struct {
	txRunner     TxRunner
	stockRepo    repository.StockRepository
	supplierRepo repository.SupplierRepository
	attachments  AttachmentStore
	txLog        TransactionLog
	log          *logger.Logger
}

// NewReconciler construye el caso de uso.
func NewReconciler(
	txRunner TxRunner,
	stockRepo repository.StockRepository,
	supplierRepo repository.SupplierRepository,
	attachments AttachmentStore,
	txLog TransactionLog,
	log *logger.Logger,
) *Reconciler {
	return &Reconciler{
		txRunner:     txRunner,
		stockRepo:    stockRepo,
		supplierRepo: supplierRepo,
		attachments:  attachments,
		txLog:        txLog,
		log:          log,
	}
}

// ProcessBatch valida el lote, fusiona cada línea en orden y construye el
// registro de transacción sobre el lote originalmente enviado. Los fallos de
// proveedor o adjunto se registran como advertencias; los fallos de fusión
// marcan la línea como fallida sin detener el lote. Tras el bucle se relee la
// lista completa de stock para resincronizar la vista.
func (uc *Reconciler) ProcessBatch(ctx context.Context, batch []entity.OrderLine) (*BatchResult, error) {
	if err := validateBatch(batch); err != nil {
		return nil, err
	}

	batchID := uuid.New().String()
	now := time.Now()

	results := make([]LineResult, 0, len(batch))
	merged, failed := 0, 0

	for i, line := range batch {
		res := LineResult{Index: i, ItemName: line.ItemName}

		// 1. Registro de proveedor: no fatal.
		if line.HasSupplier() {
			if _, err := uc.supplierRepo.UpsertByName(&entity.Supplier{
				Name:    line.SupplierName,
				Contact: line.SupplierContact,
			}); err != nil {
				uc.log.Warn().Err(err).Str("supplier", line.SupplierName).Msg("registro de proveedor falló")
				res.Warnings = append(res.Warnings, fmt.Sprintf("proveedor %q no registrado: %v", line.SupplierName, err))
			}
		}

		// 2. Carga del adjunto sin enlazar, correlacionado por el id del lote: no fatal.
		var attachmentID string
		if line.Attachment != nil {
			att, err := uc.attachments.Upload(ctx, UploadInput{
				EntityType:    entity.AttachmentEntityStock,
				TransactionID: batchID,
				File:          *line.Attachment,
			})
			if err != nil {
				uc.log.Warn().Err(err).Str("file", line.Attachment.FileName).Msg("carga de adjunto falló")
				res.Warnings = append(res.Warnings, fmt.Sprintf("adjunto %q no subido: %v", line.Attachment.FileName, err))
			} else {
				attachmentID = att.ID
			}
		}

		// 3-5. Resolución, fusión y persistencia atómicas dentro de una tx.
		item, err := uc.mergeLine(ctx, line, now)
		if err != nil {
			uc.log.Error().Err(err).Int("line", i).Str("item", line.ItemName).Msg("fusión de stock falló")
			res.Status = LineFailed
			res.Reason = err.Error()
			failed++
			results = append(results, res)
			continue
		}
		res.Status = LineOK
		res.Item = item
		merged++

		// Enlace explícito del adjunto ahora que la identidad del dueño existe.
		if attachmentID != "" {
			if err := uc.attachments.Link(ctx, attachmentID, entity.AttachmentEntityStock, item.ID); err != nil {
				uc.log.Warn().Err(err).Str("attachment_id", attachmentID).Msg("enlace de adjunto falló")
				res.Warnings = append(res.Warnings, fmt.Sprintf("adjunto sin enlazar: %v", err))
			}
		}
		results = append(results, res)
	}

	// 6. Resincronización de la vista: releer la lista completa.
	ledger, err := uc.stockRepo.List()
	if err != nil {
		uc.log.Warn().Err(err).Msg("relectura del stock tras el lote falló")
	}

	// 7. Registro de transacción sobre el lote original; el adaptador encola
	// en el respaldo local si el almacén autoritativo no responde.
	tx := buildTransaction(batchID, batch, failed, now)
	recorded, err := uc.txLog.Record(ctx, tx)
	if err != nil {
		// Solo ocurre si también falló el respaldo local.
		uc.log.Error().Err(err).Str("transaction_id", batchID).Msg("registro de transacción perdido")
		recorded = tx
	}

	return &BatchResult{
		TransactionID: batchID,
		Lines:         results,
		Merged:        merged,
		Failed:        failed,
		Transaction:   recorded,
		Ledger:        ledger,
	}, nil
}

// mergeLine resuelve el artículo (por código si la línea lo trae, si no por
// nombre) y aplica la fusión dentro de una transacción con bloqueo de fila.
// Si no existe registro alguno se toma la rama de creación con identidad nueva.
func (uc *Reconciler) mergeLine(ctx context.Context, line entity.OrderLine, now time.Time) (*entity.StockItem, error) {
	var out *entity.StockItem
	err := uc.txRunner.Run(ctx, func(stockRepo repository.StockRepository) error {
		existing, err := resolveItem(stockRepo, line)
		if err != nil {
			return err
		}

		if existing == nil {
			item := &entity.StockItem{
				ID:           uuid.New().String(),
				ItemCode:     line.ItemCode,
				Name:         line.ItemName,
				ReorderLevel: entity.DefaultReorderLevel,
				CreatedAt:    now,
			}
			inventory.ApplyOrderLine(item, line, now)
			if err := stockRepo.Create(item); err != nil {
				return err
			}
			out = item
			return nil
		}

		// Bloquea la fila para que la lectura del promedio y su escritura sean
		// atómicas frente a otros lotes concurrentes.
		locked, err := stockRepo.GetForUpdate(existing.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrUnresolvableItem
		}
		inventory.ApplyOrderLine(locked, line, now)
		if err := stockRepo.Update(locked); err != nil {
			return err
		}
		out = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// resolveItem busca el registro existente por código canónico y, en su defecto,
// por nombre. (nil, nil) significa artículo genuinamente nuevo.
func resolveItem(stockRepo repository.StockRepository, line entity.OrderLine) (*entity.StockItem, error) {
	if line.ItemCode != "" {
		item, err := stockRepo.LookupByCode(line.ItemCode)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}
	return stockRepo.LookupByName(line.ItemName)
}

// validateBatch rechaza el lote antes de que llegue al algoritmo de fusión:
// cantidades < 1, precios negativos o campos obligatorios ausentes.
func validateBatch(batch []entity.OrderLine) error {
	if len(batch) == 0 {
		return domain.ErrEmptyBatch
	}
	for i, line := range batch {
		if line.ItemName == "" {
			return fmt.Errorf("línea %d sin nombre de artículo: %w", i, domain.ErrInvalidInput)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("línea %d con cantidad %d: %w", i, line.Quantity, domain.ErrInvalidInput)
		}
		if line.CostPrice.IsNegative() || line.SellingPrice.IsNegative() {
			return fmt.Errorf("línea %d con precio negativo: %w", i, domain.ErrInvalidInput)
		}
	}
	return nil
}

// buildTransaction arma el resumen del lote tal como fue enviado. El estado
// refleja el resultado por línea: completed si todas fusionaron, partial si
// alguna falló.
func buildTransaction(id string, batch []entity.OrderLine, failed int, now time.Time) *entity.Transaction {
	items := make([]entity.TransactionItem, 0, len(batch))
	totalValue := decimal.Zero
	var totalItems int64

	for _, line := range batch {
		lineTotal := line.CostPrice.Mul(decimal.NewFromInt(line.Quantity))
		supplier := line.SupplierName
		if supplier == "" {
			supplier = entity.DefaultSupplierName
		}
		items = append(items, entity.TransactionItem{
			ItemCode:   line.ItemCode,
			ItemName:   line.ItemName,
			Quantity:   line.Quantity,
			UnitPrice:  line.CostPrice,
			TotalPrice: lineTotal,
			Supplier:   supplier,
		})
		totalValue = totalValue.Add(lineTotal)
		totalItems += line.Quantity
	}

	status := entity.TransactionStatusCompleted
	if failed > 0 {
		status = entity.TransactionStatusPartial
	}
	return &entity.Transaction{
		ID:         id,
		Timestamp:  now,
		Items:      items,
		TotalValue: totalValue,
		TotalItems: totalItems,
		Status:     status,
		CreatedAt:  now,
	}
}
