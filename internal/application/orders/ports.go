package orders

import (
	"context"
	"io"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando un
// repositorio de stock atado a esa tx. Garantiza que la fusión de cada línea
// (lectura con bloqueo de fila, cálculo y escritura) sea atómica.
type TxRunner interface {
	Run(ctx context.Context, fn func(stockRepo repository.StockRepository) error) error
}

// UploadInput es la entrada para subir un adjunto al almacén de binarios.
// EntityID queda vacío en la carga inicial: el adjunto se correlaciona por
// TransactionID y se enlaza después con Link.
type UploadInput struct {
	EntityType    string
	TransactionID string
	File          entity.FileUpload
}

// AttachmentStore define el almacén de binarios con metadatos.
type AttachmentStore interface {
	Upload(ctx context.Context, in UploadInput) (*entity.Attachment, error)
	Link(ctx context.Context, attachmentID, entityType, entityID string) error
	Download(ctx context.Context, attachmentID string) (io.ReadCloser, *entity.Attachment, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.Attachment, error)
}

// TransactionLog es el registro de transacciones visto desde el reconciliador:
// el adaptador decide si escribe en el almacén autoritativo o encola en el
// respaldo local duradero cuando el primario no responde.
type TransactionLog interface {
	Record(ctx context.Context, tx *entity.Transaction) (*entity.Transaction, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Transaction, error)
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
}
