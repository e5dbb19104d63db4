package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// AttachmentRepository define el puerto de persistencia para los metadatos de
// adjuntos. El binario vive en el almacén de blobs; aquí solo la referencia.
type AttachmentRepository interface {
	Create(att *entity.Attachment) error
	GetByID(id string) (*entity.Attachment, error)
	// Link enlaza un adjunto subido sin dueño a su registro definitivo.
	Link(id, entityType, entityID string) error
	ListByTransaction(transactionID string) ([]*entity.Attachment, error)
}
