// Package blob implementa el almacén de binarios sobre Google Cloud Storage,
// con los metadatos en PostgreSQL. Los adjuntos se suben sin dueño (entity_id
// NULL) correlacionados por transaction_id; el enlace es un paso posterior.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ orders.AttachmentStore = (*GCSStore)(nil)

// GCSStore sube los binarios a un bucket y registra los metadatos.
type GCSStore struct {
	client *storage.Client
	bucket string
	meta   repository.AttachmentRepository
}

// NewGCSStore construye el almacén de adjuntos.
func NewGCSStore(client *storage.Client, bucket string, meta repository.AttachmentRepository) *GCSStore {
	return &GCSStore{client: client, bucket: bucket, meta: meta}
}

// Upload escribe el binario en el bucket y crea los metadatos sin enlazar.
func (s *GCSStore) Upload(ctx context.Context, in orders.UploadInput) (*entity.Attachment, error) {
	id := uuid.New().String()
	objectKey := fmt.Sprintf("attachments/%s/%s%s", in.TransactionID, id, filepath.Ext(in.File.FileName))

	w := s.client.Bucket(s.bucket).Object(objectKey).NewWriter(ctx)
	w.ContentType = in.File.MimeType
	if _, err := io.Copy(w, bytes.NewReader(in.File.Content)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("subir adjunto a GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("cerrar escritura en GCS: %w", err)
	}

	att := &entity.Attachment{
		ID:            id,
		EntityType:    in.EntityType,
		TransactionID: in.TransactionID,
		FileName:      in.File.FileName,
		MimeType:      in.File.MimeType,
		Size:          in.File.Size,
		ObjectKey:     objectKey,
		CreatedAt:     time.Now(),
	}
	if err := s.meta.Create(att); err != nil {
		// El binario queda huérfano en el bucket; los metadatos mandan.
		return nil, err
	}
	return att, nil
}

// Link fija el dueño definitivo en los metadatos.
func (s *GCSStore) Link(_ context.Context, attachmentID, entityType, entityID string) error {
	return s.meta.Link(attachmentID, entityType, entityID)
}

// Download devuelve un lector del binario y sus metadatos.
func (s *GCSStore) Download(ctx context.Context, attachmentID string) (io.ReadCloser, *entity.Attachment, error) {
	att, err := s.meta.GetByID(attachmentID)
	if err != nil {
		return nil, nil, err
	}
	if att == nil {
		return nil, nil, domain.ErrNotFound
	}
	r, err := s.client.Bucket(s.bucket).Object(att.ObjectKey).NewReader(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("leer adjunto de GCS: %w", err)
	}
	return r, att, nil
}

// ListByTransaction devuelve los metadatos correlacionados a una transacción.
func (s *GCSStore) ListByTransaction(_ context.Context, transactionID string) ([]*entity.Attachment, error) {
	return s.meta.ListByTransaction(transactionID)
}
