package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

var _ repository.AttachmentRepository = (*AttachmentRepo)(nil)

// AttachmentRepo implementación de AttachmentRepository (usable con pool o tx).
type AttachmentRepo struct {
	q Querier
}

// NewAttachmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAttachmentRepository(q Querier) *AttachmentRepo {
	return &AttachmentRepo{q: q}
}

// Create persiste los metadatos del adjunto; EntityID queda NULL mientras no
// se enlace.
func (r *AttachmentRepo) Create(att *entity.Attachment) error {
	if att.ID == "" {
		att.ID = uuid.New().String()
	}
	query := `
		INSERT INTO attachments (id, entity_type, entity_id, transaction_id,
		                         file_name, mime_type, size, object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		att.ID, att.EntityType, nullIfEmpty(att.EntityID), att.TransactionID,
		att.FileName, att.MimeType, att.Size, att.ObjectKey, att.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	return nil
}

// GetByID obtiene un adjunto por id. Devuelve (nil, nil) si no existe.
func (r *AttachmentRepo) GetByID(id string) (*entity.Attachment, error) {
	query := `
		SELECT id, entity_type, entity_id, transaction_id, file_name, mime_type, size, object_key, created_at
		FROM attachments WHERE id = $1`
	var a entity.Attachment
	var entityID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.EntityType, &entityID, &a.TransactionID,
		&a.FileName, &a.MimeType, &a.Size, &a.ObjectKey, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	if entityID != nil {
		a.EntityID = *entityID
	}
	return &a, nil
}

// Link fija el dueño definitivo de un adjunto subido sin enlazar.
func (r *AttachmentRepo) Link(id, entityType, entityID string) error {
	query := `UPDATE attachments SET entity_type = $2, entity_id = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, entityType, entityID)
	if err != nil {
		return fmt.Errorf("link attachment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByTransaction devuelve los adjuntos correlacionados a una transacción.
func (r *AttachmentRepo) ListByTransaction(transactionID string) ([]*entity.Attachment, error) {
	query := `
		SELECT id, entity_type, entity_id, transaction_id, file_name, mime_type, size, object_key, created_at
		FROM attachments WHERE transaction_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var atts []*entity.Attachment
	for rows.Next() {
		var a entity.Attachment
		var entityID *string
		if err := rows.Scan(&a.ID, &a.EntityType, &entityID, &a.TransactionID,
			&a.FileName, &a.MimeType, &a.Size, &a.ObjectKey, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		if entityID != nil {
			a.EntityID = *entityID
		}
		atts = append(atts, &a)
	}
	return atts, rows.Err()
}
