package entity

import "time"

// Tipos de entidad a los que se puede enlazar un adjunto.
const (
	AttachmentEntityStock       = "stock"
	AttachmentEntityTransaction = "transaction"
)

// Attachment son los metadatos de un archivo binario almacenado aparte.
// Se sube inicialmente sin enlazar (EntityID vacío) correlacionado por
// TransactionID, porque la identidad del registro dueño puede no existir aún
// al momento de la carga; el enlace es un paso explícito posterior.
type Attachment struct {
	ID            string
	EntityType    string
	EntityID      string // vacío mientras el adjunto no esté enlazado
	TransactionID string
	FileName      string
	MimeType      string
	Size          int64
	ObjectKey     string // ruta del binario en el bucket
	CreatedAt     time.Time
}

// Linked indica si el adjunto ya fue enlazado a su registro dueño.
func (a Attachment) Linked() bool { return a.EntityID != "" }
