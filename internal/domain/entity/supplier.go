package entity

import "time"

// Supplier representa un proveedor, deduplicado por nombre. Se crea de forma
// perezosa la primera vez que aparece un nombre distinto al marcador de compra
// directa.
type Supplier struct {
	ID        string
	Name      string
	Contact   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
