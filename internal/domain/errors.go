package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrUnavailable      = errors.New("operación no disponible en el almacén")
	ErrUnresolvableItem = errors.New("artículo nuevo sin identidad resoluble")
	ErrEmptyBatch       = errors.New("el lote de pedido está vacío")
)
