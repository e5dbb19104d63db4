package repository

import "github.com/jhoicas/Almacen-api/internal/domain/entity"

// TransactionRepository define el puerto del registro autoritativo de
// transacciones (solo-anexado). Record devuelve el registro canónico que
// reemplaza cualquier marcador local.
type TransactionRepository interface {
	Record(tx *entity.Transaction) (*entity.Transaction, error)
	List(limit, offset int) ([]*entity.Transaction, error)
	GetByID(id string) (*entity.Transaction, error)
}
