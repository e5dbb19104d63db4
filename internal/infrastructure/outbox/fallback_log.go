package outbox

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Almacen-api/internal/application/orders"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

var _ orders.TransactionLog = (*FallbackLog)(nil)

// localIDPrefix marca los ids sintetizados localmente cuando el almacén
// autoritativo no responde.
const localIDPrefix = "local-"

// FallbackLog implementa el registro de transacciones con respaldo local:
// intenta el almacén autoritativo y, si falla, sintetiza un id local basado en
// el reloj y encola la entrada en la cola duradera para que el historial
// visible no se pierda.
type FallbackLog struct {
	primary repository.TransactionRepository
	queue   *Queue
	log     *logger.Logger
}

// NewFallbackLog construye el adaptador compuesto.
func NewFallbackLog(primary repository.TransactionRepository, queue *Queue, log *logger.Logger) *FallbackLog {
	return &FallbackLog{primary: primary, queue: queue, log: log}
}

// Record intenta el primario; en fallo encola localmente y devuelve el
// marcador local. Solo devuelve error si también falla el respaldo.
func (f *FallbackLog) Record(_ context.Context, tx *entity.Transaction) (*entity.Transaction, error) {
	canonical, err := f.primary.Record(tx)
	if err == nil {
		return canonical, nil
	}
	f.log.Warn().Err(err).Str("transaction_id", tx.ID).
		Msg("registro autoritativo no disponible, encolando en respaldo local")

	local := *tx
	local.ID = fmt.Sprintf("%s%d", localIDPrefix, time.Now().UnixNano())
	local.Local = true
	if qErr := f.queue.Enqueue(&local); qErr != nil {
		return nil, fmt.Errorf("respaldo local falló tras %v: %w", err, qErr)
	}
	return &local, nil
}

// List intercala las entradas de la cola local por delante de los registros
// autoritativos.
func (f *FallbackLog) List(_ context.Context, limit, offset int) ([]*entity.Transaction, error) {
	locals, err := f.queue.Pending(limit)
	if err != nil {
		f.log.Warn().Err(err).Msg("lectura de la cola local falló")
		locals = nil
	}
	primaries, err := f.primary.List(limit, offset)
	if err != nil {
		if len(locals) == 0 {
			return nil, err
		}
		// Primario caído: al menos mostrar lo local.
		f.log.Warn().Err(err).Msg("listado autoritativo no disponible")
		return locals, nil
	}
	return append(locals, primaries...), nil
}

// GetByID resuelve ids locales contra la cola y el resto contra el primario.
func (f *FallbackLog) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	if strings.HasPrefix(id, localIDPrefix) {
		return f.queue.Get(id)
	}
	return f.primary.GetByID(id)
}
