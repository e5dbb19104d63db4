package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// Replayer reenvía en segundo plano las transacciones de la cola local al
// almacén autoritativo y las elimina una vez confirmadas. Con asignación de id
// canónico en el reenvío, el marcador local desaparece del historial en la
// siguiente lectura.
type Replayer struct {
	queue     *Queue
	primary   repository.TransactionRepository
	log       *logger.Logger
	Interval  time.Duration
	BatchSize int
}

// NewReplayer construye el reprocesador con valores por defecto razonables.
func NewReplayer(queue *Queue, primary repository.TransactionRepository, log *logger.Logger) *Replayer {
	return &Replayer{
		queue:     queue,
		primary:   primary,
		log:       log,
		Interval:  30 * time.Second,
		BatchSize: 50,
	}
}

// Run procesa la cola periódicamente hasta que el contexto se cancele.
func (r *Replayer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(r.Interval):
		}
		r.ProcessOnce()
	}
}

// ProcessOnce intenta reenviar un lote de entradas pendientes. Un fallo del
// primario deja la entrada en la cola para el siguiente ciclo.
func (r *Replayer) ProcessOnce() {
	pending, err := r.queue.Pending(r.BatchSize)
	if err != nil {
		r.log.Warn().Err(err).Msg("lectura de la cola local falló")
		return
	}
	for _, tx := range pending {
		localID := tx.ID
		resend := *tx
		resend.ID = uuid.New().String()
		resend.Local = false
		if _, err := r.primary.Record(&resend); err != nil {
			r.log.Warn().Err(err).Str("local_id", localID).
				Msg("reenvío al registro autoritativo falló, se reintenta luego")
			return
		}
		if err := r.queue.Remove(localID); err != nil {
			r.log.Error().Err(err).Str("local_id", localID).
				Msg("entrada reenviada pero no eliminada de la cola local")
			return
		}
		r.log.Info().Str("local_id", localID).Str("id", resend.ID).
			Msg("transacción local reconciliada con el registro autoritativo")
	}
}
