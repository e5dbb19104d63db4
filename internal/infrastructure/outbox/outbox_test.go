package outbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

// stubPrimary simula el registro autoritativo, con interruptor de caída.
type stubPrimary struct {
	down     bool
	recorded []*entity.Transaction
}

func (s *stubPrimary) Record(tx *entity.Transaction) (*entity.Transaction, error) {
	if s.down {
		return nil, errors.New("conexión rechazada")
	}
	cp := *tx
	cp.Local = false
	s.recorded = append(s.recorded, &cp)
	return &cp, nil
}

func (s *stubPrimary) List(limit, offset int) ([]*entity.Transaction, error) {
	if s.down {
		return nil, errors.New("conexión rechazada")
	}
	return s.recorded, nil
}

func (s *stubPrimary) GetByID(id string) (*entity.Transaction, error) {
	if s.down {
		return nil, errors.New("conexión rechazada")
	}
	for _, tx := range s.recorded {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, nil
}

func sampleTx(id string) *entity.Transaction {
	return &entity.Transaction{
		ID:        id,
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Items: []entity.TransactionItem{
			{ItemName: "Soda", Quantity: 10, UnitPrice: decimal.NewFromInt(50), TotalPrice: decimal.NewFromInt(500), Supplier: entity.DefaultSupplierName},
		},
		TotalValue: decimal.NewFromInt(500),
		TotalItems: 10,
		Status:     entity.TransactionStatusCompleted,
	}
}

func mustQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := OpenQueue(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { q.Close() })
	return q
}

// ──────────────────────────────────────────────────────────────────────────────
// Queue
// ──────────────────────────────────────────────────────────────────────────────

func TestQueue_EncolarLeerEliminar(t *testing.T) {
	q := mustQueue(t)

	require.NoError(t, q.Enqueue(sampleTx("local-1")))
	require.NoError(t, q.Enqueue(sampleTx("local-2")))

	pending, err := q.Pending(10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, tx := range pending {
		assert.True(t, tx.Local, "toda entrada de la cola se marca como local")
		assert.True(t, decimal.NewFromInt(500).Equal(tx.TotalValue), "el payload sobrevive el viaje por SQLite")
	}

	got, err := q.Get("local-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Soda", got.Items[0].ItemName)

	require.NoError(t, q.Remove("local-1"))
	got, err = q.Get("local-1")
	require.NoError(t, err)
	assert.Nil(t, got, "la entrada eliminada deja de existir")

	pending, err = q.Pending(10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestQueue_PendingRespetaElLimite(t *testing.T) {
	q := mustQueue(t)
	require.NoError(t, q.Enqueue(sampleTx("local-a")))
	require.NoError(t, q.Enqueue(sampleTx("local-b")))
	require.NoError(t, q.Enqueue(sampleTx("local-c")))

	pending, err := q.Pending(2)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// FallbackLog
// ──────────────────────────────────────────────────────────────────────────────

func TestFallbackLog_PrimarioDisponiblePasaDirecto(t *testing.T) {
	primary := &stubPrimary{}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	recorded, err := fl.Record(context.Background(), sampleTx("tx-1"))
	require.NoError(t, err)
	assert.Equal(t, "tx-1", recorded.ID)
	assert.False(t, recorded.Local)

	pending, err := q.Pending(10)
	require.NoError(t, err)
	assert.Empty(t, pending, "con el primario sano la cola no se toca")
}

func TestFallbackLog_PrimarioCaidoEncolaConIdLocal(t *testing.T) {
	primary := &stubPrimary{down: true}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	recorded, err := fl.Record(context.Background(), sampleTx("tx-2"))
	require.NoError(t, err, "el fallo del primario no se propaga si el respaldo funciona")
	assert.True(t, strings.HasPrefix(recorded.ID, "local-"), "id sintetizado con prefijo local, obtenido %s", recorded.ID)
	assert.True(t, recorded.Local)

	pending, err := q.Pending(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, recorded.ID, pending[0].ID)
}

func TestFallbackLog_ListIntercalaLocalesPrimero(t *testing.T) {
	primary := &stubPrimary{}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	_, err := fl.Record(context.Background(), sampleTx("tx-remota"))
	require.NoError(t, err)

	primary.down = true
	local, err := fl.Record(context.Background(), sampleTx("tx-caida"))
	require.NoError(t, err)
	primary.down = false

	list, err := fl.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, local.ID, list[0].ID, "lo local va por delante en el historial")
	assert.True(t, list[0].Local)
	assert.Equal(t, "tx-remota", list[1].ID)
}

func TestFallbackLog_ListToleraPrimarioCaido(t *testing.T) {
	primary := &stubPrimary{down: true}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	local, err := fl.Record(context.Background(), sampleTx("tx-3"))
	require.NoError(t, err)

	list, err := fl.List(context.Background(), 10, 0)
	require.NoError(t, err, "con entradas locales el historial nunca queda vacío")
	require.Len(t, list, 1)
	assert.Equal(t, local.ID, list[0].ID)
}

func TestFallbackLog_GetByIDEnrutaPorPrefijo(t *testing.T) {
	primary := &stubPrimary{}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	_, err := fl.Record(context.Background(), sampleTx("tx-remota"))
	require.NoError(t, err)

	primary.down = true
	local, err := fl.Record(context.Background(), sampleTx("tx-caida"))
	require.NoError(t, err)
	primary.down = false

	got, err := fl.GetByID(context.Background(), local.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Local)

	got, err = fl.GetByID(context.Background(), "tx-remota")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Local)
}

// ──────────────────────────────────────────────────────────────────────────────
// Replayer
// ──────────────────────────────────────────────────────────────────────────────

func TestReplayer_ReconciliaYVaciaLaCola(t *testing.T) {
	primary := &stubPrimary{down: true}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	local1, err := fl.Record(context.Background(), sampleTx("tx-a"))
	require.NoError(t, err)
	local2, err := fl.Record(context.Background(), sampleTx("tx-b"))
	require.NoError(t, err)

	// Vuelve la conectividad.
	primary.down = false
	NewReplayer(q, primary, logger.Nop()).ProcessOnce()

	pending, err := q.Pending(10)
	require.NoError(t, err)
	assert.Empty(t, pending, "la cola queda vacía tras la reconciliación")

	require.Len(t, primary.recorded, 2)
	for _, tx := range primary.recorded {
		assert.False(t, tx.Local)
		assert.False(t, strings.HasPrefix(tx.ID, "local-"), "el reenvío asigna id canónico nuevo")
		assert.NotEqual(t, local1.ID, tx.ID)
		assert.NotEqual(t, local2.ID, tx.ID)
	}
}

func TestReplayer_PrimarioAunCaidoDejaLaCola(t *testing.T) {
	primary := &stubPrimary{down: true}
	q := mustQueue(t)
	fl := NewFallbackLog(primary, q, logger.Nop())

	_, err := fl.Record(context.Background(), sampleTx("tx-a"))
	require.NoError(t, err)

	NewReplayer(q, primary, logger.Nop()).ProcessOnce()

	pending, err := q.Pending(10)
	require.NoError(t, err)
	assert.Len(t, pending, 1, "sin primario la entrada espera el siguiente ciclo")
}
