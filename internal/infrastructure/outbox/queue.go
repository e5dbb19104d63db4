package outbox

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS transaction_outbox (
	local_id  TEXT PRIMARY KEY,
	payload   TEXT NOT NULL,
	queued_at TEXT NOT NULL
);`

// Queue es la cola local duradera de transacciones (SQLite). Las entradas
// sobreviven reinicios y se reenvían al almacén autoritativo cuando vuelve la
// conectividad.
type Queue struct {
	db *sqlx.DB
}

type outboxRow struct {
	LocalID  string `db:"local_id"`
	Payload  string `db:"payload"`
	QueuedAt string `db:"queued_at"`
}

// OpenQueue abre (o crea) la base local en path. Usar ":memory:" en tests.
func OpenQueue(path string) (*Queue, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("abrir cola local: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("crear tabla de la cola local: %w", err)
	}
	return &Queue{db: db}, nil
}

// Enqueue serializa la transacción y la anexa a la cola.
func (q *Queue) Enqueue(tx *entity.Transaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("serializar transacción: %w", err)
	}
	_, err = q.db.Exec(
		`INSERT INTO transaction_outbox (local_id, payload, queued_at) VALUES (?, ?, ?)`,
		tx.ID, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("encolar transacción: %w", err)
	}
	return nil
}

// Pending devuelve las transacciones encoladas en orden de llegada.
func (q *Queue) Pending(limit int) ([]*entity.Transaction, error) {
	var rows []outboxRow
	err := q.db.Select(&rows,
		`SELECT local_id, payload, queued_at FROM transaction_outbox ORDER BY queued_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leer cola local: %w", err)
	}
	txs := make([]*entity.Transaction, 0, len(rows))
	for _, row := range rows {
		var tx entity.Transaction
		if err := json.Unmarshal([]byte(row.Payload), &tx); err != nil {
			return nil, fmt.Errorf("deserializar transacción %s: %w", row.LocalID, err)
		}
		tx.Local = true
		txs = append(txs, &tx)
	}
	return txs, nil
}

// Get busca una entrada por su id local. Devuelve (nil, nil) si no existe.
func (q *Queue) Get(localID string) (*entity.Transaction, error) {
	var row outboxRow
	err := q.db.Get(&row,
		`SELECT local_id, payload, queued_at FROM transaction_outbox WHERE local_id = ?`, localID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("leer entrada local: %w", err)
	}
	var tx entity.Transaction
	if err := json.Unmarshal([]byte(row.Payload), &tx); err != nil {
		return nil, fmt.Errorf("deserializar transacción %s: %w", localID, err)
	}
	tx.Local = true
	return &tx, nil
}

// Remove elimina una entrada confirmada por el almacén autoritativo.
func (q *Queue) Remove(localID string) error {
	_, err := q.db.Exec(`DELETE FROM transaction_outbox WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("eliminar entrada local: %w", err)
	}
	return nil
}

// Close cierra la base local.
func (q *Queue) Close() error { return q.db.Close() }
