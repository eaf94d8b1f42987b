package storage

import (
	"database/sql"

	"github.com/guttosm/carteirapulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// OperationsRepository is the persistence collaborator for imported
// operations. It is the sole source of truth for "does this operation
// already exist", queried in bulk once per import.
type OperationsRepository interface {
	EnsureSchema() error
	FindExistingIDs(userID string) (map[string]struct{}, error)
	InsertOperationsBatch(userID string, ops []models.Operation) error
	ListOperations(userID string) ([]models.Operation, error)
	DeleteAllOperations(userID string) (int64, error)
}

type operationsRepository struct {
	db *sql.DB
}

func NewOperationsRepository(db *sql.DB) OperationsRepository {
	return &operationsRepository{db: db}
}

// EnsureSchema creates the operations table if it does not exist yet.
// The composite primary key (user_id, operation_id) is what makes a
// duplicate import detectable at the storage level.
func (r *operationsRepository) EnsureSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS operations (
			user_id      TEXT             NOT NULL,
			operation_id TEXT             NOT NULL,
			op_date      DATE             NOT NULL,
			ticker       TEXT             NOT NULL,
			kind         TEXT             NOT NULL,
			quantity     DOUBLE PRECISION NOT NULL DEFAULT 0,
			unit_price   DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_value  DOUBLE PRECISION NOT NULL DEFAULT 0,
			broker       TEXT             NOT NULL DEFAULT '',
			imported_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, operation_id)
		)
	`)
	return err
}

// FindExistingIDs returns the set of operation ids already persisted for a
// user. One bulk query per import, never one per row.
func (r *operationsRepository) FindExistingIDs(userID string) (map[string]struct{}, error) {
	rows, err := r.db.Query(`SELECT operation_id FROM operations WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// InsertOperationsBatch inserts one chunk of operations in a single
// transaction using COPY. Callers are expected to have filtered duplicates
// already; a conflicting id fails the chunk.
func (r *operationsRepository) InsertOperationsBatch(userID string, ops []models.Operation) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.Prepare(pq.CopyIn(
		"operations",
		"user_id",
		"operation_id",
		"op_date",
		"ticker",
		"kind",
		"quantity",
		"unit_price",
		"total_value",
		"broker",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, op := range ops {
		if _, err := stmt.Exec(
			userID,
			op.OperationID,
			op.Date,
			op.Ticker,
			string(op.Kind),
			op.Quantity,
			op.UnitPrice,
			op.TotalValue,
			op.Broker,
		); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// ListOperations returns every persisted operation of a user, most recent
// first, with dates already decoded to native values for the aggregators.
func (r *operationsRepository) ListOperations(userID string) ([]models.Operation, error) {
	rows, err := r.db.Query(`
		SELECT operation_id, op_date, ticker, kind, quantity, unit_price, total_value, broker
		FROM operations
		WHERE user_id = $1
		ORDER BY op_date DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ops []models.Operation
	for rows.Next() {
		var op models.Operation
		var kind string
		if err := rows.Scan(&op.OperationID, &op.Date, &op.Ticker, &kind, &op.Quantity, &op.UnitPrice, &op.TotalValue, &op.Broker); err != nil {
			return nil, err
		}
		op.Kind = models.OperationKind(kind)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// DeleteAllOperations removes every operation of a user and reports how
// many rows were deleted.
func (r *operationsRepository) DeleteAllOperations(userID string) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM operations WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
