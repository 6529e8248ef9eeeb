package database

import (
	"context"
	"database/sql"
	"fmt"
)

type TxFunc func(tx *sql.Tx) error

// WithTransaction runs fn inside a transaction. Any error from fn rolls
// the transaction back and is returned unchanged.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// schemaTables are the tables the migrations create; all of them must
// exist before the service can serve requests.
var schemaTables = []string{"users", "scaling_decisions"}

// SchemaReady distinguishes "postgres is up" from "the schema has been
// migrated". The readiness probe uses it so a fresh database does not
// report ready before -migrate has run.
func (db *DB) SchemaReady(ctx context.Context) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)`

	for _, table := range schemaTables {
		var exists bool
		if err := db.QueryRowContext(ctx, query, table).Scan(&exists); err != nil {
			return false, fmt.Errorf("checking table %s: %w", table, err)
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}

func (db *DB) GetConnectionStats() sql.DBStats {
	return db.Stats()
}
