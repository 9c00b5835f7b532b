package pg

import (
	"context"
	"database/sql"

	trmsql "github.com/avito-tech/go-transaction-manager/drivers/sql/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	trmcontext "github.com/avito-tech/go-transaction-manager/trm/v2/context"
	trmmanager "github.com/avito-tech/go-transaction-manager/trm/v2/manager"

	"teamaccess/internal/domain"
)

// TxManager runs a unit of work in one database transaction. Repositories
// pick the transaction up from the context, so a row locked with FOR UPDATE
// stays locked until fn returns.
type TxManager struct {
	tm trm.Manager
}

func NewTxManager(db *sql.DB) domain.UnitOfWork {
	return &TxManager{tm: newManager(db)}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.tm.Do(ctx, fn)
}

// SnapshotReader runs fn in a REPEATABLE READ, READ ONLY transaction, so every
// query inside it reads the same snapshot. Must not be nested in another
// transaction.
type SnapshotReader struct {
	tm trm.Manager
	db *sql.DB
}

func NewSnapshotReader(db *sql.DB) domain.UnitOfWork {
	return &SnapshotReader{tm: newManager(db), db: db}
}

func (m *SnapshotReader) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.tm.Do(ctx, func(ctx context.Context) error {
		tr := trmsql.DefaultCtxGetter.DefaultTrOrDB(ctx, m.db)
		if _, err := tr.ExecContext(ctx, `SET TRANSACTION ISOLATION LEVEL REPEATABLE READ, READ ONLY`); err != nil {
			return err
		}
		return fn(ctx)
	})
}

func newManager(db *sql.DB) trm.Manager {
	return trmmanager.Must(
		trmsql.NewDefaultFactory(db),
		trmmanager.WithCtxManager(trmcontext.DefaultManager),
	)
}

// store is embedded by every repository. Its helpers run on the transaction
// carried by ctx, or on the pool when there is none.
type store struct {
	db *sql.DB
}

func (s store) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return trmsql.DefaultCtxGetter.DefaultTrOrDB(ctx, s.db).ExecContext(ctx, q, args...)
}

func (s store) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return trmsql.DefaultCtxGetter.DefaultTrOrDB(ctx, s.db).QueryRowContext(ctx, q, args...)
}

func (s store) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return trmsql.DefaultCtxGetter.DefaultTrOrDB(ctx, s.db).QueryContext(ctx, q, args...)
}
