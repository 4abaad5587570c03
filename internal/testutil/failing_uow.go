package testutil

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/kurva/internal/db"
)

var writeTarget = regexp.MustCompile(`(?is)^\s*(?:INSERT\s+(?:OR\s+\w+\s+)?INTO|UPDATE|DELETE\s+FROM)\s+(\w+)`)

// FailingUoW runs real transactions in which the Nth write to Table fails
// with Err, counting from 1. Writes are INSERT, UPDATE and DELETE statements;
// an empty Table counts writes to every table. Reads pass through.
type FailingUoW struct {
	DB    *sql.DB
	Table string
	Nth   int32
	Err   error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn db.TxFunc) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &failingWrites{DBTX: tx, uow: u})
	})
}

type failingWrites struct {
	db.DBTX
	uow   *FailingUoW
	count atomic.Int32
}

func (f *failingWrites) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if m := writeTarget.FindStringSubmatch(query); m != nil {
		if f.uow.Table == "" || strings.EqualFold(m[1], f.uow.Table) {
			if f.count.Add(1) == f.uow.Nth {
				return nil, f.uow.Err
			}
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
