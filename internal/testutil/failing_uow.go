package testutil

import (
	"context"
	"database/sql"

	"github.com/alexanderramin/polylearner/internal/db"
)

// FlakyUoW wraps a UnitOfWork and fails the FailOn-th document write
// (ExecContext, counted from 1) of every transaction with Err. Reads pass
// through uncounted.
type FlakyUoW struct {
	Inner  db.UnitOfWork
	FailOn int
	Err    error
}

func (u *FlakyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return u.Inner.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &flakyTx{DBTX: tx, failOn: u.FailOn, err: u.Err})
	})
}

type flakyTx struct {
	db.DBTX
	writes int
	failOn int
	err    error
}

func (f *flakyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.writes++
	if f.writes == f.failOn {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
