package store

import (
	"context"
	"errors"
	"io"

	"github.com/jackc/pgx/v5"
)

var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrQueryFailed      = errors.New("query failed")
	ErrIngestFailed     = errors.New("ingest failed")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Conn is one blocking connection to the target store. Every logical operation
// (identifier resolution, each bulk load) dials its own.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) error
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	// CopyIn streams r into a COPY ... FROM STDIN statement and returns the
	// number of rows the store accepted.
	CopyIn(ctx context.Context, sql string, r io.Reader) (int64, error)
	Close(ctx context.Context) error
}

type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}
