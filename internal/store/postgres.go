package store

import (
	"context"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
)

type PostgresDialer struct {
	config *pgx.ConnConfig
}

func NewPostgresDialer(url string) (*PostgresDialer, error) {
	config, err := pgx.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse connection URL: %w", ErrInvalidArguments, err)
	}

	config.DefaultQueryExecMode = pgx.QueryExecModeExec

	return &PostgresDialer{config: config}, nil
}

func (d *PostgresDialer) Dial(ctx context.Context) (Conn, error) {
	conn, err := pgx.ConnectConfig(ctx, d.config.Copy())
	if err != nil {
		return nil, fmt.Errorf("%w: failed joining to %s: %w", ErrStoreUnavailable, d.config.Host, err)
	}
	return &pgConn{conn: conn}, nil
}

type pgConn struct {
	conn *pgx.Conn
}

func (c *pgConn) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := c.conn.Exec(ctx, sql, args...)
	return err
}

func (c *pgConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.conn.QueryRow(ctx, sql, args...)
}

func (c *pgConn) CopyIn(ctx context.Context, sql string, r io.Reader) (int64, error) {
	tag, err := c.conn.PgConn().CopyFrom(ctx, r, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
