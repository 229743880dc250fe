package store

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/jackc/pgx/v5"
)

// DumpDialer hands out connections that write every statement and COPY payload
// to w as a psql-compatible script instead of talking to a server. Queries
// return zero values, so identifier resolution behaves like an empty target.
type DumpDialer struct {
	w io.Writer
}

func NewDumpDialer(w io.Writer) *DumpDialer {
	return &DumpDialer{w: w}
}

func (d *DumpDialer) Dial(ctx context.Context) (Conn, error) {
	return &dumpConn{w: d.w}, nil
}

type dumpConn struct {
	w io.Writer
}

func (c *dumpConn) Exec(ctx context.Context, sql string, args ...any) error {
	if len(args) > 0 {
		_, err := fmt.Fprintf(c.w, "-- args: %v\n%s;\n", args, sql)
		return err
	}
	_, err := fmt.Fprintf(c.w, "%s;\n", sql)
	return err
}

func (c *dumpConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return zeroRow{}
}

func (c *dumpConn) CopyIn(ctx context.Context, sql string, r io.Reader) (int64, error) {
	if _, err := fmt.Fprintf(c.w, "%s;\n", sql); err != nil {
		return 0, err
	}

	var rows int64
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(c.w, "%s\n", line); err != nil {
			return rows, err
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return rows, err
	}

	_, err := io.WriteString(c.w, "\\.\n")
	return rows, err
}

func (c *dumpConn) Close(ctx context.Context) error {
	return nil
}

type zeroRow struct{}

func (zeroRow) Scan(dest ...any) error {
	for _, d := range dest {
		v := reflect.ValueOf(d)
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return fmt.Errorf("scan destination %T is not a pointer", d)
		}
		v.Elem().Set(reflect.Zero(v.Elem().Type()))
	}
	return nil
}
