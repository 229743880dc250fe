// Package storetest provides an in-memory store.Dialer that records what the
// pipeline sends to the database.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Rana718/telseed/internal/store"
)

type Copy struct {
	SQL  string
	Data string
}

// Lines returns the non-empty lines of the COPY payload.
func (c Copy) Lines() []string {
	var lines []string
	for _, line := range strings.Split(c.Data, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Recorder implements store.Dialer. All connections share its log.
type Recorder struct {
	// Log holds every Exec and COPY statement in the order they were issued.
	Log    []string
	Copies []Copy
	Dials  int
	Closes int

	DialErr  error
	FailExec func(sql string) error
	FailCopy func(sql string) error
	Query    func(sql string, args []any) pgx.Row
}

func (r *Recorder) Dial(ctx context.Context) (store.Conn, error) {
	if r.DialErr != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreUnavailable, r.DialErr)
	}
	r.Dials++
	return &conn{r: r}, nil
}

// CopyFor returns the recorded COPY whose statement targets table.
func (r *Recorder) CopyFor(table string) (Copy, bool) {
	for _, c := range r.Copies {
		if strings.HasPrefix(c.SQL, fmt.Sprintf("COPY %q ", table)) {
			return c, true
		}
	}
	return Copy{}, false
}

type conn struct {
	r *Recorder
}

func (c *conn) Exec(ctx context.Context, sql string, args ...any) error {
	c.r.Log = append(c.r.Log, sql)
	if c.r.FailExec != nil {
		return c.r.FailExec(sql)
	}
	return nil
}

func (c *conn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if c.r.Query == nil {
		return Row{Err: errors.New("storetest: no query handler")}
	}
	return c.r.Query(sql, args)
}

func (c *conn) CopyIn(ctx context.Context, sql string, r io.Reader) (int64, error) {
	c.r.Log = append(c.r.Log, sql)
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if c.r.FailCopy != nil {
		if err := c.r.FailCopy(sql); err != nil {
			return 0, err
		}
	}
	cp := Copy{SQL: sql, Data: string(data)}
	c.r.Copies = append(c.r.Copies, cp)
	return int64(len(cp.Lines())), nil
}

func (c *conn) Close(ctx context.Context) error {
	c.r.Closes++
	return nil
}

// Row is a canned pgx.Row.
type Row struct {
	Values []any
	Err    error
}

func (r Row) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	if len(dest) != len(r.Values) {
		return fmt.Errorf("storetest: scan into %d destinations, row has %d values", len(dest), len(r.Values))
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.Values[i]))
	}
	return nil
}
