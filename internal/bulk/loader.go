package bulk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/Rana718/telseed/internal/catalog"
	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
)

type Loader struct {
	dialer        store.Dialer
	catalog       *catalog.Catalog
	format        Format
	syncSequences bool
	log           *zap.Logger
}

type Option func(*Loader)

func WithFormat(format Format) Option {
	return func(l *Loader) { l.format = format }
}

// WithSequenceSync controls whether a table's identity sequence is advanced to
// the loaded maximum after each COPY.
func WithSequenceSync(enabled bool) Option {
	return func(l *Loader) { l.syncSequences = enabled }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Loader) { l.log = log }
}

func NewLoader(dialer store.Dialer, cat *catalog.Catalog, opts ...Option) *Loader {
	l := &Loader{
		dialer:        dialer,
		catalog:       cat,
		format:        DefaultFormat(),
		syncSequences: true,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load copies rows into the table the catalog maps kind to, running the
// table's pre-load statements before and its post-load statements after the
// COPY. It returns the number of rows the store accepted.
func (l *Loader) Load(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error) {
	table, err := l.catalog.Table(kind)
	if err != nil {
		return 0, err
	}
	for i, row := range rows {
		if row.Kind() != kind {
			return 0, fmt.Errorf("%w: row %d is a %s, loading %s", store.ErrInvalidArguments, i, row.Kind(), kind)
		}
	}

	start := time.Now()
	log := l.log.With(zap.String("table", table.Name))

	conn, err := l.dialer.Dial(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	if table.PreLoad != "" {
		log.Debug("running pre-load statements")
		if err := store.ExecScript(ctx, conn, table.PreLoad); err != nil {
			return 0, fmt.Errorf("pre-load %s: %w", table.Name, err)
		}
	}

	copied, err := l.copy(ctx, conn, table, rows)
	if err != nil {
		return copied, err
	}

	if table.PostLoad != "" {
		log.Debug("running post-load statements")
		if err := store.ExecScript(ctx, conn, table.PostLoad); err != nil {
			return copied, fmt.Errorf("post-load %s: %w", table.Name, err)
		}
	}

	if l.syncSequences && table.Sequence != "" {
		if err := l.syncSequence(ctx, conn, table); err != nil {
			return copied, err
		}
	}

	log.Info("table loaded",
		zap.Int("rows", len(rows)),
		zap.Int64("copied", copied),
		zap.Duration("elapsed", time.Since(start)),
	)
	return copied, nil
}

func (l *Loader) copy(ctx context.Context, conn store.Conn, table catalog.Table, rows []entity.Row) (int64, error) {
	pr, pw := io.Pipe()
	encoded := make(chan error, 1)
	go func() {
		err := l.encode(pw, rows, len(table.Columns))
		pw.CloseWithError(err)
		encoded <- err
	}()

	copied, copyErr := conn.CopyIn(ctx, l.format.CopyStatement(table.Name, table.Columns), pr)
	// unblocks the encoder if the store stopped reading early
	pr.CloseWithError(io.ErrClosedPipe)
	encodeErr := <-encoded

	if encodeErr != nil && !errors.Is(encodeErr, io.ErrClosedPipe) {
		return 0, fmt.Errorf("%w: %s: %w", store.ErrIngestFailed, table.Name, encodeErr)
	}
	if copyErr != nil {
		return 0, fmt.Errorf("%w: %s: %w", store.ErrIngestFailed, table.Name, copyErr)
	}
	return copied, nil
}

func (l *Loader) encode(w io.Writer, rows []entity.Row, width int) error {
	bw := bufio.NewWriterSize(w, 64*1024)
	var buf []byte
	for i, row := range rows {
		fields := row.Fields()
		if len(fields) != width {
			return fmt.Errorf("row %d has %d fields, table has %d columns", i, len(fields), width)
		}
		var err error
		buf, err = l.format.AppendRow(buf[:0], fields)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// syncSequence moves the table's identity sequence forward to the largest
// loaded identifier. A sequence that already issued higher values keeps them.
func (l *Loader) syncSequence(ctx context.Context, conn store.Conn, table catalog.Table) error {
	id := store.QuoteIdent(table.Columns[0])
	seq := store.QuoteIdent(table.Sequence)
	query, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select(fmt.Sprintf("setval(%s::regclass, greatest(max(%s), (SELECT last_value FROM %s)), max(%s) IS NOT NULL OR (SELECT is_called FROM %s))",
			store.QuoteLiteral(table.Sequence), id, seq, id, seq)).
		From(store.QuoteIdent(table.Name)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: failed to build sequence sync for %s: %w", store.ErrQueryFailed, table.Name, err)
	}

	if err := conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: sequence sync %s: %w", store.ErrQueryFailed, table.Sequence, err)
	}
	l.log.Debug("sequence synced", zap.String("sequence", table.Sequence))
	return nil
}
