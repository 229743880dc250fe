// Package sequence reads the identifier high-water marks of the target store so
// that generated rows continue after what it already holds.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/Rana718/telseed/internal/catalog"
	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
)

var ErrSequenceMissing = errors.New("sequence does not exist")

const undefinedTable = "42P01"

// Marks are the last identifiers already issued in each domain. Generation
// starts at mark+1.
type Marks struct {
	Contract         uint32
	Participant      uint32
	Address          uint32
	VoipNumber       uint32
	PriceList        uint32
	InvoiceItem      uint32
	CallDetailRecord uint32
	VariableSymbol   int64
	InvoiceNumber    uint64
}

type Resolver struct {
	dialer  store.Dialer
	catalog *catalog.Catalog
	builder squirrel.StatementBuilderType
	log     *zap.Logger
}

func NewResolver(dialer store.Dialer, cat *catalog.Catalog, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		dialer:  dialer,
		catalog: cat,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log:     log,
	}
}

// Resolve queries every identifier domain over a single connection.
func (r *Resolver) Resolve(ctx context.Context) (Marks, error) {
	conn, err := r.dialer.Dial(ctx)
	if err != nil {
		return Marks{}, err
	}
	defer conn.Close(ctx)

	var marks Marks
	targets := map[entity.Kind]*uint32{
		entity.KindContract:         &marks.Contract,
		entity.KindParticipant:      &marks.Participant,
		entity.KindAddress:          &marks.Address,
		entity.KindVoipNumber:       &marks.VoipNumber,
		entity.KindPriceList:        &marks.PriceList,
		entity.KindInvoiceItem:      &marks.InvoiceItem,
		entity.KindCallDetailRecord: &marks.CallDetailRecord,
	}
	for _, kind := range catalog.SequencedKinds {
		last, err := r.lastValue(ctx, conn, kind)
		if err != nil {
			return Marks{}, err
		}
		if last < 0 || last > math.MaxUint32 {
			return Marks{}, fmt.Errorf("%w: %s sequence at %d is outside the identifier range", store.ErrQueryFailed, kind, last)
		}
		*targets[kind] = uint32(last)
	}

	vs, err := r.maxWithFloor(ctx, conn, entity.KindContract, "variable_symbol", r.catalog.VariableSymbolFloor)
	if err != nil {
		return Marks{}, err
	}
	marks.VariableSymbol = vs

	invoice, err := r.maxWithFloor(ctx, conn, entity.KindInvoice, "invoice_number", r.catalog.InvoiceNumberFloor)
	if err != nil {
		return Marks{}, err
	}
	marks.InvoiceNumber = uint64(invoice)

	r.log.Debug("resolved identifier marks", zap.Any("marks", marks))
	return marks, nil
}

// lastValue returns the last value the kind's sequence handed out, or 0 when it
// has never been called.
func (r *Resolver) lastValue(ctx context.Context, conn store.Conn, kind entity.Kind) (int64, error) {
	table, err := r.catalog.Table(kind)
	if err != nil {
		return 0, err
	}

	query, args, err := r.builder.
		Select("last_value", "is_called").
		From(store.QuoteIdent(table.Sequence)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to build query for %s: %w", store.ErrQueryFailed, table.Sequence, err)
	}

	var (
		last   int64
		called bool
	)
	if err := conn.QueryRow(ctx, query, args...).Scan(&last, &called); err != nil {
		return 0, classify(table.Sequence, err)
	}
	if !called {
		return 0, nil
	}
	return last, nil
}

func (r *Resolver) maxWithFloor(ctx context.Context, conn store.Conn, kind entity.Kind, declared string, floor int64) (int64, error) {
	table, err := r.catalog.Table(kind)
	if err != nil {
		return 0, err
	}
	col, err := r.catalog.Column(kind, declared)
	if err != nil {
		return 0, err
	}

	query, args, err := r.builder.
		Select().
		Column(squirrel.Expr(fmt.Sprintf("greatest(max(%s), ?::bigint)", store.QuoteIdent(col)), floor)).
		From(store.QuoteIdent(table.Name)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to build query for %s: %w", store.ErrQueryFailed, table.Name, err)
	}

	var value int64
	if err := conn.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", store.ErrQueryFailed, table.Name, err)
	}
	// stores that answer without evaluating the query still honour the floor
	return max(value, floor), nil
}

// classify separates a missing sequence relation from other query failures.
func classify(relation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s: %w", ErrSequenceMissing, relation, err)
	}
	return fmt.Errorf("%w: %s: %w", store.ErrQueryFailed, relation, err)
}
