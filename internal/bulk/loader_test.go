package bulk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/telseed/internal/catalog"
	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
	"github.com/Rana718/telseed/internal/store/storetest"
)

func newLoader(t *testing.T, rec *storetest.Recorder, opts ...Option) *Loader {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewLoader(rec, cat, opts...)
}

func items() []entity.Row {
	return entity.Rows([]entity.InvoiceItem{
		{ID: 1, Name: "Calls", UnitCost: decimal.RequireFromString("12.30")},
		{ID: 2, Name: "Phone 4G", UnitCost: decimal.RequireFromString("999.99")},
	})
}

func TestLoadCopiesRows(t *testing.T) {
	rec := &storetest.Recorder{}
	n, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, items())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cp, ok := rec.CopyFor("invoice_item")
	require.True(t, ok)
	assert.Equal(t, []string{"1,Calls,12.3", "2,Phone 4G,999.99"}, cp.Lines())

	require.Len(t, rec.Log, 2)
	assert.True(t, strings.HasPrefix(rec.Log[1], `SELECT setval('invoice_item_item_id_seq'::regclass`), rec.Log[1])
	assert.Contains(t, rec.Log[1], `FROM "invoice_item"`)
	assert.Equal(t, 1, rec.Dials)
	assert.Equal(t, 1, rec.Closes)
}

func TestLoadNeverRewindsSequence(t *testing.T) {
	rec := &storetest.Recorder{}
	_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, items())
	require.NoError(t, err)

	require.Len(t, rec.Log, 2)
	sync := rec.Log[1]
	assert.Contains(t, sync, `greatest(max("item_id"), (SELECT last_value FROM "invoice_item_item_id_seq"))`)
	assert.Contains(t, sync, `max("item_id") IS NOT NULL OR (SELECT is_called FROM "invoice_item_item_id_seq")`)
}

func TestLoadRunsConstraintStatementsAroundCopy(t *testing.T) {
	rec := &storetest.Recorder{}
	rows := entity.Rows([]entity.InvoiceHasItems{
		{InvoiceNumber: 97000001, ItemID: 2, UnitCost: decimal.NewFromInt(5), Count: 1},
	})

	_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceHasItems, rows)
	require.NoError(t, err)

	// two drops, the copy, two adds; no sequence on this table
	require.Len(t, rec.Log, 5)
	assert.Contains(t, rec.Log[0], "DROP CONSTRAINT IF EXISTS invoice_has_items_invoice_number_fkey")
	assert.Contains(t, rec.Log[1], "DROP CONSTRAINT IF EXISTS invoice_has_items_invoice_item_id_fkey")
	assert.True(t, strings.HasPrefix(rec.Log[2], `COPY "invoice_has_items" `))
	assert.Contains(t, rec.Log[3], "ADD CONSTRAINT invoice_has_items_invoice_number_fkey")
	assert.Contains(t, rec.Log[4], "ADD CONSTRAINT invoice_has_items_invoice_item_id_fkey")
}

func TestLoadWithoutSequenceSync(t *testing.T) {
	rec := &storetest.Recorder{}
	_, err := newLoader(t, rec, WithSequenceSync(false)).Load(context.Background(), entity.KindInvoiceItem, items())
	require.NoError(t, err)
	require.Len(t, rec.Log, 1)
}

func TestLoadEmptyCollection(t *testing.T) {
	rec := &storetest.Recorder{}
	n, err := newLoader(t, rec).Load(context.Background(), entity.KindPriceList, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	cp, ok := rec.CopyFor("price_list")
	require.True(t, ok)
	assert.Empty(t, cp.Lines())
}

func TestLoadRejectsMixedKinds(t *testing.T) {
	rec := &storetest.Recorder{}
	rows := append(items(), entity.PriceList{ID: 1})

	_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, rows)
	assert.ErrorIs(t, err, store.ErrInvalidArguments)
	assert.Zero(t, rec.Dials)
}

func TestLoadErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("dial", func(t *testing.T) {
		rec := &storetest.Recorder{DialErr: boom}
		_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, items())
		assert.ErrorIs(t, err, store.ErrStoreUnavailable)
	})

	t.Run("pre-load", func(t *testing.T) {
		rec := &storetest.Recorder{FailExec: func(string) error { return boom }}
		rows := entity.Rows([]entity.VoipNumber{{ID: 1, Owner: entity.Unassigned{}}})
		_, err := newLoader(t, rec).Load(context.Background(), entity.KindVoipNumber, rows)
		assert.ErrorIs(t, err, store.ErrQueryFailed)
		assert.Empty(t, rec.Copies)
		assert.Equal(t, 1, rec.Closes)
	})

	t.Run("copy", func(t *testing.T) {
		rec := &storetest.Recorder{FailCopy: func(string) error { return boom }}
		_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, items())
		assert.ErrorIs(t, err, store.ErrIngestFailed)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unsafe value", func(t *testing.T) {
		rec := &storetest.Recorder{}
		rows := entity.Rows([]entity.InvoiceItem{{ID: 1, Name: "Calls, bundled"}})
		_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, rows)
		assert.ErrorIs(t, err, store.ErrIngestFailed)
		assert.ErrorIs(t, err, ErrUnsafeValue)
		assert.Empty(t, rec.Copies)
	})

	t.Run("sequence sync", func(t *testing.T) {
		rec := &storetest.Recorder{FailExec: func(sql string) error {
			if strings.Contains(sql, "setval") {
				return boom
			}
			return nil
		}}
		_, err := newLoader(t, rec).Load(context.Background(), entity.KindInvoiceItem, items())
		assert.ErrorIs(t, err, store.ErrQueryFailed)
	})
}
