package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
)

// collector is a Sink that keeps every collection in memory.
type collector struct {
	order []entity.Kind
	rows  map[entity.Kind][]entity.Row
}

func newCollector() *collector {
	return &collector{rows: make(map[entity.Kind][]entity.Row)}
}

func (c *collector) Load(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error) {
	c.order = append(c.order, kind)
	c.rows[kind] = rows
	return int64(len(rows)), nil
}

func rowsOf[T entity.Row](t *testing.T, c *collector, kind entity.Kind) []T {
	t.Helper()
	out := make([]T, 0, len(c.rows[kind]))
	for _, row := range c.rows[kind] {
		v, ok := row.(T)
		require.True(t, ok, "unexpected %T in %s", row, kind)
		out = append(out, v)
	}
	return out
}

var emptyTarget = Counters{VariableSymbol: 100000, InvoiceNumber: 97000000}

func TestAssemblerEndToEnd(t *testing.T) {
	sink := newCollector()
	a := NewAssembler(newTestGenerator(11), nil)

	counters, err := a.Run(context.Background(), Plan{Contracts: 3, Calls: 10}, emptyTarget, sink)
	require.NoError(t, err)
	assert.Equal(t, entity.Kinds, sink.order)

	contracts := rowsOf[entity.Contract](t, sink, entity.KindContract)
	require.Len(t, contracts, 3)
	for i, c := range contracts {
		assert.Equal(t, uint32(i+1), c.ID)
		assert.Equal(t, int64(100001+i), c.VariableSymbol)
	}

	addresses := rowsOf[entity.Address](t, sink, entity.KindAddress)
	require.Len(t, addresses, 3)
	for i, addr := range addresses {
		assert.Equal(t, contracts[i].ID, addr.ContractID)
	}

	participants := rowsOf[entity.Participant](t, sink, entity.KindParticipant)
	assert.GreaterOrEqual(t, len(participants), 3)
	assert.LessOrEqual(t, len(participants), 12)
	participantIDs := map[uint32]bool{}
	for _, p := range participants {
		assert.LessOrEqual(t, p.ContractID, uint32(3))
		participantIDs[p.ID] = true
	}

	numbers := rowsOf[entity.VoipNumber](t, sink, entity.KindVoipNumber)
	requests := rowsOf[entity.NumberRequest](t, sink, entity.KindNumberRequest)
	assigned := 0
	numberIDs := map[uint32]bool{}
	unassigned := map[uint32]bool{}
	for _, n := range numbers {
		numberIDs[n.ID] = true
		if owner, ok := n.ParticipantID(); ok {
			assigned++
			assert.True(t, participantIDs[owner])
		} else {
			unassigned[n.ID] = true
		}
	}
	assert.GreaterOrEqual(t, assigned, 3)
	assert.LessOrEqual(t, assigned, 48)
	require.Len(t, requests, len(unassigned))
	for _, r := range requests {
		assert.True(t, unassigned[r.NumberID], "request for assigned number %d", r.NumberID)
		assert.True(t, participantIDs[r.ParticipantID])
	}

	prices := rowsOf[entity.PriceList](t, sink, entity.KindPriceList)
	require.Len(t, prices, 5)
	priceIDs := map[uint32]bool{}
	for i, p := range prices {
		assert.Equal(t, uint32(i+1), p.ID)
		priceIDs[p.ID] = true
	}

	calls := rowsOf[entity.CallDetailRecord](t, sink, entity.KindCallDetailRecord)
	require.Len(t, calls, 10)
	for i, call := range calls {
		assert.Equal(t, uint32(i+1), call.ID)
		assert.True(t, numberIDs[call.NumberID])
		assert.True(t, priceIDs[call.PriceListID])
	}

	items := rowsOf[entity.InvoiceItem](t, sink, entity.KindInvoiceItem)
	require.Len(t, items, 6)
	itemCost := map[uint32]decimal.Decimal{}
	for i, item := range items {
		assert.Equal(t, InvoiceItemCatalog[i], item.Name)
		itemCost[item.ID] = item.UnitCost
	}

	invoices := rowsOf[entity.Invoice](t, sink, entity.KindInvoice)
	lines := rowsOf[entity.InvoiceHasItems](t, sink, entity.KindInvoiceHasItems)
	perContract := map[uint32]int{}
	linesPerInvoice := map[uint64][]entity.InvoiceHasItems{}
	for _, line := range lines {
		linesPerInvoice[line.InvoiceNumber] = append(linesPerInvoice[line.InvoiceNumber], line)
	}
	for _, inv := range invoices {
		perContract[inv.ContractID]++
		assert.Greater(t, inv.Number, uint64(97000000))

		invLines := linesPerInvoice[inv.Number]
		require.GreaterOrEqual(t, len(invLines), 1)
		require.LessOrEqual(t, len(invLines), 2)

		seen := map[uint32]bool{}
		sum := decimal.Zero
		for _, line := range invLines {
			assert.False(t, seen[line.ItemID], "item %d repeated on invoice %d", line.ItemID, inv.Number)
			seen[line.ItemID] = true
			assert.True(t, itemCost[line.ItemID].Equal(line.UnitCost))
			sum = sum.Add(line.UnitCost)
		}
		assert.True(t, sum.Equal(inv.Amount), "invoice %d amount %s, lines sum %s", inv.Number, inv.Amount, sum)
	}
	for _, n := range perContract {
		assert.LessOrEqual(t, n, 6)
	}
	assert.Len(t, linesPerInvoice, len(invoices))

	assert.Equal(t, uint32(3), counters.Contract)
	assert.Equal(t, uint32(3), counters.Address)
	assert.Equal(t, uint32(len(participants)), counters.Participant)
	assert.Equal(t, uint32(len(numbers)), counters.VoipNumber)
	assert.Equal(t, uint32(5), counters.PriceList)
	assert.Equal(t, uint32(6), counters.InvoiceItem)
	assert.Equal(t, uint32(10), counters.CallDetailRecord)
	assert.Equal(t, int64(100003), counters.VariableSymbol)
	assert.Equal(t, uint64(97000000+len(invoices)), counters.InvoiceNumber)
}

func TestAssemblerContinuesFromCounters(t *testing.T) {
	start := Counters{
		Contract:         40,
		Participant:      100,
		Address:          41,
		VoipNumber:       700,
		PriceList:        5,
		InvoiceItem:      6,
		CallDetailRecord: 12345,
		VariableSymbol:   100040,
		InvoiceNumber:    97000500,
	}
	sink := newCollector()

	got, err := NewAssembler(newTestGenerator(12), nil).Run(context.Background(), Plan{Contracts: 2, Calls: 3}, start, sink)
	require.NoError(t, err)

	contracts := rowsOf[entity.Contract](t, sink, entity.KindContract)
	assert.Equal(t, uint32(41), contracts[0].ID)
	assert.Equal(t, int64(100041), contracts[0].VariableSymbol)
	assert.Equal(t, uint32(42), rowsOf[entity.Address](t, sink, entity.KindAddress)[0].ID)
	assert.Equal(t, uint32(101), rowsOf[entity.Participant](t, sink, entity.KindParticipant)[0].ID)
	assert.Equal(t, uint32(701), rowsOf[entity.VoipNumber](t, sink, entity.KindVoipNumber)[0].ID)
	assert.Equal(t, uint32(6), rowsOf[entity.PriceList](t, sink, entity.KindPriceList)[0].ID)
	assert.Equal(t, uint32(7), rowsOf[entity.InvoiceItem](t, sink, entity.KindInvoiceItem)[0].ID)
	assert.Equal(t, uint32(12346), rowsOf[entity.CallDetailRecord](t, sink, entity.KindCallDetailRecord)[0].ID)
	for _, inv := range rowsOf[entity.Invoice](t, sink, entity.KindInvoice) {
		assert.Greater(t, inv.Number, uint64(97000500))
	}

	assert.Equal(t, uint32(42), got.Contract)
	assert.Equal(t, uint32(12348), got.CallDetailRecord)
	assert.Equal(t, int64(100042), got.VariableSymbol)
}

func TestAssemblerIsDeterministicForASeed(t *testing.T) {
	first, second := newCollector(), newCollector()
	plan := Plan{Contracts: 5, Calls: 20}

	_, err := NewAssembler(newTestGenerator(99), nil).Run(context.Background(), plan, emptyTarget, first)
	require.NoError(t, err)
	_, err = NewAssembler(newTestGenerator(99), nil).Run(context.Background(), plan, emptyTarget, second)
	require.NoError(t, err)

	assert.Equal(t, first.rows, second.rows)
}

func TestAssemblerZeroContracts(t *testing.T) {
	sink := newCollector()
	got, err := NewAssembler(newTestGenerator(13), nil).Run(context.Background(), Plan{}, emptyTarget, sink)
	require.NoError(t, err)

	// catalogs still load
	assert.Len(t, sink.rows[entity.KindPriceList], 5)
	assert.Len(t, sink.rows[entity.KindInvoiceItem], 6)
	assert.Empty(t, sink.rows[entity.KindContract])
	assert.Equal(t, emptyTarget.InvoiceNumber, got.InvoiceNumber)
}

func TestAssemblerRejectsCallsWithoutNumbers(t *testing.T) {
	sink := newCollector()
	_, err := NewAssembler(newTestGenerator(14), nil).Run(context.Background(), Plan{Contracts: 0, Calls: 5}, emptyTarget, sink)
	assert.ErrorIs(t, err, store.ErrInvalidArguments)
	assert.Empty(t, sink.order)
}

func TestAssemblerRejectsIdentifierOverflow(t *testing.T) {
	start := emptyTarget
	start.CallDetailRecord = 1<<32 - 5
	_, err := NewAssembler(newTestGenerator(15), nil).Run(context.Background(), Plan{Contracts: 1, Calls: 10}, start, newCollector())
	assert.ErrorIs(t, err, store.ErrInvalidArguments)
}

func TestAssemblerStopsOnSinkFailure(t *testing.T) {
	boom := errors.New("boom")
	var loaded []entity.Kind
	sink := SinkFunc(func(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error) {
		loaded = append(loaded, kind)
		if kind == entity.KindVoipNumber {
			return 0, boom
		}
		return int64(len(rows)), nil
	})

	got, err := NewAssembler(newTestGenerator(16), nil).Run(context.Background(), Plan{Contracts: 2, Calls: 2}, emptyTarget, sink)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []entity.Kind{entity.KindContract, entity.KindAddress, entity.KindParticipant, entity.KindVoipNumber}, loaded)
	assert.Equal(t, uint32(2), got.Contract)
	assert.Zero(t, got.CallDetailRecord)
}

func TestAssemblerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(newTestGenerator(17), nil).Run(ctx, Plan{Contracts: 1}, emptyTarget, newCollector())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPickItemsDistinct(t *testing.T) {
	a := NewAssembler(newTestGenerator(18), nil)
	items := make([]entity.InvoiceItem, len(InvoiceItemCatalog))
	for i := range items {
		items[i] = entity.InvoiceItem{ID: uint32(i + 1)}
	}

	for round := 0; round < 100; round++ {
		picked := a.pickItems(len(items), items)
		require.Len(t, picked, len(items))
		seen := map[uint32]bool{}
		for _, item := range picked {
			require.False(t, seen[item.ID])
			seen[item.ID] = true
		}
	}

	assert.Len(t, a.pickItems(len(items)+3, items), len(items))
	assert.Empty(t, a.pickItems(2, nil))
}

func TestInvoicesWithoutItemsAreSkipped(t *testing.T) {
	a := NewAssembler(newTestGenerator(19), nil)
	contracts := make([]entity.Contract, 20)
	for i := range contracts {
		contracts[i] = entity.Contract{ID: uint32(i + 1)}
	}

	invoices, lines, c := a.invoices(contracts, nil, emptyTarget)
	assert.Empty(t, invoices)
	assert.Empty(t, lines)
	// numbers drawn for skipped invoices stay consumed
	assert.Greater(t, c.InvoiceNumber, emptyTarget.InvoiceNumber)
}
