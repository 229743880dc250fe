package seeder

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
)

const (
	maxParticipants   = 4
	maxNumbers        = 4
	numberRequestRate = 10
	// rejection sampling gives up after this many draws and scans instead
	maxPickAttempts = 32
)

// Sink receives each collection as soon as it is complete. *bulk.Loader is
// the production sink.
type Sink interface {
	Load(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error)
}

type SinkFunc func(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error)

func (f SinkFunc) Load(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error) {
	return f(ctx, kind, rows)
}

// Assembler generates the dataset in dependency order so that every foreign
// key refers to a row that was handed to the sink earlier.
type Assembler struct {
	gen *DataGenerator
	log *zap.Logger
}

func NewAssembler(gen *DataGenerator, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{gen: gen, log: log}
}

// Run generates plan starting after c and returns the counters advanced past
// every allocated identifier. On error the returned counters reflect what was
// allocated before the failure.
func (a *Assembler) Run(ctx context.Context, plan Plan, c Counters, sink Sink) (Counters, error) {
	if err := plan.Validate(c); err != nil {
		return c, err
	}

	contracts, c := a.contracts(plan.Contracts, c)
	if err := emit(ctx, sink, contracts); err != nil {
		return c, err
	}

	addresses, participants, c := a.members(contracts, c)
	if err := emit(ctx, sink, addresses); err != nil {
		return c, err
	}
	if err := emit(ctx, sink, participants); err != nil {
		return c, err
	}

	numbers, requests, c := a.numbers(participants, c)
	if err := emit(ctx, sink, numbers); err != nil {
		return c, err
	}
	if err := emit(ctx, sink, requests); err != nil {
		return c, err
	}

	prices, c := a.priceLists(c)
	if err := emit(ctx, sink, prices); err != nil {
		return c, err
	}

	calls, c, err := a.calls(plan.Calls, numbers, prices, c)
	if err != nil {
		return c, err
	}
	if err := emit(ctx, sink, calls); err != nil {
		return c, err
	}

	items, c := a.invoiceItems(c)
	invoices, lines, c := a.invoices(contracts, items, c)
	if err := emit(ctx, sink, items); err != nil {
		return c, err
	}
	if err := emit(ctx, sink, invoices); err != nil {
		return c, err
	}
	if err := emit(ctx, sink, lines); err != nil {
		return c, err
	}

	return c, nil
}

func emit[T entity.Row](ctx context.Context, sink Sink, items []T) error {
	var zero T
	kind := zero.Kind()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("loading %s: %w", kind, err)
	}
	if _, err := sink.Load(ctx, kind, entity.Rows(items)); err != nil {
		return fmt.Errorf("loading %s: %w", kind, err)
	}
	return nil
}

func (a *Assembler) contracts(n int, c Counters) ([]entity.Contract, Counters) {
	contracts := make([]entity.Contract, 0, n)
	for i := 0; i < n; i++ {
		c.VariableSymbol++
		contracts = append(contracts, NewContract(a.gen, next(&c.Contract), c.VariableSymbol))
	}
	a.log.Debug("generated contracts", zap.Int("count", len(contracts)))
	return contracts, c
}

// members gives every contract one address and 1-4 participants.
func (a *Assembler) members(contracts []entity.Contract, c Counters) ([]entity.Address, []entity.Participant, Counters) {
	addresses := make([]entity.Address, 0, len(contracts))
	participants := make([]entity.Participant, 0, len(contracts)*2)
	for _, contract := range contracts {
		addresses = append(addresses, NewAddress(a.gen, next(&c.Address), contract.ID))
		for n := a.gen.Between(1, maxParticipants); n > 0; n-- {
			participants = append(participants, NewParticipant(a.gen, next(&c.Participant), contract.ID))
		}
	}
	a.log.Debug("generated members", zap.Int("addresses", len(addresses)), zap.Int("participants", len(participants)))
	return addresses, participants, c
}

// numbers gives every participant 1-4 numbers and, now and then, an
// unassigned number they requested.
func (a *Assembler) numbers(participants []entity.Participant, c Counters) ([]entity.VoipNumber, []entity.NumberRequest, Counters) {
	numbers := make([]entity.VoipNumber, 0, len(participants)*2)
	var requests []entity.NumberRequest
	for _, p := range participants {
		for n := a.gen.Between(1, maxNumbers); n > 0; n-- {
			numbers = append(numbers, NewVoipNumber(a.gen, next(&c.VoipNumber), entity.Assigned{ParticipantID: p.ID}))
		}
		if a.gen.Chance(numberRequestRate) {
			requested := NewVoipNumber(a.gen, next(&c.VoipNumber), entity.Unassigned{})
			numbers = append(numbers, requested)
			requests = append(requests, NewNumberRequest(a.gen, p.ID, requested.ID))
		}
	}
	a.log.Debug("generated voip numbers", zap.Int("numbers", len(numbers)), zap.Int("requests", len(requests)))
	return numbers, requests, c
}

func (a *Assembler) priceLists(c Counters) ([]entity.PriceList, Counters) {
	prices := make([]entity.PriceList, 0, len(PriceListCatalog))
	for _, entry := range PriceListCatalog {
		prices = append(prices, NewPriceList(next(&c.PriceList), entry))
	}
	return prices, c
}

func (a *Assembler) calls(n int, numbers []entity.VoipNumber, prices []entity.PriceList, c Counters) ([]entity.CallDetailRecord, Counters, error) {
	if n == 0 {
		return nil, c, nil
	}
	if len(numbers) == 0 || len(prices) == 0 {
		return nil, c, fmt.Errorf("%w: %d call records requested but no voip numbers were generated", store.ErrInvalidArguments, n)
	}

	calls := make([]entity.CallDetailRecord, 0, n)
	for i := 0; i < n; i++ {
		price := prices[a.gen.Index(len(prices))]
		number := numbers[a.gen.Index(len(numbers))]
		calls = append(calls, NewCallDetailRecord(a.gen, next(&c.CallDetailRecord), number, price))
	}
	a.log.Debug("generated call records", zap.Int("count", len(calls)))
	return calls, c, nil
}

func (a *Assembler) invoiceItems(c Counters) ([]entity.InvoiceItem, Counters) {
	items := make([]entity.InvoiceItem, 0, len(InvoiceItemCatalog))
	for _, name := range InvoiceItemCatalog {
		items = append(items, NewInvoiceItem(a.gen, next(&c.InvoiceItem), name))
	}
	return items, c
}

// invoices bills every contract up to six times, one or two distinct items
// per invoice.
func (a *Assembler) invoices(contracts []entity.Contract, items []entity.InvoiceItem, c Counters) ([]entity.Invoice, []entity.InvoiceHasItems, Counters) {
	invoices := make([]entity.Invoice, 0, len(contracts)*3)
	lines := make([]entity.InvoiceHasItems, 0, len(contracts)*4)

	for _, contract := range contracts {
		for k := a.gen.Between(0, 7); k > 1; k-- {
			c.InvoiceNumber++
			number := c.InvoiceNumber

			picked := a.pickItems(a.gen.Between(2, 3)-1, items)
			if len(picked) == 0 {
				continue
			}
			invoiceLines := make([]entity.InvoiceHasItems, 0, len(picked))
			for _, item := range picked {
				invoiceLines = append(invoiceLines, NewInvoiceLine(number, item))
			}
			invoices = append(invoices, NewInvoice(a.gen, number, contract.ID, invoiceLines))
			lines = append(lines, invoiceLines...)
		}
	}
	a.log.Debug("generated invoices", zap.Int("invoices", len(invoices)), zap.Int("lines", len(lines)))
	return invoices, lines, c
}

// pickItems draws n distinct items. Draws that hit an already used item are
// repeated a bounded number of times before falling back to the first unused.
func (a *Assembler) pickItems(n int, items []entity.InvoiceItem) []entity.InvoiceItem {
	picked := make([]entity.InvoiceItem, 0, n)
	used := make(map[int]bool, n)
	for len(picked) < n && len(used) < len(items) {
		idx := -1
		for attempt := 0; attempt < maxPickAttempts; attempt++ {
			if i := a.gen.Index(len(items)); !used[i] {
				idx = i
				break
			}
		}
		if idx < 0 {
			for i := range items {
				if !used[i] {
					idx = i
					break
				}
			}
		}
		used[idx] = true
		picked = append(picked, items[idx])
	}
	return picked
}
