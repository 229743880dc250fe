package seeder

import (
	"fmt"
	"math"

	"github.com/Rana718/telseed/internal/sequence"
	"github.com/Rana718/telseed/internal/store"
)

// Counters hold the last identifier allocated in each domain. The assembler
// takes them by value and returns them advanced past every row it generated.
type Counters struct {
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

func CountersFrom(marks sequence.Marks) Counters {
	return Counters(marks)
}

func next(v *uint32) uint32 {
	*v++
	return *v
}

// Plan sizes one run.
type Plan struct {
	Contracts int
	Calls     int
}

// Validate rejects plans that cannot be generated from c without running an
// identifier domain past its range.
func (p Plan) Validate(c Counters) error {
	if p.Contracts < 0 || p.Calls < 0 {
		return fmt.Errorf("%w: contract and call counts must not be negative", store.ErrInvalidArguments)
	}
	if p.Calls > 0 && p.Contracts == 0 {
		return fmt.Errorf("%w: call records need at least one contract to own voip numbers", store.ErrInvalidArguments)
	}

	n := uint64(p.Contracts)
	worst := []struct {
		domain string
		mark   uint32
		rows   uint64
	}{
		{"contract", c.Contract, n},
		{"address", c.Address, n},
		{"participant", c.Participant, maxParticipants * n},
		{"voip number", c.VoipNumber, (maxNumbers + 1) * maxParticipants * n},
		{"price list", c.PriceList, uint64(len(PriceListCatalog))},
		{"invoice item", c.InvoiceItem, uint64(len(InvoiceItemCatalog))},
		{"call detail record", c.CallDetailRecord, uint64(p.Calls)},
	}
	for _, w := range worst {
		if uint64(w.mark)+w.rows > math.MaxUint32 {
			return fmt.Errorf("%w: %s identifiers would pass %d", store.ErrInvalidArguments, w.domain, uint64(math.MaxUint32))
		}
	}
	if c.VariableSymbol > math.MaxInt64-int64(n) {
		return fmt.Errorf("%w: variable symbols exhausted", store.ErrInvalidArguments)
	}
	return nil
}
