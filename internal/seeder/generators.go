package seeder

import (
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/Rana718/telseed/internal/entity"
)

const (
	HomeCountryCode = 420
	InvoiceTax      = 21
	InvoiceTerm     = 14 * 24 * time.Hour
	paymentDelay    = 30 * 24 * time.Hour
)

// PriceListEntry is one row of the fixed price-list catalog.
type PriceListEntry struct {
	CountryCode         uint16
	PricePerSecond      uint16
	TarifficationFirst  uint8
	TarifficationSecond uint8
}

var PriceListCatalog = []PriceListEntry{
	{CountryCode: 49, PricePerSecond: 30, TarifficationFirst: 60, TarifficationSecond: 20},
	{CountryCode: 420, PricePerSecond: 10, TarifficationFirst: 1, TarifficationSecond: 1},
	{CountryCode: 421, PricePerSecond: 15, TarifficationFirst: 60, TarifficationSecond: 1},
	{CountryCode: 48, PricePerSecond: 20, TarifficationFirst: 60, TarifficationSecond: 10},
	{CountryCode: 43, PricePerSecond: 35, TarifficationFirst: 60, TarifficationSecond: 20},
}

var InvoiceItemCatalog = []string{"Calls", "Phone 3CX", "Phone 4G", "Phone 10L", "Phone cable", "Phone 787FU"}

func NewContract(g *DataGenerator, id uint32, variableSymbol int64) entity.Contract {
	c := entity.Contract{
		ID:             id,
		VariableSymbol: variableSymbol,
		Email:          g.generateEmail(),
		Phone:          g.generatePhone(),
	}

	if g.Chance(25) {
		nationalID := g.Between(111111, 9999999)
		c.Name = g.generateCompany()
		c.NationalID = pgtype.Int4{Int32: int32(nationalID), Valid: true}
		c.VATID = pgtype.Text{String: "CZ" + strconv.Itoa(nationalID), Valid: true}
	} else {
		c.Name = g.generateName()
	}
	if g.Chance(25) {
		c.Bonus = decimal.NewNullDecimal(g.Amount(50, 500))
	}
	if g.Chance(25) {
		c.NotifyLimit = decimal.NewNullDecimal(g.Amount(20, 500))
	}
	return c
}

func NewAddress(g *DataGenerator, id, contractID uint32) entity.Address {
	return entity.Address{
		ID:          id,
		City:        g.generateCity(),
		Street:      g.generateStreet(),
		HouseNumber: int32(g.Between(1, 999)),
		ZipCode:     int32(g.Between(10000, 99999)),
		ContractID:  contractID,
	}
}

func NewParticipant(g *DataGenerator, id, contractID uint32) entity.Participant {
	p := entity.Participant{
		ID:          id,
		Name:        g.generateFirstName(),
		AccessLevel: uint8(g.Between(1, 3)),
		ContractID:  contractID,
		Password:    g.Hex(64),
	}
	if g.Chance(25) {
		p.BalanceLimit = decimal.NewNullDecimal(g.Amount(10, 100))
	}
	return p
}

func NewVoipNumber(g *DataGenerator, id uint32, owner entity.Ownership) entity.VoipNumber {
	v := entity.VoipNumber{
		ID:           id,
		CountryCode:  HomeCountryCode,
		Number:       uint32(g.Between(500000000, 599999999)),
		Owner:        owner,
		Password:     g.Hex(32),
		State:        uint8(g.Between(1, 3)),
		ForeignBlock: g.Chance(35),
	}
	if g.Chance(20) {
		v.QuarantineUntil = pgtype.Timestamptz{Time: g.Moment(), Valid: true}
	}
	v.Activated = g.Moment()
	return v
}

func NewNumberRequest(g *DataGenerator, participantID, numberID uint32) entity.NumberRequest {
	return entity.NumberRequest{
		ParticipantID: participantID,
		NumberID:      numberID,
		Requested:     g.Moment(),
	}
}

func NewPriceList(id uint32, entry PriceListEntry) entity.PriceList {
	return entity.PriceList{
		ID:                  id,
		TarifficationFirst:  entry.TarifficationFirst,
		TarifficationSecond: entry.TarifficationSecond,
		PricePerSecond:      entry.PricePerSecond,
		CountryCode:         entry.CountryCode,
	}
}

// NewCallDetailRecord places a call between number and a random subscriber in
// the price list's country. The direction decides which side is local.
func NewCallDetailRecord(g *DataGenerator, id uint32, number entity.VoipNumber, price entity.PriceList) entity.CallDetailRecord {
	local := strconv.FormatUint(uint64(number.Number), 10)
	remote := "+" + strconv.FormatUint(uint64(price.CountryCode), 10) + g.Digits(9)

	cdr := entity.CallDetailRecord{
		ID:          id,
		Disposition: pick(g, entity.Dispositions),
		Incoming:    g.Chance(50),
		Length:      uint16(g.Between(1, 300)),
		CallDate:    g.Moment(),
		NumberID:    number.ID,
		PriceListID: price.ID,
	}
	if cdr.Incoming {
		cdr.Source, cdr.Destination = remote, local
	} else {
		cdr.Source, cdr.Destination = local, remote
	}
	return cdr
}

func NewInvoiceItem(g *DataGenerator, id uint32, name string) entity.InvoiceItem {
	return entity.InvoiceItem{
		ID:       id,
		Name:     name,
		UnitCost: g.Cents(100, 99999),
	}
}

// NewInvoiceLine snapshots item's current price onto an invoice.
func NewInvoiceLine(number uint64, item entity.InvoiceItem) entity.InvoiceHasItems {
	return entity.InvoiceHasItems{
		InvoiceNumber: number,
		ItemID:        item.ID,
		UnitCost:      item.UnitCost,
		Count:         1,
	}
}

// NewInvoice bills lines to a contract. The amount is the sum of the lines.
func NewInvoice(g *DataGenerator, number uint64, contractID uint32, lines []entity.InvoiceHasItems) entity.Invoice {
	amount := decimal.Zero
	for _, line := range lines {
		amount = amount.Add(line.UnitCost.Mul(decimal.NewFromInt(int64(line.Count))))
	}

	created := g.Moment()
	inv := entity.Invoice{
		Number:        number,
		Amount:        amount,
		TaxPercent:    InvoiceTax,
		CreatedAt:     created,
		TaxablePeriod: created,
		Maturity:      created.Add(InvoiceTerm),
		ContractID:    contractID,
	}
	if g.Chance(80) {
		paid := created.Add(time.Duration(g.rand.Int63n(int64(paymentDelay/time.Second)+1)) * time.Second)
		if paid.After(g.now) {
			paid = g.now
		}
		inv.Paid = pgtype.Timestamptz{Time: paid, Valid: true}
	}
	return inv
}
