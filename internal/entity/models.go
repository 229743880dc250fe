package entity

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Contract is a billing account. National and VAT identifiers are set only for
// companies.
type Contract struct {
	ID             uint32
	Name           string
	VariableSymbol int64
	NationalID     pgtype.Int4
	VATID          pgtype.Text
	DeletedAt      pgtype.Timestamptz
	NotifyLimit    decimal.NullDecimal
	Email          string
	Phone          string
	Bonus          decimal.NullDecimal
}

func (c Contract) IsCompany() bool { return c.NationalID.Valid }

func (Contract) Kind() Kind { return KindContract }

func (c Contract) Fields() []any {
	return []any{c.ID, c.Name, c.VariableSymbol, c.NationalID, c.VATID, c.DeletedAt, c.NotifyLimit, c.Email, c.Phone, c.Bonus}
}

type Address struct {
	ID          uint32
	City        string
	District    pgtype.Text
	Street      string
	HouseNumber int32
	ZipCode     int32
	ContractID  uint32
}

func (Address) Kind() Kind { return KindAddress }

func (a Address) Fields() []any {
	return []any{a.ID, a.City, a.District, a.Street, a.HouseNumber, a.ZipCode, a.ContractID}
}

type Participant struct {
	ID           uint32
	Name         string
	AccessLevel  uint8
	ContractID   uint32
	Password     string
	BalanceLimit decimal.NullDecimal
	DeletedAt    pgtype.Timestamptz
}

func (Participant) Kind() Kind { return KindParticipant }

func (p Participant) Fields() []any {
	return []any{p.ID, p.Name, p.AccessLevel, p.ContractID, p.Password, p.BalanceLimit, p.DeletedAt}
}

// Ownership says who holds a voip number: Assigned or Unassigned.
type Ownership interface {
	participant() (uint32, bool)
}

type Assigned struct {
	ParticipantID uint32
}

func (a Assigned) participant() (uint32, bool) { return a.ParticipantID, true }

// Unassigned marks a number that was requested but not yet handed out.
type Unassigned struct{}

func (Unassigned) participant() (uint32, bool) { return 0, false }

type VoipNumber struct {
	ID              uint32
	CountryCode     uint16
	Number          uint32
	Owner           Ownership
	Password        string
	State           uint8
	ForeignBlock    bool
	QuarantineUntil pgtype.Timestamptz
	Activated       time.Time
	DeletedAt       pgtype.Timestamptz
}

// ParticipantID reports the owning participant, if any.
func (v VoipNumber) ParticipantID() (uint32, bool) {
	if v.Owner == nil {
		return 0, false
	}
	return v.Owner.participant()
}

func (VoipNumber) Kind() Kind { return KindVoipNumber }

func (v VoipNumber) Fields() []any {
	var owner any
	if id, ok := v.ParticipantID(); ok {
		owner = id
	}
	return []any{v.ID, v.CountryCode, v.Number, owner, v.Password, v.State, v.ForeignBlock, v.QuarantineUntil, v.Activated, v.DeletedAt}
}

type NumberRequest struct {
	ParticipantID uint32
	NumberID      uint32
	Requested     time.Time
}

func (NumberRequest) Kind() Kind { return KindNumberRequest }

func (r NumberRequest) Fields() []any {
	return []any{r.ParticipantID, r.NumberID, r.Requested}
}

// PriceList prices calls to one country code. Tariffication values are the
// billing increments in seconds for the first and the following parts of a call.
type PriceList struct {
	ID                  uint32
	TarifficationFirst  uint8
	TarifficationSecond uint8
	PricePerSecond      uint16
	CountryCode         uint16
}

func (PriceList) Kind() Kind { return KindPriceList }

func (p PriceList) Fields() []any {
	return []any{p.ID, p.TarifficationFirst, p.TarifficationSecond, p.PricePerSecond, p.CountryCode}
}

type Disposition string

const (
	DispositionHangup Disposition = "HANGUP"
	DispositionAnswer Disposition = "ANSWER"
	DispositionError  Disposition = "ERROR"
)

var Dispositions = []Disposition{DispositionHangup, DispositionAnswer, DispositionError}

type CallDetailRecord struct {
	ID          uint32
	Disposition Disposition
	Source      string
	Destination string
	Length      uint16
	CallDate    time.Time
	NumberID    uint32
	Incoming    bool
	PriceListID uint32
}

func (CallDetailRecord) Kind() Kind { return KindCallDetailRecord }

func (c CallDetailRecord) Fields() []any {
	return []any{c.ID, string(c.Disposition), c.Source, c.Destination, c.Length, c.CallDate, c.NumberID, c.Incoming, c.PriceListID}
}

type InvoiceItem struct {
	ID       uint32
	Name     string
	UnitCost decimal.Decimal
}

func (InvoiceItem) Kind() Kind { return KindInvoiceItem }

func (i InvoiceItem) Fields() []any {
	return []any{i.ID, i.Name, i.UnitCost}
}

type Invoice struct {
	Number        uint64
	Amount        decimal.Decimal
	TaxPercent    uint8
	CreatedAt     time.Time
	TaxablePeriod time.Time
	Maturity      time.Time
	Paid          pgtype.Timestamptz
	ContractID    uint32
}

func (Invoice) Kind() Kind { return KindInvoice }

func (i Invoice) Fields() []any {
	return []any{i.Number, i.Amount, i.TaxPercent, i.CreatedAt, i.TaxablePeriod, i.Maturity, i.Paid, i.ContractID}
}

// InvoiceHasItems is one invoice line. UnitCost snapshots the item price at
// invoicing time.
type InvoiceHasItems struct {
	InvoiceNumber uint64
	ItemID        uint32
	UnitCost      decimal.Decimal
	Count         uint16
}

func (InvoiceHasItems) Kind() Kind { return KindInvoiceHasItems }

func (l InvoiceHasItems) Fields() []any {
	return []any{l.InvoiceNumber, l.ItemID, l.UnitCost, l.Count}
}
