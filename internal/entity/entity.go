// Package entity defines the telephony and billing rows the generator emits.
package entity

import (
	"slices"
)

// Kind names one entity collection. It is also the key under which the schema
// catalog describes the target table.
type Kind string

const (
	KindContract         Kind = "contract"
	KindAddress          Kind = "address"
	KindParticipant      Kind = "participant"
	KindVoipNumber       Kind = "voip_number"
	KindNumberRequest    Kind = "number_request"
	KindPriceList        Kind = "price_list"
	KindCallDetailRecord Kind = "call_detail_record"
	KindInvoiceItem      Kind = "invoice_item"
	KindInvoice          Kind = "invoice"
	KindInvoiceHasItems  Kind = "invoice_has_items"
)

// Kinds lists every collection in the order the pipeline loads them.
var Kinds = []Kind{
	KindContract,
	KindAddress,
	KindParticipant,
	KindVoipNumber,
	KindNumberRequest,
	KindPriceList,
	KindCallDetailRecord,
	KindInvoiceItem,
	KindInvoice,
	KindInvoiceHasItems,
}

var columns = map[Kind][]string{
	KindContract: {
		"contract_id", "contract_name", "variable_symbol", "identification_number",
		"vat_identification_number", "deleted_at", "notify_limit", "email", "phone_number", "bonus_amount",
	},
	KindAddress: {
		"address_id", "city", "district", "street_name", "house_number", "zip_code", "contract_id",
	},
	KindParticipant: {
		"participant_id", "name", "access_level", "contract_id", "password", "balance_limit", "deleted_at",
	},
	KindVoipNumber: {
		"number_id", "phone_country_code", "number", "participant_id", "password", "current_state",
		"foreign_block", "quarantine_until", "activated", "deleted_at",
	},
	KindNumberRequest: {
		"participant_id", "number_id", "requested",
	},
	KindPriceList: {
		"price_list_id", "tariffication_first", "tariffication_second", "price_per_second", "phone_country_code",
	},
	KindCallDetailRecord: {
		"call_id", "disposition", "source_num", "destination_num", "length", "call_date", "number_id",
		"incoming_outgoing", "price_list_id",
	},
	KindInvoiceItem: {
		"item_id", "item_name", "unit_cost",
	},
	KindInvoice: {
		"invoice_number", "amount", "tax_value_percent", "created_at", "taxable_period", "maturity", "paid",
		"contract_id",
	},
	KindInvoiceHasItems: {
		"invoice_number", "invoice_item_id", "item_unit_cost", "item_count",
	},
}

// Columns declares the target columns of k in the order Fields yields values.
func (k Kind) Columns() []string {
	return slices.Clone(columns[k])
}

func (k Kind) Valid() bool {
	_, ok := columns[k]
	return ok
}

// Row is implemented by every entity. Kind selects the declared columns and
// Fields returns one value per column, nil for an absent optional value.
type Row interface {
	Kind() Kind
	Fields() []any
}

// Rows widens a homogeneous slice to []Row for the bulk loader.
func Rows[T Row](items []T) []Row {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = item
	}
	return rows
}
