package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	return []Row{
		Contract{ID: 1},
		Address{ID: 1},
		Participant{ID: 1},
		VoipNumber{ID: 1, Owner: Assigned{ParticipantID: 4}},
		NumberRequest{ParticipantID: 1, NumberID: 2},
		PriceList{ID: 1},
		CallDetailRecord{ID: 1},
		InvoiceItem{ID: 1},
		Invoice{Number: 97000001},
		InvoiceHasItems{InvoiceNumber: 97000001},
	}
}

func TestFieldsMatchDeclaredColumns(t *testing.T) {
	rows := sampleRows()
	require.Len(t, rows, len(Kinds))

	for i, row := range rows {
		assert.Equal(t, Kinds[i], row.Kind())
		assert.True(t, row.Kind().Valid())
		assert.Len(t, row.Fields(), len(row.Kind().Columns()), "kind %s", row.Kind())
	}
}

func TestColumnsReturnsCopy(t *testing.T) {
	cols := KindContract.Columns()
	cols[0] = "mutated"
	assert.Equal(t, "contract_id", KindContract.Columns()[0])
	assert.False(t, Kind("ledger").Valid())
}

func TestVoipNumberOwnership(t *testing.T) {
	activated := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)

	assigned := VoipNumber{ID: 7, Owner: Assigned{ParticipantID: 42}, Activated: activated}
	id, ok := assigned.ParticipantID()
	require.True(t, ok)
	assert.Equal(t, uint32(42), id)
	assert.Equal(t, uint32(42), assigned.Fields()[3])

	unassigned := VoipNumber{ID: 8, Owner: Unassigned{}, Activated: activated}
	_, ok = unassigned.ParticipantID()
	assert.False(t, ok)
	assert.Nil(t, unassigned.Fields()[3])

	var zero VoipNumber
	_, ok = zero.ParticipantID()
	assert.False(t, ok)
}

func TestRowsWidensSlice(t *testing.T) {
	items := []InvoiceItem{{ID: 1, Name: "Calls"}, {ID: 2, Name: "Phone 4G"}}
	rows := Rows(items)
	require.Len(t, rows, 2)
	assert.Equal(t, KindInvoiceItem, rows[1].Kind())
	assert.Equal(t, "Phone 4G", rows[1].Fields()[1])
}
