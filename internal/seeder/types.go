package seeder

import (
	"time"

	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/sequence"
)

type SeedConfig struct {
	Contracts     int       // contracts to generate
	Calls         int       // call detail records to generate
	Seed          int64     // random source seed
	Now           time.Time // end of the historical window
	SyncSequences bool      // advance identity sequences after each load
}

// Summary reports what one run resolved, allocated and loaded.
type Summary struct {
	Marks    sequence.Marks
	Counters Counters
	Order    []entity.Kind
	Rows     map[entity.Kind]int64
	Elapsed  time.Duration
}
