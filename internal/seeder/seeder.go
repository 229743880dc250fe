package seeder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/Rana718/telseed/internal/bulk"
	"github.com/Rana718/telseed/internal/catalog"
	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/sequence"
	"github.com/Rana718/telseed/internal/store"
)

// Seeder runs the whole pipeline against one store: resolve the identifier
// marks, generate every collection and bulk-load each as soon as it is ready.
type Seeder struct {
	dialer  store.Dialer
	catalog *catalog.Catalog
	log     *zap.Logger
}

func NewSeeder(dialer store.Dialer, cat *catalog.Catalog, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{dialer: dialer, catalog: cat, log: log}
}

func (s *Seeder) Seed(ctx context.Context, cfg SeedConfig) (*Summary, error) {
	start := time.Now()
	color.Cyan("🌱 Starting database seeding...")

	graph := NewGraphFromCatalog(s.catalog)
	order, err := graph.BuildInsertionOrder()
	if err != nil {
		return nil, fmt.Errorf("failed to build insertion order: %w", err)
	}
	if err := graph.ValidateOrder(entity.Kinds); err != nil {
		return nil, fmt.Errorf("catalog dependencies conflict with the load order: %w", err)
	}
	color.Cyan("📋 Insertion order: %s", joinKinds(order))

	plan := Plan{Contracts: cfg.Contracts, Calls: cfg.Calls}
	if err := plan.Validate(Counters{}); err != nil {
		return nil, err
	}

	marks, err := sequence.NewResolver(s.dialer, s.catalog, s.log).Resolve(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identifier marks: %w", err)
	}
	color.Green("📊 Continuing after contract %d, call record %d, invoice %d", marks.Contract, marks.CallDetailRecord, marks.InvoiceNumber)
	fmt.Fprintln(color.Output)

	summary := &Summary{
		Marks: marks,
		Order: order,
		Rows:  make(map[entity.Kind]int64, len(entity.Kinds)),
	}

	loader := bulk.NewLoader(s.dialer, s.catalog,
		bulk.WithSequenceSync(cfg.SyncSequences),
		bulk.WithLogger(s.log),
	)
	sink := SinkFunc(func(ctx context.Context, kind entity.Kind, rows []entity.Row) (int64, error) {
		color.Cyan("  📝 Loading %s (%d records)...", kind, len(rows))
		n, err := loader.Load(ctx, kind, rows)
		if err != nil {
			return n, err
		}
		summary.Rows[kind] = n
		color.Green("  ✅ %s loaded", kind)
		return n, nil
	})

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	gen := NewDataGenerator(cfg.Seed, now)
	s.log.Info("seeding started",
		zap.Int("contracts", plan.Contracts),
		zap.Int("calls", plan.Calls),
		zap.Int64("seed", cfg.Seed),
	)

	counters, err := NewAssembler(gen, s.log).Run(ctx, plan, CountersFrom(marks), sink)
	summary.Counters = counters
	summary.Elapsed = time.Since(start)
	if err != nil {
		return summary, err
	}

	s.log.Info("seeding finished", zap.Duration("elapsed", summary.Elapsed))
	color.Green("\n✅ Database seeding completed successfully!")
	return summary, nil
}

func joinKinds(kinds []entity.Kind) string {
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}
	return strings.Join(names, " → ")
}
