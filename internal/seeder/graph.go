package seeder

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Rana718/telseed/internal/catalog"
	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
)

// DependencyGraph orders entity kinds so that every table loads after the
// tables it references.
type DependencyGraph struct {
	deps  map[entity.Kind][]entity.Kind
	order []entity.Kind
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps: make(map[entity.Kind][]entity.Kind),
	}
}

// NewGraphFromCatalog adds every table of cat with its declared dependencies.
func NewGraphFromCatalog(cat *catalog.Catalog) *DependencyGraph {
	g := NewDependencyGraph()
	for kind, table := range cat.Tables {
		g.AddTable(kind, table.DependsOn...)
	}
	return g
}

func (g *DependencyGraph) AddTable(kind entity.Kind, deps ...entity.Kind) {
	g.deps[kind] = append(g.deps[kind], deps...)
}

// BuildInsertionOrder returns a topological order. Ties are broken by the
// pipeline's load order, so the result is stable across runs.
func (g *DependencyGraph) BuildInsertionOrder() ([]entity.Kind, error) {
	visited := make(map[entity.Kind]bool)
	temp := make(map[entity.Kind]bool)
	var order []entity.Kind

	var visit func(entity.Kind) error
	visit = func(kind entity.Kind) error {
		if temp[kind] {
			return fmt.Errorf("%w: circular dependency detected involving table: %s", store.ErrInvalidArguments, kind)
		}
		if visited[kind] {
			return nil
		}

		temp[kind] = true
		for _, dep := range g.deps[kind] {
			if dep != kind { // self-references do not constrain order
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		temp[kind] = false
		visited[kind] = true
		order = append(order, kind)
		return nil
	}

	for _, kind := range g.kinds() {
		if err := visit(kind); err != nil {
			return nil, err
		}
	}

	g.order = order
	return order, nil
}

func (g *DependencyGraph) GetOrder() []entity.Kind {
	return g.order
}

// ValidateOrder checks that order lists every dependency before its dependents.
func (g *DependencyGraph) ValidateOrder(order []entity.Kind) error {
	position := make(map[entity.Kind]int, len(order))
	for i, kind := range order {
		position[kind] = i
	}

	for _, kind := range g.kinds() {
		at, ok := position[kind]
		if !ok {
			return fmt.Errorf("%w: table %s is never loaded", store.ErrInvalidArguments, kind)
		}
		for _, dep := range g.deps[kind] {
			if dep == kind {
				continue
			}
			depAt, ok := position[dep]
			if !ok || depAt >= at {
				return fmt.Errorf("%w: table %s references %s, which is loaded later", store.ErrInvalidArguments, kind, dep)
			}
		}
	}
	return nil
}

func (g *DependencyGraph) kinds() []entity.Kind {
	kinds := make([]entity.Kind, 0, len(g.deps))
	for kind := range g.deps {
		kinds = append(kinds, kind)
	}
	slices.SortFunc(kinds, func(a, b entity.Kind) int {
		if r := cmp.Compare(loadRank(a), loadRank(b)); r != 0 {
			return r
		}
		return cmp.Compare(a, b)
	})
	return kinds
}

func loadRank(kind entity.Kind) int {
	if i := slices.Index(entity.Kinds, kind); i >= 0 {
		return i
	}
	return len(entity.Kinds)
}
