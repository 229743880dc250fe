// Package catalog describes the target schema: table and column names, identity
// sequences, and the constraint maintenance statements run around each load.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Rana718/telseed/internal/entity"
	"github.com/Rana718/telseed/internal/store"
)

//go:embed default.yaml
var defaultCatalog []byte

// validIdentifier accepts plain or schema-qualified SQL identifiers.
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// SequencedKinds are the identifier domains continued from the target's sequences.
var SequencedKinds = []entity.Kind{
	entity.KindContract,
	entity.KindParticipant,
	entity.KindAddress,
	entity.KindVoipNumber,
	entity.KindPriceList,
	entity.KindInvoiceItem,
	entity.KindCallDetailRecord,
}

type Table struct {
	Name      string        `yaml:"name"`
	Columns   []string      `yaml:"columns,omitempty"`
	Sequence  string        `yaml:"sequence,omitempty"`
	DependsOn []entity.Kind `yaml:"depends_on,omitempty,flow"`
	PreLoad   string        `yaml:"pre_load,omitempty"`
	PostLoad  string        `yaml:"post_load,omitempty"`
}

type Catalog struct {
	InvoiceNumberFloor  int64                `yaml:"invoice_number_floor"`
	VariableSymbolFloor int64                `yaml:"variable_symbol_floor"`
	Tables              map[entity.Kind]Table `yaml:"tables"`
}

func Default() (*Catalog, error) {
	return Load("")
}

// Load returns the embedded catalog with the file at path laid over it. Tables
// present in the file replace the default entry for that kind as a whole.
func Load(path string) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(defaultCatalog, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse default catalog: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read catalog %s: %w", store.ErrInvalidArguments, path, err)
		}
		if err := yaml.Unmarshal(data, &cat); err != nil {
			return nil, fmt.Errorf("%w: failed to parse catalog %s: %w", store.ErrInvalidArguments, path, err)
		}
	}

	cat.fillDefaults()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) fillDefaults() {
	for kind, table := range c.Tables {
		if table.Name == "" {
			table.Name = string(kind)
		}
		if len(table.Columns) == 0 {
			table.Columns = kind.Columns()
		}
		c.Tables[kind] = table
	}
}

func (c *Catalog) Validate() error {
	if c.InvoiceNumberFloor < 0 || c.VariableSymbolFloor < 0 {
		return invalid("floors must not be negative")
	}

	for kind, table := range c.Tables {
		if !kind.Valid() {
			return invalid("unknown entity kind %q", kind)
		}
		if !validIdentifier.MatchString(table.Name) {
			return invalid("invalid table name for %s: %q", kind, table.Name)
		}
		if want := len(kind.Columns()); len(table.Columns) != want {
			return invalid("table %s lists %d columns, %s has %d fields", table.Name, len(table.Columns), kind, want)
		}
		for _, col := range table.Columns {
			if !validIdentifier.MatchString(col) {
				return invalid("invalid column name in table %s: %q", table.Name, col)
			}
		}
		if table.Sequence != "" && !validIdentifier.MatchString(table.Sequence) {
			return invalid("invalid sequence name for %s: %q", table.Name, table.Sequence)
		}
		for _, dep := range table.DependsOn {
			if _, ok := c.Tables[dep]; !ok {
				return invalid("table %s depends on unknown kind %q", table.Name, dep)
			}
		}
	}

	for _, kind := range entity.Kinds {
		if _, ok := c.Tables[kind]; !ok {
			return invalid("missing table for %s", kind)
		}
	}
	for _, kind := range SequencedKinds {
		if c.Tables[kind].Sequence == "" {
			return invalid("table %s has no sequence", c.Tables[kind].Name)
		}
	}

	return nil
}

func (c *Catalog) Table(kind entity.Kind) (Table, error) {
	table, ok := c.Tables[kind]
	if !ok {
		return Table{}, invalid("no table for %s", kind)
	}
	return table, nil
}

// Column maps one of kind's declared column names to the physical column.
func (c *Catalog) Column(kind entity.Kind, declared string) (string, error) {
	table, err := c.Table(kind)
	if err != nil {
		return "", err
	}
	idx := slices.Index(kind.Columns(), declared)
	if idx < 0 || idx >= len(table.Columns) {
		return "", invalid("%s has no column %q", kind, declared)
	}
	return table.Columns[idx], nil
}

func (c *Catalog) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: catalog: %s", store.ErrInvalidArguments, fmt.Sprintf(format, args...))
}
