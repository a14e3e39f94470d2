package schema

import "strings"

// Schema is a read-only view over the tables of one database schema.
// It is built once by a loader or extractor and never mutated afterwards;
// the lint engine only borrows it for the duration of a validation run.
type Schema struct {
	Name   string
	Tables []Table

	byName map[string]int
}

// New builds a Schema from an ordered list of tables. Table order is
// preserved so that validation output stays stable across runs.
func New(name string, tables []Table) *Schema {
	s := &Schema{
		Name:   name,
		Tables: tables,
		byName: make(map[string]int, len(tables)),
	}
	for i := range tables {
		s.byName[tables[i].Name] = i
	}
	return s
}

// Table returns the table with the given name, or nil if the schema does
// not contain it.
func (s *Schema) Table(name string) *Table {
	i, ok := s.byName[name]
	if !ok {
		return nil
	}
	return &s.Tables[i]
}

// TableNames returns all table names in schema order.
func (s *Schema) TableNames() []string {
	names := make([]string, len(s.Tables))
	for i := range s.Tables {
		names[i] = s.Tables[i].Name
	}
	return names
}

type Table struct {
	Name        string            `yaml:"name"`
	Schema      string            `yaml:"schema,omitempty"`
	Columns     []Column          `yaml:"columns"`
	PrimaryKey  []string          `yaml:"primary_key,omitempty"`
	ForeignKeys []ForeignKey      `yaml:"foreign_keys,omitempty"`
	Indexes     []Index           `yaml:"indexes,omitempty"`
	Checks      []CheckConstraint `yaml:"checks,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// IsPrimaryKeyColumn reports whether name is part of the table's primary key.
func (t *Table) IsPrimaryKeyColumn(name string) bool {
	for _, pk := range t.PrimaryKey {
		if pk == name {
			return true
		}
	}
	return false
}

// UniqueIndexes returns the declared unique indexes, excluding the index
// backing the primary key.
func (t *Table) UniqueIndexes() []Index {
	var unique []Index
	for _, idx := range t.Indexes {
		if idx.IsUnique && !idx.IsPrimary {
			unique = append(unique, idx)
		}
	}
	return unique
}

type Column struct {
	Name         string  `yaml:"name"`
	DataType     string  `yaml:"type"`
	IsNullable   bool    `yaml:"nullable,omitempty"`
	DefaultValue *string `yaml:"default,omitempty"`
	MaxLength    *int    `yaml:"max_length,omitempty"`
	Position     int     `yaml:"position,omitempty"`
}

// IsGenerated reports whether the column value is produced by the database
// (serial pseudo-types or a sequence-backed default).
func (c *Column) IsGenerated() bool {
	switch strings.ToLower(strings.TrimSpace(c.DataType)) {
	case "serial", "smallserial", "bigserial", "serial2", "serial4", "serial8":
		return true
	}
	if c.DefaultValue != nil && strings.Contains(strings.ToLower(*c.DefaultValue), "nextval(") {
		return true
	}
	return false
}

// ForeignKey maps an ordered list of local columns onto the same number of
// columns in the referenced table. A single-column foreign key is just the
// one-element case.
type ForeignKey struct {
	Name              string   `yaml:"name,omitempty"`
	Columns           []string `yaml:"columns"`
	ReferencedTable   string   `yaml:"referenced_table"`
	ReferencedColumns []string `yaml:"referenced_columns"`
	ReferencedSchema  string   `yaml:"referenced_schema,omitempty"`
	OnDelete          string   `yaml:"on_delete,omitempty"`
	OnUpdate          string   `yaml:"on_update,omitempty"`
}

// Label returns the constraint name when one was declared, otherwise a
// readable fallback built from the column list.
func (fk *ForeignKey) Label() string {
	if fk.Name != "" {
		return fk.Name
	}
	return "foreign key (" + strings.Join(fk.Columns, ", ") + ") -> " + fk.ReferencedTable
}

type Index struct {
	Name      string   `yaml:"name"`
	TableName string   `yaml:"table,omitempty"`
	Columns   []string `yaml:"columns"`
	IsUnique  bool     `yaml:"unique,omitempty"`
	IsPrimary bool     `yaml:"primary,omitempty"`
	IndexType string   `yaml:"index_type,omitempty"`
}

type CheckConstraint struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}
