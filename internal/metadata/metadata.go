// Package metadata provides schema metadata export for Ormer.
// It generates a JSON file (.ormer/metadata.json) that stores:
// - Tables and their columns, per model
// - Classified relations and which side owns the foreign key
// - Many-to-many join tables and their columns
// This makes it easy to audit and query schema information with external tools.
package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/lib/pq"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
	"github.com/hlop3z/ormer/internal/strutil"
	"github.com/hlop3z/ormer/internal/types"
)

// Version of the metadata format.
const Version = "1.0"

// Metadata holds all schema metadata for a project.
type Metadata struct {
	Version     string    `json:"version"`
	GeneratedAt time.Time `json:"generated_at"`
	Database    string    `json:"database"`
	Fingerprint string    `json:"fingerprint,omitempty"`

	// Tables keyed by model name
	Tables map[string]*TableMeta `json:"tables"`

	// Relations in resolution order
	Relations []*RelationMeta `json:"relations"`

	// Join tables keyed by relation name
	JoinTables map[string]*JoinTableMeta `json:"join_tables"`
}

// TableMeta holds metadata for a single model's table.
type TableMeta struct {
	Model       string        `json:"model"`
	Name        string        `json:"name"`
	QuotedName  string        `json:"quoted_name"`
	Columns     []*ColumnMeta `json:"columns"`
	PrimaryKey  string        `json:"primary_key"`
	ForeignKeys []string      `json:"foreign_keys,omitempty"`
}

// ColumnMeta describes a column backing a scalar member.
type ColumnMeta struct {
	Name       string `json:"name"`
	Member     string `json:"member"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable,omitempty"`
	List       bool   `json:"list,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty"`
	Default    string `json:"default,omitempty"`
}

// RelationMeta describes one classified relation.
type RelationMeta struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	From       string   `json:"from"`
	To         string   `json:"to,omitempty"`
	Owner      string   `json:"owner,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	References []string `json:"references,omitempty"`
	Generated  bool     `json:"generated,omitempty"`
}

// JoinTableMeta holds metadata for a derived many-to-many join table.
type JoinTableMeta struct {
	Relation     string `json:"relation"`
	Name         string `json:"name"`
	QuotedName   string `json:"quoted_name"`
	SourceTable  string `json:"source_table"`
	SourceColumn string `json:"source_column"`
	TargetTable  string `json:"target_table"`
	TargetColumn string `json:"target_column"`
}

// New creates a new empty Metadata instance.
func New(database string) *Metadata {
	return &Metadata{
		Version:     Version,
		GeneratedAt: time.Now().UTC(),
		Database:    database,
		Tables:      make(map[string]*TableMeta),
		Relations:   make([]*RelationMeta, 0),
		JoinTables:  make(map[string]*JoinTableMeta),
	}
}

// Build collects the metadata of a resolved schema.
func Build(res *resolve.Result, fingerprint string) *Metadata {
	m := New(res.Schema.Database)
	m.Fingerprint = fingerprint

	for _, model := range res.Schema.Models() {
		m.AddTable(model)
	}
	for _, rel := range res.Relations {
		m.AddRelation(rel)
	}
	for _, jt := range res.JoinTables {
		rel, _ := res.Relation(jt.RelationName)
		m.AddJoinTable(jt, rel.Generated)
	}
	return m
}

// AddTable adds a model's table to the metadata.
// Only scalar members become columns; model-typed members are relations.
func (m *Metadata) AddTable(model *schema.Model) {
	meta := &TableMeta{
		Model:      model.Name,
		Name:       model.Table(),
		QuotedName: QuoteIdentifier(m.Database, model.Table()),
		Columns:    make([]*ColumnMeta, 0, len(model.Members())),
	}

	for _, mem := range model.Members() {
		d := mem.Directive
		td := types.Get(d.MemberType)
		if td == nil {
			continue
		}
		col := &ColumnMeta{
			Name:       strutil.ToSnakeCase(mem.Name),
			Member:     mem.Name,
			Type:       td.SQLTypes.For(m.Database),
			Nullable:   d.IsOptional,
			List:       d.IsList,
			PrimaryKey: d.IsID,
		}
		if d.Default != directive.NoDefault {
			col.Default = d.Default.Keyword()
		}
		if d.IsID {
			meta.PrimaryKey = col.Name
		}
		meta.Columns = append(meta.Columns, col)
	}

	m.Tables[model.Name] = meta
}

// AddRelation records a relation. Foreign key fields are attached to the
// owning model's table, which must already be added.
func (m *Metadata) AddRelation(rel resolve.Relation) {
	meta := &RelationMeta{
		Name:       rel.Name,
		Kind:       rel.Kind.String(),
		From:       rel.From.String(),
		Fields:     rel.Fields,
		References: rel.References,
		Generated:  rel.Generated,
	}
	if rel.To != nil {
		meta.To = rel.To.String()
	}
	if rel.Owner != nil {
		meta.Owner = rel.Owner.String()
		if t, ok := m.Tables[rel.Owner.Model]; ok {
			for _, f := range rel.Fields {
				t.ForeignKeys = append(t.ForeignKeys, strutil.ToSnakeCase(f))
			}
		}
	}
	m.Relations = append(m.Relations, meta)
}

// AddJoinTable registers the join table of a many-to-many relation.
// Synthesized relations are named after both models; named ones after the
// relation, so two relations between the same models get separate tables.
func (m *Metadata) AddJoinTable(jt resolve.ManyToManyTable, generated bool) *JoinTableMeta {
	name := strutil.JoinTableName(jt.A.Model, jt.B.Model)
	if !generated {
		name = "_" + strutil.ToSnakeCase(jt.RelationName)
	}

	source := strutil.JoinColumn(jt.A.Model, jt.A.PrimaryKey)
	target := strutil.JoinColumn(jt.B.Model, jt.B.PrimaryKey)
	if source == target {
		source, target = source+"_a", target+"_b"
	}

	meta := &JoinTableMeta{
		Relation:     jt.RelationName,
		Name:         name,
		QuotedName:   QuoteIdentifier(m.Database, name),
		SourceTable:  m.tableOf(jt.A.Model),
		SourceColumn: source,
		TargetTable:  m.tableOf(jt.B.Model),
		TargetColumn: target,
	}
	m.JoinTables[jt.RelationName] = meta
	return meta
}

func (m *Metadata) tableOf(model string) string {
	if t, ok := m.Tables[model]; ok {
		return t.Name
	}
	return strutil.TableName(model)
}

// QuoteIdentifier quotes a table or column name for the given database.
func QuoteIdentifier(database, name string) string {
	switch database {
	case "mysql":
		return strutil.QuoteMySQL(name)
	case "sqlite":
		return strutil.QuoteSQL(name)
	default:
		return pq.QuoteIdentifier(name)
	}
}

// DefaultPath returns the metadata file path inside a project directory.
func DefaultPath(projectDir string) string {
	return filepath.Join(projectDir, ".ormer", "metadata.json")
}

// SaveToFile writes the metadata to a JSON file at the specified path.
func (m *Metadata) SaveToFile(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return alerr.Wrap(alerr.ErrMetadataSave, err, "failed to create metadata directory").
				WithFile(filePath)
		}
	}

	data, err := m.JSON()
	if err != nil {
		return err
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return alerr.Wrap(alerr.ErrMetadataSave, err, "failed to write metadata").
			WithFile(filePath)
	}
	return nil
}

// JSON returns the indented JSON encoding of the metadata.
func (m *Metadata) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMetadataSave, err, "failed to encode metadata")
	}
	return data, nil
}

// LoadFile reads metadata from a JSON file.
func LoadFile(filePath string) (*Metadata, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMetadataLoad, err, "failed to read metadata").
			WithFile(filePath)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, alerr.Wrap(alerr.ErrMetadataLoad, err, "failed to decode metadata").
			WithFile(filePath)
	}

	if m.Tables == nil {
		m.Tables = make(map[string]*TableMeta)
	}
	if m.JoinTables == nil {
		m.JoinTables = make(map[string]*JoinTableMeta)
	}
	return &m, nil
}
