// Package config loads schema documents into a schema.RawSchema.
//
// YAML and JSON documents are decoded through the yaml.v3 node API so that
// model and member order is kept and duplicate keys reach the assembler,
// which reports them. JavaScript documents are evaluated in a sandboxed goja
// runtime and their exported value goes through the same decoder.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/schema"
)

// Format is the encoding of a schema document.
type Format int

const (
	FormatYAML Format = iota // also used for JSON, which YAML accepts
	FormatJS
)

// Document is a loaded schema document.
type Document struct {
	Path   string
	Format Format
	Schema schema.RawSchema
}

// FormatOf picks the document format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return FormatYAML, nil
	case ".js":
		return FormatJS, nil
	default:
		return 0, alerr.Newf(alerr.ErrDocumentRead, "unsupported schema file extension %q", filepath.Ext(path)).
			WithFile(path).
			WithHelp("use a .yaml, .yml, .json or .js schema file")
	}
}

// LoadFile reads and decodes the schema document at path.
func LoadFile(path string, opts ...Option) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read schema document").
			WithFile(path)
	}

	raw, err := Decode(data, format, path, opts...)
	if err != nil {
		return nil, err
	}

	slog.Debug("config: loaded schema document", "path", path, "models", len(raw.Models))
	return &Document{Path: path, Format: format, Schema: raw}, nil
}

// Decode decodes a schema document held in memory. source names it in errors.
func Decode(data []byte, format Format, source string, opts ...Option) (schema.RawSchema, error) {
	if format == FormatJS {
		o := defaultOptions()
		for _, opt := range opts {
			opt(&o)
		}
		return evalScript(string(data), source, o)
	}
	return DecodeYAML(data, source)
}

// DecodeYAML decodes a YAML or JSON schema document.
func DecodeYAML(data []byte, source string) (schema.RawSchema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return schema.RawSchema{}, alerr.Wrap(alerr.ErrDocumentDecode, err, "schema document is not valid YAML or JSON").
			WithFile(source)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return schema.RawSchema{}, shapeError(source, &doc, "schema document is empty")
	}

	d := decoder{source: source}
	return d.document(doc.Content[0])
}

// decoder walks the node tree of one document.
type decoder struct {
	source string
}

func (d decoder) document(root *yaml.Node) (schema.RawSchema, error) {
	var raw schema.RawSchema

	top, err := d.mapping(root, "document")
	if err != nil {
		return raw, err
	}
	if inner, ok := lookup(top, "schema"); ok {
		if top, err = d.mapping(inner, "schema"); err != nil {
			return raw, err
		}
	}

	db, ok := lookup(top, "database")
	if !ok {
		return raw, shapeError(d.source, root, "database.type is required").
			WithHelp("add:\n  database:\n    type: postgres")
	}
	if raw.Database, err = d.databaseType(db); err != nil {
		return raw, err
	}

	models, ok := lookup(top, "models")
	if !ok {
		return raw, nil
	}
	pairs, err := d.mapping(models, "models")
	if err != nil {
		return raw, err
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		m, err := d.model(pairs[i], pairs[i+1])
		if err != nil {
			return raw, err
		}
		raw.Models = append(raw.Models, m)
	}
	return raw, nil
}

func (d decoder) databaseType(n *yaml.Node) (string, error) {
	pairs, err := d.mapping(n, "database")
	if err != nil {
		return "", err
	}
	typ, ok := lookup(pairs, "type")
	if !ok || typ.Kind != yaml.ScalarNode || strings.TrimSpace(typ.Value) == "" {
		return "", shapeError(d.source, n, "database.type is required")
	}
	return strings.ToLower(strings.TrimSpace(typ.Value)), nil
}

func (d decoder) model(key, value *yaml.Node) (schema.RawModel, error) {
	m := schema.RawModel{Name: key.Value}

	pairs, err := d.mapping(value, "model "+key.Value)
	if err != nil {
		return m, err
	}

	if table, ok := lookup(pairs, "table_name"); ok {
		m.TableName = table.Value
	}

	members, ok := lookup(pairs, "members")
	if !ok {
		return m, nil
	}
	mp, err := d.mapping(members, "members of "+key.Value)
	if err != nil {
		return m, err
	}
	for i := 0; i+1 < len(mp); i += 2 {
		mem, err := d.member(key.Value, mp[i], mp[i+1])
		if err != nil {
			return m, err
		}
		m.Members = append(m.Members, mem)
	}
	return m, nil
}

func (d decoder) member(model string, key, value *yaml.Node) (schema.RawMember, error) {
	mem := schema.RawMember{Name: key.Value}

	switch value.Kind {
	case yaml.ScalarNode:
		mem.Annotation = value.Value
		return mem, nil
	case yaml.MappingNode:
		dir, err := d.structured(model, key.Value, value)
		if err != nil {
			return mem, err
		}
		mem.Directive = dir
		return mem, nil
	default:
		return mem, shapeError(d.source, value,
			fmt.Sprintf("member %s.%s must be an annotation string or a mapping", model, key.Value)).
			WithMember(model, key.Value)
	}
}

// structuredMember is the mapping form of a member.
type structuredMember struct {
	Type       string `yaml:"type"`
	IsID       bool   `yaml:"is_id"`
	IsList     bool   `yaml:"is_list"`
	IsOptional bool   `yaml:"is_optional"`
	Default    string `yaml:"default"`
	Relation   *struct {
		Name       string   `yaml:"name"`
		Fields     []string `yaml:"fields"`
		References []string `yaml:"references"`
	} `yaml:"relation"`
}

func (d decoder) structured(model, member string, n *yaml.Node) (*directive.Directive, error) {
	var sm structuredMember
	if err := n.Decode(&sm); err != nil {
		return nil, shapeError(d.source, n, fmt.Sprintf("member %s.%s has an invalid structure", model, member)).
			WithMember(model, member).
			With("cause", err.Error())
	}

	gen, err := directive.ParseGenerator(sm.Default)
	if err != nil {
		return nil, alerr.Wrapf(alerr.ErrInvalidMember, err, "could not read %s.%s", model, member).
			WithMember(model, member).
			WithFile(d.source).
			With("line", n.Line)
	}

	dir := &directive.Directive{
		MemberType: strings.TrimSpace(sm.Type),
		IsID:       sm.IsID,
		IsList:     sm.IsList,
		IsOptional: sm.IsOptional,
		Default:    gen,
	}
	if sm.Relation != nil {
		dir.Relation = &directive.Relation{
			Name:       sm.Relation.Name,
			Fields:     sm.Relation.Fields,
			References: sm.Relation.References,
		}
	}
	return dir, nil
}

// mapping returns the key/value node pairs of a mapping node.
func (d decoder) mapping(n *yaml.Node, what string) ([]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, shapeError(d.source, n, what+" must be a mapping")
	}
	return n.Content, nil
}

// lookup returns the value of the first occurrence of key in pairs.
func lookup(pairs []*yaml.Node, key string) (*yaml.Node, bool) {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i].Value == key {
			return pairs[i+1], true
		}
	}
	return nil, false
}

func shapeError(source string, n *yaml.Node, msg string) *alerr.Error {
	e := alerr.New(alerr.ErrDocumentShape, msg).WithFile(source)
	if n != nil && n.Line > 0 {
		e = e.With("line", n.Line)
	}
	return e
}
