// Package types defines the scalar types a member may have.
// Any member type that is not listed here must name a model of the schema.
//
// Scalar names are PascalCase, the same case as model names, so the resolver
// can check a member type against both sets with one lookup each.
package types

import (
	"sort"

	"github.com/hlop3z/ormer/internal/alerr"
)

// -----------------------------------------------------------------------------
// TypeDef - Type definition
// -----------------------------------------------------------------------------

// TypeDef represents a scalar type definition.
type TypeDef struct {
	Name     string     // Annotation name (e.g., "String", "DateTime")
	GoType   string     // Go type for the value (e.g., "string", "time.Time")
	JSONType string     // JSON Schema type: string, integer, number, boolean, object
	SQLTypes SQLTypeMap // Database-specific SQL types
}

// SQLTypeMap holds database-specific SQL type strings.
type SQLTypeMap struct {
	Postgres string
	SQLite   string
	MySQL    string
}

// For returns the SQL type for a database type name ("postgres", "sqlite", "mysql").
func (m SQLTypeMap) For(database string) string {
	switch database {
	case "postgres":
		return m.Postgres
	case "sqlite":
		return m.SQLite
	case "mysql":
		return m.MySQL
	default:
		return ""
	}
}

// -----------------------------------------------------------------------------
// Type Registry
// -----------------------------------------------------------------------------

// registry holds all scalar types indexed by name.
var registry = make(map[string]*TypeDef)

// register adds a type to the registry. Built-ins are registered from init,
// so a duplicate is a programming error caught by the package tests.
func register(t *TypeDef) error {
	if _, exists := registry[t.Name]; exists {
		return alerr.New(alerr.EInternalError, "scalar type already registered").
			With("type", t.Name)
	}
	registry[t.Name] = t
	return nil
}

// Get returns the type definition for the given name, or nil.
func Get(name string) *TypeDef {
	return registry[name]
}

// IsScalar returns true if name is a built-in scalar type.
func IsScalar(name string) bool {
	return registry[name] != nil
}

// Names returns all scalar names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered types sorted by name.
func All() []*TypeDef {
	out := make([]*TypeDef, 0, len(registry))
	for _, name := range Names() {
		out = append(out, registry[name])
	}
	return out
}

// -----------------------------------------------------------------------------
// Built-in Types
// -----------------------------------------------------------------------------

var builtins = []*TypeDef{
	{
		Name:     "String",
		GoType:   "string",
		JSONType: "string",
		SQLTypes: SQLTypeMap{Postgres: "TEXT", SQLite: "TEXT", MySQL: "VARCHAR(191)"},
	},
	{
		Name:     "Boolean",
		GoType:   "bool",
		JSONType: "boolean",
		SQLTypes: SQLTypeMap{Postgres: "BOOLEAN", SQLite: "INTEGER", MySQL: "TINYINT(1)"},
	},
	{
		Name:     "Int",
		GoType:   "int32",
		JSONType: "integer",
		SQLTypes: SQLTypeMap{Postgres: "INTEGER", SQLite: "INTEGER", MySQL: "INT"},
	},
	{
		Name:     "BigInt",
		GoType:   "int64",
		JSONType: "integer",
		SQLTypes: SQLTypeMap{Postgres: "BIGINT", SQLite: "INTEGER", MySQL: "BIGINT"},
	},
	{
		Name:     "Float",
		GoType:   "float64",
		JSONType: "number",
		SQLTypes: SQLTypeMap{Postgres: "DOUBLE PRECISION", SQLite: "REAL", MySQL: "DOUBLE"},
	},
	{
		// Exact numeric, carried as a string so precision survives JSON.
		Name:     "Decimal",
		GoType:   "string",
		JSONType: "string",
		SQLTypes: SQLTypeMap{Postgres: "DECIMAL(65,30)", SQLite: "DECIMAL", MySQL: "DECIMAL(65,30)"},
	},
	{
		Name:     "DateTime",
		GoType:   "time.Time",
		JSONType: "string",
		SQLTypes: SQLTypeMap{Postgres: "TIMESTAMP(3)", SQLite: "DATETIME", MySQL: "DATETIME(3)"},
	},
	{
		Name:     "Json",
		GoType:   "json.RawMessage",
		JSONType: "object",
		SQLTypes: SQLTypeMap{Postgres: "JSONB", SQLite: "TEXT", MySQL: "JSON"},
	},
	{
		Name:     "Bytes",
		GoType:   "[]byte",
		JSONType: "string",
		SQLTypes: SQLTypeMap{Postgres: "BYTEA", SQLite: "BLOB", MySQL: "LONGBLOB"},
	},
	{
		Name:     "Uuid",
		GoType:   "string",
		JSONType: "string",
		SQLTypes: SQLTypeMap{Postgres: "UUID", SQLite: "TEXT", MySQL: "CHAR(36)"},
	},
}

// initErr records a failed built-in registration for the tests to report.
var initErr error

func init() {
	for _, t := range builtins {
		if err := register(t); err != nil && initErr == nil {
			initErr = err
		}
	}
}
