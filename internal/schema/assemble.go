package schema

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/strutil"
	"github.com/hlop3z/ormer/internal/types"
)

// Databases lists the supported values of database.type.
var Databases = []string{"postgres", "sqlite", "mysql"}

// RawSchema is the decoded input document before any validation.
// Slices keep declaration order and let duplicate names reach Assemble.
type RawSchema struct {
	Database string
	Models   []RawModel
}

// RawModel is one entry of the document's models mapping.
type RawModel struct {
	Name      string
	TableName string
	Members   []RawMember
}

// RawMember is one member definition. Structured members arrive with
// Directive already built; annotation members are parsed by Assemble.
type RawMember struct {
	Name       string
	Annotation string
	Directive  *directive.Directive
}

// Assemble checks names, parses every member annotation and builds a Schema.
// It stops at the first error.
func Assemble(raw RawSchema) (*Schema, error) {
	if raw.Database != "" && !slices.Contains(Databases, raw.Database) {
		return nil, alerr.Newf(alerr.ErrUnsupportedDatabase, "unsupported database type %q", raw.Database).
			With("database", raw.Database).
			WithHelp(alerr.DidYouMean(raw.Database, Databases)).
			WithNote("supported: " + strings.Join(Databases, ", "))
	}

	s := newSchema(raw.Database)
	for _, rm := range raw.Models {
		if s.HasModel(rm.Name) {
			return nil, alerr.Newf(alerr.ErrDuplicateModel, "model %s is declared more than once", rm.Name).
				WithModel(rm.Name)
		}
		m, err := assembleModel(rm)
		if err != nil {
			return nil, err
		}
		s.add(m)
		slog.Debug("schema: assembled model", "model", m.Name, "members", len(m.members))
	}

	return s, nil
}

func assembleModel(rm RawModel) (*Model, error) {
	if err := checkModelName(rm.Name); err != nil {
		return nil, err
	}

	m := newModel(rm.Name, rm.TableName)
	for _, raw := range rm.Members {
		if !strutil.IsIdentifier(raw.Name) {
			return nil, alerr.Newf(alerr.ErrInvalidIdentifier, "invalid member name %q", raw.Name).
				WithMember(rm.Name, raw.Name).
				WithHelp("member names start with a letter or '_' and contain only letters, digits and '_'")
		}
		if m.HasMember(raw.Name) {
			return nil, alerr.Newf(alerr.ErrDuplicateMember, "member %s is declared more than once in model %s", raw.Name, rm.Name).
				WithMember(rm.Name, raw.Name)
		}

		d, err := buildDirective(raw)
		if err != nil {
			return nil, alerr.Wrapf(alerr.ErrInvalidMember, err, "could not parse %s.%s", rm.Name, raw.Name).
				WithMember(rm.Name, raw.Name)
		}
		m.add(raw.Name, d)
	}

	if err := checkPrimaryKey(m); err != nil {
		return nil, err
	}
	return m, nil
}

func buildDirective(raw RawMember) (*directive.Directive, error) {
	if raw.Directive != nil {
		if raw.Directive.MemberType == "" {
			return nil, alerr.New(alerr.ErrInvalidTypeName, "type could not be determined")
		}
		return raw.Directive.Clone(), nil
	}
	return directive.Parse(raw.Annotation)
}

func checkModelName(name string) error {
	if name == "" {
		return alerr.New(alerr.ErrInvalidIdentifier, "model name cannot be empty")
	}
	if !strutil.IsPascalCase(name) {
		return alerr.Newf(alerr.ErrInvalidIdentifier, "expected PascalCase model name, found %s", name).
			WithModel(name).
			WithHelp("did you mean '" + strutil.ToPascalCase(name) + "'?")
	}
	if types.IsScalar(name) {
		return alerr.Newf(alerr.ErrInvalidIdentifier, "model %s has the name of a scalar type", name).
			WithModel(name)
	}
	return nil
}

func checkPrimaryKey(m *Model) error {
	var ids []string
	for _, mem := range m.members {
		if mem.Directive.IsID {
			ids = append(ids, mem.Name)
		}
	}

	switch len(ids) {
	case 1:
		return nil
	case 0:
		return alerr.Newf(alerr.ErrPrimaryKey, "model %s has no @id member", m.Name).
			WithModel(m.Name).
			WithHelp("mark exactly one member with @id, e.g. id Int @id @default(@autoInc)")
	default:
		return alerr.Newf(alerr.ErrPrimaryKey, "model %s has %d @id members: %s", m.Name, len(ids), strings.Join(ids, ", ")).
			WithModel(m.Name).
			WithHelp("composite primary keys are not supported; keep @id on one member")
	}
}
