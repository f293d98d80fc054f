// Package directive defines the parsed form of a member annotation such as
//
//	User[]? @id @default(@uuid) @relation(author, fields:[userId], references:[id])
//
// and converts between that text and a Directive value.
package directive

import (
	"strings"

	"github.com/hlop3z/ormer/internal/alerr"
)

// Generator is a column default produced by the database.
type Generator int

const (
	NoDefault Generator = iota
	AutoIncrement
	GeneratedUUID
	CurrentTimestamp
)

// generatorKeywords are the spellings accepted inside @default(...).
var generatorKeywords = map[Generator]string{
	AutoIncrement:    "autoInc",
	GeneratedUUID:    "uuid",
	CurrentTimestamp: "now",
}

// String returns the keyword without the leading '@', or "" for NoDefault.
func (g Generator) String() string {
	return generatorKeywords[g]
}

// Keyword returns the annotation spelling, e.g. "@uuid".
func (g Generator) Keyword() string {
	if g == NoDefault {
		return ""
	}
	return "@" + generatorKeywords[g]
}

// MarshalText encodes the generator by keyword.
func (g Generator) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText decodes a keyword or structured spelling.
func (g *Generator) UnmarshalText(text []byte) error {
	parsed, err := ParseGenerator(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ParseGenerator maps a generator spelling to a Generator. It accepts the
// annotation keywords with or without '@' and the capitalized forms used by
// structured members (Uuid, AutoInc, Now). An empty string is NoDefault.
func ParseGenerator(s string) (Generator, error) {
	name := strings.TrimPrefix(strings.TrimSpace(s), "@")
	if name == "" {
		return NoDefault, nil
	}
	for g, kw := range generatorKeywords {
		if strings.EqualFold(name, kw) {
			return g, nil
		}
	}
	return NoDefault, alerr.Newf(alerr.ErrInvalidDefault, "unknown default generator %q", s).
		With("found", s).
		WithHelp(alerr.SuggestGenerator(s))
}

// MemberRef addresses one member of one model inside a schema.
type MemberRef struct {
	Model  string `json:"model" msgpack:"model"`
	Member string `json:"member" msgpack:"member"`
}

func (r MemberRef) String() string {
	return r.Model + "." + r.Member
}

// Relation is the @relation part of a directive.
// Name and Referenced are filled in at most once, during resolution.
type Relation struct {
	Name       string     `json:"name,omitempty" msgpack:"name"`
	Fields     []string   `json:"fields,omitempty" msgpack:"fields"`
	References []string   `json:"references,omitempty" msgpack:"references"`
	Referenced *MemberRef `json:"referenced,omitempty" msgpack:"referenced"`

	// Generated is set when Name was synthesized rather than written by the user.
	Generated bool `json:"generated,omitempty" msgpack:"generated"`
	// Implicit is set when the relation itself was synthesized for a
	// model-typed member that carried no @relation.
	Implicit bool `json:"implicit,omitempty" msgpack:"implicit"`
}

// HasForeignKey reports whether this side declares fields.
func (r *Relation) HasForeignKey() bool {
	return r != nil && len(r.Fields) > 0
}

// Clone returns a deep copy.
func (r *Relation) Clone() *Relation {
	if r == nil {
		return nil
	}
	c := *r
	c.Fields = append([]string(nil), r.Fields...)
	c.References = append([]string(nil), r.References...)
	if r.Referenced != nil {
		ref := *r.Referenced
		c.Referenced = &ref
	}
	return &c
}

// Directive is one member's parsed annotation.
type Directive struct {
	MemberType string    `json:"type" msgpack:"type"`
	IsList     bool      `json:"is_list,omitempty" msgpack:"is_list"`
	IsOptional bool      `json:"is_optional,omitempty" msgpack:"is_optional"`
	IsID       bool      `json:"is_id,omitempty" msgpack:"is_id"`
	Default    Generator `json:"default,omitempty" msgpack:"default"`
	Relation   *Relation `json:"relation,omitempty" msgpack:"relation"`
}

// Clone returns a deep copy.
func (d *Directive) Clone() *Directive {
	if d == nil {
		return nil
	}
	c := *d
	c.Relation = d.Relation.Clone()
	return &c
}

// Render returns the canonical annotation text for d. Parse(Render(d)) yields d
// for any directive Parse can produce. Relations and names that were
// synthesized during resolution are omitted, so a resolved directive renders
// back to what the user wrote.
func Render(d *Directive) string {
	var b strings.Builder

	b.WriteString(d.MemberType)
	if d.IsList {
		b.WriteString("[]")
	}
	if d.IsOptional {
		b.WriteString("?")
	}
	if d.IsID {
		b.WriteString(" @id")
	}
	if d.Default != NoDefault {
		b.WriteString(" @default(")
		b.WriteString(d.Default.Keyword())
		b.WriteString(")")
	}
	if r := d.Relation; r != nil && !r.Implicit {
		b.WriteString(" ")
		b.WriteString(renderRelation(r))
	}

	return b.String()
}

func renderRelation(r *Relation) string {
	var parts []string
	if r.Name != "" && !r.Generated {
		parts = append(parts, r.Name)
	}
	if len(r.Fields) > 0 {
		parts = append(parts, "fields:["+strings.Join(r.Fields, ", ")+"]")
	}
	if len(r.References) > 0 {
		parts = append(parts, "references:["+strings.Join(r.References, ", ")+"]")
	}
	return "@relation(" + strings.Join(parts, ", ") + ")"
}

// String implements fmt.Stringer using Render.
func (d *Directive) String() string {
	return Render(d)
}
