package resolve

import (
	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/schema"
)

// Kind is the cardinality of a relation.
type Kind int

const (
	OneToOne Kind = iota + 1
	OneToMany
	ManyToMany
)

func (k Kind) String() string {
	switch k {
	case OneToOne:
		return "one-to-one"
	case OneToMany:
		return "one-to-many"
	case ManyToMany:
		return "many-to-many"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{OneToOne, OneToMany, ManyToMany} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return alerr.Newf(alerr.EInternalError, "unknown relation kind %q", text)
}

// Relation is one logical relation, seen from both sides.
type Relation struct {
	Name string `json:"name" msgpack:"name"`
	Kind Kind   `json:"kind" msgpack:"kind"`

	// From is the first member carrying the relation in declaration order.
	From schema.MemberRef `json:"from" msgpack:"from"`
	// Target is the model From points at.
	Target string `json:"target" msgpack:"target"`
	// To is the mirror member on Target, if one was declared.
	To *schema.MemberRef `json:"to,omitempty" msgpack:"to"`

	// Owner is the side holding the foreign key, if any side declares one.
	Owner      *schema.MemberRef `json:"owner,omitempty" msgpack:"owner"`
	Fields     []string          `json:"fields,omitempty" msgpack:"fields"`
	References []string          `json:"references,omitempty" msgpack:"references"`

	Generated bool `json:"generated,omitempty" msgpack:"generated"`
}

// JoinColumn is one side of a many-to-many join table.
type JoinColumn struct {
	Model      string `json:"model" msgpack:"model"`
	PrimaryKey string `json:"primary_key" msgpack:"primary_key"`
}

// ManyToManyTable describes the join table a many-to-many relation needs.
type ManyToManyTable struct {
	RelationName string     `json:"relation" msgpack:"relation"`
	A            JoinColumn `json:"a" msgpack:"a"`
	B            JoinColumn `json:"b" msgpack:"b"`
}

// Result is a resolved schema. Schema is a resolved copy of the input.
type Result struct {
	Schema     *schema.Schema
	Relations  []Relation
	JoinTables []ManyToManyTable
}

// Relation returns the relation with the given name.
func (r *Result) Relation(name string) (Relation, bool) {
	for _, rel := range r.Relations {
		if rel.Name == name {
			return rel, true
		}
	}
	return Relation{}, false
}

// JoinTable returns the join table for the given relation name.
func (r *Result) JoinTable(name string) (ManyToManyTable, bool) {
	for _, t := range r.JoinTables {
		if t.RelationName == name {
			return t, true
		}
	}
	return ManyToManyTable{}, false
}

// RelationOf returns the relation the member at ref takes part in.
func (r *Result) RelationOf(ref schema.MemberRef) (Relation, bool) {
	for _, rel := range r.Relations {
		if rel.From == ref || (rel.To != nil && *rel.To == ref) {
			return rel, true
		}
	}
	return Relation{}, false
}
