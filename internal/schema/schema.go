// Package schema holds the assembled model description: models in declaration
// order, each with its members in declaration order, each member owning one
// parsed directive.
//
// Directives are only reachable through their (model, member) address, so a
// back-reference between two members is a MemberRef rather than a pointer.
package schema

import (
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/strutil"
)

// MemberRef addresses one member's directive inside a Schema.
type MemberRef = directive.MemberRef

// Member is one named member of a model.
type Member struct {
	Name      string
	Directive *directive.Directive
}

// Model is an ordered set of uniquely named members.
type Model struct {
	Name      string
	TableName string

	members []*Member
	index   map[string]int
}

func newModel(name, table string) *Model {
	return &Model{
		Name:      name,
		TableName: table,
		index:     make(map[string]int),
	}
}

// add appends a member. It reports false if the name is taken.
func (m *Model) add(name string, d *directive.Directive) bool {
	if _, exists := m.index[name]; exists {
		return false
	}
	m.index[name] = len(m.members)
	m.members = append(m.members, &Member{Name: name, Directive: d})
	return true
}

// Members returns the members in declaration order.
func (m *Model) Members() []*Member {
	return m.members
}

// Member returns the member with the given name.
func (m *Model) Member(name string) (*Member, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.members[i], true
}

// HasMember reports whether the model declares name.
func (m *Model) HasMember(name string) bool {
	_, ok := m.index[name]
	return ok
}

// MemberNames returns member names in declaration order.
func (m *Model) MemberNames() []string {
	names := make([]string, len(m.members))
	for i, mem := range m.members {
		names[i] = mem.Name
	}
	return names
}

// IDMember returns the member marked @id. An assembled model always has one.
func (m *Model) IDMember() *Member {
	for _, mem := range m.members {
		if mem.Directive.IsID {
			return mem
		}
	}
	return nil
}

// Table returns the explicit table name or the one derived from the model name.
func (m *Model) Table() string {
	if m.TableName != "" {
		return m.TableName
	}
	return strutil.TableName(m.Name)
}

// Schema is an ordered set of uniquely named models.
type Schema struct {
	Database string

	models []*Model
	index  map[string]int
}

func newSchema(database string) *Schema {
	return &Schema{
		Database: database,
		index:    make(map[string]int),
	}
}

func (s *Schema) add(m *Model) bool {
	if _, exists := s.index[m.Name]; exists {
		return false
	}
	s.index[m.Name] = len(s.models)
	s.models = append(s.models, m)
	return true
}

// Models returns the models in declaration order.
func (s *Schema) Models() []*Model {
	return s.models
}

// Model returns the model with the given name.
func (s *Schema) Model(name string) (*Model, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.models[i], true
}

// HasModel reports whether the schema declares a model called name.
func (s *Schema) HasModel(name string) bool {
	_, ok := s.index[name]
	return ok
}

// ModelNames returns model names in declaration order.
func (s *Schema) ModelNames() []string {
	names := make([]string, len(s.models))
	for i, m := range s.models {
		names[i] = m.Name
	}
	return names
}

// Directive returns the directive stored at ref.
func (s *Schema) Directive(ref MemberRef) (*directive.Directive, bool) {
	m, ok := s.Model(ref.Model)
	if !ok {
		return nil, false
	}
	mem, ok := m.Member(ref.Member)
	if !ok {
		return nil, false
	}
	return mem.Directive, true
}

// Refs returns the address of every member, models and members in
// declaration order.
func (s *Schema) Refs() []MemberRef {
	var refs []MemberRef
	for _, m := range s.models {
		for _, mem := range m.members {
			refs = append(refs, MemberRef{Model: m.Name, Member: mem.Name})
		}
	}
	return refs
}

// Clone returns a deep copy; directives are copied too.
func (s *Schema) Clone() *Schema {
	c := newSchema(s.Database)
	for _, m := range s.models {
		cm := newModel(m.Name, m.TableName)
		for _, mem := range m.members {
			cm.add(mem.Name, mem.Directive.Clone())
		}
		c.add(cm)
	}
	return c
}
