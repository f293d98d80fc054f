package resolve

import (
	"log/slog"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/schema"
)

// side is one member of a relation together with its directive.
type side struct {
	ref schema.MemberRef
	dir *directive.Directive
}

// classify is phase D. It decides each relation's cardinality and derives
// one join table per many-to-many relation.
func classify(s *schema.Schema, names relationNames) ([]Relation, []ManyToManyTable, error) {
	var (
		relations []Relation
		tables    []ManyToManyTable
		completed = make(map[string]bool)
	)

	for _, name := range names.order {
		c := names.claims[name]

		from, mirror, err := sidesOf(s, c)
		if err != nil {
			return nil, nil, err
		}

		rel, err := classifyRelation(name, from, mirror)
		if err != nil {
			return nil, nil, err
		}
		rel.Generated = c.generated
		relations = append(relations, rel)

		if rel.Kind == ManyToMany {
			tables, completed, err = addJoinTable(s, rel, tables, completed)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	return relations, tables, nil
}

func sidesOf(s *schema.Schema, c *claim) (side, *side, error) {
	var out []side
	for _, ref := range c.refs {
		d, ok := s.Directive(ref)
		if !ok {
			return side{}, nil, alerr.Newf(alerr.EInternalError, "relation member %s vanished during resolution", ref).
				WithMember(ref.Model, ref.Member)
		}
		out = append(out, side{ref: ref, dir: d})
	}
	if len(out) == 2 {
		return out[0], &out[1], nil
	}
	return out[0], nil, nil
}

// classifyRelation applies the cardinality rules. Only two list ends make a
// many-to-many. A member without a mirror is one end of a one-to-many: a
// single-valued one owns the foreign key, a list one has no owner on this
// side and gets no join table. A list member relating its own model is its
// own mirror ("friends User[]").
func classifyRelation(name string, from side, mirror *side) (Relation, error) {
	if mirror == nil && from.dir.IsList && from.dir.MemberType == from.ref.Model {
		self := from
		mirror = &self
	}

	rel := Relation{
		Name:   name,
		From:   from.ref,
		Target: from.dir.MemberType,
	}
	if mirror != nil {
		to := mirror.ref
		rel.To = &to
	}

	if err := checkForeignKey(name, from, mirror); err != nil {
		return Relation{}, err
	}

	var owner *side
	switch {
	case mirror == nil:
		rel.Kind = OneToMany
		if !from.dir.IsList {
			owner = &from
		}
	case from.dir.IsList && mirror.dir.IsList:
		rel.Kind = ManyToMany
	case from.dir.IsList != mirror.dir.IsList:
		rel.Kind = OneToMany
		owner = &from
		if from.dir.IsList {
			owner = mirror
		}
	default:
		rel.Kind = OneToOne
		switch {
		case from.dir.Relation.HasForeignKey():
			owner = &from
		case mirror.dir.Relation.HasForeignKey():
			owner = mirror
		}
	}

	if owner != nil {
		ref := owner.ref
		rel.Owner = &ref
		rel.Fields = append([]string(nil), owner.dir.Relation.Fields...)
		rel.References = append([]string(nil), owner.dir.Relation.References...)
	}

	slog.Debug("resolve: classified relation", "name", name, "kind", rel.Kind.String(), "from", from.ref.String())
	return rel, nil
}

// checkForeignKey rejects fields on a list member and fields on both sides.
func checkForeignKey(name string, from side, mirror *side) error {
	sides := []side{from}
	if mirror != nil {
		sides = append(sides, *mirror)
	}

	for _, sd := range sides {
		if sd.dir.IsList && sd.dir.Relation.HasForeignKey() {
			return alerr.Newf(alerr.ErrForeignKeyPlacement,
				"relation %q declares fields on list member %s", name, sd.ref).
				WithMember(sd.ref.Model, sd.ref.Member).
				With("relation", name).
				WithHelp("foreign keys live on the single-valued side; move fields/references to the other member")
		}
	}

	if mirror != nil && from.dir.Relation.HasForeignKey() && mirror.dir.Relation.HasForeignKey() {
		return alerr.Newf(alerr.ErrForeignKeyPlacement,
			"relation %q declares fields on both %s and %s", name, from.ref, mirror.ref).
			WithMember(mirror.ref.Model, mirror.ref.Member).
			With("relation", name).
			WithHelp("only one side of a relation holds the foreign key")
	}
	return nil
}

// addJoinTable emits the join table for a many-to-many relation unless one
// was already emitted under the same name.
func addJoinTable(s *schema.Schema, rel Relation, tables []ManyToManyTable, completed map[string]bool) ([]ManyToManyTable, map[string]bool, error) {
	if completed[rel.Name] {
		return tables, completed, nil
	}

	a, err := joinColumn(s, rel.From.Model)
	if err != nil {
		return nil, nil, err
	}
	b, err := joinColumn(s, rel.Target)
	if err != nil {
		return nil, nil, err
	}

	tables = append(tables, ManyToManyTable{RelationName: rel.Name, A: a, B: b})
	completed[rel.Name] = true
	return tables, completed, nil
}

func joinColumn(s *schema.Schema, model string) (JoinColumn, error) {
	m, ok := s.Model(model)
	if !ok {
		return JoinColumn{}, alerr.Newf(alerr.EInternalError, "join table model %s not found", model)
	}
	id := m.IDMember()
	if id == nil {
		return JoinColumn{}, alerr.Newf(alerr.ErrPrimaryKey, "model %s has no @id member", model).
			WithModel(model)
	}
	return JoinColumn{Model: model, PrimaryKey: id.Name}, nil
}
