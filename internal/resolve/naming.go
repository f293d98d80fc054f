package resolve

import (
	"log/slog"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/schema"
)

// modelPair is an unordered pair of model names, stored sorted.
type modelPair [2]string

func pairOf(a, b string) modelPair {
	if b < a {
		a, b = b, a
	}
	return modelPair{a, b}
}

// generatedName is the name given to a relation the user did not name.
// Both sides of a bidirectional relation arrive at the same name.
func generatedName(model, target string) string {
	p := pairOf(model, target)
	return "relation#" + p[0] + p[1]
}

// claim records which members carry one relation name.
type claim struct {
	pair      modelPair
	refs      []schema.MemberRef
	generated bool
}

// relationNames is the accumulator of phase C, consumed by phase D.
// order lists names by first use.
type relationNames struct {
	claims map[string]*claim
	order  []string
}

// nameRelations is phase C. It checks fields and references, names every
// relation, pairs each member with its mirror by relation name and fills in
// Relation.Referenced.
func nameRelations(s *schema.Schema) (relationNames, error) {
	names := relationNames{claims: make(map[string]*claim)}

	for _, m := range s.Models() {
		for _, mem := range m.Members() {
			rel := mem.Directive.Relation
			if rel == nil {
				continue
			}
			target := mem.Directive.MemberType
			ref := schema.MemberRef{Model: m.Name, Member: mem.Name}

			if err := checkFields(s, m, mem.Name, target, rel); err != nil {
				return names, err
			}

			if rel.Name == "" {
				rel.Name = generatedName(m.Name, target)
				rel.Generated = true
				slog.Debug("resolve: synthesized relation name", "model", m.Name, "member", mem.Name, "name", rel.Name)
			}

			var err error
			names, err = claimName(names, rel, ref, pairOf(m.Name, target))
			if err != nil {
				return names, err
			}
		}
	}

	linkMirrors(s, names)
	return names, nil
}

// checkFields verifies the relation's fields exist on the owning model and its
// references on the target model.
func checkFields(s *schema.Schema, owner *schema.Model, member, target string, rel *directive.Relation) error {
	if len(rel.Fields) != len(rel.References) {
		return alerr.Newf(alerr.ErrRelationArity,
			"%s.%s has %d fields but %d references", owner.Name, member, len(rel.Fields), len(rel.References)).
			WithMember(owner.Name, member).
			WithHelp("each field holds the value of the reference at the same position")
	}

	for _, f := range rel.Fields {
		if !owner.HasMember(f) {
			return alerr.Newf(alerr.ErrMissingField,
				"relation field %s of %s.%s does not exist on model %s", f, owner.Name, member, owner.Name).
				WithMember(owner.Name, member).
				With("field", f).
				WithHelp(alerr.DidYouMean(f, owner.MemberNames()))
		}
	}

	targetModel, ok := s.Model(target)
	if !ok {
		return alerr.Newf(alerr.EInternalError, "relation target %s vanished after type resolution", target).
			WithMember(owner.Name, member)
	}
	for _, r := range rel.References {
		if !targetModel.HasMember(r) {
			return alerr.Newf(alerr.ErrMissingReference,
				"relation reference %s of %s.%s does not exist on model %s", r, owner.Name, member, target).
				WithMember(owner.Name, member).
				With("reference", r).
				WithHelp(alerr.DidYouMean(r, targetModel.MemberNames()))
		}
	}
	return nil
}

// claimName registers ref as a carrier of rel.Name. A name may be carried by
// at most two members, one on each model of the same pair.
func claimName(names relationNames, rel *directive.Relation, ref schema.MemberRef, pair modelPair) (relationNames, error) {
	c, exists := names.claims[rel.Name]
	if !exists {
		names.claims[rel.Name] = &claim{
			pair:      pair,
			refs:      []schema.MemberRef{ref},
			generated: rel.Generated,
		}
		names.order = append(names.order, rel.Name)
		return names, nil
	}

	if c.pair != pair {
		code := alerr.ErrRelationNameConflict
		if rel.Generated || c.generated {
			code = alerr.ErrDisambiguation
		}
		return names, alerr.Newf(code,
			"relation name %q of %s.%s is already used by the relation between %s and %s",
			rel.Name, ref.Model, ref.Member, c.pair[0], c.pair[1]).
			WithMember(ref.Model, ref.Member).
			With("relation", rel.Name).
			With("used_by", c.refs[0].String()).
			WithHelp("give this relation an explicit, unique name: @relation(someName)")
	}

	if len(c.refs) >= 2 {
		return names, alerr.Newf(alerr.ErrRelationNameConflict,
			"relation %q is carried by more than two members: %s, %s and %s",
			rel.Name, c.refs[0], c.refs[1], ref).
			WithMember(ref.Model, ref.Member).
			With("relation", rel.Name)
	}

	if prev := c.refs[0]; prev.Model == ref.Model {
		return names, alerr.Newf(alerr.ErrRelationNameConflict,
			"relation %q is carried twice by model %s (%s and %s)", rel.Name, ref.Model, prev.Member, ref.Member).
			WithMember(ref.Model, ref.Member).
			With("relation", rel.Name).
			WithHelp("the mirror of a relation must be declared on the other model")
	}

	c.refs = append(c.refs, ref)
	return names, nil
}

// linkMirrors points each side of a two-sided relation at the other.
func linkMirrors(s *schema.Schema, names relationNames) {
	for _, name := range names.order {
		c := names.claims[name]
		if len(c.refs) != 2 {
			continue
		}
		for i, ref := range c.refs {
			d, ok := s.Directive(ref)
			if !ok || d.Relation.Referenced != nil {
				continue
			}
			mirror := c.refs[1-i]
			d.Relation.Referenced = &mirror
		}
	}
}
