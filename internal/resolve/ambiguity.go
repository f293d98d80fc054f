package resolve

import (
	"strings"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/schema"
)

// checkAmbiguity is phase B. Within one model, unnamed relations must target
// distinct models and explicit relation names must be distinct; otherwise the
// mirror of a member cannot be determined.
func checkAmbiguity(s *schema.Schema) error {
	for _, m := range s.Models() {
		unnamed := make(map[string][]string) // target model -> members
		named := make(map[string]string)     // relation name -> member

		for _, mem := range m.Members() {
			rel := mem.Directive.Relation
			if rel == nil {
				continue
			}

			if rel.Name == "" {
				target := mem.Directive.MemberType
				unnamed[target] = append(unnamed[target], mem.Name)
				continue
			}

			if prev, taken := named[rel.Name]; taken {
				return alerr.Newf(alerr.ErrRelationNameConflict,
					"relation name %q is used by both %s.%s and %s.%s", rel.Name, m.Name, prev, m.Name, mem.Name).
					WithMember(m.Name, mem.Name).
					With("relation", rel.Name).
					WithHelp("the two sides of a relation live on different models; rename one of them")
			}
			named[rel.Name] = mem.Name
		}

		// Report in declaration order so the error is stable.
		for _, mem := range m.Members() {
			rel := mem.Directive.Relation
			if rel == nil || rel.Name != "" {
				continue
			}
			target := mem.Directive.MemberType
			if members := unnamed[target]; len(members) > 1 {
				return alerr.Newf(alerr.ErrAmbiguousRelation,
					"ambiguous relation between %s and %s: members %s", m.Name, target, strings.Join(members, ", ")).
					WithMember(m.Name, mem.Name).
					With("target", target).
					WithHelp("name each relation explicitly, e.g. @relation(author) and @relation(editor)")
			}
		}
	}
	return nil
}
