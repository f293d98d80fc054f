package resolve

import (
	"log/slog"
	"strings"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/schema"
	"github.com/hlop3z/ormer/internal/types"
)

// resolveTypes is phase A. Every member type must be a scalar or a model.
// Model-typed members without @relation get an implicit, unnamed one so the
// later phases see every association.
func resolveTypes(s *schema.Schema) error {
	for _, m := range s.Models() {
		for _, mem := range m.Members() {
			d := mem.Directive

			switch {
			case types.IsScalar(d.MemberType):
				if d.Relation != nil {
					return alerr.Newf(alerr.ErrRelationOnScalar,
						"%s.%s has a @relation but its type %s is a scalar", m.Name, mem.Name, d.MemberType).
						WithMember(m.Name, mem.Name).
						WithHelp("@relation belongs on the member whose type is the related model")
				}

			case s.HasModel(d.MemberType):
				if d.Relation == nil {
					d.Relation = &directive.Relation{Implicit: true}
					slog.Debug("resolve: implicit relation", "model", m.Name, "member", mem.Name, "target", d.MemberType)
				}

			default:
				return typeNotFound(s, m.Name, mem.Name, d.MemberType)
			}
		}
	}
	return nil
}

func typeNotFound(s *schema.Schema, model, member, typ string) error {
	known := append(types.Names(), s.ModelNames()...)

	return alerr.Newf(alerr.ErrTypeNotFound, "type not found: %s/%s/%s", model, member, typ).
		WithMember(model, member).
		With("type", typ).
		WithHelp(alerr.DidYouMean(typ, known)).
		WithNote("scalars: " + strings.Join(types.Names(), ", ")).
		WithNote("models: " + strings.Join(s.ModelNames(), ", "))
}
