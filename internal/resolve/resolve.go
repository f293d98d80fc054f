// Package resolve validates an assembled schema as a whole and works out its
// relations.
//
// Resolution runs four phases over a copy of the input schema:
//
//	A  types       every member type is a scalar or a model
//	B  ambiguity   relations within one model can be told apart
//	C  naming      fields/references exist, every relation gets a name,
//	               the two sides of a relation find each other
//	D  classify    one-to-one, one-to-many or many-to-many, join tables
//
// The first failing check aborts resolution; there is no partial result.
// State collected by one phase is returned to Resolve and passed to the next.
package resolve

import (
	"log/slog"

	"github.com/hlop3z/ormer/internal/schema"
)

// Resolve validates s and returns its relations and join tables.
// s itself is not modified.
func Resolve(s *schema.Schema) (*Result, error) {
	work := s.Clone()

	if err := resolveTypes(work); err != nil {
		return nil, err
	}
	if err := checkAmbiguity(work); err != nil {
		return nil, err
	}

	names, err := nameRelations(work)
	if err != nil {
		return nil, err
	}

	relations, tables, err := classify(work, names)
	if err != nil {
		return nil, err
	}

	slog.Debug("resolve: schema resolved",
		"models", len(work.Models()),
		"relations", len(relations),
		"join_tables", len(tables))

	return &Result{
		Schema:     work,
		Relations:  relations,
		JoinTables: tables,
	}, nil
}
