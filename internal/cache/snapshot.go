package cache

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/fingerprint"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
)

// -----------------------------------------------------------------------------
// Serializable snapshot structures
// These mirror the resolved schema but only use exported fields for storage.
// -----------------------------------------------------------------------------

// Snapshot is a resolved schema as stored in the cache.
type Snapshot struct {
	Fingerprint string                    `msgpack:"fingerprint"`
	Database    string                    `msgpack:"database"`
	Models      []ModelSnapshot           `msgpack:"models"`
	Relations   []resolve.Relation        `msgpack:"relations"`
	JoinTables  []resolve.ManyToManyTable `msgpack:"join_tables"`
	Hash        *fingerprint.SchemaHash   `msgpack:"hash"`
}

// ModelSnapshot is one model with its resolved member directives.
type ModelSnapshot struct {
	Name      string           `msgpack:"name"`
	TableName string           `msgpack:"table_name"`
	Members   []MemberSnapshot `msgpack:"members"`
}

// MemberSnapshot is one member and its resolved directive.
type MemberSnapshot struct {
	Name      string               `msgpack:"name"`
	Directive *directive.Directive `msgpack:"directive"`
}

// NewSnapshot captures a resolved schema and its fingerprint.
func NewSnapshot(res *resolve.Result, hash *fingerprint.SchemaHash) *Snapshot {
	snap := &Snapshot{
		Fingerprint: hash.Root,
		Database:    res.Schema.Database,
		Relations:   res.Relations,
		JoinTables:  res.JoinTables,
		Hash:        hash,
	}
	for _, m := range res.Schema.Models() {
		ms := ModelSnapshot{Name: m.Name, TableName: m.TableName}
		for _, mem := range m.Members() {
			ms.Members = append(ms.Members, MemberSnapshot{Name: mem.Name, Directive: mem.Directive.Clone()})
		}
		snap.Models = append(snap.Models, ms)
	}
	return snap
}

// Result rebuilds the resolved schema. The directives already carry their
// resolved relation names and mirrors, so only assembly is repeated.
func (s *Snapshot) Result() (*resolve.Result, error) {
	raw := schema.RawSchema{Database: s.Database}
	for _, m := range s.Models {
		rm := schema.RawModel{Name: m.Name, TableName: m.TableName}
		for _, mem := range m.Members {
			rm.Members = append(rm.Members, schema.RawMember{Name: mem.Name, Directive: mem.Directive})
		}
		raw.Models = append(raw.Models, rm)
	}

	sch, err := schema.Assemble(raw)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "cached snapshot no longer assembles").
			With("fingerprint", s.Fingerprint)
	}
	return &resolve.Result{
		Schema:     sch,
		Relations:  s.Relations,
		JoinTables: s.JoinTables,
	}, nil
}

// SerializeSnapshot encodes a snapshot with msgpack.
func SerializeSnapshot(s *Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to encode snapshot").
			With("fingerprint", s.Fingerprint)
	}
	return data, nil
}

// DeserializeSnapshot decodes a snapshot written by SerializeSnapshot.
func DeserializeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to decode snapshot")
	}
	return &s, nil
}
