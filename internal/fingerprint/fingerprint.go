// Package fingerprint computes a merkle fingerprint of a resolved schema.
// Each model and each join table is a leaf; the root identifies the whole
// schema and the per-model hashes let callers say which models changed.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
)

// SchemaHash is the merkle root of a schema plus the hashes it was built from.
type SchemaHash struct {
	Root       string                `json:"root" msgpack:"root"`
	Models     map[string]*ModelHash `json:"models" msgpack:"models"`
	JoinTables map[string]string     `json:"join_tables,omitempty" msgpack:"join_tables"`
}

// ModelHash is the hash of one model and of each of its members.
type ModelHash struct {
	Name    string            `json:"name" msgpack:"name"`
	Hash    string            `json:"hash" msgpack:"hash"`
	Members map[string]string `json:"members" msgpack:"members"`
}

// leaf implements merkletree.Content.
type leaf struct {
	key  string
	hash string
}

func (l leaf) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(l.key + "=" + l.hash))
	return h[:], nil
}

func (l leaf) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(leaf)
	if !ok {
		return false, nil
	}
	return l.key == o.key && l.hash == o.hash, nil
}

// Compute fingerprints a resolved schema. Models and join tables are hashed
// in name order, so declaration order of models does not change the root.
func Compute(res *resolve.Result) (*SchemaHash, error) {
	out := &SchemaHash{
		Models:     make(map[string]*ModelHash),
		JoinTables: make(map[string]string),
	}
	if res == nil || res.Schema == nil || len(res.Schema.Models()) == 0 {
		out.Root = emptyHash()
		return out, nil
	}

	var leaves []merkletree.Content

	names := res.Schema.ModelNames()
	sort.Strings(names)
	for _, name := range names {
		m, _ := res.Schema.Model(name)
		mh := computeModelHash(m)
		out.Models[name] = mh
		leaves = append(leaves, leaf{key: "model:" + name, hash: mh.Hash})
	}

	tables := append([]resolve.ManyToManyTable(nil), res.JoinTables...)
	sort.Slice(tables, func(i, j int) bool { return tables[i].RelationName < tables[j].RelationName })
	for _, t := range tables {
		h := computeJoinTableHash(t)
		out.JoinTables[t.RelationName] = h
		leaves = append(leaves, leaf{key: "join:" + t.RelationName, hash: h})
	}

	tree, err := merkletree.NewTree(leaves)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build merkle tree")
	}
	out.Root = hex.EncodeToString(tree.MerkleRoot())
	return out, nil
}

func computeModelHash(m *schema.Model) *ModelHash {
	mh := &ModelHash{
		Name:    m.Name,
		Members: make(map[string]string),
	}

	var parts []string
	names := m.MemberNames()
	sort.Strings(names)
	for _, name := range names {
		mem, _ := m.Member(name)
		h := computeMemberHash(mem)
		mh.Members[name] = h
		parts = append(parts, name+":"+h)
	}

	mh.Hash = hashString(fmt.Sprintf("model:%s|table:%s|members:[%s]",
		m.Name, m.Table(), strings.Join(parts, ",")))
	return mh
}

// computeMemberHash hashes the canonical annotation plus the resolved
// relation name, so renaming either side of a relation shows up.
func computeMemberHash(mem *schema.Member) string {
	data := "annotation:" + directive.Render(mem.Directive)
	if rel := mem.Directive.Relation; rel != nil && rel.Name != "" {
		data += "|relation:" + rel.Name
	}
	return hashString(data)
}

// computeJoinTableHash hashes the two join columns in a fixed order so
// the side on which a relation was declared first does not matter.
func computeJoinTableHash(t resolve.ManyToManyTable) string {
	cols := []string{
		t.A.Model + "." + t.A.PrimaryKey,
		t.B.Model + "." + t.B.PrimaryKey,
	}
	sort.Strings(cols)
	return hashString(fmt.Sprintf("join:%s|columns:[%s]", t.RelationName, strings.Join(cols, ",")))
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func emptyHash() string {
	return hashString("empty_schema")
}

// Comparison is the difference between two fingerprints.
type Comparison struct {
	Match        bool
	ExpectedRoot string
	ActualRoot   string
	Added        []string              // models only in actual
	Removed      []string              // models only in expected
	Changed      map[string]*ModelDiff // models present in both with different hashes
	JoinTables   []string              // join tables added, removed or changed
}

// ModelDiff lists the members that differ within one model.
type ModelDiff struct {
	Name    string
	Added   []string
	Removed []string
	Changed []string
}

// ChangedModels returns the names of changed models, sorted.
func (c *Comparison) ChangedModels() []string {
	names := make([]string, 0, len(c.Changed))
	for name := range c.Changed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compare reports how actual differs from expected.
func Compare(expected, actual *SchemaHash) *Comparison {
	result := &Comparison{
		Match:        expected.Root == actual.Root,
		ExpectedRoot: expected.Root,
		ActualRoot:   actual.Root,
		Changed:      make(map[string]*ModelDiff),
	}
	if result.Match {
		return result
	}

	for name, em := range expected.Models {
		am, ok := actual.Models[name]
		if !ok {
			result.Removed = append(result.Removed, name)
			continue
		}
		if em.Hash != am.Hash {
			result.Changed[name] = compareMembers(em, am)
		}
	}
	for name := range actual.Models {
		if _, ok := expected.Models[name]; !ok {
			result.Added = append(result.Added, name)
		}
	}

	for name, h := range expected.JoinTables {
		if actual.JoinTables[name] != h {
			result.JoinTables = append(result.JoinTables, name)
		}
	}
	for name := range actual.JoinTables {
		if _, ok := expected.JoinTables[name]; !ok {
			result.JoinTables = append(result.JoinTables, name)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Strings(result.JoinTables)
	return result
}

func compareMembers(expected, actual *ModelHash) *ModelDiff {
	diff := &ModelDiff{Name: expected.Name}
	for name, h := range expected.Members {
		ah, ok := actual.Members[name]
		switch {
		case !ok:
			diff.Removed = append(diff.Removed, name)
		case ah != h:
			diff.Changed = append(diff.Changed, name)
		}
	}
	for name := range actual.Members {
		if _, ok := expected.Members[name]; !ok {
			diff.Added = append(diff.Added, name)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	return diff
}
