package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
	"github.com/hlop3z/ormer/internal/testutil"
)

func resolved(t *testing.T, raw schema.RawSchema) *resolve.Result {
	t.Helper()
	res, err := resolve.Resolve(testutil.MustAssemble(t, raw))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return res
}

// -----------------------------------------------------------------------------
// New Tests
// -----------------------------------------------------------------------------

func TestNew(t *testing.T) {
	m := New("postgres")

	if m.Version != Version {
		t.Errorf("Version = %q, want %q", m.Version, Version)
	}
	if m.Database != "postgres" {
		t.Errorf("Database = %q, want postgres", m.Database)
	}
	if m.Tables == nil || m.JoinTables == nil || m.Relations == nil {
		t.Error("New() left a collection nil")
	}
	if m.GeneratedAt.IsZero() {
		t.Error("GeneratedAt is zero")
	}
}

// -----------------------------------------------------------------------------
// Build Tests
// -----------------------------------------------------------------------------

func TestBuild_Tables(t *testing.T) {
	m := Build(resolved(t, testutil.Blog()), "abc")

	if m.Fingerprint != "abc" {
		t.Errorf("Fingerprint = %q, want abc", m.Fingerprint)
	}

	post, ok := m.Tables["Post"]
	if !ok {
		t.Fatal("Post table missing")
	}
	if post.Name != "posts" || post.QuotedName != `"posts"` {
		t.Errorf("Post table name = %q / %q", post.Name, post.QuotedName)
	}
	if post.PrimaryKey != "id" {
		t.Errorf("PrimaryKey = %q, want id", post.PrimaryKey)
	}

	var cols []string
	for _, c := range post.Columns {
		cols = append(cols, c.Name)
	}
	if want := []string{"id", "title", "author_id", "created_at"}; !slices.Equal(cols, want) {
		t.Errorf("columns = %v, want %v", cols, want)
	}

	id := post.Columns[0]
	if id.Type != "UUID" || !id.PrimaryKey || id.Default != "@uuid" {
		t.Errorf("id column = %+v", id)
	}
	if !slices.Equal(post.ForeignKeys, []string{"author_id"}) {
		t.Errorf("ForeignKeys = %v, want [author_id]", post.ForeignKeys)
	}

	profile := m.Tables["Profile"]
	for _, c := range profile.Columns {
		if c.Member == "bio" && !c.Nullable {
			t.Error("bio should be nullable")
		}
	}
}

func TestBuild_Relations(t *testing.T) {
	m := Build(resolved(t, testutil.Blog()), "")

	if len(m.Relations) != 3 {
		t.Fatalf("Relations = %d, want 3", len(m.Relations))
	}

	byName := make(map[string]*RelationMeta)
	for _, r := range m.Relations {
		byName[r.Name] = r
	}

	posts := byName["relation#PostUser"]
	if posts == nil || posts.Kind != "one-to-many" || posts.Owner != "Post.author" || !posts.Generated {
		t.Errorf("relation#PostUser = %+v", posts)
	}
	tagged := byName["tagged"]
	if tagged == nil || tagged.Kind != "many-to-many" || tagged.Owner != "" {
		t.Errorf("tagged = %+v", tagged)
	}
}

func TestBuild_JoinTables(t *testing.T) {
	m := Build(resolved(t, testutil.Blog()), "")

	jt, ok := m.JoinTables["tagged"]
	if !ok {
		t.Fatalf("JoinTables = %v, want tagged", m.JoinTables)
	}
	want := JoinTableMeta{
		Relation:     "tagged",
		Name:         "_tagged",
		QuotedName:   `"_tagged"`,
		SourceTable:  "posts",
		SourceColumn: "post_id",
		TargetTable:  "tags",
		TargetColumn: "tag_id",
	}
	if *jt != want {
		t.Errorf("join table = %+v, want %+v", *jt, want)
	}
}

func TestAddJoinTable_Generated(t *testing.T) {
	res := resolved(t, testutil.Schema(
		testutil.Model("User", "id Int @id", "groups Group[]"),
		testutil.Model("Group", "id Int @id", "users User[]"),
	))
	m := Build(res, "")

	jt := m.JoinTables["relation#GroupUser"]
	if jt == nil {
		t.Fatalf("JoinTables = %v", m.JoinTables)
	}
	if jt.Name != "_group_to_user" {
		t.Errorf("Name = %q, want _group_to_user", jt.Name)
	}
}

func TestAddJoinTable_SelfRelation(t *testing.T) {
	res := resolved(t, testutil.Schema(
		testutil.Model("User", "id Int @id", "friends User[] @relation(friends)"),
	))
	m := Build(res, "")

	jt := m.JoinTables["friends"]
	if jt == nil {
		t.Fatalf("JoinTables = %v", m.JoinTables)
	}
	if jt.SourceColumn != "user_id_a" || jt.TargetColumn != "user_id_b" {
		t.Errorf("columns = %q, %q", jt.SourceColumn, jt.TargetColumn)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		database string
		name     string
		want     string
	}{
		{"postgres", "users", `"users"`},
		{"postgres", `we"ird`, `"we""ird"`},
		{"sqlite", "users", `"users"`},
		{"mysql", "users", "`users`"},
		{"mysql", "we`ird", "`we``ird`"},
	}

	for _, tt := range tests {
		t.Run(tt.database+"/"+tt.name, func(t *testing.T) {
			if got := QuoteIdentifier(tt.database, tt.name); got != tt.want {
				t.Errorf("QuoteIdentifier(%q, %q) = %s, want %s", tt.database, tt.name, got, tt.want)
			}
		})
	}
}

func TestBuild_MySQLTypes(t *testing.T) {
	raw := testutil.Blog()
	raw.Database = "mysql"
	m := Build(resolved(t, raw), "")

	if got := m.Tables["Post"].Columns[0].Type; got != "CHAR(36)" {
		t.Errorf("Post.id type = %q, want CHAR(36)", got)
	}
	if got := m.Tables["Post"].QuotedName; got != "`posts`" {
		t.Errorf("QuotedName = %s, want `posts`", got)
	}
}

// -----------------------------------------------------------------------------
// Save / Load Tests
// -----------------------------------------------------------------------------

func TestSaveAndLoad(t *testing.T) {
	path := DefaultPath(t.TempDir())
	m := Build(resolved(t, testutil.Blog()), "root")

	if err := m.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved metadata is not JSON: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Fingerprint != "root" || len(loaded.Tables) != 4 || len(loaded.JoinTables) != 1 {
		t.Errorf("loaded = %+v", loaded)
	}
	if filepath.Base(filepath.Dir(path)) != ".ormer" {
		t.Errorf("DefaultPath = %s, want it under .ormer", path)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	testutil.AssertError(t, err, alerr.ErrMetadataLoad)

	bad := testutil.WriteFile(t, dir, "bad.json", "{not json")
	_, err = LoadFile(bad)
	testutil.AssertError(t, err, alerr.ErrMetadataLoad)
	testutil.AssertErrorContains(t, err, "failed to decode metadata")
}

func TestLoadFile_InitializesMaps(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "meta.json", `{"version":"1.0"}`)

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if m.Tables == nil || m.JoinTables == nil {
		t.Error("LoadFile left maps nil")
	}
}
