package ormer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/config"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/testutil"
)

func newCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	c := New(append([]Option{WithCacheDir(filepath.Join(t.TempDir(), ".ormer"))}, opts...)...)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestParseDirective(t *testing.T) {
	d, err := ParseDirective("Int @id @default(@autoInc)")
	testutil.AssertNoError(t, err)
	if d.MemberType != "Int" || !d.IsID || d.Default != directive.AutoIncrement {
		t.Errorf("directive = %+v", d)
	}

	_, err = ParseDirective("Int @default(cuid)")
	testutil.AssertError(t, err, alerr.ErrInvalidDefault)
	if KindOf(err) != alerr.KindParsing {
		t.Errorf("KindOf = %v, want parsing", KindOf(err))
	}
}

func TestCompile_Blog(t *testing.T) {
	out, err := newCompiler(t).Compile(testutil.Blog())
	testutil.AssertNoError(t, err)

	if len(out.Relations) != 3 {
		t.Errorf("relations = %d, want 3", len(out.Relations))
	}
	if len(out.JoinTables) != 1 || out.JoinTables[0].RelationName != "tagged" {
		t.Errorf("join tables = %+v", out.JoinTables)
	}
	if out.Fingerprint == nil || out.Fingerprint.Root == "" {
		t.Fatal("fingerprint missing")
	}
	if out.Metadata.Fingerprint != out.Fingerprint.Root {
		t.Errorf("metadata fingerprint = %q, want %q", out.Metadata.Fingerprint, out.Fingerprint.Root)
	}
	if _, ok := out.Result().Relation("relation#PostUser"); !ok {
		t.Error("relation#PostUser missing from Result()")
	}
	if out.FromCache || out.Source != "" {
		t.Errorf("in-memory compile: FromCache=%v Source=%q", out.FromCache, out.Source)
	}
}

func TestCompile_Errors(t *testing.T) {
	raw := testutil.Schema(testutil.Model("Post", "id Int @id", "author Usr"))

	_, err := newCompiler(t).Compile(raw)
	testutil.AssertError(t, err, alerr.ErrTypeNotFound)
	testutil.AssertKind(t, err, alerr.KindUserConfig)
}

func TestCompileDocument_TagsFile(t *testing.T) {
	doc := &config.Document{
		Path:   "schema.yaml",
		Schema: testutil.Schema(testutil.Model("Tag", "name String")),
	}

	_, err := newCompiler(t).CompileDocument(doc)
	testutil.AssertError(t, err, alerr.ErrPrimaryKey)
	testutil.AssertErrorContains(t, err, "file: schema.yaml")
}

func TestCompileFile_Cache(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "schema.yaml", testutil.BlogYAML)
	c := newCompiler(t)

	first, err := c.CompileFile(path)
	testutil.AssertNoError(t, err)
	if first.FromCache {
		t.Error("first compile served from cache")
	}
	if first.Source != path {
		t.Errorf("Source = %q, want %q", first.Source, path)
	}

	second, err := c.CompileFile(path)
	testutil.AssertNoError(t, err)
	if !second.FromCache {
		t.Error("second compile not served from cache")
	}
	if second.Fingerprint.Root != first.Fingerprint.Root {
		t.Errorf("cached fingerprint = %s, want %s", second.Fingerprint.Root, first.Fingerprint.Root)
	}
	rel, ok := second.Result().Relation("tagged")
	if !ok || rel.Kind != resolve.ManyToMany {
		t.Errorf("tagged from cache = %+v", rel)
	}

	// A changed document misses the cache.
	testutil.WriteFile(t, dir, "schema.yaml", testutil.BlogYAML+"  Draft:\n    members:\n      id: Int @id\n")
	third, err := c.CompileFile(path)
	testutil.AssertNoError(t, err)
	if third.FromCache || third.Fingerprint.Root == first.Fingerprint.Root {
		t.Errorf("changed document: FromCache=%v root unchanged=%v", third.FromCache, third.Fingerprint.Root == first.Fingerprint.Root)
	}
}

func TestCompileFile_WithoutCache(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "schema.yaml", testutil.BlogYAML)
	c := New(WithoutCache(), WithCacheDir(filepath.Join(dir, "unused")))
	defer c.Close()

	for i := 0; i < 2; i++ {
		out, err := c.CompileFile(path)
		testutil.AssertNoError(t, err)
		if out.FromCache {
			t.Errorf("compile %d served from cache", i)
		}
	}
	if matches, _ := filepath.Glob(filepath.Join(dir, "unused", "*")); len(matches) != 0 {
		t.Errorf("cache files written with caching disabled: %v", matches)
	}
}

func TestCompileFile_Errors(t *testing.T) {
	dir := t.TempDir()
	c := newCompiler(t)

	_, err := c.CompileFile(filepath.Join(dir, "missing.yaml"))
	testutil.AssertError(t, err, alerr.ErrDocumentRead)

	bad := testutil.WriteFile(t, dir, "bad.yaml", "database: {type: postgres}\nmodels:\n  Tag:\n    members:\n      name: String\n")
	_, err = c.CompileFile(bad)
	testutil.AssertError(t, err, alerr.ErrPrimaryKey)
	testutil.AssertErrorContains(t, err, "file: "+bad)

	// Failures are not cached.
	_, err = c.CompileFile(bad)
	testutil.AssertError(t, err, alerr.ErrPrimaryKey)
}

func TestCompileFile_Script(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "schema.js", `
module.exports = {
  database: { type: "sqlite" },
  models: { Tag: { members: { id: "Int @id", name: "String" } } },
};
`)
	out, err := newCompiler(t).CompileFile(path)
	testutil.AssertNoError(t, err)
	if out.Schema.Database != "sqlite" || len(out.Metadata.Tables) != 1 {
		t.Errorf("compiled = %+v", out.Metadata)
	}
}

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "blog.yaml", testutil.BlogYAML)
	bad := testutil.WriteFile(t, dir, "bad.yaml", "models: {}")
	c := newCompiler(t, WithConcurrency(2))

	results, err := c.CompileFiles(context.Background(), good, bad, good)
	testutil.AssertNoError(t, err)

	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i, want := range []string{good, bad, good} {
		if results[i].Path != want {
			t.Errorf("results[%d].Path = %s, want %s", i, results[i].Path, want)
		}
	}
	if results[0].Err != nil || results[0].Compiled == nil {
		t.Errorf("blog.yaml: %v", results[0].Err)
	}
	testutil.AssertError(t, results[1].Err, alerr.ErrDocumentShape)
}

func TestCompileFiles_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCompiler(t).CompileFiles(ctx, "a.yaml")
	if err == nil {
		t.Error("expected cancellation error")
	}
}

func TestCompileFiles_Examples(t *testing.T) {
	c := newCompiler(t, WithoutCache())
	results, err := c.CompileFiles(context.Background(),
		filepath.Join("..", "..", "examples", "blog", "schema.yaml"),
		filepath.Join("..", "..", "examples", "shop", "schema.js"),
	)
	testutil.AssertNoError(t, err)

	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("%s: %v", r.Path, r.Err)
		}
	}

	shop := results[1].Compiled
	testutil.AssertEqual(t, shop.Metadata.Database, "sqlite")
	if tbl := shop.Metadata.Tables["Customer"]; tbl == nil || tbl.Name != "customers" {
		t.Errorf("Customer table = %+v", tbl)
	}
	rel, ok := shop.Result().Relation("order_items")
	if !ok || rel.Kind != resolve.ManyToMany {
		t.Errorf("order_items = %+v", rel)
	}
	if _, ok := shop.Metadata.JoinTables["order_items"]; !ok {
		t.Errorf("join tables = %v", shop.Metadata.JoinTables)
	}
}
