package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/schema"
	"github.com/hlop3z/ormer/internal/testutil"
)

func memberNames(m schema.RawModel) []string {
	var names []string
	for _, mem := range m.Members {
		names = append(names, mem.Name)
	}
	return names
}

func TestDecodeYAML_Blog(t *testing.T) {
	raw, err := DecodeYAML([]byte(testutil.BlogYAML), "blog.yaml")
	testutil.AssertNoError(t, err)

	want := testutil.Blog()
	if raw.Database != want.Database {
		t.Errorf("Database = %q, want %q", raw.Database, want.Database)
	}
	if len(raw.Models) != len(want.Models) {
		t.Fatalf("models = %d, want %d", len(raw.Models), len(want.Models))
	}
	for i, m := range raw.Models {
		w := want.Models[i]
		if m.Name != w.Name {
			t.Errorf("model %d = %s, want %s", i, m.Name, w.Name)
		}
		if got, exp := memberNames(m), memberNames(w); len(got) != len(exp) {
			t.Errorf("%s members = %v, want %v", m.Name, got, exp)
		}
		for j, mem := range m.Members {
			if mem.Annotation != w.Members[j].Annotation {
				t.Errorf("%s.%s = %q, want %q", m.Name, mem.Name, mem.Annotation, w.Members[j].Annotation)
			}
		}
	}
}

func TestDecodeYAML_KeepsDuplicates(t *testing.T) {
	doc := `
database: {type: postgres}
models:
  User:
    members:
      id: Int @id
      id: String
  User:
    members:
      id: Int @id
`
	raw, err := DecodeYAML([]byte(doc), "dup.yaml")
	testutil.AssertNoError(t, err)

	if len(raw.Models) != 2 {
		t.Fatalf("models = %d, want both User entries", len(raw.Models))
	}
	if len(raw.Models[0].Members) != 2 {
		t.Errorf("members = %v, want both id entries", memberNames(raw.Models[0]))
	}

	_, err = schema.Assemble(raw)
	testutil.AssertError(t, err, alerr.ErrDuplicateMember)
}

func TestDecodeYAML_Envelope(t *testing.T) {
	doc := `
schema:
  database:
    type: SQLite
  models:
    Tag:
      table_name: labels
      members:
        id: Int @id
`
	raw, err := DecodeYAML([]byte(doc), "env.yaml")
	testutil.AssertNoError(t, err)

	if raw.Database != "sqlite" {
		t.Errorf("Database = %q, want sqlite", raw.Database)
	}
	if len(raw.Models) != 1 || raw.Models[0].TableName != "labels" {
		t.Errorf("models = %+v", raw.Models)
	}
}

func TestDecodeYAML_JSON(t *testing.T) {
	doc := `{
  "database": {"type": "mysql"},
  "models": {
    "B": {"members": {"id": "Int @id"}},
    "A": {"members": {"id": "Int @id", "b": "B"}}
  }
}`
	raw, err := DecodeYAML([]byte(doc), "schema.json")
	testutil.AssertNoError(t, err)

	if raw.Models[0].Name != "B" || raw.Models[1].Name != "A" {
		t.Errorf("model order = %s, %s; want document order B, A", raw.Models[0].Name, raw.Models[1].Name)
	}
}

func TestDecodeYAML_StructuredMember(t *testing.T) {
	doc := `
database: {type: postgres}
models:
  Post:
    members:
      id:
        type: Uuid
        is_id: true
        default: Uuid
      author:
        type: User
        is_optional: true
        relation:
          name: written
          fields: [authorId]
          references: [id]
      authorId: Int?
  User:
    members:
      id: Int @id
`
	raw, err := DecodeYAML([]byte(doc), "structured.yaml")
	testutil.AssertNoError(t, err)

	id := raw.Models[0].Members[0].Directive
	if id == nil || id.MemberType != "Uuid" || !id.IsID || id.Default != directive.GeneratedUUID {
		t.Errorf("id directive = %+v", id)
	}

	author := raw.Models[0].Members[1].Directive
	if author == nil || !author.IsOptional || author.Relation == nil {
		t.Fatalf("author directive = %+v", author)
	}
	if author.Relation.Name != "written" || author.Relation.Fields[0] != "authorId" {
		t.Errorf("author relation = %+v", author.Relation)
	}

	if _, err := schema.Assemble(raw); err != nil {
		t.Errorf("Assemble: %v", err)
	}
}

func TestDecodeYAML_Errors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		code     alerr.Code
		contains []string
	}{
		{
			name: "invalid yaml",
			doc:  "models: [unclosed",
			code: alerr.ErrDocumentDecode,
		},
		{
			name: "empty document",
			doc:  "",
			code: alerr.ErrDocumentShape,
		},
		{
			name:     "missing database",
			doc:      "models: {}",
			code:     alerr.ErrDocumentShape,
			contains: []string{"database.type is required"},
		},
		{
			name:     "missing database type",
			doc:      "database: {}\nmodels: {}",
			code:     alerr.ErrDocumentShape,
			contains: []string{"database.type is required"},
		},
		{
			name:     "models not a mapping",
			doc:      "database: {type: postgres}\nmodels: [User]",
			code:     alerr.ErrDocumentShape,
			contains: []string{"models must be a mapping", "line: 2"},
		},
		{
			name:     "member is a list",
			doc:      "database: {type: postgres}\nmodels:\n  User:\n    members:\n      id: [Int]",
			code:     alerr.ErrDocumentShape,
			contains: []string{"member User.id must be an annotation string or a mapping"},
		},
		{
			name:     "structured member with bad default",
			doc:      "database: {type: postgres}\nmodels:\n  User:\n    members:\n      id: {type: Int, is_id: true, default: cuid}",
			code:     alerr.ErrInvalidDefault,
			contains: []string{"could not read User.id", "cuid"},
		},
		{
			name:     "structured member with wrong field type",
			doc:      "database: {type: postgres}\nmodels:\n  User:\n    members:\n      id: {type: Int, is_id: maybe}",
			code:     alerr.ErrDocumentShape,
			contains: []string{"member User.id has an invalid structure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeYAML([]byte(tt.doc), "doc.yaml")
			testutil.AssertError(t, err, tt.code)
			testutil.AssertErrorContains(t, err, append([]string{"file: doc.yaml"}, tt.contains...)...)
		})
	}
}

func TestDecodeYAML_ShapeIsUserConfig(t *testing.T) {
	_, err := DecodeYAML([]byte("models: {}"), "doc.yaml")
	testutil.AssertKind(t, err, alerr.KindUserConfig)

	_, err = DecodeYAML([]byte("models: [unclosed"), "doc.yaml")
	testutil.AssertKind(t, err, alerr.KindParsing)
}

// -----------------------------------------------------------------------------
// JavaScript documents
// -----------------------------------------------------------------------------

func TestDecode_ScriptModuleExports(t *testing.T) {
	code := `
const id = "Int @id @default(@autoInc)";
module.exports = {
  database: { type: "postgres" },
  models: {
    User: { members: { id: id, posts: "Post[]" } },
    Post: { members: { id: id, authorId: "Int", author: "User @relation(fields:[authorId], references:[id])" } },
  },
};
`
	raw, err := Decode([]byte(code), FormatJS, "schema.js")
	testutil.AssertNoError(t, err)

	if raw.Database != "postgres" || len(raw.Models) != 2 {
		t.Fatalf("raw = %+v", raw)
	}
	if raw.Models[0].Name != "User" || raw.Models[0].Members[1].Annotation != "Post[]" {
		t.Errorf("User = %+v", raw.Models[0])
	}
}

func TestDecode_ScriptGlobalSchema(t *testing.T) {
	code := `var schema = { database: { type: "sqlite" }, models: { Tag: { members: { id: "Int @id" } } } };`

	raw, err := Decode([]byte(code), FormatJS, "schema.js")
	testutil.AssertNoError(t, err)
	if raw.Database != "sqlite" || raw.Models[0].Name != "Tag" {
		t.Errorf("raw = %+v", raw)
	}
}

func TestDecode_ScriptErrors(t *testing.T) {
	t.Run("throws", func(t *testing.T) {
		_, err := Decode([]byte("\n\nthrow new Error('boom');"), FormatJS, "bad.js")
		testutil.AssertError(t, err, alerr.ErrScriptFailed)
		testutil.AssertErrorContains(t, err, "boom", "file: bad.js", "line: 3")
	})

	t.Run("exports nothing", func(t *testing.T) {
		_, err := Decode([]byte("var x = 1;"), FormatJS, "empty.js")
		testutil.AssertError(t, err, alerr.ErrDocumentShape)
		testutil.AssertErrorContains(t, err, "script did not define a schema")
	})

	t.Run("eval disabled", func(t *testing.T) {
		_, err := Decode([]byte(`eval("1")`), FormatJS, "eval.js")
		testutil.AssertError(t, err, alerr.ErrScriptFailed)
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := Decode([]byte("for (;;) {}"), FormatJS, "loop.js", WithScriptTimeout(50*time.Millisecond))
		testutil.AssertError(t, err, alerr.ErrScriptTimeout)
		testutil.AssertErrorContains(t, err, "timeout: 50ms")
	})
}

// -----------------------------------------------------------------------------
// Files
// -----------------------------------------------------------------------------

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "schema.yml", testutil.BlogYAML)

	doc, err := LoadFile(path)
	testutil.AssertNoError(t, err)
	if doc.Path != path || doc.Format != FormatYAML || len(doc.Schema.Models) != 4 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	testutil.AssertError(t, err, alerr.ErrDocumentRead)
	testutil.AssertKind(t, err, alerr.KindIO)

	txt := testutil.WriteFile(t, dir, "schema.txt", "")
	_, err = LoadFile(txt)
	testutil.AssertError(t, err, alerr.ErrDocumentRead)
	testutil.AssertErrorContains(t, err, `unsupported schema file extension ".txt"`)
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.json": FormatYAML,
		"a.js":   FormatJS,
	}
	for path, want := range tests {
		got, err := FormatOf(path)
		if err != nil || got != want {
			t.Errorf("FormatOf(%q) = %v, %v; want %v", path, got, err, want)
		}
	}
}
