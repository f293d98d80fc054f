package testutil

import "testing"

func TestModelSplitsMemberLines(t *testing.T) {
	m := Model("Post", "id Int @id", "  author   User @relation(fields:[a], references:[b])")

	if len(m.Members) != 2 {
		t.Fatalf("members = %d, want 2", len(m.Members))
	}
	if m.Members[1].Name != "author" {
		t.Errorf("name = %q, want author", m.Members[1].Name)
	}
	if m.Members[1].Annotation != "  User @relation(fields:[a], references:[b])" {
		t.Errorf("annotation = %q", m.Members[1].Annotation)
	}
}

func TestBlogAssembles(t *testing.T) {
	s := MustAssemble(t, Blog())
	AssertEqual(t, len(s.Models()), 4)
	AssertEqual(t, s.Database, "postgres")
}
