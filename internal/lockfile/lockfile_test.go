package lockfile

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/fingerprint"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
	"github.com/hlop3z/ormer/internal/testutil"
)

func hashOf(t *testing.T, raw schema.RawSchema) *fingerprint.SchemaHash {
	t.Helper()
	res, err := resolve.Resolve(testutil.MustAssemble(t, raw))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	h, err := fingerprint.Compute(res)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return h
}

func TestWriteAndRead(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "ormer.lock")
	h := hashOf(t, testutil.Blog())

	if err := Write(lockPath, h); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lf, err := Read(lockPath)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if lf == nil {
		t.Fatal("expected lock file, got nil")
	}
	if lf.Root != h.Root {
		t.Errorf("Root = %s, want %s", lf.Root, h.Root)
	}

	var names []string
	for _, e := range lf.Entries {
		names = append(names, e.Name)
	}
	want := []string{"Post", "Profile", "Tag", "User", "join:tagged"}
	if !slices.Equal(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestWrite_CreatesDirectory(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "nested", "dir", "ormer.lock")
	if err := Write(lockPath, hashOf(t, testutil.Blog())); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not created: %v", err)
	}
}

func TestRead_NotFound(t *testing.T) {
	lf, err := Read(filepath.Join(t.TempDir(), "nonexistent.lock"))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if lf != nil {
		t.Fatalf("expected nil lock file, got %+v", lf)
	}
}

func TestRead_Malformed(t *testing.T) {
	dir := t.TempDir()

	empty := testutil.WriteFile(t, dir, "empty.lock", "\n\n")
	_, err := Read(empty)
	testutil.AssertError(t, err, alerr.ErrLockRead)

	bad := testutil.WriteFile(t, dir, "bad.lock", "abc\nnospace\n")
	_, err = Read(bad)
	testutil.AssertError(t, err, alerr.ErrLockRead)
	testutil.AssertErrorContains(t, err, `"nospace"`, "line: 2")
}

func TestVerify_OK(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "ormer.lock")
	h := hashOf(t, testutil.Blog())
	if err := Write(lockPath, h); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := Verify(lockPath, h); err != nil {
		t.Fatalf("Verify should pass: %v", err)
	}
}

func TestVerify_Missing(t *testing.T) {
	err := Verify(filepath.Join(t.TempDir(), "ormer.lock"), hashOf(t, testutil.Blog()))
	testutil.AssertError(t, err, alerr.ErrLockMismatch)
	testutil.AssertErrorContains(t, err, "lock file not found")
}

func TestVerify_Mismatch(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "ormer.lock")
	before := testutil.Schema(
		testutil.Model("User", "id Int @id", "email String"),
		testutil.Model("Draft", "id Int @id"),
	)
	after := testutil.Schema(
		testutil.Model("User", "id Int @id", "email String?"),
		testutil.Model("Post", "id Int @id"),
	)
	if err := Write(lockPath, hashOf(t, before)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	err := Verify(lockPath, hashOf(t, after))
	testutil.AssertError(t, err, alerr.ErrLockMismatch)
	testutil.AssertErrorContains(t, err, "changed: User", "added: Post", "removed: Draft")
}

func TestVerifyDetailed(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "ormer.lock")
	before := testutil.Schema(
		testutil.Model("User", "id Int @id", "tags Tag[] @relation(likes)"),
		testutil.Model("Tag", "id Int @id", "users User[] @relation(likes)"),
	)
	after := testutil.Schema(
		testutil.Model("User", "id Int @id", "tags Tag[] @relation(likes)"),
		testutil.Model("Tag", "id Int @id", "label String", "users User[] @relation(likes)"),
	)
	if err := Write(lockPath, hashOf(t, before)); err != nil {
		t.Fatalf("Write: %v", err)
	}

	res, err := VerifyDetailed(lockPath, hashOf(t, after))
	if err != nil {
		t.Fatalf("VerifyDetailed: %v", err)
	}
	if res.Valid || res.RootMatch || !res.LockFileExists {
		t.Errorf("flags = %+v, want invalid with existing lock file", res)
	}
	if !slices.Equal(res.Changed, []string{"Tag"}) {
		t.Errorf("Changed = %v, want [Tag]", res.Changed)
	}
	if !slices.Equal(res.Verified, []string{"User", "join:likes"}) {
		t.Errorf("Verified = %v, want [User join:likes]", res.Verified)
	}
	if len(res.Added) != 0 || len(res.Removed) != 0 {
		t.Errorf("Added = %v, Removed = %v, want none", res.Added, res.Removed)
	}
}

func TestFromHash_Format(t *testing.T) {
	h := hashOf(t, testutil.Schema(testutil.Model("User", "id Int @id")))
	text := FromHash(h).String()

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q, want root plus one entry", lines)
	}
	if lines[0] != h.Root {
		t.Errorf("first line = %q, want root", lines[0])
	}
	if want := h.Models["User"].Hash + " User"; lines[1] != want {
		t.Errorf("entry = %q, want %q", lines[1], want)
	}
}
