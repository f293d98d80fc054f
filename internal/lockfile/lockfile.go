// Package lockfile provides read/write/verify for ormer.lock files.
// The lock file pins the fingerprint of a schema: the merkle root on the
// first line, then one "hash name" line per model and per join table.
package lockfile

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/fingerprint"
)

// joinPrefix marks join table entries so they cannot clash with model names.
const joinPrefix = "join:"

// Entry represents a single line of the lock file.
type Entry struct {
	Name     string
	Checksum string
}

// LockFile represents the parsed contents of an ormer.lock file.
type LockFile struct {
	Root    string  // merkle root of the schema
	Entries []Entry // per-model and per-join-table hashes
}

// DefaultPath returns the default lock file path, next to ormer.yaml.
func DefaultPath() string {
	return "ormer.lock"
}

// FromHash builds the lock file contents for a fingerprint.
func FromHash(h *fingerprint.SchemaHash) *LockFile {
	lf := &LockFile{Root: h.Root}
	for name, mh := range h.Models {
		lf.Entries = append(lf.Entries, Entry{Name: name, Checksum: mh.Hash})
	}
	for name, sum := range h.JoinTables {
		lf.Entries = append(lf.Entries, Entry{Name: joinPrefix + name, Checksum: sum})
	}
	slices.SortFunc(lf.Entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return lf
}

// String renders the lock file in its on-disk format.
func (lf *LockFile) String() string {
	var sb strings.Builder
	sb.WriteString(lf.Root + "\n")
	for _, e := range lf.Entries {
		sb.WriteString(fmt.Sprintf("%s %s\n", e.Checksum, e.Name))
	}
	return sb.String()
}

// Read reads and parses a lock file from the given path.
// Returns nil if the file does not exist.
func Read(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, alerr.Wrap(alerr.ErrLockRead, err, "failed to read lock file").
			WithFile(path)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] == "" {
		return nil, alerr.New(alerr.ErrLockRead, "lock file is empty").
			WithFile(path)
	}

	lf := &LockFile{Root: strings.TrimSpace(lines[0])}
	for i, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sum, name, ok := strings.Cut(line, " ")
		if !ok {
			return nil, alerr.Newf(alerr.ErrLockRead, "malformed lock file entry %q", line).
				WithFile(path).With("line", i+2)
		}
		lf.Entries = append(lf.Entries, Entry{Name: strings.TrimSpace(name), Checksum: sum})
	}
	return lf, nil
}

// Write writes the lock file for a fingerprint.
func Write(path string, h *fingerprint.SchemaHash) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return alerr.Wrap(alerr.ErrLockWrite, err, "failed to create lock file directory").
				WithFile(path)
		}
	}
	if err := os.WriteFile(path, []byte(FromHash(h).String()), 0644); err != nil {
		return alerr.Wrap(alerr.ErrLockWrite, err, "failed to write lock file").
			WithFile(path)
	}
	return nil
}

// VerificationResult holds detailed results of lock file verification.
type VerificationResult struct {
	Valid          bool     // overall validity
	LockFileExists bool     // whether the lock file exists
	RootMatch      bool     // whether the merkle root matches
	Added          []string // entries in the schema but not in the lock file
	Removed        []string // entries in the lock file but not in the schema
	Changed        []string // entries whose hash differs
	Verified       []string // entries that match
}

// Verify checks the lock file against a fingerprint. A difference is
// reported as ErrLockMismatch listing the changed, added and removed entries.
func Verify(path string, h *fingerprint.SchemaHash) error {
	res, err := VerifyDetailed(path, h)
	if err != nil {
		return err
	}
	if res.Valid {
		return nil
	}
	if !res.LockFileExists {
		return alerr.Newf(alerr.ErrLockMismatch, "lock file not found: %s", path).
			WithHelp("run 'ormer lock' to create it")
	}

	e := alerr.New(alerr.ErrLockMismatch, "schema does not match the lock file").
		WithFile(path).
		WithHelp("run 'ormer lock' to accept the current schema")
	if len(res.Changed) > 0 {
		e = e.With("changed", strings.Join(res.Changed, ", "))
	}
	if len(res.Added) > 0 {
		e = e.With("added", strings.Join(res.Added, ", "))
	}
	if len(res.Removed) > 0 {
		e = e.With("removed", strings.Join(res.Removed, ", "))
	}
	return e
}

// VerifyDetailed checks the lock file and returns structured results.
// Unlike Verify, a mismatch is not an error.
func VerifyDetailed(path string, h *fingerprint.SchemaHash) (*VerificationResult, error) {
	result := &VerificationResult{
		Valid:          true,
		LockFileExists: true,
		RootMatch:      true,
	}

	lf, err := Read(path)
	if err != nil {
		return nil, err
	}
	if lf == nil {
		result.LockFileExists = false
		result.Valid = false
		return result, nil
	}

	current := FromHash(h)
	if current.Root != lf.Root {
		result.RootMatch = false
		result.Valid = false
	}

	locked := make(map[string]string, len(lf.Entries))
	for _, e := range lf.Entries {
		locked[e.Name] = e.Checksum
	}

	seen := make(map[string]bool, len(current.Entries))
	for _, e := range current.Entries {
		seen[e.Name] = true
		expected, ok := locked[e.Name]
		switch {
		case !ok:
			result.Added = append(result.Added, e.Name)
			result.Valid = false
		case expected != e.Checksum:
			result.Changed = append(result.Changed, e.Name)
			result.Valid = false
		default:
			result.Verified = append(result.Verified, e.Name)
		}
	}

	for _, e := range lf.Entries {
		if !seen[e.Name] {
			result.Removed = append(result.Removed, e.Name)
			result.Valid = false
		}
	}

	return result, nil
}
