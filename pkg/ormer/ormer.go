// Package ormer is the public API of the ormer schema compiler.
//
// A schema document declares models whose members carry annotations such as
// "Int @id @default(@autoInc)" or "User @relation(fields:[authorId], references:[id])".
// Compiling it parses every annotation, assembles the models, resolves and
// classifies their relations and derives the many-to-many join tables.
//
// Example:
//
//	c := ormer.New(ormer.WithCacheDir(".ormer"))
//	defer c.Close()
//
//	out, err := c.CompileFile("schema.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, rel := range out.Relations {
//	    fmt.Println(rel.Name, rel.Kind)
//	}
package ormer

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/cache"
	"github.com/hlop3z/ormer/internal/config"
	"github.com/hlop3z/ormer/internal/directive"
	"github.com/hlop3z/ormer/internal/fingerprint"
	"github.com/hlop3z/ormer/internal/metadata"
	"github.com/hlop3z/ormer/internal/resolve"
	"github.com/hlop3z/ormer/internal/schema"
)

// Error is the structured error every compilation step returns.
type Error = alerr.Error

// KindOf classifies err: parsing, user config, io, regex or internal.
func KindOf(err error) alerr.Kind {
	return alerr.KindOf(err)
}

// ParseDirective parses a single member annotation.
func ParseDirective(text string) (*directive.Directive, error) {
	return directive.Parse(text)
}

// Compiled is the output of a successful compilation.
type Compiled struct {
	// Source is the document path, empty for in-memory schemas.
	Source string
	// Schema is the resolved schema: mirrors and relation names are filled in.
	Schema      *schema.Schema
	Relations   []resolve.Relation
	JoinTables  []resolve.ManyToManyTable
	Fingerprint *fingerprint.SchemaHash
	Metadata    *metadata.Metadata
	// FromCache reports whether the result was served by the snapshot cache.
	FromCache bool
}

// Result returns the resolved schema in the form the internal packages use.
func (c *Compiled) Result() *resolve.Result {
	return &resolve.Result{Schema: c.Schema, Relations: c.Relations, JoinTables: c.JoinTables}
}

// Compiler compiles schema documents. It is safe for concurrent use.
type Compiler struct {
	config *Config

	cacheOnce sync.Once
	cache     *cache.Cache
}

// New creates a Compiler. The snapshot cache is opened on first use.
func New(opts ...Option) *Compiler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Compiler{config: cfg}
}

// Close releases the snapshot cache.
func (c *Compiler) Close() error {
	return c.cache.Close()
}

// snapshotCache returns the opened cache, or nil when caching is disabled or
// the cache cannot be opened.
func (c *Compiler) snapshotCache() *cache.Cache {
	if c.config.NoCache {
		return nil
	}
	c.cacheOnce.Do(func() {
		cc, err := cache.Open(c.config.CacheDir)
		if err != nil {
			slog.Warn("ormer: cache disabled", "dir", c.config.CacheDir, "error", err)
			return
		}
		c.cache = cc
	})
	return c.cache
}

// Compile assembles and resolves an in-memory schema.
func (c *Compiler) Compile(raw schema.RawSchema) (*Compiled, error) {
	sch, err := schema.Assemble(raw)
	if err != nil {
		return nil, err
	}
	res, err := resolve.Resolve(sch)
	if err != nil {
		return nil, err
	}
	hash, err := fingerprint.Compute(res)
	if err != nil {
		return nil, err
	}
	return compiled(res, hash), nil
}

// CompileDocument compiles a loaded document. Errors are tagged with the
// document path.
func (c *Compiler) CompileDocument(doc *config.Document) (*Compiled, error) {
	out, err := c.Compile(doc.Schema)
	if err != nil {
		return nil, withFile(err, doc.Path)
	}
	out.Source = doc.Path
	return out, nil
}

// CompileFile reads and compiles the document at path. An unchanged document
// is served from the snapshot cache.
func (c *Compiler) CompileFile(path string) (*Compiled, error) {
	format, err := config.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read schema document").
			WithFile(path)
	}

	compile := func() (*Compiled, error) {
		raw, err := config.Decode(data, format, path, config.WithScriptTimeout(c.config.ScriptTimeout))
		if err != nil {
			return nil, err
		}
		return c.CompileDocument(&config.Document{Path: path, Format: format, Schema: raw})
	}

	cc := c.snapshotCache()
	if cc == nil {
		return compile()
	}

	var fresh *Compiled
	snap, hit, err := cc.GetOrCompute(sourceKey(format, data), path, func() (*cache.Snapshot, error) {
		out, err := compile()
		if err != nil {
			return nil, err
		}
		fresh = out
		return cache.NewSnapshot(out.Result(), out.Fingerprint), nil
	})

	switch {
	case err == nil && !hit:
		return fresh, nil
	case err == nil:
		out, err := fromSnapshot(path, snap)
		if err == nil {
			slog.Debug("ormer: served from cache", "path", path, "fingerprint", snap.Fingerprint)
			return out, nil
		}
		slog.Warn("ormer: cached snapshot unusable, compiling", "path", path, "error", err)
		return compile()
	case alerr.Is(err, alerr.ErrCacheRead):
		slog.Warn("ormer: cache read failed, compiling", "path", path, "error", err)
		return compile()
	default:
		return nil, err
	}
}

// FileResult is the outcome of compiling one document with CompileFiles.
type FileResult struct {
	Path     string
	Compiled *Compiled
	Err      error
}

// CompileFiles compiles several documents concurrently. Every document gets a
// result, in the order of paths; a failing document does not stop the others.
// Only cancellation of ctx aborts the batch.
func (c *Compiler) CompileFiles(ctx context.Context, paths ...string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	limit := c.config.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := c.CompileFile(path)
			results[i] = FileResult{Path: path, Compiled: out, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func compiled(res *resolve.Result, hash *fingerprint.SchemaHash) *Compiled {
	return &Compiled{
		Schema:      res.Schema,
		Relations:   res.Relations,
		JoinTables:  res.JoinTables,
		Fingerprint: hash,
		Metadata:    metadata.Build(res, hash.Root),
	}
}

func fromSnapshot(path string, snap *cache.Snapshot) (*Compiled, error) {
	res, err := snap.Result()
	if err != nil {
		return nil, err
	}
	out := compiled(res, snap.Hash)
	out.Source = path
	out.FromCache = true
	return out, nil
}

// sourceKey is the cache key of a document: its bytes and how they are read.
func sourceKey(format config.Format, data []byte) string {
	prefix := []byte("yaml\x00")
	if format == config.FormatJS {
		prefix = []byte("js\x00")
	}
	return cache.SourceHash(append(prefix, data...))
}

// withFile tags the outermost coded error with the document path unless a
// lower layer already did.
func withFile(err error, path string) error {
	chain := alerr.Chain(err)
	if len(chain) == 0 {
		return err
	}
	if _, ok := chain[0].GetContext()["file"]; !ok {
		chain[0].WithFile(path)
	}
	return err
}
