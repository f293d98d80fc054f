// Package alerr provides standardized error handling for Ormer.
// All errors have stable, machine-readable codes, a kind, structured context,
// the source location of the rule that raised them, and proper wrapping.
package alerr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Code represents a stable, machine-readable error code.
// Format: E{category}{number} where category is 1-9 and number is 001-999.
type Code string

// Error codes organized by category.
const (
	// Parsing errors (E1xxx) - annotation text does not match the directive grammar
	ErrParseDirective     Code = "E1001" // Annotation could not be parsed
	ErrDuplicateDirective Code = "E1002" // Directive kind appears more than once
	ErrInvalidDefault     Code = "E1003" // @default body is not a known generator
	ErrInvalidRelation    Code = "E1004" // @relation body is malformed
	ErrInvalidTypeName    Code = "E1005" // Type name missing or not PascalCase
	ErrUnrecognizedToken  Code = "E1006" // Tokens left over after all passes
	ErrMatchNotRetrieved  Code = "E1007" // A match was found but could not be retrieved
	ErrInvalidMember      Code = "E1008" // Member definition could not be turned into a directive

	// User configuration errors (E2xxx) - schema violates a modeling invariant
	ErrDuplicateModel       Code = "E2001" // Model name declared twice
	ErrDuplicateMember      Code = "E2002" // Member name declared twice in one model
	ErrPrimaryKey           Code = "E2003" // Model does not have exactly one @id member
	ErrTypeNotFound         Code = "E2004" // Member type is neither scalar nor model
	ErrAmbiguousRelation    Code = "E2005" // Several unnamed relations to the same model
	ErrRelationNameConflict Code = "E2006" // Relation name reused inconsistently
	ErrMissingField         Code = "E2007" // Relation field is not a member of the owning model
	ErrMissingReference     Code = "E2008" // Relation reference is not a member of the referenced model
	ErrRelationArity        Code = "E2009" // fields/references not both present or different lengths
	ErrDisambiguation       Code = "E2010" // Synthesized relation name collides
	ErrRelationOnScalar     Code = "E2011" // @relation on a scalar-typed member
	ErrForeignKeyPlacement  Code = "E2012" // fields declared on the wrong side of a relation
	ErrInvalidIdentifier    Code = "E2013" // Empty or malformed model/member name
	ErrUnsupportedDatabase  Code = "E2014" // database.type is not supported

	// Document errors (E3xxx) - problems loading the schema document
	ErrDocumentRead   Code = "E3001" // Schema document could not be read
	ErrDocumentDecode Code = "E3002" // Schema document is not valid YAML/JSON
	ErrDocumentShape  Code = "E3003" // Schema document has the wrong structure
	ErrScriptFailed   Code = "E3004" // JavaScript schema document failed to evaluate
	ErrScriptTimeout  Code = "E3005" // JavaScript schema document timed out
	ErrToolConfig     Code = "E3006" // ormer.yaml could not be read or is invalid

	// Storage errors (E8xxx) - local cache and lock file
	ErrCacheInit    Code = "E8001" // Cache initialization failed
	ErrCacheRead    Code = "E8002" // Cache read failed
	ErrCacheWrite   Code = "E8003" // Cache write failed
	ErrLockRead     Code = "E8004" // Lock file could not be read
	ErrLockWrite    Code = "E8005" // Lock file could not be written
	ErrMetadataSave Code = "E8006" // Metadata file could not be written
	ErrMetadataLoad Code = "E8007" // Metadata file could not be read
	ErrLockMismatch Code = "E8008" // Lock file does not match the schema

	// Internal errors (E9xxx) - tooling bugs rather than user mistakes
	ErrRegex       Code = "E9001" // Pattern engine construction or match failure
	EInternalError Code = "E9002" // Internal error
)

// Kind classifies an error independently of its exact code.
type Kind int

const (
	KindUnknown Kind = iota
	KindRegex
	KindUserConfig
	KindParsing
	KindIO
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindRegex:
		return "regex error"
	case KindUserConfig:
		return "user config error"
	case KindParsing:
		return "parsing error"
	case KindIO:
		return "io error"
	case KindInternal:
		return "internal error"
	default:
		return "error"
	}
}

// Kind returns the kind the code belongs to.
// Document decoding is a parsing problem, document shape a configuration one.
func (c Code) Kind() Kind {
	switch {
	case c == ErrRegex:
		return KindRegex
	case c == ErrDocumentDecode, c == ErrScriptFailed, c == ErrScriptTimeout:
		return KindParsing
	case c == ErrDocumentShape, c == ErrToolConfig:
		return KindUserConfig
	case strings.HasPrefix(string(c), "E1"):
		return KindParsing
	case strings.HasPrefix(string(c), "E2"):
		return KindUserConfig
	case strings.HasPrefix(string(c), "E3"), strings.HasPrefix(string(c), "E8"):
		return KindIO
	case strings.HasPrefix(string(c), "E9"):
		return KindInternal
	default:
		return KindUnknown
	}
}

// Location is the source position of the rule that raised an error.
// It points into this codebase, not into the user's schema document.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Error is the standard error type for Ormer.
type Error struct {
	code    Code           // Machine-readable error code
	message string         // Human-readable error message
	context map[string]any // Structured context data
	cause   error          // Wrapped underlying error
	loc     Location       // Rule that raised the error
	stack   string         // Stack trace for debugging
}

// Error returns the formatted error string, including the whole cause chain.
// Format:
//
//	[E2004] type not found: Post/author/Usr (user config error)
//	  member: author
//	  model: Post
//	  at: resolve/phases.go:61
//	  caused by: [E1005] ...
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s (%s)", e.code, e.message, e.code.Kind()))

	// Context in sorted order for deterministic output
	if len(e.context) > 0 {
		keys := make([]string, 0, len(e.context))
		for k := range e.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			b.WriteString(fmt.Sprintf("\n  %s: %v", k, e.context[k]))
		}
	}

	if loc := e.loc.String(); loc != "" {
		b.WriteString("\n  at: ")
		b.WriteString(loc)
	}

	if e.cause != nil {
		b.WriteString("\n  caused by: ")
		b.WriteString(indent(e.cause.Error(), "  "))
	}

	return b.String()
}

// Unwrap returns the underlying cause error for errors.Unwrap compatibility.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether the target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.code == targetErr.code
	}

	return false
}

// GetCode returns the error code.
func (e *Error) GetCode() Code {
	return e.code
}

// GetKind returns the kind of the error code.
func (e *Error) GetKind() Kind {
	return e.code.Kind()
}

// GetMessage returns the error message.
func (e *Error) GetMessage() string {
	return e.message
}

// SetMessage replaces the error message.
func (e *Error) SetMessage(msg string) {
	e.message = msg
}

// GetContext returns the error context map.
func (e *Error) GetContext() map[string]any {
	return e.context
}

// GetCause returns the underlying cause error.
func (e *Error) GetCause() error {
	return e.cause
}

// GetLocation returns the location of the rule that raised the error.
func (e *Error) GetLocation() Location {
	return e.loc
}

// GetStack returns the stack trace.
func (e *Error) GetStack() string {
	return e.stack
}

// With adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithModel adds model context to the error.
func (e *Error) WithModel(name string) *Error {
	return e.With("model", name)
}

// WithMember adds model and member context to the error.
func (e *Error) WithMember(model, member string) *Error {
	return e.With("model", model).With("member", member)
}

// WithAnnotation adds the offending annotation text to the error.
func (e *Error) WithAnnotation(text string) *Error {
	return e.With("annotation", text)
}

// WithFile adds document location context to the error.
func (e *Error) WithFile(path string) *Error {
	return e.With("file", path)
}

// WithNote adds a note to the error (displayed as "note: ...").
func (e *Error) WithNote(note string) *Error {
	notes, _ := e.context["notes"].([]string)
	notes = append(notes, note)
	return e.With("notes", notes)
}

// WithHelp adds a help suggestion to the error (displayed as "help: ...").
func (e *Error) WithHelp(help string) *Error {
	if help == "" {
		return e
	}
	helps, _ := e.context["helps"].([]string)
	helps = append(helps, help)
	return e.With("helps", helps)
}

// Notes returns all notes attached to this error.
func (e *Error) Notes() []string {
	notes, _ := e.context["notes"].([]string)
	return notes
}

// Helps returns all help suggestions attached to this error.
func (e *Error) Helps() []string {
	helps, _ := e.context["helps"].([]string)
	return helps
}

// locate returns the caller skip frames above it, trimmed to dir/file.
func locate(skip int) Location {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{}
	}
	return Location{
		File: filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file)),
		Line: line,
	}
}

// captureStack captures a stack trace for debugging.
func captureStack(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		// Skip runtime internals
		if strings.Contains(frame.File, "runtime/") {
			if !more {
				break
			}
			continue
		}
		b.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}
	return b.String()
}

// newError builds an Error whose location is the caller of the exported constructor.
func newError(code Code, msg string, cause error) *Error {
	return &Error{
		code:    code,
		message: msg,
		context: make(map[string]any),
		cause:   cause,
		loc:     locate(3),
		stack:   captureStack(4),
	}
}

// New creates a new Error with the given code and message.
func New(code Code, msg string) *Error {
	return newError(code, msg, nil)
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...), nil)
}

// Wrap creates a new Error that wraps an existing error.
func Wrap(code Code, err error, msg string) *Error {
	return newError(code, msg, err)
}

// Wrapf creates a new Error that wraps an existing error with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return newError(code, fmt.Sprintf(format, args...), err)
}

// GetErrorCode extracts the outermost error code from an error chain.
// Returns empty string if no code is found.
func GetErrorCode(err error) Code {
	if err == nil {
		return ""
	}

	var alerr *Error
	if errors.As(err, &alerr) {
		return alerr.code
	}

	return ""
}

// Is checks if any error in the chain has the specified code.
func Is(err error, code Code) bool {
	for _, e := range Chain(err) {
		if e.code == code {
			return true
		}
	}
	return false
}

// HasCode checks if an error has any error code.
func HasCode(err error) bool {
	return GetErrorCode(err) != ""
}

// KindOf returns the kind of the outermost coded error in the chain.
func KindOf(err error) Kind {
	return GetErrorCode(err).Kind()
}

// Chain returns every *Error in the cause chain, outermost first.
func Chain(err error) []*Error {
	var out []*Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			out = append(out, e)
		}
		err = errors.Unwrap(err)
	}
	return out
}

// Root returns the innermost *Error of the chain, or nil.
func Root(err error) *Error {
	chain := Chain(err)
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}
