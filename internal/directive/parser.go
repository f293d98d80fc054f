package directive

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/hlop3z/ormer/internal/alerr"
)

// partial is the state threaded through the parse passes: the text not yet
// consumed and the directive built so far.
type partial struct {
	rest string
	dir  Directive
}

// pass consumes one directive kind from the remainder.
type pass func(p partial, pt *patterns) (partial, error)

// passes run in this order. Later passes rely on earlier ones having
// removed their tokens; sweep must be last.
var passes = []struct {
	name string
	fn   pass
}{
	{"relation", parseRelation},
	{"default", parseDefault},
	{"id", parseID},
	{"optional", parseOptional},
	{"list", parseList},
	{"type", parseType},
	{"sweep", sweep},
}

type patterns struct {
	relation   *regexp.Regexp
	fields     *regexp.Regexp
	references *regexp.Regexp
	nameLabel  *regexp.Regexp
	relName    *regexp.Regexp
	ident      *regexp.Regexp
	def        *regexp.Regexp
	id         *regexp.Regexp
	optional   *regexp.Regexp
	listMarker *regexp.Regexp
	listTyped  *regexp.Regexp
	pascal     *regexp.Regexp
	lower      *regexp.Regexp
}

var (
	compiledOnce sync.Once
	compiled     *patterns
	compileErr   error
)

// loadPatterns compiles the grammar once. A failure is reported as a regex
// error on every call instead of panicking at init.
func loadPatterns() (*patterns, error) {
	compiledOnce.Do(func() {
		pt := &patterns{}
		table := []struct {
			dst **regexp.Regexp
			src string
		}{
			{&pt.relation, `@relation\s*\(([^)]*)\)`},
			{&pt.fields, `\bfields\s*:\s*\[([^\]]*)\]`},
			{&pt.references, `\breferences\s*:\s*\[([^\]]*)\]`},
			{&pt.nameLabel, `^name\s*:\s*`},
			{&pt.relName, `^[A-Za-z_][A-Za-z0-9_#.\-]*$`},
			{&pt.ident, `^[A-Za-z_][A-Za-z0-9_]*$`},
			{&pt.def, `@default\s*\(([^)]*)\)`},
			{&pt.id, `@id\b`},
			{&pt.optional, `\?`},
			{&pt.listMarker, `\[\s*\]`},
			{&pt.listTyped, `^\s*([A-Za-z_][A-Za-z0-9_]*)\s*\[\s*\]`},
			{&pt.pascal, `^\s*([A-Z][A-Za-z0-9_]*)`},
			{&pt.lower, `^\s*([a-z_][A-Za-z0-9_]*)`},
		}
		for _, entry := range table {
			re, err := regexp.Compile(entry.src)
			if err != nil {
				compileErr = alerr.Wrap(alerr.ErrRegex, err, "directive grammar failed to compile").
					With("pattern", entry.src)
				return
			}
			*entry.dst = re
		}
		compiled = pt
	})
	return compiled, compileErr
}

// Parse turns one annotation string into a Directive.
func Parse(text string) (*Directive, error) {
	pt, err := loadPatterns()
	if err != nil {
		return nil, err
	}

	p := partial{rest: text}
	for _, step := range passes {
		next, err := step.fn(p, pt)
		if err != nil {
			if e, ok := err.(*alerr.Error); ok {
				e.WithAnnotation(text).With("pass", step.name)
			}
			return nil, err
		}
		p = next
	}

	d := p.dir
	return &d, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level fixtures with constant input.
func MustParse(text string) *Directive {
	d, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return d
}

// extractOnce finds re in rest at most once. It returns the submatches of the
// single occurrence and the remainder with that occurrence cut out.
func extractOnce(re *regexp.Regexp, rest, what string) (groups []string, remainder string, found bool, err error) {
	locs := re.FindAllStringSubmatchIndex(rest, -1)
	switch len(locs) {
	case 0:
		return nil, rest, false, nil
	case 1:
	default:
		return nil, rest, false, alerr.Newf(alerr.ErrDuplicateDirective, "%s declared %d times", what, len(locs)).
			With("found", re.FindString(rest)).
			WithHelp("each directive may appear at most once per member")
	}

	loc := locs[0]
	for i := 0; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, "")
			continue
		}
		groups = append(groups, rest[loc[i]:loc[i+1]])
	}
	if len(groups) == 0 {
		return nil, rest, false, alerr.Newf(alerr.ErrMatchNotRetrieved, "%s matched but could not be retrieved", what)
	}

	return groups, rest[:loc[0]] + " " + rest[loc[1]:], true, nil
}

func parseRelation(p partial, pt *patterns) (partial, error) {
	groups, rest, found, err := extractOnce(pt.relation, p.rest, "@relation")
	if err != nil || !found {
		return p, err
	}

	rel, err := parseRelationBody(groups[1], pt)
	if err != nil {
		return p, err
	}

	p.rest = rest
	p.dir.Relation = rel
	return p, nil
}

// parseRelationBody reads "name, fields:[a, b], references:[c, d]" in any order.
func parseRelationBody(body string, pt *patterns) (*Relation, error) {
	rel := &Relation{}

	fields, body, hasFields, err := extractNameList(pt.fields, body, "fields", pt)
	if err != nil {
		return nil, err
	}
	refs, body, hasRefs, err := extractNameList(pt.references, body, "references", pt)
	if err != nil {
		return nil, err
	}
	if hasFields != hasRefs {
		missing := "references"
		if hasRefs {
			missing = "fields"
		}
		return nil, alerr.Newf(alerr.ErrInvalidRelation, "@relation declares %s without %s", otherOf(missing), missing).
			WithHelp("fields and references must be given together: @relation(fields:[...], references:[...])")
	}
	rel.Fields = fields
	rel.References = refs

	var names []string
	for _, tok := range strings.Split(body, ",") {
		tok = strings.TrimSpace(tok)
		tok = pt.nameLabel.ReplaceAllString(tok, "")
		tok = strings.Trim(strings.TrimSpace(tok), `"'`)
		if tok == "" {
			continue
		}
		if !pt.relName.MatchString(tok) {
			return nil, alerr.Newf(alerr.ErrInvalidRelation, "invalid relation name %q", tok).
				With("found", tok)
		}
		names = append(names, tok)
	}
	if len(names) > 1 {
		return nil, alerr.Newf(alerr.ErrInvalidRelation, "@relation has more than one name: %s", strings.Join(names, ", ")).
			With("found", names)
	}
	if len(names) == 1 {
		rel.Name = names[0]
	}

	return rel, nil
}

func otherOf(s string) string {
	if s == "fields" {
		return "references"
	}
	return "fields"
}

// extractNameList pulls one "label:[a, b]" list out of a relation body.
func extractNameList(re *regexp.Regexp, body, label string, pt *patterns) ([]string, string, bool, error) {
	groups, rest, found, err := extractOnce(re, body, label+":[...]")
	if err != nil || !found {
		return nil, body, false, err
	}

	var names []string
	for _, raw := range strings.Split(groups[1], ",") {
		name := strings.Trim(strings.TrimSpace(raw), `"'`)
		if name == "" {
			continue
		}
		if !pt.ident.MatchString(name) {
			return nil, body, false, alerr.Newf(alerr.ErrInvalidRelation, "invalid member name %q in %s", name, label).
				With("found", groups[0])
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, body, false, alerr.Newf(alerr.ErrInvalidRelation, "%s list is empty", label).
			With("found", groups[0])
	}

	return names, rest, true, nil
}

func parseDefault(p partial, pt *patterns) (partial, error) {
	groups, rest, found, err := extractOnce(pt.def, p.rest, "@default")
	if err != nil || !found {
		return p, err
	}

	body := strings.TrimSpace(groups[1])
	if rest, ok := strings.CutPrefix(body, "@"); ok {
		// "@ uuid" is accepted as "@uuid".
		body = "@" + strings.TrimSpace(rest)
	}
	var gen Generator
	for g, kw := range generatorKeywords {
		if body == "@"+kw {
			gen = g
			break
		}
	}
	if gen == NoDefault {
		return p, alerr.Newf(alerr.ErrInvalidDefault, "unknown default generator %q", body).
			With("found", groups[0]).
			WithHelp(alerr.SuggestGenerator(body))
	}

	p.rest = rest
	p.dir.Default = gen
	return p, nil
}

func parseID(p partial, pt *patterns) (partial, error) {
	_, rest, found, err := extractOnce(pt.id, p.rest, "@id")
	if err != nil || !found {
		return p, err
	}
	p.rest = rest
	p.dir.IsID = true
	return p, nil
}

func parseOptional(p partial, pt *patterns) (partial, error) {
	_, rest, found, err := extractOnce(pt.optional, p.rest, "optional marker '?'")
	if err != nil || !found {
		return p, err
	}
	p.rest = rest
	p.dir.IsOptional = true
	return p, nil
}

// parseList removes the [] that follows the type name but keeps the name
// itself in place for parseType.
func parseList(p partial, pt *patterns) (partial, error) {
	if n := len(pt.listMarker.FindAllStringIndex(p.rest, -1)); n == 0 {
		return p, nil
	} else if n > 1 {
		return p, alerr.Newf(alerr.ErrDuplicateDirective, "list marker '[]' declared %d times", n).
			WithHelp("each directive may appear at most once per member")
	}

	loc := pt.listTyped.FindStringSubmatchIndex(p.rest)
	if loc == nil {
		return p, alerr.New(alerr.ErrParseDirective, "list marker '[]' must directly follow the type name").
			With("found", pt.listMarker.FindString(p.rest))
	}
	if loc[2] < 0 {
		return p, alerr.New(alerr.ErrMatchNotRetrieved, "list marker matched but the type name could not be retrieved")
	}

	typeName := p.rest[loc[2]:loc[3]]
	p.rest = p.rest[:loc[2]] + typeName + p.rest[loc[1]:]
	p.dir.IsList = true
	return p, nil
}

func parseType(p partial, pt *patterns) (partial, error) {
	if loc := pt.pascal.FindStringSubmatchIndex(p.rest); loc != nil {
		p.dir.MemberType = p.rest[loc[2]:loc[3]]
		p.rest = p.rest[loc[1]:]
		return p, nil
	}

	if m := pt.lower.FindStringSubmatch(p.rest); m != nil {
		return p, alerr.Newf(alerr.ErrInvalidTypeName, "expected PascalCase model name, found %s", m[1]).
			With("found", m[1]).
			WithHelp(fmt.Sprintf("did you mean '%s'?", pascal(m[1])))
	}

	found := strings.TrimSpace(p.rest)
	return p, alerr.New(alerr.ErrInvalidTypeName, "type could not be determined").
		With("found", found)
}

func sweep(p partial, _ *patterns) (partial, error) {
	leftover := strings.Fields(p.rest)
	if len(leftover) == 0 {
		p.rest = ""
		return p, nil
	}

	err := alerr.Newf(alerr.ErrUnrecognizedToken, "unrecognized token(s): %s", strings.Join(leftover, " ")).
		With("found", leftover)
	for _, tok := range leftover {
		if hint := alerr.SuggestForToken(tok); hint != "" {
			err.WithHelp(hint)
			break
		}
	}
	return p, err
}

func pascal(s string) string {
	s = strings.TrimLeft(s, "_")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
