package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hlop3z/ormer/internal/alerr"
)

// Context keys that FormatError renders in dedicated places instead of the
// generic "= key: value" list.
var positionalKeys = map[string]bool{
	"file":       true,
	"line":       true,
	"model":      true,
	"member":     true,
	"annotation": true,
	"notes":      true,
	"helps":      true,
}

// FormatError renders an error Cargo/rustc-style:
//
//	error[E2004]: type not found: 'Usr' (user config error)
//	  --> schema.yaml:12
//	   |
//	   | Post.author: Usr
//	   |
//	   = relation: written
//	   = help: did you mean 'User'?
//	   = caused by: [E1005] ...
//	   = rule: resolve/types.go:61
//
// Errors that carry no ormer code are printed as a single "error:" line.
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	e, ok := err.(*alerr.Error)
	if !ok {
		chain := alerr.Chain(err)
		if len(chain) == 0 {
			return Error("error") + ": " + err.Error() + "\n"
		}
		e = chain[0]
	}
	return formatCoded(e)
}

func formatCoded(e *alerr.Error) string {
	var b strings.Builder
	ctx := e.GetContext()

	b.WriteString(Error(fmt.Sprintf("error[%s]", e.GetCode())))
	b.WriteString(": ")
	b.WriteString(Bold(e.GetMessage()))
	b.WriteString(Dim(fmt.Sprintf(" (%s)", e.GetKind())))
	b.WriteString("\n")

	if file, ok := ctx["file"].(string); ok && file != "" {
		pos := file
		if line, ok := ctx["line"].(int); ok && line > 0 {
			pos = fmt.Sprintf("%s:%d", file, line)
		}
		fmt.Fprintf(&b, "  %s %s\n", Pipe("-->"), Bold(pos))
	}

	if src := sourceLine(ctx); src != "" {
		gutter := Pipe("   |")
		fmt.Fprintf(&b, "%s\n%s %s\n%s\n", gutter, gutter, src, gutter)
	}

	for _, k := range detailKeys(ctx) {
		fmt.Fprintf(&b, "   %s %s: %v\n", Pipe("="), k, ctx[k])
	}
	for _, note := range e.Notes() {
		fmt.Fprintf(&b, "   %s %s: %s\n", Pipe("="), Note("note"), note)
	}
	for _, help := range e.Helps() {
		fmt.Fprintf(&b, "   %s %s: %s\n", Pipe("="), Help("help"), help)
	}
	for _, cause := range causes(e) {
		fmt.Fprintf(&b, "   %s caused by: %s\n", Pipe("="), cause)
	}
	if loc := e.GetLocation().String(); loc != "" {
		fmt.Fprintf(&b, "   %s %s\n", Pipe("="), Dim("rule: "+loc))
	}

	return b.String()
}

// sourceLine renders the member an error points at, as it would appear in a
// document: "Model.member: annotation".
func sourceLine(ctx map[string]any) string {
	model, _ := ctx["model"].(string)
	member, _ := ctx["member"].(string)
	annotation, _ := ctx["annotation"].(string)

	var target string
	switch {
	case model != "" && member != "":
		target = Accent(model + "." + member)
	case model != "":
		target = Accent(model)
	case member != "":
		target = Accent(member)
	}

	switch {
	case target != "" && annotation != "":
		return target + ": " + annotation
	case annotation != "":
		return annotation
	default:
		return target
	}
}

func detailKeys(ctx map[string]any) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if !positionalKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// causes lists the wrapped errors below e, one line each. Coded errors show
// their code and message; the innermost foreign error is shown verbatim.
func causes(e *alerr.Error) []string {
	var out []string
	chain := alerr.Chain(e)
	for _, c := range chain[1:] {
		out = append(out, fmt.Sprintf("[%s] %s", c.GetCode(), c.GetMessage()))
	}
	last := chain[len(chain)-1]
	if cause := last.GetCause(); cause != nil && !alerr.HasCode(cause) {
		out = append(out, cause.Error())
	}
	return out
}

// FormatWarning renders a warning line.
func FormatWarning(msg string) string {
	return Warning("warning") + ": " + msg + "\n"
}

// FormatSuccess renders a success line with a check mark.
func FormatSuccess(msg string) string {
	return Success("✓") + " " + msg + "\n"
}
