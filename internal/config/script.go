package config

import (
	"errors"
	"time"

	"github.com/dop251/goja"

	"github.com/hlop3z/ormer/internal/alerr"
	"github.com/hlop3z/ormer/internal/schema"
)

// DefaultScriptTimeout bounds the evaluation of a JavaScript document.
const DefaultScriptTimeout = 5 * time.Second

type options struct {
	timeout time.Duration
}

func defaultOptions() options {
	return options{timeout: DefaultScriptTimeout}
}

// Option configures document loading.
type Option func(*options)

// WithScriptTimeout sets how long a JavaScript document may run.
func WithScriptTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// exportScript serializes whatever the document produced. JSON.stringify
// keeps property insertion order, which the decoder relies on.
const exportScript = `(function () {
	var out = module.exports;
	if (out === null || typeof out !== "object" || Object.keys(out).length === 0) {
		out = (typeof schema !== "undefined") ? schema : null;
	}
	return out === null ? null : JSON.stringify(out);
})()`

// evalScript runs a JavaScript document and decodes the schema it defines,
// either through module.exports or a top-level schema variable.
func evalScript(code, source string, o options) (schema.RawSchema, error) {
	vm := newRuntime()

	timer := time.AfterFunc(o.timeout, func() {
		vm.Interrupt("execution timeout")
	})
	defer timer.Stop()

	if _, err := vm.RunScript(source, code); err != nil {
		return schema.RawSchema{}, scriptError(err, source, o.timeout)
	}

	out, err := vm.RunString(exportScript)
	if err != nil {
		return schema.RawSchema{}, scriptError(err, source, o.timeout)
	}
	if goja.IsNull(out) || goja.IsUndefined(out) {
		return schema.RawSchema{}, alerr.New(alerr.ErrDocumentShape, "script did not define a schema").
			WithFile(source).
			WithHelp("assign the document to module.exports or to a top-level 'schema' variable")
	}

	return DecodeYAML([]byte(out.String()), source)
}

// newRuntime returns a goja runtime with eval disabled and a bounded stack.
func newRuntime() *goja.Runtime {
	vm := goja.New()
	vm.SetMaxCallStackSize(500)
	vm.Set("eval", goja.Undefined())

	module := vm.NewObject()
	_ = module.Set("exports", vm.NewObject())
	vm.Set("module", module)
	vm.Set("exports", module.Get("exports"))
	return vm
}

func scriptError(err error, source string, timeout time.Duration) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return alerr.New(alerr.ErrScriptTimeout, "script execution timed out").
			WithFile(source).
			With("timeout", timeout.String())
	}

	e := alerr.Wrap(alerr.ErrScriptFailed, err, "schema script failed").WithFile(source)

	var exception *goja.Exception
	if errors.As(err, &exception) {
		for _, frame := range exception.Stack() {
			if pos := frame.Position(); pos.Line > 0 {
				e = e.With("line", pos.Line)
				break
			}
		}
	}
	return e
}
