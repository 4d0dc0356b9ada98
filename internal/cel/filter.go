// Package cel filters records with CEL expressions. A record is bound to
// "_" and its position in the list to "index", e.g. `_.age >= 30 && _.active`.
package cel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/tablekit/pkg/record"
)

// ErrNotBoolean is returned when a filter does not evaluate to a bool.
var ErrNotBoolean = errors.New("filter must evaluate to a bool")

// Filter is a compiled record predicate.
type Filter struct {
	expr string
	prg  cel.Program
}

// newEnv creates the filter environment with the common extension libraries.
func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("_", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("index", cel.IntType),
		celext.Strings(),
		celext.Lists(),
		celext.Math(),
	)
}

// Compile parses and type-checks expr. An empty expression yields a nil
// filter that matches everything.
func Compile(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(types.BoolType) && !out.IsExactType(types.DynType) {
		return nil, fmt.Errorf("%w: %q has type %s", ErrNotBoolean, expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter for rec at position index.
func (f *Filter) Match(rec record.Record, index int) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.prg.Eval(map[string]any{
		"_":     map[string]any(rec),
		"index": index,
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %s", ErrNotBoolean, out.Type())
	}
	return b, nil
}

// Apply returns the records of list that match, in order.
func (f *Filter) Apply(list []record.Record) ([]record.Record, error) {
	if f == nil {
		return list, nil
	}
	out := make([]record.Record, 0, len(list))
	for i, rec := range list {
		ok, err := f.Match(rec, i)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
