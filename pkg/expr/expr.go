// Package expr supplies a concrete implementation of the evalExpr
// collaborator record.Scan requires: a deterministic (Record, Schema) ->
// Value mapping. Named and shaped after the Expr/Eval(ctx) convention used
// by the pack's expression-parser exercise, adapted to take the record and
// schema directly since a heap-scan predicate only ever evaluates against
// one tuple at a time.
package expr

import (
	"fmt"

	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/record"
)

// Value is record.Value, re-exported so callers building expressions don't
// need to import both packages for one type.
type Value = record.Value

// Expression evaluates against one record under its schema. It is the
// interface record.Expression requires; every constructor in this package
// implements it.
type Expression interface {
	Eval(rec *record.Record, schema *record.Schema) (Value, error)
}

// constExpr always evaluates to the same literal value.
type constExpr struct{ v Value }

// Const builds an Expression that ignores its record and always evaluates
// to v.
func Const(v Value) Expression { return constExpr{v: v} }

func (c constExpr) Eval(*record.Record, *record.Schema) (Value, error) { return c.v, nil }

// attrRefExpr evaluates to the named attribute's current value.
type attrRefExpr struct{ name string }

// AttrRef builds an Expression that reads attribute name out of the record
// being evaluated.
func AttrRef(name string) Expression { return attrRefExpr{name: name} }

func (a attrRefExpr) Eval(rec *record.Record, schema *record.Schema) (Value, error) {
	idx := schema.AttrIndex(a.name)
	if idx < 0 {
		return Value{}, fmt.Errorf("expr: no such attribute %q: %w", a.name, dberror.ErrInvalidParameter)
	}
	return record.GetAttr(rec, schema, idx)
}
