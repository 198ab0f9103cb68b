package expr

import (
	"fmt"

	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/record"
)

type andExpr struct{ terms []Expression }

// And builds an Expression that is true iff every term is true. An empty
// term list evaluates to true (the identity for AND).
func And(terms ...Expression) Expression { return andExpr{terms: terms} }

func (a andExpr) Eval(rec *record.Record, schema *record.Schema) (Value, error) {
	for _, term := range a.terms {
		v, err := boolOf(term, rec, schema)
		if err != nil {
			return Value{}, err
		}
		if !v {
			return record.BoolValue(false), nil
		}
	}
	return record.BoolValue(true), nil
}

type orExpr struct{ terms []Expression }

// Or builds an Expression that is true iff at least one term is true. An
// empty term list evaluates to false (the identity for OR).
func Or(terms ...Expression) Expression { return orExpr{terms: terms} }

func (o orExpr) Eval(rec *record.Record, schema *record.Schema) (Value, error) {
	for _, term := range o.terms {
		v, err := boolOf(term, rec, schema)
		if err != nil {
			return Value{}, err
		}
		if v {
			return record.BoolValue(true), nil
		}
	}
	return record.BoolValue(false), nil
}

type notExpr struct{ term Expression }

// Not builds an Expression that negates term.
func Not(term Expression) Expression { return notExpr{term: term} }

func (n notExpr) Eval(rec *record.Record, schema *record.Schema) (Value, error) {
	v, err := boolOf(n.term, rec, schema)
	if err != nil {
		return Value{}, err
	}
	return record.BoolValue(!v), nil
}

func boolOf(e Expression, rec *record.Record, schema *record.Schema) (bool, error) {
	v, err := e.Eval(rec, schema)
	if err != nil {
		return false, err
	}
	if v.Type != record.TypeBool {
		return false, fmt.Errorf("expr: operand is %v, not BOOL: %w", v.Type, dberror.ErrInvalidParameter)
	}
	return v.Bool, nil
}
