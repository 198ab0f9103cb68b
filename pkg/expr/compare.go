package expr

import (
	"fmt"

	"github.com/mnohosten/heapdb/pkg/dberror"
	"github.com/mnohosten/heapdb/pkg/record"
)

// CompareOp is a comparison operator, named after the teacher's $eq/$gt
// operator dispatch table (pkg/query/operators.go) but typed over
// record.Value instead of interface{}, since every operand here carries a
// known, fixed record.DataType.
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

type compareExpr struct {
	left, right Expression
	op          CompareOp
}

// Compare builds an Expression evaluating left op right. Both operands are
// evaluated first; if their DataTypes differ, Eval returns
// ErrCompareValueOfDifferentDatatype.
func Compare(left, right Expression, op CompareOp) Expression {
	return compareExpr{left: left, right: right, op: op}
}

func (c compareExpr) Eval(rec *record.Record, schema *record.Schema) (Value, error) {
	lv, err := c.left.Eval(rec, schema)
	if err != nil {
		return Value{}, err
	}
	rv, err := c.right.Eval(rec, schema)
	if err != nil {
		return Value{}, err
	}
	if lv.Type != rv.Type {
		return Value{}, dberror.ErrCompareValueOfDifferentDatatype
	}

	var result bool
	switch lv.Type {
	case record.TypeInt:
		result = evaluateOp(c.op, compareInts(lv.Int, rv.Int))
	case record.TypeFloat:
		result = evaluateOp(c.op, compareFloats(lv.Flt, rv.Flt))
	case record.TypeBool:
		result = evaluateBoolOp(c.op, lv.Bool, rv.Bool)
	case record.TypeString:
		result = evaluateOp(c.op, compareStrings(lv.Str, rv.Str))
	default:
		return Value{}, fmt.Errorf("expr: compare: unsupported type %v: %w", lv.Type, dberror.ErrInvalidParameter)
	}
	return record.BoolValue(result), nil
}

func compareInts(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// evaluateOp applies op to the sign of a three-way comparison (a.k.a.
// strcmp/cmp.Compare convention): negative means left < right.
func evaluateOp(op CompareOp, sign int) bool {
	switch op {
	case OpEQ:
		return sign == 0
	case OpNE:
		return sign != 0
	case OpLT:
		return sign < 0
	case OpLE:
		return sign <= 0
	case OpGT:
		return sign > 0
	case OpGE:
		return sign >= 0
	default:
		return false
	}
}

// evaluateBoolOp applies op to two bool operands; only equality and
// inequality are meaningful for BOOL.
func evaluateBoolOp(op CompareOp, a, b bool) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	default:
		return false
	}
}
