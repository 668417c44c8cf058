package interp

import (
	"github.com/rill-lang/rill/internal/mir"
	"github.com/rill-lang/rill/internal/types"
)

func (m *Machine) unop(fn *mir.Function, in *mir.UnOp, regs map[*mir.Value]interface{}) (interface{}, error) {
	operand := regs[in.Operand]

	switch in.Op {
	case mir.OpNot:
		b, ok := operand.(bool)
		if !ok {
			return nil, &Fault{Fn: fn.Name, Msg: "operand of `not` is not a bool"}
		}
		return !b, nil

	case mir.OpNeg:
		switch v := operand.(type) {
		case uint64:
			return maskInt(in.Result.Type, -v), nil
		case float64:
			return roundFloat(in.Result.Type, -v), nil
		}
		return nil, &Fault{Fn: fn.Name, Msg: "operand of `neg` is not numeric"}
	}

	return nil, &Fault{Fn: fn.Name, Msg: "unknown unary operation"}
}

func (m *Machine) binop(fn *mir.Function, in *mir.BinOp, regs map[*mir.Value]interface{}) (interface{}, error) {
	left, right := regs[in.Left], regs[in.Right]

	switch in.Op {
	case mir.OpAdd, mir.OpSub, mir.OpMul, mir.OpDiv:
		return m.arith(fn, in, left, right)
	case mir.OpEq:
		return left == right, nil
	case mir.OpNe:
		return left != right, nil
	case mir.OpLt, mir.OpLe, mir.OpGt, mir.OpGe:
		return m.compare(fn, in, left, right)
	}

	return nil, &Fault{Fn: fn.Name, Msg: "unknown binary operation"}
}

// arith computes the integer and float arithmetic operations; integers
// wrap at their type's width. Division by zero is the canonical runtime
// fault.
func (m *Machine) arith(fn *mir.Function, in *mir.BinOp, left, right interface{}) (interface{}, error) {
	if lf, ok := left.(float64); ok {
		rf, ok := right.(float64)
		if !ok {
			return nil, &Fault{Fn: fn.Name, Msg: "mixed operand kinds in arithmetic"}
		}
		var out float64
		switch in.Op {
		case mir.OpAdd:
			out = lf + rf
		case mir.OpSub:
			out = lf - rf
		case mir.OpMul:
			out = lf * rf
		case mir.OpDiv:
			out = lf / rf
		}
		return roundFloat(in.Result.Type, out), nil
	}

	lu, lok := left.(uint64)
	ru, rok := right.(uint64)
	if !lok || !rok {
		return nil, &Fault{Fn: fn.Name, Msg: "non-numeric operands in arithmetic"}
	}

	t := in.Result.Type
	switch in.Op {
	case mir.OpAdd:
		return maskInt(t, lu+ru), nil
	case mir.OpSub:
		return maskInt(t, lu-ru), nil
	case mir.OpMul:
		return maskInt(t, lu*ru), nil
	case mir.OpDiv:
		if ru == 0 {
			return nil, &Fault{Fn: fn.Name, Msg: "integer division by zero"}
		}
		if types.IsSigned(t) {
			q := toSigned(t, lu) / toSigned(t, ru)
			return maskInt(t, uint64(q)), nil
		}
		return maskInt(t, lu/ru), nil
	}
	return nil, &Fault{Fn: fn.Name, Msg: "unknown arithmetic operation"}
}

func (m *Machine) compare(fn *mir.Function, in *mir.BinOp, left, right interface{}) (interface{}, error) {
	var lt, eq bool

	switch lv := left.(type) {
	case float64:
		rv, ok := right.(float64)
		if !ok {
			return nil, &Fault{Fn: fn.Name, Msg: "mixed operand kinds in comparison"}
		}
		lt, eq = lv < rv, lv == rv

	case uint64:
		rv, ok := right.(uint64)
		if !ok {
			return nil, &Fault{Fn: fn.Name, Msg: "mixed operand kinds in comparison"}
		}
		// Signedness comes from the operand's static type.
		if types.IsSigned(in.Left.Type) {
			ls, rs := toSigned(in.Left.Type, lv), toSigned(in.Left.Type, rv)
			lt, eq = ls < rs, ls == rs
		} else {
			lt, eq = lv < rv, lv == rv
		}

	default:
		return nil, &Fault{Fn: fn.Name, Msg: "non-numeric operands in comparison"}
	}

	switch in.Op {
	case mir.OpLt:
		return lt, nil
	case mir.OpLe:
		return lt || eq, nil
	case mir.OpGt:
		return !lt && !eq, nil
	case mir.OpGe:
		return !lt, nil
	}
	return nil, &Fault{Fn: fn.Name, Msg: "unknown comparison"}
}

// toSigned reinterprets raw bits as a signed value of t's width.
func toSigned(t types.Type, raw uint64) int64 {
	if width(t) == 32 {
		return int64(int32(uint32(raw)))
	}
	return int64(raw)
}

// roundFloat narrows f32 results through float32 so 32-bit arithmetic
// observes 32-bit rounding.
func roundFloat(t types.Type, v float64) float64 {
	if width(t) == 32 {
		return float64(float32(v))
	}
	return v
}
