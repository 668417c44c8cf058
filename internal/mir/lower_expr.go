package mir

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/resolver"
	"github.com/rill-lang/rill/internal/types"
)

// lowerExpr evaluates an expression into a fresh value. Every
// subexpression, literals included, materializes as an instruction result;
// instruction operands are therefore always values.
func (l *Lowerer) lowerExpr(expr ast.Expr) (*Value, error) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return l.lowerConst(e, e.Value)
	case *ast.FloatLit:
		return l.lowerConst(e, e.Value)
	case *ast.BoolLit:
		return l.lowerConst(e, e.Value)
	case *ast.CharLit:
		return l.lowerConst(e, e.Value)
	case *ast.StringLit:
		return l.lowerConst(e, e.Value)
	case *ast.Ident:
		return l.lowerIdent(e)
	case *ast.PrefixExpr:
		return l.lowerPrefix(e)
	case *ast.InfixExpr:
		return l.lowerInfix(e)
	case *ast.AssignExpr:
		return l.lowerAssign(e)
	case *ast.CallExpr:
		return l.lowerCall(e)
	default:
		return nil, &InternalError{Fn: l.fn.Name, Msg: "expression kind cannot appear here"}
	}
}

func (l *Lowerer) lowerConst(expr ast.Expr, raw interface{}) (*Value, error) {
	t, err := l.exprType(expr)
	if err != nil {
		return nil, err
	}
	v := l.newValue(t)
	l.emit(&Const{Result: v, Value: raw})
	return v, nil
}

func (l *Lowerer) lowerIdent(e *ast.Ident) (*Value, error) {
	sym := l.res.Uses[e.ID()]
	if sym == nil || sym.Kind != resolver.SymbolVar {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "identifier `" + e.Name + "` does not name a variable"}
	}
	slot := l.slots[sym]
	if slot == nil {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "variable `" + e.Name + "` has no storage slot"}
	}

	v := l.newValue(slot.Type)
	l.emit(&Load{Result: v, Slot: slot})
	return v, nil
}

func (l *Lowerer) lowerPrefix(e *ast.PrefixExpr) (*Value, error) {
	operand, err := l.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}

	var op UnOpKind
	switch e.Op {
	case lexer.BANG:
		op = OpNot
	case lexer.MINUS:
		op = OpNeg
	default:
		return nil, &InternalError{Fn: l.fn.Name, Msg: "unknown unary operator"}
	}

	t, err := l.exprType(e)
	if err != nil {
		return nil, err
	}
	v := l.newValue(t)
	l.emit(&UnOp{Result: v, Op: op, Operand: operand})
	return v, nil
}

func (l *Lowerer) lowerInfix(e *ast.InfixExpr) (*Value, error) {
	if e.Op == lexer.AND || e.Op == lexer.OR {
		return l.lowerShortCircuit(e)
	}

	left, err := l.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := l.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}

	op, ok := opKind(e.Op)
	if !ok {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "unknown binary operator"}
	}

	t, err := l.exprType(e)
	if err != nil {
		return nil, err
	}
	v := l.newValue(t)
	l.emit(&BinOp{Result: v, Op: op, Left: left, Right: right})
	return v, nil
}

// lowerShortCircuit turns && and || into control flow over a boolean
// result slot: the right operand only executes on the path where it can
// still change the outcome.
func (l *Lowerer) lowerShortCircuit(e *ast.InfixExpr) (*Value, error) {
	tmp := l.tempSlot(types.TypeBool)

	left, err := l.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}

	rhs := l.newBlock()
	short := l.newBlock()
	merge := l.newBlock()

	branch := &Branch{Cond: left, True: rhs, False: short}
	if e.Op == lexer.OR {
		branch.True, branch.False = short, rhs
	}
	if err := l.terminate(branch); err != nil {
		return nil, err
	}

	l.startBlock(rhs)
	right, err := l.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}
	l.emit(&Store{Slot: tmp, Value: right})
	if err := l.terminate(&Goto{Target: merge}); err != nil {
		return nil, err
	}

	// The short-circuit path pins the result: false for &&, true for ||.
	l.startBlock(short)
	pinned := l.newValue(types.TypeBool)
	l.emit(&Const{Result: pinned, Value: e.Op == lexer.OR})
	l.emit(&Store{Slot: tmp, Value: pinned})
	if err := l.terminate(&Goto{Target: merge}); err != nil {
		return nil, err
	}

	l.startBlock(merge)
	out := l.newValue(types.TypeBool)
	l.emit(&Load{Result: out, Slot: tmp})
	return out, nil
}

// tempSlot allocates an anonymous slot that no source variable owns.
func (l *Lowerer) tempSlot(t types.Type) *Slot {
	slot := &Slot{ID: len(l.fn.Slots), Type: t}
	l.fn.Slots = append(l.fn.Slots, slot)
	return slot
}

func (l *Lowerer) lowerAssign(e *ast.AssignExpr) (*Value, error) {
	target, ok := e.Target.(*ast.Ident)
	if !ok {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "assignment target is not a variable"}
	}
	sym := l.res.Uses[target.ID()]
	slot := l.slots[sym]
	if slot == nil {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "assignment target `" + target.Name + "` has no storage slot"}
	}

	v, err := l.lowerExpr(e.Value)
	if err != nil {
		return nil, err
	}
	l.emit(&Store{Slot: slot, Value: v})
	return v, nil
}

func (l *Lowerer) lowerCall(e *ast.CallExpr) (*Value, error) {
	var sym *resolver.Symbol
	switch callee := e.Callee.(type) {
	case *ast.Ident:
		sym = l.res.Uses[callee.ID()]
	case *ast.PathExpr:
		sym = l.res.Uses[callee.ID()]
	}
	if sym == nil {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "call has no resolved callee"}
	}

	args := make([]*Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := l.lowerExpr(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	t, err := l.exprType(e)
	if err != nil {
		return nil, err
	}
	result := l.newValue(t)
	l.emit(&Call{Result: result, Callee: sym.QualifiedName, Args: args})
	return result, nil
}
