package mir

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/types"
)

func (l *Lowerer) lowerBlock(block *ast.Block) error {
	for _, stmt := range block.Stmts {
		// Statements after a return are unreachable; lower them into a
		// detached block that sealing discards.
		if l.cur.Terminated() {
			l.startBlock(l.newBlock())
		}
		if err := l.lowerStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt) error {
	switch st := stmt.(type) {
	case *ast.LetStmt:
		return l.lowerLet(st)
	case *ast.IfStmt:
		return l.lowerIf(st)
	case *ast.WhileStmt:
		return l.lowerWhile(st)
	case *ast.ForStmt:
		return l.lowerFor(st)
	case *ast.ReturnStmt:
		return l.lowerReturn(st)
	case *ast.ExprStmt:
		_, err := l.lowerExpr(st.Expr)
		return err
	case *ast.Block:
		return l.lowerBlock(st)
	default:
		return &InternalError{Fn: l.fn.Name, Msg: "unknown statement kind"}
	}
}

func (l *Lowerer) lowerLet(st *ast.LetStmt) error {
	sym := l.res.Decls[st.ID()]
	if sym == nil {
		return &InternalError{Fn: l.fn.Name, Msg: "let binding has no resolved symbol"}
	}
	slot := l.allocSlot(sym)

	if st.Value != nil {
		v, err := l.lowerExpr(st.Value)
		if err != nil {
			return err
		}
		l.emit(&Store{Slot: slot, Value: v})
		return nil
	}

	// Annotated let without an initializer starts zero-valued.
	zero := l.newValue(slot.Type)
	l.emit(&Const{Result: zero, Value: zeroValue(slot.Type)})
	l.emit(&Store{Slot: slot, Value: zero})
	return nil
}

func zeroValue(t types.Type) interface{} {
	p, ok := t.(*types.Primitive)
	if !ok {
		return uint64(0)
	}
	switch p.Kind {
	case types.Bool:
		return false
	case types.F32, types.F64:
		return float64(0)
	case types.Char:
		return rune(0)
	case types.String:
		return ""
	default:
		return uint64(0)
	}
}

// lowerIf branches to a then and an else block; each falls through to a
// shared merge block unless its path already returned, in which case it
// contributes no merge edge. A merge that ends up with no predecessors is
// dropped at seal time.
func (l *Lowerer) lowerIf(st *ast.IfStmt) error {
	cond, err := l.lowerExpr(st.Cond)
	if err != nil {
		return err
	}

	thenBlock := l.newBlock()
	elseBlock := l.newBlock()
	merge := l.newBlock()

	if err := l.terminate(&Branch{Cond: cond, True: thenBlock, False: elseBlock}); err != nil {
		return err
	}

	l.startBlock(thenBlock)
	if err := l.lowerBlock(st.Then); err != nil {
		return err
	}
	if !l.cur.Terminated() {
		if err := l.terminate(&Goto{Target: merge}); err != nil {
			return err
		}
	}

	l.startBlock(elseBlock)
	if st.Else != nil {
		if err := l.lowerStmt(st.Else); err != nil {
			return err
		}
	}
	if !l.cur.Terminated() {
		if err := l.terminate(&Goto{Target: merge}); err != nil {
			return err
		}
	}

	l.startBlock(merge)
	return nil
}

func (l *Lowerer) lowerWhile(st *ast.WhileStmt) error {
	header := l.newBlock()
	if err := l.terminate(&Goto{Target: header}); err != nil {
		return err
	}

	l.startBlock(header)
	cond, err := l.lowerExpr(st.Cond)
	if err != nil {
		return err
	}

	body := l.newBlock()
	exit := l.newBlock()
	if err := l.terminate(&Branch{Cond: cond, True: body, False: exit}); err != nil {
		return err
	}

	l.startBlock(body)
	if err := l.lowerBlock(st.Body); err != nil {
		return err
	}
	if !l.cur.Terminated() {
		if err := l.terminate(&Goto{Target: header}); err != nil {
			return err
		}
	}

	l.startBlock(exit)
	return nil
}

// lowerFor desugars `for (i in lo..hi)`: the bounds are evaluated once in
// the preheader, the header tests i < hi, and the body increments i by one
// before jumping back. The interval is half-open with step one.
func (l *Lowerer) lowerFor(st *ast.ForStmt) error {
	sym := l.res.Decls[st.ID()]
	if sym == nil {
		return &InternalError{Fn: l.fn.Name, Msg: "loop variable has no resolved symbol"}
	}

	lo, err := l.lowerExpr(st.Range.Low)
	if err != nil {
		return err
	}
	hi, err := l.lowerExpr(st.Range.High)
	if err != nil {
		return err
	}

	slot := l.allocSlot(sym)
	l.emit(&Store{Slot: slot, Value: lo})

	header := l.newBlock()
	if err := l.terminate(&Goto{Target: header}); err != nil {
		return err
	}

	l.startBlock(header)
	iv := l.newValue(slot.Type)
	l.emit(&Load{Result: iv, Slot: slot})
	cond := l.newValue(types.TypeBool)
	l.emit(&BinOp{Result: cond, Op: OpLt, Left: iv, Right: hi})

	body := l.newBlock()
	exit := l.newBlock()
	if err := l.terminate(&Branch{Cond: cond, True: body, False: exit}); err != nil {
		return err
	}

	l.startBlock(body)
	if err := l.lowerBlock(st.Body); err != nil {
		return err
	}
	if !l.cur.Terminated() {
		cur := l.newValue(slot.Type)
		l.emit(&Load{Result: cur, Slot: slot})
		one := l.newValue(slot.Type)
		l.emit(&Const{Result: one, Value: uint64(1)})
		next := l.newValue(slot.Type)
		l.emit(&BinOp{Result: next, Op: OpAdd, Left: cur, Right: one})
		l.emit(&Store{Slot: slot, Value: next})
		if err := l.terminate(&Goto{Target: header}); err != nil {
			return err
		}
	}

	l.startBlock(exit)
	return nil
}

func (l *Lowerer) lowerReturn(st *ast.ReturnStmt) error {
	if st.Value == nil {
		return l.terminate(&Return{})
	}

	v, err := l.lowerExpr(st.Value)
	if err != nil {
		return err
	}
	return l.terminate(&Return{Value: v})
}

// opKind maps a source binary operator to its instruction.
func opKind(op lexer.TokenType) (BinOpKind, bool) {
	switch op {
	case lexer.PLUS:
		return OpAdd, true
	case lexer.MINUS:
		return OpSub, true
	case lexer.ASTERISK:
		return OpMul, true
	case lexer.SLASH:
		return OpDiv, true
	case lexer.EQ:
		return OpEq, true
	case lexer.NOT_EQ:
		return OpNe, true
	case lexer.LT:
		return OpLt, true
	case lexer.LE:
		return OpLe, true
	case lexer.GT:
		return OpGt, true
	case lexer.GE:
		return OpGe, true
	}
	return "", false
}
