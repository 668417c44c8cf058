package mir

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/resolver"
	"github.com/rill-lang/rill/internal/types"
)

// Lowerer converts a fully resolved and type-checked AST to MIR. It is only
// ever invoked on a program with zero resolution and type errors; any
// inconsistency it observes is an InternalError.
type Lowerer struct {
	res *resolver.Resolver
	chk *types.Checker

	// Module being constructed.
	module *Module

	// Current function being lowered.
	fn *Function

	// Current block being built.
	cur *BasicBlock

	// Map of variable symbols to their storage slots. Symbols are unique
	// per declaration, so shadowing needs no scope bookkeeping here.
	slots map[*resolver.Symbol]*Slot
}

// NewLowerer creates a lowerer reading the side tables of a completed
// resolution and check.
func NewLowerer(res *resolver.Resolver, chk *types.Checker) *Lowerer {
	return &Lowerer{
		res: res,
		chk: chk,
	}
}

// LowerFile lowers an entire file to MIR, functions in declaration order.
func (l *Lowerer) LowerFile(file *ast.File) (*Module, error) {
	l.module = &Module{Functions: make([]*Function, 0)}

	if err := l.lowerItems(file.Items); err != nil {
		return nil, err
	}

	return l.module, nil
}

func (l *Lowerer) lowerItems(items []ast.Item) error {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FnDecl:
			fn, err := l.lowerFunction(it)
			if err != nil {
				return fmt.Errorf("lowering `%s`: %w", it.Name.Name, err)
			}
			l.module.Functions = append(l.module.Functions, fn)
		case *ast.ModDecl:
			if err := l.lowerItems(it.Items); err != nil {
				return err
			}
		}
	}
	return nil
}

// lowerFunction drives the per-function state machine: Entry opens the
// first block, Generating emits the body, and seal checks every reachable
// block is terminated.
func (l *Lowerer) lowerFunction(decl *ast.FnDecl) (*Function, error) {
	sym := l.res.Decls[decl.ID()]
	if sym == nil {
		return nil, &InternalError{Msg: "function declaration has no resolved symbol"}
	}
	sig := l.chk.Signature(decl)
	if sig == nil {
		return nil, &InternalError{Fn: sym.QualifiedName, Msg: "function declaration has no checked signature"}
	}

	l.fn = &Function{
		Name:       sym.QualifiedName,
		ReturnType: sig.Return,
		State:      StateEntry,
	}
	l.slots = make(map[*resolver.Symbol]*Slot)

	l.cur = l.newBlock()
	l.fn.Entry = l.cur

	for _, param := range decl.Params {
		psym := l.res.Decls[param.ID()]
		if psym == nil {
			return nil, &InternalError{Fn: l.fn.Name, Msg: "parameter has no resolved symbol"}
		}
		slot := l.allocSlot(psym)
		l.fn.Params = append(l.fn.Params, slot)
	}

	l.fn.State = StateGenerating

	if err := l.lowerBlock(decl.Body); err != nil {
		return nil, err
	}

	// Fallthrough off the end of a unit body: synthesize the return. For a
	// non-unit function the end is either unreachable (seal drops it) or a
	// checker bug (seal reports it).
	if !l.cur.Terminated() && types.Equal(l.fn.ReturnType, types.TypeUnit) {
		l.cur.Terminator = &Return{}
	}

	if err := l.seal(); err != nil {
		return nil, err
	}

	return l.fn, nil
}

// seal removes blocks unreachable from the entry and checks the remaining
// blocks all carry a terminator.
func (l *Lowerer) seal() error {
	reachable := make(map[*BasicBlock]bool)
	work := []*BasicBlock{l.fn.Entry}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		if reachable[b] {
			continue
		}
		reachable[b] = true
		work = append(work, successors(b)...)
	}

	kept := l.fn.Blocks[:0]
	for _, b := range l.fn.Blocks {
		if !reachable[b] {
			continue
		}
		if !b.Terminated() {
			return &InternalError{Fn: l.fn.Name, Msg: "reachable block " + b.Label + " falls through without a terminator"}
		}
		kept = append(kept, b)
	}
	l.fn.Blocks = kept
	l.fn.State = StateSealed
	return nil
}

func successors(b *BasicBlock) []*BasicBlock {
	switch t := b.Terminator.(type) {
	case *Goto:
		return []*BasicBlock{t.Target}
	case *Branch:
		return []*BasicBlock{t.True, t.False}
	default:
		return nil
	}
}

// newBlock appends a fresh block in emission order.
func (l *Lowerer) newBlock() *BasicBlock {
	b := &BasicBlock{Label: fmt.Sprintf("bb%d", l.fn.nextBlock)}
	l.fn.nextBlock++
	l.fn.Blocks = append(l.fn.Blocks, b)
	return b
}

// startBlock makes b the current insertion point.
func (l *Lowerer) startBlock(b *BasicBlock) {
	l.cur = b
}

func (l *Lowerer) newValue(t types.Type) *Value {
	v := &Value{ID: l.fn.nextValue, Type: t}
	l.fn.nextValue++
	return v
}

func (l *Lowerer) allocSlot(sym *resolver.Symbol) *Slot {
	t := l.chk.VarTypes[sym]
	slot := &Slot{ID: len(l.fn.Slots), Name: sym.Name, Type: t}
	l.fn.Slots = append(l.fn.Slots, slot)
	l.slots[sym] = slot
	return slot
}

func (l *Lowerer) emit(instr Instr) {
	l.cur.Instrs = append(l.cur.Instrs, instr)
}

// terminate closes the current block. Emitting a second terminator is an
// invariant violation, not a recoverable condition.
func (l *Lowerer) terminate(t Terminator) error {
	if l.cur.Terminated() {
		return &InternalError{Fn: l.fn.Name, Msg: "block " + l.cur.Label + " terminated twice"}
	}
	l.cur.Terminator = t
	return nil
}

// exprType reads the checker's verdict for an expression node.
func (l *Lowerer) exprType(expr ast.Expr) (types.Type, error) {
	t := l.chk.Types[expr.ID()]
	if t == nil {
		return nil, &InternalError{Fn: l.fn.Name, Msg: "expression has no checked type"}
	}
	return t, nil
}
