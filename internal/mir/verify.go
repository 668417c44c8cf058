package mir

import "fmt"

// VerifyModule checks the structural invariants of every sealed function:
// every referenced symbol is defined, every block is terminated, and every
// value is used only after being defined in a dominating block.
func VerifyModule(m *Module) error {
	for _, fn := range m.Functions {
		if err := Verify(fn); err != nil {
			return err
		}
	}
	for _, fn := range m.Functions {
		if err := verifyCallees(m, fn); err != nil {
			return err
		}
	}
	return nil
}

func verifyCallees(m *Module, fn *Function) error {
	for _, block := range fn.Blocks {
		for _, instr := range block.Instrs {
			call, ok := instr.(*Call)
			if !ok {
				continue
			}
			if call.Callee == "print" {
				continue
			}
			if m.FindFunction(call.Callee) == nil {
				return &InternalError{Fn: fn.Name, Msg: "call to undefined function `" + call.Callee + "`"}
			}
		}
	}
	return nil
}

// Verify checks a single function.
func Verify(fn *Function) error {
	if fn.State != StateSealed {
		return &InternalError{Fn: fn.Name, Msg: "function is not sealed"}
	}
	if fn.Entry == nil || len(fn.Blocks) == 0 {
		return &InternalError{Fn: fn.Name, Msg: "function has no entry block"}
	}

	inFn := make(map[*BasicBlock]bool, len(fn.Blocks))
	for _, block := range fn.Blocks {
		inFn[block] = true
	}

	for _, block := range fn.Blocks {
		if block.Terminator == nil {
			return &InternalError{Fn: fn.Name, Msg: "block " + block.Label + " has no terminator"}
		}
		for _, succ := range successors(block) {
			if !inFn[succ] {
				return &InternalError{Fn: fn.Name, Msg: "block " + block.Label + " jumps outside the function"}
			}
		}
	}

	return verifyDefsDominateUses(fn)
}

type defSite struct {
	block *BasicBlock
	index int
}

func verifyDefsDominateUses(fn *Function) error {
	defs := make(map[*Value]defSite)
	for _, block := range fn.Blocks {
		for i, instr := range block.Instrs {
			result := instrResult(instr)
			if result == nil {
				continue
			}
			if _, dup := defs[result]; dup {
				return &InternalError{Fn: fn.Name, Msg: fmt.Sprintf("%s is defined twice", result)}
			}
			defs[result] = defSite{block: block, index: i}
		}
	}

	idom := computeDominators(fn)

	checkUse := func(block *BasicBlock, index int, v *Value) error {
		def, ok := defs[v]
		if !ok {
			return &InternalError{Fn: fn.Name, Msg: fmt.Sprintf("%s is used but never defined", v)}
		}
		if def.block == block {
			if def.index >= index {
				return &InternalError{Fn: fn.Name, Msg: fmt.Sprintf("%s is used before its definition in %s", v, block.Label)}
			}
			return nil
		}
		if !dominates(def.block, block, idom) {
			return &InternalError{Fn: fn.Name, Msg: fmt.Sprintf("%s is used in %s which its defining block %s does not dominate",
				v, block.Label, def.block.Label)}
		}
		return nil
	}

	for _, block := range fn.Blocks {
		for i, instr := range block.Instrs {
			for _, v := range instrOperands(instr) {
				if err := checkUse(block, i, v); err != nil {
					return err
				}
			}
		}
		for _, v := range terminatorOperands(block.Terminator) {
			if err := checkUse(block, len(block.Instrs), v); err != nil {
				return err
			}
		}
	}

	return nil
}

func instrResult(instr Instr) *Value {
	switch in := instr.(type) {
	case *Const:
		return in.Result
	case *BinOp:
		return in.Result
	case *UnOp:
		return in.Result
	case *Load:
		return in.Result
	case *Call:
		return in.Result
	default:
		return nil
	}
}

func instrOperands(instr Instr) []*Value {
	switch in := instr.(type) {
	case *BinOp:
		return []*Value{in.Left, in.Right}
	case *UnOp:
		return []*Value{in.Operand}
	case *Store:
		return []*Value{in.Value}
	case *Call:
		return in.Args
	default:
		return nil
	}
}

func terminatorOperands(t Terminator) []*Value {
	switch term := t.(type) {
	case *Return:
		if term.Value != nil {
			return []*Value{term.Value}
		}
	case *Branch:
		return []*Value{term.Cond}
	}
	return nil
}

// computeDominators computes the immediate dominator of every reachable
// block with the iterative algorithm over a reverse postorder numbering.
// The entry maps to nil.
func computeDominators(fn *Function) map[*BasicBlock]*BasicBlock {
	idom := make(map[*BasicBlock]*BasicBlock)
	if fn.Entry == nil {
		return idom
	}

	rpo := reversePostorder(fn)
	rpoNum := make(map[*BasicBlock]int, len(rpo))
	for i, block := range rpo {
		rpoNum[block] = i
	}

	preds := make(map[*BasicBlock][]*BasicBlock)
	for _, block := range rpo {
		for _, succ := range successors(block) {
			preds[succ] = append(preds[succ], block)
		}
	}

	idom[fn.Entry] = nil
	processed := map[*BasicBlock]bool{fn.Entry: true}

	changed := true
	for changed {
		changed = false
		for _, block := range rpo {
			if block == fn.Entry {
				continue
			}

			var newDom *BasicBlock
			for _, pred := range preds[block] {
				if !processed[pred] {
					continue
				}
				if newDom == nil {
					newDom = pred
				} else {
					newDom = intersect(pred, newDom, idom, rpoNum)
				}
			}
			if newDom == nil {
				continue
			}

			if idom[block] != newDom || !processed[block] {
				idom[block] = newDom
				processed[block] = true
				changed = true
			}
		}
	}

	return idom
}

func intersect(a, b *BasicBlock, idom map[*BasicBlock]*BasicBlock, rpoNum map[*BasicBlock]int) *BasicBlock {
	for a != b {
		for rpoNum[a] > rpoNum[b] {
			a = idom[a]
		}
		for rpoNum[b] > rpoNum[a] {
			b = idom[b]
		}
	}
	return a
}

func reversePostorder(fn *Function) []*BasicBlock {
	var order []*BasicBlock
	visited := make(map[*BasicBlock]bool)

	var visit func(b *BasicBlock)
	visit = func(b *BasicBlock) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, succ := range successors(b) {
			visit(succ)
		}
		order = append(order, b)
	}
	visit(fn.Entry)

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// dominates reports whether a dominates b (reflexively).
func dominates(a, b *BasicBlock, idom map[*BasicBlock]*BasicBlock) bool {
	for b != nil {
		if a == b {
			return true
		}
		b = idom[b]
	}
	return false
}
