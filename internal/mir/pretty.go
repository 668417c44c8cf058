package mir

import (
	"fmt"
	"strings"
)

// PrettyPrint returns the deterministic textual dump of a module: functions
// in declaration order, blocks in emission order. This text is the contract
// handed to an external backend, so its shape must not depend on map
// iteration or any other nondeterminism.
func (m *Module) PrettyPrint() string {
	var b strings.Builder
	for i, fn := range m.Functions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(fn.PrettyPrint())
	}
	return b.String()
}

// PrettyPrint returns a human-readable string representation of a function.
func (f *Function) PrettyPrint() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("fn %s(", f.Name))
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(") -> ")
	b.WriteString(f.ReturnType.String())
	b.WriteString(" {\n")

	for _, slot := range f.Slots {
		if slot.Name == "" {
			b.WriteString(fmt.Sprintf("  slot %s: %s\n", slot, slot.Type))
		} else {
			b.WriteString(fmt.Sprintf("  slot %s: %s  ; %s\n", slot, slot.Type, slot.Name))
		}
	}

	for _, block := range f.Blocks {
		b.WriteString(block.PrettyPrint())
	}

	b.WriteString("}")
	return b.String()
}

// PrettyPrint returns a human-readable string representation of a block.
func (bb *BasicBlock) PrettyPrint() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s:\n", bb.Label))

	for _, instr := range bb.Instrs {
		b.WriteString("    ")
		b.WriteString(instrString(instr))
		b.WriteString("\n")
	}

	if bb.Terminator != nil {
		b.WriteString("    ")
		b.WriteString(terminatorString(bb.Terminator))
		b.WriteString("\n")
	}

	return b.String()
}

func instrString(instr Instr) string {
	switch in := instr.(type) {
	case *Const:
		return fmt.Sprintf("%s = const %s : %s", in.Result, constString(in.Value), in.Result.Type)
	case *BinOp:
		return fmt.Sprintf("%s = %s %s, %s", in.Result, in.Op, in.Left, in.Right)
	case *UnOp:
		return fmt.Sprintf("%s = %s %s", in.Result, in.Op, in.Operand)
	case *Load:
		return fmt.Sprintf("%s = load %s", in.Result, in.Slot)
	case *Store:
		return fmt.Sprintf("store %s, %s", in.Slot, in.Value)
	case *Call:
		args := make([]string, len(in.Args))
		for i, arg := range in.Args {
			args[i] = arg.String()
		}
		return fmt.Sprintf("%s = call %s(%s)", in.Result, in.Callee, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("<unknown instr %T>", instr)
	}
}

func terminatorString(t Terminator) string {
	switch term := t.(type) {
	case *Return:
		if term.Value == nil {
			return "return"
		}
		return fmt.Sprintf("return %s", term.Value)
	case *Goto:
		return fmt.Sprintf("goto %s", term.Target.Label)
	case *Branch:
		return fmt.Sprintf("branch %s, %s, %s", term.Cond, term.True.Label, term.False.Label)
	default:
		return fmt.Sprintf("<unknown terminator %T>", t)
	}
}

func constString(v interface{}) string {
	switch val := v.(type) {
	case uint64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case rune:
		return fmt.Sprintf("%q", val)
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
