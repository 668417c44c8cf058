package interp

import (
	"fmt"
	"io"

	"github.com/rill-lang/rill/internal/mir"
	"github.com/rill-lang/rill/internal/types"
)

// Fault is a runtime fault raised while executing a program, such as
// integer division by zero. Faults are a property of the program's
// execution and are deliberately distinct from every compile-time
// diagnostic type.
type Fault struct {
	Fn  string
	Msg string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("runtime fault in `%s`: %s", f.Fn, f.Msg)
}

// Machine is a direct MIR evaluator. Integer values are held as raw uint64
// bits and re-wrapped to their type's width after every operation; signed
// interpretation happens at comparison, division, and print time.
type Machine struct {
	module *mir.Module
	out    io.Writer
}

// New creates a machine for a verified module. All print output goes to
// out.
func New(module *mir.Module, out io.Writer) *Machine {
	return &Machine{module: module, out: out}
}

// Run executes the named function with no arguments and returns its result.
func (m *Machine) Run(entry string) (interface{}, error) {
	fn := m.module.FindFunction(entry)
	if fn == nil {
		return nil, fmt.Errorf("no function `%s` in module", entry)
	}
	return m.call(fn, nil)
}

// ExitCode converts a run result into a process exit code: the low 32 bits
// of an integer result, 0 for anything else.
func ExitCode(result interface{}) int {
	if raw, ok := result.(uint64); ok {
		return int(int32(uint32(raw)))
	}
	return 0
}

func (m *Machine) call(fn *mir.Function, args []interface{}) (interface{}, error) {
	if len(args) != len(fn.Params) {
		return nil, &Fault{Fn: fn.Name, Msg: "argument count mismatch"}
	}

	slots := make([]interface{}, len(fn.Slots))
	for _, slot := range fn.Slots {
		slots[slot.ID] = zeroOf(slot.Type)
	}
	for i, param := range fn.Params {
		slots[param.ID] = args[i]
	}

	regs := make(map[*mir.Value]interface{})

	block := fn.Entry
	for {
		for _, instr := range block.Instrs {
			if err := m.step(fn, instr, slots, regs); err != nil {
				return nil, err
			}
		}

		switch term := block.Terminator.(type) {
		case *mir.Return:
			if term.Value == nil {
				return nil, nil
			}
			return regs[term.Value], nil
		case *mir.Goto:
			block = term.Target
		case *mir.Branch:
			cond, ok := regs[term.Cond].(bool)
			if !ok {
				return nil, &Fault{Fn: fn.Name, Msg: "branch condition is not a bool"}
			}
			if cond {
				block = term.True
			} else {
				block = term.False
			}
		default:
			return nil, &Fault{Fn: fn.Name, Msg: "block " + block.Label + " has no terminator"}
		}
	}
}

func (m *Machine) step(fn *mir.Function, instr mir.Instr, slots []interface{}, regs map[*mir.Value]interface{}) error {
	switch in := instr.(type) {
	case *mir.Const:
		regs[in.Result] = wrapTo(in.Result.Type, in.Value)

	case *mir.Load:
		regs[in.Result] = slots[in.Slot.ID]

	case *mir.Store:
		slots[in.Slot.ID] = regs[in.Value]

	case *mir.UnOp:
		out, err := m.unop(fn, in, regs)
		if err != nil {
			return err
		}
		regs[in.Result] = out

	case *mir.BinOp:
		out, err := m.binop(fn, in, regs)
		if err != nil {
			return err
		}
		regs[in.Result] = out

	case *mir.Call:
		out, err := m.dispatch(fn, in, regs)
		if err != nil {
			return err
		}
		regs[in.Result] = out

	default:
		return &Fault{Fn: fn.Name, Msg: "unknown instruction"}
	}
	return nil
}

func (m *Machine) dispatch(fn *mir.Function, call *mir.Call, regs map[*mir.Value]interface{}) (interface{}, error) {
	args := make([]interface{}, len(call.Args))
	for i, arg := range call.Args {
		args[i] = regs[arg]
	}

	if call.Callee == "print" {
		raw, ok := args[0].(uint64)
		if !ok {
			return nil, &Fault{Fn: fn.Name, Msg: "print expects an s32 argument"}
		}
		fmt.Fprintf(m.out, "%d\n", int32(uint32(raw)))
		return nil, nil
	}

	callee := m.module.FindFunction(call.Callee)
	if callee == nil {
		return nil, &Fault{Fn: fn.Name, Msg: "call to undefined function `" + call.Callee + "`"}
	}
	return m.call(callee, args)
}

func zeroOf(t types.Type) interface{} {
	p, ok := t.(*types.Primitive)
	if !ok {
		return nil
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

// wrapTo normalizes a constant payload to the machine representation of t.
func wrapTo(t types.Type, v interface{}) interface{} {
	raw, ok := v.(uint64)
	if !ok {
		return v
	}
	return maskInt(t, raw)
}

func maskInt(t types.Type, raw uint64) uint64 {
	if width(t) == 32 {
		return uint64(uint32(raw))
	}
	return raw
}

func width(t types.Type) int {
	p, ok := t.(*types.Primitive)
	if !ok {
		return 64
	}
	switch p.Kind {
	case types.S32, types.U32, types.F32:
		return 32
	}
	return 64
}
