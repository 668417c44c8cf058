package mir

import (
	"fmt"

	"github.com/rill-lang/rill/internal/types"
)

// Module represents a lowered module (collection of functions in
// declaration order).
type Module struct {
	Functions []*Function
}

// FindFunction returns the function with the given qualified name.
func (m *Module) FindFunction(name string) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// FnState tracks the per-function generation state machine.
type FnState int

const (
	// StateEntry: the signature is emitted and the first block is open.
	StateEntry FnState = iota
	// StateGenerating: instructions and blocks are being emitted.
	StateGenerating
	// StateSealed: every reachable block carries exactly one terminator.
	StateSealed
)

// Function represents a lowered function with a control-flow graph. Name is
// the module-path qualified name (outer::inner::f).
type Function struct {
	Name       string
	Params     []*Slot
	ReturnType types.Type
	Slots      []*Slot
	Blocks     []*BasicBlock
	Entry      *BasicBlock
	State      FnState

	nextValue int
	nextBlock int
}

// Value is a fresh single-assignment result reference. A value is defined
// by exactly one instruction and never reassigned.
type Value struct {
	ID   int
	Type types.Type
}

func (v *Value) String() string { return fmt.Sprintf("v%d", v.ID) }

// Slot is an addressable storage cell backing a mutable source variable
// (let binding, parameter, loop variable). Reads lower to Load, writes to
// Store; merge points need no phi reconciliation.
type Slot struct {
	ID   int
	Name string
	Type types.Type
}

func (s *Slot) String() string { return fmt.Sprintf("s%d", s.ID) }

// BasicBlock is a straight-line instruction sequence ending in exactly one
// terminator.
type BasicBlock struct {
	Label      string
	Instrs     []Instr
	Terminator Terminator
}

// Terminated reports whether the block already ends in a terminator.
func (b *BasicBlock) Terminated() bool { return b.Terminator != nil }

// Instr represents a non-terminating operation.
type Instr interface {
	instrNode()
}

// Terminator represents control flow out of a block.
type Terminator interface {
	terminatorNode()
}

// BinOpKind names a binary instruction.
type BinOpKind string

const (
	OpAdd BinOpKind = "add"
	OpSub BinOpKind = "sub"
	OpMul BinOpKind = "mul"
	OpDiv BinOpKind = "div"
	OpEq  BinOpKind = "eq"
	OpNe  BinOpKind = "ne"
	OpLt  BinOpKind = "lt"
	OpLe  BinOpKind = "le"
	OpGt  BinOpKind = "gt"
	OpGe  BinOpKind = "ge"
)

// UnOpKind names a unary instruction.
type UnOpKind string

const (
	OpNeg UnOpKind = "neg"
	OpNot UnOpKind = "not"
)

// Const materializes a literal into a value. Value holds uint64 raw bits
// for integer types, float64, bool, rune, or string according to
// Result.Type.
type Const struct {
	Result *Value
	Value  interface{}
}

func (*Const) instrNode() {}

// BinOp computes Result = Op(Left, Right).
type BinOp struct {
	Result *Value
	Op     BinOpKind
	Left   *Value
	Right  *Value
}

func (*BinOp) instrNode() {}

// UnOp computes Result = Op(Operand).
type UnOp struct {
	Result  *Value
	Op      UnOpKind
	Operand *Value
}

func (*UnOp) instrNode() {}

// Load reads a slot into a fresh value.
type Load struct {
	Result *Value
	Slot   *Slot
}

func (*Load) instrNode() {}

// Store writes a value into a slot.
type Store struct {
	Slot  *Slot
	Value *Value
}

func (*Store) instrNode() {}

// Call invokes the resolved callee by qualified name. Result is always
// produced at the call site, even for unit-returning callees; unused
// results are simply never loaded.
type Call struct {
	Result *Value
	Callee string
	Args   []*Value
}

func (*Call) instrNode() {}

// Return terminator. Value is nil for unit returns.
type Return struct {
	Value *Value
}

func (*Return) terminatorNode() {}

// Goto terminator (unconditional jump).
type Goto struct {
	Target *BasicBlock
}

func (*Goto) terminatorNode() {}

// Branch terminator (conditional jump).
type Branch struct {
	Cond  *Value
	True  *BasicBlock
	False *BasicBlock
}

func (*Branch) terminatorNode() {}

// InternalError signals a compiler-internal invariant violation during or
// after lowering. It always indicates a bug in an earlier stage, never a
// fault in the program being compiled.
type InternalError struct {
	Fn  string
	Msg string
}

func (e *InternalError) Error() string {
	if e.Fn == "" {
		return "internal codegen error: " + e.Msg
	}
	return fmt.Sprintf("internal codegen error in `%s`: %s", e.Fn, e.Msg)
}
