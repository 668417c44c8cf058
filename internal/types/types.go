package types

import "strings"

// Type represents a type in the Rill type system.
type Type interface {
	String() string
	// IsType is a marker method to ensure type safety.
	IsType()
}

// PrimitiveKind represents the kind of a primitive type.
type PrimitiveKind string

const (
	Bool   PrimitiveKind = "bool"
	S32    PrimitiveKind = "s32"
	S64    PrimitiveKind = "s64"
	U32    PrimitiveKind = "u32"
	U64    PrimitiveKind = "u64"
	F32    PrimitiveKind = "f32"
	F64    PrimitiveKind = "f64"
	Char   PrimitiveKind = "char"
	String PrimitiveKind = "string"
	// Unit is the type of functions without a declared return type. It is
	// not declarable in source.
	Unit PrimitiveKind = "unit"
)

// Primitive represents a primitive type.
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) String() string { return string(p.Kind) }
func (p *Primitive) IsType()        {}

// Common primitive instances. Types compare structurally, but sharing the
// instances keeps side tables compact.
var (
	TypeBool   = &Primitive{Kind: Bool}
	TypeS32    = &Primitive{Kind: S32}
	TypeS64    = &Primitive{Kind: S64}
	TypeU32    = &Primitive{Kind: U32}
	TypeU64    = &Primitive{Kind: U64}
	TypeF32    = &Primitive{Kind: F32}
	TypeF64    = &Primitive{Kind: F64}
	TypeChar   = &Primitive{Kind: Char}
	TypeString = &Primitive{Kind: String}
	TypeUnit   = &Primitive{Kind: Unit}
)

// Function represents a function signature.
type Function struct {
	Params []Type
	Return Type
}

func (f *Function) String() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.String())
	}
	return "fn(" + strings.Join(params, ", ") + ") -> " + f.Return.String()
}
func (f *Function) IsType() {}

// Equal reports structural type equality.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *Function:
		bt, ok := b.(*Function)
		if !ok || len(at.Params) != len(bt.Params) {
			return false
		}
		for i := range at.Params {
			if !Equal(at.Params[i], bt.Params[i]) {
				return false
			}
		}
		return Equal(at.Return, bt.Return)
	default:
		return false
	}
}

// IsNumeric reports whether t supports arithmetic and ordering.
func IsNumeric(t Type) bool {
	p, ok := t.(*Primitive)
	if !ok {
		return false
	}
	switch p.Kind {
	case S32, S64, U32, U64, F32, F64:
		return true
	}
	return false
}

// IsInteger reports whether t is a fixed-width integer type.
func IsInteger(t Type) bool {
	p, ok := t.(*Primitive)
	if !ok {
		return false
	}
	switch p.Kind {
	case S32, S64, U32, U64:
		return true
	}
	return false
}

// IsSigned reports whether t is a signed integer type.
func IsSigned(t Type) bool {
	p, ok := t.(*Primitive)
	if !ok {
		return false
	}
	return p.Kind == S32 || p.Kind == S64
}

// IsFloat reports whether t is a floating-point type.
func IsFloat(t Type) bool {
	p, ok := t.(*Primitive)
	if !ok {
		return false
	}
	return p.Kind == F32 || p.Kind == F64
}

// Lookup maps a source type name to its primitive. The second result is
// false for unknown names; unit is deliberately not nameable.
func Lookup(name string) (*Primitive, bool) {
	switch PrimitiveKind(name) {
	case Bool:
		return TypeBool, true
	case S32:
		return TypeS32, true
	case S64:
		return TypeS64, true
	case U32:
		return TypeU32, true
	case U64:
		return TypeU64, true
	case F32:
		return TypeF32, true
	case F64:
		return TypeF64, true
	case Char:
		return TypeChar, true
	case String:
		return TypeString, true
	}
	return nil, false
}
