package ast

import (
	"github.com/pattyshack/gt/parseutil"
)

type Type interface {
	Node
	isTypeExpr()

	String() string

	Equals(Type) bool
}

type isType struct{}

func (isType) isTypeExpr() {}

func IsErrorType(t Type) bool {
	_, ok := t.(ErrorType)
	return ok
}

// Internal use only.  Used by type checker to indicate an definition with
// unspecified/inferred type failed type checking.
type ErrorType struct {
	isType
	parseutil.StartEndPos
}

func NewErrorType(pos parseutil.StartEndPos) ErrorType {
	return ErrorType{
		StartEndPos: pos,
	}
}

func (t ErrorType) Walk(visitor Visitor) {
	visitor.Enter(t)
	visitor.Exit(t)
}

func (ErrorType) String() string {
	return "ErrorType"
}

func (ErrorType) Equals(Type) bool {
	return false
}

type ScalarTypeKind string

const (
	Felt = ScalarTypeKind("felt")
	I1   = ScalarTypeKind("i1")

	I8   = ScalarTypeKind("i8")
	I16  = ScalarTypeKind("i16")
	I32  = ScalarTypeKind("i32")
	I64  = ScalarTypeKind("i64")
	I128 = ScalarTypeKind("i128")

	U8   = ScalarTypeKind("u8")
	U16  = ScalarTypeKind("u16")
	U32  = ScalarTypeKind("u32")
	U64  = ScalarTypeKind("u64")
	U128 = ScalarTypeKind("u128")
	U256 = ScalarTypeKind("u256")

	// A word is four felts.
	Word = ScalarTypeKind("word")

	Ptr = ScalarTypeKind("ptr")
)

type ScalarType struct {
	isType
	parseutil.StartEndPos

	Kind ScalarTypeKind
}

var _ Type = ScalarType{}
var _ Validator = ScalarType{}

func NewScalarType(kind ScalarTypeKind, pos parseutil.StartEndPos) ScalarType {
	return ScalarType{
		StartEndPos: pos,
		Kind:        kind,
	}
}

func (scalar ScalarType) Walk(visitor Visitor) {
	visitor.Enter(scalar)
	visitor.Exit(scalar)
}

func (scalar ScalarType) Validate(emitter *parseutil.Emitter) {
	if !IsScalarTypeKind(scalar.Kind) {
		emitter.Emit(scalar.Loc(), "unexpected scalar type (%s)", scalar.Kind)
	}
}

func (scalar ScalarType) String() string {
	return string(scalar.Kind)
}

func (scalar ScalarType) Equals(other Type) bool {
	otherType, ok := other.(ScalarType)
	if !ok {
		return false
	}

	return scalar.Kind == otherType.Kind
}

func IsScalarTypeKind(kind ScalarTypeKind) bool {
	switch kind {
	case Felt, I1,
		I8, I16, I32, I64, I128,
		U8, U16, U32, U64, U128, U256,
		Word, Ptr:
		return true
	}
	return false
}

func IsBoolType(t Type) bool {
	scalar, ok := t.(ScalarType)
	return ok && scalar.Kind == I1
}

// Felts and fixed width integers.
func IsNumberType(t Type) bool {
	scalar, ok := t.(ScalarType)
	if !ok {
		return false
	}

	switch scalar.Kind {
	case Felt,
		I8, I16, I32, I64, I128,
		U8, U16, U32, U64, U128, U256:
		return true
	}
	return false
}

func IsSignedIntType(t Type) bool {
	scalar, ok := t.(ScalarType)
	if !ok {
		return false
	}

	switch scalar.Kind {
	case I8, I16, I32, I64, I128:
		return true
	}
	return false
}

// Types which support bitwise and/or/xor/not.
func IsBitwiseType(t Type) bool {
	return IsBoolType(t) || (IsNumberType(t) && !t.Equals(ScalarType{Kind: Felt}))
}
