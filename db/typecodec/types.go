package typecodec

// Stream tags. IndirectType only appears in a storage slot, never inside an
// encoded type.
const (
	NullType            byte = 0
	BindingType         byte = 1
	BasicType           byte = 2
	PointerType         byte = 3
	ArrayType           byte = 4
	QualifierType       byte = 5
	FunctionType        byte = 6
	ReferenceType       byte = 7
	PointerToMemberType byte = 8
	PackExpansionType   byte = 9
	ProblemType         byte = 10
	IndirectType        byte = 0xFF
)

// Flag bits shared by the composite encoders.
const (
	flagConst    byte = 1 << 0
	flagVolatile byte = 1 << 1
	flagRValue   byte = 1 << 2
	flagVarArgs  byte = 1 << 3
	flagHasSize  byte = 1 << 4
)

// Type is a type expression. The set of implementations is closed.
type Type interface {
	Tag() byte
	isType()
}

// Binding is a type that is itself a named entity, such as a class or a
// typedef.
type Binding struct {
	Entity Entity
}

// BasicKind enumerates the builtin types.
type BasicKind uint8

const (
	Unspecified BasicKind = iota
	Void
	Bool
	Char
	WChar
	Char16
	Char32
	Int
	Float
	Double
	Auto
	NullPtr
)

// Basic modifier bits.
const (
	ModShort    uint16 = 1 << 0
	ModLong     uint16 = 1 << 1
	ModLongLong uint16 = 1 << 2
	ModSigned   uint16 = 1 << 3
	ModUnsigned uint16 = 1 << 4
	ModComplex  uint16 = 1 << 5
)

// Basic is a builtin type with its modifiers.
type Basic struct {
	Kind      BasicKind
	Modifiers uint16
}

// Pointer is a cv-qualified pointer to Target.
type Pointer struct {
	Const, Volatile bool
	Target          Type
}

// Array is an array of Elem. Size is nil for an array of unknown bound.
type Array struct {
	Size *Value
	Elem Type
}

// Qualifier adds cv-qualification to Target.
type Qualifier struct {
	Const, Volatile bool
	Target          Type
}

// Function is a function signature. Const and Volatile qualify the implicit
// object of a member function.
type Function struct {
	Return          Type
	Params          []Type
	Const, Volatile bool
	VarArgs         bool
}

// Reference is an lvalue or rvalue reference to Target.
type Reference struct {
	RValue bool
	Target Type
}

// PointerToMember points to a member of type Target inside Class.
type PointerToMember struct {
	Const, Volatile bool
	Class           Type
	Target          Type
}

// PackExpansion is a parameter-pack expansion of Pattern.
type PackExpansion struct {
	Pattern Type
}

// Problem stands in for a type that could not be determined. ID classifies
// the failure and Arg names what was being resolved.
type Problem struct {
	ID  int16
	Arg string
}

func (*Binding) Tag() byte         { return BindingType }
func (*Basic) Tag() byte           { return BasicType }
func (*Pointer) Tag() byte         { return PointerType }
func (*Array) Tag() byte           { return ArrayType }
func (*Qualifier) Tag() byte       { return QualifierType }
func (*Function) Tag() byte        { return FunctionType }
func (*Reference) Tag() byte       { return ReferenceType }
func (*PointerToMember) Tag() byte { return PointerToMemberType }
func (*PackExpansion) Tag() byte   { return PackExpansionType }
func (*Problem) Tag() byte         { return ProblemType }

func (*Binding) isType()         {}
func (*Basic) isType()           {}
func (*Pointer) isType()         {}
func (*Array) isType()           {}
func (*Qualifier) isType()       {}
func (*Function) isType()        {}
func (*Reference) isType()       {}
func (*PointerToMember) isType() {}
func (*PackExpansion) isType()   {}
func (*Problem) isType()         {}

func cvFlags(c, v bool) byte {
	var f byte
	if c {
		f |= flagConst
	}
	if v {
		f |= flagVolatile
	}
	return f
}
