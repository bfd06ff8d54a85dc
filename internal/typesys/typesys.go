// Package typesys abstracts the static-analysis front end behind a
// capability interface. The traversal engine depends only on this package;
// internal/tscheck adapts the typescript-go checker to it, and
// internal/typemodel provides a synthetic implementation for embedders and
// tests that have no TypeScript front end.
package typesys

// TypeID is the front end's stable identity for one type. Structurally
// identical types share an ID.
type TypeID uint64

// Flags classifies a type, mirroring checker type flags. A type carries
// exactly one primary flag plus, for literals, the matching literal flag.
type Flags uint32

const (
	FlagsAny Flags = 1 << iota
	FlagsUnknown
	FlagsNever
	FlagsVoid
	FlagsNull
	FlagsUndefined
	FlagsString
	FlagsNumber
	FlagsBoolean
	FlagsBigInt
	FlagsSymbol
	FlagsStringLiteral
	FlagsNumberLiteral
	FlagsBooleanLiteral
	FlagsBigIntLiteral
	FlagsEnumLiteral
	FlagsEnum
	FlagsUnion
	FlagsIntersection
	FlagsObject
	FlagsTypeParameter
	FlagsConditional
	FlagsIndexedAccess
)

// FlagsLiteral matches any literal kind.
const FlagsLiteral = FlagsStringLiteral | FlagsNumberLiteral | FlagsBooleanLiteral | FlagsBigIntLiteral

// FlagsNullish matches the two nullish primitives.
const FlagsNullish = FlagsNull | FlagsUndefined

// SymbolFlags classifies a symbol's declaration.
type SymbolFlags uint32

const (
	SymbolOptional SymbolFlags = 1 << iota
	SymbolStatic
	SymbolPrivate // declared `private` / `#name`
	SymbolReadonly
	SymbolMethod
)

// SignatureKind selects call or construct signatures.
type SignatureKind int

const (
	SignatureCall SignatureKind = iota
	SignatureConstruct
)

// Type is one type in the front end's type graph.
type Type interface {
	// ID returns the front end's identity for this type.
	ID() TypeID
	// Flags returns the type's classification.
	Flags() Flags
	// Text returns a canonical string rendering, stable within one pass.
	// Combined with symbol identity it disambiguates distinct generic
	// instantiations that share a declaration.
	Text() string
	// Symbol returns the declaring symbol, or nil for anonymous types.
	Symbol() Symbol
	// Members returns union or intersection members, in source order where
	// the front end can recover it. Nil for other kinds.
	Members() []Type
	// LiteralValue returns the concrete value of a literal type.
	LiteralValue() any
}

// Symbol is a named declaration.
type Symbol interface {
	Name() string
	Flags() SymbolFlags
	// Module returns the path of the module declaring the symbol, or ""
	// when unknown (synthetic and global symbols).
	Module() string
	// Doc returns the declaration's doc comment, or "".
	Doc() string
}

// Signature is one call or construct signature.
type Signature interface {
	Parameters() []Parameter
	ReturnType() Type
}

// Parameter is one signature parameter.
type Parameter struct {
	Name     string
	Type     Type
	Optional bool
	Rest     bool
	// Default is the statically determinable default constant, if any.
	Default    any
	HasDefault bool
}

// IndexInfo is one index signature on an object type.
type IndexInfo struct {
	Key   Type
	Value Type
}

// TupleElement is one positional element of a tuple type.
type TupleElement struct {
	Type     Type
	Optional bool
	Rest     bool
}

// EnumMember is one enumerated key with its constant-folded value.
type EnumMember struct {
	Name  string
	Value any
}

// Reflector is the reflection capability the engine consumes: symbol and
// member enumeration, signatures, base types, type arguments, alias
// resolution and constant-value evaluation. Implementations need no
// knowledge of the traversal; they only answer questions about types.
type Reflector interface {
	// PropertiesOf enumerates instance properties of an object type.
	PropertiesOf(t Type) []Symbol
	// StaticsOf enumerates static properties of a class type.
	StaticsOf(t Type) []Symbol
	// TypeOf resolves a symbol to its declared type.
	TypeOf(s Symbol) Type
	// Signatures returns the call or construct signatures of a type.
	Signatures(t Type, kind SignatureKind) []Signature
	// BaseTypes returns the extends chain of a class or interface.
	BaseTypes(t Type) []Type
	// Implements returns the separately declared implements list of a class.
	Implements(t Type) []Type
	// TypeArguments returns the supplied generic arguments of an
	// instantiated type, nil otherwise.
	TypeArguments(t Type) []Type
	// TypeParameters returns the declared generic parameters of the type's
	// declaration, nil for non-generic types.
	TypeParameters(t Type) []Type
	// AliasTarget unwraps a type alias one step; nil when t is no alias.
	AliasTarget(t Type) Type
	// BaseConstraint returns the declared constraint of a type parameter,
	// or nil.
	BaseConstraint(t Type) Type
	// ConditionalBranches returns both branches of a conditional type.
	// ok is false when t is not conditional.
	ConditionalBranches(t Type) (whenTrue, whenFalse Type, ok bool)
	// ApparentType returns the effective member type of an indexed-access
	// type, or t itself when it has no distinct apparent type.
	ApparentType(t Type) Type
	// IndexInfos returns the index signatures declared on an object type.
	IndexInfos(t Type) []IndexInfo
	// IsArray reports whether t is a homogeneous indexable.
	IsArray(t Type) bool
	// IsTuple reports whether t is a fixed-arity heterogeneous indexable.
	IsTuple(t Type) bool
	// TupleElements returns the positional elements of a tuple type.
	TupleElements(t Type) []TupleElement
	// EnumMembers returns the ordered members of an enumerated type with
	// their constant-folded values.
	EnumMembers(t Type) []EnumMember
	// ConstantValue evaluates a symbol's statically known constant.
	ConstantValue(s Symbol) (any, bool)
}
