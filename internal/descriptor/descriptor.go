// Package descriptor defines the serializable type-descriptor graph produced
// by traversal. A descriptor describes the shape of one type; references
// between descriptors are uid.IDs, which makes the graph safe for cycles.
package descriptor

import "github.com/tsbridge/tsbridge/internal/uid"

// Kind identifies the variant of a descriptor.
type Kind string

const (
	KindPrimitive    Kind = "primitive"
	KindLiteral      Kind = "literal"
	KindClass        Kind = "class"
	KindInterface    Kind = "interface"
	KindFunction     Kind = "function"
	KindUnion        Kind = "union"
	KindIntersection Kind = "intersection"
	KindArray        Kind = "array"
	KindTuple        Kind = "tuple"
	KindSet          Kind = "set"
	KindMap          Kind = "map"
	KindRecord       Kind = "record"
	KindEnum         Kind = "enum"
	KindFuture       Kind = "future"
)

// Desc is the tagged descriptor variant. Only the fields belonging to its
// Kind are populated; everything else stays zero.
type Desc struct {
	Kind Kind
	UID  uid.ID

	// Name is the display name, when the type has one.
	Name string
	// Doc is the doc comment attached to the declaration, if any.
	Doc string

	// Primitive names the primitive for KindPrimitive: "string", "number",
	// "boolean", "bigint", "symbol", "null", "undefined", "void", "object".
	Primitive string

	// LiteralKind and LiteralValue describe KindLiteral.
	LiteralKind  string
	LiteralValue any

	// Class / Interface payload.
	Fields        []Field
	Methods       []Method
	Bases         []uid.ID // Class only; interfaces never inherit
	Ctor          []Param  // constructor-argument schema, Class only
	Index         *IndexSignature
	Substitutions []Substitution // generic type-argument substitutions
	Module        string         // source module of the declaration
	System        bool           // true for pre-defined system descriptors

	// Function payload.
	Params []Param
	Return uid.ID

	// Union / Intersection payload: ordered member refs.
	Members []uid.ID

	// Array / Set element, Future inner value.
	Element uid.ID

	// Map / Record payload. Record additionally references the backing Map
	// descriptor shared with structurally equivalent index-signature objects.
	Key        uid.ID
	Value      uid.ID
	BackingMap uid.ID

	// Tuple payload: ordered element refs.
	Elements []uid.ID

	// Enum payload: ordered keys and their constant values, index-aligned.
	EnumKeys   []string
	EnumValues []any
}

// Field is one data member of a class or interface.
type Field struct {
	Name     string
	Type     uid.ID
	Static   bool
	Optional bool
	Private  bool
}

// Method is one callable member of a class or interface. Function refers to
// a KindFunction descriptor carrying the signature.
type Method struct {
	Name     string
	Function uid.ID
	Static   bool
	Private  bool
}

// Param is one parameter of a function or constructor.
type Param struct {
	Name     string
	Type     uid.ID
	Optional bool
	Rest     bool
	// Default holds the statically determinable default constant, when any.
	Default    any
	HasDefault bool
}

// IndexSignature describes a dynamic-key member like `[k: string]: T`.
// BackingMap references the Map descriptor shared with Record<K,V> of the
// same key/value pair, so the two shapes converge on one identity.
type IndexSignature struct {
	Key        uid.ID
	Value      uid.ID
	BackingMap uid.ID
}

// Substitution records one resolved generic type argument of a class.
type Substitution struct {
	Param string
	Type  uid.ID
}

// Record is one arena slot: a UID plus either a finalized descriptor or a
// placeholder marker. Placeholders exist only while a traversal is in
// flight; they are installed before recursing into members, which is what
// terminates self-referential type graphs.
type Record struct {
	UID         uid.ID
	Placeholder bool
	Desc        *Desc
}

// ScopeEntry is one program value exposed to a remote call.
type ScopeEntry struct {
	// Name is the identifier the remote side binds the value to.
	Name string
	// Type references the value's descriptor.
	Type uid.ID
	// Path is the accessor path from the enclosing module scope to the
	// value, e.g. ["config", "db", "host"].
	Path []string
	// Explicit marks values passed directly at the call site, as opposed
	// to types discovered transitively during traversal.
	Explicit bool
	// Expr is the original source expression at the call site, when the
	// entry came from an explicit argument.
	Expr string
}

// CallSite is one program point where a bridged invocation occurs.
type CallSite struct {
	ID      int
	Doc     string
	Output  uid.ID
	Entries []ScopeEntry
}
