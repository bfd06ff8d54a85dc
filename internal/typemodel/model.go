// Package typemodel is a synthetic, in-memory implementation of
// typesys.Reflector. It exists so the traversal engine can be exercised and
// embedded without a TypeScript front end: tests build a type graph with the
// Model helpers and hand it to the walker exactly as the checker adapter
// would.
package typemodel

import (
	"fmt"
	"strings"

	"github.com/tsbridge/tsbridge/internal/typesys"
)

// Model owns every type it creates and answers the Reflector capability
// for them. Like the real checker, it interns primitives so structurally
// identical requests return the same Type value.
type Model struct {
	nextID typesys.TypeID

	prims map[typesys.Flags]*T
}

// New creates an empty model.
func New() *Model {
	return &Model{nextID: 1, prims: make(map[typesys.Flags]*T)}
}

// T is the model's only Type implementation. The builder methods below
// populate the fields a given shape needs.
type T struct {
	id    typesys.TypeID
	flags typesys.Flags
	text  string
	sym   *Sym
	lit   any

	members    []typesys.Type // union / intersection
	props      []*Sym
	statics    []*Sym
	callSigs   []typesys.Signature
	ctorSigs   []typesys.Signature
	bases      []typesys.Type
	impls      []typesys.Type
	typeArgs   []typesys.Type
	typeParams []typesys.Type
	aliasTo    typesys.Type
	constraint typesys.Type
	condTrue   typesys.Type
	condFalse  typesys.Type
	apparent   typesys.Type
	indexInfos []typesys.IndexInfo
	isArray    bool
	isTuple    bool
	tupleElems []typesys.TupleElement
	enums      []typesys.EnumMember
}

func (t *T) ID() typesys.TypeID   { return t.id }
func (t *T) Flags() typesys.Flags { return t.flags }
func (t *T) Text() string         { return t.text }
func (t *T) Symbol() typesys.Symbol {
	if t.sym == nil {
		return nil
	}
	return t.sym
}
func (t *T) Members() []typesys.Type { return t.members }
func (t *T) LiteralValue() any       { return t.lit }

// Sym is the model's Symbol implementation.
type Sym struct {
	name   string
	flags  typesys.SymbolFlags
	module string
	doc    string
	typ    typesys.Type

	constVal any
	hasConst bool
}

func (s *Sym) Name() string               { return s.name }
func (s *Sym) Flags() typesys.SymbolFlags { return s.flags }
func (s *Sym) Module() string             { return s.module }
func (s *Sym) Doc() string                { return s.doc }

// Sig is the model's Signature implementation.
type Sig struct {
	params []typesys.Parameter
	ret    typesys.Type
}

func (s *Sig) Parameters() []typesys.Parameter { return s.params }
func (s *Sig) ReturnType() typesys.Type        { return s.ret }

func (m *Model) newType(flags typesys.Flags, text string) *T {
	t := &T{id: m.nextID, flags: flags, text: text}
	m.nextID++
	return t
}

func (m *Model) prim(flags typesys.Flags, text string) *T {
	if t, ok := m.prims[flags]; ok {
		return t
	}
	t := m.newType(flags, text)
	m.prims[flags] = t
	return t
}

// Primitive singletons.

func (m *Model) String() typesys.Type    { return m.prim(typesys.FlagsString, "string") }
func (m *Model) Number() typesys.Type    { return m.prim(typesys.FlagsNumber, "number") }
func (m *Model) Boolean() typesys.Type   { return m.prim(typesys.FlagsBoolean, "boolean") }
func (m *Model) BigInt() typesys.Type    { return m.prim(typesys.FlagsBigInt, "bigint") }
func (m *Model) ESSymbol() typesys.Type  { return m.prim(typesys.FlagsSymbol, "symbol") }
func (m *Model) Null() typesys.Type      { return m.prim(typesys.FlagsNull, "null") }
func (m *Model) Undefined() typesys.Type { return m.prim(typesys.FlagsUndefined, "undefined") }
func (m *Model) Void() typesys.Type      { return m.prim(typesys.FlagsVoid, "void") }
func (m *Model) Any() typesys.Type       { return m.prim(typesys.FlagsAny, "any") }
func (m *Model) Unknown() typesys.Type   { return m.prim(typesys.FlagsUnknown, "unknown") }
func (m *Model) Never() typesys.Type     { return m.prim(typesys.FlagsNever, "never") }

// Literals.

func (m *Model) StringLit(v string) typesys.Type {
	t := m.newType(typesys.FlagsStringLiteral, fmt.Sprintf("%q", v))
	t.lit = v
	return t
}

func (m *Model) NumberLit(v float64) typesys.Type {
	t := m.newType(typesys.FlagsNumberLiteral, fmt.Sprintf("%v", v))
	t.lit = v
	return t
}

func (m *Model) BoolLit(v bool) typesys.Type {
	t := m.newType(typesys.FlagsBooleanLiteral, fmt.Sprintf("%v", v))
	t.lit = v
	return t
}

// Composite constructors.

func (m *Model) Union(members ...typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsUnion, renderMembers(members, " | "))
	t.members = members
	return t
}

func (m *Model) Intersection(members ...typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsIntersection, renderMembers(members, " & "))
	t.members = members
	return t
}

func (m *Model) ArrayOf(elem typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsObject, elem.Text()+"[]")
	t.isArray = true
	t.typeArgs = []typesys.Type{elem}
	return t
}

// TupleOf builds a fixed tuple; use TupleVariadic for rest tails.
func (m *Model) TupleOf(elems ...typesys.Type) typesys.Type {
	infos := make([]typesys.TupleElement, len(elems))
	for i, e := range elems {
		infos[i] = typesys.TupleElement{Type: e}
	}
	return m.Tuple(infos)
}

// Tuple builds a tuple from explicit element infos.
func (m *Model) Tuple(elems []typesys.TupleElement) typesys.Type {
	texts := make([]string, len(elems))
	for i, e := range elems {
		texts[i] = e.Type.Text()
		if e.Rest {
			texts[i] = "..." + texts[i] + "[]"
		}
	}
	t := m.newType(typesys.FlagsObject, "["+strings.Join(texts, ", ")+"]")
	t.isTuple = true
	t.tupleElems = elems
	return t
}

// container builds a well-known parameterized native type like Promise<T>.
func (m *Model) container(name string, args ...typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsObject, name+"<"+renderMembers(args, ", ")+">")
	t.sym = &Sym{name: name}
	t.typeArgs = args
	return t
}

func (m *Model) Promise(inner typesys.Type) typesys.Type { return m.container("Promise", inner) }
func (m *Model) SetOf(elem typesys.Type) typesys.Type    { return m.container("Set", elem) }
func (m *Model) MapOf(k, v typesys.Type) typesys.Type    { return m.container("Map", k, v) }
func (m *Model) RecordOf(k, v typesys.Type) typesys.Type { return m.container("Record", k, v) }

// Native builds a zero-argument platform type recognized only by name,
// e.g. Buffer, URL, Generator. Used to exercise the feature catalog.
func (m *Model) Native(name string) typesys.Type {
	t := m.newType(typesys.FlagsObject, name)
	t.sym = &Sym{name: name}
	return t
}

// Enum builds an enumerated type with constant-folded member values.
func (m *Model) Enum(name string, members ...typesys.EnumMember) typesys.Type {
	t := m.newType(typesys.FlagsEnum, name)
	t.sym = &Sym{name: name}
	t.enums = members
	return t
}

// Alias wraps target behind a named indirection, like `type Name = target`.
func (m *Model) Alias(name string, target typesys.Type) typesys.Type {
	t := m.newType(target.Flags(), name)
	t.sym = &Sym{name: name}
	t.aliasTo = target
	return t
}

// TypeParam declares a generic parameter with an optional constraint.
func (m *Model) TypeParam(name string, constraint typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsTypeParameter, name)
	t.sym = &Sym{name: name}
	t.constraint = constraint
	return t
}

// Conditional builds a conditional type that resolves to either branch.
func (m *Model) Conditional(text string, whenTrue, whenFalse typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsConditional, text)
	t.condTrue = whenTrue
	t.condFalse = whenFalse
	return t
}

// IndexedAccess builds an indexed-access type whose apparent member type is
// already known.
func (m *Model) IndexedAccess(text string, apparent typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsIndexedAccess, text)
	t.apparent = apparent
	return t
}

// Func builds a plain function type. The symbol carries the checker's
// internal "__function" name so the walker treats it as anonymous.
func (m *Model) Func(params []typesys.Parameter, ret typesys.Type) typesys.Type {
	t := m.newType(typesys.FlagsObject, renderSignature(params, ret))
	t.sym = &Sym{name: "__function"}
	t.callSigs = []typesys.Signature{&Sig{params: params, ret: ret}}
	return t
}

// NewSignature builds a standalone signature for constructors.
func NewSignature(params []typesys.Parameter, ret typesys.Type) typesys.Signature {
	return &Sig{params: params, ret: ret}
}

// Object starts a nominal or anonymous object type. Pass name "" for an
// anonymous shape. The returned builder mutates the same type, so builders
// may reference each other freely, including cyclically.
func (m *Model) Object(name, module string) *ObjectBuilder {
	t := m.newType(typesys.FlagsObject, name)
	if name != "" {
		t.sym = &Sym{name: name, module: module}
	} else {
		t.text = "__object"
	}
	return &ObjectBuilder{model: m, t: t}
}

// ObjectBuilder accumulates members of a class or interface type.
type ObjectBuilder struct {
	model *Model
	t     *T
}

// Type returns the underlying type; usable before the builder is complete,
// which is how cyclic graphs are constructed.
func (b *ObjectBuilder) Type() typesys.Type { return b.t }

// Doc attaches a doc comment to the declaring symbol.
func (b *ObjectBuilder) Doc(doc string) *ObjectBuilder {
	if b.t.sym != nil {
		b.t.sym.doc = doc
	}
	return b
}

// Field adds an instance property.
func (b *ObjectBuilder) Field(name string, typ typesys.Type, flags typesys.SymbolFlags) *ObjectBuilder {
	b.t.props = append(b.t.props, &Sym{name: name, flags: flags, typ: typ})
	return b
}

// Static adds a static property.
func (b *ObjectBuilder) Static(name string, typ typesys.Type, flags typesys.SymbolFlags) *ObjectBuilder {
	b.t.statics = append(b.t.statics, &Sym{name: name, flags: flags | typesys.SymbolStatic, typ: typ})
	return b
}

// Method adds an instance method with the given signature.
func (b *ObjectBuilder) Method(name string, params []typesys.Parameter, ret typesys.Type, flags typesys.SymbolFlags) *ObjectBuilder {
	fn := b.model.Func(params, ret)
	b.t.props = append(b.t.props, &Sym{name: name, flags: flags | typesys.SymbolMethod, typ: fn})
	return b
}

// CallSignature adds a call signature to the object itself, producing a
// hybrid callable-object shape.
func (b *ObjectBuilder) CallSignature(params []typesys.Parameter, ret typesys.Type) *ObjectBuilder {
	b.t.callSigs = append(b.t.callSigs, &Sig{params: params, ret: ret})
	return b
}

// Ctor declares a construct signature, making the type class-like.
func (b *ObjectBuilder) Ctor(params []typesys.Parameter) *ObjectBuilder {
	b.t.ctorSigs = append(b.t.ctorSigs, &Sig{params: params, ret: b.t})
	return b
}

// Base appends to the extends chain.
func (b *ObjectBuilder) Base(base typesys.Type) *ObjectBuilder {
	b.t.bases = append(b.t.bases, base)
	return b
}

// Implements appends to the implements list.
func (b *ObjectBuilder) Implements(iface typesys.Type) *ObjectBuilder {
	b.t.impls = append(b.t.impls, iface)
	return b
}

// Index declares an index signature.
func (b *ObjectBuilder) Index(key, value typesys.Type) *ObjectBuilder {
	b.t.indexInfos = append(b.t.indexInfos, typesys.IndexInfo{Key: key, Value: value})
	return b
}

// TypeParams declares the generic parameters of the declaration.
func (b *ObjectBuilder) TypeParams(params ...typesys.Type) *ObjectBuilder {
	b.t.typeParams = params
	return b
}

// Instantiate creates a generic instantiation of a declaration. Members stay
// on the declaration; the walker resolves parameter references through its
// substitution map, exactly as it does against the checker.
func (m *Model) Instantiate(decl typesys.Type, args ...typesys.Type) typesys.Type {
	d := decl.(*T)
	t := m.newType(typesys.FlagsObject, d.text+"<"+renderMembers(args, ", ")+">")
	t.sym = d.sym
	t.props = d.props
	t.statics = d.statics
	t.callSigs = d.callSigs
	t.ctorSigs = d.ctorSigs
	t.bases = d.bases
	t.impls = d.impls
	t.indexInfos = d.indexInfos
	t.typeParams = d.typeParams
	t.typeArgs = args
	return t
}

// Reflector capability.

var _ typesys.Reflector = (*Model)(nil)

func (m *Model) PropertiesOf(t typesys.Type) []typesys.Symbol { return symbols(t.(*T).props) }
func (m *Model) StaticsOf(t typesys.Type) []typesys.Symbol    { return symbols(t.(*T).statics) }

func (m *Model) TypeOf(s typesys.Symbol) typesys.Type { return s.(*Sym).typ }

func (m *Model) Signatures(t typesys.Type, kind typesys.SignatureKind) []typesys.Signature {
	if kind == typesys.SignatureConstruct {
		return t.(*T).ctorSigs
	}
	return t.(*T).callSigs
}

func (m *Model) BaseTypes(t typesys.Type) []typesys.Type      { return t.(*T).bases }
func (m *Model) Implements(t typesys.Type) []typesys.Type     { return t.(*T).impls }
func (m *Model) TypeArguments(t typesys.Type) []typesys.Type  { return t.(*T).typeArgs }
func (m *Model) TypeParameters(t typesys.Type) []typesys.Type { return t.(*T).typeParams }
func (m *Model) AliasTarget(t typesys.Type) typesys.Type      { return t.(*T).aliasTo }
func (m *Model) BaseConstraint(t typesys.Type) typesys.Type   { return t.(*T).constraint }

func (m *Model) ConditionalBranches(t typesys.Type) (typesys.Type, typesys.Type, bool) {
	tt := t.(*T)
	if tt.condTrue == nil || tt.condFalse == nil {
		return nil, nil, false
	}
	return tt.condTrue, tt.condFalse, true
}

func (m *Model) ApparentType(t typesys.Type) typesys.Type {
	if ap := t.(*T).apparent; ap != nil {
		return ap
	}
	return t
}

func (m *Model) IndexInfos(t typesys.Type) []typesys.IndexInfo { return t.(*T).indexInfos }
func (m *Model) IsArray(t typesys.Type) bool                   { return t.(*T).isArray }
func (m *Model) IsTuple(t typesys.Type) bool                   { return t.(*T).isTuple }

func (m *Model) TupleElements(t typesys.Type) []typesys.TupleElement { return t.(*T).tupleElems }
func (m *Model) EnumMembers(t typesys.Type) []typesys.EnumMember     { return t.(*T).enums }

func (m *Model) ConstantValue(s typesys.Symbol) (any, bool) {
	sym := s.(*Sym)
	return sym.constVal, sym.hasConst
}

// Param is a convenience constructor for signature parameters.
func Param(name string, typ typesys.Type) typesys.Parameter {
	return typesys.Parameter{Name: name, Type: typ}
}

// OptParam builds an optional parameter.
func OptParam(name string, typ typesys.Type) typesys.Parameter {
	return typesys.Parameter{Name: name, Type: typ, Optional: true}
}

func symbols(syms []*Sym) []typesys.Symbol {
	if len(syms) == 0 {
		return nil
	}
	out := make([]typesys.Symbol, len(syms))
	for i, s := range syms {
		out[i] = s
	}
	return out
}

func renderMembers(members []typesys.Type, sep string) string {
	texts := make([]string, len(members))
	for i, m := range members {
		texts[i] = m.Text()
	}
	return strings.Join(texts, sep)
}

func renderSignature(params []typesys.Parameter, ret typesys.Type) string {
	texts := make([]string, len(params))
	for i, p := range params {
		texts[i] = p.Name + ": " + p.Type.Text()
	}
	retText := "void"
	if ret != nil {
		retText = ret.Text()
	}
	return "(" + strings.Join(texts, ", ") + ") => " + retText
}
