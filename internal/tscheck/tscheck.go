// Package tscheck adapts the typescript-go type checker to the typesys
// reflection capability consumed by the analyzer. One Front wraps one
// checker instance; wrapped types are interned by checker TypeId so
// interface equality follows type identity.
package tscheck

import (
	"strconv"
	"strings"

	"github.com/microsoft/typescript-go/shim/ast"
	shimchecker "github.com/microsoft/typescript-go/shim/checker"
	"github.com/tsbridge/tsbridge/internal/typesys"
)

// Front is the checker-backed typesys.Reflector.
type Front struct {
	checker *shimchecker.Checker
	types   map[shimchecker.TypeId]*ctype
}

var _ typesys.Reflector = (*Front)(nil)

// New wraps a type checker. The Front holds checker state and must be
// released with the checker that produced it.
func New(checker *shimchecker.Checker) *Front {
	return &Front{
		checker: checker,
		types:   make(map[shimchecker.TypeId]*ctype),
	}
}

// FromTypeNode resolves a type annotation node, e.g. the type argument of a
// bridge call.
func (f *Front) FromTypeNode(node *ast.Node) typesys.Type {
	return f.wrap(shimchecker.Checker_getTypeFromTypeNode(f.checker, node))
}

// TypeOfValueAt resolves the declared type of the value named by an
// identifier or property access node.
func (f *Front) TypeOfValueAt(node *ast.Node) typesys.Type {
	sym := f.checker.GetSymbolAtLocation(node)
	if sym == nil {
		return nil
	}
	return f.wrap(shimchecker.Checker_getTypeOfSymbol(f.checker, sym))
}

// DeclaredTypeAt resolves the declared type of the class, interface, enum
// or alias named by node.
func (f *Front) DeclaredTypeAt(node *ast.Node) typesys.Type {
	sym := f.checker.GetSymbolAtLocation(node)
	if sym == nil {
		return nil
	}
	return f.wrap(shimchecker.Checker_getDeclaredTypeOfSymbol(f.checker, sym))
}

func (f *Front) wrap(t *shimchecker.Type) typesys.Type {
	if t == nil {
		return nil
	}
	if w, ok := f.types[t.Id()]; ok {
		return w
	}
	w := &ctype{f: f, t: t}
	f.types[t.Id()] = w
	return w
}

func unwrap(t typesys.Type) *shimchecker.Type {
	if t == nil {
		return nil
	}
	return t.(*ctype).t
}

// flagTable maps checker type flags onto typesys flags bit by bit. Literal
// and enum flags are handled separately in convertFlags.
var flagTable = []struct {
	shim shimchecker.TypeFlags
	ours typesys.Flags
}{
	{shimchecker.TypeFlagsAny, typesys.FlagsAny},
	{shimchecker.TypeFlagsUnknown, typesys.FlagsUnknown},
	{shimchecker.TypeFlagsNever, typesys.FlagsNever},
	{shimchecker.TypeFlagsVoid, typesys.FlagsVoid},
	{shimchecker.TypeFlagsNull, typesys.FlagsNull},
	{shimchecker.TypeFlagsUndefined, typesys.FlagsUndefined},
	{shimchecker.TypeFlagsString, typesys.FlagsString},
	{shimchecker.TypeFlagsNumber, typesys.FlagsNumber},
	{shimchecker.TypeFlagsBoolean, typesys.FlagsBoolean},
	{shimchecker.TypeFlagsBigInt, typesys.FlagsBigInt},
	{shimchecker.TypeFlagsESSymbol, typesys.FlagsSymbol},
	{shimchecker.TypeFlagsStringLiteral, typesys.FlagsStringLiteral},
	{shimchecker.TypeFlagsNumberLiteral, typesys.FlagsNumberLiteral},
	{shimchecker.TypeFlagsBooleanLiteral, typesys.FlagsBooleanLiteral},
	{shimchecker.TypeFlagsBigIntLiteral, typesys.FlagsBigIntLiteral},
	{shimchecker.TypeFlagsUnion, typesys.FlagsUnion},
	{shimchecker.TypeFlagsIntersection, typesys.FlagsIntersection},
	{shimchecker.TypeFlagsObject, typesys.FlagsObject},
	{shimchecker.TypeFlagsTypeParameter, typesys.FlagsTypeParameter},
	{shimchecker.TypeFlagsConditional, typesys.FlagsConditional},
	{shimchecker.TypeFlagsIndexedAccess, typesys.FlagsIndexedAccess},
	// keyof T resolves the same way as an indexed access: through its
	// constraint.
	{shimchecker.TypeFlagsIndex, typesys.FlagsIndexedAccess},
}

func convertFlags(tf shimchecker.TypeFlags) typesys.Flags {
	// The declared type of an enum is a union of its member literals; a
	// single member reached directly is an enum literal.
	if tf&shimchecker.TypeFlagsEnumLiteral != 0 {
		if tf&shimchecker.TypeFlagsUnion != 0 {
			return typesys.FlagsEnum
		}
		out := typesys.FlagsEnumLiteral
		if tf&shimchecker.TypeFlagsStringLiteral != 0 {
			out |= typesys.FlagsStringLiteral
		} else {
			out |= typesys.FlagsNumberLiteral
		}
		return out
	}
	var out typesys.Flags
	for _, e := range flagTable {
		if tf&e.shim != 0 {
			out |= e.ours
		}
	}
	return out
}

// ctype wraps one checker type.
type ctype struct {
	f *Front
	t *shimchecker.Type
}

func (x *ctype) ID() typesys.TypeID { return typesys.TypeID(x.t.Id()) }

func (x *ctype) Flags() typesys.Flags { return convertFlags(x.t.Flags()) }

// Text renders a cache-key-stable name: the effective symbol name plus the
// rendered type arguments of an instantiated reference. Renderings are
// depth-bounded so cyclic instantiations stay finite.
func (x *ctype) Text() string { return x.text(0) }

func (x *ctype) text(depth int) string {
	name := ""
	if sym := x.effectiveSymbol(); sym != nil {
		name = symbolName(sym)
	}
	if depth > 4 || name == "" || internalName(name) {
		return "#" + strconv.FormatUint(uint64(x.t.Id()), 10)
	}
	args := x.rawTypeArguments()
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = x.f.wrap(a).(*ctype).text(depth + 1)
	}
	return name + "<" + strings.Join(parts, ",") + ">"
}

// effectiveSymbol prefers the type's own symbol; anonymous types declared
// through a type alias borrow the alias symbol for naming.
func (x *ctype) effectiveSymbol() *ast.Symbol {
	if sym := x.t.Symbol(); sym != nil && !internalName(sym.Name) {
		return sym
	}
	if alias := shimchecker.Type_alias(x.t); alias != nil {
		if aliasSym := alias.Symbol(); aliasSym != nil && aliasSym.Name != "" {
			return aliasSym
		}
	}
	return x.t.Symbol()
}

func (x *ctype) Symbol() typesys.Symbol {
	sym := x.effectiveSymbol()
	if sym == nil {
		return nil
	}
	return &csymbol{f: x.f, sym: sym}
}

func (x *ctype) Members() []typesys.Type {
	if x.t.Flags()&(shimchecker.TypeFlagsUnion|shimchecker.TypeFlagsIntersection) == 0 {
		return nil
	}
	members := x.t.Types()
	out := make([]typesys.Type, len(members))
	for i, m := range members {
		out[i] = x.f.wrap(m)
	}
	return out
}

func (x *ctype) LiteralValue() any {
	lit := x.t.AsLiteralType()
	if lit == nil {
		return nil
	}
	return normalizeLiteral(lit.Value())
}

// rawTypeArguments returns the checker's type arguments for instantiated
// references. Alias instantiations like Record<string, number> are not
// references; their arguments ride on the alias.
func (x *ctype) rawTypeArguments() []*shimchecker.Type {
	if x.t.Flags()&shimchecker.TypeFlagsObject != 0 &&
		shimchecker.Type_objectFlags(x.t)&shimchecker.ObjectFlagsReference != 0 {
		return shimchecker.Checker_getTypeArguments(x.f.checker, x.t)
	}
	if alias := shimchecker.Type_alias(x.t); alias != nil {
		return alias.TypeArguments()
	}
	return nil
}

// csymbol wraps one checker symbol.
type csymbol struct {
	f   *Front
	sym *ast.Symbol
}

func (s *csymbol) Name() string { return symbolName(s.sym) }

func (s *csymbol) Flags() typesys.SymbolFlags {
	var out typesys.SymbolFlags
	if s.sym.Flags&ast.SymbolFlagsOptional != 0 {
		out |= typesys.SymbolOptional
	}
	if s.sym.Flags&ast.SymbolFlagsMethod != 0 {
		out |= typesys.SymbolMethod
	}
	if shimchecker.Checker_isReadonlySymbol(s.f.checker, s.sym) {
		out |= typesys.SymbolReadonly
	}
	if decl := declarationOf(s.sym); decl != nil {
		mods := ast.GetCombinedModifierFlags(decl)
		if mods&ast.ModifierFlagsStatic != 0 {
			out |= typesys.SymbolStatic
		}
		if mods&ast.ModifierFlagsPrivate != 0 {
			out |= typesys.SymbolPrivate
		}
		if mods&ast.ModifierFlagsReadonly != 0 {
			out |= typesys.SymbolReadonly
		}
	}
	if strings.HasPrefix(symbolName(s.sym), "#") {
		out |= typesys.SymbolPrivate
	}
	return out
}

func (s *csymbol) Module() string {
	decl := declarationOf(s.sym)
	if decl == nil {
		return ""
	}
	sf := ast.GetSourceFileOfNode(decl)
	if sf == nil {
		return ""
	}
	name := sf.FileName()
	// Bundled standard libraries are platform territory, not user modules.
	if strings.HasPrefix(name, "bundled://") {
		return ""
	}
	return name
}

func (s *csymbol) Doc() string {
	decl := declarationOf(s.sym)
	if decl == nil {
		return ""
	}
	// Doc comments may sit on an enclosing statement, e.g. the variable
	// statement around a variable declaration.
	for n := decl; n != nil && n.Kind != ast.KindSourceFile; n = n.Parent {
		if jsdocs := n.JSDoc(nil); len(jsdocs) > 0 {
			return jsdocComment(jsdocs[len(jsdocs)-1])
		}
		switch n.Kind {
		case ast.KindVariableStatement, ast.KindClassDeclaration,
			ast.KindInterfaceDeclaration, ast.KindEnumDeclaration,
			ast.KindTypeAliasDeclaration, ast.KindPropertyDeclaration,
			ast.KindPropertySignature, ast.KindMethodDeclaration:
			// Past the outermost documentable declaration there is nothing
			// left to inherit.
			if n != decl {
				return ""
			}
		}
	}
	return ""
}

func declarationOf(sym *ast.Symbol) *ast.Node {
	if sym.ValueDeclaration != nil {
		return sym.ValueDeclaration
	}
	if len(sym.Declarations) > 0 {
		return sym.Declarations[0]
	}
	return nil
}

// symbolName unescapes the checker's mangled private-identifier names
// ("__#1@#secret" reads back as "#secret").
func symbolName(sym *ast.Symbol) string {
	name := sym.Name
	if strings.HasPrefix(name, "__#") {
		if _, after, ok := strings.Cut(name, "@"); ok {
			return after
		}
	}
	return name
}

// internalName reports checker-synthesized names ("__type", "__object",
// "__function") that must not be treated as user naming.
func internalName(name string) bool {
	return name == "" || strings.HasPrefix(name, "__")
}

// normalizeLiteral converts checker literal values (jsnum.Number and
// friends) to plain Go values.
func normalizeLiteral(v any) any {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		return val
	case bool:
		return val
	default:
		str := strVal(v)
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return f
		}
		return v
	}
}

func strVal(v any) string {
	type stringer interface{ String() string }
	if s, ok := v.(stringer); ok {
		return s.String()
	}
	return ""
}

// --- Reflector implementation ---

func (f *Front) PropertiesOf(t typesys.Type) []typesys.Symbol {
	return f.wrapSymbols(shimchecker.Checker_getPropertiesOfType(f.checker, unwrap(t)))
}

// StaticsOf enumerates the static side of a class: the properties of the
// class symbol's own type.
func (f *Front) StaticsOf(t typesys.Type) []typesys.Symbol {
	sym := unwrap(t).Symbol()
	if sym == nil || sym.Flags&ast.SymbolFlagsClass == 0 {
		return nil
	}
	staticType := shimchecker.Checker_getTypeOfSymbol(f.checker, sym)
	return f.wrapSymbols(shimchecker.Checker_getPropertiesOfType(f.checker, staticType))
}

func (f *Front) wrapSymbols(syms []*ast.Symbol) []typesys.Symbol {
	if len(syms) == 0 {
		return nil
	}
	out := make([]typesys.Symbol, len(syms))
	for i, s := range syms {
		out[i] = &csymbol{f: f, sym: s}
	}
	return out
}

func (f *Front) TypeOf(s typesys.Symbol) typesys.Type {
	return f.wrap(shimchecker.Checker_getTypeOfSymbol(f.checker, s.(*csymbol).sym))
}

func (f *Front) Signatures(t typesys.Type, kind typesys.SignatureKind) []typesys.Signature {
	tt := unwrap(t)
	shimKind := shimchecker.SignatureKindCall
	if kind == typesys.SignatureConstruct {
		shimKind = shimchecker.SignatureKindConstruct
		// Construct signatures live on the static side of a class, not on
		// the declared instance type.
		if sym := tt.Symbol(); sym != nil && sym.Flags&ast.SymbolFlagsClass != 0 {
			tt = shimchecker.Checker_getTypeOfSymbol(f.checker, sym)
		}
	}
	sigs := shimchecker.Checker_getSignaturesOfType(f.checker, tt, shimKind)
	if len(sigs) == 0 {
		return nil
	}
	out := make([]typesys.Signature, len(sigs))
	for i, sig := range sigs {
		out[i] = &csignature{f: f, sig: sig}
	}
	return out
}

func (f *Front) BaseTypes(t typesys.Type) []typesys.Type {
	tt := unwrap(t)
	if tt.Flags()&shimchecker.TypeFlagsObject == 0 {
		return nil
	}
	bases := shimchecker.Checker_getBaseTypes(f.checker, tt)
	if len(bases) == 0 {
		return nil
	}
	out := make([]typesys.Type, len(bases))
	for i, b := range bases {
		out[i] = f.wrap(b)
	}
	return out
}

// Implements reads a class's implements clause from its declaration; the
// checker folds implemented interfaces into the apparent members, so only
// the AST still knows the declared list.
func (f *Front) Implements(t typesys.Type) []typesys.Type {
	sym := unwrap(t).Symbol()
	if sym == nil {
		return nil
	}
	var out []typesys.Type
	for _, decl := range sym.Declarations {
		if decl.Kind != ast.KindClassDeclaration {
			continue
		}
		cd := decl.AsClassDeclaration()
		if cd.HeritageClauses == nil {
			continue
		}
		for _, hc := range cd.HeritageClauses.Nodes {
			clause := hc.AsHeritageClause()
			if clause.Token != ast.KindImplementsKeyword {
				continue
			}
			for _, tn := range clause.Types.Nodes {
				out = append(out, f.wrap(shimchecker.Checker_getTypeFromTypeNode(f.checker, tn)))
			}
		}
	}
	return out
}

func (f *Front) TypeArguments(t typesys.Type) []typesys.Type {
	args := t.(*ctype).rawTypeArguments()
	if len(args) == 0 {
		return nil
	}
	out := make([]typesys.Type, len(args))
	for i, a := range args {
		out[i] = f.wrap(a)
	}
	return out
}

// TypeParameters reads declared generic parameters off the declaration
// node; for an uninstantiated generic the checker reports the parameters
// themselves as the type arguments, which is exactly what the substitution
// machinery expects.
func (f *Front) TypeParameters(t typesys.Type) []typesys.Type {
	sym := unwrap(t).Symbol()
	if sym == nil {
		return nil
	}
	var out []typesys.Type
	for _, decl := range sym.Declarations {
		var tps *ast.NodeList
		switch decl.Kind {
		case ast.KindClassDeclaration:
			tps = decl.AsClassDeclaration().TypeParameters
		case ast.KindInterfaceDeclaration:
			tps = decl.AsInterfaceDeclaration().TypeParameters
		}
		if tps == nil {
			continue
		}
		for _, tp := range tps.Nodes {
			psym := f.checker.GetSymbolAtLocation(tp.Name())
			if psym == nil {
				continue
			}
			out = append(out, f.wrap(shimchecker.Checker_getDeclaredTypeOfSymbol(f.checker, psym)))
		}
		if len(out) > 0 {
			return out
		}
	}
	return out
}

// AliasTarget always reports nil: the checker resolves alias references to
// their target before the traversal sees them, so there is never a separate
// alias type to unwrap. The alias symbol only contributes naming, through
// effectiveSymbol.
func (f *Front) AliasTarget(t typesys.Type) typesys.Type { return nil }

func (f *Front) BaseConstraint(t typesys.Type) typesys.Type {
	return f.wrap(shimchecker.Checker_getBaseConstraintOfType(f.checker, unwrap(t)))
}

// ConditionalBranches reports an unresolved conditional's default
// constraint, the union of its two branches, as both arms; the traversal
// deduplicates union members so a collapsed constraint costs nothing.
func (f *Front) ConditionalBranches(t typesys.Type) (typesys.Type, typesys.Type, bool) {
	if unwrap(t).Flags()&shimchecker.TypeFlagsConditional == 0 {
		return nil, nil, false
	}
	c := shimchecker.Checker_getBaseConstraintOfType(f.checker, unwrap(t))
	if c == nil {
		return nil, nil, false
	}
	w := f.wrap(c)
	return w, w, true
}

func (f *Front) ApparentType(t typesys.Type) typesys.Type {
	if c := shimchecker.Checker_getBaseConstraintOfType(f.checker, unwrap(t)); c != nil {
		return f.wrap(c)
	}
	return t
}

func (f *Front) IndexInfos(t typesys.Type) []typesys.IndexInfo {
	infos := shimchecker.Checker_getIndexInfosOfType(f.checker, unwrap(t))
	if len(infos) == 0 {
		return nil
	}
	out := make([]typesys.IndexInfo, len(infos))
	for i, info := range infos {
		out[i] = typesys.IndexInfo{
			Key:   f.wrap(shimchecker.IndexInfo_keyType(info)),
			Value: f.wrap(shimchecker.IndexInfo_valueType(info)),
		}
	}
	return out
}

func (f *Front) IsArray(t typesys.Type) bool {
	return shimchecker.Checker_isArrayType(f.checker, unwrap(t))
}

func (f *Front) IsTuple(t typesys.Type) bool {
	return shimchecker.IsTupleType(unwrap(t))
}

func (f *Front) TupleElements(t typesys.Type) []typesys.TupleElement {
	tt := unwrap(t)
	typeArgs := shimchecker.Checker_getTypeArguments(f.checker, tt)
	var infos []shimchecker.TupleElementInfo
	if tupleType := tt.TargetTupleType(); tupleType != nil {
		infos = shimchecker.TupleType_elementInfos(tupleType)
	}
	out := make([]typesys.TupleElement, len(typeArgs))
	for i, arg := range typeArgs {
		out[i].Type = f.wrap(arg)
		if i < len(infos) {
			flags := infos[i].TupleElementFlags()
			out[i].Optional = flags&shimchecker.ElementFlagsOptional != 0
			out[i].Rest = flags&shimchecker.ElementFlagsRest != 0
		}
	}
	return out
}

func (f *Front) EnumMembers(t typesys.Type) []typesys.EnumMember {
	tt := unwrap(t)
	var members []*shimchecker.Type
	if tt.Flags()&shimchecker.TypeFlagsUnion != 0 {
		members = tt.Types()
	} else {
		members = []*shimchecker.Type{tt}
	}
	out := make([]typesys.EnumMember, 0, len(members))
	for _, m := range members {
		var em typesys.EnumMember
		if sym := m.Symbol(); sym != nil {
			em.Name = sym.Name
		}
		if lit := m.AsLiteralType(); lit != nil {
			em.Value = normalizeLiteral(lit.Value())
		}
		out = append(out, em)
	}
	return out
}

func (f *Front) ConstantValue(s typesys.Symbol) (any, bool) {
	decl := declarationOf(s.(*csymbol).sym)
	if decl == nil {
		return nil, false
	}
	var init *ast.Node
	switch decl.Kind {
	case ast.KindVariableDeclaration:
		init = decl.AsVariableDeclaration().Initializer
	case ast.KindPropertyDeclaration:
		init = decl.AsPropertyDeclaration().Initializer
	case ast.KindParameter:
		init = decl.AsParameterDeclaration().Initializer
	case ast.KindEnumMember:
		init = decl.AsEnumMember().Initializer
	}
	return constantInitializer(init)
}

// csignature wraps one call or construct signature.
type csignature struct {
	f   *Front
	sig *shimchecker.Signature
}

func (s *csignature) Parameters() []typesys.Parameter {
	syms := shimchecker.Signature_parameters(s.sig)
	if len(syms) == 0 {
		return nil
	}
	out := make([]typesys.Parameter, len(syms))
	for i, sym := range syms {
		out[i] = s.f.paramOf(sym)
	}
	return out
}

func (s *csignature) ReturnType() typesys.Type {
	return s.f.wrap(shimchecker.Checker_getReturnTypeOfSignature(s.f.checker, s.sig))
}

func (f *Front) paramOf(sym *ast.Symbol) typesys.Parameter {
	p := typesys.Parameter{
		Name: symbolName(sym),
		Type: f.wrap(shimchecker.Checker_getTypeOfSymbol(f.checker, sym)),
	}
	if decl := sym.ValueDeclaration; decl != nil && decl.Kind == ast.KindParameter {
		pd := decl.AsParameterDeclaration()
		p.Rest = pd.DotDotDotToken != nil
		p.Optional = pd.QuestionToken != nil || pd.Initializer != nil
		if v, ok := constantInitializer(pd.Initializer); ok {
			p.Default, p.HasDefault = v, true
		}
	}
	return p
}

// constantInitializer evaluates the statically determinable constant of an
// initializer expression. Anything beyond plain literals and a negated
// number reports false.
func constantInitializer(node *ast.Node) (any, bool) {
	if node == nil {
		return nil, false
	}
	switch node.Kind {
	case ast.KindStringLiteral:
		return node.AsStringLiteral().Text, true
	case ast.KindNumericLiteral:
		f, err := strconv.ParseFloat(node.AsNumericLiteral().Text, 64)
		if err != nil {
			return nil, false
		}
		return f, true
	case ast.KindTrueKeyword:
		return true, true
	case ast.KindFalseKeyword:
		return false, true
	case ast.KindNullKeyword:
		return nil, true
	case ast.KindPrefixUnaryExpression:
		pu := node.AsPrefixUnaryExpression()
		if pu.Operator == ast.KindMinusToken {
			if v, ok := constantInitializer(pu.Operand); ok {
				if fv, ok := v.(float64); ok {
					return -fv, true
				}
			}
		}
	}
	return nil, false
}

// jsdocComment extracts the plain comment text of one JSDoc node, skipping
// tags.
func jsdocComment(node *ast.Node) string {
	doc := node.AsJSDoc()
	if doc == nil || doc.Comment == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range doc.Comment.Nodes {
		switch part.Kind {
		case ast.KindJSDocText, ast.KindJSDocLink, ast.KindJSDocLinkCode, ast.KindJSDocLinkPlain:
			sb.WriteString(part.Text())
		}
	}
	return strings.TrimSpace(sb.String())
}
