package analyzer_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tsbridge/tsbridge/internal/analyzer"
	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/diagnostic"
	"github.com/tsbridge/tsbridge/internal/typemodel"
	"github.com/tsbridge/tsbridge/internal/typesys"
	"github.com/tsbridge/tsbridge/internal/uid"
)

type env struct {
	m     *typemodel.Model
	w     *analyzer.Walker
	sys   *analyzer.SystemTable
	diags *diagnostic.Collector
}

func setup(t *testing.T, opts analyzer.Options) *env {
	t.Helper()
	m := typemodel.New()
	sys := analyzer.NewSystemTable()
	diags := diagnostic.NewCollector(false, false)
	if opts.Diagnostics == nil {
		opts.Diagnostics = diags
	}
	return &env{m: m, w: analyzer.NewWalker(m, sys, opts), sys: sys, diags: diags}
}

func (e *env) walk(t *testing.T, typ typesys.Type) uid.ID {
	t.Helper()
	id, err := e.w.WalkType(typ)
	if err != nil {
		t.Fatalf("WalkType(%s): %v", typ.Text(), err)
	}
	return id
}

func (e *env) desc(t *testing.T, id uid.ID) *descriptor.Desc {
	t.Helper()
	rec := e.w.Lookup(id)
	if rec == nil {
		t.Fatalf("no record for uid %d", id)
	}
	if rec.Desc == nil {
		t.Fatalf("record %d is still a placeholder", id)
	}
	return rec.Desc
}

func assertKind(t *testing.T, d *descriptor.Desc, kind descriptor.Kind) {
	t.Helper()
	if d.Kind != kind {
		t.Fatalf("descriptor %d: kind = %q, want %q", d.UID, d.Kind, kind)
	}
}

func assertRefs(t *testing.T, got []uid.ID, want ...uid.ID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("refs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("refs[%d] = %d, want %d (got %v, want %v)", i, got[i], want[i], got, want)
		}
	}
}

// --- Primitives and system descriptors ---

func TestWalkPrimitivesShareSystemUIDs(t *testing.T) {
	e := setup(t, analyzer.Options{})

	cases := []struct {
		typ  typesys.Type
		want uid.ID
	}{
		{e.m.String(), e.sys.String.UID},
		{e.m.Number(), e.sys.Number.UID},
		{e.m.Boolean(), e.sys.Boolean.UID},
		{e.m.BigInt(), e.sys.BigInt.UID},
		{e.m.ESSymbol(), e.sys.Symbol.UID},
		{e.m.Null(), e.sys.Null.UID},
		{e.m.Undefined(), e.sys.Undefined.UID},
		{e.m.Void(), e.sys.Void.UID},
	}
	for _, c := range cases {
		if got := e.walk(t, c.typ); got != c.want {
			t.Errorf("walk(%s) = %d, want %d", c.typ.Text(), got, c.want)
		}
	}
}

func TestWalkAnyUnknownNeverDegradeToObject(t *testing.T) {
	e := setup(t, analyzer.Options{})

	for _, typ := range []typesys.Type{e.m.Any(), e.m.Unknown(), e.m.Never()} {
		if got := e.walk(t, typ); got != e.sys.Object.UID {
			t.Errorf("walk(%s) = %d, want generic object %d", typ.Text(), got, e.sys.Object.UID)
		}
	}
}

func TestSystemUIDsStableAcrossWalkers(t *testing.T) {
	a := analyzer.NewSystemTable()
	b := analyzer.NewSystemTable()
	if a.String.UID != b.String.UID || a.Object.UID != b.Object.UID {
		t.Fatalf("system tables disagree: %d/%d vs %d/%d",
			a.String.UID, a.Object.UID, b.String.UID, b.Object.UID)
	}
	if a.String.UID >= uid.UserFloor {
		t.Fatalf("system uid %d crossed into the user namespace", a.String.UID)
	}
}

func TestWalkUserTypesAllocateAboveFloor(t *testing.T) {
	e := setup(t, analyzer.Options{})

	id := e.walk(t, e.m.Object("Point", "./geometry").Ctor(nil).Type())
	if id < uid.UserFloor {
		t.Fatalf("user type uid %d below floor %d", id, uid.UserFloor)
	}
}

// --- Literals ---

func TestWalkLiterals(t *testing.T) {
	e := setup(t, analyzer.Options{})

	d := e.desc(t, e.walk(t, e.m.StringLit("north")))
	assertKind(t, d, descriptor.KindLiteral)
	if d.LiteralKind != "string" || d.LiteralValue != "north" {
		t.Fatalf("string literal = %q %v", d.LiteralKind, d.LiteralValue)
	}

	d = e.desc(t, e.walk(t, e.m.NumberLit(42)))
	if d.LiteralKind != "number" || d.LiteralValue != 42.0 {
		t.Fatalf("number literal = %q %v", d.LiteralKind, d.LiteralValue)
	}
}

// --- Classes and interfaces ---

func TestWalkClassFieldsInDeclarationOrder(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").
		Doc("A 2D point.").
		Field("x", e.m.Number(), 0).
		Field("y", e.m.Number(), 0).
		Ctor([]typesys.Parameter{
			typemodel.Param("x", e.m.Number()),
			typemodel.Param("y", e.m.Number()),
		})

	d := e.desc(t, e.walk(t, point.Type()))
	assertKind(t, d, descriptor.KindClass)
	if d.Name != "Point" || d.Module != "./geometry" || d.Doc != "A 2D point." {
		t.Fatalf("identity = %q %q %q", d.Name, d.Module, d.Doc)
	}
	if len(d.Fields) != 2 || d.Fields[0].Name != "x" || d.Fields[1].Name != "y" {
		t.Fatalf("fields = %+v", d.Fields)
	}
	for _, f := range d.Fields {
		if f.Type != e.sys.Number.UID {
			t.Fatalf("field %s type = %d, want number", f.Name, f.Type)
		}
	}
	if len(d.Ctor) != 2 || d.Ctor[0].Name != "x" || d.Ctor[1].Name != "y" {
		t.Fatalf("ctor schema = %+v", d.Ctor)
	}
}

func TestWalkInterfaceHasNoCtorOrBases(t *testing.T) {
	e := setup(t, analyzer.Options{})

	shape := e.m.Object("Shape", "./geometry").
		Field("area", e.m.Number(), 0).
		Base(e.m.Object("Ignored", "./geometry").Type())

	d := e.desc(t, e.walk(t, shape.Type()))
	assertKind(t, d, descriptor.KindInterface)
	if d.Ctor != nil || d.Bases != nil {
		t.Fatalf("interface carries ctor %v / bases %v", d.Ctor, d.Bases)
	}
}

func TestWalkClassMethods(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").
		Field("x", e.m.Number(), 0).
		Method("scale", []typesys.Parameter{typemodel.Param("by", e.m.Number())}, e.m.Void(), 0).
		Ctor(nil)

	d := e.desc(t, e.walk(t, point.Type()))
	if len(d.Methods) != 1 || d.Methods[0].Name != "scale" {
		t.Fatalf("methods = %+v", d.Methods)
	}
	fn := e.desc(t, d.Methods[0].Function)
	assertKind(t, fn, descriptor.KindFunction)
	if fn.Name != "" {
		t.Fatalf("anonymous method function leaked name %q", fn.Name)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "by" || fn.Return != e.sys.Void.UID {
		t.Fatalf("method signature = %+v -> %d", fn.Params, fn.Return)
	}
}

func TestWalkAnonymousObjectGetsSynthesizedName(t *testing.T) {
	e := setup(t, analyzer.Options{})

	anon := e.m.Object("", "").Field("ok", e.m.Boolean(), 0)
	id := e.walk(t, anon.Type())
	d := e.desc(t, id)
	want := fmt.Sprintf("AnonymousType%d", id)
	if d.Name != want {
		t.Fatalf("synthesized name = %q, want %q", d.Name, want)
	}
}

func TestWalkGlobalObjectShortCircuits(t *testing.T) {
	e := setup(t, analyzer.Options{})

	if got := e.walk(t, e.m.Native("Object")); got != e.sys.Object.UID {
		t.Fatalf("Object = %d, want system object %d", got, e.sys.Object.UID)
	}
	if got := e.walk(t, e.m.Native("globalThis")); got != e.sys.Object.UID {
		t.Fatalf("globalThis = %d, want system object %d", got, e.sys.Object.UID)
	}
}

func TestWalkPlatformBasesMapToSystemObject(t *testing.T) {
	e := setup(t, analyzer.Options{})

	err := e.m.Object("AppError", "./errors").
		Field("code", e.m.Number(), 0).
		Base(e.m.Native("Function")).
		Ctor(nil)

	d := e.desc(t, e.walk(t, err.Type()))
	assertKind(t, d, descriptor.KindClass)
	assertRefs(t, d.Bases, e.sys.Object.UID)
}

func TestWalkStaticsSkipPlatformReserved(t *testing.T) {
	e := setup(t, analyzer.Options{})

	origin := e.m.Object("Vec", "./geometry").Ctor(nil)
	vec := e.m.Object("Vec2", "./geometry").
		Static("prototype", e.m.Native("Object"), 0).
		Static("length", e.m.Number(), 0).
		Static("origin", origin.Type(), 0).
		Ctor(nil)

	d := e.desc(t, e.walk(t, vec.Type()))
	if len(d.Fields) != 1 || d.Fields[0].Name != "origin" || !d.Fields[0].Static {
		t.Fatalf("statics = %+v", d.Fields)
	}
}

func TestWalkPrivacyDeclaredModifierAndConvention(t *testing.T) {
	e := setup(t, analyzer.Options{})

	acct := e.m.Object("Account", "./bank").
		Field("balance", e.m.Number(), typesys.SymbolPrivate).
		Field("_ledger", e.m.String(), 0).
		Field("#seal", e.m.String(), 0).
		Field("owner", e.m.String(), 0).
		Ctor(nil)

	d := e.desc(t, e.walk(t, acct.Type()))
	want := map[string]bool{"balance": true, "_ledger": true, "#seal": true, "owner": false}
	for _, f := range d.Fields {
		if f.Private != want[f.Name] {
			t.Errorf("field %s: private = %v, want %v", f.Name, f.Private, want[f.Name])
		}
	}
}

func TestWalkOptionalField(t *testing.T) {
	e := setup(t, analyzer.Options{})

	user := e.m.Object("User", "./users").
		Field("name", e.m.String(), 0).
		Field("nickname", e.m.String(), typesys.SymbolOptional)

	d := e.desc(t, e.walk(t, user.Type()))
	if d.Fields[0].Optional || !d.Fields[1].Optional {
		t.Fatalf("optional flags = %+v", d.Fields)
	}
}

func TestWalkCallableObjectMemberDropped(t *testing.T) {
	e := setup(t, analyzer.Options{})

	// A hybrid callable-object shape: a call signature plus properties.
	// As a member type it is neither a clean function nor a plain field,
	// so the member is dropped with a warning instead of aborting.
	hybrid := e.m.Object("Tagged", "./hybrid").
		CallSignature(nil, e.m.String()).
		Field("tag", e.m.String(), 0)

	holder := e.m.Object("Holder", "./hybrid").
		Field("fn", hybrid.Type(), 0).
		Field("name", e.m.String(), 0).
		Ctor(nil)

	d := e.desc(t, e.walk(t, holder.Type()))
	if len(d.Fields) != 1 || d.Fields[0].Name != "name" {
		t.Fatalf("fields = %+v, want only name", d.Fields)
	}
	if len(d.Methods) != 0 {
		t.Fatalf("methods = %+v, want none", d.Methods)
	}
	if e.diags.WarningCount() == 0 {
		t.Fatal("expected a member-dropped warning")
	}
}

// --- Dedup, cycles and aliases ---

func TestWalkSameTypeDedupes(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").Field("x", e.m.Number(), 0).Ctor(nil).Type()
	first := e.walk(t, point)
	second := e.walk(t, point)
	if first != second {
		t.Fatalf("walked twice: %d vs %d", first, second)
	}
}

func TestWalkSelfReferentialClassTerminates(t *testing.T) {
	e := setup(t, analyzer.Options{})

	node := e.m.Object("Node", "./list")
	node.Field("value", e.m.String(), 0).
		Field("next", node.Type(), 0).
		Ctor(nil)

	id := e.walk(t, node.Type())
	d := e.desc(t, id)
	if d.Fields[1].Type != id {
		t.Fatalf("next points at %d, want self %d", d.Fields[1].Type, id)
	}
	if e.w.Lookup(id).Placeholder {
		t.Fatal("record left as placeholder")
	}
}

func TestWalkMutuallyRecursiveClasses(t *testing.T) {
	e := setup(t, analyzer.Options{})

	parent := e.m.Object("Parent", "./tree")
	child := e.m.Object("Child", "./tree")
	parent.Field("children", e.m.ArrayOf(child.Type()), 0).Ctor(nil)
	child.Field("parent", parent.Type(), 0).Ctor(nil)

	pid := e.walk(t, parent.Type())
	arr := e.desc(t, e.desc(t, pid).Fields[0].Type)
	assertKind(t, arr, descriptor.KindArray)
	back := e.desc(t, arr.Element)
	if back.Fields[0].Type != pid {
		t.Fatalf("child.parent = %d, want %d", back.Fields[0].Type, pid)
	}
}

func TestWalkAliasCollapsesToTarget(t *testing.T) {
	e := setup(t, analyzer.Options{})

	if got := e.walk(t, e.m.Alias("UserID", e.m.String())); got != e.sys.String.UID {
		t.Fatalf("alias = %d, want string %d", got, e.sys.String.UID)
	}

	point := e.m.Object("Point", "./geometry").Field("x", e.m.Number(), 0).Ctor(nil).Type()
	direct := e.walk(t, point)
	viaAlias := e.walk(t, e.m.Alias("Coord", point))
	if direct != viaAlias {
		t.Fatalf("alias diverged: %d vs %d", viaAlias, direct)
	}
}

func TestResolveAliasesLeavesNoPlaceholders(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").Field("x", e.m.Number(), 0).Ctor(nil).Type()
	e.walk(t, e.m.Alias("Coord", point))
	e.walk(t, e.m.Union(e.m.BoolLit(true), e.m.BoolLit(false)))
	e.walk(t, e.m.Conditional("T extends X ? A : B", e.m.String(), e.m.Number()))

	if err := e.w.ResolveAliases(); err != nil {
		t.Fatalf("ResolveAliases: %v", err)
	}
	for _, rec := range e.w.Records() {
		if rec.Placeholder || rec.Desc == nil {
			t.Fatalf("record %d unresolved after alias collapse", rec.UID)
		}
	}
}

func TestResolveAliasesRewritesNestedRefs(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").Field("x", e.m.Number(), 0).Ctor(nil).Type()
	alias := e.m.Alias("Coord", point)
	holder := e.m.Object("Holder", "./geometry").Field("at", alias, 0).Ctor(nil)

	hid := e.walk(t, holder.Type())
	canonical := e.walk(t, point)
	if err := e.w.ResolveAliases(); err != nil {
		t.Fatalf("ResolveAliases: %v", err)
	}
	if got := e.desc(t, hid).Fields[0].Type; got != canonical {
		t.Fatalf("field ref = %d, want canonical %d", got, canonical)
	}
}

// --- Unions and intersections ---

func TestWalkUnionPreservesOrderNullishLast(t *testing.T) {
	e := setup(t, analyzer.Options{})

	a := e.m.StringLit("a")
	b := e.m.StringLit("b")
	u := e.m.Union(e.m.Null(), b, a, e.m.Undefined())

	d := e.desc(t, e.walk(t, u))
	assertKind(t, d, descriptor.KindUnion)
	bid, aid := e.walk(t, b), e.walk(t, a)
	assertRefs(t, d.Members, bid, aid, e.sys.Null.UID, e.sys.Undefined.UID)
}

func TestWalkBooleanPairCollapses(t *testing.T) {
	e := setup(t, analyzer.Options{})

	u := e.m.Union(e.m.BoolLit(true), e.m.BoolLit(false))
	if got := e.walk(t, u); got != e.sys.Boolean.UID {
		t.Fatalf("true|false = %d, want boolean %d", got, e.sys.Boolean.UID)
	}
}

func TestWalkSingleMemberUnionUnwraps(t *testing.T) {
	e := setup(t, analyzer.Options{})

	if got := e.walk(t, e.m.Union(e.m.String())); got != e.sys.String.UID {
		t.Fatalf("union of one = %d, want string", got)
	}
}

func TestWalkIntersectionKeepsMembers(t *testing.T) {
	e := setup(t, analyzer.Options{})

	named := e.m.Object("Named", "./traits").Field("name", e.m.String(), 0)
	aged := e.m.Object("Aged", "./traits").Field("age", e.m.Number(), 0)
	d := e.desc(t, e.walk(t, e.m.Intersection(named.Type(), aged.Type())))
	assertKind(t, d, descriptor.KindIntersection)
	if len(d.Members) != 2 {
		t.Fatalf("members = %v", d.Members)
	}
}

func TestWalkConditionalResolvesToBranchUnion(t *testing.T) {
	e := setup(t, analyzer.Options{})

	cond := e.m.Conditional("T extends string ? number : bigint", e.m.Number(), e.m.BigInt())
	d := e.desc(t, e.walk(t, cond))
	assertKind(t, d, descriptor.KindUnion)
	assertRefs(t, d.Members, e.sys.Number.UID, e.sys.BigInt.UID)
}

// --- Arrays, tuples and containers ---

func TestWalkArray(t *testing.T) {
	e := setup(t, analyzer.Options{})

	d := e.desc(t, e.walk(t, e.m.ArrayOf(e.m.String())))
	assertKind(t, d, descriptor.KindArray)
	if d.Element != e.sys.String.UID {
		t.Fatalf("element = %d, want string", d.Element)
	}
}

func TestWalkSharedElementAcrossContainers(t *testing.T) {
	e := setup(t, analyzer.Options{})

	animal := e.m.Object("Animal", "./zoo").Field("name", e.m.String(), 0).Ctor(nil)
	dog := e.m.Object("Dog", "./zoo").Field("breed", e.m.String(), 0).Base(animal.Type()).Ctor(nil)
	cat := e.m.Object("Cat", "./zoo").Field("lives", e.m.Number(), 0).Base(animal.Type()).Ctor(nil)

	arr := e.desc(t, e.walk(t, e.m.ArrayOf(e.m.Union(dog.Type(), cat.Type()))))
	assertKind(t, arr, descriptor.KindArray)

	union := e.desc(t, arr.Element)
	assertKind(t, union, descriptor.KindUnion)
	dogDesc := e.desc(t, union.Members[0])
	catDesc := e.desc(t, union.Members[1])
	if dogDesc.Bases[0] != catDesc.Bases[0] {
		t.Fatalf("Dog and Cat disagree on Animal: %d vs %d", dogDesc.Bases[0], catDesc.Bases[0])
	}
}

func TestWalkFixedTuple(t *testing.T) {
	e := setup(t, analyzer.Options{})

	d := e.desc(t, e.walk(t, e.m.TupleOf(e.m.String(), e.m.Number())))
	assertKind(t, d, descriptor.KindTuple)
	assertRefs(t, d.Elements, e.sys.String.UID, e.sys.Number.UID)
}

func TestWalkVariadicTupleDegradesToArray(t *testing.T) {
	e := setup(t, analyzer.Options{})

	tup := e.m.Tuple([]typesys.TupleElement{
		{Type: e.m.String()},
		{Type: e.m.Number(), Rest: true},
	})
	d := e.desc(t, e.walk(t, tup))
	assertKind(t, d, descriptor.KindArray)

	elem := e.desc(t, d.Element)
	assertKind(t, elem, descriptor.KindUnion)
	assertRefs(t, elem.Members, e.sys.String.UID, e.sys.Number.UID)
}

func TestWalkVariadicTupleHomogeneousUnwraps(t *testing.T) {
	e := setup(t, analyzer.Options{})

	// [string, ...string[]] degrades to string[], not (string | string)[].
	tup := e.m.Tuple([]typesys.TupleElement{
		{Type: e.m.String()},
		{Type: e.m.String(), Rest: true},
	})
	d := e.desc(t, e.walk(t, tup))
	assertKind(t, d, descriptor.KindArray)
	if d.Element != e.sys.String.UID {
		t.Fatalf("element = %d, want plain string %d", d.Element, e.sys.String.UID)
	}

	// The collapsed element slot must not survive as a placeholder.
	if err := e.w.ResolveAliases(); err != nil {
		t.Fatalf("ResolveAliases: %v", err)
	}
}

func TestWalkVariadicTupleNullishElementOrdersLast(t *testing.T) {
	e := setup(t, analyzer.Options{})

	tup := e.m.Tuple([]typesys.TupleElement{
		{Type: e.m.Undefined()},
		{Type: e.m.Number(), Rest: true},
	})
	d := e.desc(t, e.walk(t, tup))
	assertKind(t, d, descriptor.KindArray)

	elem := e.desc(t, d.Element)
	assertKind(t, elem, descriptor.KindUnion)
	assertRefs(t, elem.Members, e.sys.Number.UID, e.sys.Undefined.UID)
}

func TestWalkSet(t *testing.T) {
	e := setup(t, analyzer.Options{})

	d := e.desc(t, e.walk(t, e.m.SetOf(e.m.Number())))
	assertKind(t, d, descriptor.KindSet)
	if d.Element != e.sys.Number.UID {
		t.Fatalf("element = %d", d.Element)
	}
}

func TestWalkMap(t *testing.T) {
	e := setup(t, analyzer.Options{})

	d := e.desc(t, e.walk(t, e.m.MapOf(e.m.String(), e.m.Number())))
	assertKind(t, d, descriptor.KindMap)
	if d.Key != e.sys.String.UID || d.Value != e.sys.Number.UID {
		t.Fatalf("map = %d -> %d", d.Key, d.Value)
	}
}

func TestWalkNestedFuture(t *testing.T) {
	e := setup(t, analyzer.Options{})

	job := e.m.Object("Job", "./jobs").
		Field("result", e.m.Promise(e.m.String()), 0).
		Ctor(nil)

	d := e.desc(t, e.walk(t, job.Type()))
	future := e.desc(t, d.Fields[0].Type)
	assertKind(t, future, descriptor.KindFuture)
	if future.Element != e.sys.String.UID {
		t.Fatalf("future element = %d", future.Element)
	}
}

// --- Record / Map / index-signature convergence ---

func TestWalkRecordSharesBackingMap(t *testing.T) {
	e := setup(t, analyzer.Options{})

	rec := e.desc(t, e.walk(t, e.m.RecordOf(e.m.String(), e.m.Number())))
	assertKind(t, rec, descriptor.KindRecord)
	backing := e.desc(t, rec.BackingMap)
	assertKind(t, backing, descriptor.KindMap)

	// A structurally equivalent Map converges on the same descriptor.
	if got := e.walk(t, e.m.MapOf(e.m.String(), e.m.Number())); got != rec.BackingMap {
		t.Fatalf("Map<string, number> = %d, want shared backing %d", got, rec.BackingMap)
	}
}

func TestWalkIndexSignatureSharesBackingMap(t *testing.T) {
	e := setup(t, analyzer.Options{})

	rec := e.desc(t, e.walk(t, e.m.RecordOf(e.m.String(), e.m.Number())))

	dict := e.m.Object("Scores", "./dict").
		Index(e.m.String(), e.m.Number()).
		Ctor(nil)
	d := e.desc(t, e.walk(t, dict.Type()))
	if d.Index == nil {
		t.Fatal("index signature missing")
	}
	if d.Index.BackingMap != rec.BackingMap {
		t.Fatalf("index backing = %d, record backing = %d", d.Index.BackingMap, rec.BackingMap)
	}
}

func TestWalkConflictingIndexSignaturesFatal(t *testing.T) {
	e := setup(t, analyzer.Options{})

	dict := e.m.Object("Mixed", "./dict").
		Index(e.m.String(), e.m.Number()).
		Index(e.m.Number(), e.m.String()).
		Ctor(nil)

	_, err := e.w.WalkType(dict.Type())
	var idxErr *analyzer.IndexSignatureError
	if !errors.As(err, &idxErr) {
		t.Fatalf("err = %v, want IndexSignatureError", err)
	}
	if idxErr.TypeName != "Mixed" {
		t.Fatalf("type name = %q", idxErr.TypeName)
	}
}

// --- Generics ---

func TestWalkGenericInstantiation(t *testing.T) {
	e := setup(t, analyzer.Options{})

	tp := e.m.TypeParam("T", nil)
	box := e.m.Object("Box", "./box").
		TypeParams(tp).
		Field("value", tp, 0).
		Ctor([]typesys.Parameter{typemodel.Param("value", tp)})

	d := e.desc(t, e.walk(t, e.m.Instantiate(box.Type(), e.m.String())))
	assertKind(t, d, descriptor.KindClass)
	if d.Fields[0].Type != e.sys.String.UID {
		t.Fatalf("Box<string>.value = %d, want string", d.Fields[0].Type)
	}
	if d.Ctor[0].Type != e.sys.String.UID {
		t.Fatalf("ctor param = %d, want string", d.Ctor[0].Type)
	}
	if len(d.Substitutions) != 1 || d.Substitutions[0].Param != "T" || d.Substitutions[0].Type != e.sys.String.UID {
		t.Fatalf("substitutions = %+v", d.Substitutions)
	}
}

func TestWalkDistinctInstantiationsStaySeparate(t *testing.T) {
	e := setup(t, analyzer.Options{})

	tp := e.m.TypeParam("T", nil)
	box := e.m.Object("Box", "./box").TypeParams(tp).Field("value", tp, 0).Ctor(nil)

	a := e.walk(t, e.m.Instantiate(box.Type(), e.m.String()))
	b := e.walk(t, e.m.Instantiate(box.Type(), e.m.Number()))
	if a == b {
		t.Fatal("Box<string> and Box<number> collapsed to one uid")
	}
}

func TestWalkArityMismatchFatal(t *testing.T) {
	e := setup(t, analyzer.Options{})

	tp := e.m.TypeParam("T", nil)
	box := e.m.Object("Box", "./box").TypeParams(tp).Field("value", tp, 0).Ctor(nil)

	_, err := e.w.WalkType(e.m.Instantiate(box.Type()))
	var arity *analyzer.ArityError
	if !errors.As(err, &arity) {
		t.Fatalf("err = %v, want ArityError", err)
	}
	if arity.Params != 1 || arity.Args != 0 {
		t.Fatalf("arity = %d/%d", arity.Params, arity.Args)
	}
}

func TestWalkUnresolvedTypeParameter(t *testing.T) {
	e := setup(t, analyzer.Options{})

	// No substitution, no constraint: generic object.
	if got := e.walk(t, e.m.TypeParam("T", nil)); got != e.sys.Object.UID {
		t.Fatalf("bare T = %d, want object", got)
	}
	// Constraint stands in when no argument is known.
	if got := e.walk(t, e.m.TypeParam("K", e.m.String())); got != e.sys.String.UID {
		t.Fatalf("K extends string = %d, want string", got)
	}
}

func TestWalkIndexedAccessUsesApparentType(t *testing.T) {
	e := setup(t, analyzer.Options{})

	ia := e.m.IndexedAccess(`User["name"]`, e.m.String())
	if got := e.walk(t, ia); got != e.sys.String.UID {
		t.Fatalf("indexed access = %d, want string", got)
	}
}

// --- Enums ---

func TestWalkEnum(t *testing.T) {
	e := setup(t, analyzer.Options{})

	color := e.m.Enum("Color",
		typesys.EnumMember{Name: "Red", Value: 0.0},
		typesys.EnumMember{Name: "Green", Value: 1.0},
		typesys.EnumMember{Name: "Label", Value: "lbl"},
	)
	d := e.desc(t, e.walk(t, color))
	assertKind(t, d, descriptor.KindEnum)
	if d.Name != "Color" {
		t.Fatalf("name = %q", d.Name)
	}
	if len(d.EnumKeys) != 3 || d.EnumKeys[0] != "Red" || d.EnumValues[2] != "lbl" {
		t.Fatalf("members = %v / %v", d.EnumKeys, d.EnumValues)
	}
}

// --- Functions ---

func TestWalkFunctionType(t *testing.T) {
	e := setup(t, analyzer.Options{})

	fn := e.m.Func([]typesys.Parameter{
		typemodel.Param("a", e.m.Number()),
		typemodel.OptParam("b", e.m.String()),
	}, e.m.Boolean())

	d := e.desc(t, e.walk(t, fn))
	assertKind(t, d, descriptor.KindFunction)
	if len(d.Params) != 2 {
		t.Fatalf("params = %+v", d.Params)
	}
	if d.Params[0].Name != "a" || d.Params[0].Type != e.sys.Number.UID || d.Params[0].Optional {
		t.Fatalf("param a = %+v", d.Params[0])
	}
	if d.Params[1].Name != "b" || d.Params[1].Type != e.sys.String.UID || !d.Params[1].Optional {
		t.Fatalf("param b = %+v", d.Params[1])
	}
	if d.Return != e.sys.Boolean.UID {
		t.Fatalf("return = %d, want boolean", d.Return)
	}
}

// --- Mode rules and the feature catalog ---

func TestWalkValueRejectsBareFuture(t *testing.T) {
	e := setup(t, analyzer.Options{})

	_, err := e.w.WalkValue(e.m.Promise(e.m.String()))
	var unsup *analyzer.UnsupportedError
	if !errors.As(err, &unsup) {
		t.Fatalf("err = %v, want UnsupportedError", err)
	}
	if unsup.Feature != analyzer.FeatureBareFuture || unsup.Mode != analyzer.ModeValue {
		t.Fatalf("feature/mode = %q/%q", unsup.Feature, unsup.Mode)
	}
}

func TestWalkValueAcceptsPlainClass(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").Field("x", e.m.Number(), 0).Ctor(nil)
	if _, err := e.w.WalkValue(point.Type()); err != nil {
		t.Fatalf("WalkValue: %v", err)
	}
}

func TestWalkReturnRejectsInterface(t *testing.T) {
	e := setup(t, analyzer.Options{})

	shape := e.m.Object("Shape", "./geometry").Field("area", e.m.Number(), 0)
	_, err := e.w.WalkReturn(shape.Type())
	var unsup *analyzer.UnsupportedError
	if !errors.As(err, &unsup) {
		t.Fatalf("err = %v, want UnsupportedError", err)
	}
	if unsup.Feature != analyzer.FeatureAbstractReturn || unsup.Mode != analyzer.ModeReturn {
		t.Fatalf("feature/mode = %q/%q", unsup.Feature, unsup.Mode)
	}
}

func TestWalkReturnRejectsIntersection(t *testing.T) {
	e := setup(t, analyzer.Options{})

	a := e.m.Object("A", "./traits").Field("a", e.m.String(), 0)
	b := e.m.Object("B", "./traits").Field("b", e.m.String(), 0)
	_, err := e.w.WalkReturn(e.m.Intersection(a.Type(), b.Type()))
	var unsup *analyzer.UnsupportedError
	if !errors.As(err, &unsup) || unsup.Feature != analyzer.FeatureAbstractReturn {
		t.Fatalf("err = %v, want abstract-return error", err)
	}
}

func TestWalkReturnAcceptsFuture(t *testing.T) {
	e := setup(t, analyzer.Options{})

	id, err := e.w.WalkReturn(e.m.Promise(e.m.Number()))
	if err != nil {
		t.Fatalf("WalkReturn: %v", err)
	}
	assertKind(t, e.desc(t, id), descriptor.KindFuture)
}

func TestWalkFeatureCatalog(t *testing.T) {
	e := setup(t, analyzer.Options{})

	cases := []struct {
		name string
		want analyzer.Feature
	}{
		{"Buffer", analyzer.FeatureBinaryBuffer},
		{"Uint8Array", analyzer.FeatureBinaryBuffer},
		{"FileHandle", analyzer.FeatureFileHandle},
		{"Generator", analyzer.FeatureGenerator},
		{"URL", analyzer.FeatureURL},
	}
	for _, c := range cases {
		_, err := e.w.WalkType(e.m.Native(c.name))
		var unsup *analyzer.UnsupportedError
		if !errors.As(err, &unsup) {
			t.Errorf("%s: err = %v, want UnsupportedError", c.name, err)
			continue
		}
		if unsup.Feature != c.want {
			t.Errorf("%s: feature = %q, want %q", c.name, unsup.Feature, c.want)
		}
	}
}

func TestWalkCatalogInsideClassAborts(t *testing.T) {
	e := setup(t, analyzer.Options{})

	upload := e.m.Object("Upload", "./files").
		Field("payload", e.m.Native("Buffer"), 0).
		Ctor(nil)

	_, err := e.w.WalkType(upload.Type())
	var unsup *analyzer.UnsupportedError
	if !errors.As(err, &unsup) || unsup.Feature != analyzer.FeatureBinaryBuffer {
		t.Fatalf("err = %v, want binary-buffer error", err)
	}
}

func TestWalkCatalogAsUnusedGenericArgumentAborts(t *testing.T) {
	e := setup(t, analyzer.Options{})

	// No member mentions T, so the argument is first walked when the
	// substitutions are recorded. It must still surface the catalog error.
	tp := e.m.TypeParam("T", nil)
	box := e.m.Object("Box", "./box").
		TypeParams(tp).
		Field("size", e.m.Number(), 0).
		Ctor(nil)

	_, err := e.w.WalkType(e.m.Instantiate(box.Type(), e.m.Native("Buffer")))
	var unsup *analyzer.UnsupportedError
	if !errors.As(err, &unsup) || unsup.Feature != analyzer.FeatureBinaryBuffer {
		t.Fatalf("err = %v, want binary-buffer error", err)
	}
}

// --- Depth limit ---

func TestWalkDepthLimitTruncatesToObject(t *testing.T) {
	e := setup(t, analyzer.Options{DepthLimit: 2})

	deep := e.m.ArrayOf(e.m.ArrayOf(e.m.ArrayOf(e.m.String())))
	d := e.desc(t, e.walk(t, deep))
	assertKind(t, d, descriptor.KindArray)
	inner := e.desc(t, d.Element)
	assertKind(t, inner, descriptor.KindArray)
	if inner.Element != e.sys.Object.UID {
		t.Fatalf("truncated element = %d, want generic object", inner.Element)
	}
}

// --- Emission order ---

func TestRecordsInAllocationOrder(t *testing.T) {
	e := setup(t, analyzer.Options{})

	point := e.m.Object("Point", "./geometry").Field("x", e.m.Number(), 0).Ctor(nil)
	e.walk(t, point.Type())
	e.walk(t, e.m.ArrayOf(point.Type()))
	if err := e.w.ResolveAliases(); err != nil {
		t.Fatalf("ResolveAliases: %v", err)
	}

	recs := e.w.Records()
	for i := 1; i < len(recs); i++ {
		if recs[i].UID <= recs[i-1].UID {
			t.Fatalf("records out of allocation order at %d: %d after %d", i, recs[i].UID, recs[i-1].UID)
		}
	}
}

func TestRaiseFloorShiftsAllocations(t *testing.T) {
	e := setup(t, analyzer.Options{})

	e.w.RaiseFloor(5000)
	id := e.walk(t, e.m.Object("Late", "./late").Ctor(nil).Type())
	if id <= 5000 {
		t.Fatalf("uid = %d, want above raised floor", id)
	}
}
