// Package analyzer implements the type-graph traversal engine: a recursive
// walk over the front end's type system that produces a deduplicated arena
// of serializable descriptors. It is the compile-time half of the bridge —
// it only describes shapes, it never evaluates code.
package analyzer

import (
	"fmt"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/diagnostic"
	"github.com/tsbridge/tsbridge/internal/typesys"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// DefaultDepthLimit bounds transitive discovery hops before a type is
// truncated to the generic object descriptor. Prevents stack overflow from
// infinitely expanding types.
const DefaultDepthLimit = 20

// substMap resolves generic type parameters to their supplied arguments.
// Keys are the parameter types' identities.
type substMap map[typesys.TypeID]typesys.Type

// Walker traverses types reachable from one source file's call sites and
// owns the pass-local mutable state: the record arena, the structural cache
// and the user-namespace allocator. It must not be shared across goroutines;
// traversal is single-threaded by design.
//
// Scope decision: one Walker per source file. Call sites within a file
// converge on one UID per structural type; system types share fixed UIDs
// across all files via the SystemTable.
type Walker struct {
	refl   typesys.Reflector
	system *SystemTable
	alloc  *uid.Allocator
	diags  *diagnostic.Collector

	records map[uid.ID]*descriptor.Record
	order   []uid.ID // allocation order, for deterministic emission
	cache   map[string]uid.ID
	aliases map[uid.ID]uid.ID
	// backing dedupes Map descriptors by (key, value) so Record<K,V> and
	// structurally equivalent index-signature objects converge.
	backing map[[2]uid.ID]uid.ID

	depthLimit int
	depth      int
	mode       Mode
}

// Options tunes a Walker.
type Options struct {
	// DepthLimit overrides DefaultDepthLimit when positive.
	DepthLimit int
	// Diagnostics receives soft warnings; nil discards them.
	Diagnostics *diagnostic.Collector
}

// NewWalker creates a walker over the given reflection capability. The
// system table is shared between walkers so primitive UIDs agree across
// files; pass the same table for every file of one build.
func NewWalker(refl typesys.Reflector, system *SystemTable, opts Options) *Walker {
	w := &Walker{
		refl:       refl,
		system:     system,
		alloc:      uid.NewAllocator(uid.NamespaceUser),
		diags:      opts.Diagnostics,
		records:    make(map[uid.ID]*descriptor.Record),
		cache:      make(map[string]uid.ID),
		aliases:    make(map[uid.ID]uid.ID),
		backing:    make(map[[2]uid.ID]uid.ID),
		depthLimit: DefaultDepthLimit,
		mode:       ModeType,
	}
	if opts.DepthLimit > 0 {
		w.depthLimit = opts.DepthLimit
	}
	for _, rec := range system.all() {
		w.records[rec.UID] = rec
		w.order = append(w.order, rec.UID)
	}
	return w
}

// RaiseFloor advances the user-namespace counter past an externally known
// minimum, for merging output across passes.
func (w *Walker) RaiseFloor(n uid.ID) { w.alloc.RaiseFloor(n) }

// WalkValue traverses the type of a value exposed at a call site. A bare
// future as an argument value is a catalog error: the remote side cannot
// hold an unresolved promise.
func (w *Walker) WalkValue(t typesys.Type) (uid.ID, error) {
	if name, arity := w.containerShape(t); name == "Promise" && arity == 1 {
		return uid.None, &UnsupportedError{
			Feature:  FeatureBareFuture,
			Mode:     ModeValue,
			TypeName: displayName(t),
		}
	}
	return w.walkRoot(t, ModeValue)
}

// WalkReturn traverses a call's declared output type. Interface and
// intersection results are catalog errors: the runtime cannot construct a
// value for them.
func (w *Walker) WalkReturn(t typesys.Type) (uid.ID, error) {
	id, err := w.walkRoot(t, ModeReturn)
	if err != nil {
		return uid.None, err
	}
	if rec := w.records[id]; rec != nil && rec.Desc != nil {
		switch rec.Desc.Kind {
		case descriptor.KindInterface, descriptor.KindIntersection:
			return uid.None, &UnsupportedError{
				Feature:  FeatureAbstractReturn,
				Mode:     ModeReturn,
				TypeName: displayName(t),
			}
		}
	}
	return id, nil
}

// WalkType traverses a type discovered outside any call-site position.
func (w *Walker) WalkType(t typesys.Type) (uid.ID, error) {
	return w.walkRoot(t, ModeType)
}

func (w *Walker) walkRoot(t typesys.Type, mode Mode) (uid.ID, error) {
	prev := w.mode
	w.mode = mode
	defer func() { w.mode = prev }()
	return w.walk(t, nil)
}

// walk returns the UID of t's descriptor, allocating and resolving it on
// first sight. This is the single entry point every nested reference
// recurses through.
func (w *Walker) walk(t typesys.Type, subst substMap) (uid.ID, error) {
	if t == nil {
		return w.system.Object.UID, nil
	}

	if w.depth >= w.depthLimit {
		w.debugf("depth limit reached at %s, truncating to object", displayName(t))
		return w.system.Object.UID, nil
	}
	w.depth++
	defer func() { w.depth-- }()

	flags := t.Flags()

	// Type parameters resolve through the substitution map, then the
	// declared constraint, and finally the generic object type.
	if flags&typesys.FlagsTypeParameter != 0 {
		if arg, ok := subst[t.ID()]; ok {
			return w.walk(arg, subst)
		}
		if c := w.refl.BaseConstraint(t); c != nil {
			return w.walk(c, subst)
		}
		return w.system.Object.UID, nil
	}

	// Indexed-access types resolve via the effective member type.
	if flags&typesys.FlagsIndexedAccess != 0 {
		if ap := w.refl.ApparentType(t); ap != nil && ap != t {
			return w.walk(ap, subst)
		}
		w.debugf("indexed access %s has no apparent type, falling back to object", displayName(t))
		return w.system.Object.UID, nil
	}

	// Primitive fast path: shared pre-allocated descriptors, never
	// re-created. Aliases must be unwrapped first, so only flag-pure
	// primitives take it.
	if w.refl.AliasTarget(t) == nil && flags&typesys.FlagsLiteral == 0 && flags&typesys.FlagsEnum == 0 {
		if rec := w.system.primitive(flags); rec != nil {
			return rec.UID, nil
		}
	}

	key := w.cacheKey(t)
	if id, ok := w.cache[key]; ok {
		return w.canonical(id), nil
	}

	// Install a placeholder under the key before recursing into members.
	// Self-referential graphs terminate because the recursive walk hits
	// the cache entry and returns this UID.
	id := w.alloc.Next()
	rec := &descriptor.Record{UID: id, Placeholder: true}
	w.records[id] = rec
	w.order = append(w.order, id)
	w.cache[key] = id

	got, err := w.resolve(t, subst, rec)
	if err != nil {
		return uid.None, err
	}
	if got != id {
		// Resolution collapsed to an existing record (alias unwrap,
		// boolean collapse, conditional dedup). Point the cache at the
		// canonical UID; the placeholder becomes an alias slot that the
		// post-pass rewrites and drops.
		w.aliases[id] = got
		w.cache[key] = got
		return got, nil
	}
	rec.Placeholder = false
	return id, nil
}

// resolve dispatches a non-primitive type, writing the finalized descriptor
// into rec or returning the UID of an existing equivalent record. Matches
// are tried in fixed precedence order; anything unmatched falls through to
// the class/object builder.
func (w *Walker) resolve(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	// (1) Unwrap type aliases to the aliased type.
	if target := w.refl.AliasTarget(t); target != nil {
		return w.walk(target, subst)
	}

	flags := t.Flags()

	// (2) Literal kinds.
	if flags&typesys.FlagsLiteral != 0 || flags&typesys.FlagsEnumLiteral != 0 {
		rec.Desc = literalDesc(rec.UID, t)
		return rec.UID, nil
	}

	// (3) Enumerated-member types.
	if flags&typesys.FlagsEnum != 0 {
		return w.resolveEnum(t, rec)
	}

	// (4) Union decomposition.
	if flags&typesys.FlagsUnion != 0 {
		return w.resolveUnion(t.Members(), subst, rec)
	}

	// (5) Intersection decomposition: same ordering rule, no boolean
	// collapse.
	if flags&typesys.FlagsIntersection != 0 {
		return w.resolveIntersection(t.Members(), subst, rec)
	}

	// Conditional types resolve to the union of both branches.
	if whenTrue, whenFalse, ok := w.refl.ConditionalBranches(t); ok {
		return w.resolveUnion([]typesys.Type{whenTrue, whenFalse}, subst, rec)
	}

	// (6) Homogeneous indexable.
	if w.refl.IsArray(t) {
		return w.resolveArray(t, subst, rec)
	}

	// (7) Fixed-arity heterogeneous indexable.
	if w.refl.IsTuple(t) {
		return w.resolveTuple(t, subst, rec)
	}

	// (8) Parameterized well-known containers, matched by name and arity.
	if name, arity := w.containerShape(t); name != "" {
		switch {
		case name == "Promise" && arity == 1:
			return w.resolveFuture(t, subst, rec)
		case name == "Set" && arity == 1:
			return w.resolveSet(t, subst, rec)
		case name == "Map" && arity == 2:
			return w.resolveMap(t, subst, rec)
		case name == "Record" && arity == 2:
			return w.resolveRecord(t, subst, rec)
		}
	}

	// Not-yet-supported platform shapes abort the pass.
	if feat, ok := catalogFeature(t); ok {
		return uid.None, &UnsupportedError{Feature: feat, Mode: w.mode, TypeName: displayName(t)}
	}

	// Plain function types: call signatures and no properties.
	if sigs := w.refl.Signatures(t, typesys.SignatureCall); len(sigs) > 0 && len(w.refl.PropertiesOf(t)) == 0 {
		return w.resolveFunction(t, sigs[0], subst, rec)
	}

	// Everything else is a structural or nominal object.
	return w.buildObject(t, subst, rec)
}

func literalDesc(id uid.ID, t typesys.Type) *descriptor.Desc {
	flags := t.Flags()
	kind := "string"
	switch {
	case flags&typesys.FlagsNumberLiteral != 0:
		kind = "number"
	case flags&typesys.FlagsBooleanLiteral != 0:
		kind = "boolean"
	case flags&typesys.FlagsBigIntLiteral != 0:
		kind = "bigint"
	case flags&typesys.FlagsEnumLiteral != 0:
		switch t.LiteralValue().(type) {
		case string:
			kind = "string"
		default:
			kind = "number"
		}
	}
	return &descriptor.Desc{
		Kind:         descriptor.KindLiteral,
		UID:          id,
		LiteralKind:  kind,
		LiteralValue: t.LiteralValue(),
	}
}

func (w *Walker) resolveEnum(t typesys.Type, rec *descriptor.Record) (uid.ID, error) {
	members := w.refl.EnumMembers(t)
	keys := make([]string, len(members))
	values := make([]any, len(members))
	for i, m := range members {
		keys[i] = m.Name
		values[i] = m.Value
	}
	rec.Desc = &descriptor.Desc{
		Kind:       descriptor.KindEnum,
		UID:        rec.UID,
		Name:       displayName(t),
		Doc:        docOf(t),
		EnumKeys:   keys,
		EnumValues: values,
	}
	return rec.UID, nil
}

// resolveUnion walks union members preserving source order, deduplicating
// members that resolve to the same record, with two special rules: nullish
// members move to the end, and a union of exactly {true, false} literals
// collapses to the plain boolean primitive.
func (w *Walker) resolveUnion(members []typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	if isBooleanPair(members) {
		return w.system.Boolean.UID, nil
	}

	var refs, nullish []uid.ID
	seen := make(map[uid.ID]bool, len(members))
	for _, m := range members {
		id, err := w.walk(m, subst)
		if err != nil {
			return uid.None, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if m.Flags()&typesys.FlagsNullish != 0 {
			nullish = append(nullish, id)
		} else {
			refs = append(refs, id)
		}
	}
	refs = append(refs, nullish...)

	if len(refs) == 1 {
		return refs[0], nil
	}
	rec.Desc = &descriptor.Desc{
		Kind:    descriptor.KindUnion,
		UID:     rec.UID,
		Members: refs,
	}
	return rec.UID, nil
}

// unionOf resolves an ad-hoc union of types through the same rules as a
// source-level union (dedup, single-member unwrap, nullish ordering,
// boolean collapse), allocating the union slot the way walk does. A
// collapsed slot becomes an alias the post-pass drops.
func (w *Walker) unionOf(members []typesys.Type, subst substMap) (uid.ID, error) {
	id := w.alloc.Next()
	rec := &descriptor.Record{UID: id, Placeholder: true}
	w.records[id] = rec
	w.order = append(w.order, id)

	got, err := w.resolveUnion(members, subst, rec)
	if err != nil {
		return uid.None, err
	}
	if got != id {
		w.aliases[id] = got
		return got, nil
	}
	rec.Placeholder = false
	return id, nil
}

func (w *Walker) resolveIntersection(members []typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	var refs, nullish []uid.ID
	for _, m := range members {
		id, err := w.walk(m, subst)
		if err != nil {
			return uid.None, err
		}
		if m.Flags()&typesys.FlagsNullish != 0 {
			nullish = append(nullish, id)
		} else {
			refs = append(refs, id)
		}
	}
	refs = append(refs, nullish...)

	if len(refs) == 1 {
		return refs[0], nil
	}
	rec.Desc = &descriptor.Desc{
		Kind:    descriptor.KindIntersection,
		UID:     rec.UID,
		Members: refs,
	}
	return rec.UID, nil
}

func (w *Walker) resolveArray(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	elem := w.system.Object.UID
	if args := w.refl.TypeArguments(t); len(args) > 0 {
		id, err := w.walk(args[0], subst)
		if err != nil {
			return uid.None, err
		}
		elem = id
	}
	rec.Desc = &descriptor.Desc{Kind: descriptor.KindArray, UID: rec.UID, Element: elem}
	return rec.UID, nil
}

// resolveTuple builds a Tuple descriptor. A variadic tail makes positions
// unaddressable, so such tuples degrade to an Array of the union of all
// positional types.
func (w *Walker) resolveTuple(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	elems := w.refl.TupleElements(t)

	variadic := false
	for _, e := range elems {
		if e.Rest {
			variadic = true
			break
		}
	}

	if variadic {
		members := make([]typesys.Type, 0, len(elems))
		for _, e := range elems {
			members = append(members, e.Type)
		}
		elem, err := w.unionOf(members, subst)
		if err != nil {
			return uid.None, err
		}
		rec.Desc = &descriptor.Desc{Kind: descriptor.KindArray, UID: rec.UID, Element: elem}
		return rec.UID, nil
	}

	refs := make([]uid.ID, 0, len(elems))
	for _, e := range elems {
		id, err := w.walk(e.Type, subst)
		if err != nil {
			return uid.None, err
		}
		refs = append(refs, id)
	}
	rec.Desc = &descriptor.Desc{Kind: descriptor.KindTuple, UID: rec.UID, Elements: refs}
	return rec.UID, nil
}

func (w *Walker) resolveFuture(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	inner, err := w.walk(w.refl.TypeArguments(t)[0], subst)
	if err != nil {
		return uid.None, err
	}
	rec.Desc = &descriptor.Desc{Kind: descriptor.KindFuture, UID: rec.UID, Element: inner}
	return rec.UID, nil
}

func (w *Walker) resolveSet(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	elem, err := w.walk(w.refl.TypeArguments(t)[0], subst)
	if err != nil {
		return uid.None, err
	}
	rec.Desc = &descriptor.Desc{Kind: descriptor.KindSet, UID: rec.UID, Element: elem}
	return rec.UID, nil
}

func (w *Walker) resolveMap(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	args := w.refl.TypeArguments(t)
	key, err := w.walk(args[0], subst)
	if err != nil {
		return uid.None, err
	}
	val, err := w.walk(args[1], subst)
	if err != nil {
		return uid.None, err
	}
	// If a Map for this pair already exists (from a Record or an index
	// signature), converge on it.
	if existing, ok := w.backing[[2]uid.ID{key, val}]; ok {
		return existing, nil
	}
	rec.Desc = &descriptor.Desc{Kind: descriptor.KindMap, UID: rec.UID, Key: key, Value: val}
	w.backing[[2]uid.ID{key, val}] = rec.UID
	return rec.UID, nil
}

// resolveRecord builds a Record descriptor that shares a backing Map keyed
// by the same (key, value) pair, so Record<K,V> and structurally equivalent
// index-signature objects converge on one Map identity.
func (w *Walker) resolveRecord(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	args := w.refl.TypeArguments(t)
	key, err := w.walk(args[0], subst)
	if err != nil {
		return uid.None, err
	}
	val, err := w.walk(args[1], subst)
	if err != nil {
		return uid.None, err
	}
	backing := w.backingMapFor(key, val)
	rec.Desc = &descriptor.Desc{
		Kind:       descriptor.KindRecord,
		UID:        rec.UID,
		Key:        key,
		Value:      val,
		BackingMap: backing,
	}
	return rec.UID, nil
}

// backingMapFor returns the shared Map descriptor for a (key, value) pair,
// creating it on first use.
func (w *Walker) backingMapFor(key, val uid.ID) uid.ID {
	if id, ok := w.backing[[2]uid.ID{key, val}]; ok {
		return id
	}
	id := w.alloc.Next()
	w.records[id] = &descriptor.Record{UID: id, Desc: &descriptor.Desc{
		Kind:  descriptor.KindMap,
		UID:   id,
		Key:   key,
		Value: val,
	}}
	w.order = append(w.order, id)
	w.backing[[2]uid.ID{key, val}] = id
	return id
}

func (w *Walker) resolveFunction(t typesys.Type, sig typesys.Signature, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	desc, err := w.functionDesc(rec.UID, sig, subst)
	if err != nil {
		return uid.None, err
	}
	desc.Name = displayName(t)
	if isInternalName(desc.Name) {
		desc.Name = ""
	}
	rec.Desc = desc
	return rec.UID, nil
}

// functionDesc traverses one signature into a Function descriptor payload.
func (w *Walker) functionDesc(id uid.ID, sig typesys.Signature, subst substMap) (*descriptor.Desc, error) {
	params := sig.Parameters()
	out := make([]descriptor.Param, 0, len(params))
	for _, p := range params {
		pid, err := w.walk(p.Type, subst)
		if err != nil {
			return nil, err
		}
		out = append(out, descriptor.Param{
			Name:       p.Name,
			Type:       pid,
			Optional:   p.Optional,
			Rest:       p.Rest,
			Default:    p.Default,
			HasDefault: p.HasDefault,
		})
	}
	ret, err := w.walk(sig.ReturnType(), subst)
	if err != nil {
		return nil, err
	}
	return &descriptor.Desc{
		Kind:   descriptor.KindFunction,
		UID:    id,
		Params: out,
		Return: ret,
	}, nil
}

// cacheKey computes the structural identity a type dedupes under: symbol
// identity plus the canonical text rendering, which separates distinct
// generic instantiations that share a declaration.
func (w *Walker) cacheKey(t typesys.Type) string {
	if sym := t.Symbol(); sym != nil {
		return "s:" + sym.Module() + ":" + sym.Name() + ":" + t.Text()
	}
	return fmt.Sprintf("a:%d", t.ID())
}

// canonical follows the alias chain from id to its final target.
func (w *Walker) canonical(id uid.ID) uid.ID {
	for {
		next, ok := w.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

// Lookup returns the record for a UID, nil when unknown.
func (w *Walker) Lookup(id uid.ID) *descriptor.Record {
	return w.records[id]
}

// Records returns every non-alias record in allocation order. Call
// ResolveAliases first; until then some records may still be placeholders.
func (w *Walker) Records() []*descriptor.Record {
	out := make([]*descriptor.Record, 0, len(w.order))
	for _, id := range w.order {
		if _, aliased := w.aliases[id]; aliased {
			continue
		}
		out = append(out, w.records[id])
	}
	return out
}

// containerShape returns a type's symbol name and type-argument arity for
// container matching, or ("", 0) for anonymous types.
func (w *Walker) containerShape(t typesys.Type) (string, int) {
	sym := t.Symbol()
	if sym == nil {
		return "", 0
	}
	return sym.Name(), len(w.refl.TypeArguments(t))
}

func displayName(t typesys.Type) string {
	if sym := t.Symbol(); sym != nil && sym.Name() != "" {
		return sym.Name()
	}
	return t.Text()
}

func docOf(t typesys.Type) string {
	if sym := t.Symbol(); sym != nil {
		return sym.Doc()
	}
	return ""
}

// isBooleanPair reports whether members are exactly the {true, false}
// literal pair, which renders as the plain boolean primitive.
func isBooleanPair(members []typesys.Type) bool {
	if len(members) != 2 {
		return false
	}
	var seenTrue, seenFalse bool
	for _, m := range members {
		if m.Flags()&typesys.FlagsBooleanLiteral == 0 {
			return false
		}
		if v, ok := m.LiteralValue().(bool); ok {
			if v {
				seenTrue = true
			} else {
				seenFalse = true
			}
		}
	}
	return seenTrue && seenFalse
}

func (w *Walker) debugf(format string, args ...any) {
	if w.diags != nil {
		w.diags.Info(diagnostic.CategoryTypeUnsupported, "", 0, fmt.Sprintf(format, args...))
	}
}

func (w *Walker) warnf(format string, args ...any) {
	if w.diags != nil {
		w.diags.Warn(diagnostic.CategoryMemberDropped, "", 0, fmt.Sprintf(format, args...))
	}
}
