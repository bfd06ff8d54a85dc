package analyzer

import (
	"fmt"
	"strings"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/typesys"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// platformReservedStatics are static member names owned by the platform;
// they carry no user data and are skipped during member traversal.
var platformReservedStatics = map[string]bool{
	"prototype":   true,
	"constructor": true,
	"name":        true,
	"length":      true,
	"caller":      true,
	"arguments":   true,
}

// catalog maps platform symbol names onto the not-yet-supported feature
// catalog. These shapes have no faithful remote stand-in.
var catalog = map[string]Feature{
	"Buffer":            FeatureBinaryBuffer,
	"ArrayBuffer":       FeatureBinaryBuffer,
	"SharedArrayBuffer": FeatureBinaryBuffer,
	"DataView":          FeatureBinaryBuffer,
	"Uint8Array":        FeatureBinaryBuffer,
	"Int8Array":         FeatureBinaryBuffer,
	"Uint16Array":       FeatureBinaryBuffer,
	"Int16Array":        FeatureBinaryBuffer,
	"Uint32Array":       FeatureBinaryBuffer,
	"Int32Array":        FeatureBinaryBuffer,
	"Float32Array":      FeatureBinaryBuffer,
	"Float64Array":      FeatureBinaryBuffer,
	"BigInt64Array":     FeatureBinaryBuffer,
	"BigUint64Array":    FeatureBinaryBuffer,
	"FileHandle":        FeatureFileHandle,
	"ReadStream":        FeatureFileHandle,
	"WriteStream":       FeatureFileHandle,
	"Generator":         FeatureGenerator,
	"AsyncGenerator":    FeatureGenerator,
	"URL":               FeatureURL,
	"URLSearchParams":   FeatureURL,
}

func catalogFeature(t typesys.Type) (Feature, bool) {
	sym := t.Symbol()
	if sym == nil {
		return "", false
	}
	feat, ok := catalog[sym.Name()]
	return feat, ok
}

// isInternalName reports names the front end synthesizes for anonymous
// structural types; they must not leak into descriptors.
func isInternalName(name string) bool {
	if name == "" || name == "__type" || name == "__object" || name == "__function" {
		return true
	}
	return name[0] == '\xfe'
}

// buildObject produces a full structural descriptor for a nominal or
// anonymous object type: fields, methods, bases, constructor schema, index
// signature and generic substitutions.
func (w *Walker) buildObject(t typesys.Type, subst substMap, rec *descriptor.Record) (uid.ID, error) {
	name := displayName(t)
	if isInternalName(name) {
		name = fmt.Sprintf("AnonymousType%d", rec.UID)
	}

	// The universal root object carries every platform member and nothing
	// of the user's; short-circuit to the generic object system type.
	if sym := t.Symbol(); sym != nil && (sym.Name() == "Object" || sym.Name() == "globalThis") {
		return w.system.Object.UID, nil
	}

	// Interface-like means no way to construct: no construct signature.
	ctorSigs := w.refl.Signatures(t, typesys.SignatureConstruct)
	interfaceLike := len(ctorSigs) == 0

	subst, err := w.substitutionsFor(t, subst, name)
	if err != nil {
		return uid.None, err
	}

	desc := &descriptor.Desc{
		UID:    rec.UID,
		Name:   name,
		Doc:    docOf(t),
		Module: moduleOf(t),
	}

	enumLike := t.Flags()&typesys.FlagsEnum != 0
	if !enumLike {
		if err := w.buildMembers(desc, w.refl.PropertiesOf(t), false, subst); err != nil {
			return uid.None, err
		}
	}
	if err := w.buildMembers(desc, w.refl.StaticsOf(t), true, subst); err != nil {
		return uid.None, err
	}

	if !interfaceLike {
		if err := w.buildBases(desc, t, subst); err != nil {
			return uid.None, err
		}
		if len(ctorSigs) > 0 {
			ctor, err := w.ctorSchema(ctorSigs[0], subst)
			if err != nil {
				return uid.None, err
			}
			desc.Ctor = ctor
		}
	}

	if err := w.buildIndexSignature(desc, t, subst, name); err != nil {
		return uid.None, err
	}

	if interfaceLike {
		desc.Kind = descriptor.KindInterface
		desc.Bases = nil
		desc.Ctor = nil
	} else {
		desc.Kind = descriptor.KindClass
		subs, err := w.recordSubstitutions(t, subst)
		if err != nil {
			return uid.None, err
		}
		desc.Substitutions = subs
	}

	rec.Desc = desc
	return rec.UID, nil
}

// substitutionsFor builds the type-parameter substitution map threaded
// through member and constructor traversal. A parameter/argument count
// mismatch is a fatal configuration error, never silently truncated.
func (w *Walker) substitutionsFor(t typesys.Type, outer substMap, name string) (substMap, error) {
	params := w.refl.TypeParameters(t)
	if len(params) == 0 {
		return outer, nil
	}
	args := w.refl.TypeArguments(t)
	if len(args) != len(params) {
		return nil, &ArityError{TypeName: name, Params: len(params), Args: len(args)}
	}
	merged := make(substMap, len(outer)+len(params))
	for k, v := range outer {
		merged[k] = v
	}
	for i, p := range params {
		merged[p.ID()] = args[i]
	}
	return merged, nil
}

// recordSubstitutions captures the resolved generic arguments for emission.
// An argument no member referenced is walked here for the first time, so a
// walk failure surfaces the same way it would from a member.
func (w *Walker) recordSubstitutions(t typesys.Type, subst substMap) ([]descriptor.Substitution, error) {
	params := w.refl.TypeParameters(t)
	if len(params) == 0 {
		return nil, nil
	}
	out := make([]descriptor.Substitution, 0, len(params))
	for _, p := range params {
		arg, ok := subst[p.ID()]
		if !ok {
			continue
		}
		id, err := w.walk(arg, subst)
		if err != nil {
			return nil, err
		}
		out = append(out, descriptor.Substitution{Param: paramName(p), Type: id})
	}
	return out, nil
}

// buildMembers classifies each member as method or field and appends it to
// the descriptor. A member with a call signature that fails to resolve to a
// function shape is dropped with a warning rather than aborting the build.
func (w *Walker) buildMembers(desc *descriptor.Desc, members []typesys.Symbol, static bool, subst substMap) error {
	for _, m := range members {
		name := m.Name()
		if static && platformReservedStatics[name] {
			continue
		}

		mt := w.refl.TypeOf(m)
		if mt == nil {
			w.warnf("member %s.%s has no resolvable type, dropped", desc.Name, name)
			continue
		}

		if sigs := w.refl.Signatures(mt, typesys.SignatureCall); len(sigs) > 0 {
			fid, err := w.walk(mt, subst)
			if err != nil {
				return err
			}
			frec := w.records[w.canonical(fid)]
			if frec == nil || frec.Desc == nil || frec.Desc.Kind != descriptor.KindFunction {
				w.warnf("member %s.%s has a call signature but resolved to a non-function shape, dropped", desc.Name, name)
				continue
			}
			desc.Methods = append(desc.Methods, descriptor.Method{
				Name:     name,
				Function: fid,
				Static:   static,
				Private:  isPrivateMember(m),
			})
			continue
		}

		fid, err := w.walk(mt, subst)
		if err != nil {
			return err
		}
		desc.Fields = append(desc.Fields, descriptor.Field{
			Name:     name,
			Type:     fid,
			Static:   static,
			Optional: m.Flags()&typesys.SymbolOptional != 0,
			Private:  isPrivateMember(m),
		})
	}
	return nil
}

// isPrivateMember resolves privacy. The declared modifier is authoritative;
// the `_`/`#` naming convention only applies when no modifier is present.
func isPrivateMember(s typesys.Symbol) bool {
	if s.Flags()&typesys.SymbolPrivate != 0 {
		return true
	}
	name := s.Name()
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#")
}

// buildBases collects base-type refs from the extends chain and any
// separately declared implements list. Recognized platform bases map onto
// existing system descriptors instead of being re-traversed.
func (w *Walker) buildBases(desc *descriptor.Desc, t typesys.Type, subst substMap) error {
	bases := append([]typesys.Type{}, w.refl.BaseTypes(t)...)
	bases = append(bases, w.refl.Implements(t)...)
	for _, b := range bases {
		if sym := b.Symbol(); sym != nil && (sym.Name() == "Object" || sym.Name() == "Function") {
			desc.Bases = append(desc.Bases, w.system.Object.UID)
			continue
		}
		id, err := w.walk(b, subst)
		if err != nil {
			return err
		}
		desc.Bases = append(desc.Bases, id)
	}
	return nil
}

// ctorSchema extracts the first construct signature into the
// constructor-argument schema.
func (w *Walker) ctorSchema(sig typesys.Signature, subst substMap) ([]descriptor.Param, error) {
	params := sig.Parameters()
	out := make([]descriptor.Param, 0, len(params))
	for _, p := range params {
		id, err := w.walk(p.Type, subst)
		if err != nil {
			return nil, err
		}
		out = append(out, descriptor.Param{
			Name:       p.Name,
			Type:       id,
			Optional:   p.Optional,
			Rest:       p.Rest,
			Default:    p.Default,
			HasDefault: p.HasDefault,
		})
	}
	return out, nil
}

// buildIndexSignature detects at most one index signature. Two signatures
// of differing key kinds on the same type cannot back a single dictionary
// and are a fatal configuration error. When present, dict-protocol metadata
// is synthesized with a backing Map shared across equivalent signatures.
func (w *Walker) buildIndexSignature(desc *descriptor.Desc, t typesys.Type, subst substMap, name string) error {
	infos := w.refl.IndexInfos(t)
	if len(infos) == 0 {
		return nil
	}
	if len(infos) > 1 {
		first := infos[0].Key.Flags()
		for _, info := range infos[1:] {
			if info.Key.Flags() != first {
				return &IndexSignatureError{TypeName: name}
			}
		}
	}
	key, err := w.walk(infos[0].Key, subst)
	if err != nil {
		return err
	}
	val, err := w.walk(infos[0].Value, subst)
	if err != nil {
		return err
	}
	desc.Index = &descriptor.IndexSignature{
		Key:        key,
		Value:      val,
		BackingMap: w.backingMapFor(key, val),
	}
	return nil
}

func moduleOf(t typesys.Type) string {
	if sym := t.Symbol(); sym != nil {
		return sym.Module()
	}
	return ""
}

func paramName(p typesys.Type) string {
	if sym := p.Symbol(); sym != nil {
		return sym.Name()
	}
	return p.Text()
}
