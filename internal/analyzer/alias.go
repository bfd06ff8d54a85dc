package analyzer

import (
	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// ResolveAliases collapses every indirection introduced during traversal
// (generic substitution, conditional resolution, alias unwrap): each
// finalized descriptor's nested references are rewritten to their canonical
// targets. After this pass no emitted descriptor points at a placeholder,
// an alias slot or a non-existent UID; a violation is reported as an
// internal error.
//
// Records are never mutated again once this pass completes.
func (w *Walker) ResolveAliases() error {
	for _, id := range w.order {
		if _, aliased := w.aliases[id]; aliased {
			continue
		}
		rec := w.records[id]
		if rec.Placeholder || rec.Desc == nil {
			return &danglingRefError{from: int64(id), to: int64(id)}
		}
		if err := w.rewriteRefs(rec.Desc); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) rewriteRefs(d *descriptor.Desc) error {
	fix := func(ref *uid.ID) error {
		if *ref == uid.None {
			return nil
		}
		c := w.canonical(*ref)
		target, ok := w.records[c]
		if !ok || target.Placeholder || target.Desc == nil {
			return &danglingRefError{from: int64(d.UID), to: int64(*ref)}
		}
		*ref = c
		return nil
	}

	for i := range d.Fields {
		if err := fix(&d.Fields[i].Type); err != nil {
			return err
		}
	}
	for i := range d.Methods {
		if err := fix(&d.Methods[i].Function); err != nil {
			return err
		}
	}
	for i := range d.Bases {
		if err := fix(&d.Bases[i]); err != nil {
			return err
		}
	}
	for i := range d.Ctor {
		if err := fix(&d.Ctor[i].Type); err != nil {
			return err
		}
	}
	for i := range d.Params {
		if err := fix(&d.Params[i].Type); err != nil {
			return err
		}
	}
	if err := fix(&d.Return); err != nil {
		return err
	}
	for i := range d.Members {
		if err := fix(&d.Members[i]); err != nil {
			return err
		}
	}
	for i := range d.Elements {
		if err := fix(&d.Elements[i]); err != nil {
			return err
		}
	}
	for i := range d.Substitutions {
		if err := fix(&d.Substitutions[i].Type); err != nil {
			return err
		}
	}
	if err := fix(&d.Element); err != nil {
		return err
	}
	if err := fix(&d.Key); err != nil {
		return err
	}
	if err := fix(&d.Value); err != nil {
		return err
	}
	if err := fix(&d.BackingMap); err != nil {
		return err
	}
	if d.Index != nil {
		if err := fix(&d.Index.Key); err != nil {
			return err
		}
		if err := fix(&d.Index.Value); err != nil {
			return err
		}
		if err := fix(&d.Index.BackingMap); err != nil {
			return err
		}
	}
	return nil
}
