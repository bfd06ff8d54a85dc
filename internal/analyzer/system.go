package analyzer

import (
	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/typesys"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// SystemTable holds the shared pre-allocated descriptors for primitives.
// These are created once per table with system-namespace UIDs and never
// re-created during traversal; every walker built from the same table emits
// identical UIDs for primitives, so descriptors stay comparable across
// files. The table is immutable after construction.
type SystemTable struct {
	String    *descriptor.Record
	Number    *descriptor.Record
	Boolean   *descriptor.Record
	BigInt    *descriptor.Record
	Symbol    *descriptor.Record
	Null      *descriptor.Record
	Undefined *descriptor.Record
	Void      *descriptor.Record
	// Object is the generic object type, the terminal fallback for
	// unresolved type parameters, depth truncation and the global object.
	Object *descriptor.Record

	alloc *uid.Allocator
}

// NewSystemTable allocates the system descriptors in a fixed order, so the
// UID of each primitive is stable across passes and processes.
func NewSystemTable() *SystemTable {
	alloc := uid.NewAllocator(uid.NamespaceSystem)
	mk := func(name string) *descriptor.Record {
		id := alloc.Next()
		return &descriptor.Record{
			UID: id,
			Desc: &descriptor.Desc{
				Kind:      descriptor.KindPrimitive,
				UID:       id,
				Name:      name,
				Primitive: name,
				System:    true,
			},
		}
	}
	return &SystemTable{
		String:    mk("string"),
		Number:    mk("number"),
		Boolean:   mk("boolean"),
		BigInt:    mk("bigint"),
		Symbol:    mk("symbol"),
		Null:      mk("null"),
		Undefined: mk("undefined"),
		Void:      mk("void"),
		Object:    mk("object"),
		alloc:     alloc,
	}
}

// all returns the records in allocation order.
func (s *SystemTable) all() []*descriptor.Record {
	return []*descriptor.Record{
		s.String, s.Number, s.Boolean, s.BigInt, s.Symbol,
		s.Null, s.Undefined, s.Void, s.Object,
	}
}

// primitive maps a type's flags onto a shared system descriptor, or nil
// when the type is not a primitive kind. any, unknown and never carry no
// structure the remote side can use, so they degrade to the generic object.
func (s *SystemTable) primitive(flags typesys.Flags) *descriptor.Record {
	switch {
	case flags&typesys.FlagsString != 0:
		return s.String
	case flags&typesys.FlagsNumber != 0:
		return s.Number
	case flags&typesys.FlagsBoolean != 0:
		return s.Boolean
	case flags&typesys.FlagsBigInt != 0:
		return s.BigInt
	case flags&typesys.FlagsSymbol != 0:
		return s.Symbol
	case flags&typesys.FlagsNull != 0:
		return s.Null
	case flags&typesys.FlagsUndefined != 0:
		return s.Undefined
	case flags&typesys.FlagsVoid != 0:
		return s.Void
	case flags&(typesys.FlagsAny|typesys.FlagsUnknown|typesys.FlagsNever) != 0:
		return s.Object
	}
	return nil
}
