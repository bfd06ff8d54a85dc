// Package codegen turns finalized descriptor arenas into the per-call-site
// context payloads the runtime consumes. Serialization is deterministic:
// identical inputs produce byte-identical output, which keeps builds
// reproducible and golden tests meaningful.
package codegen

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// SerializeDescriptor renders one descriptor into its canonical wire form.
// Field order is fixed per kind and optional fields are omitted when empty,
// so the bytes of a descriptor depend only on its content.
func SerializeDescriptor(d *descriptor.Desc) (string, error) {
	var buf bytes.Buffer
	w := &tokenWriter{enc: jsontext.NewEncoder(&buf)}
	w.desc(d)
	if w.err != nil {
		return "", w.err
	}
	// The streaming encoder terminates a top-level value with a newline;
	// descriptor strings embed in payloads, so strip it.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// tokenWriter wraps a jsontext encoder with sticky error handling, so the
// emission code reads as a flat sequence of writes.
type tokenWriter struct {
	enc *jsontext.Encoder
	err error
}

func (w *tokenWriter) tok(t jsontext.Token) {
	if w.err == nil {
		w.err = w.enc.WriteToken(t)
	}
}

func (w *tokenWriter) field(name string) { w.tok(jsontext.String(name)) }

func (w *tokenWriter) str(name, v string) {
	w.field(name)
	w.tok(jsontext.String(v))
}

func (w *tokenWriter) num(name string, v int64) {
	w.field(name)
	w.tok(jsontext.Int(v))
}

func (w *tokenWriter) boolean(name string, v bool) {
	w.field(name)
	w.tok(jsontext.Bool(v))
}

func (w *tokenWriter) ref(name string, id uid.ID) {
	w.num(name, int64(id))
}

func (w *tokenWriter) refs(name string, ids []uid.ID) {
	w.field(name)
	w.tok(jsontext.BeginArray)
	for _, id := range ids {
		w.tok(jsontext.Int(int64(id)))
	}
	w.tok(jsontext.EndArray)
}

// value writes a constant of any supported literal type. Unknown types are
// stringified rather than dropped; a lossy descriptor beats a missing one.
func (w *tokenWriter) value(v any) {
	switch x := v.(type) {
	case nil:
		w.tok(jsontext.Null)
	case string:
		w.tok(jsontext.String(x))
	case bool:
		w.tok(jsontext.Bool(x))
	case float64:
		w.tok(jsontext.Float(x))
	case float32:
		w.tok(jsontext.Float(float64(x)))
	case int:
		w.tok(jsontext.Int(int64(x)))
	case int64:
		w.tok(jsontext.Int(x))
	default:
		w.tok(jsontext.String(fmt.Sprintf("%v", x)))
	}
}

func (w *tokenWriter) desc(d *descriptor.Desc) {
	w.tok(jsontext.BeginObject)
	w.str("kind", string(d.Kind))
	w.ref("uid", d.UID)
	if d.Name != "" {
		w.str("name", d.Name)
	}
	if d.Doc != "" {
		w.str("doc", d.Doc)
	}

	switch d.Kind {
	case descriptor.KindPrimitive:
		w.str("primitive", d.Primitive)
		if d.System {
			w.boolean("system", true)
		}

	case descriptor.KindLiteral:
		w.str("literalKind", d.LiteralKind)
		w.field("literalValue")
		w.value(d.LiteralValue)

	case descriptor.KindClass, descriptor.KindInterface:
		if d.Module != "" {
			w.str("module", d.Module)
		}
		w.fields(d.Fields)
		w.methods(d.Methods)
		if d.Kind == descriptor.KindClass {
			w.refs("bases", d.Bases)
			if d.Ctor != nil {
				w.params("ctor", d.Ctor)
			}
			if len(d.Substitutions) > 0 {
				w.substitutions(d.Substitutions)
			}
		}
		if d.Index != nil {
			w.index(d.Index)
		}

	case descriptor.KindFunction:
		w.params("params", d.Params)
		w.ref("return", d.Return)

	case descriptor.KindUnion, descriptor.KindIntersection:
		w.refs("members", d.Members)

	case descriptor.KindArray, descriptor.KindSet, descriptor.KindFuture:
		w.ref("element", d.Element)

	case descriptor.KindMap:
		w.ref("key", d.Key)
		w.ref("value", d.Value)

	case descriptor.KindRecord:
		w.ref("key", d.Key)
		w.ref("value", d.Value)
		w.ref("backingMap", d.BackingMap)

	case descriptor.KindTuple:
		w.refs("elements", d.Elements)

	case descriptor.KindEnum:
		w.field("keys")
		w.tok(jsontext.BeginArray)
		for _, k := range d.EnumKeys {
			w.tok(jsontext.String(k))
		}
		w.tok(jsontext.EndArray)
		w.field("values")
		w.tok(jsontext.BeginArray)
		for _, v := range d.EnumValues {
			w.value(v)
		}
		w.tok(jsontext.EndArray)

	default:
		if w.err == nil {
			w.err = fmt.Errorf("descriptor %d has unknown kind %q", d.UID, d.Kind)
		}
	}

	w.tok(jsontext.EndObject)
}

func (w *tokenWriter) fields(fields []descriptor.Field) {
	w.field("fields")
	w.tok(jsontext.BeginArray)
	for _, f := range fields {
		w.tok(jsontext.BeginObject)
		w.str("name", f.Name)
		w.ref("type", f.Type)
		if f.Static {
			w.boolean("static", true)
		}
		if f.Optional {
			w.boolean("optional", true)
		}
		if f.Private {
			w.boolean("private", true)
		}
		w.tok(jsontext.EndObject)
	}
	w.tok(jsontext.EndArray)
}

func (w *tokenWriter) methods(methods []descriptor.Method) {
	w.field("methods")
	w.tok(jsontext.BeginArray)
	for _, m := range methods {
		w.tok(jsontext.BeginObject)
		w.str("name", m.Name)
		w.ref("function", m.Function)
		if m.Static {
			w.boolean("static", true)
		}
		if m.Private {
			w.boolean("private", true)
		}
		w.tok(jsontext.EndObject)
	}
	w.tok(jsontext.EndArray)
}

func (w *tokenWriter) params(name string, params []descriptor.Param) {
	w.field(name)
	w.tok(jsontext.BeginArray)
	for _, p := range params {
		w.tok(jsontext.BeginObject)
		w.str("name", p.Name)
		w.ref("type", p.Type)
		if p.Optional {
			w.boolean("optional", true)
		}
		if p.Rest {
			w.boolean("rest", true)
		}
		if p.HasDefault {
			w.field("default")
			w.value(p.Default)
		}
		w.tok(jsontext.EndObject)
	}
	w.tok(jsontext.EndArray)
}

func (w *tokenWriter) index(idx *descriptor.IndexSignature) {
	w.field("index")
	w.tok(jsontext.BeginObject)
	w.ref("key", idx.Key)
	w.ref("value", idx.Value)
	w.ref("backingMap", idx.BackingMap)
	w.tok(jsontext.EndObject)
}

func (w *tokenWriter) substitutions(subs []descriptor.Substitution) {
	w.field("substitutions")
	w.tok(jsontext.BeginArray)
	for _, s := range subs {
		w.tok(jsontext.BeginObject)
		w.str("param", s.Param)
		w.ref("type", s.Type)
		w.tok(jsontext.EndObject)
	}
	w.tok(jsontext.EndArray)
}
