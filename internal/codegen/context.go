package codegen

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/remap"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// ContextEntry is one uid's slot in a payload: the binding name, the
// canonical descriptor bytes and, when the value is reachable at runtime,
// a reference the RPC layer can route live-value requests to.
type ContextEntry struct {
	Name       string
	Descriptor string
	ValueRef   string // empty means descriptor-only
}

// Payload is the generated context for one call site.
type Payload struct {
	SiteID           int
	Doc              string
	Output           uid.ID
	OutputDescriptor string
	Context          map[uid.ID]ContextEntry
	Imports          []Import
}

// Generator assembles payloads for the call sites of one source file. The
// lookup function is the walker's finalized arena; ResolveAliases must have
// run before generation.
type Generator struct {
	file   string
	lookup func(uid.ID) *descriptor.Record
	table  *remap.Table
}

// NewGenerator creates a generator for one source file.
func NewGenerator(file string, lookup func(uid.ID) *descriptor.Record, table *remap.Table) *Generator {
	return &Generator{file: file, lookup: lookup, table: table}
}

// Generate builds the payload for one call site: every descriptor reachable
// from the site's output type and scope entries, serialized, named and
// given a value reference where one can be resolved.
func (g *Generator) Generate(site descriptor.CallSite) (*Payload, error) {
	roots := make([]uid.ID, 0, len(site.Entries)+1)
	if site.Output != uid.None {
		roots = append(roots, site.Output)
	}
	for _, e := range site.Entries {
		roots = append(roots, e.Type)
	}

	reachable, err := g.collect(roots)
	if err != nil {
		return nil, err
	}

	resolver := NewRefResolver(g.file, g.table)
	ctx := make(map[uid.ID]ContextEntry, len(reachable))
	for _, id := range reachable {
		d := g.lookup(id).Desc
		serialized, err := SerializeDescriptor(d)
		if err != nil {
			return nil, err
		}
		entry := ContextEntry{Name: d.Name, Descriptor: serialized}
		if ref := resolver.ForType(d); ref != "" {
			entry.ValueRef = ref
		}
		ctx[id] = entry
	}

	// Explicit scope entries override the type-level name and reference:
	// the call site knows the exact expression the value came from.
	for _, e := range site.Entries {
		entry := ctx[e.Type]
		if e.Name != "" {
			entry.Name = e.Name
		}
		if e.Explicit {
			if ref := resolver.ForEntry(e); ref != "" {
				entry.ValueRef = ref
			}
		}
		ctx[e.Type] = entry
	}

	p := &Payload{
		SiteID:  site.ID,
		Doc:     site.Doc,
		Output:  site.Output,
		Context: ctx,
		Imports: resolver.Imports(),
	}
	if site.Output != uid.None {
		p.OutputDescriptor = ctx[site.Output].Descriptor
	}
	return p, nil
}

// collect walks descriptor references breadth-first from the roots and
// returns every reachable uid in ascending order.
func (g *Generator) collect(roots []uid.ID) ([]uid.ID, error) {
	seen := make(map[uid.ID]bool)
	queue := append([]uid.ID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == uid.None || seen[id] {
			continue
		}
		rec := g.lookup(id)
		if rec == nil || rec.Desc == nil {
			return nil, fmt.Errorf("context references uid %d with no finalized descriptor", id)
		}
		seen[id] = true
		queue = append(queue, refsOf(rec.Desc)...)
	}

	out := make([]uid.ID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// refsOf enumerates every uid reference a descriptor carries. Must stay in
// step with the descriptor variant fields.
func refsOf(d *descriptor.Desc) []uid.ID {
	var out []uid.ID
	add := func(id uid.ID) {
		if id != uid.None {
			out = append(out, id)
		}
	}
	for _, f := range d.Fields {
		add(f.Type)
	}
	for _, m := range d.Methods {
		add(m.Function)
	}
	for _, b := range d.Bases {
		add(b)
	}
	for _, p := range d.Ctor {
		add(p.Type)
	}
	for _, p := range d.Params {
		add(p.Type)
	}
	add(d.Return)
	for _, m := range d.Members {
		add(m)
	}
	for _, e := range d.Elements {
		add(e)
	}
	for _, s := range d.Substitutions {
		add(s.Type)
	}
	add(d.Element)
	add(d.Key)
	add(d.Value)
	add(d.BackingMap)
	if d.Index != nil {
		add(d.Index.Key)
		add(d.Index.Value)
		add(d.Index.BackingMap)
	}
	return out
}

// MarshalPayload renders a payload into its canonical wire form. Context
// keys are decimal uids in ascending numeric order; optional fields are
// omitted when empty.
func MarshalPayload(p *Payload) ([]byte, error) {
	var buf bytes.Buffer
	w := &tokenWriter{enc: jsontext.NewEncoder(&buf)}

	w.tok(jsontext.BeginObject)
	w.num("siteId", int64(p.SiteID))

	w.field("context")
	w.tok(jsontext.BeginObject)
	ids := make([]uid.ID, 0, len(p.Context))
	for id := range p.Context {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		entry := p.Context[id]
		w.field(strconv.FormatInt(int64(id), 10))
		w.tok(jsontext.BeginObject)
		w.str("name", entry.Name)
		w.str("descriptor", entry.Descriptor)
		if entry.ValueRef != "" {
			w.str("valueRef", entry.ValueRef)
		}
		w.tok(jsontext.EndObject)
	}
	w.tok(jsontext.EndObject)

	w.str("outputDescriptor", p.OutputDescriptor)
	if p.Doc != "" {
		w.str("doc", p.Doc)
	}
	if len(p.Imports) > 0 {
		w.field("imports")
		w.tok(jsontext.BeginArray)
		for _, imp := range p.Imports {
			w.tok(jsontext.BeginObject)
			w.str("alias", imp.Alias)
			w.str("module", imp.Module)
			w.tok(jsontext.EndObject)
		}
		w.tok(jsontext.EndArray)
	}
	w.tok(jsontext.EndObject)

	if w.err != nil {
		return nil, w.err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
