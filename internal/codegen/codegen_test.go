package codegen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/remap"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// --- Descriptor serialization ---

func TestSerializePrimitive(t *testing.T) {
	d := &descriptor.Desc{
		Kind:      descriptor.KindPrimitive,
		UID:       1,
		Name:      "string",
		Primitive: "string",
		System:    true,
	}
	got, err := SerializeDescriptor(d)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"primitive","uid":1,"name":"string","primitive":"string","system":true}`
	if got != want {
		t.Errorf("serialized =\n%s\nwant\n%s", got, want)
	}
}

func TestSerializeClassFieldOrder(t *testing.T) {
	d := &descriptor.Desc{
		Kind:   descriptor.KindClass,
		UID:    1000,
		Name:   "Point",
		Module: "./geometry",
		Fields: []descriptor.Field{
			{Name: "x", Type: 2},
			{Name: "y", Type: 2, Optional: true},
		},
		Methods: []descriptor.Method{
			{Name: "scale", Function: 1001},
		},
		Bases: []uid.ID{1002},
		Ctor:  []descriptor.Param{{Name: "x", Type: 2}},
	}
	got, err := SerializeDescriptor(d)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"class","uid":1000,"name":"Point","module":"./geometry",` +
		`"fields":[{"name":"x","type":2},{"name":"y","type":2,"optional":true}],` +
		`"methods":[{"name":"scale","function":1001}],` +
		`"bases":[1002],"ctor":[{"name":"x","type":2}]}`
	if got != want {
		t.Errorf("serialized =\n%s\nwant\n%s", got, want)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	d := &descriptor.Desc{
		Kind:    descriptor.KindUnion,
		UID:     1005,
		Members: []uid.ID{1000, 1001, 6},
	}
	a, err := SerializeDescriptor(d)
	if err != nil {
		t.Fatal(err)
	}
	b, err := SerializeDescriptor(d)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("two runs differ:\n%s\n%s", a, b)
	}
}

func TestSerializeEnum(t *testing.T) {
	d := &descriptor.Desc{
		Kind:       descriptor.KindEnum,
		UID:        1003,
		Name:       "Color",
		EnumKeys:   []string{"Red", "Label"},
		EnumValues: []any{0.0, "lbl"},
	}
	got, err := SerializeDescriptor(d)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"enum","uid":1003,"name":"Color","keys":["Red","Label"],"values":[0,"lbl"]}`
	if got != want {
		t.Errorf("serialized =\n%s\nwant\n%s", got, want)
	}
}

func TestSerializeRecordBackingMap(t *testing.T) {
	d := &descriptor.Desc{
		Kind:       descriptor.KindRecord,
		UID:        1004,
		Key:        1,
		Value:      2,
		BackingMap: 1005,
	}
	got, err := SerializeDescriptor(d)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"record","uid":1004,"key":1,"value":2,"backingMap":1005}`
	if got != want {
		t.Errorf("serialized = %s", got)
	}
}

// --- Value references ---

func TestForTypeSameFileClass(t *testing.T) {
	r := NewRefResolver("./app", nil)
	d := &descriptor.Desc{Kind: descriptor.KindClass, UID: 1000, Name: "Point", Module: "./app"}
	if got := r.ForType(d); got != "Point" {
		t.Errorf("same-file ref = %q, want Point", got)
	}
	if len(r.Imports()) != 0 {
		t.Errorf("same-file ref should not import, got %v", r.Imports())
	}
}

func TestForTypeCrossFileImports(t *testing.T) {
	r := NewRefResolver("./app", nil)
	d := &descriptor.Desc{Kind: descriptor.KindClass, UID: 1000, Name: "User", Module: "@acme/geo-utils"}
	if got := r.ForType(d); got != "acmeGeoUtils.User" {
		t.Errorf("cross-file ref = %q", got)
	}
	imps := r.Imports()
	if len(imps) != 1 || imps[0].Alias != "acmeGeoUtils" || imps[0].Module != "@acme/geo-utils" {
		t.Errorf("imports = %v", imps)
	}
	// Second type from the same module reuses the binding.
	d2 := &descriptor.Desc{Kind: descriptor.KindEnum, UID: 1001, Name: "Role", Module: "@acme/geo-utils"}
	if got := r.ForType(d2); got != "acmeGeoUtils.Role" {
		t.Errorf("second ref = %q", got)
	}
	if len(r.Imports()) != 1 {
		t.Errorf("imports grew: %v", r.Imports())
	}
}

func TestForTypeHonorsRemapTable(t *testing.T) {
	table := remap.New(map[string]string{"@types/acme-sdk": "acme-sdk"})
	r := NewRefResolver("./app", table)
	d := &descriptor.Desc{Kind: descriptor.KindClass, UID: 1000, Name: "Client", Module: "@types/acme-sdk"}
	if got := r.ForType(d); got != "acmeSdk.Client" {
		t.Errorf("remapped ref = %q", got)
	}
	if imps := r.Imports(); len(imps) != 1 || imps[0].Module != "acme-sdk" {
		t.Errorf("imports = %v", imps)
	}
}

func TestForTypeDescriptorOnlyShapes(t *testing.T) {
	r := NewRefResolver("./app", nil)
	cases := []*descriptor.Desc{
		{Kind: descriptor.KindInterface, UID: 1, Name: "Shape", Module: "./app"},
		{Kind: descriptor.KindClass, UID: 2, Name: "class", Module: "./app"},   // reserved word
		{Kind: descriptor.KindClass, UID: 3, Name: "my-type", Module: "./app"}, // invalid identifier
		{Kind: descriptor.KindClass, UID: 4, Name: "AnonymousType1007"},
		{Kind: descriptor.KindPrimitive, UID: 5, Name: "string", System: true},
	}
	for _, d := range cases {
		if got := r.ForType(d); got != "" {
			t.Errorf("%s %q: ref = %q, want none", d.Kind, d.Name, got)
		}
	}
}

func TestForEntryPrefersExpression(t *testing.T) {
	r := NewRefResolver("./app", nil)

	e := descriptor.ScopeEntry{Name: "host", Expr: "config.db.host", Path: []string{"config", "db", "host"}}
	if got := r.ForEntry(e); got != "config.db.host" {
		t.Errorf("expr ref = %q", got)
	}
	e = descriptor.ScopeEntry{Name: "host", Path: []string{"config", "db", "host"}}
	if got := r.ForEntry(e); got != "config.db.host" {
		t.Errorf("path ref = %q", got)
	}
	e = descriptor.ScopeEntry{Name: "session"}
	if got := r.ForEntry(e); got != "session" {
		t.Errorf("name ref = %q", got)
	}
}

func TestForEntrySynthesizedNameGetsNoRef(t *testing.T) {
	r := NewRefResolver("./app", nil)

	// A checker-synthesized "__" name is not a runtime binding; without an
	// expression or path the entry stays descriptor-only.
	e := descriptor.ScopeEntry{Name: "__object"}
	if got := r.ForEntry(e); got != "" {
		t.Errorf("synthesized name ref = %q, want none", got)
	}
	// A recorded expression still wins regardless of the name.
	e = descriptor.ScopeEntry{Name: "__object", Expr: "store.session"}
	if got := r.ForEntry(e); got != "store.session" {
		t.Errorf("expr ref = %q", got)
	}
}

func TestModuleAliasCasing(t *testing.T) {
	cases := map[string]string{
		"@acme/geo-utils": "acmeGeoUtils",
		"lodash":          "lodash",
		"node:fs/promises": "nodeFsPromises",
		"./local-types":   "localTypes",
	}
	for module, want := range cases {
		if got := moduleAlias(module); got != want {
			t.Errorf("moduleAlias(%q) = %q, want %q", module, got, want)
		}
	}
}

// --- Payload generation ---

func arena(descs ...*descriptor.Desc) func(uid.ID) *descriptor.Record {
	recs := make(map[uid.ID]*descriptor.Record, len(descs))
	for _, d := range descs {
		recs[d.UID] = &descriptor.Record{UID: d.UID, Desc: d}
	}
	return func(id uid.ID) *descriptor.Record { return recs[id] }
}

func TestGenerateCollectsReachableDescriptors(t *testing.T) {
	lookup := arena(
		&descriptor.Desc{Kind: descriptor.KindPrimitive, UID: 1, Name: "string", Primitive: "string", System: true},
		&descriptor.Desc{Kind: descriptor.KindPrimitive, UID: 2, Name: "number", Primitive: "number", System: true},
		&descriptor.Desc{
			Kind: descriptor.KindClass, UID: 1000, Name: "Point", Module: "./geometry",
			Fields: []descriptor.Field{{Name: "x", Type: 2}, {Name: "y", Type: 2}},
		},
		&descriptor.Desc{Kind: descriptor.KindArray, UID: 1001, Element: 1000},
	)
	g := NewGenerator("./app", lookup, nil)

	p, err := g.Generate(descriptor.CallSite{
		ID:     1,
		Output: 1,
		Entries: []descriptor.ScopeEntry{
			{Name: "points", Type: 1001, Explicit: true, Expr: "store.points"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []uid.ID{1, 2, 1000, 1001} {
		if _, ok := p.Context[id]; !ok {
			t.Errorf("uid %d missing from context", id)
		}
	}
	if p.Context[1001].ValueRef != "store.points" {
		t.Errorf("explicit entry ref = %q", p.Context[1001].ValueRef)
	}
	if p.Context[1001].Name != "points" {
		t.Errorf("explicit entry name = %q", p.Context[1001].Name)
	}
	if p.Context[1000].ValueRef != "geometry.Point" {
		t.Errorf("transitive class ref = %q", p.Context[1000].ValueRef)
	}
	if p.Context[1].ValueRef != "" {
		t.Errorf("system primitive got ref %q", p.Context[1].ValueRef)
	}
	if p.OutputDescriptor != p.Context[1].Descriptor {
		t.Error("outputDescriptor does not match the output uid's entry")
	}
}

func TestGenerateFailsOnDanglingRef(t *testing.T) {
	lookup := arena(
		&descriptor.Desc{Kind: descriptor.KindArray, UID: 1001, Element: 4242},
	)
	g := NewGenerator("./app", lookup, nil)

	_, err := g.Generate(descriptor.CallSite{ID: 1, Output: 1001})
	if err == nil {
		t.Fatal("expected an error for an unresolvable reference")
	}
}

func TestMarshalPayloadDeterministic(t *testing.T) {
	p := &Payload{
		SiteID: 3,
		Context: map[uid.ID]ContextEntry{
			1000: {Name: "User", Descriptor: `{"kind":"class","uid":1000}`},
			1:    {Name: "string", Descriptor: `{"kind":"primitive","uid":1}`},
			999:  {Name: "z", Descriptor: `{"kind":"array","uid":999}`},
		},
		OutputDescriptor: `{"kind":"primitive","uid":1}`,
	}
	a, err := MarshalPayload(p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalPayload(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Fatalf("two runs differ:\n%s\n%s", a, b)
	}

	// Context keys appear in ascending numeric order.
	var decoded struct {
		Context map[string]json.RawMessage `json:"context"`
	}
	if err := json.Unmarshal(a, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v\n%s", err, a)
	}
	if len(decoded.Context) != 3 {
		t.Fatalf("context size = %d", len(decoded.Context))
	}
}

// --- Manifest ---

func TestManifestWriteAndOrdering(t *testing.T) {
	dir := t.TempDir()

	m := NewManifest("0.3.0")
	if _, err := uuid.Parse(m.BuildID); err != nil {
		t.Fatalf("build id %q is not a uuid: %v", m.BuildID, err)
	}
	m.Add("src/app.ts", 2, filepath.Join("payloads", "app.2.json"))
	m.Add("src/app.ts", 1, filepath.Join("payloads", "app.1.json"))
	if err := m.Write(dir); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatal(err)
	}
	var back Manifest
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Version != "0.3.0" || back.BuildID != m.BuildID {
		t.Errorf("round trip = %q %q", back.Version, back.BuildID)
	}
	sites := back.Files["src/app.ts"]
	if len(sites) != 2 || sites[0].SiteID != 1 || sites[1].SiteID != 2 {
		t.Errorf("sites = %+v, want ordered by site id", sites)
	}
	if sites[0].Payload != "payloads/app.1.json" {
		t.Errorf("payload path = %q, want forward slashes", sites[0].Payload)
	}
}
