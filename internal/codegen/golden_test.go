package codegen

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/tsbridge/tsbridge/internal/descriptor"
	"github.com/tsbridge/tsbridge/internal/uid"
)

// TestPayloadGolden locks the full wire format: any change to field order,
// key ordering or escaping shows up as a diff against testdata.
func TestPayloadGolden(t *testing.T) {
	lookup := arena(
		&descriptor.Desc{Kind: descriptor.KindPrimitive, UID: 1, Name: "string", Primitive: "string", System: true},
		&descriptor.Desc{Kind: descriptor.KindPrimitive, UID: 2, Name: "number", Primitive: "number", System: true},
		&descriptor.Desc{
			Kind: descriptor.KindClass, UID: 1000, Name: "User", Module: "@acme/sdk",
			Fields: []descriptor.Field{
				{Name: "id", Type: 2},
				{Name: "email", Type: 1},
			},
		},
	)
	g := NewGenerator("./app", lookup, nil)

	p, err := g.Generate(descriptor.CallSite{
		ID:     1,
		Doc:    "Looks up a user.",
		Output: 1000,
		Entries: []descriptor.ScopeEntry{
			{Name: "fallback", Type: 1, Explicit: true, Expr: "env.fallback"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := MarshalPayload(p)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join("testdata", "payload.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	archive := txtar.Parse(data)
	var want string
	for _, f := range archive.Files {
		if f.Name == "payload.json" {
			want = strings.TrimRight(string(f.Data), "\n")
		}
	}
	if want == "" {
		t.Fatal("testdata/payload.txtar has no payload.json")
	}
	if string(got) != want {
		t.Errorf("payload drifted from golden:\ngot:  %s\nwant: %s", got, want)
	}
}
