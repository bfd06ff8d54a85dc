package remap

import "testing"

func TestResolveExactMatch(t *testing.T) {
	table := New(map[string]string{
		"@types/acme-sdk": "acme-sdk",
	})

	if got := table.Resolve("@types/acme-sdk"); got != "acme-sdk" {
		t.Errorf("exact match: got %q, want %q", got, "acme-sdk")
	}
}

func TestResolveWildcard(t *testing.T) {
	table := New(map[string]string{
		"@acme/sdk-types/*": "@acme/sdk/*",
	})

	if got := table.Resolve("@acme/sdk-types/models"); got != "@acme/sdk/models" {
		t.Errorf("wildcard: got %q", got)
	}
}

func TestResolveLongestPrefixWins(t *testing.T) {
	table := New(map[string]string{
		"@acme/*":        "runtime/*",
		"@acme/models/*": "runtime/models/v2/*",
	})

	if got := table.Resolve("@acme/models/user"); got != "runtime/models/v2/user" {
		t.Errorf("longest prefix: got %q", got)
	}
	if got := table.Resolve("@acme/util"); got != "runtime/util" {
		t.Errorf("shorter prefix: got %q", got)
	}
}

func TestResolveExactBeatsWildcard(t *testing.T) {
	table := New(map[string]string{
		"@acme/sdk":   "acme-runtime",
		"@acme/sdk/*": "acme-runtime/lib/*",
	})

	if got := table.Resolve("@acme/sdk"); got != "acme-runtime" {
		t.Errorf("exact over wildcard: got %q", got)
	}
	if got := table.Resolve("@acme/sdk/http"); got != "acme-runtime/lib/http" {
		t.Errorf("subpath: got %q", got)
	}
}

func TestResolveLeavesRelativeAndUnmatched(t *testing.T) {
	table := New(map[string]string{"@acme/*": "runtime/*"})

	for _, spec := range []string{"./local", "../up", "/abs/path", "lodash"} {
		if got := table.Resolve(spec); got != spec {
			t.Errorf("Resolve(%q) = %q, want unchanged", spec, got)
		}
	}
}

func TestResolveEmptyTableIsIdentity(t *testing.T) {
	table := New(nil)
	if !table.Empty() {
		t.Fatal("nil rules should be empty")
	}
	if got := table.Resolve("@acme/sdk"); got != "@acme/sdk" {
		t.Errorf("identity: got %q", got)
	}
}
