package config

import (
	"strings"
	"testing"
)

func TestValidateDetailedWarnsOnSuspiciousPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Include = []string{"src/agents"}

	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Fatalf("expected valid config, errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "src/agents") {
		t.Fatalf("expected a pattern warning, got %v", result.Warnings)
	}
}

func TestValidateDetailedRejectsDoubleWildcardRemap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Remap = map[string]string{"@acme/*/types/*": "acme/*"}

	result := cfg.ValidateDetailed()
	if result.IsValid() {
		t.Fatal("expected an error for a double-wildcard remap pattern")
	}
}

func TestValidateDetailedWarnsOnConstraintWithoutPackage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime.Version = "^1.0.0"

	result := cfg.ValidateDetailed()
	if !result.IsValid() {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "runtime.package") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected runtime warning, got %v", result.Warnings)
	}
}
