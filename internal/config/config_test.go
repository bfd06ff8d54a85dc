package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Extract.Include) != 1 || cfg.Extract.Include[0] != "src/**/*.ts" {
		t.Fatalf("unexpected default include: %v", cfg.Extract.Include)
	}
	if len(cfg.Extract.Functions) != 1 || cfg.Extract.Functions[0] != "runInAgent" {
		t.Fatalf("unexpected default functions: %v", cfg.Extract.Functions)
	}
	if cfg.Extract.DepthLimit != DefaultDepthLimit {
		t.Fatalf("expected default depth limit %d, got %d", DefaultDepthLimit, cfg.Extract.DepthLimit)
	}
	if cfg.Output != "dist/tsbridge" {
		t.Fatalf("unexpected default output: %q", cfg.Output)
	}
}

func TestLoadValidJSONConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsbridge.config.json")
	content := `{
		"extract": {
			"include": ["src/agents/**/*.ts"],
			"exclude": ["src/**/*.spec.ts"],
			"functions": ["runInAgent", "runInSandbox"],
			"depthLimit": 12,
			"remap": {"@types/acme-sdk": "acme-sdk"}
		},
		"runtime": {
			"package": "@acme/agent-runtime",
			"version": "^0.4.0"
		},
		"output": "dist/bridge"
	}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Extract.Include) != 1 || cfg.Extract.Include[0] != "src/agents/**/*.ts" {
		t.Fatalf("unexpected include: %v", cfg.Extract.Include)
	}
	if len(cfg.Extract.Functions) != 2 || cfg.Extract.Functions[1] != "runInSandbox" {
		t.Fatalf("unexpected functions: %v", cfg.Extract.Functions)
	}
	if cfg.Extract.DepthLimit != 12 {
		t.Fatalf("unexpected depth limit: %d", cfg.Extract.DepthLimit)
	}
	if cfg.Extract.Remap["@types/acme-sdk"] != "acme-sdk" {
		t.Fatalf("unexpected remap: %v", cfg.Extract.Remap)
	}
	if cfg.Runtime.Package != "@acme/agent-runtime" {
		t.Fatalf("unexpected runtime package: %q", cfg.Runtime.Package)
	}
}

func TestLoadValidYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsbridge.config.yaml")
	content := `
extract:
  include:
    - "src/**/*.ts"
  functions:
    - runInAgent
  depthLimit: 8
runtime:
  package: "@acme/agent-runtime"
  version: ">=0.3.0 <1.0.0"
output: out/bridge
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Extract.DepthLimit != 8 {
		t.Fatalf("unexpected depth limit: %d", cfg.Extract.DepthLimit)
	}
	if cfg.Output != "out/bridge" {
		t.Fatalf("unexpected output: %q", cfg.Output)
	}
	if cfg.Runtime.Version != ">=0.3.0 <1.0.0" {
		t.Fatalf("unexpected constraint: %q", cfg.Runtime.Version)
	}
}

func TestLoadAppliesDefaultsToSparseConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsbridge.config.json")
	content := `{"extract": {"include": ["src/**/*.ts"]}, "output": "dist/bridge"}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Extract.Functions) != 1 || cfg.Extract.Functions[0] != "runInAgent" {
		t.Fatalf("defaults not applied: %v", cfg.Extract.Functions)
	}
	if cfg.Extract.DepthLimit != DefaultDepthLimit {
		t.Fatalf("defaults not applied: depth %d", cfg.Extract.DepthLimit)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsbridge.config.toml")
	if err := os.WriteFile(configPath, []byte("output = 'x'"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil || !strings.Contains(err.Error(), "unsupported extension") {
		t.Fatalf("expected extension error, got %v", err)
	}
}

func TestLoadRejectsBadConstraint(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "tsbridge.config.json")
	content := `{
		"extract": {"include": ["src/**/*.ts"]},
		"runtime": {"package": "@acme/agent-runtime", "version": "not-a-constraint !!"},
		"output": "dist/bridge"
	}`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(configPath); err == nil || !strings.Contains(err.Error(), "semver") {
		t.Fatalf("expected semver error, got %v", err)
	}
}

func TestValidateRejectsEmptyInclude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Include = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty include")
	}
}

func TestValidateRejectsNonPositiveDepth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.DepthLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative depth limit")
	}
}

func TestRuntimeSatisfied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime = RuntimeConfig{Package: "@acme/agent-runtime", Version: "^0.4.0"}

	ok, err := cfg.RuntimeSatisfied("0.4.7")
	if err != nil || !ok {
		t.Fatalf("0.4.7 against ^0.4.0: ok=%v err=%v", ok, err)
	}
	ok, err = cfg.RuntimeSatisfied("0.5.0")
	if err != nil || ok {
		t.Fatalf("0.5.0 against ^0.4.0: ok=%v err=%v", ok, err)
	}
	if _, err := cfg.RuntimeSatisfied("three point two"); err == nil {
		t.Fatal("expected error for non-semver installed version")
	}

	cfg.Runtime.Version = ""
	ok, err = cfg.RuntimeSatisfied("anything")
	if err != nil || !ok {
		t.Fatalf("empty constraint should pass: ok=%v err=%v", ok, err)
	}
}
