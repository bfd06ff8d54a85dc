package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPayloadPath(t *testing.T) {
	tests := []struct {
		file   string
		siteID int
		want   string
	}{
		{"src/agents/chat.ts", 1, "src/agents/chat.1.payload.json"},
		{"src/agents/chat.ts", 12, "src/agents/chat.12.payload.json"},
		{"src/view.tsx", 2, "src/view.2.payload.json"},
		{"main.mts", 1, "main.1.payload.json"},
		{"main.cts", 1, "main.1.payload.json"},
		{"no-extension", 3, "no-extension.3.payload.json"},
	}
	for _, tt := range tests {
		got := payloadPath(tt.file, tt.siteID)
		if got != tt.want {
			t.Errorf("payloadPath(%q, %d) = %q, want %q", tt.file, tt.siteID, got, tt.want)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	if got := relativeTo("/app/src/main.ts", "/app"); got != filepath.FromSlash("src/main.ts") {
		t.Errorf("relativeTo = %q", got)
	}
	// Outside the base: keep the absolute path
	if got := relativeTo("/other/main.ts", "/app"); got != "/other/main.ts" {
		t.Errorf("relativeTo = %q", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, configDir, configFile, err := loadConfig("", dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if configFile != "" {
		t.Errorf("expected no config file, got %q", configFile)
	}
	if configDir != dir {
		t.Errorf("configDir = %q, want %q", configDir, dir)
	}
	if len(cfg.Extract.Functions) != 1 || cfg.Extract.Functions[0] != "runInAgent" {
		t.Errorf("default functions = %v", cfg.Extract.Functions)
	}
}

func TestLoadConfigProbesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsbridge.config.json")
	content := `{"extract":{"include":["src/**/*.ts"],"functions":["dispatch"]},"output":"out"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, _, configFile, err := loadConfig("", dir)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if configFile != path {
		t.Errorf("configFile = %q, want %q", configFile, path)
	}
	if cfg.Output != "out" {
		t.Errorf("Output = %q", cfg.Output)
	}
	if len(cfg.Extract.Functions) != 1 || cfg.Extract.Functions[0] != "dispatch" {
		t.Errorf("functions = %v", cfg.Extract.Functions)
	}
}

func TestInstalledPackageVersion(t *testing.T) {
	dir := t.TempDir()
	pkgDir := filepath.Join(dir, "node_modules", "@acme", "agent-runtime")
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		t.Fatal(err)
	}
	manifest := `{"name":"@acme/agent-runtime","version":"0.4.2"}`
	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	// Found from the project root
	v, ok := installedPackageVersion(dir, "@acme/agent-runtime")
	if !ok || v != "0.4.2" {
		t.Errorf("installedPackageVersion = %q, %v", v, ok)
	}

	// Found from a nested directory, walking up like node's resolver
	nested := filepath.Join(dir, "src", "agents")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	v, ok = installedPackageVersion(nested, "@acme/agent-runtime")
	if !ok || v != "0.4.2" {
		t.Errorf("installedPackageVersion from nested dir = %q, %v", v, ok)
	}

	// Missing package
	if _, ok := installedPackageVersion(dir, "not-installed"); ok {
		t.Error("expected missing package to report not found")
	}
}

func TestWatchRoots(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(filepath.Join(src, "agents"), 0755); err != nil {
		t.Fatal(err)
	}

	roots := watchRoots([]string{"src/**/*.ts"}, dir)
	if len(roots) != 1 || roots[0] != src {
		t.Errorf("watchRoots = %v, want [%s]", roots, src)
	}

	// Distinct prefixes are both kept; repeats collapse
	roots = watchRoots([]string{"src/**/*.ts", "src/agents/*.ts", "src/**/*.tsx"}, dir)
	if len(roots) != 2 {
		t.Errorf("watchRoots = %v", roots)
	}

	// No usable prefix falls back to cwd
	roots = watchRoots([]string{"**/*.ts"}, dir)
	if len(roots) != 1 || roots[0] != dir {
		t.Errorf("watchRoots = %v, want [%s]", roots, dir)
	}

	// Empty include falls back to cwd
	roots = watchRoots(nil, dir)
	if len(roots) != 1 || roots[0] != dir {
		t.Errorf("watchRoots = %v, want [%s]", roots, dir)
	}
}

func TestCleanDirRefusesDangerousPaths(t *testing.T) {
	for _, p := range []string{"/", ".", ".."} {
		if err := cleanDir(p); err == nil {
			t.Errorf("cleanDir(%q) should refuse", p)
		}
	}

	// Non-existent directory is fine
	if err := cleanDir(filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Errorf("cleanDir of missing dir: %v", err)
	}
}
