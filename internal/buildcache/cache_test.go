package buildcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCachePath(t *testing.T) {
	t.Run("with outDir", func(t *testing.T) {
		tests := []struct {
			outDir string
			tsconf string
			want   string
		}{
			{"/project/dist", "/project/tsconfig.json", "/project/dist/.tsbridge-cache"},
			{"/project/dist", "/project/tsconfig.build.json", "/project/dist/.tsbridge-cache"},
			{"dist", "tsconfig.json", "dist/.tsbridge-cache"},
		}
		for _, tt := range tests {
			got := CachePath(tt.outDir, tt.tsconf)
			if got != tt.want {
				t.Errorf("CachePath(%q, %q) = %q, want %q", tt.outDir, tt.tsconf, got, tt.want)
			}
		}
	})

	t.Run("without outDir fallback", func(t *testing.T) {
		tests := []struct {
			tsconf string
			want   string
		}{
			{"/foo/tsconfig.json", "/foo/tsconfig.tsbridge-cache"},
			{"/foo/tsconfig.build.json", "/foo/tsconfig.build.tsbridge-cache"},
			{"/foo/bar/tsconfig.app.json", "/foo/bar/tsconfig.app.tsbridge-cache"},
			{"tsconfig.json", "tsconfig.tsbridge-cache"},
		}
		for _, tt := range tests {
			got := CachePath("", tt.tsconf)
			if got != tt.want {
				t.Errorf("CachePath(\"\", %q) = %q, want %q", tt.tsconf, got, tt.want)
			}
		}
	})
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()

	// Hash of existing file
	path := filepath.Join(dir, "test.txt")
	os.WriteFile(path, []byte("hello world"), 0644)
	hash1 := HashFile(path)
	if hash1 == "" {
		t.Fatal("HashFile returned empty for existing file")
	}

	// Same content = same hash
	path2 := filepath.Join(dir, "test2.txt")
	os.WriteFile(path2, []byte("hello world"), 0644)
	hash2 := HashFile(path2)
	if hash1 != hash2 {
		t.Errorf("same content produced different hashes: %q vs %q", hash1, hash2)
	}

	// Different content = different hash
	path3 := filepath.Join(dir, "test3.txt")
	os.WriteFile(path3, []byte("hello world!"), 0644)
	hash3 := HashFile(path3)
	if hash1 == hash3 {
		t.Error("different content produced same hash")
	}

	// Non-existent file = empty string
	hash4 := HashFile(filepath.Join(dir, "nonexistent"))
	if hash4 != "" {
		t.Errorf("HashFile returned %q for non-existent file, want empty", hash4)
	}
}

func TestDigestSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.ts")
	b := filepath.Join(dir, "b.ts")
	os.WriteFile(a, []byte("export const a = 1;"), 0644)
	os.WriteFile(b, []byte("export const b = 2;"), 0644)

	d1 := DigestSources([]string{a, b})
	if d1 == "" {
		t.Fatal("DigestSources returned empty")
	}

	// Order-independent
	d2 := DigestSources([]string{b, a})
	if d1 != d2 {
		t.Error("digest should not depend on enumeration order")
	}

	// Content change invalidates
	os.WriteFile(a, []byte("export const a = 99;"), 0644)
	d3 := DigestSources([]string{a, b})
	if d3 == d1 {
		t.Error("digest should change when a file's content changes")
	}

	// Adding a file invalidates
	c := filepath.Join(dir, "c.ts")
	os.WriteFile(c, []byte("export const a = 99;"), 0644)
	d4 := DigestSources([]string{a, b, c})
	if d4 == d3 {
		t.Error("digest should change when a file is added")
	}

	// Rename with identical content invalidates (path is mixed in)
	renamed := filepath.Join(dir, "a2.ts")
	os.Rename(a, renamed)
	d5 := DigestSources([]string{renamed, b, c})
	if d5 == d4 {
		t.Error("digest should change when a file is renamed")
	}
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.tsbridge-cache")

	// Load non-existent = nil
	c := Load(cachePath)
	if c != nil {
		t.Fatal("Load should return nil for non-existent file")
	}

	// Save and reload
	original := New("abc123", "srcdigest", []string{"/foo/main.payload.json", "/foo/tsbridge.manifest.json"})
	if err := Save(cachePath, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load(cachePath)
	if loaded == nil {
		t.Fatal("Load returned nil after Save")
	}

	if loaded.V != original.V {
		t.Errorf("V = %d, want %d", loaded.V, original.V)
	}
	if loaded.ConfigHash != original.ConfigHash {
		t.Errorf("ConfigHash = %q, want %q", loaded.ConfigHash, original.ConfigHash)
	}
	if loaded.SourceDigest != original.SourceDigest {
		t.Errorf("SourceDigest = %q, want %q", loaded.SourceDigest, original.SourceDigest)
	}
	if len(loaded.Outputs) != len(original.Outputs) {
		t.Fatalf("Outputs length = %d, want %d", len(loaded.Outputs), len(original.Outputs))
	}
	for i, o := range loaded.Outputs {
		if o != original.Outputs[i] {
			t.Errorf("Outputs[%d] = %q, want %q", i, o, original.Outputs[i])
		}
	}
}

func TestLoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "corrupted.tsbridge-cache")

	// Write garbage
	os.WriteFile(cachePath, []byte("not json at all {{{"), 0644)

	c := Load(cachePath)
	if c != nil {
		t.Fatal("Load should return nil for corrupted JSON")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "empty.tsbridge-cache")

	os.WriteFile(cachePath, []byte(""), 0644)

	c := Load(cachePath)
	if c != nil {
		t.Fatal("Load should return nil for empty file")
	}
}

func TestIsValid_NilCache(t *testing.T) {
	var c *Cache
	if c.IsValid("anything", "digest") {
		t.Error("nil cache should not be valid")
	}
}

func TestIsValid_SchemaVersionMismatch(t *testing.T) {
	c := &Cache{
		V:            SchemaVersion + 1, // future version
		ConfigHash:   "abc",
		SourceDigest: "d",
	}
	if c.IsValid("abc", "d") {
		t.Error("cache with wrong schema version should not be valid")
	}
}

func TestIsValid_ConfigHashMismatch(t *testing.T) {
	c := &Cache{
		V:            SchemaVersion,
		ConfigHash:   "old-hash",
		SourceDigest: "d",
	}
	if c.IsValid("new-hash", "d") {
		t.Error("cache with mismatched config hash should not be valid")
	}
}

func TestIsValid_SourceDigestMismatch(t *testing.T) {
	c := &Cache{
		V:            SchemaVersion,
		ConfigHash:   "abc",
		SourceDigest: "old-digest",
	}
	if c.IsValid("abc", "new-digest") {
		t.Error("cache with mismatched source digest should not be valid")
	}
}

func TestIsValid_OutputFileMissing(t *testing.T) {
	dir := t.TempDir()
	existingFile := filepath.Join(dir, "exists.json")
	os.WriteFile(existingFile, []byte("{}"), 0644)

	c := &Cache{
		V:            SchemaVersion,
		ConfigHash:   "abc",
		SourceDigest: "d",
		Outputs: []string{
			existingFile,
			filepath.Join(dir, "missing.json"), // doesn't exist
		},
	}
	if c.IsValid("abc", "d") {
		t.Error("cache with missing output file should not be valid")
	}
}

func TestIsValid_AllChecksPass(t *testing.T) {
	dir := t.TempDir()
	file1 := filepath.Join(dir, "main.payload.json")
	file2 := filepath.Join(dir, "tsbridge.manifest.json")
	os.WriteFile(file1, []byte("{}"), 0644)
	os.WriteFile(file2, []byte("{}"), 0644)

	c := &Cache{
		V:            SchemaVersion,
		ConfigHash:   "correct-hash",
		SourceDigest: "correct-digest",
		Outputs: []string{
			file1,
			file2,
		},
	}
	if !c.IsValid("correct-hash", "correct-digest") {
		t.Error("cache with all checks passing should be valid")
	}
}

func TestIsValid_EmptyConfigHash(t *testing.T) {
	// No config file used → both should be empty
	c := &Cache{
		V:            SchemaVersion,
		ConfigHash:   "",
		SourceDigest: "d",
	}
	if !c.IsValid("", "d") {
		t.Error("cache with empty config hash should be valid when current is also empty")
	}

	// But if someone adds a config, it should invalidate
	if c.IsValid("now-has-config", "d") {
		t.Error("cache with empty config hash should be invalid when config is now present")
	}
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "test.tsbridge-cache")

	// Write a cache file
	os.WriteFile(cachePath, []byte(`{"v":1}`), 0644)
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatal("cache file should exist before delete")
	}

	// Delete it
	Delete(cachePath)
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("cache file should not exist after delete")
	}

	// Delete non-existent — should not panic
	Delete(filepath.Join(dir, "nonexistent"))
}

func TestNew(t *testing.T) {
	c := New("hash123", "digest456", []string{"/a", "/b"})
	if c.V != SchemaVersion {
		t.Errorf("V = %d, want %d", c.V, SchemaVersion)
	}
	if c.ConfigHash != "hash123" {
		t.Errorf("ConfigHash = %q, want %q", c.ConfigHash, "hash123")
	}
	if c.SourceDigest != "digest456" {
		t.Errorf("SourceDigest = %q, want %q", c.SourceDigest, "digest456")
	}
	if len(c.Outputs) != 2 {
		t.Fatalf("Outputs length = %d, want 2", len(c.Outputs))
	}
}

func TestSaveAtomicity(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "atomic.tsbridge-cache")

	// Save a cache file
	c := New("hash", "digest", nil)
	if err := Save(cachePath, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Verify temp file is cleaned up (no .tmp file should remain)
	tmpPath := cachePath + ".tmp"
	if _, err := os.Stat(tmpPath); !os.IsNotExist(err) {
		t.Error("temp file should not exist after successful save")
	}

	// Verify the cache file exists and is valid
	loaded := Load(cachePath)
	if loaded == nil {
		t.Fatal("failed to load after atomic save")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedPath := filepath.Join(dir, "sub", "dir", "cache.tsbridge-cache")

	c := New("hash", "digest", nil)
	if err := Save(nestedPath, c); err != nil {
		t.Fatalf("Save failed to create nested dirs: %v", err)
	}

	loaded := Load(nestedPath)
	if loaded == nil {
		t.Fatal("failed to load from nested directory")
	}
}

func TestRoundTripWithRealFiles(t *testing.T) {
	// Simulate a real scenario: config file + sources + output files
	dir := t.TempDir()

	// Create a "config" file and hash it
	configPath := filepath.Join(dir, "tsbridge.config.json")
	os.WriteFile(configPath, []byte(`{"outputDir":"dist"}`), 0644)
	configHash := HashFile(configPath)
	if configHash == "" {
		t.Fatal("failed to hash config file")
	}

	// Create "source" files and digest them
	srcPath := filepath.Join(dir, "main.ts")
	os.WriteFile(srcPath, []byte("runInAgent<number>(x);"), 0644)
	srcDigest := DigestSources([]string{srcPath})

	// Create "output" files
	payloadPath := filepath.Join(dir, "dist", "main.payload.json")
	manifestPath := filepath.Join(dir, "dist", "tsbridge.manifest.json")
	os.MkdirAll(filepath.Join(dir, "dist"), 0755)
	os.WriteFile(payloadPath, []byte(`{"types":[]}`), 0644)
	os.WriteFile(manifestPath, []byte(`{"payloads":[]}`), 0644)

	// Save cache
	cachePath := filepath.Join(dir, "tsconfig.tsbridge-cache")
	c := New(configHash, srcDigest, []string{payloadPath, manifestPath})
	if err := Save(cachePath, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Scenario 1: Everything unchanged → valid
	loaded := Load(cachePath)
	if !loaded.IsValid(configHash, srcDigest) {
		t.Error("cache should be valid when nothing changed")
	}

	// Scenario 2: Config file changed → invalid
	os.WriteFile(configPath, []byte(`{"outputDir":"out"}`), 0644)
	newConfigHash := HashFile(configPath)
	if loaded.IsValid(newConfigHash, srcDigest) {
		t.Error("cache should be invalid when config changed")
	}

	// Scenario 3: Source file changed → invalid
	os.WriteFile(srcPath, []byte("runInAgent<string>(y);"), 0644)
	newDigest := DigestSources([]string{srcPath})
	if loaded.IsValid(configHash, newDigest) {
		t.Error("cache should be invalid when a source changed")
	}

	// Scenario 4: Output file deleted → invalid
	os.Remove(payloadPath)
	if loaded.IsValid(configHash, srcDigest) {
		t.Error("cache should be invalid when output file deleted")
	}
}
