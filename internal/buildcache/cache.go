// Package buildcache provides an extraction cache for tsbridge.
//
// When neither the source files nor the tsbridge config changed since the
// last successful run, tsbridge can skip the expensive extraction pipeline
// (program load, type checking, call-site analysis, payload generation) —
// but ONLY if the critical output files are also still on disk.
//
// The cache is intentionally conservative: if ANY check fails, the entire
// pipeline runs from scratch. There are no partial invalidation shortcuts,
// because a type change in one file can affect any call site that references
// it and we don't track the type-level import graph.
package buildcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SchemaVersion is bumped when the cache format or the payload wire format
// changes. A mismatch forces a full rebuild, ensuring binary upgrades don't
// serve stale payloads.
const SchemaVersion = 1

// Cache represents the on-disk extraction cache.
// It records what was true when extraction last ran successfully.
type Cache struct {
	// V is the schema version. Must match SchemaVersion or cache is invalid.
	V int `json:"v"`

	// ConfigHash is the SHA-256 hex digest of the tsbridge config file
	// content. Empty string means no config file was used.
	ConfigHash string `json:"configHash"`

	// SourceDigest is a combined digest over the program's source files
	// (paths and contents). Any add, remove, or edit changes it.
	SourceDigest string `json:"sourceDigest"`

	// Outputs lists the absolute paths of critical output files that must
	// still exist on disk for the cache to be valid. Typically the manifest
	// and every generated payload file.
	Outputs []string `json:"outputs"`
}

// CachePath returns the cache file path inside the output directory.
// The cache lives at `<outDir>/.tsbridge-cache` so that deleting the output
// directory also removes the cache, guaranteeing a fresh extraction.
//
// If outDir is empty (no output directory configured), it falls back to a
// sibling file next to the tsconfig: "tsconfig.build.json" →
// "tsconfig.build.tsbridge-cache".
func CachePath(outDir string, tsconfigPath string) string {
	if outDir != "" {
		return filepath.Join(outDir, ".tsbridge-cache")
	}
	// Fallback: sibling of tsconfig
	dir := filepath.Dir(tsconfigPath)
	base := filepath.Base(tsconfigPath)
	name := strings.TrimSuffix(base, ".json")
	return filepath.Join(dir, name+".tsbridge-cache")
}

// Load reads and parses a cache file from disk.
// Returns nil if the file doesn't exist, is unreadable, or is invalid JSON.
// Callers should treat nil as "cache miss" and run full extraction.
func Load(path string) *Cache {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}

	return &c
}

// Save writes the cache to disk atomically (write to temp, rename).
// Returns an error if the write fails, but callers may choose to log and
// continue (a failed cache save just means the next run won't benefit from
// caching).
func Save(path string, cache *Cache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	// Write to temp file first, then rename for atomicity
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing cache temp file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		// Clean up temp file on rename failure
		os.Remove(tmp)
		return fmt.Errorf("renaming cache file: %w", err)
	}

	return nil
}

// Delete removes the cache file from disk. Errors are ignored (file may not exist).
func Delete(path string) {
	os.Remove(path)
}

// IsValid checks whether the cache can be trusted to skip extraction.
// ALL of the following must be true simultaneously:
//
//  1. Schema version matches (catches binary upgrades)
//  2. Config hash matches current config file content
//  3. Source digest matches the current program's source files
//  4. All critical output files still exist on disk
func (c *Cache) IsValid(currentConfigHash, currentSourceDigest string) bool {
	if c == nil {
		return false
	}

	// Check 1: Schema version
	if c.V != SchemaVersion {
		return false
	}

	// Check 2: Config file hash
	if c.ConfigHash != currentConfigHash {
		return false
	}

	// Check 3: Source digest
	if c.SourceDigest != currentSourceDigest {
		return false
	}

	// Check 4: Output files still exist on disk
	for _, path := range c.Outputs {
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}

	return true
}

// HashFile computes the SHA-256 hex digest of a file's contents.
// Returns empty string if the file doesn't exist or can't be read.
func HashFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// DigestSources computes a combined SHA-256 hex digest over a set of source
// files. Paths are sorted first so the digest is independent of enumeration
// order, and each path is mixed in alongside its content so renames are
// detected even when contents match.
func DigestSources(paths []string) string {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	h := sha256.New()
	for _, p := range sorted {
		h.Write([]byte(p))
		h.Write([]byte{0})
		data, err := os.ReadFile(p)
		if err != nil {
			// Unreadable files still perturb the digest so the next
			// readable run invalidates the cache.
			h.Write([]byte(err.Error()))
		} else {
			h.Write(data)
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// New creates a new Cache with the current schema version.
func New(configHash, sourceDigest string, outputs []string) *Cache {
	return &Cache{
		V:            SchemaVersion,
		ConfigHash:   configHash,
		SourceDigest: sourceDigest,
		Outputs:      outputs,
	}
}
