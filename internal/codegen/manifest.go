package codegen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// ManifestName is the file the manifest is written to, relative to the
// output directory.
const ManifestName = "tsbridge.manifest.json"

// Manifest is the tsbridge.manifest.json structure: one build's extracted
// call sites keyed by source file, stamped with a fresh build id and the
// tool version that produced it.
type Manifest struct {
	BuildID string                  `json:"buildId"`
	Version string                  `json:"version"`
	Files   map[string][]SiteRecord `json:"files"`
}

// SiteRecord points one call site at its payload file.
type SiteRecord struct {
	SiteID  int    `json:"siteId"`
	Payload string `json:"payload"`
}

// NewManifest creates an empty manifest stamped with a random build id.
func NewManifest(version string) *Manifest {
	return &Manifest{
		BuildID: uuid.NewString(),
		Version: version,
		Files:   make(map[string][]SiteRecord),
	}
}

// Add records one extracted site. file is the source path relative to the
// project root; payloadPath is the emitted payload, relative to the output
// directory, normalized to forward slashes.
func (m *Manifest) Add(file string, siteID int, payloadPath string) {
	m.Files[file] = append(m.Files[file], SiteRecord{
		SiteID:  siteID,
		Payload: filepath.ToSlash(payloadPath),
	})
}

// Write emits the manifest into outputDir. Site lists are ordered by site
// id; map keys are sorted by the JSON encoder, so output is stable for a
// given build id.
func (m *Manifest) Write(outputDir string) error {
	for _, sites := range m.Files {
		sort.Slice(sites, func(i, j int) bool { return sites[i].SiteID < sites[j].SiteID })
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(filepath.Join(outputDir, ManifestName), data, 0644)
}
