package config

import (
	"fmt"
	"strings"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	if len(c.Extract.Include) == 0 {
		result.Errors = append(result.Errors, "extract.include: at least one pattern required")
	}
	for _, pattern := range c.Extract.Include {
		if !strings.Contains(pattern, "*") && !strings.HasSuffix(pattern, ".ts") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("extract.include: pattern %q doesn't contain a wildcard or .ts extension — did you mean %q?", pattern, pattern+"/**/*.ts"))
		}
	}

	if c.Extract.DepthLimit > 100 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("extract.depthLimit: %d is very deep — extraction time grows with every hop", c.Extract.DepthLimit))
	}

	for pattern := range c.Extract.Remap {
		if strings.Count(pattern, "*") > 1 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("extract.remap: pattern %q has more than one wildcard", pattern))
		}
	}

	if c.Runtime.Package == "" && c.Runtime.Version != "" {
		result.Warnings = append(result.Warnings,
			"runtime.version is set but runtime.package is empty — the constraint cannot be checked")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}
