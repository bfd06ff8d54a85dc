// Package remap rewrites module specifiers through the user-configured
// remapping table. Declaration-only packages (e.g. an SDK's @types shim)
// often resolve types from a module that does not exist at runtime; the
// table maps those specifiers onto the package the runtime actually loads.
//
// The matching rules follow TypeScript's paths semantics:
//  1. Exact entries are checked first
//  2. Wildcard patterns match by longest prefix (ties broken by longest suffix)
//  3. The matched wildcard text is substituted into the target
package remap

import "strings"

// Table holds the remapping rules, pattern → target. A pattern may contain
// one "*"; the target substitutes the matched text for its own "*".
type Table struct {
	rules map[string]string
}

// New builds a table. A nil or empty rule set yields an identity table.
func New(rules map[string]string) *Table {
	return &Table{rules: rules}
}

// Empty reports whether the table has no rules.
func (t *Table) Empty() bool { return len(t.rules) == 0 }

// Resolve maps a module specifier through the table. Relative and absolute
// specifiers are never remapped; an unmatched specifier is returned as is.
func (t *Table) Resolve(specifier string) string {
	if len(t.rules) == 0 || specifier == "" {
		return specifier
	}
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return specifier
	}

	if target, ok := t.rules[specifier]; ok && !strings.Contains(specifier, "*") {
		return target
	}

	longestPrefix := -1
	longestSuffix := -1
	matched := ""
	target := ""
	for pattern, tgt := range t.rules {
		star := strings.IndexByte(pattern, '*')
		if star < 0 {
			continue
		}
		prefix, suffix := pattern[:star], pattern[star+1:]
		if !strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
			continue
		}
		if len(specifier) < len(prefix)+len(suffix) {
			continue
		}
		if len(prefix) > longestPrefix || (len(prefix) == longestPrefix && len(suffix) > longestSuffix) {
			longestPrefix = len(prefix)
			longestSuffix = len(suffix)
			matched = specifier[len(prefix) : len(specifier)-len(suffix)]
			target = tgt
		}
	}
	if longestPrefix < 0 {
		return specifier
	}
	return strings.Replace(target, "*", matched, 1)
}
