package bethdir

import (
	"sort"
	"strings"
)

// Rule filters a category's candidate paths. All patterns are glob-style
// with '*' matching any run of characters, compared case-insensitively over
// normalized paths.
type Rule struct {
	// Allow keeps only matching paths when non-empty; an empty allow list
	// keeps everything.
	Allow []string
	// Block drops matching paths even when allowed.
	Block []string
	// ArchiveBlock drops paths owned by a blocked archive name regardless
	// of path.
	ArchiveBlock []string
}

// match reports whether a normalized path owned by source passes the rule.
func (r Rule) match(path, source string) bool {
	if len(r.Allow) > 0 {
		allowed := false
		for _, p := range r.Allow {
			if matchPattern(p, path) {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	for _, p := range r.Block {
		if matchPattern(p, path) {
			return false
		}
	}

	for _, name := range r.ArchiveBlock {
		if strings.EqualFold(name, source) {
			return false
		}
	}

	return true
}

// filesBySuffix returns the indexed paths ending with suffix that pass the
// rule, sorted for deterministic output.
func (d *Directory) filesBySuffix(suffix string, rule Rule) []string {
	var out []string
	for path, source := range d.fileMap {
		if !strings.HasSuffix(path, suffix) {
			continue
		}
		if !rule.match(path, source) {
			continue
		}
		out = append(out, path)
	}
	sort.Strings(out)

	return out
}

// matchPattern matches a normalized path against a wildcard pattern where
// '*' matches any run of characters, separators included. The pattern is
// normalized the same way as index keys, so casing and separator style do
// not matter.
func matchPattern(pattern, path string) bool {
	p := normalizePath(pattern)
	s := path

	px, sx := 0, 0
	starPx, starSx := -1, 0
	for sx < len(s) {
		switch {
		case px < len(p) && p[px] == '*':
			starPx, starSx = px, sx
			px++
		case px < len(p) && p[px] == s[sx]:
			px++
			sx++
		case starPx >= 0:
			// Backtrack: let the last '*' absorb one more character.
			starSx++
			px, sx = starPx+1, starSx
		default:
			return false
		}
	}
	for px < len(p) && p[px] == '*' {
		px++
	}

	return px == len(p)
}
