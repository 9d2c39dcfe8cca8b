// Package pathfilter decides which paths are excluded from analysis.
//
// Matching is deliberately coarse: a path is excluded when any configured
// token appears anywhere in its string form. This is substring containment,
// not glob or path-segment matching, so a directory named "images-backup"
// is excluded by the token "images".
package pathfilter

import "strings"

// DefaultExclusions is the exclusion set applied to every run.
// The fused handlers/... entry matches only the full concatenation of the
// two __pycache__ paths it contains; neither half excludes anything on its
// own. See TestFusedTokenMatchesOnlyWhole before touching it.
var DefaultExclusions = []string{
	".git",
	".venv",
	"node_modules",
	"__pycache__",
	".DS_Store",
	"pb_data",
	"pb_public",
	"migrations",
	".idea",
	"k8s",
	"olt",
	"venv",
	"compose.yaml",
	"Dockerfile",
	"handlers/__pycache__",
	"handlers/coralReefClustering/__pycache__",
	"handlers/disjointPathPlot/__pycache__handlers/logical_adjacency/__pycache__",
	"utils/__pycache__",
	"images",
	"data",
}

// Filter reports whether paths are excluded from analysis.
// The token set is fixed for the filter's lifetime.
type Filter struct {
	tokens []string
}

// New creates a filter over the given substring tokens.
func New(tokens []string) *Filter {
	return &Filter{tokens: append([]string(nil), tokens...)}
}

// Default creates a filter over DefaultExclusions.
func Default() *Filter {
	return New(DefaultExclusions)
}

// IsExcluded reports whether any token is a substring of path.
func (f *Filter) IsExcluded(path string) bool {
	for _, tok := range f.tokens {
		if strings.Contains(path, tok) {
			return true
		}
	}
	return false
}
