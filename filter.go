package files2prompt

import (
	"strings"

	"github.com/danwakefield/fnmatch"

	"files2prompt/internal/ignore"
)

// candidate is a filesystem entry discovered while walking a directory root.
// It exists only for the duration of the admit/reject decision.
type candidate struct {
	path  string
	name  string // base filename
	isDir bool
}

// predicate reports whether a candidate may proceed to the next check.
type predicate func(c candidate) bool

// filterChain builds the ordered predicate chain applied to every candidate
// discovered under a directory root. Evaluation short-circuits on the first
// rejecting predicate. Files passed directly as roots never go through this
// chain.
func (p *Processor) filterChain(rules *ignore.RuleSet) []predicate {
	return []predicate{
		// Hidden files are excluded unless explicitly included.
		func(c candidate) bool {
			return p.IncludeHidden || !strings.HasPrefix(c.name, ".")
		},
		// Explicit ignore globs match against the base filename.
		func(c candidate) bool {
			return !matchAnyGlob(p.IgnorePatterns, c.name)
		},
		// Accumulated gitignore rules, unless gitignore honoring is off.
		func(c candidate) bool {
			return p.IgnoreGitignore || !rules.Match(c.path, c.isDir)
		},
		// Extension allow-list: literal, case-sensitive suffix match. An
		// empty list admits everything.
		func(c candidate) bool {
			return matchExtension(p.Extensions, c.name)
		},
	}
}

// admit runs the candidate through the chain.
func admit(c candidate, chain []predicate) bool {
	for _, pred := range chain {
		if !pred(c) {
			return false
		}
	}
	return true
}

func matchAnyGlob(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if fnmatch.Match(pattern, name, 0) {
			return true
		}
	}
	return false
}

func matchExtension(extensions []string, name string) bool {
	if len(extensions) == 0 {
		return true
	}
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
