// Package ignore implements the gitignore-style exclusion rules used when
// flattening directory trees. The semantics are deliberately shallow: rules
// are plain shell globs matched against an entry's base name, loaded once
// from the parent directory of each processed root. There is no anchoring,
// no negation, and no per-directory cascading.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/danwakefield/fnmatch"
)

// RuleSet accumulates ignore rules over the lifetime of a run. Rules loaded
// for one root remain in effect for every subsequent root.
type RuleSet struct {
	rules []string
}

// Load reads the .gitignore file located directly inside dir and appends its
// rules to the set. A missing file is not an error and adds no rules.
//
// Lines starting with '#' are comments. Trailing CR/LF is stripped. Blank
// lines are kept as empty-string rules; under glob matching they never match
// a real file name, so keeping them is harmless.
func (rs *RuleSet) Load(dir string) error {
	file, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.HasPrefix(line, "#") {
			continue
		}
		rs.rules = append(rs.rules, line)
	}
	return scanner.Err()
}

// Match reports whether the entry at path is excluded by any accumulated
// rule. A rule matches when it globs the entry's base name, or, for
// directories, when it globs the base name with a trailing slash.
func (rs *RuleSet) Match(path string, isDir bool) bool {
	base := filepath.Base(path)
	for _, rule := range rs.rules {
		if fnmatch.Match(rule, base, 0) {
			return true
		}
		if isDir && fnmatch.Match(rule, base+"/", 0) {
			return true
		}
	}
	return false
}

// Rules returns the accumulated rules in load order.
func (rs *RuleSet) Rules() []string {
	return rs.rules
}

// Len returns the number of accumulated rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}
