// Package files2prompt flattens file-system roots into a single ordered text
// or XML stream, suitable for feeding source trees into prompt-construction
// tools. For each qualifying file it emits the file's path and full content,
// subject to hidden-file rules, explicit ignore globs, gitignore-derived
// rules, and an optional extension allow-list.
package files2prompt

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"files2prompt/internal/ignore"
	"files2prompt/internal/metrics"
)

// Processor is the run context for one invocation: options, the accumulated
// ignore rules, and the document index (owned by its Serializer). It streams
// one file at a time; working memory is bounded by the largest single file.
type Processor struct {
	// Extensions is the allow-list of filename suffixes; empty admits all.
	Extensions []string
	// IgnorePatterns are explicit globs matched against base filenames.
	IgnorePatterns []string
	// IncludeHidden admits files whose names start with a dot.
	IncludeHidden bool
	// IgnoreGitignore disables loading and honoring of .gitignore files.
	IgnoreGitignore bool
	// Format selects plain or claude-xml output.
	Format Format
	// Diag receives per-file warnings; defaults to os.Stderr.
	Diag io.Writer
	// Metrics, when non-nil, receives the content of every emitted document.
	Metrics *metrics.Collector
}

// Run processes the given roots in order, writing serialized documents to
// out. Roots default to the current directory when none are given.
//
// Gitignore rules are loaded from the parent directory of each root before
// that root is walked, and accumulate across roots. A root that does not
// exist is a fatal error; the run stops before processing further roots.
func (p *Processor) Run(out io.Writer, roots []string) error {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	diag := p.Diag
	if diag == nil {
		diag = os.Stderr
	}

	ser := NewSerializer(out, p.Format)
	rules := &ignore.RuleSet{}

	for i, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("path does not exist: %s", root)
			}
			return fmt.Errorf("cannot access %s: %w", root, err)
		}

		if !p.IgnoreGitignore {
			if err := rules.Load(filepath.Dir(root)); err != nil {
				return fmt.Errorf("failed to read gitignore for %s: %w", root, err)
			}
		}

		// The envelope opens once, before the first root is walked, so an
		// empty run still produces well-formed output.
		if i == 0 {
			if err := ser.Begin(); err != nil {
				return err
			}
		}

		if err := p.processRoot(root, info, rules, ser, diag); err != nil {
			return err
		}
	}

	return ser.End()
}

// processRoot streams a single root: a regular file is emitted directly,
// bypassing the filter chain; a directory is walked recursively.
func (p *Processor) processRoot(root string, info fs.FileInfo, rules *ignore.RuleSet, ser *Serializer, diag io.Writer) error {
	if info.Mode().IsRegular() {
		return p.emitFile(root, ser, diag)
	}
	if !info.IsDir() {
		return nil
	}

	chain := p.filterChain(rules)
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		c := candidate{path: path, name: d.Name(), isDir: false}
		if !admit(c, chain) {
			return nil
		}
		return p.emitFile(path, ser, diag)
	})
}

// emitFile reads one admitted file and serializes it. An unreadable file is
// reported on the diagnostic writer and skipped; the run continues. Empty
// content produces no document and consumes no index, for directory-sourced
// candidates and direct file roots alike.
func (p *Processor) emitFile(path string, ser *Serializer, diag io.Writer) error {
	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(diag, "Warning: Skipping file %s due to error opening file\n", path)
		return nil
	}
	if len(content) == 0 {
		return nil
	}

	if p.Metrics != nil {
		p.Metrics.Add(path, content)
	}
	return ser.Emit(path, content)
}
