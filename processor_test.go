package files2prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates the given files under dir. Keys are relative paths;
// intermediate directories are created as needed.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// run executes a Processor over roots and returns its primary output.
func run(t *testing.T, p *Processor, roots ...string) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, p.Run(&sb, roots))
	return sb.String()
}

func TestPlainScenario(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":   "hi",
		".hidden": "x",
		"b.log":   "",
	})

	p := &Processor{Extensions: []string{".txt"}, IgnoreGitignore: true}
	out := run(t, p, dir)

	// Exactly one block: a.txt. Hidden file filtered, b.log empty.
	want := filepath.Join(dir, "a.txt") + "\n---\nhi\n---\n"
	assert.Equal(want, out)
}

func TestXMLScenario(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":   "hi",
		".hidden": "x",
		"b.log":   "",
	})

	p := &Processor{Format: FormatClaudeXML, IgnoreGitignore: true}
	out := run(t, p, dir)

	want := "<documents>\n" +
		"<document index=\"1\">\n" +
		"<source>" + filepath.Join(dir, "a.txt") + "</source>\n" +
		"<document_content>\nhi\n</document_content>\n" +
		"</document>\n" +
		"</documents>\n"
	// b.log's empty content yields no document and consumes no index.
	assert.Equal(want, out)
}

func TestXMLEnvelopeOnEmptyRun(t *testing.T) {
	p := &Processor{Format: FormatClaudeXML, IgnoreGitignore: true}
	out := run(t, p, t.TempDir())
	assert.Equal(t, "<documents>\n</documents>\n", out)
}

func TestFileRootBypassesFilters(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".hidden": "secret"})
	hidden := filepath.Join(dir, ".hidden")

	// Hidden name, wrong extension, matching ignore glob: a root passed
	// directly as a file is processed regardless.
	p := &Processor{
		Extensions:      []string{".txt"},
		IgnorePatterns:  []string{".*"},
		IgnoreGitignore: true,
	}
	out := run(t, p, hidden)
	assert.Equal(t, hidden+"\n---\nsecret\n---\n", out)
}

func TestFileRootEmptyContentSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"empty.txt": ""})

	p := &Processor{IgnoreGitignore: true}
	out := run(t, p, filepath.Join(dir, "empty.txt"))
	assert.Empty(t, out)
}

func TestHiddenIncluded(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".hidden": "x"})

	p := &Processor{IncludeHidden: true, IgnoreGitignore: true}
	out := run(t, p, dir)
	assert.Contains(t, out, ".hidden\n---\nx\n---\n")
}

func TestHiddenDirectoryContentsNotFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{".git/config": "[core]"})

	// Filtering matches base filenames only; a non-hidden file inside a
	// hidden directory is still admitted.
	p := &Processor{IgnoreGitignore: true}
	out := run(t, p, dir)
	assert.Contains(t, out, filepath.Join(dir, ".git", "config")+"\n---\n[core]\n---\n")
}

func TestExplicitIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"keep.txt": "keep",
		"note.md":  "drop",
	})

	p := &Processor{IgnorePatterns: []string{"*.md"}, IgnoreGitignore: true}
	out := run(t, p, dir)
	assert.Contains(t, out, "keep.txt")
	assert.NotContains(t, out, "note.md")
}

func TestExtensionAllowList(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt": "a",
		"b.md":  "b",
		"c.go":  "c",
	})

	p := &Processor{Extensions: []string{".txt", ".md"}, IgnoreGitignore: true}
	out := run(t, p, dir)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.md")
	assert.NotContains(t, out, "c.go")
}

func TestGitignoreHonoredAndDisabled(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "project")
	writeFiles(t, parent, map[string]string{".gitignore": "*.log\n"})
	writeFiles(t, root, map[string]string{
		"keep.txt":  "keep",
		"debug.log": "noise",
	})

	honored := run(t, &Processor{}, root)
	assert.Contains(t, honored, "keep.txt")
	assert.NotContains(t, honored, "debug.log")

	disabled := run(t, &Processor{IgnoreGitignore: true}, root)
	assert.Contains(t, disabled, "keep.txt")
	assert.Contains(t, disabled, "debug.log")
}

func TestGitignoreRulesAccumulateAcrossRoots(t *testing.T) {
	parentA := t.TempDir()
	rootA := filepath.Join(parentA, "a")
	writeFiles(t, parentA, map[string]string{".gitignore": "*.log\n"})
	writeFiles(t, rootA, map[string]string{"keep.txt": "keep"})

	rootB := t.TempDir()
	writeFiles(t, rootB, map[string]string{"late.log": "noise"})

	// Rules loaded for root A persist while root B is walked.
	out := run(t, &Processor{}, rootA, rootB)
	assert.Contains(t, out, "keep.txt")
	assert.NotContains(t, out, "late.log")
}

func TestIndexSharedAcrossRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	writeFiles(t, rootA, map[string]string{"one.txt": "1"})
	writeFiles(t, rootB, map[string]string{"two.txt": "2", "three.txt": "3"})

	p := &Processor{Format: FormatClaudeXML, IgnoreGitignore: true}
	out := run(t, p, rootA, rootB)

	for i := 1; i <= 3; i++ {
		assert.Contains(t, out, fmt.Sprintf("<document index=\"%d\">", i))
	}
	assert.NotContains(t, out, "<document index=\"4\">")
	// Indices appear in strictly increasing order.
	assert.Less(t,
		strings.Index(out, "<document index=\"1\">"),
		strings.Index(out, "<document index=\"2\">"))
	assert.Less(t,
		strings.Index(out, "<document index=\"2\">"),
		strings.Index(out, "<document index=\"3\">"))
}

func TestMissingRootIsFatal(t *testing.T) {
	var sb strings.Builder
	p := &Processor{Format: FormatClaudeXML, IgnoreGitignore: true}
	err := p.Run(&sb, []string{filepath.Join(t.TempDir(), "no-such-path")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path does not exist")
	// Nothing is written before the fatal check, not even the envelope.
	assert.Empty(t, sb.String())
}

func TestMissingRootStopsBeforeFurtherRoots(t *testing.T) {
	good := t.TempDir()
	writeFiles(t, good, map[string]string{"a.txt": "a"})

	var sb strings.Builder
	p := &Processor{IgnoreGitignore: true}
	err := p.Run(&sb, []string{filepath.Join(good, "missing"), good})
	require.Error(t, err)
	assert.Empty(t, sb.String())
}

func TestUnreadableFileWarnsAndContinues(t *testing.T) {
	var out, diag strings.Builder
	p := &Processor{Diag: &diag}
	ser := NewSerializer(&out, FormatPlain)

	// Reading a directory as a file fails deterministically on every
	// platform, standing in for a permission error.
	dir := t.TempDir()
	require.NoError(t, p.emitFile(dir, ser, &diag))

	assert.Contains(t, diag.String(), "Warning: Skipping file "+dir)
	assert.Empty(t, out.String())
	assert.Zero(t, ser.Count())
}

func TestPlainRoundTrip(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt": "first\nfile",
		"b.txt": "second",
	}
	writeFiles(t, dir, files)

	out := run(t, &Processor{IgnoreGitignore: true}, dir)

	parts := strings.Split(out, "\n---\n")
	// path, content per file, plus the trailing empty segment.
	require.Len(t, parts, len(files)*2+1)
	assert.Empty(t, parts[len(parts)-1])
	for i := 0; i < len(files); i++ {
		path := parts[i*2]
		content := parts[i*2+1]
		assert.Equal(t, files[filepath.Base(path)], content)
	}
}

func TestIdempotence(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":      "alpha",
		"sub/b.txt":  "beta",
		"sub/c.json": "{}",
	})

	p := &Processor{Format: FormatClaudeXML, IgnoreGitignore: true}
	first := run(t, p, dir)
	second := run(t, &Processor{Format: FormatClaudeXML, IgnoreGitignore: true}, dir)
	assert.Equal(t, first, second)
}

func TestDefaultRootIsCwd(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hi"})

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	out := run(t, &Processor{IgnoreGitignore: true})
	assert.Contains(t, out, "a.txt\n---\nhi\n---\n")
}
