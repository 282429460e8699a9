package metrics

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
)

// BreakdownOptions controls the layout of the token breakdown chart. The
// terminal width is injected so the chart can be rendered deterministically
// in tests.
type BreakdownOptions struct {
	BarWidth  int        // 0 = auto (35% of terminal width)
	Fill      rune       // default '█'
	TermWidth func() int // returns terminal columns
	Writer    io.Writer  // chart destination
}

// DefaultBreakdownOptions returns options that render to w using the real
// terminal width of stderr.
func DefaultBreakdownOptions(w io.Writer) BreakdownOptions {
	return BreakdownOptions{
		Fill:      '█',
		TermWidth: stderrWidth,
		Writer:    w,
	}
}

// stderrWidth returns the width of the terminal behind stderr, or 80 when
// stderr is not a TTY.
func stderrWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// trimPath returns s unchanged if it fits in max columns; otherwise it keeps
// the suffix, which is the informative end of a file path.
func trimPath(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "…" + s[len(s)-max+1:]
}

// PrintBreakdown renders a per-document token contribution chart. Bars are
// normalized to the largest document, not to the total.
func PrintBreakdown(c *Collector, opt BreakdownOptions) error {
	const (
		pctW    = 6 // "100.0%"
		tokensW = 6 // right-aligned token count
		gapW    = 2 // spaces between columns
	)

	c.Wait()
	items := c.Items()

	var totalTokens, maxTokens int
	for _, item := range items {
		totalTokens += item.Tokens
		if item.Tokens > maxTokens {
			maxTokens = item.Tokens
		}
	}
	if totalTokens == 0 || maxTokens == 0 {
		_, err := fmt.Fprintln(opt.Writer, "No tokens recorded")
		return err
	}

	tw := 80
	if opt.TermWidth != nil {
		tw = opt.TermWidth()
	}
	barW := opt.BarWidth
	if barW <= 0 {
		barW = int(float64(tw) * 0.35)
	}
	pathW := tw - (barW + pctW + tokensW + gapW*3)
	if pathW < 8 {
		pathW = 8
	}

	fill := opt.Fill
	if fill == 0 {
		fill = '█'
	}

	type entry struct {
		path   string
		tokens int
	}
	entries := make([]entry, 0, len(items))
	for path, item := range items {
		entries = append(entries, entry{path: path, tokens: item.Tokens})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].tokens != entries[j].tokens {
			return entries[i].tokens > entries[j].tokens
		}
		return entries[i].path < entries[j].path
	})

	for _, e := range entries {
		barLen := e.tokens * barW / maxTokens
		pct := float64(e.tokens) / float64(totalTokens) * 100

		_, err := fmt.Fprintf(opt.Writer, "%-*s  %-*s  %*.1f%%  %*d\n",
			pathW, trimPath(e.path, pathW),
			barW, strings.Repeat(string(fill), barLen),
			pctW-1, pct,
			tokensW, e.tokens,
		)
		if err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(opt.Writer, "total: %d tokens across %d files\n",
		totalTokens, len(entries))
	return err
}
