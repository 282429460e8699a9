package files2prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/alexflint/go-arg"
	"github.com/atotto/clipboard"

	"files2prompt/internal/metrics"
)

// Args defines the command-line arguments.
type Args struct {
	Paths           []string `arg:"positional" help:"Files or directories to process (default: current directory)"`
	Extensions      []string `arg:"-e,--extension,separate" help:"File extension to include; repeatable (default: all)"`
	IgnorePatterns  []string `arg:"--ignore,separate" help:"Glob pattern of filenames to exclude; repeatable"`
	IncludeHidden   bool     `arg:"--include-hidden" help:"Include files and folders starting with ."`
	IgnoreGitignore bool     `arg:"--ignore-gitignore" help:"Ignore .gitignore files and include all files"`
	ClaudeXML       bool     `arg:"-c,--cxml" help:"Output in XML format suitable for Claude's long context window"`
	Output          string   `arg:"-o,--output" help:"Write output to a file instead of stdout"`
	Clipboard       bool     `arg:"--clipboard" help:"Copy output to the system clipboard instead of stdout"`
	Metrics         string   `arg:"-m,--metrics" help:"Write metrics JSON to a file; '-' for stderr"`
	Breakdown       bool     `arg:"--breakdown" help:"Print a per-file token breakdown to stderr"`
	TokenEstimator  string   `arg:"--token-estimator" help:"Token count estimator: 'simple' (size/4) or 'tiktoken'" default:"simple"`
}

// CLI is the command-line application.
type CLI struct {
	Args *Args
}

// InitCLI parses command-line arguments and builds the application.
func InitCLI() (*CLI, error) {
	args := &Args{}
	arg.MustParse(args)
	return &CLI{Args: args}, nil
}

// Run executes one invocation: resolve the output sink, stream the roots
// through a Processor, then flush the side channels (clipboard, metrics,
// breakdown).
func (cli *CLI) Run() error {
	args := cli.Args

	collector, err := buildCollector(args)
	if err != nil {
		return err
	}

	// Resolve the output sink. A file that cannot be created is fatal:
	// never write through an invalid sink.
	var out io.Writer
	var buf bytes.Buffer
	switch {
	case args.Clipboard:
		out = &buf
	case args.Output != "":
		f, err := os.Create(args.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file %s: %w", args.Output, err)
		}
		defer f.Close()
		out = f
	default:
		out = os.Stdout
	}

	format := FormatPlain
	if args.ClaudeXML {
		format = FormatClaudeXML
	}

	p := &Processor{
		Extensions:      args.Extensions,
		IgnorePatterns:  args.IgnorePatterns,
		IncludeHidden:   args.IncludeHidden,
		IgnoreGitignore: args.IgnoreGitignore,
		Format:          format,
		Diag:            os.Stderr,
		Metrics:         collector,
	}

	if err := p.Run(out, args.Paths); err != nil {
		return err
	}

	if args.Clipboard {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			return fmt.Errorf("failed to copy output to clipboard: %w", err)
		}
	}

	if collector != nil {
		collector.Wait()
		if args.Metrics != "" {
			if err := writeMetrics(collector, args.Metrics); err != nil {
				return err
			}
		}
		if args.Breakdown {
			opt := metrics.DefaultBreakdownOptions(os.Stderr)
			if err := metrics.PrintBreakdown(collector, opt); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCollector creates the metrics collector when metrics or breakdown
// output was requested; otherwise it returns nil and counting is skipped
// entirely.
func buildCollector(args *Args) (*metrics.Collector, error) {
	if args.Metrics == "" && !args.Breakdown {
		return nil, nil
	}

	var counter metrics.Counter
	switch args.TokenEstimator {
	case "tiktoken":
		c, err := metrics.NewTiktokenCounter("gpt-3.5-turbo")
		if err != nil {
			// Fall back to the simple estimate when the tokenizer data is
			// unavailable.
			counter = &metrics.SimpleCounter{}
		} else {
			counter = c
		}
	case "simple":
		counter = &metrics.SimpleCounter{}
	default:
		return nil, fmt.Errorf("unknown token estimator: %s", args.TokenEstimator)
	}

	return metrics.NewCollector(counter, runtime.NumCPU()), nil
}

// writeMetrics renders the collector as JSON to the given destination,
// where "-" means stderr.
func writeMetrics(c *metrics.Collector, dest string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	data = append(data, '\n')

	if dest == "-" {
		_, err := os.Stderr.Write(data)
		return err
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", dest, err)
	}
	return nil
}
