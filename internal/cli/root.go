package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pdfcmd/internal/config"
	"pdfcmd/internal/container"
)

const (
	flagFile     = "file"
	flagOutput   = "outputfile"
	flagMerge    = "merge"
	flagRanges   = "ranges"
	flagCompress = "compress"
)

// rootOptions are the flags of the merge command
type rootOptions struct {
	file     string
	output   string
	merge    []string
	ranges   []int
	compress bool
}

// app carries the state shared by all commands of one invocation
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	noHistory  bool

	root      rootOptions
	container *container.Container
}

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	cmd := a.newRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(rangeArgs(args))

	err := cmd.ExecuteContext(ctx)
	if a.container != nil {
		if cerr := a.container.Close(); cerr != nil {
			a.container.GetConfig().Logger.Warn("Failed to close database", "error", cerr)
		}
	}
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		fmt.Fprintln(stderr, exitErr.Message)
		return exitErr.Code
	}
	fmt.Fprintln(stderr, err)
	return ExitFailure
}

func (a *app) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfcmd -o OUTPUT (-m FILE FILE... [-r START END...] | -f FILE) [-c]",
		Short: "Merge and compress PDF files",
		Long: `pdfcmd merges PDF files into one output file. Each input can be limited
to a page range: -r takes a start and end page per input, 0-based, with the
start included and the end excluded. With -c the page content streams of the
result are compressed.`,
		Example: `  pdfcmd -o out.pdf -m a.pdf b.pdf
  pdfcmd -o out.pdf -m a.pdf,b.pdf -r 0,2,1,3 -c
  pdfcmd -o small.pdf -f big.pdf -c`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runRoot,
	}

	flags := cmd.Flags()
	flags.StringVarP(&a.root.file, flagFile, "f", "", "single PDF file to copy to the output")
	flags.StringVarP(&a.root.output, flagOutput, "o", "", "output PDF file (required)")
	flags.StringSliceVarP(&a.root.merge, flagMerge, "m", nil, "PDF files to merge, at least two")
	flags.IntSliceVarP(&a.root.ranges, flagRanges, "r", nil, "page ranges, a start and end per merged file; values may follow -r as separate arguments")
	flags.BoolVarP(&a.root.compress, flagCompress, "c", false, "compress page content streams of the output")

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&a.configPath, "config", "", "configuration file (default "+config.DefaultConfigPath()+")")
	persistent.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	persistent.BoolVar(&a.noHistory, "no-history", false, "do not record this run in the job history")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return a.usageError(c, err.Error())
	})

	cmd.AddCommand(a.newHistoryCommand(), a.newStatsCommand(), a.newPrefsCommand())
	return cmd
}

// setup loads the configuration and builds the container
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return &ExitError{Code: ExitFailure, Message: err.Error()}
	}
	cfg.SetLogOutput(a.stderr)

	if a.logLevel != "" {
		if err := cfg.SetLogLevel(a.logLevel); err != nil {
			return a.usageError(cmd, err.Error())
		}
	}
	if a.noHistory {
		cfg.History = false
	}

	a.container = container.New(cfg)
	return nil
}

// usageError prints the usage of cmd and returns an ExitError with the usage code
func (a *app) usageError(cmd *cobra.Command, msg string) error {
	fmt.Fprint(a.stderr, cmd.UsageString())
	return &ExitError{Code: ExitUsage, Message: msg}
}

// classifyArgs assigns trailing positional arguments to the list flags, so
// that "-m a.pdf b.pdf" and "-r 0 1 2 3" work. Integers go to the ranges
// when -r was given, everything else to the merge list when -m was given.
func classifyArgs(flags *pflag.FlagSet, opts *rootOptions, args []string) error {
	rangesSet := flags.Changed(flagRanges)
	mergeSet := flags.Changed(flagMerge)

	for _, arg := range args {
		if rangesSet {
			if n, err := strconv.Atoi(arg); err == nil {
				opts.ranges = append(opts.ranges, n)
				continue
			}
		}
		if mergeSet {
			opts.merge = append(opts.merge, arg)
			continue
		}
		return fmt.Errorf("unexpected argument %q", arg)
	}
	return nil
}

// rangeArgs folds the integers trailing a -r/--ranges value into --ranges=N
// arguments, so "-r 0 1 -1 2" keeps its order and "-1" is not read as a
// shorthand flag. Everything after "--" is left alone.
func rangeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	inRanges := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return append(out, args[i:]...)
		case arg == "-r" || arg == "--"+flagRanges:
			out = append(out, arg)
			if i+1 < len(args) {
				i++
				out = append(out, args[i])
			}
			inRanges = true
			continue
		case strings.HasPrefix(arg, "-r") || strings.HasPrefix(arg, "--"+flagRanges+"="):
			out = append(out, arg)
			inRanges = true
			continue
		}

		if inRanges {
			if _, err := strconv.Atoi(arg); err == nil {
				out = append(out, "--"+flagRanges+"="+arg)
				continue
			}
		}
		inRanges = false
		out = append(out, arg)
	}
	return out
}
