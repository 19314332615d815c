package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pdfcmd/internal/common"
	"pdfcmd/internal/merge"
	"pdfcmd/internal/services"
)

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	opts := &a.root
	flags := cmd.Flags()
	logger := a.container.GetConfig().Logger

	if err := classifyArgs(flags, opts, args); err != nil {
		return a.usageError(cmd, err.Error())
	}
	if opts.output == "" {
		return a.usageError(cmd, fmt.Sprintf("required flag \"%s\" not set", flagOutput))
	}
	if flags.Changed(flagRanges) && len(opts.merge) == 0 {
		return a.usageError(cmd, "--ranges can only be used with --merge")
	}

	svc := a.container.GetMergeService()
	compress := opts.compress
	if !flags.Changed(flagCompress) {
		compress = svc.CompressByDefault()
	}

	switch {
	case len(opts.merge) > 0:
		if len(opts.merge) < 2 {
			return a.usageError(cmd, "at least two files are required to merge")
		}

		var bounds []int
		if flags.Changed(flagRanges) {
			bounds = opts.ranges
		}
		ranges, err := merge.BuildRanges(opts.merge, bounds)
		if err != nil {
			if errors.Is(err, merge.ErrRangeCount) {
				return a.usageError(cmd, err.Error())
			}
			return err
		}
		if opts.file != "" {
			logger.Warn("Ignoring --file while merging", "file", opts.file)
		}

		resp, err := svc.Merge(cmd.Context(), services.MergeRequest{
			Ranges:     ranges,
			OutputPath: opts.output,
			Compress:   compress,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Merged %d files (%d pages) into %s, %s\n",
			resp.InputCount, resp.PageCount, resp.OutputPath, common.HumanSize(resp.MergedSize))
		printCompression(a.stdout, resp)
		return nil

	case opts.file != "":
		resp, err := svc.Treat(cmd.Context(), services.TreatRequest{
			InputPath:  opts.file,
			OutputPath: opts.output,
			Compress:   compress,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Wrote %s (%d pages) to %s, %s\n",
			opts.file, resp.PageCount, resp.OutputPath, common.HumanSize(resp.OutputSize))
		printCompression(a.stdout, resp)
		return nil

	default:
		return cmd.Help()
	}
}

func printCompression(w io.Writer, resp *services.MergeResponse) {
	result := resp.Compression
	if result == nil {
		return
	}
	fmt.Fprintf(w, "Compressed %d streams: %s -> %s (saved %s, %.1f%%)\n",
		result.StreamsEncoded,
		common.HumanSize(result.OriginalSize),
		common.HumanSize(result.CompressedSize),
		common.HumanSize(result.DataSaved()),
		result.CompressionRatio)
}
