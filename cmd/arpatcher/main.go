// SPDX-License-Identifier: GPL-2.0-only

// Command arpatcher generates and applies binary index files: the
// three-subcommand surface described by the external interface
// (generateIndexFile, buildNewFile, buildNewFileLow).
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"go.uber.org/zap"

	"github.com/arpatch/arpatch"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	if errors.Is(err, arpatch.ErrUsage) {
		return 1
	}
	return 2
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "arpatcher",
		Short:         "Generate and apply binary index files describing how to rebuild one file from another",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateIndexFileCommand())
	root.AddCommand(newBuildNewFileCommand())
	root.AddCommand(newBuildNewFileLowCommand())
	for _, c := range root.Commands() {
		checkArgs := c.Args
		c.Args = func(cmd *cobra.Command, args []string) error {
			if err := checkArgs(cmd, args); err != nil {
				return fmt.Errorf("%w: %v", arpatch.ErrUsage, err)
			}
			return nil
		}
	}
	return root
}

func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func newGenerateIndexFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generateIndexFile <old> <new> <indexOut> <maxBufMiB> <minChunkFactor>",
		Short: "Generate an index file describing how to rebuild <new> from <old>",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPath, newPath, indexOut := args[0], args[1], args[2]

			maxBufMiB, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("%w: maxBufMiB: %v", arpatch.ErrUsage, err)
			}
			minChunkFactor, err := strconv.ParseFloat(args[4], 64)
			if err != nil {
				return fmt.Errorf("%w: minChunkFactor: %v", arpatch.ErrUsage, err)
			}

			maxSingleBufferSize := 0
			if maxBufMiB > 0 {
				maxSingleBufferSize = int(maxBufMiB * 1024 * 1024)
			}

			logger := newLogger()
			defer logger.Sync()

			progressBars := mpb.New(mpb.WithWidth(60))
			bar := progressBars.AddBar(100,
				mpb.PrependDecorators(decor.Name("diffing ")),
				mpb.AppendDecorators(decor.Percentage()),
			)
			var lastPct int64

			opts := arpatch.DefaultGenerateOptions()
			opts.MaxSingleBufferSize = maxSingleBufferSize
			opts.MinimumChunkFactor = minChunkFactor
			opts.Progress = func(processed, total int) {
				if total == 0 {
					return
				}
				pct := int64(processed) * 100 / int64(total)
				bar.IncrInt64(pct - lastPct)
				lastPct = pct
			}

			report, err := arpatch.Generate(oldPath, newPath, indexOut, opts, logger)
			bar.Abort(false)
			progressBars.Wait()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "index file written: %d chunks, %d reference bytes, %d literal bytes, %d bytes on disk\n",
				report.ChunkCount, report.ReferenceBytes, report.LiteralBytes, report.IndexFileSize)
			return nil
		},
	}
}

func newBuildNewFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buildNewFile <index>",
		Short: "Reconstruct the new file from an index file using batch reconstruction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()
			return arpatch.Apply(args[0], arpatch.DefaultApplyOptions(), logger)
		},
	}
}

func newBuildNewFileLowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "buildNewFileLow <index> <maxBufferBytes>",
		Short: "Reconstruct the new file from an index file using streaming reconstruction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			maxBufferBytes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: maxBufferBytes: %v", arpatch.ErrUsage, err)
			}

			logger := newLogger()
			defer logger.Sync()
			return arpatch.Apply(args[0], &arpatch.ApplyOptions{Streaming: true, BufferSize: maxBufferBytes}, logger)
		},
	}
}
