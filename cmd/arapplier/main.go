// SPDX-License-Identifier: GPL-2.0-only

// Command arapplier applies one or more index files, recovering and
// continuing to the next file if any single one fails.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arpatch/arpatch"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := &cobra.Command{
		Use:           "arapplier <index>...",
		Short:         "Apply one or more index files, streaming each reconstruction",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	exitCode := 0
	root.RunE = func(cmd *cobra.Command, indexPaths []string) error {
		logger, err := zap.NewProduction()
		if err != nil {
			logger = zap.NewNop()
		}
		defer logger.Sync()

		opts := &arpatch.ApplyOptions{Streaming: true}

		for _, indexPath := range indexPaths {
			if err := arpatch.Apply(indexPath, opts, logger); err != nil {
				logger.Error("failed to apply index file",
					zap.String("indexPath", indexPath),
					zap.Error(err),
				)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", indexPath, err)
				exitCode = 2
				continue
			}
			logger.Info("applied index file", zap.String("indexPath", indexPath))
		}
		return nil
	}

	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return exitCode
}
