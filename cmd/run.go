package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/reqflat/batch"
	"github.com/gnoswap-labs/reqflat/formatter"
)

// flags shared by run and watch
var (
	rootArea  string
	verify    bool
	workers   int
	format    string
	showAreas bool
	showStats bool
	outPath   string
)

var errNoWorlds = errors.New("please provide world files or directories")

var runCmd = &cobra.Command{
	Use:   "run [worlds...]",
	Short: "Flatten and minimize the requirements of every location",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errNoWorlds
		}

		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return runWorlds(ctx, currentLogger(), config, args, cmd.OutOrStdout())
	},
}

func init() {
	addOutputFlags(runCmd)
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rootArea, "root", "", "Root area, overriding the world file")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check every minimized requirement against its DNF")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Worlds processed concurrently")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&showAreas, "areas", false, "Also print the requirement of every area")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print fixpoint statistics")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the report to a file instead of stdout")
}

func currentLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func runWorlds(ctx context.Context, logger *zap.Logger, config batch.Config, paths []string, stdout io.Writer) error {
	results, err := batch.ProcessWorlds(ctx, logger, config, paths)
	if err != nil {
		logger.Error("Error processing worlds", zap.Error(err))
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no world files found in %v", paths)
	}
	return writeReport(config.Format, results, stdout)
}

func writeReport(format string, results []*batch.Result, stdout io.Writer) error {
	opts := formatter.Options{Areas: showAreas, Stats: showStats}
	if outPath == "" {
		return formatter.Write(stdout, format, results, opts)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer f.Close()
	if err := formatter.Write(f, format, results, opts); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}
	return nil
}
