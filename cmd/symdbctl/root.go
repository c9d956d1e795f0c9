package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/symdb/internal/logger"
	"github.com/joshuapare/symdb/pkg/symdb"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noMmap  bool

	// out receives all command output; tests swap it.
	out io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "symdbctl",
	Short: "Inspect and maintain symbol database files",
	Long: `symdbctl reports on the chunked heap inside a symbol database file:
its header, allocation statistics, block layout and free lists. It can also
verify heap invariants, read and write strings, and clear a database.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose && !quiet {
			logger.Init(logger.Options{Enabled: true, Level: slog.LevelDebug})
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noMmap, "no-mmap", false, "Read chunks into buffers instead of mapping them")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// openIndex opens an existing database; symdbctl never creates one by accident.
func openIndex(path string) (*symdb.Index, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found: %s", path)
		}
		return nil, err
	}
	printVerbose("Opening database: %s\n", path)
	return symdb.Open(path, &symdb.Options{DisableMmap: noMmap})
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatBytes(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d bytes", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}
