package main

import (
	"errors"
	"slices"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <file>",
		Short: "Show heap allocation statistics",
		Long: `The stats command walks every block and reports allocated and free
bytes. With --verbose it breaks free blocks down by size.

Example:
  symdbctl stats index.pdom
  symdbctl stats index.pdom --verbose
  symdbctl stats index.pdom --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
}

func runStats(args []string) (err error) {
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	s, err := ix.Stats()
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(s)
	}

	printInfo("\nHeap Statistics:\n")
	printInfo("  Chunks: %d (%s)\n", s.Chunks, formatBytes(s.FileBytes))
	printInfo("  Allocated: %d blocks, %s\n", s.AllocatedBlocks, formatBytes(s.AllocatedBytes))
	printInfo("  Free: %d blocks, %s\n", s.FreeBlocks, formatBytes(s.FreeBytes))
	if s.FreeBlocks > 0 {
		printInfo("  Largest free block: %d bytes\n", s.LargestFree)
	}

	if verbose && len(s.FreeByClass) > 0 {
		sizes := make([]int, 0, len(s.FreeByClass))
		for size := range s.FreeByClass {
			sizes = append(sizes, size)
		}
		slices.Sort(sizes)
		printVerbose("\nFree blocks by size:\n")
		for _, size := range sizes {
			printVerbose("  %6d: %d\n", size, s.FreeByClass[size])
		}
	}
	return nil
}
