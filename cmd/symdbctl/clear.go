package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

func init() {
	cmd := newClearCmd()
	cmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Confirm dropping every record")
	rootCmd.AddCommand(cmd)
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <file>",
		Short: "Free every record",
		Long: `The clear command drops every allocation. The file keeps its size
and version; each data chunk becomes one free block.

Example:
  symdbctl clear index.pdom --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(args)
		},
	}
}

func runClear(args []string) (err error) {
	if !clearYes {
		return fmt.Errorf("refusing to clear %s without --yes", args[0])
	}
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	if err := ix.Clear(); err != nil {
		return err
	}
	if err := ix.Save(); err != nil {
		return err
	}
	printInfo("Cleared %s (%d chunks)\n", args[0], ix.DB().ChunkCount())
	return nil
}
