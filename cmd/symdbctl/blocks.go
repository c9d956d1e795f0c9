package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/symdb/db/alloc"
)

var blocksFreeOnly bool

func init() {
	cmd := newBlocksCmd()
	cmd.Flags().BoolVar(&blocksFreeOnly, "free", false, "List only free blocks")
	rootCmd.AddCommand(cmd)
}

func newBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks <file>",
		Short: "List every block in file order",
		Long: `The blocks command walks each data chunk and prints one line per
block: its offset, size and whether it is allocated or free.

Example:
  symdbctl blocks index.pdom
  symdbctl blocks index.pdom --free --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlocks(args)
		},
	}
}

type blockRow struct {
	Offset string `json:"offset"`
	Size   int    `json:"size"`
	Free   bool   `json:"free"`
}

func runBlocks(args []string) (err error) {
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	rows := []blockRow{}
	err = ix.Do(func() error {
		return ix.Allocator().Walk(func(b alloc.Block) error {
			if blocksFreeOnly && !b.Free {
				return nil
			}
			rows = append(rows, blockRow{Offset: b.Offset.String(), Size: b.Size, Free: b.Free})
			return nil
		})
	})
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(rows)
	}
	for _, r := range rows {
		state := "allocated"
		if r.Free {
			state = "free"
		}
		printInfo("%-10s %6d %s\n", r.Offset, r.Size, state)
	}
	printVerbose("%d blocks\n", len(rows))
	return nil
}
