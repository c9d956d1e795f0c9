package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Report header metadata",
		Long: `The info command opens a database and reports its version, chunk
count and file size.

Example:
  symdbctl info index.pdom
  symdbctl info index.pdom --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
}

type infoResult struct {
	File    string `json:"file"`
	Version int32  `json:"version"`
	Chunks  int    `json:"chunks"`
	Size    int64  `json:"size"`
	Mapped  bool   `json:"mapped"`
}

func runInfo(args []string) (err error) {
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	d := ix.DB()
	v, err := d.Version()
	if err != nil {
		return err
	}
	res := infoResult{File: args[0], Version: v, Chunks: d.ChunkCount(), Size: d.Size(), Mapped: d.Mapped()}

	if jsonOut {
		return printJSON(res)
	}
	printInfo("\nDatabase Information:\n")
	printInfo("  File: %s\n", res.File)
	printInfo("  Version: %d\n", res.Version)
	printInfo("  Chunks: %d\n", res.Chunks)
	printInfo("  Size: %s\n", formatBytes(res.Size))
	printVerbose("  Memory-mapped: %v\n", res.Mapped)
	return nil
}
