package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Check heap invariants",
		Long: `The verify command checks that every chunk is tiled by well-formed
blocks, that every free list is consistent and complete, and that allocated
and free bytes add up to the data area. It exits non-zero on the first
violation.

Example:
  symdbctl verify index.pdom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(args)
		},
	}
}

func runVerify(args []string) (err error) {
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	r, verr := ix.Verify()
	if jsonOut {
		res := struct {
			Valid  bool   `json:"valid"`
			Error  string `json:"error,omitempty"`
			Report any    `json:"report"`
		}{Valid: verr == nil, Report: r}
		if verr != nil {
			res.Error = verr.Error()
		}
		if err := printJSON(res); err != nil {
			return err
		}
		return verr
	}
	if verr != nil {
		return verr
	}

	printInfo("\nVerification:\n")
	printInfo("  ✓ %d chunks tiled by blocks\n", r.Chunks)
	printInfo("  ✓ %d free blocks, all listed\n", r.ListedFree)
	printInfo("  ✓ %d allocated blocks\n", r.AllocatedBlocks)
	return nil
}
