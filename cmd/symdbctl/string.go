package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/symdb/db"
)

func init() {
	cmd := &cobra.Command{
		Use:   "string",
		Short: "Read or write string records",
	}
	cmd.AddCommand(newStringGetCmd(), newStringPutCmd())
	rootCmd.AddCommand(cmd)
}

func newStringGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <recptr>",
		Short: "Print the string stored at a record pointer",
		Long: `Example:
  symdbctl string get index.pdom 0x4004`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStringGet(args)
		},
	}
}

func newStringPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <file> <text>",
		Short: "Store a string and print its record pointer",
		Long: `Example:
  symdbctl string put index.pdom "std::vector"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStringPut(args)
		},
	}
}

func parseRecPtr(s string) (db.RecPtr, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return db.Null, fmt.Errorf("invalid record pointer %q: %w", s, err)
	}
	return db.RecPtr(v), nil
}

func runStringGet(args []string) (err error) {
	p, err := parseRecPtr(args[1])
	if err != nil {
		return err
	}
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	text, err := ix.Strings().Get(p)
	if err != nil {
		return err
	}
	n, err := ix.Strings().Len(p)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"recptr": p.String(), "length": n, "text": text})
	}
	printVerbose("%s: %d code units\n", p, n)
	printInfo("%s\n", text)
	return nil
}

func runStringPut(args []string) (err error) {
	ix, err := openIndex(args[0])
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, ix.Close()) }()

	p, err := ix.Strings().New(args[1])
	if err != nil {
		return err
	}
	if err := ix.Save(); err != nil {
		return err
	}
	if jsonOut {
		return printJSON(map[string]any{"recptr": p.String()})
	}
	printInfo("%s\n", p)
	return nil
}
