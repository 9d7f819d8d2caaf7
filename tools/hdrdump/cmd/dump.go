package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) dumpCmd() *cobra.Command {
	var raw bool

	c := &cobra.Command{
		Use:   "dump file",
		Short: "Prints every header field with its decoded value",
		Long: `Reads the header section of a message file ("-" for standard input) and
prints each field on its own line with its typed, decoded value. Lines that
are not fields are printed with a "!" marker.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.readHeader(cmd, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, f := range h.Fields() {
				if !f.Valid() {
					fmt.Fprintf(out, "! %q\n", f.Raw)
					continue
				}

				name := string(f.Name)
				if !a.cfg.wantField(name) {
					continue
				}
				if raw {
					fmt.Fprintf(out, "%s: %q\n", name, f.Value)
				}
				fmt.Fprintf(out, "%s: %s\n", name, describe(a.pol, h, f))
			}
			return nil
		},
	}
	c.Flags().BoolVar(&raw, "raw", false, "also print the raw value of each field")
	return c
}
