package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"braces.dev/errtrace"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/header"
	"github.com/zostay/go-mailparse/rfc5322"
)

// render describes every field of the header section in b under pol.
func render(b []byte, pol rfc5322.Policy) (string, error) {
	h, _, err := header.Parse(b, header.WithPolicy(pol))
	if err != nil {
		return "", errtrace.Wrap(err)
	}

	var sb strings.Builder
	for _, f := range h.Fields() {
		if !f.Valid() {
			continue
		}
		fmt.Fprintf(&sb, "%s: %s\n", f.Name, describe(pol, h, f))
	}
	return sb.String(), nil
}

func (a *app) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare file",
		Short: "Shows how decoding differs between the strict and intl policies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errtrace.Wrap(err)
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			b, err := io.ReadAll(crlfReader(r))
			if err != nil {
				return errtrace.Wrap(err)
			}

			strict, err := render(b, rfc5322.Strict)
			if err != nil {
				return err
			}
			intl, err := render(b, rfc5322.Intl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if strict == intl {
				fmt.Fprintln(out, "no differences")
				return nil
			}

			dmp := diffmatchpatch.New()
			diffs := dmp.DiffMain(strict, intl, false)
			diffs = dmp.DiffCleanupSemantic(diffs)
			a.logger.Debug("policies differ", "edits", len(diffs))
			fmt.Fprintln(out, dmp.DiffPrettyText(diffs))
			return nil
		},
	}
}
