package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/charset"
	"github.com/zostay/go-mailparse/rfc2047"
)

func (a *app) wordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "word encoded-word...",
		Short: "Decodes RFC 2047 encoded words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				w, rest, err := rfc2047.ParseEncodedWord([]byte(arg))
				if err != nil {
					a.logger.Warn("not an encoded word", "word", arg)
					fmt.Fprintf(out, "%s: not an encoded word\n", arg)
					continue
				}
				if len(rest) > 0 {
					a.logger.Debug("ignoring text after encoded word", "rest", string(rest))
				}
				fmt.Fprintf(out, "%s: %s (%s)\n", arg, w.Decode(), charset.Name(w.Charset))
			}
			return nil
		},
	}
}
