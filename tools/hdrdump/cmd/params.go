package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/rfc2231"
)

func (a *app) paramsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params value",
		Short: "Decodes a Content-Type style value and its RFC 2231 parameters",
		Long: `Decodes a value such as 'text/plain; title*0*=us-ascii''en''a%20b; title*1=c'.
When the value does not start with a media type, it is read as a bare
parameter list.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := []byte(args[0])
			out := cmd.OutOrStdout()

			mt, ps, rest, err := rfc2231.ContentType(b)
			switch {
			case errors.Is(err, rfc2231.ErrNoMatch):
				ps, rest, _ = rfc2231.Parameters(b)
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "media type: %s\n", mt)
			}

			for _, name := range ps.Names() {
				fmt.Fprintf(out, "%s = %q\n", name, ps[name])
			}
			if len(rest) > 0 {
				a.logger.Warn("value not fully parsed", "rest", string(rest))
				fmt.Fprintf(out, "unparsed: %q\n", rest)
			}
			return nil
		},
	}
}
