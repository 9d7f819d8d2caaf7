package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"braces.dev/errtrace"
	"github.com/emersion/go-mbox"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/header"
	"github.com/zostay/go-mailparse/rfc5322"
)

func (a *app) mboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mbox file",
		Short: "Prints the sender, date and subject of every message in an mbox file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errtrace.Wrap(err)
			}
			defer func() { _ = f.Close() }()

			out := cmd.OutOrStdout()
			mr := mbox.NewReader(f)
			for i := 1; ; i++ {
				r, err := mr.NextMessage()
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return errtrace.Wrap(err)
				}

				h, _, err := header.Read(crlfReader(r), a.headerOptions()...)
				if err != nil {
					a.logger.Warn("skipping message", "index", i, "error", err)
					continue
				}

				from := "?"
				if list, err := h.GetFrom(); err == nil {
					if mbs := rfc5322.Mailboxes(list); len(mbs) > 0 {
						from = mbs[0].Address.String()
					}
				}

				date := "?"
				if t, err := h.GetDate(); err == nil {
					date = t.Format("2006-01-02 15:04")
				}

				subject, _ := h.GetSubject()
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", i, date, from, subject)
			}
		},
	}
}
