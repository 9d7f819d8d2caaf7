package cmd

import (
	"fmt"
	"os"
	"strings"

	"braces.dev/errtrace"
	"github.com/mjl-/sconf"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/rfc5322"
)

// Config is the optional configuration file read with --config.
type Config struct {
	Policy          string   `sconf:"optional" sconf-doc:"Character policy for the header grammars: strict (ASCII only) or intl (UTF-8 allowed). Default: intl."`
	LogLevel        string   `sconf:"optional" sconf-doc:"Log level: debug, info, warn or error. Default: info."`
	LogFormat       string   `sconf:"optional" sconf-doc:"Log output format: console, dev, text or json. Default: console."`
	MaxHeaderLength int      `sconf:"optional" sconf-doc:"Maximum number of bytes in a header section. Zero means the built-in default, a negative number means no limit."`
	Fields          []string `sconf:"optional" sconf-doc:"Header fields printed by dump, matched case-insensitively. Default: all fields."`
}

func loadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return c, errtrace.Wrap(fmt.Errorf("open config file: %w", err))
	}
	defer func() { _ = f.Close() }()

	if err := sconf.Parse(f, &c); err != nil {
		return c, errtrace.Wrap(fmt.Errorf("parsing %s: %w", path, err))
	}
	return c, nil
}

func parsePolicy(name string) (rfc5322.Policy, error) {
	switch strings.ToLower(name) {
	case "", "intl":
		return rfc5322.Intl, nil
	case "strict":
		return rfc5322.Strict, nil
	}
	return nil, errtrace.Wrap(fmt.Errorf("unknown policy %q", name))
}

// wantField reports whether dump should print the named field.
func (c Config) wantField(name string) bool {
	if len(c.Fields) == 0 {
		return true
	}
	for _, f := range c.Fields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints an annotated example configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := Config{
				Policy:    "intl",
				LogLevel:  "info",
				LogFormat: "console",
				Fields:    []string{"From", "Subject", "Date"},
			}
			return errtrace.Wrap(sconf.Describe(cmd.OutOrStdout(), &c))
		},
	}
}
