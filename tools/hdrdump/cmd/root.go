package cmd

import (
	"io"
	"log/slog"
	"os"

	"braces.dev/errtrace"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mailparse/header"
	"github.com/zostay/go-mailparse/headersection"
	"github.com/zostay/go-mailparse/internal/log"
	"github.com/zostay/go-mailparse/rfc5322"
)

// app holds the settings shared by all commands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	policy     string

	cfg    Config
	pol    rfc5322.Policy
	logger *slog.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("policy") || cfg.Policy == "" {
		cfg.Policy = a.policy
	}

	lvl, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errtrace.Wrap(err)
	}
	a.logger, err = log.New(cmd.ErrOrStderr(), lvl, cfg.LogFormat)
	if err != nil {
		return errtrace.Wrap(err)
	}

	a.pol, err = parsePolicy(cfg.Policy)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger.Debug("configured",
		"config", a.configPath,
		"policy", cfg.Policy,
		"level", lvl)
	return nil
}

// headerOptions returns the header parsing options for the configured
// policy, logger and limits.
func (a *app) headerOptions() []header.Option {
	opts := []header.Option{
		header.WithPolicy(a.pol),
		header.WithLogger(a.logger),
	}
	if n := a.cfg.MaxHeaderLength; n != 0 {
		opts = append(opts, header.WithSectionOptions(headersection.WithMaxHeaderLength(n)))
	}
	return opts
}

// readHeader reads the header section of the named file, or of standard
// input when the name is "-". Bare LF line endings are accepted.
func (a *app) readHeader(cmd *cobra.Command, path string) (*header.Header, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errtrace.Wrap(err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	h, _, err := header.Read(crlfReader(r), a.headerOptions()...)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	a.logger.Debug("read header", "path", path, "header", h)
	return h, nil
}

func newRootCmd() *cobra.Command {
	a := &app{logger: log.Noop, pol: rfc5322.Intl}

	rootCmd := &cobra.Command{
		Use:          "hdrdump",
		Short:        "Tools for inspecting mail message headers",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "configuration file in sconf format")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", log.FormatConsole, "log format (console, dev, text, json)")
	pf.StringVar(&a.policy, "policy", "intl", "character policy (strict, intl)")

	rootCmd.AddCommand(
		a.dumpCmd(),
		a.wordCmd(),
		a.paramsCmd(),
		a.mboxCmd(),
		a.compareCmd(),
		a.configCmd(),
	)
	return rootCmd
}

// Run runs the command line in args, writing output to out.
func Run(args []string, in io.Reader, out io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	return errtrace.Wrap(rootCmd.Execute())
}

// Execute runs the command line of the process.
func Execute() error {
	return errtrace.Wrap(newRootCmd().Execute())
}
