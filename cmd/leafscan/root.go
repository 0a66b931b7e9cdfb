package main

import (
	"io"
	"os"
	"path/filepath"

	"leafscan/cmd/leafscan/cli"
	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/log"

	"github.com/spf13/cobra"
)

// app carries the persistent flags and the configuration they resolve to
type app struct {
	cfgFile  string
	endpoint string
	debug    bool
	logJSON  bool

	cfgPath string
	cfg     *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "leafscan",
		Short: "Plant disease detection from leaf photos",
		Long: `leafscan sends a photo of a plant leaf to a disease classification
service and shows the diagnosis: disease name, confidence, health status,
causes, prevention and treatment.

Run without a subcommand to start the terminal UI.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	helpTemplate := cli.DrawLogo() + "\n\n" + rootCmd.HelpTemplate()
	rootCmd.SetHelpTemplate(helpTemplate)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/leafscan/config.yaml)")
	flags.StringVar(&a.endpoint, "endpoint", "", "prediction service base URL (overrides config and "+config.EnvEndpoint+")")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging")
	flags.BoolVar(&a.logJSON, "log-json", false, "write logs as JSON lines")

	rootCmd.AddCommand(a.tuiCmd())
	rootCmd.AddCommand(a.guiCmd())
	rootCmd.AddCommand(a.analyzeCmd())
	rootCmd.AddCommand(a.healthCmd())
	rootCmd.AddCommand(a.watchCmd())
	rootCmd.AddCommand(a.configCmd())

	return rootCmd
}

// setup resolves logging and configuration: file, then environment, then flags
func (a *app) setup(cmd *cobra.Command) error {
	a.configureLogging(cmd.ErrOrStderr())

	if err := a.resolvePath(); err != nil {
		return err
	}

	cfg, err := config.LoadConfigFile(a.cfgPath)
	if err != nil {
		return errors.NewConfigError("could not load configuration", a.cfgPath, errors.InvalidConfig, err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return errors.NewConfigError("invalid environment override", config.EnvEndpoint, errors.InvalidConfig, err)
	}
	if a.endpoint != "" {
		cfg.Endpoint.BaseURL = a.endpoint
		if err := cfg.Validate(); err != nil {
			return errors.NewConfigError("invalid --endpoint", a.endpoint, errors.InvalidConfig, err)
		}
	}

	a.cfg = cfg
	cli.SetTheme(cfg)
	log.LogWithFields(log.F("config", a.cfgPath), log.F("endpoint", cfg.Endpoint.BaseURL)).Debug("configuration loaded")
	return nil
}

func (a *app) resolvePath() error {
	if a.cfgFile != "" {
		a.cfgPath = a.cfgFile
		return nil
	}
	path, err := config.DefaultPath()
	if err != nil {
		return errors.NewConfigError("cannot locate the config directory", "", errors.ConfigNotFound, err)
	}
	a.cfgPath = path
	return nil
}

// configureLogging sends logs to w so stdout stays clean for command output
func (a *app) configureLogging(w io.Writer) {
	log.SetDebug(a.debug)
	opts := []log.Option{log.WithOutput(w)}
	if a.logJSON {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
}

// logToFile moves logging into a file while a full-screen UI owns the terminal
func (a *app) logToFile() string {
	path := filepath.Join(os.TempDir(), "leafscan.log")
	opts := []log.Option{log.WithFileOnly(path)}
	if a.logJSON {
		opts = append(opts, log.WithJSON())
	}
	log.Configure(opts...)
	return path
}
