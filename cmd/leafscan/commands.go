package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"leafscan/cmd/leafscan/cli"
	"leafscan/internal/config"
	"leafscan/internal/errors"
	"leafscan/internal/gui"
	"leafscan/internal/intake"
	"leafscan/internal/predict"
	"leafscan/internal/render"
	"leafscan/internal/tui"
	"leafscan/internal/upload"
	"leafscan/internal/watch"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// sleep is replaced by tests to play animations instantly
var sleep = time.Sleep

// tuiCmd represents the TUI command
func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal user interface",
		Long: `Start the interactive terminal UI. Drop an image file onto the terminal
or paste its path, press enter to analyze and esc to remove it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	loader, err := intake.FromConfig(a.cfg)
	if err != nil {
		return err
	}
	a.logToFile()
	return tui.Run(cmd.Context(), a.cfg, predict.FromConfig(a.cfg), loader)
}

// guiCmd creates the GUI command for the CLI
func (a *app) guiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Launch the graphical user interface",
		Long:  `Open a desktop window: drag a leaf photo onto it or choose one, then analyze.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !gui.IsGUIAvailable() {
				return errors.New("this build has no GUI; use `leafscan tui`")
			}
			loader, err := intake.FromConfig(a.cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return gui.StartGUI(ctx, a.cfg, predict.FromConfig(a.cfg), loader, a.cfgPath)
		},
	}
}

// analyzeCmd classifies one image and prints the result
func (a *app) analyzeCmd() *cobra.Command {
	var (
		jsonOut bool
		animate bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a single leaf image",
		Long: `Validate an image, send it to the prediction service and print the
diagnosis. Exits non-zero when the image is rejected or the request fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.analyze(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], jsonOut, animate)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the raw prediction as JSON")
	cmd.Flags().BoolVarP(&animate, "animate", "a", false, "reveal the result the way the UI does")

	return cmd
}

func (a *app) analyze(ctx context.Context, out, status io.Writer, path string, jsonOut, animate bool) error {
	loader, err := intake.FromConfig(a.cfg)
	if err != nil {
		return err
	}
	file, err := loader.Load(path)
	if err != nil {
		return err
	}

	m := upload.New(nil)
	if err := m.Load(file); err != nil {
		return errors.Wrap(err, upload.MessageFor(err))
	}
	if !jsonOut {
		cli.PrintInfo(status, fmt.Sprintf("Analyzing %s (%s)...", file.Name, humanize.Bytes(uint64(file.Size))))
	}

	if err := m.AnalyzeSync(ctx, predict.FromConfig(a.cfg)); err != nil {
		return errors.Wrap(err, upload.MsgFailed)
	}
	res := m.Result()

	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	view := render.Result(res)
	if animate {
		cli.Animate(out, view, a.cfg.Timing(), sleep)
		return nil
	}
	fmt.Fprintln(out, cli.DrawBox(render.Summary(view)))
	return nil
}

// healthCmd queries the service health endpoint
func (a *app) healthCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the prediction service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := predict.FromConfig(a.cfg)
			rep, err := client.Health(cmd.Context())
			if err != nil {
				return errors.Wrapf(err, "%s is not reachable", client.BaseURL())
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			cli.PrintHeader(out, "Prediction service "+client.BaseURL())
			fmt.Fprintf(out, "Status:            %s\n", rep.Status)
			fmt.Fprintf(out, "Model loaded:      %t\n", rep.ModelLoaded)
			fmt.Fprintf(out, "Disease database:  %t\n", rep.DiseaseDatabaseLoaded)
			fmt.Fprintf(out, "Classes:           %d\n", rep.TotalClasses)
			if !rep.ModelLoaded {
				cli.PrintWarning(out, "the model is not loaded; predictions will fail")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the health report as JSON")
	return cmd
}

// watchCmd analyzes every image dropped into the given directories
func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Analyze images as they appear in inbox directories",
		Long: `Watch directories for new images and analyze each one once it has
stopped changing. Directories default to watch.directories from the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := args
			if len(dirs) == 0 {
				dirs = a.cfg.Watch.Directories
			}
			loader, err := intake.FromConfig(a.cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			inbox := watch.NewInbox(a.cfg, loader, predict.FromConfig(a.cfg),
				watch.WithDirectories(dirs...),
				watch.WithReportHandler(func(rep watch.Report) {
					printReport(out, rep)
				}),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if len(dirs) > 0 {
				cli.PrintInfo(out, fmt.Sprintf("Watching %d director%s. Press Ctrl+C to stop.", len(dirs), plural(len(dirs), "y", "ies")))
			}
			if err := inbox.Run(ctx); err != nil {
				return err
			}

			s := inbox.Status()
			cli.PrintInfo(out, fmt.Sprintf("Stopped: %d analyzed, %d failed", s.Processed, s.Failed))
			return nil
		},
	}
	return cmd
}

func printReport(w io.Writer, rep watch.Report) {
	name := filepath.Base(rep.Path)
	if rep.Err != nil {
		cli.PrintError(w, fmt.Sprintf("%s: %s", name, reportMessage(rep.Err)))
		return
	}
	v := render.Result(rep.Result)
	cli.PrintSuccess(w, fmt.Sprintf("%s: %s (%d%%, %s)", name, v.DiseaseName, v.Percent, v.Badge.Label))
}

func reportMessage(err error) string {
	if errors.IsValidation(err) {
		return upload.MessageFor(err)
	}
	return err.Error()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// configCmd manages the configuration file
func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		// init must work even when the existing file does not load
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.configureLogging(cmd.ErrOrStderr())
			return a.resolvePath()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.cfgPath); err == nil && !force {
				return errors.NewFileError("config file already exists (use --force to overwrite)", a.cfgPath, errors.FileAccessDenied, nil)
			}
			if err := config.SaveConfig(config.New(), a.cfgPath); err != nil {
				return err
			}
			cli.PrintSuccess(cmd.OutOrStdout(), "Wrote "+a.cfgPath)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return errors.Wrap(err, "could not encode configuration")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n", a.cfgPath)
			_, err = out.Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
