// Package main is the pc-agent command: a chat assistant that controls the
// local PC through tool calls.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/minhyannv/pc-agent-go/pkg/agent"
	"github.com/minhyannv/pc-agent-go/pkg/apps"
	configpkg "github.com/minhyannv/pc-agent-go/pkg/config"
	"github.com/minhyannv/pc-agent-go/pkg/display"
	"github.com/minhyannv/pc-agent-go/pkg/fsops"
	"github.com/minhyannv/pc-agent-go/pkg/launcher"
	loggerpkg "github.com/minhyannv/pc-agent-go/pkg/logger"
	"github.com/minhyannv/pc-agent-go/pkg/tools"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags cliFlags
	cmd := &cobra.Command{
		Use:   "pc-agent [message]",
		Short: "A chat assistant that launches apps, searches the web and manages files",
		Long: `pc-agent is an interactive assistant backed by an OpenAI-compatible chat model.
It can launch applications, run Google and YouTube searches and read, write,
move, rename and delete files on this PC.

Set OPENAI_API_KEY (optionally OPENAI_BASE_URL and OPENAI_MODEL) or
GEMINI_API_KEY. A .env file in the working directory is loaded first.

Examples:
  pc-agent                         # Interactive mode
  pc-agent -r                      # Interactive with markdown rendering
  pc-agent "open the calculator"   # Single message, then exit
  pc-agent -c ~/pc-agent.toml -v   # Custom settings file, verbose logs`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose logging to stderr")
	cmd.Flags().IntVar(&flags.maxTurns, "max-turns", 0, "Max model round trips per message (0 uses the settings file or 10)")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model name (overrides OPENAI_MODEL and the settings file)")
	cmd.Flags().StringVarP(&flags.configPath, "config", "c", "", "Settings file (YAML or TOML); defaults to pc-agent.yaml if present")
	cmd.Flags().BoolVarP(&flags.render, "render", "r", false, "Render replies as markdown")
	cmd.Flags().BoolVar(&flags.noSpinner, "no-spinner", false, "Disable the progress spinner")
	return cmd
}

func run(ctx context.Context, flags cliFlags, args []string, in io.Reader, out, errOut io.Writer) error {
	_ = godotenv.Load()

	cfg, err := loadConfig(flags, os.Getenv, configpkg.FindSettings)
	if err != nil {
		return err
	}

	var appLogger loggerpkg.Logger = loggerpkg.NopLogger{}
	if cfg.Verbose {
		appLogger = loggerpkg.NewWriterLogger(errOut)
	}
	if cfg.SettingsFile != "" {
		loggerpkg.Debug(cfg.Verbose, appLogger, "settings loaded", map[string]any{"path": cfg.SettingsFile})
	}

	disp, err := display.New(out, errOut, display.Options{Render: cfg.Render, Spinner: !flags.noSpinner})
	if err != nil {
		loggerpkg.Warn(appLogger, "markdown rendering disabled", map[string]any{"error": err.Error()})
	}

	library := apps.NewLibrary(apps.Defaults(runtime.GOOS), cfg.Apps)
	registry := tools.New(tools.Deps{
		Library:  library,
		Launcher: launcher.New(launcher.WithLogger(appLogger, cfg.Verbose)),
		FS:       fsops.New(cfg.MaxReadBytes, appLogger, cfg.Verbose),
		Browser:  cfg.Browser,
		Logger:   appLogger,
		Verbose:  cfg.Verbose,
	})

	app, err := agent.New(cfg,
		agent.WithLogger(appLogger),
		agent.WithRegistry(registry),
		agent.WithApplications(library.Names()),
	)
	if err != nil {
		return err
	}

	if len(args) == 1 {
		return runOnce(ctx, app, disp, args[0])
	}

	return runREPL(ctx, app, replOptions{
		Display:  disp,
		AppNames: library.Names(),
		Model:    cfg.Model,
		Verbose:  cfg.Verbose,
		Logger:   appLogger,
	}, in)
}

// runOnce sends a single message and prints the reply.
func runOnce(ctx context.Context, app runner, disp *display.Display, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return fmt.Errorf("message is empty")
	}
	sp := disp.StartSpinner("Thinking...")
	reply, err := app.Run(ctx, message)
	sp.Stop()
	if err != nil {
		return err
	}
	disp.Reply(reply)
	return nil
}
