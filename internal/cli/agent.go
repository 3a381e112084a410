package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/fpt/folio/internal/agent"
	"github.com/fpt/folio/internal/config"
	"github.com/fpt/folio/internal/connectrpc"
	"github.com/fpt/folio/internal/infra"
	"github.com/fpt/folio/internal/picker"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

type agentFlags struct {
	openFolder string
	start      string
	noMetrics  bool
	restrict   bool
}

func newAgentCommand(root *rootFlags) *cobra.Command {
	flags := &agentFlags{}

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Run the privileged agent and serve the bridge",
		Long: `Run the privileged agent. It serves every bridge channel over HTTP
(HTTP/1.1 and cleartext HTTP/2) until interrupted.

open-folder prompts on this terminal unless --open-folder fixes the answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runAgent(ctx, root, flags)
		},
	}

	cmd.Flags().StringVar(&flags.openFolder, "open-folder", "", "Answer every open-folder call with this folder instead of prompting")
	cmd.Flags().StringVar(&flags.start, "start", "", "Default answer offered by the folder prompt")
	cmd.Flags().BoolVar(&flags.noMetrics, "no-metrics", false, "Disable the metrics endpoint")
	cmd.Flags().BoolVar(&flags.restrict, "restrict-to-roots", false, "Refuse paths outside folders opened or listed in this session")
	return cmd
}

func runAgent(ctx context.Context, root *rootFlags, flags *agentFlags) error {
	settings := root.loadSettings(os.Stderr)
	if flags.noMetrics {
		settings.Metrics.Enabled = false
	}
	if flags.restrict {
		settings.Access.RestrictToRoots = true
	}
	if err := config.ValidateSettings(settings); err != nil {
		return errors.Wrap(err, "invalid settings")
	}

	logFile := ""
	if dirs, err := config.DefaultUserDirs(); err == nil {
		if err := dirs.EnsureDirectories(); err == nil {
			logFile = dirs.LogFile()
		}
	}
	logger := pkgLogger.New(pkgLogger.Options{
		Level: pkgLogger.LogLevel(settings.Agent.LogLevel),
		File:  logFile,
	})
	pkgLogger.SetGlobalLogger(logger)
	if loc := settings.Location(); loc != "" {
		logger.DebugWithIntention(pkgLogger.IntentionConfig, "Settings loaded", "path", loc)
	}

	pick, terminal, err := newPicker(flags)
	if err != nil {
		return err
	}

	a, err := agent.New(agent.Options{
		Filesystem: infra.NewOSFilesystemRepository(),
		Picker:     pick,
		Access:     settings.Access,
		MaxFanOut:  settings.Agent.MaxFanOut,
		Collation:  settings.Agent.Collation,
	})
	if err != nil {
		return err
	}
	defer a.Close()
	if terminal != nil {
		terminal.Recent = a.Roots
	}

	opts := connectrpc.ServerOptions{Addr: settings.Agent.Addr, Logger: logger}
	if settings.Metrics.Enabled {
		opts.MetricsPath = settings.Metrics.Path
	}

	fmt.Fprintf(os.Stderr, "folio agent %s listening on %s\n", Version, settings.Agent.Addr)
	if err := connectrpc.StartServer(ctx, a, opts); err != nil {
		return err
	}
	logger.InfoWithIntention(pkgLogger.IntentionStatus, "Agent stopped")
	return nil
}

// newPicker returns the folder picker for open-folder. The terminal picker
// is returned separately so its recent list can be bound to the agent.
func newPicker(flags *agentFlags) (picker.Picker, *picker.Terminal, error) {
	if flags.openFolder != "" {
		path, err := picker.ResolveFolder(flags.openFolder)
		if err != nil {
			return nil, nil, err
		}
		if err := picker.ValidateFolder(path); err != nil {
			return nil, nil, errors.Wrap(err, "--open-folder")
		}
		return picker.Fixed{Path: path}, nil, nil
	}
	t := picker.NewTerminal(flags.start)
	return t, t, nil
}
