// Package cli is folio's command tree: the agent itself, a client command
// per bridge channel, an interactive shell and the schema export.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fpt/folio/internal/config"
)

// Version is stamped at build time.
var Version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	addr       string
}

// NewRootCommand builds the full command tree. Each call returns a fresh
// tree so flags never leak between runs.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "folio",
		Short: "File-tree bridge between a sandboxed editor UI and the filesystem",
		Long: `folio runs a privileged agent that owns every filesystem operation of a
writing tool, and a set of client commands that call it over the bridge.

Start the agent in one terminal:
  folio agent

and call it from another:
  folio ls ~/notes
  folio write ~/notes/today.md "first line"
  folio shell`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to settings file (default: .folio/settings.json or ~/.folio/settings.json)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides settings")
	pf.StringVar(&flags.addr, "addr", "", "Agent address host:port; overrides settings")

	cmd.AddCommand(
		newAgentCommand(flags),
		newShellCommand(flags),
		newSchemaCommand(),
	)
	cmd.AddCommand(newClientCommands(flags)...)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadSettings reads settings and applies flag overrides.
func (f *rootFlags) loadSettings(stderr io.Writer) *config.Settings {
	settings, err := config.LoadSettings(f.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}
	if f.logLevel != "" {
		settings.Agent.LogLevel = f.logLevel
	}
	if f.addr != "" {
		settings.Agent.Addr = f.addr
	}
	return settings
}

// agentAddr resolves the address client commands dial. Settings are only
// read when --addr is not given.
func (f *rootFlags) agentAddr(stderr io.Writer) string {
	if f.addr != "" {
		return f.addr
	}
	return f.loadSettings(stderr).Agent.Addr
}

// baseURL is the agent address with a scheme.
func (f *rootFlags) baseURL(stderr io.Writer) string {
	addr := f.agentAddr(stderr)
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return addr
}
