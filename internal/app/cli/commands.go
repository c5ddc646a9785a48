// Package cli provides the agent binary's command-line surface: run the
// resident core, or print version information. There is nothing else to
// parse — no profiles, no service selection.
package cli

import (
	"github.com/spf13/cobra"

	"agentcore/internal/config"
)

// CommandType represents the type of CLI command.
type CommandType int

const (
	CommandRun CommandType = iota
	CommandVersion
)

// Options contains the parsed command-line arguments.
type Options struct {
	Type CommandType
}

// Parse parses command-line args and returns an Options struct.
func Parse(args []string) (*Options, error) {
	result := &Options{Type: CommandRun}

	root := buildRootCommand(result)
	root.AddCommand(buildRunCommand(result), buildVersionCommand(result))
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	return result, nil
}

func buildRootCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Resident runtime core of the observability agent",
		Long: `agent boots the resident runtime core: identity synthesis, the
channel to the collector fleet, the command scheduler, and dynamic
configuration polling.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRun
		},
	}

	return cmd
}

func buildRunCommand(result *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the resident core in the foreground",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandRun
		},
	}
}

func buildVersionCommand(result *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result.Type = CommandVersion
		},
	}
}

// Version is the agent build version, printed by the version subcommand.
var Version = config.Version
