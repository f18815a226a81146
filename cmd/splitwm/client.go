package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/splitwm/internal/commands"
	"github.com/1broseidon/splitwm/internal/ipc"
	"github.com/spf13/cobra"
)

func (f *globalFlags) client() *ipc.Client {
	if f.socketPath != "" {
		return ipc.NewClientForSocket(f.socketPath)
	}
	return ipc.NewClient()
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show window manager status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := flags.client().GetStatus()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(os.Stdout, status)
			}
			fmt.Printf("daemon_running:   %v\n", status.DaemonRunning)
			fmt.Printf("focused_monitor:  %s\n", status.FocusedMonitor)
			fmt.Printf("active_workspace: %s\n", status.ActiveWorkspace)
			fmt.Printf("window_count:     %d\n", status.WindowCount)
			fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}

func newMonitorsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "monitors",
		Short: "Print monitors and their workspaces as JSON",
		Long: `Print every monitor with its geometry, focus state and workspaces.

The output is pretty-printed on a terminal and a single line of JSON when
piped, so a status bar can read one snapshot per invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := flags.client().GetMonitors()
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, data.Monitors)
		},
	}
}

func newMsgCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "msg <command> [arg]",
		Short: "Run a window manager command",
		Long: fmt.Sprintf(`Queue a command on the running window manager and print its job id.

Commands: %s`, strings.Join(commands.Kinds(), ", ")),
		Example: `  splitwm msg workspace 3
  splitwm msg split vertical
  splitwm msg exec_on_workspace "xterm -e htop"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := ""
			if len(args) == 2 {
				arg = args[1]
			}
			// Reject malformed commands before touching the socket.
			kind, err := commands.ParseKind(args[0])
			if err != nil {
				return err
			}
			if _, err := commands.New(kind, arg); err != nil {
				return err
			}
			jobID, err := flags.client().RunCommand(args[0], arg)
			if err != nil {
				return err
			}
			fmt.Println(jobID)
			return nil
		},
	}
}

func newReloadCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload configuration in the running window manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.client().Reload(); err != nil {
				return err
			}
			fmt.Println("Configuration reloaded")
			return nil
		},
	}
}
