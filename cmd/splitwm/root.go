package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/splitwm/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var version = "dev"

type globalFlags struct {
	configPath string
	socketPath string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "splitwm",
		Short: "Tiling window manager for X11",
		Long: `splitwm tiles windows into i3-style containers on per-monitor workspaces.

Run "splitwm run" from your X session to start the window manager; the other
commands talk to the running instance over its IPC socket.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "config file path (default: $XDG_CONFIG_HOME/splitwm/config.yaml)")
	root.PersistentFlags().StringVar(&flags.socketPath, "socket", "", "IPC socket path (default: $SPLITWM_SOCKET or the runtime dir)")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newMonitorsCmd(flags))
	root.AddCommand(newMsgCmd(flags))
	root.AddCommand(newReloadCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	root.AddCommand(newMCPCmd(flags))

	return root
}

// resolveConfigPath returns the --config value or the XDG default.
func (f *globalFlags) resolveConfigPath() (string, error) {
	if f.configPath != "" {
		return f.configPath, nil
	}
	return config.DefaultConfigPath()
}

// writeJSON pretty-prints when w is a terminal and writes one compact line
// otherwise.
func writeJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
