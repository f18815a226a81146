// splitwm is a tiling window manager for X11 with i3-style containers,
// per-monitor workspaces and an IPC socket for bars and scripts.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
