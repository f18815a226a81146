// Package mcp exposes the window manager's IPC surface as MCP tools over
// stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/splitwm/internal/ipc"
)

const (
	ServerName    = "splitwm"
	ServerVersion = "0.1.0"
)

// Client is the subset of the IPC client the tools use.
type Client interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	RunCommand(command, arg string) (string, error)
}

// Server is the MCP server for splitwm.
type Server struct {
	mcpServer *mcpsdk.Server
	client    Client
}

// NewServer creates a new MCP server that talks to a running window manager
// through client.
func NewServer(client Client) *Server {
	s := &Server{client: client}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List every monitor with its geometry, focused state and workspaces (name, window count, layout signature).",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report the focused monitor, active workspace and number of managed windows.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "run_command",
		Description: "Queue a window-manager command such as workspace, move_to_workspace, focus_monitor, focus, move, split, floating, fullscreen, close, exec or exec_on_workspace. Returns the job id.",
	}, s.handleRunCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_workspace",
		Description: "Focus a workspace by name, creating it on the focused monitor if needed.",
	}, s.handleSwitchWorkspace)
}
