package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/splitwm/internal/commands"
)

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.client.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, err
	}
	return nil, ListMonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{
		FocusedMonitor:  status.FocusedMonitor,
		ActiveWorkspace: status.ActiveWorkspace,
		WindowCount:     status.WindowCount,
		UptimeSeconds:   status.UptimeSeconds,
	}, nil
}

func (s *Server) handleRunCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args RunCommandInput) (*mcpsdk.CallToolResult, JobOutput, error) {
	// Validate locally so the model gets the list of valid names back.
	kind, err := commands.ParseKind(args.Command)
	if err != nil {
		return nil, JobOutput{}, fmt.Errorf("%w (valid: %s)", err, strings.Join(commands.Kinds(), ", "))
	}
	cmd, err := commands.New(kind, args.Arg)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return s.submit(cmd)
}

func (s *Server) handleSwitchWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchWorkspaceInput) (*mcpsdk.CallToolResult, JobOutput, error) {
	cmd, err := commands.New(commands.Workspace, args.Workspace)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return s.submit(cmd)
}

func (s *Server) submit(cmd *commands.Command) (*mcpsdk.CallToolResult, JobOutput, error) {
	job, err := s.client.RunCommand(cmd.Kind.String(), cmd.Arg)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, JobOutput{JobID: job, Command: cmd.String()}, nil
}
