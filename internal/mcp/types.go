package mcp

import "github.com/1broseidon/splitwm/internal/director"

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []director.MonitorState `json:"monitors"`
}

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	FocusedMonitor  string `json:"focused_monitor"`
	ActiveWorkspace string `json:"active_workspace"`
	WindowCount     int    `json:"window_count"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
}

// RunCommandInput is the input for the run_command tool.
type RunCommandInput struct {
	Command string `json:"command" jsonschema:"required,Command name (e.g. workspace, move_to_workspace, focus, split, exec)"`
	Arg     string `json:"arg,omitempty" jsonschema:"Command argument: a workspace name, direction (left/right), orientation (horizontal/vertical) or command line"`
}

// SwitchWorkspaceInput is the input for the switch_workspace tool.
type SwitchWorkspaceInput struct {
	Workspace string `json:"workspace" jsonschema:"required,Workspace name to focus; created on the focused monitor if it does not exist"`
}

// JobOutput identifies a queued command.
type JobOutput struct {
	JobID   string `json:"job_id"`
	Command string `json:"command"`
}
