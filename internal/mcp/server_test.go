package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/splitwm/internal/director"
	"github.com/1broseidon/splitwm/internal/ipc"
)

type fakeClient struct {
	ran []string
	err error
}

func (f *fakeClient) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.StatusData{FocusedMonitor: "DP-1", ActiveWorkspace: "web", WindowCount: 3, DaemonRunning: true}, nil
}

func (f *fakeClient) GetMonitors() (*ipc.MonitorsData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.MonitorsData{Monitors: []director.MonitorState{{Name: "DP-1", Focused: true, FocusedWorkspace: "web"}}}, nil
}

func (f *fakeClient) RunCommand(command, arg string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.ran = append(f.ran, strings.TrimSpace(command+" "+arg))
	return "job-42", nil
}

func TestNewServerRegistersTools(t *testing.T) {
	if s := NewServer(&fakeClient{}); s.mcpServer == nil {
		t.Fatalf("expected MCP server to be created")
	}
}

func TestListMonitorsAndStatus(t *testing.T) {
	s := NewServer(&fakeClient{})

	_, monitors, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	if err != nil {
		t.Fatalf("list_monitors: %v", err)
	}
	if len(monitors.Monitors) != 1 || monitors.Monitors[0].FocusedWorkspace != "web" {
		t.Fatalf("unexpected monitors %+v", monitors)
	}

	_, status, err := s.handleGetStatus(context.Background(), nil, GetStatusInput{})
	if err != nil {
		t.Fatalf("get_status: %v", err)
	}
	if status.ActiveWorkspace != "web" || status.WindowCount != 3 {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestRunCommandValidatesBeforeSending(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)

	tests := []struct {
		name    string
		input   RunCommandInput
		wantErr string
	}{
		{name: "unknown", input: RunCommandInput{Command: "teleport"}, wantErr: "valid:"},
		{name: "missing arg", input: RunCommandInput{Command: "split"}, wantErr: "requires an argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleRunCommand(context.Background(), nil, tt.input)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
	if len(client.ran) != 0 {
		t.Fatalf("invalid commands must not reach the window manager, got %v", client.ran)
	}

	_, out, err := s.handleRunCommand(context.Background(), nil, RunCommandInput{Command: "split", Arg: "vertical"})
	if err != nil {
		t.Fatalf("run_command: %v", err)
	}
	if out.JobID != "job-42" || out.Command != "split vertical" {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestSwitchWorkspace(t *testing.T) {
	client := &fakeClient{}
	s := NewServer(client)

	if _, _, err := s.handleSwitchWorkspace(context.Background(), nil, SwitchWorkspaceInput{}); err == nil {
		t.Fatalf("expected error for empty workspace")
	}
	_, out, err := s.handleSwitchWorkspace(context.Background(), nil, SwitchWorkspaceInput{Workspace: "3"})
	if err != nil {
		t.Fatalf("switch_workspace: %v", err)
	}
	if len(client.ran) != 1 || client.ran[0] != "workspace 3" || out.Command != "workspace 3" {
		t.Fatalf("unexpected calls %v output %+v", client.ran, out)
	}
}

func TestToolsSurfaceClientErrors(t *testing.T) {
	s := NewServer(&fakeClient{err: errors.New("is splitwm running?")})
	if _, _, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{}); err == nil {
		t.Fatalf("expected error")
	}
	if _, _, err := s.handleSwitchWorkspace(context.Background(), nil, SwitchWorkspaceInput{Workspace: "1"}); err == nil {
		t.Fatalf("expected error")
	}
}
