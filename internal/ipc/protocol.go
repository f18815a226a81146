package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/splitwm/internal/commands"
	"github.com/1broseidon/splitwm/internal/director"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandRunCommand  CommandType = "RUN_COMMAND"
	CommandClick       CommandType = "CLICK"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	FocusedMonitor  string `json:"focused_monitor"`
	ActiveWorkspace string `json:"active_workspace"`
	WindowCount     int    `json:"window_count"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	DaemonRunning   bool   `json:"daemon_running"`
}

// MonitorsData is the bar snapshot returned by GET_MONITORS.
type MonitorsData struct {
	Monitors []director.MonitorState `json:"monitors"`
}

// RunCommandPayload represents the payload for RUN_COMMAND.
type RunCommandPayload struct {
	Command string `json:"command"`
	Arg     string `json:"arg,omitempty"`
}

// ClickPayload is a status-bar click plus the tabs the bar rendered.
type ClickPayload struct {
	X    int            `json:"x"`
	Y    int            `json:"y"`
	Tabs []commands.Tab `json:"tabs"`
}

// JobData identifies a queued command.
type JobData struct {
	JobID string `json:"job_id"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
