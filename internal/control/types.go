package control

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/tank0226/current-task/internal/engine"
	"github.com/tank0226/current-task/internal/state"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// Action names supported by the control protocol.
	ActionStatusGet = "status.get"
	ActionExplain   = "explain"
	ActionReload    = "reload"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// StatusResult carries the last published snapshot.
type StatusResult struct {
	Snapshot state.Snapshot `json:"snapshot"`
}

// ExplainResult carries per-rule evaluation outcomes.
type ExplainResult struct {
	Rules []engine.RuleExplanation `json:"rules"`
}

// DefaultSocketPath returns the expected location of the control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv("CURRENTTASK_CONTROL_SOCKET"); env != "" {
		return env, nil
	}
	base := os.Getenv("XDG_RUNTIME_DIR")
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "current-task", SocketFileName), nil
}
