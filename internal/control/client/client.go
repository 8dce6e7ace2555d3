package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/tank0226/current-task/internal/control"
)

// defaultTimeout is used when the caller does not provide a context deadline.
const defaultTimeout = 3 * time.Second

// Client talks to the running daemon over its control socket.
type Client struct {
	socketPath string
}

type (
	// StatusResult carries the daemon's last published snapshot.
	StatusResult = control.StatusResult
	// ExplainResult carries per-rule evaluation outcomes.
	ExplainResult = control.ExplainResult
)

// New creates a client for the provided socket path. When path is empty, the
// default runtime path is used.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// Status retrieves the daemon's last published snapshot.
func (c *Client) Status(ctx context.Context) (StatusResult, error) {
	var result StatusResult
	if err := c.do(ctx, control.Request{Action: control.ActionStatusGet}, &result); err != nil {
		return StatusResult{}, err
	}
	return result, nil
}

// Explain retrieves the daemon's rule-by-rule evaluation of the last snapshot.
func (c *Client) Explain(ctx context.Context) (ExplainResult, error) {
	var result ExplainResult
	if err := c.do(ctx, control.Request{Action: control.ActionExplain}, &result); err != nil {
		return ExplainResult{}, err
	}
	return result, nil
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionReload}, nil)
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var resp control.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != control.StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown control error"
		}
		return errors.New(resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
