package ipc

import (
	"encoding/json"
	"fmt"
)

// Commands understood by the daemon
const (
	CmdHistory   = "history"
	CmdGet       = "get"
	CmdPaste     = "paste"
	CmdPasteText = "paste-text"
	CmdPin       = "pin"
	CmdRemove    = "remove"
	CmdClear     = "clear"
	CmdStatus    = "status"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a command sent from the CLI to the daemon.
type Request struct {
	Command string                 `json:"command"`        // e.g. "history", "paste", "pin"
	Args    map[string]interface{} `json:"args,omitempty"` // Command-specific arguments
}

// Response represents a reply from the daemon to the CLI.
type Response struct {
	Status  string          `json:"status"`            // "ok" or "error"
	Message string          `json:"message,omitempty"` // Human-readable message or error
	Data    json.RawMessage `json:"data,omitempty"`    // Command-specific data (history, etc.)
}

// NewRequest builds a request with optional key/value arguments
func NewRequest(command string, kv ...interface{}) *Request {
	req := &Request{Command: command}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}
		req.Args[key] = kv[i+1]
	}
	return req
}

// StringArg returns a string argument
func (r *Request) StringArg(name string) (string, bool) {
	v, ok := r.Args[name].(string)
	return v, ok
}

// IntArg returns a numeric argument. JSON numbers decode as float64.
func (r *Request) IntArg(name string) (int, bool) {
	switch v := r.Args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// OK builds a success response carrying data
func OK(message string, data interface{}) *Response {
	resp := &Response{Status: StatusOK, Message: message}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return Errorf("failed to encode response: %v", err)
		}
		resp.Data = raw
	}
	return resp
}

// Errorf builds an error response
func Errorf(format string, args ...interface{}) *Response {
	return &Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// Err returns the response as an error when its status is not ok
func (r *Response) Err() error {
	if r.Status == StatusOK {
		return nil
	}
	if r.Message == "" {
		return fmt.Errorf("daemon returned status %q", r.Status)
	}
	return fmt.Errorf("daemon: %s", r.Message)
}

// Decode unmarshals the response data into v
func (r *Response) Decode(v interface{}) error {
	if err := r.Err(); err != nil {
		return err
	}
	if v == nil || len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}
