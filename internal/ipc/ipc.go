package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request round trip. Paste requests block
// for the replay delays, so this stays well above them.
const DefaultTimeout = 10 * time.Second

// Handler serves one request
type Handler func(*Request) *Response

// SendRequest connects to the daemon, sends a request, and returns the response.
func SendRequest(socketPath string, req *Request) (*Response, error) {
	if runtime.GOOS == "windows" {
		return nil, errors.New("IPC not implemented for Windows yet")
	}
	conn, err := net.DialTimeout("unix", socketPath, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w", err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(DefaultTimeout))

	enc := json.NewEncoder(conn)
	dec := json.NewDecoder(conn)

	if err := enc.Encode(req); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	var resp Response
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// ListenAndServe serves requests on a unix socket until ctx is done.
func ListenAndServe(ctx context.Context, socketPath string, handler Handler, logger *zap.Logger) error {
	if runtime.GOOS == "windows" {
		return errors.New("IPC server not implemented for Windows yet")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	// Remove any stale socket
	os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("failed to listen on socket: %w", err)
	}
	defer os.Remove(socketPath)
	if err := os.Chmod(socketPath, 0o600); err != nil {
		logger.Warn("Failed to restrict socket permissions", zap.Error(err))
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger.Info("IPC server listening", zap.String("socket", socketPath))
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("Failed to accept IPC connection", zap.Error(err))
			time.Sleep(50 * time.Millisecond)
			continue
		}
		go handleConn(conn, handler, logger)
	}
}

func handleConn(conn net.Conn, handler Handler, logger *zap.Logger) {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(DefaultTimeout))

	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)

	var req Request
	if err := dec.Decode(&req); err != nil {
		enc.Encode(Errorf("invalid request: %v", err))
		return
	}

	logger.Debug("IPC request", zap.String("command", req.Command))
	resp := handler(&req)
	if resp == nil {
		resp = Errorf("no response for command %q", req.Command)
	}
	if err := enc.Encode(resp); err != nil {
		logger.Debug("Failed to write IPC response", zap.Error(err))
	}
}
