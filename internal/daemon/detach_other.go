//go:build !linux

package daemon

import (
	"errors"

	"go.uber.org/zap"
)

// Detach is only implemented on Linux
func Detach(string, []string, string, *zap.Logger) (int, error) {
	return 0, errors.New("background start is only supported on linux")
}
