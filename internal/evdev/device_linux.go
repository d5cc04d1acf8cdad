//go:build linux

package evdev

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Event mirrors struct input_event
type Event struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

const eventSize = int(unsafe.Sizeof(Event{}))

const (
	iocRead      = 2
	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift
}

// eviocgbit is EVIOCGBIT(ev, len)
func eviocgbit(ev uint16, length int) uintptr {
	return ioc(iocRead, 'E', 0x20+uintptr(ev), uintptr(length))
}

// eviocgname is EVIOCGNAME(len)
func eviocgname(length int) uintptr {
	return ioc(iocRead, 'E', 0x06, uintptr(length))
}

func ioctlPtr(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Device is an input device node opened for non-blocking reads
type Device struct {
	path string
	name string
	fd   int
}

// Open opens an input device read-only and non-blocking
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := &Device{path: path, fd: fd}
	d.name = d.queryName()
	return d, nil
}

func (d *Device) Path() string { return d.path }

func (d *Device) Name() string { return d.name }

func (d *Device) queryName() string {
	buf := make([]byte, 256)
	if err := ioctlPtr(d.fd, eviocgname(len(buf)), unsafe.Pointer(&buf[0])); err != nil {
		return ""
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// SupportsKeys reports whether the device advertises every given key code
func (d *Device) SupportsKeys(codes ...uint16) (bool, error) {
	bits := make([]byte, KeyMax/8+1)
	if err := ioctlPtr(d.fd, eviocgbit(EvKey, len(bits)), unsafe.Pointer(&bits[0])); err != nil {
		return false, syscallErr("EVIOCGBIT", err)
	}
	for _, c := range codes {
		if int(c)/8 >= len(bits) || bits[c/8]&(1<<(c%8)) == 0 {
			return false, nil
		}
	}
	return true, nil
}

// Poll waits up to timeout for the device to become readable
func (d *Device) Poll(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, err
	}
	if n > 0 && fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, fmt.Errorf("device %s: poll revents %#x", d.path, fds[0].Revents)
	}
	return n > 0, nil
}

// ReadEvents fills events with whatever the kernel has queued. It returns
// ErrNoData when nothing is pending.
func (d *Device) ReadEvents(events []Event) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&events[0])), len(events)*eventSize)
	n, err := unix.Read(d.fd, raw)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, ErrNoData
		}
		return 0, fmt.Errorf("read %s: %w", d.path, err)
	}
	if n == 0 {
		return 0, ErrNoData
	}
	return n / eventSize, nil
}

// Close releases the device
func (d *Device) Close() error {
	return unix.Close(d.fd)
}

// FindKeyboards opens every event node under dir that looks like a keyboard.
// Nodes that cannot be opened or queried are skipped.
func FindKeyboards(dir string, logger *zap.Logger) ([]*Device, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	paths, err := filepath.Glob(filepath.Join(dir, "event*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var (
		keyboards []*Device
		denied    int
	)
	for _, p := range paths {
		d, err := Open(p)
		if err != nil {
			if errors.Is(err, os.ErrPermission) {
				denied++
			}
			logger.Debug("Skipping input device", zap.String("path", p), zap.Error(err))
			continue
		}

		ok, err := d.SupportsKeys(KeyboardKeys...)
		if err != nil || !ok {
			if err != nil {
				logger.Debug("Failed to query device capabilities", zap.String("path", p), zap.Error(err))
			}
			d.Close()
			continue
		}

		logger.Info("Found keyboard", zap.String("path", p), zap.String("name", d.Name()))
		keyboards = append(keyboards, d)
	}

	if len(keyboards) == 0 && denied > 0 {
		logger.Warn("Input devices are not readable, add the user to the input group",
			zap.Int("denied", denied))
	}
	return keyboards, nil
}
