//go:build windows

package sampler

import (
	"fmt"
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procGetForegroundWindow        = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW             = user32.NewProc("GetWindowTextW")
	procGetWindowThreadProcessID   = user32.NewProc("GetWindowThreadProcessId")
	procQueryFullProcessImageName  = kernel32.NewProc("QueryFullProcessImageNameW")
)

const processQueryLimitedInformation = 0x1000

// windowsProbe reads the foreground window via the Win32 API.
type windowsProbe struct{}

// NewPlatformProbe returns the foreground probe for the current OS.
func NewPlatformProbe() ForegroundProbe {
	return windowsProbe{}
}

func (windowsProbe) Sample() (string, string, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", "", ErrNoForegroundWindow
	}

	titleBuf := make([]uint16, 512)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&titleBuf[0])), uintptr(len(titleBuf)))
	title := syscall.UTF16ToString(titleBuf)

	var pid uint32
	procGetWindowThreadProcessID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	if pid == 0 {
		return "", "", ErrNoForegroundWindow
	}

	handle, err := syscall.OpenProcess(processQueryLimitedInformation, false, pid)
	if err != nil {
		return "", "", fmt.Errorf("open process %d: %w", pid, err)
	}
	defer syscall.CloseHandle(handle)

	pathBuf := make([]uint16, 1024)
	size := uint32(len(pathBuf))
	ret, _, callErr := procQueryFullProcessImageName.Call(
		uintptr(handle), 0, uintptr(unsafe.Pointer(&pathBuf[0])), uintptr(unsafe.Pointer(&size)),
	)
	if ret == 0 {
		return "", "", fmt.Errorf("query process image: %w", callErr)
	}
	process := strings.ToLower(filepath.Base(syscall.UTF16ToString(pathBuf[:size])))
	return process, title, nil
}
