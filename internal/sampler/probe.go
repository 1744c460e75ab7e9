package sampler

import "errors"

// ErrNoForegroundWindow is returned by a probe when no window currently has
// focus (lock screen, desktop, secure prompts).
var ErrNoForegroundWindow = errors.New("sampler: no foreground window")

// ForegroundProbe reports the process and window title that currently own
// the foreground. Implementations wrap the platform window API.
type ForegroundProbe interface {
	Sample() (process, title string, err error)
}

// ProbeFunc adapts a function to the ForegroundProbe interface.
type ProbeFunc func() (string, string, error)

func (f ProbeFunc) Sample() (string, string, error) { return f() }
