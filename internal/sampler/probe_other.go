//go:build !windows

package sampler

// NewPlatformProbe returns the foreground probe for the current OS. Only
// Windows is wired up today; elsewhere every sample is reported as lost,
// which the sampler already tolerates.
func NewPlatformProbe() ForegroundProbe {
	return ProbeFunc(func() (string, string, error) {
		return "", "", ErrNoForegroundWindow
	})
}
