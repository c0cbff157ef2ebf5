//go:build !windows

package spool

// NewPlatformSpooler returns the native spooler backend for this host.
// Only the Windows spooler is bound today; other hosts rely on the
// direct-attach discovery sources instead.
func NewPlatformSpooler() (Spooler, error) {
	return nil, ErrNoSpooler
}
