package tournament

import "errors"

var (
	// ErrAlreadyRunning is returned for a manual start during a running
	// tournament
	ErrAlreadyRunning = errors.New("a tournament is already running")

	// ErrNotRunning is returned for a manual end with no running
	// tournament
	ErrNotRunning = errors.New("no tournament is running")

	// ErrEnrollmentClosed is returned for an explicit enrollment after
	// the join cutoff
	ErrEnrollmentClosed = errors.New("too late to join this tournament")

	// ErrUnknownSetting is returned for a setting key outside the
	// whitelist
	ErrUnknownSetting = errors.New("unknown setting")

	// ErrInvalidSettingValue is returned when a setting value fails to
	// parse or is out of range
	ErrInvalidSettingValue = errors.New("invalid setting value")
)
