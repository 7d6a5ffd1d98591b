package probe

import "time"

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
	progressInterval        = time.Second
)

// Runner configuration constants.
const (
	PercentageMultiplier = 100
	logFilePermission    = 0o600
	directoryPermission  = 0o750
)
