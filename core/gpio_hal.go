package core

// Level is the logical level of a digital output
type Level bool

const (
	LevelLow  Level = false
	LevelHigh Level = true
)

func (l Level) String() string {
	if l {
		return "HIGH"
	}
	return "LOW"
}

// OutputPin is the abstract output interface the rail controller drives.
// Platform-specific implementations handle actual hardware control.
type OutputPin interface {
	// IsReady reports whether the underlying GPIO port is available.
	// Must be checked before Configure.
	IsReady() bool

	// Configure sets the pin up as a digital output driven to initial.
	// Returns error if the configuration is rejected.
	Configure(initial Level) error

	// Set drives the pin to level.
	// Returns error if the write is rejected.
	Set(level Level) error
}
