package core

import "errors"

// Hardware fault causes.
var (
	// ErrHardwareFault matches every fault reported by the pin layer.
	ErrHardwareFault = errors.New("hardware fault")

	// ErrPinNotReady indicates the GPIO port is not ready.
	ErrPinNotReady = errors.New("pin not ready")

	// ErrConfigRejected indicates the pin refused output configuration.
	ErrConfigRejected = errors.New("pin configuration rejected")

	// ErrWriteRejected indicates the pin refused a level change.
	ErrWriteRejected = errors.New("pin write rejected")
)

// HardwareFault is the only error kind the rail controller returns.
type HardwareFault struct {
	Op    string // "init", "enable" or "disable"
	Cause error  // one of ErrPinNotReady, ErrConfigRejected, ErrWriteRejected
	Err   error  // error reported by the pin, if any
}

func (f *HardwareFault) Error() string {
	msg := "rail " + f.Op + ": " + f.Cause.Error()
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

// Is matches ErrHardwareFault and the fault cause.
func (f *HardwareFault) Is(target error) bool {
	return target == ErrHardwareFault || target == f.Cause
}

func (f *HardwareFault) Unwrap() error {
	return f.Err
}

func newFault(op string, cause, err error) *HardwareFault {
	return &HardwareFault{Op: op, Cause: cause, Err: err}
}
