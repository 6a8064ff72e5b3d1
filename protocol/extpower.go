package protocol

import "errors"

// Ext-power command IDs (host -> device), each carrying name=%s
const (
	CmdEnable  uint32 = 1
	CmdDisable uint32 = 2
	CmdGet     uint32 = 3
	CmdToggle  uint32 = 4
)

// RspState is the device reply: ext_power_state name=%s on=%c status=%c
const RspState uint32 = 0x40

// Status is the outcome reported in RspState
type Status uint8

const (
	StatusOK          Status = 0
	StatusUnknownRail Status = 1
	StatusFault       Status = 2
	StatusBadCommand  Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnknownRail:
		return "unknown rail"
	case StatusFault:
		return "hardware fault"
	case StatusBadCommand:
		return "bad command"
	default:
		return "unknown status"
	}
}

var ErrUnexpectedResponse = errors.New("unexpected response id")

// CommandName returns the dictionary name of an ext-power command
func CommandName(cmd uint32) string {
	switch cmd {
	case CmdEnable:
		return "ext_power_enable"
	case CmdDisable:
		return "ext_power_disable"
	case CmdGet:
		return "ext_power_get"
	case CmdToggle:
		return "ext_power_toggle"
	case RspState:
		return "ext_power_state"
	default:
		return "unknown"
	}
}

// Request is an ext-power command
type Request struct {
	Cmd  uint32
	Name string
}

// Encode returns the request payload
func (r Request) Encode() []byte {
	payload := AppendVLQUint(nil, r.Cmd)
	return AppendVLQString(payload, r.Name)
}

// DecodeRequest parses a request payload
func DecodeRequest(payload []byte) (Request, error) {
	cmd, err := DecodeVLQUint(&payload)
	if err != nil {
		return Request{}, err
	}
	name, err := DecodeVLQString(&payload)
	if err != nil {
		return Request{Cmd: cmd}, err
	}
	return Request{Cmd: cmd, Name: name}, nil
}

// Response is the device's answer to any ext-power command
type Response struct {
	Name   string
	On     bool
	Status Status
}

// Encode returns the response payload
func (r Response) Encode() []byte {
	payload := AppendVLQUint(nil, RspState)
	payload = AppendVLQString(payload, r.Name)
	on := uint32(0)
	if r.On {
		on = 1
	}
	payload = AppendVLQUint(payload, on)
	return AppendVLQUint(payload, uint32(r.Status))
}

// DecodeResponse parses a response payload
func DecodeResponse(payload []byte) (Response, error) {
	id, err := DecodeVLQUint(&payload)
	if err != nil {
		return Response{}, err
	}
	if id != RspState {
		return Response{}, ErrUnexpectedResponse
	}
	name, err := DecodeVLQString(&payload)
	if err != nil {
		return Response{}, err
	}
	on, err := DecodeVLQUint(&payload)
	if err != nil {
		return Response{}, err
	}
	status, err := DecodeVLQUint(&payload)
	if err != nil {
		return Response{}, err
	}
	return Response{Name: name, On: on != 0, Status: Status(status)}, nil
}
