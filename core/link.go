package core

import (
	"context"
	"errors"
	"io"
	"time"

	"vccrail/protocol"
)

// Link serves ext-power commands arriving as frames on a byte stream, such as
// the USB CDC port of the board or a UART on a host daemon.
type Link struct {
	rw       io.ReadWriter
	registry *ExtPowerRegistry
	dec      *protocol.Decoder
	idle     time.Duration

	received uint32
	errors   uint32
}

// NewLink creates a link dispatching to registry.
func NewLink(rw io.ReadWriter, registry *ExtPowerRegistry) *Link {
	return &Link{
		rw:       rw,
		registry: registry,
		dec:      protocol.NewDecoder(protocol.DestDevice),
		idle:     time.Millisecond,
	}
}

// Serve reads and answers frames until ctx is done, the stream reaches EOF,
// or a read or write fails.
func (l *Link) Serve(ctx context.Context) error {
	buf := make([]byte, protocol.FrameMax)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := l.rw.Read(buf)
		if n > 0 {
			l.dec.Write(buf[:n])
			if werr := l.drain(); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if n == 0 {
			// Serial ports with a read timeout return empty reads
			time.Sleep(l.idle)
		}
	}
}

func (l *Link) drain() error {
	for {
		f, ok := l.dec.Next()
		if !ok {
			return nil
		}
		l.received++

		rsp := l.Handle(f.Payload)
		frame, err := protocol.EncodeFrame(protocol.DestHost, f.Seq, rsp.Encode())
		if err != nil {
			l.errors++
			logError(ComponentLink, "failed to encode response", "error", err)
			continue
		}
		if _, err := l.rw.Write(frame); err != nil {
			l.errors++
			return err
		}
	}
}

// Handle executes one request payload and returns the reply.
func (l *Link) Handle(payload []byte) protocol.Response {
	req, err := protocol.DecodeRequest(payload)
	if err != nil {
		l.errors++
		logWarn(ComponentLink, "malformed request", "error", err)
		return protocol.Response{Status: protocol.StatusBadCommand}
	}

	logDebug(ComponentLink, "request", "cmd", protocol.CommandName(req.Cmd), "name", req.Name)

	switch req.Cmd {
	case protocol.CmdEnable:
		err = l.registry.Enable(req.Name)
	case protocol.CmdDisable:
		err = l.registry.Disable(req.Name)
	case protocol.CmdToggle:
		err = l.registry.Toggle(req.Name)
	case protocol.CmdGet:
		_, err = l.registry.Get(req.Name)
	default:
		l.errors++
		return protocol.Response{Name: req.Name, Status: protocol.StatusBadCommand}
	}

	rsp := protocol.Response{Name: req.Name}
	rsp.On, _ = l.registry.Get(req.Name)

	switch {
	case err == nil:
		rsp.Status = protocol.StatusOK
	case errors.Is(err, ErrExtPowerNotFound):
		rsp.Status = protocol.StatusUnknownRail
	default:
		rsp.Status = protocol.StatusFault
	}
	return rsp
}

// Reset drops any partially received frame so the next Serve starts clean.
// Call it only while Serve is not running.
func (l *Link) Reset() {
	l.dec.Reset()
}

// Stats returns the number of frames handled and failed.
func (l *Link) Stats() (received, failed uint32) {
	return l.received, l.errors
}
