package railctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"vccrail/protocol"
)

var (
	ErrTimeout     = errors.New("timed out waiting for response")
	ErrUnknownRail = errors.New("unknown rail")
	ErrFault       = errors.New("rail hardware fault")
	ErrBadCommand  = errors.New("command rejected")
)

// DefaultTimeout bounds a request round trip. Enable waits for the settle
// delay on the device before it answers.
const DefaultTimeout = time.Second

// Client sends ext-power commands to a rail controller over a byte stream
type Client struct {
	mu      sync.Mutex
	port    io.ReadWriter
	dec     *protocol.Decoder
	seq     uint8
	timeout time.Duration
}

// NewClient creates a client on port. A non-positive timeout uses DefaultTimeout.
func NewClient(port io.ReadWriter, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		port:    port,
		dec:     protocol.NewDecoder(protocol.DestHost),
		timeout: timeout,
	}
}

// Enable powers the named rail
func (c *Client) Enable(ctx context.Context, name string) (bool, error) {
	return c.state(ctx, protocol.CmdEnable, name)
}

// Disable removes power from the named rail
func (c *Client) Disable(ctx context.Context, name string) (bool, error) {
	return c.state(ctx, protocol.CmdDisable, name)
}

// Toggle flips the named rail
func (c *Client) Toggle(ctx context.Context, name string) (bool, error) {
	return c.state(ctx, protocol.CmdToggle, name)
}

// Get returns whether the named rail is on
func (c *Client) Get(ctx context.Context, name string) (bool, error) {
	return c.state(ctx, protocol.CmdGet, name)
}

func (c *Client) state(ctx context.Context, cmd uint32, name string) (bool, error) {
	rsp, err := c.Do(ctx, protocol.Request{Cmd: cmd, Name: name})
	if err != nil {
		return rsp.On, err
	}
	return rsp.On, statusError(rsp.Status)
}

// Do sends one request and waits for the reply carrying its sequence number
func (c *Client) Do(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	seq := c.seq
	c.seq = (c.seq + 1) & protocol.SeqMask

	frame, err := protocol.EncodeFrame(protocol.DestDevice, seq, req.Encode())
	if err != nil {
		return protocol.Response{}, fmt.Errorf("encode %s: %w", protocol.CommandName(req.Cmd), err)
	}
	if _, err := c.port.Write(frame); err != nil {
		return protocol.Response{}, fmt.Errorf("write %s: %w", protocol.CommandName(req.Cmd), err)
	}

	if d, ok := c.port.(interface{ SetReadDeadline(time.Time) error }); ok {
		deadline, _ := ctx.Deadline()
		_ = d.SetReadDeadline(deadline)
	}

	buf := make([]byte, protocol.FrameMax)
	for {
		for {
			f, ok := c.dec.Next()
			if !ok {
				break
			}
			if f.Seq != seq {
				// Stale reply to an earlier, timed out request
				continue
			}
			rsp, err := protocol.DecodeResponse(f.Payload)
			if err != nil {
				return protocol.Response{}, fmt.Errorf("decode response: %w", err)
			}
			return rsp, nil
		}

		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return protocol.Response{}, ErrTimeout
			}
			return protocol.Response{}, err
		}

		n, err := c.port.Read(buf)
		if n > 0 {
			c.dec.Write(buf[:n])
		}
		if err != nil {
			if isTimeout(err) {
				return protocol.Response{}, ErrTimeout
			}
			return protocol.Response{}, fmt.Errorf("read response: %w", err)
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
}

func statusError(s protocol.Status) error {
	switch s {
	case protocol.StatusOK:
		return nil
	case protocol.StatusUnknownRail:
		return ErrUnknownRail
	case protocol.StatusFault:
		return ErrFault
	default:
		return ErrBadCommand
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
