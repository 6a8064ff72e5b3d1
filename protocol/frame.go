package protocol

import (
	"bytes"
	"errors"
)

var ErrPayloadTooLarge = errors.New("payload exceeds frame size")

// Frame is a decoded link frame
type Frame struct {
	Seq     uint8 // Sequence counter (0-15)
	Payload []byte
}

// EncodeFrame wraps payload in a frame addressed to dest
func EncodeFrame(dest, seq uint8, payload []byte) ([]byte, error) {
	if len(payload) > PayloadMax {
		return nil, ErrPayloadTooLarge
	}

	n := len(payload) + FrameMin
	frame := make([]byte, 0, n)
	frame = append(frame, byte(n), dest|(seq&SeqMask))
	frame = append(frame, payload...)

	crc := CRC16(frame)
	return append(frame, byte(crc>>8), byte(crc), SyncByte), nil
}

// Decoder reassembles frames from a byte stream. After a corrupt frame it
// discards input up to the next sync byte.
type Decoder struct {
	dest    uint8
	buf     []byte
	synced  bool
	dropped int
}

// NewDecoder creates a decoder accepting frames addressed to dest
func NewDecoder(dest uint8) *Decoder {
	return &Decoder{dest: dest, synced: true}
}

// Write appends received bytes; it never fails
func (d *Decoder) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// Dropped returns how many times the decoder lost synchronization
func (d *Decoder) Dropped() int {
	return d.dropped
}

// Reset discards buffered input
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
	d.synced = true
}

// Next returns the next complete frame, if any
func (d *Decoder) Next() (Frame, bool) {
	for len(d.buf) > 0 {
		if !d.synced {
			i := bytes.IndexByte(d.buf, SyncByte)
			if i < 0 {
				d.buf = d.buf[:0]
				return Frame{}, false
			}
			d.buf = d.buf[i+1:]
			d.synced = true
			continue
		}

		// Skip leading sync bytes
		if d.buf[0] == SyncByte {
			d.buf = d.buf[1:]
			continue
		}

		if len(d.buf) < FrameMin {
			break
		}

		n := int(d.buf[0])
		if n < FrameMin || n > FrameMax || d.buf[1]&^SeqMask != d.dest {
			d.desync()
			continue
		}

		// Wait for the full frame
		if len(d.buf) < n {
			break
		}

		crc := uint16(d.buf[n-3])<<8 | uint16(d.buf[n-2])
		if d.buf[n-1] != SyncByte || crc != CRC16(d.buf[:n-FrameTrailerSize]) {
			d.desync()
			continue
		}

		f := Frame{
			Seq:     d.buf[1] & SeqMask,
			Payload: append([]byte(nil), d.buf[FrameHeaderSize:n-FrameTrailerSize]...),
		}
		d.buf = d.buf[n:]
		return f, true
	}
	return Frame{}, false
}

func (d *Decoder) desync() {
	d.synced = false
	d.dropped++
	// Drop the bad length byte so the scan moves forward
	d.buf = d.buf[1:]
}
