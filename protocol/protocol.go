// Package protocol implements the framed ext-power link between a host and the
// rail controller firmware
package protocol

// Frame layout: len | seq | payload | crc16 hi | crc16 lo | sync
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameMin         = FrameHeaderSize + FrameTrailerSize
	FrameMax         = 64
	PayloadMax       = FrameMax - FrameMin

	SyncByte = 0x7E

	// Sequence byte: high nibble is the destination, low nibble the counter
	SeqMask    = 0x0F
	DestDevice = 0x10 // host -> device
	DestHost   = 0x00 // device -> host
)
