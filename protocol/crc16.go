package protocol

// crcPoly is the CCITT polynomial 0x1021 in reflected bit order
const crcPoly = 0x8408

// CRC16 computes the frame trailer checksum: CRC-16/MCRF4XX (reflected CCITT,
// init 0xFFFF, no final xor)
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = crc>>1 ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
