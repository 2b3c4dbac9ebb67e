package wmr89

import "bytes"

// packetDelimiter marks the start of each packet in the console's byte stream.
var packetDelimiter = []byte{0xf2, 0xf2}

// SplitPackets splits a raw buffer read from the console into individual
// packets.  The console demarcates the start of each packet with the hex
// sequence 0xf2 0xf2; adjacent, leading, or trailing delimiters produce
// empty fragments, which are discarded.  No validation of packet length or
// content happens here - the decoder must tolerate short fragments.
func SplitPackets(buf []byte) [][]byte {
	var packets [][]byte
	for _, fragment := range bytes.Split(buf, packetDelimiter) {
		if len(fragment) > 0 {
			packets = append(packets, fragment)
		}
	}
	return packets
}
