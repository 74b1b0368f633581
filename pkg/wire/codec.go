package wire

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

// Transfer constants.
const (
	// PacketSize is the chunk size for dumps and uploads.
	PacketSize = 0x400

	// MaxRetries is the number of short transfers tolerated per chunk.
	MaxRetries = 3
)

// Cheat blob framing.
const (
	// CheatMarker must be the first word of a cheat blob.
	CheatMarker uint64 = 0x00D0C0DE00D0C0DE

	// CheatTerminator is appended when a blob has no valid terminator.
	CheatTerminator uint64 = 0xF000000000000000

	// CheatTerminatorAlt is the second accepted terminator.
	CheatTerminatorAlt uint64 = 0xFE00000000000000

	// cheatTerminatorMask ignores the low bit of the terminator code type.
	cheatTerminatorMask uint64 = 0xFE00000000000000

	// CheatProgressAddress is reported as the address of cheat upload progress.
	CheatProgressAddress uint32 = 0x00D0C0DE
)

// RPCArgs is the number of argument slots in an RPC frame.
const RPCArgs = 8

// RPCUnusedArg fills unused RPC argument slots.
const RPCUnusedArg uint32 = 0xBAD0CAFE

// RPCFrameSize is the size of an RPC request frame.
const RPCFrameSize = 4 + RPCArgs*4

// Pack packs hi and lo into one word as (hi << 32) | lo.
func Pack(hi, lo uint32) uint64 {
	return uint64(hi)<<32 | uint64(lo)
}

// Unpack is the inverse of Pack.
func Unpack(w uint64) (hi, lo uint32) {
	return uint32(w >> 32), uint32(w)
}

// PutPair writes Pack(hi, lo) big-endian into an 8-byte frame.
func PutPair(hi, lo uint32) [8]byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], Pack(hi, lo))
	return b
}

// PutUint32 returns v as 4 big-endian bytes.
func PutUint32(v uint32) [4]byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b
}

// AlignDown rounds addr down to a multiple of n. n must be a power of two.
func AlignDown[I constraints.Unsigned](addr, n I) I {
	return addr &^ (n - 1)
}

// Chunks returns the number of full packets, the size of the trailing
// partial packet and the total packet count for a transfer of length bytes.
func Chunks(length uint32) (full, last, total uint32) {
	full = length / PacketSize
	last = length % PacketSize
	total = full
	if last > 0 {
		total++
	}
	return full, last, total
}

// ValidCheatTerminator reports whether w terminates a cheat blob.
func ValidCheatTerminator(w uint64) bool {
	w &= cheatTerminatorMask
	return w == CheatTerminator || w == CheatTerminatorAlt
}

// EncodeRPC builds an RPC request frame. Unused argument slots are filled
// with RPCUnusedArg. len(args) must not exceed RPCArgs.
func EncodeRPC(address uint32, args []uint32) [RPCFrameSize]byte {
	var b [RPCFrameSize]byte
	binary.BigEndian.PutUint32(b[0:4], address)
	for i := 0; i < RPCArgs; i++ {
		v := RPCUnusedArg
		if i < len(args) {
			v = args[i]
		}
		binary.BigEndian.PutUint32(b[4+i*4:], v)
	}
	return b
}
