// Package wire defines the byte-level wire format of the TCP Gecko protocol.
//
// Every command starts with a single opcode byte, optionally followed by a
// fixed-size big-endian payload. There is no length prefix and no message
// framing: both sides know the payload size from the opcode.
//
// # Packed Words
//
// Address/value pairs and address ranges are packed into one 64-bit
// big-endian word:
//
//	poke:  (address << 32) | value
//	range: (start << 32)   | end
//
// # Bulk Transfers
//
// Dumps and uploads are split into fixed 1024-byte chunks. During a dump the
// device prefixes every chunk with a status byte; ChunkZero means the chunk is
// all zeros and no payload follows.
//
// # In-band Sentinels
//
// Single reply bytes carry control information:
//   - ReplyACK (0xAA): command accepted
//   - ReplyRetry (0xBB): resend the last chunk
//   - ReplyFail (0xCC): abort the transfer
//   - ReplyDone (0xFF): end of stream
//   - ReplyBreakpointHit (0x11): a breakpoint fired
package wire
