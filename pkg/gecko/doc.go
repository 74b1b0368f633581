// Package gecko implements a client for the TCP Gecko remote memory access
// protocol.
//
// A Client holds one connection to a Gecko server running on the target
// console. Commands are synchronous and strictly half-duplex: each call
// writes an opcode with a fixed big-endian payload and reads the reply
// before returning. A Client must not be shared between goroutines without
// external serialisation.
//
// # Connection
//
//	c := gecko.NewClient(gecko.DefaultConfig("192.168.1.20"))
//	if err := c.Connect(ctx); err != nil {
//	    return err
//	}
//	defer c.Disconnect()
//
// Any I/O failure during a command closes the connection. Reconnection is
// always explicit: Reconnect or ReconnectWithBackoff.
//
// # Bulk Transfers
//
// Dump and Upload move memory in 1024-byte chunks. A chunk cut short by
// the I/O timeout is retried; the third short transfer of a chunk fails
// with KindTooManyRetries. Progress is reported through OnProgress before
// each chunk and once on completion. Cancellation is checked only between
// chunks.
//
// # Errors
//
// Protocol failures are returned as *Error carrying an ErrorKind. Use
// errors.Is with the Err* sentinels to test the kind:
//
//	if errors.Is(err, gecko.ErrTooManyRetries) {
//	    ...
//	}
package gecko
