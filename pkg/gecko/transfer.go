package gecko

import (
	"context"
	"fmt"
	"io"

	"github.com/tcpgecko/gecko-go/pkg/dump"
	"github.com/tcpgecko/gecko-go/pkg/log"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// Direction is the direction of a bulk transfer.
type Direction uint8

const (
	// DirectionDump reads target memory.
	DirectionDump Direction = iota
	// DirectionUpload writes target memory.
	DirectionUpload
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionDump:
		return "DUMP"
	case DirectionUpload:
		return "UPLOAD"
	default:
		return "UNKNOWN"
	}
}

// Progress describes a bulk transfer before each chunk and once at the end.
type Progress struct {
	// Address is the remote address of the chunk about to move.
	Address uint32

	// Chunk is the zero-based chunk index. Equal to Chunks when complete.
	Chunk uint32

	// Chunks is the total chunk count.
	Chunks uint32

	// Transferred is the number of bytes moved so far.
	Transferred uint32

	// Length is the total transfer length.
	Length uint32

	// Clean is false while the chunk is being retried.
	Clean bool

	Direction Direction
}

// Complete reports whether p is the final notification of a transfer.
func (p Progress) Complete() bool {
	return p.Transferred == p.Length
}

// ProgressFunc receives transfer progress. It runs on the caller's goroutine
// and must not call back into the Client.
type ProgressFunc func(Progress)

// OnProgress sets the progress callback. Nil disables notifications.
func (c *Client) OnProgress(fn ProgressFunc) {
	c.progress = fn
}

func (c *Client) notify(p Progress, enabled bool) {
	dir := log.DirectionIn
	if p.Direction == DirectionUpload {
		dir = log.DirectionOut
	}
	retries := 0
	if !p.Clean {
		retries = 1
	}
	c.events.Transfer(dir, log.TransferEvent{
		Address:     p.Address,
		Chunk:       p.Chunk,
		Chunks:      p.Chunks,
		Transferred: p.Transferred,
		Length:      p.Length,
		Retries:     retries,
	})
	if enabled && c.progress != nil {
		c.progress(p)
	}
}

// Dump reads [start, end) into every sink. end is clamped to the region
// holding start; if start is not a valid address nothing is sent and Dump
// returns nil.
//
// ctx is checked between chunks. On cancellation the transfer is aborted
// with a FAIL sentinel and ctx.Err() is returned.
func (c *Client) Dump(ctx context.Context, start, end uint32, sinks ...io.Writer) error {
	end, ok := c.validator.Clamp(start, end)
	if !ok {
		return nil
	}
	return c.dump(ctx, start, end, io.MultiWriter(sinks...), true)
}

// DumpInto fills d from the target. The window is not validated.
func (c *Client) DumpInto(ctx context.Context, d *dump.Dump) error {
	d.Reset()
	return c.dump(ctx, d.Start(), d.End(), d, true)
}

func (c *Client) dump(ctx context.Context, start, end uint32, w io.Writer, notify bool) error {
	if end < start {
		return newError(KindArgument, nil, "dump end 0x%08X before start 0x%08X", end, start)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	length := end - start
	full, last, total := wire.Chunks(length)

	pair := wire.PutPair(start, end)
	if err := c.send(wire.CmdReadMem, pair[:], &start); err != nil {
		return err
	}

	buf := make([]byte, wire.PacketSize)
	var status [1]byte
	retry := 0
	for chunk := uint32(0); chunk < total; {
		size := uint32(wire.PacketSize)
		if chunk == full {
			size = last
		}
		done := chunk * wire.PacketSize
		c.notify(Progress{
			Address:     start + done,
			Chunk:       chunk,
			Chunks:      total,
			Transferred: done,
			Length:      length,
			Clean:       retry == 0,
			Direction:   DirectionDump,
		}, notify)

		if res, err := c.read(status[:]); res != resultOK {
			c.SendFail()
			return c.fail(newError(KindReadData, err, "dump chunk %d status", chunk), "dump")
		}

		p := buf[:size]
		if wire.Reply(status[0]) == wire.ChunkZero {
			clear(p)
		} else {
			res, err := c.read(p)
			switch res {
			case resultShort:
				retry++
				if retry >= wire.MaxRetries {
					c.SendFail()
					return c.fail(newError(KindTooManyRetries, err, "dump chunk %d", chunk), "dump")
				}
				continue
			case resultFatal:
				c.SendFail()
				return c.fail(newError(KindReadData, err, "dump chunk %d", chunk), "dump")
			}
		}

		if _, err := w.Write(p); err != nil {
			c.SendFail()
			return fmt.Errorf("dump chunk %d: write sink: %w", chunk, err)
		}
		retry = 0
		chunk++

		if chunk < total {
			if err := ctx.Err(); err != nil {
				c.SendFail()
				return err
			}
		}
	}

	c.notify(Progress{
		Address:     end,
		Chunk:       total,
		Chunks:      total,
		Transferred: length,
		Length:      length,
		Clean:       true,
		Direction:   DirectionDump,
	}, notify)
	return nil
}

// Upload writes [start, end) from src. Addresses are not validated. A chunk
// cut short is retried from the same source position; the third short
// write disconnects.
//
// ctx is checked between chunks. A cancelled upload leaves the target
// waiting for data, so the client disconnects and returns ctx.Err().
func (c *Client) Upload(ctx context.Context, start, end uint32, src io.ReadSeeker) error {
	if end < start {
		return newError(KindArgument, nil, "upload end 0x%08X before start 0x%08X", end, start)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	length := end - start
	full, last, total := wire.Chunks(length)

	pair := wire.PutPair(start, end)
	if err := c.send(wire.CmdUpload, pair[:], &start); err != nil {
		return err
	}

	buf := make([]byte, wire.PacketSize)
	retry := 0
	for chunk := uint32(0); chunk < total; {
		size := uint32(wire.PacketSize)
		if chunk == full {
			size = last
		}
		done := chunk * wire.PacketSize
		c.notify(Progress{
			Address:     start + done,
			Chunk:       chunk,
			Chunks:      total,
			Transferred: done,
			Length:      length,
			Clean:       retry == 0,
			Direction:   DirectionUpload,
		}, true)

		p := buf[:size]
		if _, err := io.ReadFull(src, p); err != nil {
			c.disconnect("upload source exhausted")
			return c.fail(newError(KindArgument, err, "upload chunk %d: read source", chunk), "upload")
		}

		res, err := c.write(p)
		switch res {
		case resultShort:
			retry++
			if retry >= wire.MaxRetries {
				c.disconnect("too many retries")
				return c.fail(newError(KindTooManyRetries, err, "upload chunk %d", chunk), "upload")
			}
			if _, err := src.Seek(-int64(size), io.SeekCurrent); err != nil {
				c.disconnect("upload source seek failed")
				return c.fail(newError(KindArgument, err, "upload chunk %d: rewind source", chunk), "upload")
			}
			continue
		case resultFatal:
			return c.fail(newError(KindReadData, err, "upload chunk %d", chunk), "upload")
		}
		retry = 0
		chunk++

		if chunk < total {
			if err := ctx.Err(); err != nil {
				c.disconnect("upload cancelled")
				return err
			}
		}
	}

	var reply [1]byte
	if res, err := c.read(reply[:]); res != resultOK {
		return c.fail(newError(KindReadData, err, "upload acknowledgement"), "upload")
	}
	c.events.Reply(wire.CmdUpload, reply[0])
	if wire.Reply(reply[0]) != wire.ReplyACK {
		return c.fail(newError(KindInvalidReply, nil, "upload acknowledgement 0x%02X", reply[0]), "upload")
	}

	c.notify(Progress{
		Address:     end,
		Chunk:       total,
		Chunks:      total,
		Transferred: length,
		Length:      length,
		Clean:       true,
		Direction:   DirectionUpload,
	}, true)
	return nil
}
