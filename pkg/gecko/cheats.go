package gecko

import (
	"context"
	"encoding/binary"

	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// cheatAckReads bounds the reads spent waiting for the initial ACK.
const cheatAckReads = 10

// NormalizeCheats frames a cheat blob. The result starts with
// wire.CheatMarker and ends with a valid terminator; missing framing is
// added, a correctly framed blob is returned unchanged. Blobs whose length
// is not a multiple of 8 are rejected.
func NormalizeCheats(blob []byte) ([]byte, error) {
	if len(blob)%8 != 0 {
		return nil, newError(KindCheatStreamSize, nil, "cheat blob is %d bytes, not a multiple of 8", len(blob))
	}

	out := make([]byte, 0, len(blob)+16)
	if len(blob) < 8 || binary.BigEndian.Uint64(blob) != wire.CheatMarker {
		out = binary.BigEndian.AppendUint64(out, wire.CheatMarker)
	}
	out = append(out, blob...)
	if !wire.ValidCheatTerminator(binary.BigEndian.Uint64(out[len(out)-8:])) {
		out = binary.BigEndian.AppendUint64(out, wire.CheatTerminator)
	}
	return out, nil
}

// SendCheats installs a cheat blob. The blob is framed with NormalizeCheats
// first. Every chunk must be acknowledged; a chunk that is cut short or not
// acknowledged is retried after a RETRY sentinel, up to three attempts.
// Progress is reported against wire.CheatProgressAddress.
func (c *Client) SendCheats(ctx context.Context, blob []byte) error {
	data, err := NormalizeCheats(blob)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.RawCommand(wire.CmdSendCheats); err != nil {
		return err
	}
	if err := c.awaitCheatACK(); err != nil {
		return err
	}

	length := uint32(len(data))
	size := wire.PutUint32(length)
	if res, err := c.write(size[:]); res != resultOK {
		return c.fail(newError(KindCommandSend, err, "cheat length"), "cheats")
	}

	full, last, total := wire.Chunks(length)
	retry := 0
	for chunk := uint32(0); chunk < total; {
		n := uint32(wire.PacketSize)
		if chunk == full {
			n = last
		}
		done := chunk * wire.PacketSize
		c.notify(Progress{
			Address:     wire.CheatProgressAddress,
			Chunk:       chunk,
			Chunks:      total,
			Transferred: done,
			Length:      length,
			Clean:       retry == 0,
			Direction:   DirectionUpload,
		}, true)

		res, err := c.write(data[done : done+n])
		if res == resultOK {
			var ack [1]byte
			res, err = c.read(ack[:])
			if res == resultOK && wire.Reply(ack[0]) != wire.ReplyACK {
				res = resultShort
				err = newError(KindInvalidReply, nil, "chunk reply 0x%02X", ack[0])
			}
		}
		switch res {
		case resultShort:
			retry++
			if retry >= wire.MaxRetries {
				c.SendFail()
				return c.fail(newError(KindTooManyRetries, err, "cheat chunk %d", chunk), "cheats")
			}
			c.sendRetry()
			continue
		case resultFatal:
			c.SendFail()
			return c.fail(newError(KindReadData, err, "cheat chunk %d", chunk), "cheats")
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
		Address:     wire.CheatProgressAddress,
		Chunk:       total,
		Chunks:      total,
		Transferred: length,
		Length:      length,
		Clean:       true,
		Direction:   DirectionUpload,
	}, true)
	return nil
}

// ExecuteCheats runs the installed cheats.
func (c *Client) ExecuteCheats(ctx context.Context) error {
	return c.simple(ctx, wire.CmdCheatExec)
}

func (c *Client) awaitCheatACK() error {
	var b [1]byte
	for range cheatAckReads {
		if res, err := c.read(b[:]); res != resultOK {
			return c.fail(newError(KindReadData, err, "cheat handshake"), "cheats")
		}
		c.events.Reply(wire.CmdSendCheats, b[0])
		if wire.Reply(b[0]) == wire.ReplyACK {
			return nil
		}
	}
	return c.fail(newError(KindInvalidReply, nil, "no ACK after %d replies", cheatAckReads), "cheats")
}

func (c *Client) sendRetry() {
	b := [1]byte{byte(wire.ReplyRetry)}
	_, _ = c.write(b[:])
}
