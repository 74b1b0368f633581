package gecko

import (
	"context"

	"github.com/tcpgecko/gecko-go/pkg/log"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

// Status returns the target's execution state. Unmapped reply codes yield
// wire.ExecUnknown.
func (c *Client) Status(ctx context.Context) (wire.ExecState, error) {
	if err := ctx.Err(); err != nil {
		return wire.ExecUnknown, err
	}
	if err := c.RawCommand(wire.CmdStatus); err != nil {
		return wire.ExecUnknown, err
	}
	var b [1]byte
	if res, err := c.read(b[:]); res != resultOK {
		return wire.ExecUnknown, c.fail(newError(KindReadData, err, "status reply"), "status")
	}
	c.events.Reply(wire.CmdStatus, b[0])

	state := wire.ParseExecState(b[0])
	if state != c.execState {
		c.events.State(log.StateEntityExecution, c.execState.String(), state.String(), "")
		c.execState = state
	}
	return state, nil
}

// Pause pauses execution. The target does not always honour it; see
// SafePause.
func (c *Client) Pause(ctx context.Context) error {
	return c.simple(ctx, wire.CmdPause)
}

// Resume resumes execution.
func (c *Client) Resume(ctx context.Context) error {
	return c.simple(ctx, wire.CmdUnfreeze)
}

// Step executes a single step.
func (c *Client) Step(ctx context.Context) error {
	return c.simple(ctx, wire.CmdStep)
}

// SafePause pauses until Status no longer reports Running, sleeping
// PauseInterval between attempts. With SafePauseAttempts set, it gives up
// with KindTooManyRetries after that many pauses.
func (c *Client) SafePause(ctx context.Context) error {
	for attempt := 0; ; attempt++ {
		state, err := c.Status(ctx)
		if err != nil {
			return err
		}
		if state != wire.ExecRunning {
			return nil
		}
		if limit := c.config.SafePauseAttempts; limit > 0 && attempt >= limit {
			return c.fail(newError(KindTooManyRetries, nil, "target still running after %d pauses", attempt), "safe pause")
		}
		if err := c.Pause(ctx); err != nil {
			return err
		}
		if err := sleep(ctx, c.config.PauseInterval); err != nil {
			return err
		}
	}
}

func (c *Client) simple(ctx context.Context, op wire.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.RawCommand(op)
}

// Breakpoint sets a data breakpoint of kind on the 8-byte block holding
// addr. With exact set and a server that supports it, the advanced
// encoding pins the breakpoint to addr itself.
func (c *Client) Breakpoint(ctx context.Context, addr uint32, kind wire.BreakpointKind, exact bool) error {
	if kind == wire.BreakpointExecute {
		return c.BreakpointExecute(ctx, addr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	low := wire.AlignDown(addr, 8) | uint32(kind)
	advanced := false
	if exact {
		v, err := c.VersionRequest(ctx)
		if err != nil {
			return err
		}
		advanced = v.ExactBreakpoints()
	}

	if advanced {
		pair := wire.PutPair(low, addr)
		return c.send(wire.CmdNBreakpoint, pair[:], &addr)
	}
	b := wire.PutUint32(low)
	return c.send(wire.CmdBreakpoint, b[:], &addr)
}

// BreakpointRead breaks on reads of addr.
func (c *Client) BreakpointRead(ctx context.Context, addr uint32, exact bool) error {
	return c.Breakpoint(ctx, addr, wire.BreakpointRead, exact)
}

// BreakpointWrite breaks on writes to addr.
func (c *Client) BreakpointWrite(ctx context.Context, addr uint32, exact bool) error {
	return c.Breakpoint(ctx, addr, wire.BreakpointWrite, exact)
}

// BreakpointReadWrite breaks on any access to addr.
func (c *Client) BreakpointReadWrite(ctx context.Context, addr uint32, exact bool) error {
	return c.Breakpoint(ctx, addr, wire.BreakpointReadWrite, exact)
}

// BreakpointExecute breaks when the instruction at addr is fetched.
// Execute breakpoints are always exact to 4 bytes.
func (c *Client) BreakpointExecute(ctx context.Context, addr uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := wire.PutUint32(wire.AlignDown(addr, 4) | uint32(wire.BreakpointExecute))
	return c.send(wire.CmdBreakpointX, b[:], &addr)
}

// BreakpointHit reads one byte and reports whether it is the breakpoint-hit
// signal. A read that times out reports false without error.
func (c *Client) BreakpointHit(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var b [1]byte
	switch res, err := c.read(b[:]); res {
	case resultShort:
		return false, nil
	case resultFatal:
		return false, c.fail(newError(KindReadData, err, "breakpoint signal"), "breakpoint")
	}
	return wire.Reply(b[0]) == wire.ReplyBreakpointHit, nil
}

// CancelBreakpoint cancels the active breakpoint.
func (c *Client) CancelBreakpoint(ctx context.Context) error {
	return c.simple(ctx, wire.CmdCancelBP)
}

// VersionRequest queries the server version. Up to three reply bytes are
// read; if none is an allowed version, wire.VersionUnknown is returned
// without error.
func (c *Client) VersionRequest(ctx context.Context) (wire.ServerVersion, error) {
	if err := ctx.Err(); err != nil {
		return wire.VersionUnknown, err
	}
	if err := c.RawCommand(wire.CmdVersion); err != nil {
		return wire.VersionUnknown, err
	}

	var b [1]byte
	for range wire.MaxRetries {
		res, err := c.read(b[:])
		if res == resultFatal {
			return wire.VersionUnknown, c.fail(newError(KindReadData, err, "version reply"), "version")
		}
		if res == resultOK {
			c.events.Reply(wire.CmdVersion, b[0])
			if v := wire.ServerVersion(b[0]); v.Allowed() {
				return v, nil
			}
		}
	}
	return wire.VersionUnknown, nil
}

// HookOptions configures Hook.
type HookOptions struct {
	// Pause pauses the target once the hook is installed.
	Pause    bool
	Language wire.Language
	Patches  wire.Patches
	Type     wire.HookType
}

// Hook installs the execution hook.
func (c *Client) Hook(ctx context.Context, opts HookOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	op := wire.CmdHook
	if opts.Pause {
		op = wire.CmdHookPause
	}
	if err := c.RawCommand(op + wire.Command(opts.Type)); err != nil {
		return err
	}
	if err := c.RawCommand(wire.Command(opts.Language.Byte())); err != nil {
		return err
	}
	return c.RawCommand(wire.Command(opts.Patches))
}
