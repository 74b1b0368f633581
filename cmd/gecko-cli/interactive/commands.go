package interactive

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/tcpgecko/gecko-go/pkg/connection"
	"github.com/tcpgecko/gecko-go/pkg/gecko"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

var errUsage = errors.New("usage")

// unknownCommandError names a command word the shell does not recognise.
type unknownCommandError string

func (e unknownCommandError) Error() string {
	return "unknown command: " + string(e)
}

// usage returns errUsage annotated with the command's argument synopsis.
func usage(synopsis string) error {
	return fmt.Errorf("%w: %s", errUsage, synopsis)
}

// parseUint32 parses a 0x-prefixed hex or decimal number.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return uint32(v), nil
}

func parseBreakpointKind(s string) (wire.BreakpointKind, error) {
	switch strings.ToLower(s) {
	case "r", "read":
		return wire.BreakpointRead, nil
	case "w", "write":
		return wire.BreakpointWrite, nil
	case "rw", "readwrite":
		return wire.BreakpointReadWrite, nil
	case "x", "exec", "execute":
		return wire.BreakpointExecute, nil
	default:
		return 0, fmt.Errorf("invalid breakpoint kind %q (use r, w, rw, x)", s)
	}
}

func (s *Shell) cmdConnect(ctx context.Context, args []string) error {
	if len(args) > 0 {
		s.client.Disconnect()
		if err := s.client.SetHost(args[0]); err != nil {
			return err
		}
	}
	if s.client.Host() == "" {
		return usage("connect <host>")
	}
	if err := s.client.Connect(ctx); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Connected to %s\n", s.client.Address())
	return nil
}

func (s *Shell) cmdReconnect(ctx context.Context, args []string) error {
	attempts := 5
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("reconnect [attempts]")
		}
		attempts = n
	}
	if err := s.client.ReconnectWithBackoff(ctx, attempts, connection.NewBackoff()); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Reconnected to %s\n", s.client.Address())
	return nil
}

func (s *Shell) cmdInfo() {
	state := "disconnected"
	if s.client.Connected() {
		state = "connected"
	}
	fmt.Fprintf(s.out, "Target:     %s\n", s.client.Address())
	fmt.Fprintf(s.out, "State:      %s\n", state)
	if id := s.client.ConnectionID(); id != "" {
		fmt.Fprintf(s.out, "Connection: %s\n", id)
	}
	if s.client.Validator().Debug {
		fmt.Fprintln(s.out, "Address checks disabled")
	}
}

func (s *Shell) cmdPeek(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("peek <addr>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	if !s.client.Validator().ValidAddress(addr) {
		return fmt.Errorf("address 0x%08X is outside the address table", addr)
	}
	v, err := s.client.Peek(ctx, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "0x%08X: 0x%08X\n", addr, v)
	return nil
}

func (s *Shell) cmdPoke(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("poke <addr> <value> [8|16|32]")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	value, err := parseUint32(args[1])
	if err != nil {
		return err
	}
	width := "32"
	if len(args) == 3 {
		width = args[2]
	}
	switch width {
	case "8":
		if value > math.MaxUint8 {
			return fmt.Errorf("value 0x%X does not fit in 8 bits", value)
		}
		return s.client.Poke08(ctx, addr, uint8(value))
	case "16":
		if value > math.MaxUint16 {
			return fmt.Errorf("value 0x%X does not fit in 16 bits", value)
		}
		return s.client.Poke16(ctx, addr, uint16(value))
	case "32":
		return s.client.Poke32(ctx, addr, value)
	default:
		return usage("poke <addr> <value> [8|16|32]")
	}
}

func (s *Shell) cmdPeekKern(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("peekkern <addr>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	v, err := s.client.PeekKern(ctx, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "0x%08X: 0x%08X\n", addr, v)
	return nil
}

func (s *Shell) cmdPokeKern(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("pokekern <addr> <value>")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	value, err := parseUint32(args[1])
	if err != nil {
		return err
	}
	return s.client.PokeKern(ctx, addr, value)
}

func (s *Shell) cmdDump(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("dump <start> <end> <file>")
	}
	start, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	end, err := parseUint32(args[1])
	if err != nil {
		return err
	}

	f, err := os.Create(args[2])
	if err != nil {
		return err
	}
	if err := s.client.Dump(ctx, start, end, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Shell) cmdUpload(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("upload <start> <file>")
	}
	start, err := parseUint32(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() == 0 || info.Size() > int64(math.MaxUint32-start) {
		return fmt.Errorf("%s: size %d does not fit at 0x%08X", args[1], info.Size(), start)
	}
	end := start + uint32(info.Size())
	if !s.client.Validator().ValidRange(start, end) {
		return fmt.Errorf("range 0x%08X-0x%08X is outside the address table", start, end)
	}
	return s.client.Upload(ctx, start, end, f)
}

func (s *Shell) cmdStatus(ctx context.Context) error {
	state, err := s.client.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Execution: %s\n", state)
	return nil
}

func (s *Shell) cmdBreakpoint(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage("bp <r|w|rw|x> <addr> [exact]")
	}
	kind, err := parseBreakpointKind(args[0])
	if err != nil {
		return err
	}
	addr, err := parseUint32(args[1])
	if err != nil {
		return err
	}
	exact := len(args) == 3 && strings.EqualFold(args[2], "exact")
	return s.client.Breakpoint(ctx, addr, kind, exact)
}

func (s *Shell) cmdBreakpointHit(ctx context.Context) error {
	hit, err := s.client.BreakpointHit(ctx)
	if err != nil {
		return err
	}
	if hit {
		fmt.Fprintln(s.out, "Breakpoint hit")
	} else {
		fmt.Fprintln(s.out, "No breakpoint hit")
	}
	return nil
}

func (s *Shell) cmdRegisters(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("regs <context-addr> [fpr]")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	r, err := s.client.GetRegisters(ctx, addr)
	if err != nil {
		return err
	}
	s.printRegisters(r, len(args) == 2 && strings.EqualFold(args[1], "fpr"))
	return nil
}

func (s *Shell) printRegisters(r gecko.Registers, fpr bool) {
	fmt.Fprintf(s.out, "CR   %08X  XER  %08X  CTR  %08X  LR   %08X\n", r.CR, r.XER, r.CTR, r.LR)
	fmt.Fprintf(s.out, "SRR0 %08X  SRR1 %08X  DSISR %08X DAR  %08X\n", r.SRR0, r.SRR1, r.DSISR, r.DAR)
	for i := 0; i < len(r.GPR); i += 4 {
		fmt.Fprintf(s.out, "r%-3d %08X  r%-3d %08X  r%-3d %08X  r%-3d %08X\n",
			i, r.GPR[i], i+1, r.GPR[i+1], i+2, r.GPR[i+2], i+3, r.GPR[i+3])
	}
	if !fpr {
		return
	}
	for i := 0; i < len(r.FPR); i += 2 {
		fmt.Fprintf(s.out, "f%-3d %-22g f%-3d %g\n", i, r.FPR[i], i+1, r.FPR[i+1])
	}
}

func (s *Shell) cmdRPC(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("rpc <addr> [args...]")
	}
	addr, err := parseUint32(args[0])
	if err != nil {
		return err
	}
	callArgs := make([]uint32, 0, len(args)-1)
	for _, a := range args[1:] {
		v, err := parseUint32(a)
		if err != nil {
			return err
		}
		callArgs = append(callArgs, v)
	}
	v, err := s.client.RPC64(ctx, addr, callArgs...)
	if err != nil {
		return err
	}
	hi, lo := wire.Unpack(v)
	fmt.Fprintf(s.out, "r3=0x%08X r4=0x%08X\n", hi, lo)
	return nil
}

func (s *Shell) cmdCheats(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("cheats <file>")
	}
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	return s.client.SendCheats(ctx, blob)
}

func (s *Shell) cmdHook(ctx context.Context, args []string) error {
	var opts gecko.HookOptions
	if len(args) > 0 && strings.EqualFold(args[0], "pause") {
		opts.Pause = true
		args = args[1:]
	}
	if len(args) > 0 {
		v, err := parseUint32(args[0])
		if err != nil || v > uint32(wire.LanguageKorean) {
			return usage("hook [pause] [lang 0-10] [patches 0-7]")
		}
		opts.Language = wire.Language(v)
	}
	if len(args) > 1 {
		v, err := parseUint32(args[1])
		if err != nil || v > uint32(wire.PatchesPAL50VIDTV) {
			return usage("hook [pause] [lang 0-10] [patches 0-7]")
		}
		opts.Patches = wire.Patches(v)
	}
	return s.client.Hook(ctx, opts)
}

func (s *Shell) cmdVersion(ctx context.Context) error {
	v, err := s.client.VersionRequest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Server: %s\n", v)
	return nil
}

func (s *Shell) cmdOSVersion(ctx context.Context) error {
	v, err := s.client.OSVersionRequest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "OS: %d\n", v)
	return nil
}

func (s *Shell) cmdRanges() {
	for i, r := range s.client.Validator().Table() {
		fmt.Fprintf(s.out, "%2d %s\n", i, r)
	}
}

func (s *Shell) cmdDataUpper(ctx context.Context) error {
	updated, err := s.client.Validator().SetDataUpper(ctx, s.client)
	if err != nil {
		return err
	}
	if !updated {
		fmt.Fprintln(s.out, "OS version not supported; table unchanged")
		return nil
	}
	s.cmdRanges()
	return nil
}
