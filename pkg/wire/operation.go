package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is a single-byte protocol opcode.
type Command uint8

const (
	// CmdPoke08 writes an 8-bit value.
	CmdPoke08 Command = 0x01
	// CmdPoke16 writes a 16-bit value.
	CmdPoke16 Command = 0x02
	// CmdPokeMem writes a 32-bit value.
	CmdPokeMem Command = 0x03
	// CmdReadMem starts a bulk memory dump.
	CmdReadMem Command = 0x04
	// CmdPause pauses execution.
	CmdPause Command = 0x06
	// CmdUnfreeze resumes execution.
	CmdUnfreeze Command = 0x07
	// CmdBreakpoint sets a classic data breakpoint.
	CmdBreakpoint Command = 0x09
	// CmdWriteKern writes a 32-bit value to privileged memory.
	CmdWriteKern Command = 0x0b
	// CmdReadKern reads a 32-bit value from privileged memory.
	CmdReadKern Command = 0x0c
	// CmdBreakpointX sets an execute breakpoint.
	CmdBreakpointX Command = 0x10
	// CmdSendRegs uploads registers.
	CmdSendRegs Command = 0x2F
	// CmdGetRegs downloads registers.
	CmdGetRegs Command = 0x30
	// CmdCancelBP cancels the running breakpoint.
	CmdCancelBP Command = 0x38
	// CmdSendCheats injects a cheat blob.
	CmdSendCheats Command = 0x40
	// CmdUpload starts a bulk memory upload.
	CmdUpload Command = 0x41
	// CmdHook installs the execution hook.
	CmdHook Command = 0x42
	// CmdHookPause installs the execution hook and pauses.
	CmdHookPause Command = 0x43
	// CmdStep single-steps execution.
	CmdStep Command = 0x44
	// CmdStatus queries the execution state.
	CmdStatus Command = 0x50
	// CmdCheatExec executes installed cheats.
	CmdCheatExec Command = 0x60
	// CmdRPC performs a remote procedure call.
	CmdRPC Command = 0x70
	// CmdNBreakpoint sets an advanced (exact) breakpoint.
	CmdNBreakpoint Command = 0x89
	// CmdVersion queries the server version.
	CmdVersion Command = 0x99
	// CmdOSVersion queries the OS version.
	CmdOSVersion Command = 0x9A
)

var commandNames = map[Command]string{
	CmdPoke08:      "POKE08",
	CmdPoke16:      "POKE16",
	CmdPokeMem:     "POKEMEM",
	CmdReadMem:     "READMEM",
	CmdPause:       "PAUSE",
	CmdUnfreeze:    "UNFREEZE",
	CmdBreakpoint:  "BREAKPOINT",
	CmdWriteKern:   "WRITEKERN",
	CmdReadKern:    "READKERN",
	CmdBreakpointX: "BREAKPOINTX",
	CmdSendRegs:    "SENDREGS",
	CmdGetRegs:     "GETREGS",
	CmdCancelBP:    "CANCELBP",
	CmdSendCheats:  "SENDCHEATS",
	CmdUpload:      "UPLOAD",
	CmdHook:        "HOOK",
	CmdHookPause:   "HOOKPAUSE",
	CmdStep:        "STEP",
	CmdStatus:      "STATUS",
	CmdCheatExec:   "CHEATEXEC",
	CmdRPC:         "RPC",
	CmdNBreakpoint: "NBREAKPOINT",
	CmdVersion:     "VERSION",
	CmdOSVersion:   "OSVERSION",
}

// String returns the opcode name, or the hex value for opcodes without one
// (hook variants and raw sentinel writes).
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", uint8(c))
}

// ParseCommand resolves an opcode name (case-insensitive) or a hex byte such
// as "0x50".
func ParseCommand(s string) (Command, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for c, name := range commandNames {
		if name == upper {
			return c, nil
		}
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(upper, "0X"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown opcode: %s", s)
	}
	return Command(v), nil
}
