// Package interactive provides the interactive command-line interface
// for gecko-cli.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tcpgecko/gecko-go/pkg/gecko"
)

// Shell handles interactive mode for gecko-cli.
type Shell struct {
	client *gecko.Client
	rl     *readline.Instance
	out    io.Writer
}

// New creates a readline-backed shell driving client.
func New(client *gecko.Client) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gecko> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := &Shell{client: client, rl: rl, out: rl.Stdout()}
	client.OnProgress(s.printProgress)
	return s, nil
}

// NewBatch returns a shell without line editing that writes to out. It runs
// single commands given on the command line.
func NewBatch(client *gecko.Client, out io.Writer) *Shell {
	s := &Shell{client: client, out: out}
	client.OnProgress(s.printProgress)
	return s
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Execute(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line, printing any error. It returns false when
// the line asks the shell to exit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	quit, err := s.dispatch(ctx, line)
	s.report(err)
	return !quit
}

// RunCommand runs one command line for batch use. Any error, including an
// unknown command, is printed and returned.
func (s *Shell) RunCommand(ctx context.Context, line string) error {
	_, err := s.dispatch(ctx, line)
	s.report(err)
	return err
}

func (s *Shell) report(err error) {
	if err == nil {
		return
	}
	var unknown unknownCommandError
	if errors.As(err, &unknown) {
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", string(unknown))
		return
	}
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func (s *Shell) dispatch(ctx context.Context, line string) (quit bool, err error) {
	input := strings.TrimSpace(line)
	if input == "" || strings.HasPrefix(input, "#") {
		return false, nil
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "connect":
		err = s.cmdConnect(ctx, args)
	case "disconnect":
		s.client.Disconnect()
	case "reconnect":
		err = s.cmdReconnect(ctx, args)
	case "info":
		s.cmdInfo()

	case "peek":
		err = s.cmdPeek(ctx, args)
	case "poke":
		err = s.cmdPoke(ctx, args)
	case "peekkern":
		err = s.cmdPeekKern(ctx, args)
	case "pokekern":
		err = s.cmdPokeKern(ctx, args)
	case "dump":
		err = s.cmdDump(ctx, args)
	case "upload":
		err = s.cmdUpload(ctx, args)

	case "status":
		err = s.cmdStatus(ctx)
	case "pause":
		err = s.client.Pause(ctx)
	case "resume":
		err = s.client.Resume(ctx)
	case "step":
		err = s.client.Step(ctx)
	case "safepause":
		err = s.client.SafePause(ctx)

	case "bp":
		err = s.cmdBreakpoint(ctx, args)
	case "bphit":
		err = s.cmdBreakpointHit(ctx)
	case "bpcancel":
		err = s.client.CancelBreakpoint(ctx)
	case "regs":
		err = s.cmdRegisters(ctx, args)

	case "rpc":
		err = s.cmdRPC(ctx, args)
	case "cheats":
		err = s.cmdCheats(ctx, args)
	case "cheatexec":
		err = s.client.ExecuteCheats(ctx)
	case "hook":
		err = s.cmdHook(ctx, args)

	case "version":
		err = s.cmdVersion(ctx)
	case "osversion":
		err = s.cmdOSVersion(ctx)
	case "ranges":
		s.cmdRanges()
	case "dataupper":
		err = s.cmdDataUpper(ctx)

	case "quit", "exit", "q":
		return true, nil

	default:
		err = unknownCommandError(cmd)
	}
	return false, err
}

func (s *Shell) printProgress(p gecko.Progress) {
	if !p.Complete() {
		return
	}
	fmt.Fprintf(s.out, "%s 0x%08X: %d bytes in %d chunk(s)\n", p.Direction, p.Address, p.Length, p.Chunks)
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
TCP Gecko Commands:
  Connection:
    connect [host]                    - Connect (optionally to a new host)
    disconnect                        - Close the connection
    reconnect [attempts]              - Reconnect with backoff
    info                              - Show connection details

  Memory:
    peek <addr>                       - Read a 32-bit value
    poke <addr> <value> [8|16|32]     - Write a value (default 32-bit)
    peekkern <addr>                   - Read privileged memory
    pokekern <addr> <value>           - Write privileged memory
    dump <start> <end> <file>         - Dump a range to a file
    upload <start> <file>             - Upload a file to memory

  Execution:
    status                            - Query execution state
    pause | resume | step             - Control execution
    safepause                         - Pause until confirmed
    bp <r|w|rw|x> <addr> [exact]      - Set a breakpoint
    bphit                             - Poll for a breakpoint hit
    bpcancel                          - Cancel the breakpoint
    regs <context-addr> [fpr]         - Show registers of a context

  Code:
    rpc <addr> [args...]              - Call a remote function
    cheats <file>                     - Send a cheat blob
    cheatexec                         - Execute installed cheats
    hook [pause] [lang] [patches]     - Install the execution hook

  Target:
    version                           - Query server version
    osversion                         - Query OS version
    ranges                            - Show the address table
    dataupper                         - Refresh the table from the target

  General:
    help                              - Show this help
    quit                              - Exit

  Numbers accept 0x hex or decimal.`)
}
