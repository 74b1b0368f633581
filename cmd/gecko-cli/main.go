// Command gecko-cli is a command-line client for the TCP Gecko debugging
// server.
//
// Usage:
//
//	gecko-cli [flags] [command [args...]]
//
// Without a command, gecko-cli connects and starts an interactive shell.
// With a command, it connects, runs that single command and exits.
//
// Flags:
//
//	-config string         Configuration file path (YAML)
//	-host string           Target host
//	-port int              Target port (default 7331)
//	-ranges string         Address table file (YAML)
//	-debug-addresses       Disable address validation
//	-log-level string      Log level: debug, info, warn, error (default "info")
//	-protocol-log string   File path for protocol event logging (CBOR format)
//
// Examples:
//
//	# Interactive session
//	gecko-cli -host 192.168.1.20
//
//	# Dump the data segment and record the session
//	gecko-cli -host 192.168.1.20 -protocol-log dump.glog dump 0x10000000 0x10100000 data.bin
//
//	# Query execution state
//	gecko-cli -config gecko.yaml status
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tcpgecko/gecko-go/cmd/gecko-cli/interactive"
	"github.com/tcpgecko/gecko-go/pkg/config"
	"github.com/tcpgecko/gecko-go/pkg/gecko"
	"github.com/tcpgecko/gecko-go/pkg/log"
	"github.com/tcpgecko/gecko-go/pkg/memmap"
)

var (
	configFile     = flag.String("config", "", "Configuration file path (YAML)")
	host           = flag.String("host", "", "Target host")
	port           = flag.Int("port", 0, "Target port (default 7331)")
	rangesFile     = flag.String("ranges", "", "Address table file (YAML)")
	debugAddresses = flag.Bool("debug-addresses", false, "Disable address validation")
	logLevel       = flag.String("log-level", "", "Log level: debug, info, warn, error (default \"info\")")
	protocolLog    = flag.String("protocol-log", "", "File path for protocol event logging (CBOR format)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	// Set up protocol logging if requested
	var fileLogger *log.FileLogger
	if cfg.ProtocolLog != "" {
		fileLogger, err = log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			stdlog.Fatalf("Failed to create protocol logger: %v", err)
		}
		stdlog.Printf("Protocol logging to: %s", cfg.ProtocolLog)
	}
	protocolLogger := newProtocolLogger(cfg.LogLevel, fileLogger)

	clientCfg, err := cfg.ClientConfig(protocolLogger)
	if err != nil {
		stdlog.Fatalf("Invalid address table: %v", err)
	}
	client := gecko.NewClient(clientCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			stdlog.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	code := run(ctx, cancel, client, cfg.Host)

	client.Disconnect()
	if fileLogger != nil {
		if err := fileLogger.Close(); err != nil {
			stdlog.Printf("Error closing protocol log: %v", err)
			code = 1
		}
	}
	os.Exit(code)
}

func run(ctx context.Context, cancel context.CancelFunc, client *gecko.Client, target string) int {
	if flag.NArg() > 0 {
		if target == "" {
			stdlog.Println("No host given (-host or config file)")
			return 1
		}
		if err := client.Connect(ctx); err != nil {
			stdlog.Printf("Connect failed: %v", err)
			return 1
		}
		shell := interactive.NewBatch(client, os.Stdout)
		if err := shell.RunCommand(ctx, strings.Join(flag.Args(), " ")); err != nil {
			return 1
		}
		return 0
	}

	shell, err := interactive.New(client)
	if err != nil {
		stdlog.Printf("Failed to start shell: %v", err)
		return 1
	}
	// Redirect log output through readline to avoid interfering with input
	stdlog.SetOutput(shell.Stdout())

	if target != "" {
		shell.Execute(ctx, "connect")
	}
	shell.Run(ctx, cancel)
	return 0
}

// loadConfig merges the config file, if any, with command-line flags.
// Flags that were set explicitly win.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			return cfg, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "debug-addresses":
			cfg.AddressDebug = *debugAddresses
		case "log-level":
			cfg.LogLevel = *logLevel
		case "protocol-log":
			cfg.ProtocolLog = *protocolLog
		}
	})

	if *rangesFile != "" {
		table, err := memmap.LoadTable(*rangesFile)
		if err != nil {
			return cfg, err
		}
		cfg.Regions = table
	}

	return cfg, cfg.Validate()
}

func setupLogging(level string) {
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	switch strings.ToLower(level) {
	case "debug":
		stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds | stdlog.Lshortfile)
	case "warn", "error":
		stdlog.SetFlags(stdlog.Ltime)
	}
}

// newProtocolLogger returns the sink for protocol events: the capture file
// plus, at debug level, a console adapter. It returns nil when neither is
// wanted.
func newProtocolLogger(level string, file *log.FileLogger) log.Logger {
	var loggers []log.Logger
	// Only append when non-nil to avoid typed-nil interface issue.
	if file != nil {
		loggers = append(loggers, file)
	}
	if strings.EqualFold(level, "debug") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, log.NewSlogAdapter(slog.New(handler)))
	}
	if len(loggers) == 0 {
		return nil
	}
	return log.NewMultiLogger(loggers...)
}
