package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tcpgecko/gecko-go/pkg/log"
	"github.com/tcpgecko/gecko-go/pkg/wire"
)

func TestStatsCountsByLayerAndCategory(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryFrame, Frame: &log.FrameEvent{Size: 1}},
		{Timestamp: ts, Layer: log.LayerProtocol, Category: log.CategoryCommand, Command: &log.CommandEvent{Opcode: wire.CmdPause}},
		{Timestamp: ts, Layer: log.LayerProtocol, Category: log.CategoryTransfer, Transfer: &log.TransferEvent{}},
		{Timestamp: ts, Layer: log.LayerSession, Category: log.CategoryState, StateChange: &log.StateChangeEvent{NewState: "CONNECTED"}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{"TRANSPORT:", "PROTOCOL:", "SESSION:", "FRAME:", "COMMAND:", "TRANSFER:", "STATE:"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}
	if !strings.Contains(output, "Total Events: 4") {
		t.Errorf("expected total of 4, got: %s", output)
	}
}

func TestStatsCountsCommands(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	reply := uint8(0)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryCommand, Command: &log.CommandEvent{Opcode: wire.CmdStatus}},
		{Timestamp: ts, Category: log.CategoryCommand, Command: &log.CommandEvent{Opcode: wire.CmdStatus, Reply: &reply}},
		{Timestamp: ts, Category: log.CategoryCommand, Command: &log.CommandEvent{Opcode: wire.CmdStatus}},
		{Timestamp: ts, Category: log.CategoryCommand, Command: &log.CommandEvent{Opcode: wire.CmdReadMem}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "STATUS:      2") {
		t.Errorf("expected 2 STATUS commands, got: %s", output)
	}
	if !strings.Contains(output, "READMEM:     1") {
		t.Errorf("expected 1 READMEM command, got: %s", output)
	}
}

func TestStatsCountsConnections(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, ConnectionID: "conn-aaaa-bbbb", RemoteAddr: "192.168.1.20:7331", Direction: log.DirectionOut, Frame: &log.FrameEvent{Size: 9}},
		{Timestamp: ts.Add(time.Second), ConnectionID: "conn-aaaa-bbbb", Direction: log.DirectionIn, Frame: &log.FrameEvent{Size: 4}},
		{Timestamp: ts, ConnectionID: "conn-cccc-dddd"},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Connections: 2") {
		t.Errorf("expected 2 connections, got: %s", output)
	}
	if !strings.Contains(output, "Target: 192.168.1.20:7331") {
		t.Errorf("expected target address, got: %s", output)
	}
	if !strings.Contains(output, "Bytes: 4 in, 9 out") {
		t.Errorf("expected byte totals, got: %s", output)
	}
}

func TestStatsRetriesAndErrors(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Frame: &log.FrameEvent{Size: 1, Short: true}},
		{Timestamp: ts, Transfer: &log.TransferEvent{Retries: 2}},
		{Timestamp: ts, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "too many retries"}},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Short Frames: 1") {
		t.Errorf("expected short frame count, got: %s", output)
	}
	if !strings.Contains(output, "Retries:      2") {
		t.Errorf("expected retry count, got: %s", output)
	}
	if !strings.Contains(output, "Errors: 1") {
		t.Errorf("expected error count, got: %s", output)
	}
}

func TestStatsTimeRange(t *testing.T) {
	start := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: start.Add(30 * time.Second)},
		{Timestamp: start},
		{Timestamp: start.Add(time.Minute)},
	}
	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "2026-01-28T10:00:00Z to 2026-01-28T10:01:00Z") {
		t.Errorf("expected time range, got: %s", output)
	}
	if !strings.Contains(output, "Duration:   1m0s") {
		t.Errorf("expected duration, got: %s", output)
	}
}
