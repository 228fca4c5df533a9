package vx

import (
	"context"
	"io"
	"os"
	"testing"
	"time"
)

func TestLoopDeliversParsedEvents(t *testing.T) {
	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	tty := &TTY{in: inR, out: outW}
	loop := NewLoop(tty, 8)

	go func() { _, _ = io.Copy(io.Discard, outR) }()

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run() }()

	if _, err := inW.Write([]byte{0x07}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := loop.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if _, ok := ev.(BellEvent); !ok {
		t.Fatalf("Pop = %T, want BellEvent", ev)
	}

	loop.Stop()
	_ = inW.Close()
	_ = inR.Close()
	_ = outR.Close()
	_ = outW.Close()

	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Stop + input close")
	}
}

func TestLoopFoldsCapabilityProbeWithoutForwarding(t *testing.T) {
	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	tty := &TTY{in: inR, out: outW}
	loop := NewLoop(tty, 8)

	go func() { _, _ = io.Copy(io.Discard, outR) }()
	go func() { _ = loop.Run() }()

	if _, err := inW.Write([]byte("\x1b[?2026;1$y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := inW.Write([]byte{0x07}); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := loop.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if _, ok := ev.(BellEvent); !ok {
		t.Fatalf("first application-visible event = %T, want BellEvent (mode report must be folded, not forwarded)", ev)
	}
	if !loop.Capabilities().SynchronizedOutput {
		t.Fatalf("capability probe response should have been folded into Capabilities")
	}

	loop.Stop()
	_ = inW.Close()
	_ = inR.Close()
	_ = outR.Close()
	_ = outW.Close()
}

func TestLoopStopUnblocksPendingRead(t *testing.T) {
	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	tty := &TTY{in: inR, out: outW}
	loop := NewLoop(tty, 8)

	go func() { _, _ = io.Copy(io.Discard, outR) }()

	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run() }()

	// No input is ever written to inW, so the reader goroutine is
	// parked in a blocking Read. Stop must unblock it without anyone
	// closing or writing to the pipe.
	time.Sleep(20 * time.Millisecond)
	loop.Stop()

	select {
	case <-runErr:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Stop with no input pending")
	}
	if loop.Severed() {
		t.Fatalf("Severed() = true, want false: Stop is a clean shutdown, not a severed connection")
	}

	_ = inW.Close()
	_ = inR.Close()
	_ = outR.Close()
	_ = outW.Close()
}

func TestLoopMarksSeveredOnEOF(t *testing.T) {
	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	tty := &TTY{in: inR, out: outW}
	loop := NewLoop(tty, 8)

	go func() { _, _ = io.Copy(io.Discard, outR) }()
	go func() { _ = loop.Run() }()

	_ = inW.Close() // immediate EOF

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ev, err := loop.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if _, ok := ev.(ExitedEvent); !ok {
		t.Fatalf("Pop = %T, want ExitedEvent", ev)
	}
	if !loop.Severed() {
		t.Fatalf("Severed() = false after EOF")
	}

	_ = inR.Close()
	_ = outR.Close()
	_ = outW.Close()
}
