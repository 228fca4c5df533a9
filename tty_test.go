package vx

import (
	"os"
	"testing"
)

func TestOpenTTYRejectsNonTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()
	if _, err := OpenTTY(r, w); err != ErrClosed {
		t.Fatalf("OpenTTY(pipe) = %v, want ErrClosed", err)
	}
}

func TestTTYRestoreWithoutMakeRawIsNoop(t *testing.T) {
	tty := &TTY{}
	if err := tty.Restore(); err != nil {
		t.Fatalf("Restore on a never-raw TTY should be a no-op, got %v", err)
	}
}

func TestTTYWriteAndRead(t *testing.T) {
	inR, inW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer inR.Close()
	defer inW.Close()
	outR, outW, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer outR.Close()
	defer outW.Close()

	tty := &TTY{in: inR, out: outW}
	if _, err := tty.Write([]byte("hi")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 2)
	if _, err := outR.Read(buf); err != nil {
		t.Fatalf("reading back what was written: %v", err)
	}
	if string(buf) != "hi" {
		t.Fatalf("got %q, want \"hi\"", buf)
	}

	if _, err := inW.Write([]byte("yo")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf2 := make([]byte, 2)
	if _, err := tty.Read(buf2); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf2) != "yo" {
		t.Fatalf("got %q, want \"yo\"", buf2)
	}
}

func TestRestoreLastTTYWithNoneSetIsNoop(t *testing.T) {
	lastTTYMu.Lock()
	lastTTY = nil
	lastTTYMu.Unlock()
	RestoreLastTTY() // must not panic
}
