package vt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/shlex"
)

// Emulator hosts one child process in a PTY and feeds its output
// through a Terminal, the embedded-VT building block for programs that
// want to run (and render) a full-screen child like a shell or pager
// inside their own UI.
type Emulator struct {
	cmd *exec.Cmd
	ptm *os.File

	mu       sync.Mutex
	term     *Terminal
	lastOut  time.Time
	exited   bool
	exitErr  error
}

// writeTimeout bounds how long Write waits for the PTY to accept
// bytes before giving up, so a wedged or exited child can't hang a
// caller's input-forwarding goroutine forever.
const writeTimeout = 2 * time.Second

// Spawn starts command with args in a PTY of the given size, wired to
// a fresh Terminal with scrollbackMax lines of history on its primary
// screen.
func Spawn(command string, args []string, cols, rows, scrollbackMax int) (*Emulator, error) {
	cmd := exec.Command(command, args...)
	ptm, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("vt: start command: %w", err)
	}
	term := NewTerminal(cols, rows, scrollbackMax)
	term.SetResponder(ptm)
	return &Emulator{
		cmd:  cmd,
		ptm:  ptm,
		term: term,
	}, nil
}

// SpawnShell splits cmdline the way a shell would (quoting and all) and
// Spawns the result, for callers that accept a single command-line
// string from a user or config file rather than a pre-split argv.
func SpawnShell(cmdline string, cols, rows, scrollbackMax int) (*Emulator, error) {
	argv, err := shlex.Split(cmdline)
	if err != nil {
		return nil, fmt.Errorf("vt: split command line: %w", err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("vt: empty command line")
	}
	return Spawn(argv[0], argv[1:], cols, rows, scrollbackMax)
}

// Terminal returns the emulator's terminal model. The Terminal has no
// locking of its own; while Run is feeding bytes, callers hold the
// Emulator's Lock/Unlock around both the read and any rendering of it.
func (e *Emulator) Terminal() *Terminal { return e.term }

// Lock and Unlock guard the Terminal against concurrent mutation by
// Run's feed goroutine while a caller renders a snapshot of it.
func (e *Emulator) Lock()   { e.mu.Lock() }
func (e *Emulator) Unlock() { e.mu.Unlock() }

// Run reads the child's PTY output until EOF or a fatal error,
// feeding it through the Terminal one byte or escape sequence at a time
// and invoking onData after each one so the caller can schedule a
// redraw — the same
// read-then-callback shape as PipeOutput in the PTY sessions this
// package generalizes from, minus the ANSI-passthrough/plain-history
// recording a full multi-viewer session host needs but a single
// embedded emulator does not.
func (e *Emulator) Run(onData func()) error {
	r := bufio.NewReader(e.ptm)
	for {
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, syscall.EIO) {
				// Linux reports EIO on the master once the child side
				// has closed; that is the child's normal exit.
				err = io.EOF
			}
			e.mu.Lock()
			e.exited = true
			e.exitErr = err
			e.mu.Unlock()
			return err
		}

		e.mu.Lock()
		e.lastOut = time.Now()
		e.term.feedByte(b, r)
		e.mu.Unlock()
		onData()
	}
}

// Write sends bytes to the child's stdin (the PTY master), e.g.
// forwarded keystrokes from the host application, bounded by
// writeTimeout so a child that stops reading can't block the caller
// forever.
func (e *Emulator) Write(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := e.ptm.Write(p)
		done <- result{n, err}
	}()
	select {
	case r := <-done:
		return r.n, r.err
	case <-time.After(writeTimeout):
		return 0, fmt.Errorf("vt: write timed out after %s", writeTimeout)
	}
}

// Resize updates both the PTY's kernel-visible window size and the
// Terminal's own screen dimensions.
func (e *Emulator) Resize(cols, rows int) error {
	e.mu.Lock()
	e.term.Resize(cols, rows)
	e.mu.Unlock()
	return pty.Setsize(e.ptm, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Exited reports whether Run has returned, and the error it returned
// (io.EOF for a normal child exit).
func (e *Emulator) Exited() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exited, e.exitErr
}

// LastOutput returns the time of the most recently processed chunk of
// child output, for callers that want to detect a hung child.
func (e *Emulator) LastOutput() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastOut
}

// Kill sends SIGKILL to the child, for a hung process that doesn't
// respond to Close's ordinary termination.
func (e *Emulator) Kill() error {
	if e.cmd.Process == nil {
		return nil
	}
	return e.cmd.Process.Kill()
}

// Close closes the PTY master, which delivers EOF/HUP to the child.
func (e *Emulator) Close() error {
	return e.ptm.Close()
}

// Wait blocks until the child process exits and returns its exit
// error, if any.
func (e *Emulator) Wait() error {
	return e.cmd.Wait()
}
