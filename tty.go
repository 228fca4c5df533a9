package vx

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// TTY owns raw-mode state for one real terminal device, following an
// acquire-then-restore-in-defer pattern around term.MakeRaw/term.Restore,
// generalized into a scoped value a caller can hold for the lifetime of
// a session instead of inlining.
type TTY struct {
	in, out *os.File
	fd      int
	restore *term.State
	raw     bool

	resizeCh chan os.Signal
	stopCh   chan struct{}
}

// lastTTY is a process-wide best-effort pointer to the most recently
// raw-moded TTY, consulted only by a panic handler that needs to leave
// the terminal usable after an unrecovered panic — see RestoreLastTTY.
var (
	lastTTYMu sync.Mutex
	lastTTY   *TTY
)

// OpenTTY wraps in/out (ordinarily os.Stdin/os.Stdout) as a TTY. It
// returns ErrClosed if out is not actually a terminal, since every
// other TTY operation assumes a real device.
func OpenTTY(in, out *os.File) (*TTY, error) {
	fd := int(out.Fd())
	if !isatty.IsTerminal(uintptr(fd)) && !isatty.IsCygwinTerminal(uintptr(fd)) {
		return nil, ErrClosed
	}
	return &TTY{in: in, out: out, fd: fd}, nil
}

// MakeRaw puts the TTY into raw (cbreak, no echo) mode and records the
// prior state so Restore can undo it. Calling MakeRaw twice without an
// intervening Restore is a no-op, matching the idempotent acquire a
// long-lived event loop needs around reconnect/resume.
func (t *TTY) MakeRaw() error {
	if t.raw {
		return nil
	}
	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return fmt.Errorf("vx: enter raw mode: %w", err)
	}
	t.restore = state
	t.raw = true
	lastTTYMu.Lock()
	lastTTY = t
	lastTTYMu.Unlock()
	return nil
}

// Restore undoes MakeRaw, restoring the terminal's original mode. A
// TTY that was never made raw restores as a no-op.
func (t *TTY) Restore() error {
	if !t.raw {
		return nil
	}
	err := term.Restore(t.fd, t.restore)
	t.raw = false
	return err
}

// Size returns the terminal's current width and height in cells, via
// an ioctl on the TTY's own fd.
func (t *TTY) Size() (cols, rows int, err error) {
	return term.GetSize(t.fd)
}

// WatchResize starts a goroutine that turns SIGWINCH into WinsizeEvent
// values sent on the returned channel, following a
// signal.Notify(syscall.SIGWINCH)-then-GetSize shape. StopWatchResize
// ends the goroutine and closes the channel.
func (t *TTY) WatchResize() <-chan WinsizeEvent {
	t.resizeCh = make(chan os.Signal, 1)
	t.stopCh = make(chan struct{})
	signal.Notify(t.resizeCh, syscall.SIGWINCH)

	out := make(chan WinsizeEvent, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-t.stopCh:
				signal.Stop(t.resizeCh)
				return
			case _, ok := <-t.resizeCh:
				if !ok {
					return
				}
				cols, rows, err := t.Size()
				if err != nil {
					continue
				}
				select {
				case out <- WinsizeEvent{Cols: cols, Rows: rows}:
				case <-t.stopCh:
					signal.Stop(t.resizeCh)
					return
				}
			}
		}
	}()
	return out
}

// StopWatchResize ends the goroutine started by WatchResize.
func (t *TTY) StopWatchResize() {
	if t.stopCh != nil {
		close(t.stopCh)
	}
}

// Write writes raw bytes to the TTY's output (e.g. a Screen.Render
// frame, or a capability probe sequence).
func (t *TTY) Write(p []byte) (int, error) { return t.out.Write(p) }

// Read reads raw bytes from the TTY's input, the primitive the reader
// thread in loop.go wraps in a bufio.Reader for Parser.Next.
func (t *TTY) Read(p []byte) (int, error) { return t.in.Read(p) }

// InterruptRead unblocks a Read call already parked in the kernel,
// waiting for bytes that may never arrive. t.in is stdin/a pty/a pipe,
// none of which this process can close or write an EOT byte into from
// the read side, so the portable equivalent of "write a sentinel into
// the tty to wake the reader" is an immediate read deadline: the next
// poll on t.in's fd returns os.ErrDeadlineExceeded instead of blocking
// forever. Loop.Stop calls this so readLoop's pending Read returns.
func (t *TTY) InterruptRead() error {
	return t.in.SetReadDeadline(time.Now())
}

// Close restores the TTY's mode (if raw) and stops any resize watcher;
// it does not close the underlying *os.File, since stdin/stdout are
// not this package's to close.
func (t *TTY) Close() error {
	t.StopWatchResize()
	lastTTYMu.Lock()
	if lastTTY == t {
		lastTTY = nil
	}
	lastTTYMu.Unlock()
	return t.Restore()
}

// RestoreLastTTY restores whichever TTY most recently entered raw mode
// and hasn't been Closed since, without needing a reference to it.
// Intended for a recover() handler at the top of main: a raw terminal
// left in that state by a panicking goroutine is otherwise unusable
// until the shell's own "reset" recovers it.
func RestoreLastTTY() {
	lastTTYMu.Lock()
	t := lastTTY
	lastTTYMu.Unlock()
	if t != nil {
		_ = t.Restore()
	}
}
