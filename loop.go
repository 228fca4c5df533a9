package vx

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

// Loop drives one TTY: a single reader goroutine runs Parser.Next in a
// tight loop, folds capability-probe responses into a shared
// Capabilities record, and pushes everything else onto a Queue for the
// application to Pop. It also merges in WinsizeEvent values from the
// TTY's SIGWINCH watcher, a reader-thread-plus-resize-source shape
// feeding one output queue — generalized from a split between a
// goroutine reading input and a goroutine watching resize signals,
// both writing into state guarded by one mutex, to a single Queue
// instead of a shared buffer-and-redraw callback.
type Loop struct {
	tty    *TTY
	parser *Parser
	queue  *Queue

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	caps Capabilities

	severed bool
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewLoop wires tty to a fresh Parser and a Queue of the given
// capacity (0 uses the default).
func NewLoop(tty *TTY, capacity int) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		tty:    tty,
		parser: NewParser(),
		queue:  NewQueue(capacity),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// SetMaxPasteBytes forwards to the underlying Parser; see
// Parser.SetMaxPasteBytes.
func (l *Loop) SetMaxPasteBytes(n int) { l.parser.SetMaxPasteBytes(n) }

// Capabilities returns a snapshot of what the terminal has proven it
// supports so far. Safe to call concurrently with Run.
func (l *Loop) Capabilities() Capabilities {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.caps
}

// Severed reports whether the reader thread has hit a fatal read error
// (the TTY device going away, e.g. the controlling process exiting)
// and stopped enqueueing new events.
func (l *Loop) Severed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.severed
}

// Pop blocks for the next application-visible event. Once the reader
// has been severed and the queue drained, it returns ErrSevered.
func (l *Loop) Pop(ctx context.Context) (Event, error) {
	ev, err := l.queue.Pop(ctx)
	if errors.Is(err, ErrClosed) && l.Severed() {
		return nil, ErrSevered
	}
	return ev, err
}

// TryPop returns the next application-visible event without blocking.
func (l *Loop) TryPop() (Event, bool) { return l.queue.TryPop() }

// Run starts the reader goroutine and a resize-watcher goroutine, then
// blocks until Stop is called or the reader hits a fatal error. It
// writes the initial capability probe before reading anything, so the
// first bytes back off the wire are always probe responses rather than
// user input racing the probe.
func (l *Loop) Run() error {
	caps, err := QueryTerminal(l.tty)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.caps = caps
	l.mu.Unlock()

	resizeCh := l.tty.WatchResize()

	l.wg.Add(2)
	go func() {
		defer l.wg.Done()
		l.watchResize(resizeCh)
	}()
	go func() {
		defer l.wg.Done()
		l.readLoop()
	}()

	// The queue is only safe to Close once both producers above have
	// returned and will never Push/TryPush again.
	go func() {
		l.wg.Wait()
		l.queue.Close()
		close(l.done)
	}()

	<-l.done
	return nil
}

// Stop asks the reader and resize-watcher goroutines to exit. A
// Parser.Next call already blocked inside the TTY's Read is unblocked
// by InterruptRead, the equivalent of writing an EOT sentinel into the
// tty to wake a pending read; readLoop treats the resulting deadline
// error as a clean shutdown rather than a severed connection.
func (l *Loop) Stop() {
	l.cancel()
	l.tty.StopWatchResize()
	_ = l.tty.InterruptRead()
}

func (l *Loop) watchResize(ch <-chan WinsizeEvent) {
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			_ = l.queue.TryPush(ev)
		case <-l.ctx.Done():
			return
		}
	}
}

func (l *Loop) readLoop() {
	r := bufio.NewReader(l.tty)
	for {
		select {
		case <-l.ctx.Done():
			return
		default:
		}

		ev, err := l.parser.Next(r)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) && l.ctx.Err() != nil {
				return
			}
			l.markSevered(err)
			l.cancel()
			return
		}
		if ev == nil {
			continue
		}

		l.mu.Lock()
		consumed := l.caps.FoldProbe(ev)
		if !consumed {
			l.caps.Observe(ev)
		}
		l.mu.Unlock()
		if consumed {
			continue
		}

		if err := l.queue.Push(l.ctx, ev); err != nil {
			return
		}
	}
}

func (l *Loop) markSevered(err error) {
	l.mu.Lock()
	l.severed = true
	l.mu.Unlock()
	if errors.Is(err, io.EOF) {
		_ = l.queue.TryPush(ExitedEvent{})
		return
	}
	_ = l.queue.TryPush(ExitedEvent{Err: err})
}
