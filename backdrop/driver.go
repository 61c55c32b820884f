package backdrop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrStopped = errors.New("backdrop: driver stopped")

// FrameSource delivers one value per display frame.
type FrameSource interface {
	C() <-chan time.Time
	Stop()
}

type tickerSource struct {
	t *time.Ticker
}

// NewTicker returns a FrameSource firing fps times per second. fps <= 0
// means 60.
func NewTicker(fps int) FrameSource {
	if fps <= 0 {
		fps = 60
	}
	return &tickerSource{t: time.NewTicker(time.Second / time.Duration(fps))}
}

func (s *tickerSource) C() <-chan time.Time { return s.t.C }
func (s *tickerSource) Stop()               { s.t.Stop() }

// FrameFunc runs after each rendered frame, on the driver goroutine. A
// non-nil error stops the driver.
type FrameFunc func(e *Engine) error

// Handle controls a running driver. It is the only way to stop one.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}
	frames atomic.Uint64
	log    logrus.FieldLogger

	stopOnce sync.Once
	err      error
}

// Start runs e on its own goroutine: every tick from src performs Update,
// Render and onFrame, and events passed to Dispatch are applied between
// frames. Nothing else may touch e until the handle is stopped.
func Start(ctx context.Context, e *Engine, src FrameSource, onFrame FrameFunc) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
		log:    e.log,
	}
	go h.run(e, src, onFrame)
	return h
}

func (h *Handle) run(e *Engine, src FrameSource, onFrame FrameFunc) {
	defer close(h.done)
	defer src.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case ev := <-h.events:
			h.apply(e, ev)

		case <-src.C():
			if h.ctx.Err() != nil {
				return
			}
			h.drain(e)
			e.Update()
			if err := e.Render(); err != nil {
				h.err = err
				return
			}
			h.frames.Add(1)
			if onFrame != nil {
				if err := onFrame(e); err != nil {
					h.err = err
					return
				}
			}
		}
	}
}

func (h *Handle) apply(e *Engine, ev Event) {
	if err := e.Handle(ev); err != nil {
		h.log.WithError(err).WithField("event", ev.Kind.String()).Warn("backdrop event rejected")
	}
}

// drain applies every queued event so a frame never lags input that arrived
// before its tick.
func (h *Handle) drain(e *Engine) {
	for {
		select {
		case ev := <-h.events:
			h.apply(e, ev)
		default:
			return
		}
	}
}

// Dispatch queues ev for the driver goroutine. It reports false once the
// driver has been stopped.
func (h *Handle) Dispatch(ev Event) bool {
	if h.ctx.Err() != nil {
		return false
	}
	select {
	case <-h.ctx.Done():
		return false
	case <-h.done:
		return false
	case h.events <- ev:
		return true
	}
}

// Stop cancels the frame loop, detaches input and waits for the driver
// goroutine to exit. Safe to call more than once.
func (h *Handle) Stop() {
	h.stopOnce.Do(func() {
		h.cancel()
		<-h.done
		h.log.WithField("frames", h.frames.Load()).Debug("backdrop driver stopped")
	})
}

// Done is closed when the driver goroutine exits.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Frames returns how many frames have been rendered.
func (h *Handle) Frames() uint64 { return h.frames.Load() }

// Err returns the render or frame callback error that stopped the driver,
// ErrStopped after a plain Stop, or nil while running.
func (h *Handle) Err() error {
	select {
	case <-h.done:
	default:
		return nil
	}
	if h.err != nil {
		return h.err
	}
	return ErrStopped
}
