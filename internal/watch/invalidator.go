// Package watch turns external change notifications into a single "your
// task snapshot may be stale, re-fetch it" signal. The transport is
// irrelevant to consumers: anything that notices a change calls MarkStale.
package watch

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrStopped = errors.New("watch: invalidator stopped")

// Invalidator coalesces bursts of change notifications into refresh
// signals. Notifications arriving inside the debounce window collapse into
// one emission; a signal that cannot be delivered because one is already
// queued is dropped, since the pending refresh covers it.
type Invalidator struct {
	mu       sync.Mutex
	out      chan struct{}
	kick     chan struct{}
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	debounce time.Duration
	log      *zap.Logger
}

func NewInvalidator(debounce time.Duration, log *zap.Logger) *Invalidator {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Invalidator{
		out:      make(chan struct{}, 1),
		kick:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		debounce: debounce,
		log:      log,
	}
}

// C delivers one value per coalesced invalidation. The channel closes when
// the invalidator stops.
func (inv *Invalidator) C() <-chan struct{} {
	return inv.out
}

func (inv *Invalidator) Start() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.started {
		return
	}
	inv.started = true
	go inv.loop()
}

func (inv *Invalidator) Stop() {
	inv.mu.Lock()
	if !inv.started || inv.stopped {
		inv.mu.Unlock()
		return
	}
	inv.stopped = true
	close(inv.stopCh)
	inv.mu.Unlock()
	<-inv.doneCh
}

// MarkStale records that the underlying task tables changed.
func (inv *Invalidator) MarkStale() error {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if inv.stopped {
		return ErrStopped
	}
	select {
	case inv.kick <- struct{}{}:
	default:
	}
	return nil
}

func (inv *Invalidator) loop() {
	defer close(inv.doneCh)
	defer close(inv.out)

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-inv.kick:
			if timer == nil {
				timer = time.NewTimer(inv.debounce)
				timerC = timer.C
			}
			// A kick while the timer runs is already covered.
		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case inv.out <- struct{}{}:
				inv.log.Debug("snapshot invalidated")
			default:
			}
		case <-inv.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
