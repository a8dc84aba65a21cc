package focus

import (
	"sync"
	"time"
)

// Ticker is the subset of *time.Ticker the driver needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct{ t *time.Ticker }

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewStdTicker wraps time.NewTicker.
func NewStdTicker(d time.Duration) Ticker {
	return stdTicker{time.NewTicker(d)}
}

// subscriberBuffer is the number of snapshots a slow subscriber may lag
// behind before its oldest pending snapshots are dropped.
const subscriberBuffer = 16

// Driver runs a Timer off a one second ticker and publishes snapshots.
// At most one ticker exists at a time: ChangeMode, Reset and pausing stop
// it before anything else happens, and a new one is created only on resume.
type Driver struct {
	mu        sync.Mutex
	timer     *Timer
	newTicker TickerFunc
	stop      chan struct{} // non-nil while a tick loop is active
	subs      map[int]chan State
	nextSub   int
	closed    bool
	wg        sync.WaitGroup
}

// NewDriver returns a stopped driver in mode m. A nil newTicker uses
// NewStdTicker.
func NewDriver(m Mode, newTicker TickerFunc) *Driver {
	if newTicker == nil {
		newTicker = NewStdTicker
	}
	return &Driver{
		timer:     NewTimer(m),
		newTicker: newTicker,
		subs:      make(map[int]chan State),
	}
}

// State returns the current snapshot.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer.State()
}

// Toggle starts or pauses the countdown.
func (d *Driver) Toggle() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.timer.Toggle()
	if d.timer.State().Running {
		d.startLocked()
	} else {
		d.stopLocked()
	}
	d.publishLocked()
}

// ChangeMode stops the countdown and switches to a fresh session of m.
func (d *Driver) ChangeMode(m Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.timer.ChangeMode(m)
	d.publishLocked()
}

// Reset stops the countdown and refills the session.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.stopLocked()
	d.timer.Reset()
	d.publishLocked()
}

// Subscribe returns a channel receiving the current snapshot followed by
// one per change. The returned func unsubscribes and closes the channel.
func (d *Driver) Subscribe() (<-chan State, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	if d.closed {
		close(ch)
		return ch, func() {}
	}
	id := d.nextSub
	d.nextSub++
	d.subs[id] = ch
	ch <- d.timer.State()

	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if c, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(c)
		}
	}
}

// Close pauses the countdown and closes all subscriber channels. It waits
// for the tick loop to exit.
func (d *Driver) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.stopLocked()
	if d.timer.State().Running {
		d.timer.Toggle()
	}
	for id, ch := range d.subs {
		delete(d.subs, id)
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Driver) startLocked() {
	if d.stop != nil {
		return
	}
	stop := make(chan struct{})
	d.stop = stop
	tk := d.newTicker(time.Second)
	d.wg.Add(1)
	go d.run(tk, stop)
}

func (d *Driver) stopLocked() {
	if d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
}

func (d *Driver) run(tk Ticker, stop chan struct{}) {
	defer d.wg.Done()
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C():
		}

		d.mu.Lock()
		select {
		case <-stop:
			// stopped while this tick was waiting for the lock
			d.mu.Unlock()
			return
		default:
		}
		d.timer.Tick()
		running := d.timer.State().Running
		if !running {
			d.stop = nil
		}
		d.publishLocked()
		d.mu.Unlock()

		if !running {
			return
		}
	}
}

// publishLocked sends the snapshot without blocking. A full subscriber
// loses its oldest pending snapshot instead, so the latest one always
// arrives. Only publishLocked sends, and it runs under d.mu.
func (d *Driver) publishLocked() {
	st := d.timer.State()
	for _, ch := range d.subs {
		select {
		case ch <- st:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st:
		default:
		}
	}
}
