package app

import "sync"

type subscriber struct {
	ch     chan Snapshot
	frames bool
}

// hub fans snapshots out to subscribers without blocking the tick.
type hub struct {
	mu     sync.RWMutex
	subs   map[int]subscriber
	framed int
	next   int
	latest Snapshot
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]subscriber)}
}

// subscribe registers a subscriber. Only subscribers asking for frames
// receive the monitor image.
func (h *hub) subscribe(frames bool) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.next
	h.next++
	h.subs[id] = subscriber{ch: ch, frames: frames}
	if frames {
		h.framed++
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				h.remove(id, sub)
			}
		})
	}
}

func (h *hub) remove(id int, sub subscriber) {
	delete(h.subs, id)
	if sub.frames {
		h.framed--
	}
	close(sub.ch)
}

// wantsFrames reports whether any subscriber reads the monitor image.
func (h *hub) wantsFrames() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.framed > 0
}

func (h *hub) publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest = s
	for _, sub := range h.subs {
		out := s
		if !sub.frames {
			out.Frame = nil
		}
		deliver(sub.ch, out)
	}
}

// deliver sends s, replacing a snapshot the subscriber has not read yet.
// A committed action in the replaced snapshot is carried over.
func deliver(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}

	select {
	case old := <-ch:
		if old.Committed && !s.Committed {
			s.Action, s.Detail, s.Committed = old.Action, old.Detail, true
		}
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

func (h *hub) last() Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s := h.latest
	s.Frame = nil
	return s
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		h.remove(id, sub)
	}
}
