package arbiter

import (
	"time"

	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/sched"
)

type vote struct {
	kind input.Code
	at   time.Time
}

// voteWindow counts mouse-action votes cast within the trailing period.
// Every vote expires individually period after it was cast.
type voteWindow struct {
	s      *sched.Scheduler
	period time.Duration
	timer  *sched.Timer
	votes  []vote
	counts map[input.Code]int
}

func newVoteWindow(s *sched.Scheduler, period time.Duration) *voteWindow {
	w := &voteWindow{
		s:      s,
		period: period,
		counts: make(map[input.Code]int),
	}
	w.timer = s.NewTimer(w.expire)
	return w
}

func (w *voteWindow) add(kind input.Code) {
	w.votes = append(w.votes, vote{kind: kind, at: w.s.Now()})
	w.counts[kind]++
	if !w.timer.Active() {
		w.timer.StartAt(w.votes[0].at.Add(w.period))
	}
}

func (w *voteWindow) count(kind input.Code) int {
	return w.counts[kind]
}

func (w *voteWindow) total() int {
	return len(w.votes)
}

func (w *voteWindow) snapshot() map[input.Code]int {
	out := make(map[input.Code]int, len(w.counts))
	for k, v := range w.counts {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

func (w *voteWindow) clear() {
	w.timer.Stop()
	w.votes = nil
	clear(w.counts)
}

// expire drops every vote older than the period and re-arms for the next.
func (w *voteWindow) expire() {
	now := w.s.Now()
	for len(w.votes) > 0 && !w.votes[0].at.Add(w.period).After(now) {
		w.counts[w.votes[0].kind]--
		w.votes = w.votes[1:]
	}
	if len(w.votes) > 0 {
		w.timer.StartAt(w.votes[0].at.Add(w.period))
	}
}
