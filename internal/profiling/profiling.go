package profiling

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Recorder accumulates wall time per named pipeline phase.
// The zero value is ready to use and a nil *Recorder records nothing.
type Recorder struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Track returns a stop function that records the elapsed time under name.
// Usage: defer rec.Track("assembly.Walk")()
func (r *Recorder) Track(name string) func() {
	if r == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		r.mu.Lock()
		if r.totals == nil {
			r.totals = make(map[string]time.Duration)
			r.counts = make(map[string]int)
		}
		r.totals[name] += d
		r.counts[name]++
		r.mu.Unlock()
	}
}

// Reset clears all recorded totals.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	clear(r.totals)
	clear(r.counts)
	r.mu.Unlock()
}

// Snapshot returns a copy of the current totals.
func (r *Recorder) Snapshot() map[string]time.Duration {
	out := make(map[string]time.Duration)
	if r == nil {
		return out
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.totals {
		out[k] = v
	}
	return out
}

// Count returns how many times name was tracked.
func (r *Recorder) Count(name string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}

// TopN formats the n largest totals.
// Example: "assembly.Walk:4.2ms, assembly.Assemble:2.1ms"
func (r *Recorder) TopN(n int) string {
	ss := r.Snapshot()
	type pair struct {
		name string
		dur  time.Duration
	}
	list := make([]pair, 0, len(ss))
	for k, v := range ss {
		list = append(list, pair{name: k, dur: v})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].dur == list[j].dur {
			return list[i].name < list[j].name
		}
		return list[i].dur > list[j].dur
	})
	if n > len(list) {
		n = len(list)
	}
	if n < 0 {
		n = 0
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, list[i].name+":"+formatMs(list[i].dur))
	}
	return strings.Join(parts, ", ")
}

// formatMs keeps one decimal and drops a trailing ".0".
func formatMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000.0
	s := strconv.FormatFloat(ms, 'f', 1, 64)
	return strings.TrimSuffix(s, ".0") + "ms"
}
