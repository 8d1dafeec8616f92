package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrackAccumulates(t *testing.T) {
	r := NewRecorder()
	r.Track("a")()
	r.Track("a")()
	r.Track("b")()

	assert.Equal(t, 2, r.Count("a"))
	assert.Equal(t, 1, r.Count("b"))
	assert.Len(t, r.Snapshot(), 2)

	r.Reset()
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 0, r.Count("a"))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Track("x")()
	r.Reset()
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, "", r.TopN(3))
}

func TestTopNOrdering(t *testing.T) {
	r := &Recorder{
		totals: map[string]time.Duration{
			"slow": 4200 * time.Microsecond,
			"fast": 2 * time.Millisecond,
			"tiny": 0,
		},
		counts: map[string]int{},
	}
	assert.Equal(t, "slow:4.2ms, fast:2ms", r.TopN(2))
	assert.Equal(t, "slow:4.2ms, fast:2ms, tiny:0ms", r.TopN(10))
	assert.Equal(t, "", r.TopN(0))
	assert.Equal(t, "", r.TopN(-1))
}
