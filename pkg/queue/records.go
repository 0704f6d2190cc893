package queue

import (
	"sync"
	"time"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/engine"
)

// Record is a finished job kept for inspection. Records are bounded by count
// and age; durable audit lives in the order store, not here.
type Record struct {
	Job        Job            `json:"job"`
	Outcome    engine.Outcome `json:"-"`
	Result     string         `json:"result"`
	Attempts   int            `json:"attempts"`
	FinishedAt time.Time      `json:"finished_at"`
}

// recordRing is a count- and age-capped FIFO of job records.
type recordRing struct {
	mu     sync.Mutex
	max    int
	maxAge time.Duration
	items  []Record
	total  int
}

func newRecordRing(max int, maxAge time.Duration) *recordRing {
	return &recordRing{max: max, maxAge: maxAge}
}

func (r *recordRing) add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	r.items = append(r.items, rec)
	r.prune(rec.FinishedAt)
}

// prune drops items over the count cap or past the age cap. Items are in
// insertion order, so trimming the front is enough. Survivors are copied
// down and the vacated slots zeroed so dropped records don't stay reachable
// through the backing array.
func (r *recordRing) prune(now time.Time) {
	drop := 0
	if over := len(r.items) - r.max; over > 0 {
		drop = over
	}
	for drop < len(r.items) && now.Sub(r.items[drop].FinishedAt) > r.maxAge {
		drop++
	}
	if drop == 0 {
		return
	}
	n := copy(r.items, r.items[drop:])
	for i := n; i < len(r.items); i++ {
		r.items[i] = Record{}
	}
	r.items = r.items[:n]
}

// count returns how many jobs ever landed in this ring.
func (r *recordRing) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// snapshot returns the retained records, oldest first.
func (r *recordRing) snapshot() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune(time.Now())
	out := make([]Record, len(r.items))
	copy(out, r.items)
	return out
}
