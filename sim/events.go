package sim

import "container/heap"

// eventKind doubles as the tie-break priority: when two events fire at the
// same instant the lower kind resolves first. The accelerated backend's
// timer scan uses the same order, which is what keeps the two backends
// bit-identical per seed.
type eventKind int

const (
	evHunterAttack eventKind = iota + 1
	evEnemyAttack
	evBossSecondary
	evRegen
)

// event is one scheduled combat action. gen invalidates attack timers that
// belong to an already dead enemy.
type event struct {
	at   float64
	kind eventKind
	gen  int
	seq  uint64
}

// eventQueue is a min-heap ordered by (time, kind, insertion sequence).
type eventQueue []*event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	if q[i].kind != q[j].kind {
		return q[i].kind < q[j].kind
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(*event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return ev
}

// scheduler wraps the heap with the monotonically increasing sequence the
// ordering needs.
type scheduler struct {
	q   eventQueue
	seq uint64
}

func newScheduler() *scheduler {
	s := &scheduler{q: make(eventQueue, 0, 8)}
	heap.Init(&s.q)
	return s
}

func (s *scheduler) push(at float64, kind eventKind, gen int) {
	heap.Push(&s.q, &event{at: at, kind: kind, gen: gen, seq: s.seq})
	s.seq++
}

func (s *scheduler) pop() *event {
	return heap.Pop(&s.q).(*event)
}
