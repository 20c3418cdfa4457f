package sim

import (
	"sync"

	"github.com/Mauin/ReactiveAwareness/pkg/awareness"
)

// deliveryQueue delivers fence states one at a time, in push order. A slow
// deliver function holds back later states without blocking the pusher.
type deliveryQueue struct {
	mu      sync.Mutex
	items   []awareness.FenceState
	signal  chan struct{}
	stop    chan struct{}
	stopped sync.Once
}

func newDeliveryQueue(deliver func(awareness.FenceState)) *deliveryQueue {
	q := &deliveryQueue{
		signal: make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
	go q.run(deliver)
	return q
}

func (q *deliveryQueue) push(fs awareness.FenceState) {
	q.mu.Lock()
	q.items = append(q.items, fs)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *deliveryQueue) close() {
	q.stopped.Do(func() { close(q.stop) })
}

func (q *deliveryQueue) run(deliver func(awareness.FenceState)) {
	for {
		select {
		case <-q.stop:
			return
		case <-q.signal:
		}

		for {
			q.mu.Lock()
			if len(q.items) == 0 {
				q.mu.Unlock()
				break
			}
			fs := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()

			select {
			case <-q.stop:
				return
			default:
			}
			deliver(fs)
		}
	}
}
