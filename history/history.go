package history

import (
	"sync"
	"time"

	"github.com/gammazero/deque"
	"github.com/google/uuid"

	"lautenbacher.net/gosignal/signal"
)

const DefaultCapacity = 200

// Entry is one recorded transition.
type Entry struct {
	ID    string              `json:"id"`
	At    time.Time           `json:"at"`
	From  signal.LogicalState `json:"from"`
	To    signal.LogicalState `json:"to"`
	Mode  signal.Mode         `json:"mode"`
	Color signal.Color        `json:"color"`
	Delay time.Duration       `json:"delayNs"`
}

func NewEntry(tr signal.Transition, at time.Time) Entry {
	return Entry{
		ID:    uuid.NewString(),
		At:    at,
		From:  tr.From,
		To:    tr.To,
		Mode:  tr.Mode,
		Color: tr.Color,
		Delay: tr.Delay,
	}
}

// History keeps the last capacity entries, oldest first. It is safe for
// concurrent use.
type History struct {
	mu       sync.Mutex
	entries  deque.Deque[Entry]
	capacity int
}

func New(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &History{capacity: capacity}
	h.entries.Grow(capacity)
	return h
}

func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries.Len() == h.capacity {
		h.entries.PopFront()
	}
	h.entries.PushBack(e)
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries.Len()
}

// Last returns up to n of the newest entries, oldest first. n <= 0
// returns everything.
func (h *History) Last(n int) []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := h.entries.Len()
	if n <= 0 || n > total {
		n = total
	}
	ret := make([]Entry, 0, n)
	for i := total - n; i < total; i++ {
		ret = append(ret, h.entries.At(i))
	}
	return ret
}
