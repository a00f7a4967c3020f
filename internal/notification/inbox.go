package notification

import (
	"sync"
	"time"
)

// DefaultCapacity bounds an inbox that nobody drains.
const DefaultCapacity = 20

// Notification is a transient confirmation shown to the user.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Inbox queues notifications for one session until the client drains them.
// When full, the oldest notification is dropped.
type Inbox struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	now      func() time.Time
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inbox{
		items:    make([]Notification, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Notify implements cart.Notifier.
func (i *Inbox) Notify(title, description string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.items) == i.capacity {
		copy(i.items, i.items[1:])
		i.items = i.items[:len(i.items)-1]
	}
	i.items = append(i.items, Notification{
		Title:       title,
		Description: description,
		CreatedAt:   i.now().UTC(),
	})
}

// Drain returns the queued notifications oldest first and empties the inbox.
func (i *Inbox) Drain() []Notification {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := make([]Notification, len(i.items))
	copy(out, i.items)
	i.items = i.items[:0]
	return out
}

func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}
