package events

import "time"

// Kind names a user activity. It doubles as the NATS subject suffix.
type Kind string

const (
	KindUserRegistered  Kind = "user.registered"
	KindFavoriteAdded   Kind = "favorite.added"
	KindFavoriteRemoved Kind = "favorite.removed"
)

// Activity is a user action worth telling other systems about.
// Only identifiers are carried.
type Activity struct {
	Kind       Kind      `json:"kind"`
	UserID     int64     `json:"userId"`
	EventID    string    `json:"eventId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher accepts activities without blocking.
type Publisher interface {
	Publish(a Activity) bool
}

// Bus is a lightweight in-process queue backed by a buffered channel.
type Bus struct {
	ch chan Activity
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 1
	}
	return &Bus{ch: make(chan Activity, buffer)}
}

// Publish attempts to enqueue the activity without blocking.
// Returns true if published, false if the buffer is full.
func (b *Bus) Publish(a Activity) bool {
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}
	select {
	case b.ch <- a:
		return true
	default:
		return false
	}
}

// Subscribe returns a read-only channel for the single consumer.
func (b *Bus) Subscribe() <-chan Activity {
	return b.ch
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(Activity) bool { return true }
