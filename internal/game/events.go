package game

import "pointfall/internal/physics"

type EventType int

const (
	EventParticleRemoved EventType = iota
	EventExplosion
	EventSpawned
	EventTargetChanged
)

func (t EventType) String() string {
	switch t {
	case EventParticleRemoved:
		return "particle-removed"
	case EventExplosion:
		return "explosion"
	case EventSpawned:
		return "spawned"
	case EventTargetChanged:
		return "target-changed"
	default:
		return "unknown"
	}
}

type Event struct {
	Type   EventType
	X, Y   float64
	Handle physics.Handle
	Data   int // count for spawns and target changes
}

type EventHandler func(Event)

// EventBus delivers events synchronously, in subscription order, on the
// goroutine that emits them.
type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
}
