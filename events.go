package cadence

// EventType identifies an animation lifecycle callback.
type EventType uint8

const (
	EventStart EventType = iota
	EventUpdate
	EventComplete
	EventReverseComplete
	EventRepeat
	EventInterrupt

	eventTypeCount
)

func (e EventType) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventUpdate:
		return "update"
	case EventComplete:
		return "complete"
	case EventReverseComplete:
		return "reverseComplete"
	case EventRepeat:
		return "repeat"
	case EventInterrupt:
		return "interrupt"
	}
	return "unknown"
}

// Event describes a lifecycle callback firing. It is passed to the
// Context's EventSink after the animation's own callback runs.
type Event struct {
	Type      EventType
	ID        string
	Animation Animation
	Time      float64
	TotalTime float64
	Iteration int
}

// EventSink receives lifecycle events from every animation of a Context.
// Update events are not forwarded. The ecs package provides an
// implementation that publishes into an ECS world.
type EventSink interface {
	EmitEvent(event Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(event Event)

// EmitEvent calls f.
func (f EventSinkFunc) EmitEvent(event Event) { f(event) }
