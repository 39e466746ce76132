package ecs

import (
	"github.com/phanxgames/cadence"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AnimationEvent is a cadence lifecycle event with the entity the animation
// is bound to, or donburi.Null.
type AnimationEvent struct {
	cadence.Event
	Entity donburi.Entity
}

// AnimationEventType is the Donburi event type for cadence lifecycle events.
// Subscribe to this in your ECS systems to react to tweens starting and
// finishing.
var AnimationEventType = events.NewEventType[AnimationEvent]()

// TweenState tracks the animations running on an entity.
type TweenState struct {
	// Active counts bound animations that started and have not yet
	// completed or been interrupted.
	Active int
	// Last is the most recent event received for the entity.
	Last cadence.EventType
}

// Tweening is the component updated for entities that have one and are
// bound to an animation.
var Tweening = donburi.NewComponentType[TweenState]()

// DonburiSink is a cadence.EventSink backed by a Donburi world.
type DonburiSink struct {
	world donburi.World
	bound map[cadence.Animation]donburi.Entity
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// published to AnimationEventType and can be consumed with events.Subscribe
// and ProcessEvents.
func NewDonburiSink(world donburi.World) *DonburiSink {
	return &DonburiSink{world: world, bound: make(map[cadence.Animation]donburi.Entity)}
}

// Bind associates anim with entity. Returns anim for chaining.
func (s *DonburiSink) Bind(anim cadence.Animation, entity donburi.Entity) cadence.Animation {
	s.bound[anim] = entity
	return anim
}

// Unbind drops the association of anim.
func (s *DonburiSink) Unbind(anim cadence.Animation) {
	delete(s.bound, anim)
}

// Entity returns the entity anim is bound to.
func (s *DonburiSink) Entity(anim cadence.Animation) (donburi.Entity, bool) {
	e, ok := s.bound[anim]
	return e, ok
}

// EmitEvent implements cadence.EventSink.
func (s *DonburiSink) EmitEvent(event cadence.Event) {
	entity, ok := s.bound[event.Animation]
	if !ok {
		entity = donburi.Null
	} else if s.world.Valid(entity) {
		s.track(entity, event.Type)
	} else {
		delete(s.bound, event.Animation)
		entity = donburi.Null
	}
	if done(event) {
		delete(s.bound, event.Animation)
	}
	AnimationEventType.Publish(s.world, AnimationEvent{Event: event, Entity: entity})
}

// done reports whether the event ends the animation's life: an interrupt,
// or a completion that detached it from its timeline.
func done(event cadence.Event) bool {
	switch event.Type {
	case cadence.EventInterrupt:
		return true
	case cadence.EventComplete, cadence.EventReverseComplete:
		return event.Animation != nil && event.Animation.Parent() == nil
	}
	return false
}

func (s *DonburiSink) track(entity donburi.Entity, kind cadence.EventType) {
	entry := s.world.Entry(entity)
	if !entry.HasComponent(Tweening) {
		return
	}
	st := Tweening.Get(entry)
	switch kind {
	case cadence.EventStart:
		st.Active++
	case cadence.EventComplete, cadence.EventReverseComplete, cadence.EventInterrupt:
		if st.Active > 0 {
			st.Active--
		}
	}
	st.Last = kind
}
