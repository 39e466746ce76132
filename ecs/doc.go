// Package ecs provides ECS adapters for cadence's animation lifecycle events.
//
// The primary adapter is [NewDonburiSink], which forwards start, complete,
// repeat, reverse-complete and interrupt events into a [Donburi] world as
// typed events. Animations can be bound to entities; events of a bound
// animation carry the entity and keep its [Tweening] component current.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	ctx := cadence.NewContext(cadence.WithEventSink(sink))
//	sink.Bind(ctx.To(sprite, vars), entity)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
