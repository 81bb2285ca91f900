// Package events publishes reference-data change events.
//
// The reconciliation engine reports every committed CREATE or UPDATE
// through a reconcile.Publisher. This package provides the in-process
// implementation: a bounded Queue that the engine publishes into, and a
// Worker that drains it to a Sink. The Sink interface is the boundary to
// the actual message bus, which is operated outside this service; LogSink
// is the default when no transport is configured.
//
// Entities are persisted before events are published, so consumers never
// observe an event for state that is not yet durable.
package events
