// Package state owns the persisted job search collections.
//
// A [Container] wraps a key-value [Store] and an [events.Bus]. Every successful write is persisted first, then
// published as "<collection>Updated", then passed to the post-write hook registered for its collection. Hooks
// recompute the derived [models.Metrics] collection and write it through the same path; Metrics has no hook of
// its own, so derived recomputation never nests deeper than one level.
//
// Reads never fail: an absent, unreadable or corrupt entry yields the collection's default value.
package state
