// Package events defines the dispatch related events emitted on the event bus.
//
// Available event types:
//   - OperationEvent: outcome of a reserve/cancel/start/stop dispatch
//   - AuthEvent: outcome of an authorize start/stop request
//   - CDREvent: rollup of one charge detail record routing pass
package events
