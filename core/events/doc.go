// Package events defines the sweep related events emitted on the event bus.
//
// Available event types:
//   - FareCheckedEvent: fare lookup result for one trip
//   - AlertsNotifiedEvent: notification dispatch for one trip
//   - TokenRejectedEvent: push token permanently rejected by the provider
//   - SweepCompletedEvent: summary of one sweep
package events
