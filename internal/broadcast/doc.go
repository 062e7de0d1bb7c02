// Package broadcast implements the publish-subscribe fan-out between the
// core and the UI layer.
//
// Delivery semantics:
//   - Publish never blocks the publisher on subscriber processing
//   - A message published with no subscriber attached is dropped, not queued
//   - A subscriber whose buffer is full misses the message (drop, not grow)
//   - Messages on one topic are delivered in publish order; there is no
//     ordering guarantee across topics
package broadcast
