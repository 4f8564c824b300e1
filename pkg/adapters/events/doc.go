// Package events provides event bus implementations.
//
// Implementations:
//   - memory: in-process fan-out, the default
//   - redis: Redis Pub/Sub so every replica sees every creation
package events
